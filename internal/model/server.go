package model

import (
	"fmt"
	"strconv"
)

// DefaultServer stands in when a document declares no servers.
func DefaultServer() Server {
	return Server{URL: Path{{Value: "/"}}}
}

// parseServers returns ok=false when the list is absent or empty so callers
// fall back to the enclosing level.
func parseServers(o object, key string) ([]Server, bool, error) {
	l, ok, err := o.list(key)
	if err != nil || !ok || len(l) == 0 {
		return nil, false, err
	}
	servers := make([]Server, 0, len(l))
	for i, item := range l {
		so, err := asObject(item, o.at(key)+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, false, err
		}
		s, err := parseServer(so)
		if err != nil {
			return nil, false, err
		}
		servers = append(servers, s)
	}
	return servers, true, nil
}

func parseServer(o object) (Server, error) {
	url, err := o.requiredStr("url")
	if err != nil {
		return Server{}, err
	}
	s := Server{}
	if s.URL, err = parsePathAt(url, o.at("url")); err != nil {
		return Server{}, err
	}
	if s.Description, err = o.str("description"); err != nil {
		return Server{}, err
	}
	if vo, ok, err := o.obj("variables"); err != nil {
		return Server{}, err
	} else if ok {
		s.Variables = make(map[string]ServerVariable, len(vo.fields))
		for _, name := range vo.keys() {
			v, err := asObject(vo.value(name), vo.at(name))
			if err != nil {
				return Server{}, err
			}
			sv := ServerVariable{}
			if sv.Enum, err = v.strs("enum"); err != nil {
				return Server{}, err
			}
			if sv.Default, err = v.str("default"); err != nil {
				return Server{}, err
			}
			if sv.Description, err = v.str("description"); err != nil {
				return Server{}, err
			}
			s.Variables[name] = sv
		}
	}
	for _, name := range s.URL.Params() {
		if _, ok := s.Variables[name]; !ok {
			return Server{}, newError(ErrPathTemplate, o.at("url"), fmt.Sprintf("server variable %q is not declared", name))
		}
	}
	return s, nil
}
