package model

import (
	"fmt"
	"strconv"
)

func (b *builder) parseSecuritySchemes(components object) error {
	schemes, ok, err := components.obj("securitySchemes")
	if err != nil || !ok {
		return err
	}
	for _, name := range schemes.keys() {
		so, err := asObject(schemes.value(name), schemes.at(name))
		if err != nil {
			return err
		}
		s, err := parseSecurityScheme(so, name)
		if err != nil {
			return err
		}
		b.schemes[name] = s
	}
	return nil
}

func parseSecurityScheme(o object, name string) (*SecurityScheme, error) {
	s := &SecurityScheme{Name: name}
	var err error
	if s.Type, err = o.requiredStr("type"); err != nil {
		return nil, err
	}
	fields := []struct {
		key string
		dst *string
	}{
		{"description", &s.Description},
		{"in", &s.In},
		{"name", &s.ParamName},
		{"scheme", &s.Scheme},
		{"bearerFormat", &s.BearerFormat},
		{"openIdConnectUrl", &s.OpenIDConnectURL},
	}
	for _, f := range fields {
		if *f.dst, err = o.str(f.key); err != nil {
			return nil, err
		}
	}
	if fo, ok, err := o.obj("flows"); err != nil {
		return nil, err
	} else if ok {
		if s.Flows, err = parseFlows(fo); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func parseFlows(o object) (*OAuthFlows, error) {
	flows := &OAuthFlows{}
	targets := []struct {
		key string
		dst **OAuthFlow
	}{
		{"implicit", &flows.Implicit},
		{"password", &flows.Password},
		{"clientCredentials", &flows.ClientCredentials},
		{"authorizationCode", &flows.AuthorizationCode},
	}
	for _, t := range targets {
		fo, ok, err := o.obj(t.key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		f := &OAuthFlow{Scopes: map[string]string{}}
		if f.AuthorizationURL, err = fo.str("authorizationUrl"); err != nil {
			return nil, err
		}
		if f.TokenURL, err = fo.str("tokenUrl"); err != nil {
			return nil, err
		}
		if f.RefreshURL, err = fo.str("refreshUrl"); err != nil {
			return nil, err
		}
		if so, ok, err := fo.obj("scopes"); err != nil {
			return nil, err
		} else if ok {
			for _, scope := range so.keys() {
				if f.Scopes[scope], err = so.str(scope); err != nil {
					return nil, err
				}
			}
		}
		*t.dst = f
	}
	return flows, nil
}

// parseSecurity resolves a security requirement list against the declared
// schemes. Each list entry is one alternative; an empty entry is an
// alternative with no requirements (anonymous access).
func (b *builder) parseSecurity(o object, key string) (SecurityAlternatives, error) {
	l, ok, err := o.list(key)
	if err != nil || !ok {
		return nil, err
	}
	alternatives := make(SecurityAlternatives, 0, len(l))
	for i, item := range l {
		ao, err := asObject(item, o.at(key)+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		alt := SecurityAlternative{}
		for _, name := range ao.keys() {
			scheme, ok := b.schemes[name]
			if !ok {
				return nil, newError(ErrSecurity, ao.at(name), fmt.Sprintf("security scheme %q is not declared in components.securitySchemes", name))
			}
			scopes, err := ao.strs(name)
			if err != nil {
				return nil, err
			}
			if scopes == nil {
				scopes = []string{}
			}
			alt = append(alt, SecurityRequirement{Scheme: scheme, Scopes: scopes})
		}
		alternatives = append(alternatives, alt)
	}
	return alternatives, nil
}
