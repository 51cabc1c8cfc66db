package model

import (
	"fmt"
	"strings"
)

// PathComponent is either a literal segment or a named placeholder.
type PathComponent struct {
	Value string `json:"value" yaml:"value"`
	Param bool   `json:"param,omitempty" yaml:"param,omitempty"`
}

// Path is a parsed URL or API path template such as /pets/{id}.
type Path []PathComponent

// String re-joins the template, wrapping placeholders in braces.
func (p Path) String() string {
	var b strings.Builder
	for _, c := range p {
		if c.Param {
			b.WriteString("{")
			b.WriteString(c.Value)
			b.WriteString("}")
			continue
		}
		b.WriteString(c.Value)
	}
	return b.String()
}

// Params returns the placeholder names in template order.
func (p Path) Params() []string {
	var names []string
	for _, c := range p {
		if c.Param {
			names = append(names, c.Value)
		}
	}
	return names
}

func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := ParsePath(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePath splits a template on '{'. The first fragment is a literal; each
// later fragment must hold exactly one '}' separating the placeholder name
// from the literal that follows it. Empty literals are dropped.
func ParsePath(template string) (Path, error) {
	fragments := strings.Split(template, "{")
	if strings.Contains(fragments[0], "}") {
		return nil, newError(ErrPathTemplate, "", fmt.Sprintf("unbalanced '}' in %q", template))
	}
	path := Path{}
	path = appendConstant(path, fragments[0])
	for _, frag := range fragments[1:] {
		parts := strings.Split(frag, "}")
		if len(parts) != 2 {
			return nil, newError(ErrPathTemplate, "", fmt.Sprintf("unbalanced braces in %q", template))
		}
		if parts[0] == "" {
			return nil, newError(ErrPathTemplate, "", fmt.Sprintf("empty parameter name in %q", template))
		}
		path = append(path, PathComponent{Value: parts[0], Param: true})
		path = appendConstant(path, parts[1])
	}
	return path, nil
}

func appendConstant(p Path, s string) Path {
	if s == "" {
		return p
	}
	return append(p, PathComponent{Value: s})
}

// parsePathAt parses a template and attaches pointer to any error.
func parsePathAt(template, pointer string) (Path, error) {
	p, err := ParsePath(template)
	if err != nil {
		if me, ok := err.(*Error); ok {
			me.Pointer = pointer
		}
		return nil, err
	}
	return p, nil
}
