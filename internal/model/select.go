package model

import (
	"fmt"
	"regexp"
	"strings"
)

// SelectOption configures which methods Select keeps.
type SelectOption func(*selectConfig)

type selectConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[HTTPMethod]struct{}
	pathRes     []*regexp.Regexp
	err         error
}

// WithIncludeTags keeps only methods that have at least one of the given tags.
func WithIncludeTags(tags []string) SelectOption {
	return func(c *selectConfig) {
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if c.includeTags == nil {
				c.includeTags = make(map[string]struct{}, len(tags))
			}
			c.includeTags[t] = struct{}{}
		}
	}
}

// WithExcludeTags removes methods that have any of the given tags.
func WithExcludeTags(tags []string) SelectOption {
	return func(c *selectConfig) {
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if c.excludeTags == nil {
				c.excludeTags = make(map[string]struct{}, len(tags))
			}
			c.excludeTags[t] = struct{}{}
		}
	}
}

// WithMethods keeps only methods using one of the provided HTTP methods.
func WithMethods(methods []HTTPMethod) SelectOption {
	return func(c *selectConfig) {
		for _, m := range methods {
			if c.methods == nil {
				c.methods = make(map[HTTPMethod]struct{}, len(methods))
			}
			c.methods[HTTPMethod(strings.ToLower(string(m)))] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only methods whose path template matches at least
// one of the regular expressions. An invalid pattern makes Select fail.
func WithPathPatterns(patterns []string) SelectOption {
	return func(c *selectConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				if c.err == nil {
					c.err = fmt.Errorf("invalid path pattern %q: %w", p, err)
				}
				continue
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

// Select returns a new Model holding the methods that pass every filter. The
// tag catalog keeps declared tags still in use and drops the rest. The
// input model is left untouched.
func Select(m *Model, opts ...SelectOption) (*Model, error) {
	if m == nil {
		return nil, fmt.Errorf("nil model")
	}
	cfg := &selectConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.err != nil {
		return nil, cfg.err
	}

	out := &Model{Info: m.Info, Methods: []Method{}}
	for _, method := range m.Methods {
		if cfg.allow(method) {
			out.Methods = append(out.Methods, method)
		}
	}

	used := make(map[string]struct{})
	for _, name := range collectSortedTags(out.Methods) {
		used[name] = struct{}{}
	}
	for _, t := range m.Tags {
		if _, ok := used[t.Name]; ok {
			out.Tags = append(out.Tags, t)
		}
	}
	return out, nil
}

func (c *selectConfig) allow(m Method) bool {
	if len(c.methods) > 0 {
		if _, ok := c.methods[m.Method]; !ok {
			return false
		}
	}
	if len(c.pathRes) > 0 {
		matched := false
		template := m.Path.String()
		for _, re := range c.pathRes {
			if re.MatchString(template) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return c.allowByTags(m.Tags)
}

func (c *selectConfig) allowByTags(tags []string) bool {
	if len(c.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := c.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := c.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}
