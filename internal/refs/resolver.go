// Package refs resolves local JSON-Pointer $ref nodes inside a decoded
// OpenAPI document.
//
// Resolution rewrites the document in place: every location holding a
// {"$ref": "#/..."} object is overwritten with the node the pointer
// designates, so both locations share one node afterwards. Self-referencing
// schemas therefore become real cycles in the graph; consumers walking the
// result must track the nodes they are inside of.
package refs

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"
)

// OriginKey is the extension key under which a reference target records its
// own canonical pointer.
const OriginKey = "x-ref-origin"

const refKey = "$ref"

// location is a slot in the graph currently holding a $ref object.
type location struct {
	object  map[string]any
	array   []any
	key     string
	index   int
	pointer string
	ref     string
}

func (l location) set(v any) {
	if l.object != nil {
		l.object[l.key] = v
		return
	}
	l.array[l.index] = v
}

type resolver struct {
	root    map[string]any
	visited map[uintptr]bool
	found   []location
}

// Resolve replaces every local $ref node in root with the node it designates
// and returns the number of substitutions made. Locations are processed in
// traversal order, object keys visited in sorted order.
func Resolve(root map[string]any) (int, error) {
	if root == nil {
		return 0, nil
	}
	r := &resolver{root: root, visited: make(map[uintptr]bool)}
	r.collectObject(root, "#")

	for _, loc := range r.found {
		source, path, err := r.lookup(loc.ref, make(map[string]bool))
		if err != nil {
			if re, ok := err.(*Error); ok && re.Pointer == "" {
				re.Pointer = loc.pointer
			}
			return 0, err
		}
		if m, ok := source.(map[string]any); ok {
			if _, tagged := m[OriginKey]; !tagged {
				m[OriginKey] = Pointer(path...)
			}
		}
		loc.set(source)
	}
	return len(r.found), nil
}

// Origin returns the canonical pointer recorded on a reference target, or ""
// when the node was never the target of a $ref.
func Origin(node map[string]any) string {
	s, _ := node[OriginKey].(string)
	return s
}

// Pointer builds a local reference string from unescaped segments.
func Pointer(segments ...string) string {
	var b strings.Builder
	b.WriteString("#")
	for _, s := range segments {
		b.WriteString("/")
		b.WriteString(jsonpointer.Escape(s))
	}
	return b.String()
}

// Parse splits a local reference into unescaped segments. Segments are
// percent-decoded first and then JSON-Pointer unescaped (~1 is "/", ~0 is "~").
func Parse(ref string) ([]string, error) {
	if !strings.HasPrefix(ref, "#") {
		return nil, &Error{Kind: ErrExternalRef, Ref: ref, Message: "only local references (#/...) are supported"}
	}
	frag := ref[1:]
	if frag == "" || frag == "/" {
		return nil, nil
	}
	if !strings.HasPrefix(frag, "/") {
		return nil, &Error{Kind: ErrUnresolvable, Ref: ref, Message: "fragment is not a JSON pointer"}
	}
	parts := strings.Split(frag[1:], "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		decoded, err := url.PathUnescape(p)
		if err != nil {
			return nil, &Error{Kind: ErrUnresolvable, Ref: ref, Message: fmt.Sprintf("invalid escape in segment %q", p), Cause: err}
		}
		segments = append(segments, jsonpointer.Unescape(decoded))
	}
	return segments, nil
}

func (r *resolver) seen(v any) bool {
	ptr := reflect.ValueOf(v).Pointer()
	if ptr == 0 {
		return false
	}
	if r.visited[ptr] {
		return true
	}
	r.visited[ptr] = true
	return false
}

func (r *resolver) collectObject(m map[string]any, pointer string) {
	if r.seen(m) {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		at := pointer + "/" + jsonpointer.Escape(k)
		if ref, ok := refOf(m[k]); ok {
			r.found = append(r.found, location{object: m, key: k, pointer: at, ref: ref})
			continue
		}
		r.collect(m[k], at)
	}
}

func (r *resolver) collect(v any, pointer string) {
	switch node := v.(type) {
	case map[string]any:
		r.collectObject(node, pointer)
	case []any:
		if len(node) == 0 || r.seen(node) {
			return
		}
		for i, item := range node {
			at := pointer + "/" + strconv.Itoa(i)
			if ref, ok := refOf(item); ok {
				r.found = append(r.found, location{array: node, index: i, pointer: at, ref: ref})
				continue
			}
			r.collect(item, at)
		}
	}
}

func refOf(v any) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	ref, ok := m[refKey].(string)
	return ref, ok
}

// lookup walks ref from the root. Unresolved $ref objects met on the way are
// followed; chain tracks the references already entered so loops terminate.
func (r *resolver) lookup(ref string, chain map[string]bool) (any, []string, error) {
	if chain[ref] {
		return nil, nil, &Error{Kind: ErrReferenceLoop, Ref: ref, Message: "reference chain refers back to itself"}
	}
	chain[ref] = true
	defer delete(chain, ref)

	segments, err := Parse(ref)
	if err != nil {
		return nil, nil, err
	}

	var cur any = r.root
	path := make([]string, 0, len(segments))
	for i, seg := range segments {
		if cur, path, err = r.follow(cur, path, chain); err != nil {
			return nil, nil, err
		}
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, nil, &Error{Kind: ErrUnresolvable, Ref: ref, Message: fmt.Sprintf("no node at %s", Pointer(segments[:i+1]...))}
			}
			cur = next
		case []any:
			idx, aerr := strconv.Atoi(seg)
			if aerr != nil || idx < 0 || idx >= len(node) {
				return nil, nil, &Error{Kind: ErrUnresolvable, Ref: ref, Message: fmt.Sprintf("invalid array index %q at %s", seg, Pointer(segments[:i]...))}
			}
			cur = node[idx]
		default:
			return nil, nil, &Error{Kind: ErrUnresolvable, Ref: ref, Message: fmt.Sprintf("cannot descend into %T at %s", cur, Pointer(segments[:i]...))}
		}
		path = append(path[:len(path):len(path)], seg)
	}
	return r.follow(cur, path, chain)
}

func (r *resolver) follow(node any, path []string, chain map[string]bool) (any, []string, error) {
	ref, ok := refOf(node)
	if !ok {
		return node, path, nil
	}
	return r.lookup(ref, chain)
}
