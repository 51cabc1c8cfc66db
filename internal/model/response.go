package model

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// WildcardStatus replaces the "default" response key.
const WildcardStatus = "XXX"

var statusPattern = regexp.MustCompile(`^[0-9X]{3}$`)

// wildcards counts the X characters in a status key; fewer means more specific.
func wildcards(status string) int { return strings.Count(status, "X") }

// SortResponses orders responses from the most specific status key to the
// least specific, keeping the relative order of equally specific ones.
func SortResponses(responses []Response) {
	sort.SliceStable(responses, func(i, j int) bool {
		return wildcards(responses[i].Status) < wildcards(responses[j].Status)
	})
}

func (b *builder) parseResponses(o object) ([]Response, error) {
	responses := make([]Response, 0, len(o.fields))
	seen := make(map[string]bool, len(o.fields))
	for _, key := range o.entries() {
		status := key
		if key == "default" {
			status = WildcardStatus
		} else if !statusPattern.MatchString(key) {
			return nil, newError(ErrResponseStatus, o.at(key), fmt.Sprintf("response key %q is neither \"default\" nor a three character status pattern", key))
		}
		if seen[status] {
			return nil, newError(ErrResponseStatus, o.at(key), fmt.Sprintf("status %s is declared twice", status))
		}
		seen[status] = true

		ro, err := asObject(o.value(key), o.at(key))
		if err != nil {
			return nil, err
		}
		r := Response{Status: status}
		if r.Description, err = ro.str("description"); err != nil {
			return nil, err
		}
		if r.Headers, err = b.parseHeaders(ro, "headers"); err != nil {
			return nil, err
		}
		if ro.has("content") {
			if r.Content, err = b.parseContent(ro.value("content"), ro.at("content")); err != nil {
				return nil, err
			}
		}
		responses = append(responses, r)
	}
	SortResponses(responses)
	return responses, nil
}
