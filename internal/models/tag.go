// ABOUTME: ErrorTag model and helpers for the "a, b" tag list format.
// ABOUTME: Tags are reusable mistake labels attached to trades.
package models

import "strings"

// TagSeparator joins tag names in the legacy list form.
const TagSeparator = ", "

// ErrorTag is a reusable mistake label.
type ErrorTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TagUsage pairs a tag with the number of trades referencing it.
type TagUsage struct {
	ErrorTag
	Count int `json:"count"`
}

// ParseTags splits a comma separated list, trimming blanks and dropping duplicates.
func ParseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return NormalizeTags(strings.Split(s, ","))
}

// NormalizeTags trims names, drops empties and keeps the first occurrence of each name.
func NormalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// JoinTags renders tags in the "a, b" list form.
func JoinTags(tags []string) string {
	return strings.Join(tags, TagSeparator)
}
