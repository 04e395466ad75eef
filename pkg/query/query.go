// Package query parses delimited list values from query strings and
// environment variables.
package query

import "strings"

// StringSlice splits a comma-separated value into trimmed, non-empty
// entries. An empty input yields nil.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}

// FoldedSlice is StringSlice with every entry lower-cased, for
// case-insensitive membership lists such as email allow-lists.
func FoldedSlice(val string) []string {
	entries := StringSlice(val)
	for i, entry := range entries {
		entries[i] = strings.ToLower(entry)
	}
	return entries
}
