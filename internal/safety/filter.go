// Package safety provides audit logging of tool calls and the host filter
// applied to remote assets referenced by CMS content.
package safety

import (
	"net/url"
	"path"
	"strings"
)

// Filter controls which hosts may serve assets using an allowlist and a
// denylist of glob patterns in path.Match syntax. A "*" also spans dots, so
// "*.graphassets.com" matches "eu-central-1.cdn.graphassets.com".
//
// Rules:
//   - If both lists are empty (or nil), every host is allowed.
//   - Denylist always takes priority over the allowlist.
//   - If a non-empty allowlist is present, a host must match at least one
//     allowlist pattern to be permitted (after the denylist check).
//
// Matching is case-insensitive.
type Filter struct {
	allowlist []string
	denylist  []string
}

// NewFilter constructs a Filter from the provided allowlist and denylist
// pattern slices. Either or both may be nil or empty.
func NewFilter(allowlist, denylist []string) *Filter {
	return &Filter{
		allowlist: lower(allowlist),
		denylist:  lower(denylist),
	}
}

// IsAllowed reports whether host is permitted by this filter.
func (f *Filter) IsAllowed(host string) bool {
	host = strings.ToLower(host)

	for _, pattern := range f.denylist {
		if matchGlob(pattern, host) {
			return false
		}
	}

	if len(f.allowlist) == 0 {
		return true
	}

	for _, pattern := range f.allowlist {
		if matchGlob(pattern, host) {
			return true
		}
	}

	return false
}

// AllowsURL reports whether rawURL is an absolute https URL whose host is
// permitted. Plain http, unparseable and relative URLs are rejected.
func (f *Filter) AllowsURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "https" {
		return false
	}
	return f.IsAllowed(u.Hostname())
}

// matchGlob returns true when name matches the given glob pattern.
// Malformed patterns are treated as non-matching.
func matchGlob(pattern, name string) bool {
	matched, err := path.Match(pattern, name)
	if err != nil {
		return false
	}
	return matched
}

func lower(patterns []string) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = strings.ToLower(p)
	}
	return out
}
