package shared

import "strings"

// LocationScope is the caller-supplied set of location names a caller
// may see. Authorization happens upstream; the service only ever
// filters by this opaque list. An empty scope means unrestricted.
type LocationScope []string

// ScopeFromHeader parses a comma-separated location list, typically
// forwarded by the gateway that authenticated the caller.
func ScopeFromHeader(value string) LocationScope {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	scope := make(LocationScope, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			scope = append(scope, p)
		}
	}
	return scope
}

// Restrict intersects the requested locations with the scope. With no
// requested locations the whole scope is returned. The second result
// is false when the scoped caller ends up with nothing visible, which
// callers must treat as an empty result rather than an unfiltered one.
func (s LocationScope) Restrict(requested []string) ([]string, bool) {
	if len(s) == 0 {
		return requested, true
	}
	if len(requested) == 0 {
		return append([]string(nil), s...), true
	}
	allowed := make(map[string]struct{}, len(s))
	for _, loc := range s {
		allowed[loc] = struct{}{}
	}
	var out []string
	for _, loc := range requested {
		if _, ok := allowed[loc]; ok {
			out = append(out, loc)
		}
	}
	return out, len(out) > 0
}
