package sla

import (
	"regexp"
	"strings"
)

// Path segments that are request-specific identifiers collapse to a single
// placeholder so that all instances of one logical route share a bucket.
var (
	uuidSegment = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	hexSegment  = regexp.MustCompile(`^[0-9a-fA-F]{12,}$`)
)

// NormalizeEndpoint derives the bucket key for a request path: the query
// string is stripped and numeric, UUID-shaped, and long-hex segments are
// replaced with ":id". "/patients/5/invoices" and
// "/patients/64f3a9c2e1b0d4f5a6b7c8d9/invoices" map to the same key.
func NormalizeEndpoint(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if isNumeric(seg) || uuidSegment.MatchString(seg) || hexSegment.MatchString(seg) {
			segments[i] = ":id"
		}
	}

	normalized := strings.Join(segments, "/")
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return normalized
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
