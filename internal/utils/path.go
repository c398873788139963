package utils

import (
	"strings"
)

// StripPrefixAll removes every occurrence of base from p.
//
// This is a plain substring removal, not a path-aware Rel: "/work/blasbuild/cuda"
// with base "/work" yields "/blasbuild/cuda", keeping the leading separator.
func StripPrefixAll(p, base string) string {
	if base == "" {
		return p
	}

	return strings.ReplaceAll(p, base, "")
}

// SanitizeFileName turns a source path into a flat, filesystem-safe token
func SanitizeFileName(p, base string) string {
	return strings.ReplaceAll(StripPrefixAll(p, base), "/", "_")
}
