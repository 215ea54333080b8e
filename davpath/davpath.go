// Package davpath builds the remote-relative paths appended to the webdav
// base url. Segments are percent-encoded independently, so a separator byte
// inside a file name can never open a new path level.
package davpath

import (
	"path/filepath"
	"strings"
)

const upperhex = "0123456789ABCDEF"

func isUnreserved(c byte) bool {
	if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' {
		return true
	}
	switch c {
	case '-', '_', '.', '~':
		return true
	}
	return false
}

// EncodeSegment percent-encodes a single path segment. Every byte outside the
// unreserved set is escaped, '/' included.
func EncodeSegment(seg string) string {
	var hit bool
	for i := 0; i < len(seg); i++ {
		if !isUnreserved(seg[i]) {
			hit = true
			break
		}
	}
	if !hit {
		return seg
	}
	var b strings.Builder
	b.Grow(len(seg) + 2*len(seg)/3)
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0xf])
	}
	return b.String()
}

// EncodePath encodes a normalized relative path segment by segment, keeping
// the '/' separators themselves unescaped. The probe and the create side both
// go through here, so a resource is always addressed with identical bytes.
func EncodePath(rel string) string {
	items := strings.Split(rel, "/")
	for i, item := range items {
		items[i] = EncodeSegment(item)
	}
	return strings.Join(items, "/")
}

// Normalize converts a local relative path to remote form: os separators
// become '/', empty and '.' segments are dropped.
func Normalize(rel string) string {
	items := strings.Split(filepath.ToSlash(rel), "/")
	rs := make([]string, 0, len(items))
	for _, item := range items {
		if len(item) == 0 || item == "." {
			continue
		}
		rs = append(rs, item)
	}
	return strings.Join(rs, "/")
}

// Join glues already-normalized parts with '/', skipping empty ones.
func Join(parts ...string) string {
	rs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if len(p) == 0 {
			continue
		}
		rs = append(rs, p)
	}
	return strings.Join(rs, "/")
}
