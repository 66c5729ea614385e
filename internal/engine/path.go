package engine

import (
	"strconv"
	"strings"
)

// Split turns a slash-delimited path into unescaped segments. One leading
// slash is stripped; "" and "/" both denote the root and yield no segments.
// Segments are not normalized beyond that, so "/a//b" addresses the empty key
// between a and b.
func Split(path string) []string {
	p := strings.TrimPrefix(path, "/")
	if p == "" {
		return nil
	}
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = Unescape(s)
	}
	return parts
}

// Join renders segments as an escaped path. No segments yields "/".
func Join(segs ...string) string {
	if len(segs) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range segs {
		b.WriteByte('/')
		b.WriteString(Escape(s))
	}
	return b.String()
}

// Escape encodes '~' -> '~0' and '/' -> '~1' per RFC6901.
func Escape(seg string) string {
	if !strings.ContainsAny(seg, "~/") {
		return seg
	}
	return strings.ReplaceAll(strings.ReplaceAll(seg, "~", "~0"), "/", "~1")
}

// Unescape reverses Escape. Unknown escapes are left untouched.
func Unescape(seg string) string {
	if !strings.Contains(seg, "~") {
		return seg
	}
	return strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
}

// IsRoot reports whether path addresses the document root.
func IsRoot(path string) bool { return path == "" || path == "/" }

// index parses a canonical array index. Leading zeros, signs and blanks are
// rejected so that "01" never aliases "1".
func index(seg string) (int, bool) {
	if seg == "" || len(seg) > 1 && seg[0] == '0' {
		return 0, false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return n, true
}
