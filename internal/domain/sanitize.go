package domain

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ugc keeps harmless formatting markup, drops script and style elements with their content
// and strips event handler attributes. Safe for concurrent use.
var ugc = bluemonday.UGCPolicy()

// urlUnsafe are the characters that could end an attribute or open a tag when a URL is
// rendered into HTML. They never need to appear literally in a valid URL.
var urlUnsafe = strings.NewReplacer(
	`"`, "%22",
	`'`, "%27",
	"<", "%3C",
	">", "%3E",
	"`", "%60",
)

// Sanitize neutralizes markup in the text fields of b before it is echoed to a client.
// Plain text keeps its &, ' and " characters. Sanitize(Sanitize(b)) == Sanitize(b).
func Sanitize(b Bookmark) Bookmark {
	b.Title = sanitizeText(b.Title)
	b.URL = sanitizeURL(b.URL)
	if b.Description != nil {
		d := sanitizeText(*b.Description)
		b.Description = &d
	}
	return b
}

// SanitizeAll sanitizes every record, always returning a non-nil slice.
func SanitizeAll(bs []Bookmark) []Bookmark {
	out := make([]Bookmark, 0, len(bs))
	for _, b := range bs {
		out = append(out, Sanitize(b))
	}
	return out
}

// sanitizeURL keeps http(s) URLs as stored, apart from characters that break out of an HTML
// attribute. Anything else (javascript:, data:, garbage) is dropped.
func sanitizeURL(raw string) string {
	s := urlUnsafe.Replace(raw)
	if !IsWebURI(s) {
		return ""
	}
	return s
}

// sanitizeText runs the markup policy and then turns the entities it emitted for plain text
// back into characters, as long as the result still parses to the same text.
func sanitizeText(s string) string {
	return unescapeText(ugc.Sanitize(s))
}

// unescapeText decodes &amp;, &#39; and &#34; in the text between tags of sanitized HTML.
// Tags are copied untouched so attribute quoting stays intact. &lt; and &gt; are kept.
// An ampersand stays encoded when the characters after it would read as a character reference.
func unescapeText(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		switch {
		case s[i] == '<':
			end := strings.IndexByte(s[i:], '>')
			if end < 0 {
				sb.WriteString(s[i:])
				return sb.String()
			}
			sb.WriteString(s[i : i+end+1])
			i += end + 1

		case strings.HasPrefix(s[i:], "&#39;"):
			sb.WriteByte('\'')
			i += len("&#39;")

		case strings.HasPrefix(s[i:], "&#34;"):
			sb.WriteByte('"')
			i += len("&#34;")

		case strings.HasPrefix(s[i:], "&amp;"):
			i += len("&amp;")
			if literalAmpersand(s[i:]) {
				sb.WriteByte('&')
			} else {
				sb.WriteString("&amp;")
			}

		default:
			sb.WriteByte(s[i])
			i++
		}
	}
	return sb.String()
}

// literalAmpersand reports whether "&" followed by tail is read back as a plain "&".
func literalAmpersand(tail string) bool {
	if tail == "" {
		return true
	}
	if tail[0] == '#' {
		return false
	}
	end := 0
	for end < len(tail) && isAlnum(tail[end]) {
		end++
	}
	if end == 0 {
		return true
	}
	if end < len(tail) && tail[end] == ';' {
		end++
	}
	ref := "&" + tail[:end]
	return html.UnescapeString(ref) == ref
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
