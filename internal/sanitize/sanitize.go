// Package sanitize strips unsafe markup from user input before it is stored
// or rendered, and flags suspicious patterns for operators.
package sanitize

import (
	"io"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// dropContent lists elements whose text content is discarded along with the tags.
var dropContent = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Iframe:   true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Object:   true,
	atom.Embed:    true,
}

// richTags is the inline subset allowed in designated rich-text fields.
var richTags = map[atom.Atom]bool{
	atom.P:      true,
	atom.Br:     true,
	atom.B:      true,
	atom.Strong: true,
	atom.I:      true,
	atom.Em:     true,
	atom.U:      true,
	atom.Ul:     true,
	atom.Ol:     true,
	atom.Li:     true,
	atom.A:      true,
}

// maxTextPasses bounds re-stripping of markup revealed by entity decoding.
const maxTextPasses = 3

// Text removes all markup and returns plain text. Script-like elements lose
// their content; every other element keeps its text. Entities are decoded and
// the result is stripped again so encoded tags cannot survive.
func Text(s string) string {
	out := s
	for range maxTextPasses {
		next := stripOnce(out)
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}

func stripOnce(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip, consumed := 0, 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if skip == 0 {
				// A tail with attributes is a broken tag, not prose.
				if rest := unclosedTail(z, s, consumed); !strings.Contains(rest, "=") {
					b.WriteString(rest)
				}
			}
			return b.String()
		}
		consumed += len(z.Raw())
		switch tt {
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			if dropContent[z.Token().DataAtom] {
				skip++
			}
		case html.EndTagToken:
			if dropContent[z.Token().DataAtom] && skip > 0 {
				skip--
			}
		}
	}
}

// unclosedTail returns the input the tokenizer swallowed when it hit EOF
// inside a tag, as in "a<b and c". In form input that is a literal less-than.
func unclosedTail(z *html.Tokenizer, s string, consumed int) string {
	if z.Err() != io.EOF || consumed >= len(s) {
		return ""
	}
	return s[consumed:]
}

// RichText keeps the inline tag subset (p, br, b, strong, i, em, u, ul, ol,
// li, a) without attributes, except a sanitized href on links. Everything
// else is stripped as in Text and text is HTML-escaped.
func RichText(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip, consumed := 0, 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if skip == 0 {
				b.WriteString(html.EscapeString(unclosedTail(z, s, consumed)))
			}
			return strings.TrimSpace(b.String())
		}
		consumed += len(z.Raw())
		tok := z.Token()
		switch tt {
		case html.TextToken:
			if skip == 0 {
				b.WriteString(html.EscapeString(tok.Data))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			if dropContent[tok.DataAtom] {
				if tt == html.StartTagToken {
					skip++
				}
				continue
			}
			if skip > 0 || !richTags[tok.DataAtom] {
				continue
			}
			b.WriteString("<" + tok.DataAtom.String())
			if tok.DataAtom == atom.A {
				for _, attr := range tok.Attr {
					if attr.Key == "href" {
						if href := URL(attr.Val); href != "" {
							b.WriteString(` href="` + html.EscapeString(href) + `" rel="noopener noreferrer"`)
						}
					}
				}
			}
			b.WriteString(">")
		case html.EndTagToken:
			if dropContent[tok.DataAtom] {
				if skip > 0 {
					skip--
				}
				continue
			}
			if skip == 0 && richTags[tok.DataAtom] && tok.DataAtom != atom.Br {
				b.WriteString("</" + tok.DataAtom.String() + ">")
			}
		}
	}
}

var blockedURLSchemes = []string{"javascript:", "data:", "vbscript:", "blob:"}

// URL returns the markup-free link when it is absolute http(s) or a
// site-relative path, and "" for anything else.
func URL(s string) string {
	v := Text(s)
	// Browsers ignore embedded whitespace and control characters in schemes.
	compact := strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return -1
		}
		return r
	}, v))
	for _, scheme := range blockedURLSchemes {
		if strings.HasPrefix(compact, scheme) {
			return ""
		}
	}
	lower := strings.ToLower(v)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return v
	case strings.HasPrefix(compact, "/") && !strings.HasPrefix(compact, "//") && !strings.HasPrefix(compact, "/\\"):
		// Browsers read "//host" and "/\host" as another origin.
		return v
	}
	return ""
}

// Email strips markup and lowercases.
func Email(s string) string {
	return strings.ToLower(Text(s))
}

// Phone strips markup and keeps only digits, "+", "-", parentheses, periods and spaces.
func Phone(s string) string {
	kept := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case strings.ContainsRune("+-(). ", r):
			return r
		}
		return -1
	}, Text(s))
	return strings.TrimSpace(kept)
}
