package sanitize

import (
	"context"
	"log/slog"
	"regexp"
)

// Finding is one suspicious pattern detected in raw input.
type Finding struct {
	Kind  string // "sql", "script", "event_handler", "template"
	Match string
}

var advisoryPatterns = []struct {
	kind string
	re   *regexp.Regexp
}{
	{"sql", regexp.MustCompile(`(?i)\b(union\s+(all\s+)?select|select\s+.+\s+from|insert\s+into|delete\s+from|drop\s+(table|database)|update\s+\w+\s+set|exec(ute)?\s*\(|alter\s+table)\b|'\s*or\s+'?\d+'?\s*=\s*'?\d+`)},
	{"script", regexp.MustCompile(`(?i)<\s*/?\s*script\b`)},
	{"event_handler", regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)},
	{"template", regexp.MustCompile(`\{\{.*?\}\}|\$\{.*?\}`)},
}

// maxLoggedMatch bounds how much of the offending input reaches the logs.
const maxLoggedMatch = 64

// Scan reports every suspicious pattern in raw. It never modifies the input.
func Scan(raw string) []Finding {
	var out []Finding
	for _, p := range advisoryPatterns {
		if m := p.re.FindString(raw); m != "" {
			if len(m) > maxLoggedMatch {
				m = m[:maxLoggedMatch]
			}
			out = append(out, Finding{Kind: p.kind, Match: m})
		}
	}
	return out
}

// Advise logs a warning for each finding in value. It never blocks the
// caller; it reports whether anything was found.
func Advise(ctx context.Context, log *slog.Logger, field, value string) bool {
	findings := Scan(value)
	for _, f := range findings {
		log.WarnContext(ctx, "suspicious input detected",
			"field", field,
			"kind", f.Kind,
			"match", f.Match,
		)
	}
	return len(findings) > 0
}
