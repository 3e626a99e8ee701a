// Package validate checks raw form values against the site's acceptance rules.
// Field validators return "" when the value is valid, or a single
// human-readable message. Form validators return a domain.FieldErrors holding
// only the fields that failed.
package validate

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkordes/driftboat/internal/domain"
)

const (
	maxEmailLength = 254
	maxURLLength   = 2048
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

var (
	nameRe  = regexp.MustCompile(`^[\p{L}\s\-'.]+$`)
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRe = regexp.MustCompile(`^\+?[\d\s\-().]+$`)
)

// blockedSchemes may never appear in a user-supplied link.
var blockedSchemes = []string{"javascript:", "data:", "vbscript:"}

// Required reports an error when value is empty or whitespace only.
func Required(value, label string) string {
	if strings.TrimSpace(value) == "" {
		return label + " is required"
	}
	return ""
}

// Name accepts 2..100 characters of letters, spaces, hyphens, apostrophes and periods.
func Name(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return "Name is required"
	}
	n := utf8.RuneCountInString(v)
	if n < 2 {
		return "Name must be at least 2 characters"
	}
	if n > 100 {
		return "Name must be no more than 100 characters"
	}
	if !nameRe.MatchString(v) {
		return "Name can only contain letters, spaces, hyphens, apostrophes and periods"
	}
	return ""
}

// Email accepts a conventional address of at most 254 characters whose
// domain contains a dot and ends in a label of two or more characters.
func Email(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return "Email is required"
	}
	if len(v) > maxEmailLength {
		return fmt.Sprintf("Email must be no more than %d characters", maxEmailLength)
	}
	if !emailRe.MatchString(v) {
		return "Please enter a valid email address"
	}
	domainPart := v[strings.LastIndex(v, "@")+1:]
	dot := strings.LastIndex(domainPart, ".")
	if dot <= 0 || len(domainPart)-dot-1 < 2 {
		return "Please enter a valid email address"
	}
	return ""
}

// Phone accepts 10..15 digits, ignoring separators and a leading "+".
func Phone(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return "Phone number is required"
	}
	digits := 0
	for _, r := range v {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return fmt.Sprintf("Phone number must contain %d to %d digits", minPhoneDigits, maxPhoneDigits)
	}
	if !phoneRe.MatchString(v) {
		return "Please enter a valid phone number"
	}
	return ""
}

// URL validates an optional link. An empty value is valid.
func URL(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if len(v) > maxURLLength {
		return fmt.Sprintf("URL must be no more than %d characters", maxURLLength)
	}
	lower := strings.ToLower(v)
	for _, scheme := range blockedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "URL scheme is not allowed"
		}
	}
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return "URL must start with http:// or https://"
	}
	u, err := url.Parse(v)
	if err != nil || !strings.Contains(u.Hostname(), ".") {
		return "Please enter a valid URL"
	}
	return ""
}

// NumberOption adds a constraint to Number.
type NumberOption func(*numberRule)

type numberRule struct {
	min, max       float64
	hasMin, hasMax bool
	integer        bool
}

// Min requires the value to be at least n.
func Min(n float64) NumberOption {
	return func(r *numberRule) { r.min, r.hasMin = n, true }
}

// Max requires the value to be at most n.
func Max(n float64) NumberOption {
	return func(r *numberRule) { r.max, r.hasMax = n, true }
}

// Integer requires the value to be a whole number.
func Integer() NumberOption {
	return func(r *numberRule) { r.integer = true }
}

// Number checks that value is finite and satisfies every option.
func Number(value float64, label string, opts ...NumberOption) string {
	var r numberRule
	for _, opt := range opts {
		opt(&r)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return label + " must be a valid number"
	}
	if r.integer && value != math.Trunc(value) {
		return label + " must be a whole number"
	}
	if r.hasMin && value < r.min {
		return fmt.Sprintf("%s must be at least %s", label, formatNumber(r.min))
	}
	if r.hasMax && value > r.max {
		return fmt.Sprintf("%s must be no more than %s", label, formatNumber(r.max))
	}
	return ""
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// DateOption adds a constraint to Date.
type DateOption func(*dateRule)

type dateRule struct {
	notPast bool
	latest  *time.Time
}

// NotPast rejects dates before today (compared by calendar day).
func NotPast() DateOption {
	return func(r *dateRule) { r.notPast = true }
}

// NotAfter rejects dates later than the calendar day of latest.
func NotAfter(latest time.Time) DateOption {
	return func(r *dateRule) { r.latest = &latest }
}

// Date checks that value parses as a date and satisfies every option.
// now supplies "today" so callers control the clock.
func Date(value, label string, now time.Time, opts ...DateOption) string {
	var r dateRule
	for _, opt := range opts {
		opt(&r)
	}
	v := strings.TrimSpace(value)
	if v == "" {
		return label + " is required"
	}
	ts, err := domain.ParseTimestamp(v)
	if err != nil {
		return label + " must be a valid date"
	}
	day := domain.CivilDate(ts.Time())
	if r.notPast && day.Before(domain.CivilDate(now)) {
		return label + " cannot be in the past"
	}
	if r.latest != nil {
		latest := domain.CivilDate(*r.latest)
		if day.After(latest) {
			return fmt.Sprintf("%s must be on or before %s", label, latest.Format(time.DateOnly))
		}
	}
	return ""
}

// TextLength checks the trimmed character count of value against [min, max].
// An empty optional value is valid.
func TextLength(value, label string, min, max int, required bool) string {
	v := strings.TrimSpace(value)
	if v == "" {
		if required {
			return label + " is required"
		}
		return ""
	}
	n := utf8.RuneCountInString(v)
	if n < min {
		return fmt.Sprintf("%s must be at least %d characters", label, min)
	}
	if n > max {
		return fmt.Sprintf("%s must be no more than %d characters", label, max)
	}
	return ""
}
