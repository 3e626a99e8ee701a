package validate_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/driftboat/internal/validate"
)

func TestEmail(t *testing.T) {
	assert.Empty(t, validate.Email("user@example.com"))
	assert.Empty(t, validate.Email("first.last+flies@river.co.uk"))

	assert.NotEmpty(t, validate.Email("a@b.c"), "single-character TLD")
	assert.NotEmpty(t, validate.Email(""), "required")
	assert.NotEmpty(t, validate.Email("no-at-sign.com"))
	assert.NotEmpty(t, validate.Email("user@localhost"), "domain without a dot")
	assert.NotEmpty(t, validate.Email(strings.Repeat("a", 250)+"@example.com"), "over 254 chars")
}

func TestName(t *testing.T) {
	assert.Empty(t, validate.Name("Mary-Kate O'Neil"))
	assert.Empty(t, validate.Name("José Ñúñez Jr."))

	assert.Equal(t, "Name is required", validate.Name("   "))
	assert.Equal(t, "Name must be at least 2 characters", validate.Name(" A "))
	assert.NotEmpty(t, validate.Name(strings.Repeat("a", 101)))
	assert.NotEmpty(t, validate.Name("R2-D2"), "digits are not allowed")
	assert.NotEmpty(t, validate.Name("<b>Bob</b>"))
}

func TestPhone(t *testing.T) {
	assert.Empty(t, validate.Phone("(406) 555-0199"))
	assert.Empty(t, validate.Phone("+44 20 7946 0958"))
	assert.Empty(t, validate.Phone("406.555.0199"))

	assert.NotEmpty(t, validate.Phone(""))
	assert.NotEmpty(t, validate.Phone("555-0199"), "too few digits")
	assert.NotEmpty(t, validate.Phone("1234567890123456"), "too many digits")
	assert.NotEmpty(t, validate.Phone("406-555-0199 ext 4"), "letters are not phone-shaped")
}

func TestURL(t *testing.T) {
	assert.Empty(t, validate.URL(""), "optional")
	assert.Empty(t, validate.URL("https://cdn.example.com/trips/float.jpg"))

	assert.NotEmpty(t, validate.URL("javascript:alert(1)"))
	assert.NotEmpty(t, validate.URL("DATA:text/html;base64,xxx"))
	assert.NotEmpty(t, validate.URL("ftp://example.com/file"))
	assert.NotEmpty(t, validate.URL("http://localhost/x"), "hostname must contain a dot")
	assert.NotEmpty(t, validate.URL("https://example.com/"+strings.Repeat("a", 2048)))
}

func TestNumber(t *testing.T) {
	assert.Empty(t, validate.Number(3, "Guests", validate.Integer(), validate.Min(1), validate.Max(5)))

	assert.Equal(t, "Guests must be a whole number", validate.Number(2.5, "Guests", validate.Integer()))
	assert.Equal(t, "Guests must be at least 1", validate.Number(0, "Guests", validate.Min(1)))
	assert.Equal(t, "Guests must be no more than 5", validate.Number(6, "Guests", validate.Max(5)))
	assert.NotEmpty(t, validate.Number(math.NaN(), "Guests"))
	assert.NotEmpty(t, validate.Number(math.Inf(1), "Guests"))
}

func TestDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	maxDate := now.AddDate(1, 0, 0)

	assert.Empty(t, validate.Date("2026-03-10", "Date", now, validate.NotPast()), "today is allowed")
	assert.Empty(t, validate.Date("2027-03-10", "Date", now, validate.NotAfter(maxDate)), "exactly one year out")

	assert.Equal(t, "Date cannot be in the past", validate.Date("2026-03-09", "Date", now, validate.NotPast()))
	assert.Equal(t, "Date must be on or before 2027-03-10", validate.Date("2027-03-11", "Date", now, validate.NotAfter(maxDate)))
	assert.Equal(t, "Date must be a valid date", validate.Date("03/10/2026", "Date", now))
	assert.Equal(t, "Date must be a valid date", validate.Date("2026-02-30", "Date", now))
}

func TestTextLength(t *testing.T) {
	assert.Empty(t, validate.TextLength("", "Notes", 5, 10, false))
	assert.Equal(t, "Notes is required", validate.TextLength("  ", "Notes", 5, 10, true))
	assert.Equal(t, "Notes must be at least 5 characters", validate.TextLength(" abc ", "Notes", 5, 10, true))
	assert.Equal(t, "Notes must be no more than 10 characters", validate.TextLength("abcdefghijk", "Notes", 5, 10, true))
}
