package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pkordes/driftboat/internal/domain"
)

// defaultMaxGuests caps guest count when the trip's capacity is unknown.
const defaultMaxGuests = 20

// TripForm holds the raw values of the admin trip editor.
// Numeric fields are float64 so fractional or out-of-range input reaches
// validation instead of failing JSON decoding.
type TripForm struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Price       float64  `json:"price"` // minor units
	MaxGuests   float64  `json:"maxGuests"`
	Difficulty  string   `json:"difficulty"`
	Photos      []string `json:"photos"`
	Equipment   []string `json:"includedEquipment"`
	Location    string   `json:"location"`
	IsActive    bool     `json:"isActive"`
}

// Trip validates the trip editor form.
func Trip(f TripForm) domain.FieldErrors {
	errs := domain.FieldErrors{}
	errs.Set("title", TextLength(f.Title, "Title", 2, 200, true))
	errs.Set("description", TextLength(f.Description, "Description", 10, 5000, true))
	errs.Set("duration", TextLength(f.Duration, "Duration", 1, 100, true))
	errs.Set("price", Number(f.Price, "Price", Integer(), Min(1), Max(10_000_000)))
	errs.Set("maxGuests", Number(f.MaxGuests, "Max guests", Integer(), Min(1), Max(50)))
	if !domain.Difficulty(f.Difficulty).Valid() {
		errs.Set("difficulty", "Difficulty must be Beginner, Intermediate or Advanced")
	}
	errs.Set("location", TextLength(f.Location, "Location", 2, 200, true))
	for i, photo := range f.Photos {
		errs.Set(fmt.Sprintf("photos[%d]", i), URL(photo))
	}
	return errs
}

// TestimonialForm holds the raw values of a testimonial submission.
type TestimonialForm struct {
	CustomerName string  `json:"customerName"`
	Rating       float64 `json:"rating"`
	Text         string  `json:"testimonialText"`
	TripType     string  `json:"tripType"`
	PhotoURL     string  `json:"photoUrl"`
}

// Testimonial validates a testimonial submission.
func Testimonial(f TestimonialForm) domain.FieldErrors {
	errs := domain.FieldErrors{}
	errs.Set("customerName", Name(f.CustomerName))
	errs.Set("rating", Number(f.Rating, "Rating", Integer(), Min(1), Max(5)))
	errs.Set("testimonialText", TextLength(f.Text, "Testimonial", 20, 2000, true))
	errs.Set("tripType", TextLength(f.TripType, "Trip type", 2, 100, true))
	errs.Set("photoUrl", URL(f.PhotoURL))
	return errs
}

// BookingForm holds the raw values of the public booking form.
type BookingForm struct {
	TripID          string  `json:"tripId"`
	GuestName       string  `json:"guestName"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	PreferredDate   string  `json:"preferredDate"`
	GuestCount      float64 `json:"guestCount"`
	SpecialRequests string  `json:"specialRequests"`
}

// Booking validates a booking request against the selected trip's capacity.
// A maxGuests of zero means the capacity is unknown and defaults to 20.
func Booking(f BookingForm, maxGuests int, now time.Time) domain.FieldErrors {
	if maxGuests <= 0 {
		maxGuests = defaultMaxGuests
	}
	errs := domain.FieldErrors{}
	errs.Set("tripId", Required(f.TripID, "Trip"))
	errs.Set("guestName", Name(f.GuestName))
	errs.Set("email", Email(f.Email))
	errs.Set("phone", Phone(f.Phone))
	errs.Set("preferredDate", Date(f.PreferredDate, "Preferred date", now, NotPast(), NotAfter(now.AddDate(1, 0, 0))))
	errs.Set("guestCount", Number(f.GuestCount, "Guest count", Integer(), Min(1), Max(float64(maxGuests))))
	errs.Set("specialRequests", TextLength(f.SpecialRequests, "Special requests", 0, 2000, false))
	return errs
}

// ResourceForm holds the raw values of the admin resource editor.
type ResourceForm struct {
	Title      string        `json:"title"`
	Body       string        `json:"body"`
	Blocks     domain.Blocks `json:"blocks"`
	CategoryID string        `json:"categoryId"`
	IsVisible  bool          `json:"isVisible"`
}

// Resource validates the resource editor form, including every content block.
func Resource(f ResourceForm) domain.FieldErrors {
	errs := domain.FieldErrors{}
	errs.Set("title", TextLength(f.Title, "Title", 2, 200, true))
	errs.Set("categoryId", Required(f.CategoryID, "Category"))
	errs.Set("body", TextLength(f.Body, "Body", 0, 20000, false))
	if strings.TrimSpace(f.Body) == "" && len(f.Blocks) == 0 {
		errs.Set("blocks", "Add some content to the resource")
	}
	for i, b := range f.Blocks {
		errs.Set(fmt.Sprintf("blocks[%d]", i), Block(b))
	}
	return errs
}

// Block validates a single content block by variant.
func Block(b domain.ContentBlock) string {
	switch v := b.(type) {
	case domain.HeadingBlock:
		if v.Level < 1 || v.Level > 6 {
			return "Heading level must be between 1 and 6"
		}
		return TextLength(v.Text, "Heading", 1, 200, true)
	case domain.ParagraphBlock:
		return TextLength(v.Text, "Paragraph", 1, 5000, true)
	case domain.ListBlock:
		if len(v.Items) == 0 {
			return "List must have at least one item"
		}
		for _, item := range v.Items {
			if msg := TextLength(item, "List item", 1, 500, true); msg != "" {
				return msg
			}
		}
		return ""
	case domain.ImageBlock:
		if msg := Required(v.URL, "Image URL"); msg != "" {
			return msg
		}
		if msg := URL(v.URL); msg != "" {
			return msg
		}
		return TextLength(v.Alt, "Alt text", 0, 200, false)
	case nil:
		return "Block is empty"
	default:
		return fmt.Sprintf("Unsupported block %T", b)
	}
}

// CategoryForm holds the raw values of the admin category editor.
type CategoryForm struct {
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	SortOrder float64 `json:"sortOrder"`
}

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Category validates the category editor form. An empty slug is allowed and
// is derived from the name by the caller.
func Category(f CategoryForm) domain.FieldErrors {
	errs := domain.FieldErrors{}
	errs.Set("name", TextLength(f.Name, "Name", 2, 100, true))
	if s := strings.TrimSpace(f.Slug); s != "" {
		if msg := TextLength(s, "Slug", 2, 100, true); msg != "" {
			errs.Set("slug", msg)
		} else if !slugRe.MatchString(s) {
			errs.Set("slug", "Slug can only contain lowercase letters, digits and single hyphens")
		}
	}
	errs.Set("sortOrder", Number(f.SortOrder, "Sort order", Integer(), Min(0), Max(10_000)))
	return errs
}
