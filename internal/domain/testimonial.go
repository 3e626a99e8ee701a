package domain

// Testimonial is a customer review. Only approved testimonials are shown publicly.
type Testimonial struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customerName"`
	Text         string    `json:"testimonialText"`
	Rating       int       `json:"rating"` // 1..5
	TripType     string    `json:"tripType"`
	PhotoURL     string    `json:"photoUrl"`
	IsApproved   bool      `json:"isApproved"`
	CreatedAt    Timestamp `json:"createdAt"`
}
