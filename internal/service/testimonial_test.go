package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/driftboat/internal/domain"
	"github.com/pkordes/driftboat/internal/repo"
	"github.com/pkordes/driftboat/internal/service"
	"github.com/pkordes/driftboat/internal/validate"
	"github.com/pkordes/driftboat/testutil"
)

func validTestimonialForm() validate.TestimonialForm {
	return validate.TestimonialForm{
		CustomerName: "Joan Wulff",
		Rating:       5,
		Text:         "Best day on the water I have had in years.",
		TripType:     "Full Day Float",
	}
}

func TestTestimonialService_Submit_StartsUnapproved(t *testing.T) {
	var buf bytes.Buffer
	svc := service.NewTestimonialService(echoRepo[domain.Testimonial](), discardLogger(&buf))

	got, err := svc.Submit(context.Background(), validTestimonialForm())

	require.NoError(t, err)
	assert.False(t, got.IsApproved)
	assert.Equal(t, 5, got.Rating)
}

func TestTestimonialService_Submit_Invalid(t *testing.T) {
	var buf bytes.Buffer
	svc := service.NewTestimonialService(&mockRepo[domain.Testimonial]{}, discardLogger(&buf))

	f := validTestimonialForm()
	f.Rating = 0

	_, err := svc.Submit(context.Background(), f)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTestimonialService_Update_KeepsApproval(t *testing.T) {
	r := echoRepo[domain.Testimonial]()
	r.get = func(_ context.Context, id string) (domain.Testimonial, error) {
		return domain.Testimonial{ID: id, IsApproved: true}, nil
	}
	var buf bytes.Buffer
	svc := service.NewTestimonialService(r, discardLogger(&buf))

	got, err := svc.Update(context.Background(), "x", validTestimonialForm())

	require.NoError(t, err)
	assert.True(t, got.IsApproved)
}

func TestTestimonialService_ListApproved(t *testing.T) {
	ctx := context.Background()
	store := repo.NewSQLiteStore(testutil.NewSQLite(t))
	var buf bytes.Buffer
	svc := service.NewTestimonialService(repo.NewTestimonialRepo(store), discardLogger(&buf))

	// Stored timestamps have millisecond resolution.
	submit := func() domain.Testimonial {
		time.Sleep(2 * time.Millisecond)
		got, err := svc.Submit(ctx, validTestimonialForm())
		require.NoError(t, err)
		return got
	}
	first, second := submit(), submit()
	submit()

	_, err := svc.SetApproved(ctx, first.ID, true)
	require.NoError(t, err)
	_, err = svc.SetApproved(ctx, second.ID, true)
	require.NoError(t, err)

	got, err := svc.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID, "newest first")
	assert.Equal(t, first.ID, got[1].ID)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
