package feedback

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		sub    Submission
		fields []string
	}{
		{name: "valid", sub: Submission{Name: "Ada", Email: "ada@example.com", Message: "Hi"}},
		{name: "empty", sub: Submission{}, fields: []string{"name", "email", "message"}},
		{name: "bad email", sub: Submission{Name: "Ada", Email: "Ada <ada@example.com>", Message: "Hi"}, fields: []string{"email"}},
		{name: "too long", sub: Submission{Name: "Ada", Email: "ada@example.com", Message: strings.Repeat("ä", MaxMessageLength+1)}, fields: []string{"message"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.sub)
			if len(tc.fields) == 0 {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Len(t, verr.Fields, len(tc.fields))
			for _, f := range tc.fields {
				assert.Contains(t, verr.Fields, f)
			}
		})
	}
}

func TestSubmitAssignsReference(t *testing.T) {
	svc := NewService()
	r, err := svc.Submit(context.Background(), "10.0.0.1", "cv@example.com", Submission{
		Name:    "  Ada ",
		Email:   " ada@example.com ",
		Message: "Great site",
	})
	require.NoError(t, err)
	_, err = uuid.Parse(r.ID)
	assert.NoError(t, err)
	assert.False(t, r.ReceivedAt.IsZero())
}

func TestSubmitRateLimitsPerClient(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(WithClock(func() time.Time { return now }), WithRateLimit(2, time.Minute))
	sub := Submission{Name: "Ada", Email: "ada@example.com", Message: "Hi"}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Submit(ctx, "a", "", sub)
		require.NoError(t, err)
	}
	_, err := svc.Submit(ctx, "a", "", sub)
	assert.ErrorIs(t, err, ErrRateLimited)

	_, err = svc.Submit(ctx, "b", "", sub)
	assert.NoError(t, err, "limits are per client")

	_, err = svc.Submit(ctx, "a", "", Submission{})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr), "invalid posts are rejected before counting")

	now = now.Add(2 * time.Minute)
	_, err = svc.Submit(ctx, "a", "", sub)
	assert.NoError(t, err, "window expired")
}

func TestSubmitHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewService().Submit(ctx, "a", "", Submission{Name: "Ada", Email: "ada@example.com", Message: "Hi"})
	assert.ErrorIs(t, err, context.Canceled)
}
