package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	appErrors "github.com/unclebandit/clinic-booking/internal/errors"
	"github.com/unclebandit/clinic-booking/internal/model"
)

// ErrNoSession is returned by profile calls made without a token.
var ErrNoSession = errors.New("not signed in")

// CreateReview rates a finished appointment from 1 to 5. An out of range
// rating never reaches the backend.
func (c *Client) CreateReview(ctx context.Context, rv model.ReviewCreate) (*model.Review, error) {
	if rv.Rating < model.MinRating || rv.Rating > model.MaxRating {
		return nil, appErrors.NewValidation("rating", fmt.Sprintf("rating must be between %d and %d", model.MinRating, model.MaxRating))
	}
	if strings.TrimSpace(rv.AppointmentID) == "" {
		return nil, appErrors.NewValidation("appointment_id", "appointment is required")
	}
	var out model.Review
	if err := c.execute(c.request(ctx).SetBody(rv).SetResult(&out), http.MethodPost, "/reviews"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListReviews returns the reviews of one appointment, or all reviews when
// appointmentID is empty.
func (c *Client) ListReviews(ctx context.Context, appointmentID string) ([]model.Review, error) {
	var out []model.Review
	r := c.request(ctx).SetResult(&out)
	if appointmentID != "" {
		r.SetQueryParam("appointment_id", appointmentID)
	}
	if err := c.execute(r, http.MethodGet, "/reviews"); err != nil {
		return nil, err
	}
	return out, nil
}

// Profile fetches the signed-in user. The backend reads the token from the
// query string.
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	r, err := c.profileRequest(ctx)
	if err != nil {
		return nil, err
	}
	var out model.User
	if err := c.execute(r.SetResult(&out), http.MethodGet, "/users/me"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile sets the name or the push token of the signed-in user.
func (c *Client) UpdateProfile(ctx context.Context, u model.ProfileUpdate) (*model.User, error) {
	r, err := c.profileRequest(ctx)
	if err != nil {
		return nil, err
	}
	if u.Name != "" {
		r.SetQueryParam("name", u.Name)
	}
	if u.FCMToken != "" {
		r.SetQueryParam("fcm_token", u.FCMToken)
	}
	var out model.User
	if err := c.execute(r.SetResult(&out), http.MethodPut, "/users/me"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) profileRequest(ctx context.Context) (*resty.Request, error) {
	if c.tokens == nil || c.tokens.Token() == "" {
		return nil, ErrNoSession
	}
	return c.request(ctx).SetQueryParam("token", c.tokens.Token()), nil
}
