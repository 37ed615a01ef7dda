package client

import (
	"context"
	"errors"
	"net/http"

	appErrors "github.com/unclebandit/clinic-booking/internal/errors"
	"github.com/unclebandit/clinic-booking/internal/model"
)

// OTPSent acknowledges an OTP request. The code itself only travels over
// the out-of-band channel, so it has no field here even if a backend echoes it.
type OTPSent struct {
	Message string `json:"message"`
}

// AuthResult is the answer of a successful login.
type AuthResult struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

func (c *Client) SendOTP(ctx context.Context, phone string) (*OTPSent, error) {
	var out OTPSent
	r := c.request(ctx).SetBody(map[string]string{"phone": phone}).SetResult(&out)
	if err := c.execute(r, http.MethodPost, "/auth/send-otp"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyOTP(ctx context.Context, phone, otp string) (*AuthResult, error) {
	var out AuthResult
	r := c.request(ctx).SetBody(map[string]string{"phone": phone, "otp": otp}).SetResult(&out)
	if err := credentials(c.execute(r, http.MethodPost, "/auth/verify-otp")); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminLogin(ctx context.Context, username, password string) (*AuthResult, error) {
	var out AuthResult
	r := c.request(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&out)
	if err := credentials(c.execute(r, http.MethodPost, "/auth/admin/login")); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, userID, current, next string) error {
	r := c.request(ctx).SetBody(map[string]string{
		"user_id":          userID,
		"current_password": current,
		"new_password":     next,
	})
	return credentials(c.execute(r, http.MethodPut, "/admin/change-password"))
}

// credentials folds every client-side rejection into ErrInvalidCredentials
// so a wrong code, an expired code and an unknown phone look the same.
func credentials(err error) error {
	var apiErr *appErrors.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return appErrors.ErrInvalidCredentials
	}
	return err
}
