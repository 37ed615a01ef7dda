// Package client talks to the clinic backend REST API under /api.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	appErrors "github.com/unclebandit/clinic-booking/internal/errors"
	"github.com/unclebandit/clinic-booking/internal/model"
)

const defaultTimeout = 30 * time.Second

// TokenSource supplies the bearer token for each request. An empty token
// sends no Authorization header.
type TokenSource interface {
	Token() string
}

type Client struct {
	http   *resty.Client
	tokens TokenSource
}

// New builds a client for baseURL, e.g. http://localhost:8080. tokens may be nil.
func New(baseURL string, tokens TokenSource) *Client {
	c := &Client{tokens: tokens}
	c.http = resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/api").
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json").
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if c.tokens == nil {
				return nil
			}
			if tok := c.tokens.Token(); tok != "" {
				r.SetAuthToken(tok)
			}
			return nil
		})
	return c
}

// errorBody is the backend's error envelope. detail is usually a string
// but validation failures can carry a list.
type errorBody struct {
	Detail any `json:"detail"`
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx).SetError(&errorBody{})
}

func (c *Client) execute(r *resty.Request, method, url string) error {
	resp, err := r.Execute(method, url)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	if resp.IsError() {
		return toAPIError(resp)
	}
	return nil
}

func toAPIError(resp *resty.Response) *appErrors.APIError {
	apiErr := &appErrors.APIError{StatusCode: resp.StatusCode()}
	body, ok := resp.Error().(*errorBody)
	if !ok || body.Detail == nil {
		return apiErr
	}
	switch d := body.Detail.(type) {
	case string:
		apiErr.Detail = d
	default:
		apiErr.Detail = fmt.Sprint(d)
	}
	return apiErr
}

// --- campaigns ---

// CreateCampaign posts a draft. A non-empty idempotencyKey is sent as the
// Idempotency-Key header; the backend answers a repeated key with the
// campaign it created first.
func (c *Client) CreateCampaign(ctx context.Context, draft model.CampaignDraft, idempotencyKey string) (*model.Campaign, error) {
	var out model.Campaign
	r := c.request(ctx).SetBody(draft).SetResult(&out)
	if idempotencyKey != "" {
		r.SetHeader("Idempotency-Key", idempotencyKey)
	}
	if err := c.execute(r, http.MethodPost, "/campaigns"); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendCampaign triggers the send. max_recipients is only on the URL when
// maxRecipients is set.
func (c *Client) SendCampaign(ctx context.Context, id string, maxRecipients *int) (*model.SendSummary, error) {
	var out model.SendSummary
	r := c.request(ctx).SetPathParam("id", id).SetResult(&out)
	if maxRecipients != nil {
		r.SetQueryParam("max_recipients", strconv.Itoa(*maxRecipients))
	}
	if err := c.execute(r, http.MethodPost, "/campaigns/{id}/send"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCampaigns fetches every campaign, newest first.
func (c *Client) ListCampaigns(ctx context.Context) ([]model.Campaign, error) {
	var out []model.Campaign
	if err := c.execute(c.request(ctx).SetResult(&out), http.MethodGet, "/campaigns"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AudienceSize(ctx context.Context, audience model.Audience) (*model.AudienceSize, error) {
	var out model.AudienceSize
	r := c.request(ctx).SetPathParam("category", string(audience)).SetResult(&out)
	if err := c.execute(r, http.MethodGet, "/campaigns/audience/{category}"); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- notifications ---

func (c *Client) ListNotifications(ctx context.Context, userID string) ([]model.Notification, error) {
	var out []model.Notification
	r := c.request(ctx).SetQueryParam("user_id", userID).SetResult(&out)
	if err := c.execute(r, http.MethodGet, "/notifications"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.execute(c.request(ctx).SetPathParam("id", id), http.MethodPut, "/notifications/{id}/read")
}
