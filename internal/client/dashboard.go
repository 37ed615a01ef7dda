package client

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/unclebandit/clinic-booking/internal/model"
)

func (c *Client) Stats(ctx context.Context) (*model.Stats, error) {
	var out model.Stats
	if err := c.execute(c.request(ctx).SetResult(&out), http.MethodGet, "/stats"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListAppointments(ctx context.Context, f model.AppointmentFilter) ([]model.Appointment, error) {
	var out []model.Appointment
	r := c.request(ctx).SetResult(&out)
	if f.Status != "" {
		r.SetQueryParam("status", string(f.Status))
	}
	if f.PatientID != "" {
		r.SetQueryParam("patient_id", f.PatientID)
	}
	if f.PatientPhone != "" {
		r.SetQueryParam("patient_phone", f.PatientPhone)
	}
	if err := c.execute(r, http.MethodGet, "/appointments"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAppointment(ctx context.Context, a model.AppointmentCreate) (*model.Appointment, error) {
	var out model.Appointment
	if err := c.execute(c.request(ctx).SetBody(a).SetResult(&out), http.MethodPost, "/appointments"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAppointment(ctx context.Context, id string, u model.AppointmentUpdate) (*model.Appointment, error) {
	var out model.Appointment
	r := c.request(ctx).SetPathParam("id", id).SetBody(u).SetResult(&out)
	if err := c.execute(r, http.MethodPut, "/appointments/{id}"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	var out []model.Doctor
	if err := c.execute(c.request(ctx).SetResult(&out), http.MethodGet, "/doctors"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteDoctor(ctx context.Context, id string) error {
	return c.execute(c.request(ctx).SetPathParam("id", id), http.MethodDelete, "/doctors/{id}")
}

func (c *Client) ListServices(ctx context.Context) ([]model.Service, error) {
	var out []model.Service
	if err := c.execute(c.request(ctx).SetResult(&out), http.MethodGet, "/services"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteService(ctx context.Context, id string) error {
	return c.execute(c.request(ctx).SetPathParam("id", id), http.MethodDelete, "/services/{id}")
}

// Dashboard is what the admin overview shows.
type Dashboard struct {
	Stats        *model.Stats
	Appointments []model.Appointment
	Campaigns    []model.Campaign
}

// Refresh loads the admin overview. The three calls run concurrently and the
// first failure cancels the rest.
func (c *Client) Refresh(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		stats, err := c.Stats(ctx)
		d.Stats = stats
		return err
	})
	eg.Go(func() error {
		appts, err := c.ListAppointments(ctx, model.AppointmentFilter{})
		d.Appointments = appts
		return err
	})
	eg.Go(func() error {
		campaigns, err := c.ListCampaigns(ctx)
		d.Campaigns = campaigns
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
