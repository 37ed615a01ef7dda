// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/clinic-booking/internal/handler"
	"github.com/unclebandit/clinic-booking/internal/model"
	"github.com/unclebandit/clinic-booking/internal/service"
)

// IdempotencyKeyHeader lets a client retry a create without producing a
// second campaign.
const IdempotencyKeyHeader = "Idempotency-Key"

type CampaignController struct {
	CampaignService *service.CampaignService
}

func (c *CampaignController) Register(r chi.Router) {
	r.Post("/campaigns", c.CreateCampaign)
	r.Get("/campaigns", c.ListCampaigns)
	r.Post("/campaigns/{id}/send", c.SendCampaign)
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body model.CampaignDraft
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handler.Detail(w, http.StatusBadRequest, "invalid body")
		return
	}

	campaign, created, err := c.CampaignService.CreateCampaign(
		r.Context(), body, r.Header.Get(IdempotencyKeyHeader), r.Header.Get("X-User-ID"))
	if err != nil {
		handler.WriteError(w, err)
		return
	}

	if !created {
		log.Println("♻️ Returning existing campaign for repeated create:", campaign.ID)
		handler.WriteJSON(w, http.StatusOK, campaign)
		return
	}
	log.Println("📝 Campaign created:", campaign.ID)
	handler.WriteJSON(w, http.StatusCreated, campaign)
}

// ListCampaigns answers with every campaign as a JSON array. With page or
// page_size on the query it answers one page wrapped in {data, pagination}.
func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")

	if !q.Has("page") && !q.Has("page_size") {
		campaigns, err := c.CampaignService.AllCampaigns(r.Context(), status)
		if err != nil {
			handler.WriteError(w, err)
			return
		}
		handler.WriteJSON(w, http.StatusOK, campaigns)
		return
	}

	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	campaigns, pagination, err := c.CampaignService.ListCampaigns(r.Context(), page, pageSize, status)
	if err != nil {
		handler.WriteError(w, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":       campaigns,
		"pagination": pagination,
	})
}

func (c *CampaignController) SendCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var maxRecipients *int
	if raw := r.URL.Query().Get("max_recipients"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			handler.Detail(w, http.StatusBadRequest, "max_recipients must be a whole number")
			return
		}
		maxRecipients = &n
	}

	result, err := c.CampaignService.SendCampaign(r.Context(), id, maxRecipients)
	if err != nil {
		handler.WriteError(w, err)
		return
	}

	log.Printf("📤 Campaign %s queued for %d of %d eligible patients\n", id, result.SentCount, result.Eligible)
	handler.WriteJSON(w, http.StatusOK, result)
}
