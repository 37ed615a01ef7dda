// internal/handler/campaign_handler.go
package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/clinic-booking/internal/model"
	"github.com/unclebandit/clinic-booking/internal/service"
)

// CampaignHandler serves the read side of campaigns plus patient notifications.
type CampaignHandler struct {
	Service *service.CampaignService
}

func NewCampaignHandler(svc *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{Service: svc}
}

// Register mounts the handler's routes.
func (h *CampaignHandler) Register(r chi.Router) {
	r.Get("/campaigns/audience/{category}", h.AudienceSizeHandler)
	r.Get("/campaigns/{id}", h.GetCampaignHandlerWithStats)
	r.Get("/notifications", h.ListNotificationsHandler)
	r.Put("/notifications/{id}/read", h.MarkReadHandler)
}

func (h *CampaignHandler) GetCampaignHandlerWithStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	details, err := h.Service.GetCampaignDetailsWithStats(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, details)
}

// AudienceSizeHandler reports how many patients a segment resolves to right now.
func (h *CampaignHandler) AudienceSizeHandler(w http.ResponseWriter, r *http.Request) {
	audience := model.Audience(chi.URLParam(r, "category"))

	size, err := h.Service.AudienceSize(r.Context(), audience)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, size)
}

func (h *CampaignHandler) ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.Service.ListNotifications(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, notifications)
}

func (h *CampaignHandler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Service.MarkNotificationRead(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	log.Println("📬 Notification read:", id)
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}
