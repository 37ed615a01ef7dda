package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	appErrors "github.com/unclebandit/clinic-booking/internal/errors"
)

// WriteJSON encodes body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Println("❌ Failed to encode response:", err)
	}
}

// WriteError maps err onto a status code and writes {"detail": ...}.
func WriteError(w http.ResponseWriter, err error) {
	var (
		validation *appErrors.ValidationError
		campaign   *appErrors.ErrCampaignNotFound
		notif      *appErrors.ErrNotificationNotFound
		notDraft   *appErrors.ErrCampaignNotDraft
	)

	switch {
	case errors.As(err, &validation):
		WriteJSON(w, http.StatusBadRequest, map[string]string{"detail": validation.Error()})
	case errors.As(err, &campaign), errors.As(err, &notif):
		WriteJSON(w, http.StatusNotFound, map[string]string{"detail": err.Error()})
	case errors.As(err, &notDraft):
		WriteJSON(w, http.StatusConflict, map[string]string{"detail": notDraft.Error()})
	default:
		log.Println("❌ Request failed:", err)
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"detail": "internal server error"})
	}
}

// Detail writes a plain {"detail": msg} answer.
func Detail(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"detail": msg})
}
