package campaign

import (
	"fmt"
	"strconv"
	"strings"

	appErrors "github.com/unclebandit/clinic-booking/internal/errors"
	"github.com/unclebandit/clinic-booking/internal/model"
)

type RecipientMode string

const (
	ModeAll     RecipientMode = "all"
	ModeLimited RecipientMode = "limited"
)

// RecipientSelection says whether a send reaches the whole audience or a
// random subset of Count distinct patients. Count is ignored in ModeAll.
type RecipientSelection struct {
	Mode  RecipientMode
	Count int
}

// All is the default selection.
var All = RecipientSelection{Mode: ModeAll}

// ParseSelection validates user input for the recipient step. raw is only
// read in limited mode.
func ParseSelection(mode RecipientMode, raw string) (RecipientSelection, error) {
	switch mode {
	case ModeAll, "":
		return All, nil
	case ModeLimited:
	default:
		return RecipientSelection{}, appErrors.NewValidation("recipient_mode", fmt.Sprintf("unknown mode %q", mode))
	}

	msg := fmt.Sprintf("enter a number of recipients between 1 and %d", model.MaxRecipientCap)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RecipientSelection{}, appErrors.NewValidation("max_recipients", msg)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > model.MaxRecipientCap {
		return RecipientSelection{}, appErrors.NewValidation("max_recipients", msg)
	}
	return RecipientSelection{Mode: ModeLimited, Count: n}, nil
}

// Cap is the max_recipients value to send, nil when every recipient is wanted.
func (s RecipientSelection) Cap() *int {
	if s.Mode != ModeLimited {
		return nil
	}
	n := s.Count
	return &n
}
