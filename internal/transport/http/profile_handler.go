package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"web3-quiz-service/internal/app"
	"web3-quiz-service/internal/domain"
)

type ProfileHandler struct {
	profiles *app.ProfileService
}

func NewProfileHandler(profiles *app.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, r, domain.ErrNoIdentity)
		return
	}
	view, err := h.profiles.Profile(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// ClaimReward answers 501 for a well-formed claim while on-chain claiming is off.
func (h *ProfileHandler) ClaimReward(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, r, domain.ErrNoIdentity)
		return
	}
	rewardID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeFail(w, r, http.StatusBadRequest, ErrInvalidID, "invalid reward id", nil)
		return
	}
	if err := h.profiles.ClaimReward(r.Context(), id.ID, rewardID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]bool{"claimed": true})
}
