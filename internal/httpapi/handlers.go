package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DoyleJ11/brawl-draft-tracker/internal/tracker"
	pub "github.com/DoyleJ11/brawl-draft-tracker/pkg/types"
	"go.uber.org/zap"
)

// Tracker is what the HTTP layer needs from the poll coordinator.
type Tracker interface {
	SetSession(ctx context.Context, bountyID, matchID string) (tracker.Snapshot, error)
	ClearSession()
	Current() tracker.Snapshot
	Phase() tracker.Phase
}

type handlers struct {
	tracker Tracker
	secret  string
	log     *zap.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetDraft serves the overlay's polling endpoint.
func (h *handlers) GetDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pub.NewDraft(h.tracker.Current()))
}

func (h *handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pub.NewSessionInfo(h.tracker.Current(), h.tracker.Phase()))
}

// SetMatch is the control submission: form fields match_id, bounty_id and,
// when a secret is configured, secret.
func (h *handlers) SetMatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	if !h.authorized(r.FormValue("secret")) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	bountyID := r.FormValue("bounty_id")
	matchID := r.FormValue("match_id")

	snap, err := h.tracker.SetSession(r.Context(), bountyID, matchID)
	if errors.Is(err, tracker.ErrInvalidSession) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.Error("setting session", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "could not set match")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Session pub.SessionInfo `json:"session"`
		Draft   pub.Draft       `json:"draft"`
	}{
		Session: pub.NewSessionInfo(snap, h.tracker.Phase()),
		Draft:   pub.NewDraft(snap),
	})
}

func (h *handlers) ClearSession(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get("X-Control-Secret")
	if secret == "" {
		secret = r.URL.Query().Get("secret")
	}
	if !h.authorized(secret) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.tracker.ClearSession()
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) authorized(given string) bool {
	if h.secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(h.secret)) == 1
}
