package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kfarkas-hq/dripfeed/internal/campaign"
	"github.com/kfarkas-hq/dripfeed/internal/model"
	"github.com/kfarkas-hq/dripfeed/internal/repo"
	"github.com/kfarkas-hq/dripfeed/internal/scheduler"
)

type Enroller interface {
	HandleSignup(ctx context.Context, sig model.Signup) (bool, error)
}

type BatchRunner interface {
	Run(ctx context.Context) (campaign.Summary, error)
}

type Handler struct {
	enroller Enroller
	runner   BatchRunner
	sched    *scheduler.Scheduler
	subs     repo.SubscriberStore
}

func NewHandler(enroller Enroller, runner BatchRunner, sched *scheduler.Scheduler, subs repo.SubscriberStore) *Handler {
	return &Handler{enroller: enroller, runner: runner, sched: sched, subs: subs}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	var sig model.Signup
	if err := json.NewDecoder(r.Body).Decode(&sig); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	accepted, err := h.enroller.HandleSignup(r.Context(), sig)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !accepted {
		// Missing email is a silent no-op, not an error.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"email": sig.Email})
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	err := h.subs.SetUnsubscribed(r.Context(), email)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "unknown subscriber", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"email": email, "unsubscribed": true})
}

func (h *Handler) RunNow(w http.ResponseWriter, r *http.Request) {
	sum, err := h.runner.Run(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"running": h.sched.IsRunning(),
		"jobs":    h.sched.Names(),
	})
}

func (h *Handler) SchedulerStart(w http.ResponseWriter, r *http.Request) {
	h.sched.Start()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sched.IsRunning()})
}

func (h *Handler) SchedulerStop(w http.ResponseWriter, r *http.Request) {
	h.sched.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sched.IsRunning()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
