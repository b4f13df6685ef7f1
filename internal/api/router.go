package api

import "net/http"

func Router(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", h.Health)

	mux.HandleFunc("POST /v1/subscribers", h.Enroll)
	mux.HandleFunc("POST /v1/subscribers/unsubscribe", h.Unsubscribe)

	mux.HandleFunc("POST /v1/run", h.RunNow)

	mux.HandleFunc("GET /v1/scheduler/status", h.SchedulerStatus)
	mux.HandleFunc("POST /v1/scheduler/start", h.SchedulerStart)
	mux.HandleFunc("POST /v1/scheduler/stop", h.SchedulerStop)

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("dripfeed"))
	})

	return mux
}
