package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/7Spidy/foodinsight-ai/internal/artifact"
	"github.com/7Spidy/foodinsight-ai/internal/pipeline"
)

// ReportStore abstracts the artifact store for the HTTP layer.
type ReportStore interface {
	ListReports() ([]artifact.ReportInfo, error)
	OpenReport(name string) ([]byte, error)
}

// Deps holds dependencies for the HTTP status surface.
type Deps struct {
	History *pipeline.History
	Reports ReportStore
}

// NewHandler returns the serve-mode HTTP handler: health, run status,
// and read-only access to rendered reports.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", handleHealth)
	r.Get("/status", handleStatus(deps))
	r.Get("/runs", handleRuns(deps))
	r.Get("/reports", handleListReports(deps))
	r.Get("/reports/{name}", handleGetReport(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// StatusResponse is the /status payload. LastRun is omitted until the
// first batch completes.
type StatusResponse struct {
	State   string               `json:"state"`
	LastRun *pipeline.RunSummary `json:"last_run,omitempty"`
}

func handleStatus(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{State: "idle"}
		if last, ok := deps.History.Latest(); ok {
			resp.State = "ok"
			resp.LastRun = &last
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleRuns(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs := deps.History.Recent()
		if runs == nil {
			runs = []pipeline.RunSummary{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(runs)
	}
}

func handleListReports(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reports, err := deps.Reports.ListReports()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list reports: %v", err)
			return
		}
		if reports == nil {
			reports = []artifact.ReportInfo{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reports)
	}
}

func handleGetReport(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		data, err := deps.Reports.OpenReport(name)
		if err != nil {
			// Bad names and missing files both read as not found;
			// the store never discloses paths.
			httpError(w, http.StatusNotFound, "not_found", "report not found")
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
		w.Write(data)
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
