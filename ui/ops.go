package ui

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"veritas/domain/core"
	"veritas/domain/swarm"
	"veritas/ports"
)

// OpsApp is the audit-side HTTP app: health, stored runs, reports, and
// workbook export. Read-only against the verdict ledger.
type OpsApp struct {
	router    *chi.Mux
	reader    ports.VerdictReaderPort
	exportDir string
}

// NewOpsApp creates the ops application over a ledger reader. A nil reader
// leaves only the health endpoint active.
func NewOpsApp(reader ports.VerdictReaderPort, exportDir string) *OpsApp {
	a := &OpsApp{
		router:    chi.NewRouter(),
		reader:    reader,
		exportDir: exportDir,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

func (a *OpsApp) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *OpsApp) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)
	if a.reader == nil {
		return
	}
	a.router.Get("/api/verdicts", a.handleListVerdicts)
	a.router.Get("/api/verdicts/{id}", a.handleGetVerdict)
	a.router.Get("/api/verdicts/{id}/report", a.handleVerdictReport)
	a.router.Post("/api/verdicts/{id}/export", a.handleVerdictExport)
}

// Run starts the ops app on the given port
func (a *OpsApp) Run(port string) error {
	log.Printf("[ui] ops server listening on :%s", port)
	return http.ListenAndServe(":"+port, a.router)
}

func (a *OpsApp) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *OpsApp) handleListVerdicts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	verdicts, err := a.reader.ListVerdicts(r.Context(), limit, offset)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, verdicts)
}

func (a *OpsApp) handleGetVerdict(w http.ResponseWriter, r *http.Request) {
	verdict, err := a.loadVerdict(r)
	if err != nil {
		writeJSONError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}

func (a *OpsApp) handleVerdictReport(w http.ResponseWriter, r *http.Request) {
	verdict, err := a.loadVerdict(r)
	if err != nil {
		writeJSONError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(RenderReportHTML(verdict))
}

func (a *OpsApp) handleVerdictExport(w http.ResponseWriter, r *http.Request) {
	verdict, err := a.loadVerdict(r)
	if err != nil {
		writeJSONError(w, statusFor(err), err)
		return
	}
	path, err := ExportWorkbook(verdict, a.exportDir)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

func (a *OpsApp) loadVerdict(r *http.Request) (*swarm.VerdictDistribution, error) {
	runID, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	return a.reader.GetVerdict(r.Context(), runID)
}

func statusFor(err error) int {
	if core.IsNotFoundError(err) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
