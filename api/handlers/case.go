package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/casetrack-api/api"
	"github.com/linesmerrill/casetrack-api/cases"
	"github.com/linesmerrill/casetrack-api/config"
	"github.com/linesmerrill/casetrack-api/models"
)

// Case exposes the case repository over HTTP
type Case struct {
	Cases    cases.Repository
	Validate *Validator
}

// CreateCaseHandler files a new case for the calling victim
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := api.PrincipalFrom(r.Context())

	var req models.CreateCaseRequest
	if err := decodeBody(r, &req, c.Validate); err != nil {
		errorResponse("invalid case", w, err)
		return
	}

	in := cases.CreateInput{
		VictimID:    p.ID,
		Type:        req.Type,
		Description: req.Description,
		Province:    req.Province,
		City:        req.City,
		Location:    req.Location,
		Anonymous:   req.Anonymous,
	}
	if req.IncidentDate != "" {
		// already validated by the datetime tag
		in.IncidentDate, _ = time.Parse(time.DateOnly, req.IncidentDate)
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	created, err := c.Cases.Create(ctx, in)
	if err != nil {
		errorResponse("failed to create case", w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// CasesHandler lists cases for the police and admin dashboards
func (c Case) CasesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := cases.Filter{
		Query:     q.Get("q"),
		Label:     q.Get("label"),
		OfficerID: q.Get("officer"),
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := c.Cases.List(ctx, f)
	if err != nil {
		errorResponse("failed to list cases", w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// MyCasesHandler lists the calling victim's cases
func (c Case) MyCasesHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := api.PrincipalFrom(r.Context())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := c.Cases.ListByVictim(ctx, p.ID)
	if err != nil {
		errorResponse("failed to list cases", w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CaseByIDHandler returns one case. Victims only see their own cases.
func (c Case) CaseByIDHandler(w http.ResponseWriter, r *http.Request) {
	found, ok := c.visibleCase(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// CaseReportHandler downloads the plain text report of a case
func (c Case) CaseReportHandler(w http.ResponseWriter, r *http.Request) {
	found, ok := c.visibleCase(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cases.ReportFilename(found)))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(cases.Report(found, time.Now())))
}

// UpdateStatusHandler moves a case to a new stage
func (c Case) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]
	p, _ := api.PrincipalFrom(r.Context())

	var req models.TransitionRequest
	if err := decodeBody(r, &req, c.Validate); err != nil {
		errorResponse("invalid status update", w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := c.Cases.Transition(ctx, caseID, req.Status, req.Note, p.ID)
	if err != nil {
		errorResponse("failed to update case status", w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// EscalateHandler raises a case to high priority
func (c Case) EscalateHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]
	p, _ := api.PrincipalFrom(r.Context())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := c.Cases.Escalate(ctx, caseID, p.ID)
	if err != nil {
		errorResponse("failed to escalate case", w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// AssignOfficerHandler sets the investigating officer of a case
func (c Case) AssignOfficerHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	var req models.AssignRequest
	if err := decodeBody(r, &req, c.Validate); err != nil {
		errorResponse("invalid officer assignment", w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := c.Cases.Assign(ctx, caseID, req.OfficerID)
	if err != nil {
		errorResponse("failed to assign officer", w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// StalledHandler flags or clears a case as stalled
func (c Case) StalledHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	var req models.StalledRequest
	if err := decodeBody(r, &req, c.Validate); err != nil {
		errorResponse("invalid stalled flag", w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := c.Cases.FlagStalled(ctx, caseID, req.Stalled)
	if err != nil {
		errorResponse("failed to flag case", w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// StatsHandler returns dashboard statistics
func (c Case) StatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	stats, err := c.Cases.Stats(ctx)
	if err != nil {
		errorResponse("failed to compute stats", w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// visibleCase loads the case named in the route and hides other victims'
// cases behind a not found response.
func (c Case) visibleCase(w http.ResponseWriter, r *http.Request) (models.Case, bool) {
	caseID := mux.Vars(r)["case_id"]
	p, _ := api.PrincipalFrom(r.Context())

	zap.S().Debugf("case_id: %v", caseID)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	found, err := c.Cases.Get(ctx, caseID)
	if err != nil {
		errorResponse("failed to get case by ID", w, err)
		return models.Case{}, false
	}
	if p.Role == models.RoleVictim && found.VictimID != p.ID {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, models.ErrNotFound)
		return models.Case{}, false
	}
	return found, true
}
