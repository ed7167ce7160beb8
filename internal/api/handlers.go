package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"
	"time"

	"botlint/internal/advice"
	"botlint/internal/aggregate"
	"botlint/internal/analyzer"
	"botlint/internal/engine"
	lerrors "botlint/internal/errors"
	"botlint/internal/history"
	"botlint/internal/issue"
	"botlint/internal/report"
	"botlint/internal/version"
)

const defaultHistoryLimit = 20

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	History   bool      `json:"history"`
}

// codeRequest is the JSON body accepted by /analyze and /improved-code.
type codeRequest struct {
	Code        json.RawMessage `json:"code"`
	Source      string          `json:"source"`
	MinSeverity string          `json:"min_severity"`
	Save        *bool           `json:"save"`
}

// AnalyzeResponse keeps the field names the web front end reads.
type AnalyzeResponse struct {
	Success                bool                 `json:"success"`
	HTMLReport             string               `json:"html_report"`
	Summary                report.Summary       `json:"summary"`
	RefactoringSuggestions []advice.Suggestion  `json:"refactoring_suggestions"`
	SecurityFixes          []advice.SecurityFix `json:"security_fixes"`
	ImprovedCode           string               `json:"improved_code"`
	RawAnalysis            *aggregate.Report    `json:"raw_analysis"`
	RunID                  string               `json:"run_id,omitempty"`
	Suppressed             int                  `json:"suppressed"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		History:   s.engine.History() != nil,
	}, http.StatusOK)
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	type rule struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	passes := analyzer.Passes()
	rules := make([]rule, len(passes))
	for i, p := range passes {
		rules[i] = rule{Name: p.Name, Description: p.Description}
	}
	WriteJSON(w, map[string]interface{}{"success": true, "rules": rules}, http.StatusOK)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, lintErr := s.readCodeRequest(w, r)
	if lintErr != nil {
		s.metrics.RecordError(string(lintErr.Code))
		WriteLintError(w, lintErr)
		return
	}

	res, err := s.engine.Analyze(r.Context(), req)
	if err != nil {
		s.metrics.RecordError(string(lerrors.CodeOf(err)))
		s.writeEngineError(w, err)
		return
	}

	html, summary, err := report.Render(res.Report)
	if err != nil {
		s.metrics.RecordError(string(lerrors.InternalError))
		InternalError(w, "failed to render report", err)
		return
	}
	s.metrics.RecordAnalysis("analyze", res, time.Since(start))

	WriteJSON(w, AnalyzeResponse{
		Success:                true,
		HTMLReport:             html,
		Summary:                summary,
		RefactoringSuggestions: advice.RefactoringSuggestions(),
		SecurityFixes:          advice.SecurityFixes(),
		ImprovedCode:           s.engine.Improve(req.Code),
		RawAnalysis:            res.Report,
		RunID:                  res.RunID,
		Suppressed:             res.Suppressed,
	}, http.StatusOK)
}

func (s *Server) handleImprovedCode(w http.ResponseWriter, r *http.Request) {
	req, lintErr := s.readCodeRequest(w, r)
	if lintErr != nil {
		s.metrics.RecordError(string(lintErr.Code))
		WriteLintError(w, lintErr)
		return
	}
	writeImproved(w, s.engine.Improve(req.Code))
}

// handleImprovedSample rewrites the code query parameter, or the configured
// sample source when the parameter is absent.
func (s *Server) handleImprovedSample(w http.ResponseWriter, r *http.Request) {
	code, ok := r.URL.Query()["code"]
	if ok {
		writeImproved(w, s.engine.Improve(code[0]))
		return
	}

	if s.cfg.SamplePath == "" {
		s.metrics.RecordError(string(lerrors.InvalidInput))
		WriteLintError(w, lerrors.New(lerrors.InvalidInput,
			"no code given and no sample configured (server.samplePath)", nil))
		return
	}
	data, err := os.ReadFile(s.cfg.SamplePath)
	if err != nil {
		s.metrics.RecordError(string(lerrors.StorageUnavailable))
		WriteLintError(w, lerrors.New(lerrors.StorageUnavailable, "failed to read the sample source", err))
		return
	}
	writeImproved(w, s.engine.Improve(string(data)))
}

func writeImproved(w http.ResponseWriter, code string) {
	WriteJSON(w, map[string]interface{}{
		"success":       true,
		"improved_code": code,
	}, http.StatusOK)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	store := s.engine.History()
	if store == nil {
		WriteLintError(w, historyDisabled())
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			BadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := store.List(r.Context(), limit)
	if err != nil {
		WriteLintError(w, lerrors.New(lerrors.StorageUnavailable, "failed to list runs", err))
		return
	}
	WriteJSON(w, map[string]interface{}{"success": true, "runs": runs}, http.StatusOK)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	store := s.engine.History()
	if store == nil {
		WriteLintError(w, historyDisabled())
		return
	}

	run, err := store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeRunError(w, r.PathValue("id"), err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		html, _, err := report.Render(run.Report, report.WithClock(func() time.Time { return run.CreatedAt }))
		if err != nil {
			InternalError(w, "failed to render report", err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, html)
		return
	}

	WriteJSON(w, map[string]interface{}{"success": true, "run": run}, http.StatusOK)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	store := s.engine.History()
	if store == nil {
		WriteLintError(w, historyDisabled())
		return
	}

	if err := store.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeRunError(w, r.PathValue("id"), err)
		return
	}
	WriteJSON(w, map[string]interface{}{"success": true}, http.StatusOK)
}

// readCodeRequest decodes a JSON or text/plain body into an engine request.
func (s *Server) readCodeRequest(w http.ResponseWriter, r *http.Request) (engine.Request, *lerrors.LintError) {
	req := engine.Request{Save: s.engine.History() != nil}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, lerrors.New(lerrors.InputTooLarge, "request body too large", nil).
				WithDetails(map[string]int64{"limit": tooLarge.Limit})
		}
		return req, lerrors.New(lerrors.InvalidInput, "failed to read request body", err)
	}

	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mediaType, _, err = mime.ParseMediaType(ct); err != nil {
			return req, lerrors.New(lerrors.UnsupportedFormat, "invalid Content-Type", err)
		}
	}

	switch mediaType {
	case "text/plain":
		q := r.URL.Query()
		req.Code = string(data)
		req.Source = q.Get("source")
		if v := q.Get("min_severity"); v != "" {
			sev, err := issue.ParseSeverity(v)
			if err != nil {
				return req, lerrors.New(lerrors.InvalidInput, err.Error(), nil)
			}
			req.MinSeverity = sev
		}
	case "application/json":
		var body codeRequest
		if err := json.Unmarshal(data, &body); err != nil {
			return req, lerrors.New(lerrors.InvalidInput, "request body is not valid JSON", err)
		}
		if len(body.Code) == 0 || string(body.Code) == "null" {
			return req, lerrors.New(lerrors.InvalidInput, "code is required", nil)
		}
		if err := json.Unmarshal(body.Code, &req.Code); err != nil {
			return req, lerrors.New(lerrors.InvalidInput, "code must be a string", nil)
		}
		req.Source = body.Source
		if body.MinSeverity != "" {
			sev, err := issue.ParseSeverity(body.MinSeverity)
			if err != nil {
				return req, lerrors.New(lerrors.InvalidInput, err.Error(), nil)
			}
			req.MinSeverity = sev
		}
		if body.Save != nil {
			req.Save = req.Save && *body.Save
		}
	default:
		return req, lerrors.New(lerrors.UnsupportedFormat, "unsupported Content-Type "+mediaType, nil)
	}

	if req.Source == "" {
		req.Source = "<request>"
	}
	return req, nil
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	var lintErr *lerrors.LintError
	if errors.As(err, &lintErr) {
		s.logger.Error("Analysis failed", "error", err.Error())
		WriteLintError(w, lintErr)
		return
	}
	InternalError(w, "analysis failed", err)
}

func writeRunError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, history.ErrNotFound):
		WriteLintError(w, lerrors.New(lerrors.RunNotFound, "run '"+id+"' not found", nil))
	case errors.Is(err, history.ErrAmbiguousID):
		WriteLintError(w, lerrors.New(lerrors.InvalidInput, "run id '"+id+"' matches more than one run", nil))
	default:
		WriteLintError(w, lerrors.New(lerrors.StorageUnavailable, "failed to load run", err))
	}
}

func historyDisabled() *lerrors.LintError {
	return lerrors.New(lerrors.StorageUnavailable, "run history is disabled", nil)
}
