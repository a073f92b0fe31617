package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wareflow/ruleengine/internal/action"
	"github.com/wareflow/ruleengine/internal/audit"
	"github.com/wareflow/ruleengine/internal/engine"
	"github.com/wareflow/ruleengine/internal/evaluation"
	"github.com/wareflow/ruleengine/internal/rule"
	"github.com/wareflow/ruleengine/internal/snapshot"
	"github.com/wareflow/ruleengine/internal/store"
	"github.com/wareflow/ruleengine/internal/validation"
)

// testRequest represents the request body for POST /v1/rules/{ruleID}/test
type testRequest struct {
	Context map[string]any `json:"context"`
	Execute bool           `json:"execute,omitempty"`
}

// testResponse represents the response for a single-rule test run
type testResponse struct {
	RuleID      string             `json:"ruleId"`
	Matched     bool               `json:"matched"`
	Actions     []actionResultView `json:"actions,omitempty"`
	EvaluatedAt string             `json:"evaluatedAt"`
}

type actionResultView struct {
	ActionID string `json:"actionId"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// triggerRequest represents the request body for POST /v1/trigger
type triggerRequest struct {
	Context map[string]any `json:"context"`
}

// handleTestRule handles POST /v1/rules/{ruleID}/test
//
// A test run evaluates the rule against the supplied context without
// touching the snapshot. Actions only run when execute=true, and disabled
// rules can be tested the same way as enabled ones.
func (s *Server) handleTestRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleID")

	doc, err := s.store.GetRule(r.Context(), ruleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFoundError(w, r, "rule not found: "+ruleID)
			return
		}
		InternalError(w, r, "failed to load rule")
		return
	}

	req, evalCtx, ok := s.decodeTestRequest(w, r)
	if !ok {
		return
	}

	var outcome evaluation.Outcome
	if req.Execute {
		outcome = s.svc.Run(r.Context(), *doc, evalCtx)
	} else {
		outcome = evaluation.Outcome{
			RuleID:  doc.RuleID,
			Matched: s.svc.Evaluate(*doc, evalCtx),
		}
	}

	writeJSON(w, http.StatusOK, testResponse{
		RuleID:      outcome.RuleID,
		Matched:     outcome.Matched,
		Actions:     actionViews(outcome.Actions),
		EvaluatedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleTrigger handles POST /v1/trigger
//
// Evaluates every rule in the current snapshot against the supplied context
// and executes the actions of matching rules. Action failures do not fail
// the request; they are reported per action in the response and recorded in
// the audit trail.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, validation.MaxContextSize+1))
	if err != nil {
		BadRequestError(w, r, ErrCodeBadRequest, "failed to read request body")
		return
	}
	if res := validation.ValidateContextSize(body); !res.Valid {
		RequestTooLargeError(w, r, "trigger context exceeds 256KB")
		return
	}

	var req triggerRequest
	if err := json.Unmarshal(body, &req); err != nil {
		BadRequestError(w, r, ErrCodeInvalidJSON, "invalid JSON")
		return
	}
	if req.Context == nil {
		BadRequestError(w, r, ErrCodeMissingField, "context is required")
		return
	}

	snap := snapshot.Load()
	rules := make([]rule.Rule, 0, len(snap.Rules))
	for _, doc := range snap.Rules {
		rules = append(rules, doc)
	}

	evalCtx := engine.MapContext(req.Context)
	outcomes := s.svc.Trigger(r.Context(), rules, evalCtx)

	if s.audit != nil {
		s.auditTrigger(outcomes)
	}

	writeJSON(w, http.StatusOK, evaluation.TriggerResponse{
		Outcomes:    outcomes,
		ETag:        snap.ETag,
		EvaluatedAt: time.Now().UTC(),
	})
}

// auditTrigger records one audit event per matched rule, listing the ids of
// any actions that failed.
func (s *Server) auditTrigger(outcomes []evaluation.Outcome) {
	for _, out := range outcomes {
		if !out.Matched {
			continue
		}
		var failed []string
		for _, res := range out.Actions {
			if res.Failed() {
				failed = append(failed, res.ActionID)
			}
		}
		status := audit.StatusSuccess
		if len(failed) > 0 {
			status = audit.StatusFailure
		}
		s.audit.Log(audit.Event{
			Action:        audit.ActionTriggered,
			ResourceType:  audit.ResourceTypeRule,
			ResourceID:    out.RuleID,
			Status:        status,
			FailedActions: failed,
		})
	}
}

func (s *Server) decodeTestRequest(w http.ResponseWriter, r *http.Request) (*testRequest, engine.MapContext, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, validation.MaxContextSize+1))
	if err != nil {
		BadRequestError(w, r, ErrCodeBadRequest, "failed to read request body")
		return nil, nil, false
	}
	if res := validation.ValidateContextSize(body); !res.Valid {
		RequestTooLargeError(w, r, "test context exceeds 256KB")
		return nil, nil, false
	}

	var req testRequest
	if err := json.Unmarshal(body, &req); err != nil {
		BadRequestError(w, r, ErrCodeInvalidJSON, "invalid JSON")
		return nil, nil, false
	}
	if req.Context == nil {
		BadRequestError(w, r, ErrCodeMissingField, "context is required")
		return nil, nil, false
	}

	return &req, engine.MapContext(req.Context), true
}

func actionViews(results []action.Result) []actionResultView {
	if len(results) == 0 {
		return nil
	}
	views := make([]actionResultView, len(results))
	for i, res := range results {
		views[i] = actionResultView{
			ActionID: res.ActionID,
			Status:   string(res.Status),
		}
		if res.Error != "" {
			views[i].Error = res.Error
		}
	}
	return views
}
