package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wareflow/ruleengine/internal/audit"
	"github.com/wareflow/ruleengine/internal/rule"
	"github.com/wareflow/ruleengine/internal/store"
	"github.com/wareflow/ruleengine/internal/validation"
)

// maxRuleBody caps the request body for rule documents.
const maxRuleBody = 1 << 20 // 1MB

type listRulesResponse struct {
	Rules []rule.Rule `json:"rules"`
}

type upsertResponse struct {
	OK     bool   `json:"ok"`
	RuleID string `json:"ruleId"`
	ETag   string `json:"etag"`
}

type validateResponse struct {
	Valid  bool                   `json:"valid"`
	Errors []rule.ValidationError `json:"errors,omitempty"`
}

// handleListRules handles GET /v1/rules
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.store.ListRules(r.Context())
	if err != nil {
		InternalError(w, r, "failed to list rules")
		return
	}
	if rules == nil {
		rules = []rule.Rule{}
	}
	writeJSON(w, http.StatusOK, listRulesResponse{Rules: rules})
}

// handleGetRule handles GET /v1/rules/{ruleID}
func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, doc)
}

// handleUpsertRule handles PUT /v1/rules/{ruleID}
//
// The whole document is validated before it is stored. An invalid document
// can be saved as a disabled draft, but enabling a rule with validation
// errors is rejected so the snapshot only ever carries runnable rules.
func (s *Server) handleUpsertRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleID")

	doc, ok := s.decodeRule(w, r, ruleID)
	if !ok {
		return
	}

	errs := s.validator().Validate(*doc)
	if len(errs) > 0 && doc.Enabled {
		ValidationError(w, r, "cannot enable a rule with validation errors", fieldsFromValidation(errs))
		return
	}

	before, _ := s.store.GetRule(r.Context(), ruleID)
	if err := s.store.UpsertRule(r.Context(), *doc); err != nil {
		InternalError(w, r, "failed to store rule")
		return
	}

	if err := s.RebuildSnapshot(r.Context()); err != nil {
		InternalError(w, r, "snapshot rebuild failed")
		return
	}

	if s.audit != nil {
		act := audit.ActionCreated
		if before != nil {
			act = audit.ActionUpdated
		}
		s.audit.Log(audit.Event{
			Action:       act,
			ResourceType: audit.ResourceTypeRule,
			ResourceID:   ruleID,
			BeforeState:  ruleToMap(before),
			AfterState:   ruleToMap(doc),
			Changes:      audit.ComputeChanges(ruleToMap(before), ruleToMap(doc)),
			Status:       audit.StatusSuccess,
		})
	}

	writeJSON(w, http.StatusOK, upsertResponse{
		OK:     true,
		RuleID: ruleID,
		ETag:   currentETag(),
	})
}

// handleDeleteRule handles DELETE /v1/rules/{ruleID}
func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleID")

	before, err := s.store.GetRule(r.Context(), ruleID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		InternalError(w, r, "failed to load rule")
		return
	}

	if err := s.store.DeleteRule(r.Context(), ruleID); err != nil {
		InternalError(w, r, "failed to delete rule")
		return
	}

	if err := s.RebuildSnapshot(r.Context()); err != nil {
		InternalError(w, r, "snapshot rebuild failed")
		return
	}

	if s.audit != nil && before != nil {
		s.audit.Log(audit.Event{
			Action:       audit.ActionDeleted,
			ResourceType: audit.ResourceTypeRule,
			ResourceID:   ruleID,
			BeforeState:  ruleToMap(before),
			Status:       audit.StatusSuccess,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "ruleId": ruleID})
}

// handleValidateRule handles POST /v1/rules/validate
//
// Validation never stores anything: it decodes the document, runs the full
// semantic check, and reports every finding with a machine-readable code.
func (s *Server) handleValidateRule(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRuleBody+1))
	if err != nil {
		BadRequestError(w, r, ErrCodeBadRequest, "failed to read request body")
		return
	}
	if len(body) > maxRuleBody {
		RequestTooLargeError(w, r, "rule document exceeds 1MB")
		return
	}

	var doc rule.Rule
	if err := json.Unmarshal(body, &doc); err != nil {
		BadRequestError(w, r, ErrCodeInvalidJSON, "invalid rule document: "+err.Error())
		return
	}

	errs := s.validator().Validate(doc)
	if s.audit != nil {
		s.audit.LogFromContext(r.Context(), audit.ActionValidated, audit.ResourceTypeRule, doc.RuleID, audit.StatusSuccess)
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: len(errs) == 0, Errors: errs})
}

// decodeRule reads and validates the shape of a rule document from the
// request body. Returns false after writing an error response.
func (s *Server) decodeRule(w http.ResponseWriter, r *http.Request, ruleID string) (*rule.Rule, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRuleBody+1))
	if err != nil {
		BadRequestError(w, r, ErrCodeBadRequest, "failed to read request body")
		return nil, false
	}
	if len(body) > maxRuleBody {
		RequestTooLargeError(w, r, "rule document exceeds 1MB")
		return nil, false
	}

	var doc rule.Rule
	if err := json.Unmarshal(body, &doc); err != nil {
		BadRequestError(w, r, ErrCodeInvalidJSON, "invalid rule document: "+err.Error())
		return nil, false
	}

	if doc.RuleID == "" {
		doc.RuleID = ruleID
	}
	if doc.RuleID != ruleID {
		BadRequestError(w, r, ErrCodeInvalidRuleID, "rule id in body does not match URL")
		return nil, false
	}

	if res := validation.ValidateRuleID(doc.RuleID); !res.Valid {
		ValidationError(w, r, "invalid rule id", res.Errors)
		return nil, false
	}
	if res := validation.ValidateName(doc.Name); !res.Valid {
		ValidationError(w, r, "invalid rule name", res.Errors)
		return nil, false
	}
	if res := validation.ValidateTreeShape(doc.Root); !res.Valid {
		ValidationError(w, r, "condition tree exceeds limits", res.Errors)
		return nil, false
	}
	if res := validation.ValidateActionCount(len(doc.Actions)); !res.Valid {
		ValidationError(w, r, "too many actions", res.Errors)
		return nil, false
	}

	return &doc, true
}
