package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wareflow/ruleengine/internal/rule"
)

// ===== HTTP Helpers =====

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{
		"error":   http.StatusText(code),
		"message": msg,
	})
}

// ===== Conversion Helpers =====

// ruleToMap converts a rule to a map for audit logging.
// Returns nil if the rule is nil.
func ruleToMap(r *rule.Rule) map[string]any {
	if r == nil {
		return nil
	}

	m := map[string]any{
		"ruleId":  r.RuleID,
		"name":    r.Name,
		"enabled": r.Enabled,
		"actions": len(r.Actions),
	}
	if !r.UpdatedAt.IsZero() {
		m["updated_at"] = r.UpdatedAt.Format(time.RFC3339)
	}
	return m
}

// fieldsFromValidation flattens validator findings into field-level errors
// keyed by node id (or a stable fallback when the finding has no node).
func fieldsFromValidation(errs []rule.ValidationError) map[string]string {
	fields := make(map[string]string, len(errs))
	for i, e := range errs {
		key := e.NodeID
		if key == "" {
			key = string(e.Code)
		}
		if _, taken := fields[key]; taken {
			key = fmt.Sprintf("%s#%d", key, i)
		}
		fields[key] = string(e.Code) + ": " + e.Message
	}
	return fields
}
