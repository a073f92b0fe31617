// Package rule defines the rule aggregate, a condition tree paired with an
// ordered action list, and its construction-time validation.
package rule

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wareflow/ruleengine/internal/action"
	"github.com/wareflow/ruleengine/internal/condition"
)

// Rule automates one warehouse behavior: when Root matches an event
// context, Actions run in order. The engine only reads rules; creation and
// editing happen in the builder, retirement in the persistence layer.
type Rule struct {
	RuleID    string          `json:"ruleId"`
	Name      string          `json:"name"`
	Root      condition.Node  `json:"root"`
	Actions   []action.Action `json:"actions"`
	Enabled   bool            `json:"enabled"`
	UpdatedAt time.Time       `json:"updatedAt,omitzero"`
}

// UnmarshalJSON decodes a rule from the wire shape, dispatching the root
// node to the condition decoder (the root may be a bare leaf with no group
// wrapper).
func (r *Rule) UnmarshalJSON(data []byte) error {
	type alias struct {
		RuleID    string          `json:"ruleId"`
		Name      string          `json:"name"`
		Root      json.RawMessage `json:"root"`
		Actions   []action.Action `json:"actions"`
		Enabled   bool            `json:"enabled"`
		UpdatedAt time.Time       `json:"updatedAt"`
	}

	var aux alias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.RuleID = aux.RuleID
	r.Name = aux.Name
	r.Actions = aux.Actions
	r.Enabled = aux.Enabled
	r.UpdatedAt = aux.UpdatedAt
	r.Root = nil

	if len(aux.Root) > 0 && string(aux.Root) != "null" {
		root, err := condition.UnmarshalNode(aux.Root)
		if err != nil {
			return fmt.Errorf("rule %q: %w", aux.RuleID, err)
		}
		r.Root = root
	}
	return nil
}

// Equal reports structural equality of two rules, including child order of
// the condition tree and order of the action list.
func Equal(a, b Rule) bool {
	if a.RuleID != b.RuleID || a.Name != b.Name || a.Enabled != b.Enabled {
		return false
	}
	if !condition.Equal(a.Root, b.Root) {
		return false
	}
	if len(a.Actions) != len(b.Actions) {
		return false
	}
	for i := range a.Actions {
		aj, _ := json.Marshal(a.Actions[i])
		bj, _ := json.Marshal(b.Actions[i])
		if string(aj) != string(bj) {
			return false
		}
	}
	return true
}
