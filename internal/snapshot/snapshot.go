package snapshot

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/wareflow/ruleengine/internal/rule"
)

// Snapshot is an immutable view of all enabled rules. Readers grab the
// current pointer once and evaluate against it, so a concurrent update never
// changes the rule set mid-evaluation.
type Snapshot struct {
	ETag      string               `json:"etag"`
	Rules     map[string]rule.Rule `json:"rules"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

var current atomic.Pointer[Snapshot]

// Load returns the current snapshot. Never nil: before the first Update it
// returns an empty snapshot.
func Load() *Snapshot {
	if s := current.Load(); s != nil {
		return s
	}
	return &Snapshot{ETag: "", Rules: map[string]rule.Rule{}, UpdatedAt: time.Now().UTC()}
}

// Build assembles a snapshot from the stored rules, keeping only the enabled
// ones. The ETag is a weak hash over the serialized rule set so unchanged
// content produces the same tag across rebuilds.
func Build(rules []rule.Rule) *Snapshot {
	enabled := make(map[string]rule.Rule, len(rules))
	for _, r := range rules {
		if r.Enabled {
			enabled[r.RuleID] = r
		}
	}
	blob, _ := json.Marshal(enabled)
	etag := fmt.Sprintf(`W/"%016x"`, xxhash.Sum64(blob))
	return &Snapshot{ETag: etag, Rules: enabled, UpdatedAt: time.Now().UTC()}
}

// Update swaps in a new snapshot and notifies subscribers.
func Update(s *Snapshot) {
	current.Store(s)
	publishChange(s)
}
