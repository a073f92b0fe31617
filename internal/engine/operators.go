package engine

import (
	"encoding/json"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/wareflow/ruleengine/internal/catalog"
)

// OperatorHandler evaluates one operator for a typed field. Handlers must be
// total: any value whose shape does not fit the field type is a non-match,
// never an error.
type OperatorHandler interface {
	Check(def catalog.FieldDefinition, got, want any) bool
}

var (
	operatorHandlers = map[catalog.Operator]OperatorHandler{
		catalog.OpEq:         equalsHandler{},
		catalog.OpNe:         notEqualsHandler{},
		catalog.OpGt:         orderedHandler{num: func(a, b float64) bool { return a > b }, date: func(a, b time.Time) bool { return a.After(b) }},
		catalog.OpGte:        orderedHandler{num: func(a, b float64) bool { return a >= b }, date: func(a, b time.Time) bool { return !a.Before(b) }},
		catalog.OpLt:         orderedHandler{num: func(a, b float64) bool { return a < b }, date: func(a, b time.Time) bool { return a.Before(b) }},
		catalog.OpLte:        orderedHandler{num: func(a, b float64) bool { return a <= b }, date: func(a, b time.Time) bool { return !a.After(b) }},
		catalog.OpIn:         inHandler{},
		catalog.OpNin:        notInHandler{},
		catalog.OpContains:   containsHandler{},
		catalog.OpStartsWith: affixHandler{check: strings.HasPrefix},
		catalog.OpEndsWith:   affixHandler{check: strings.HasSuffix},
		catalog.OpRegex:      regexHandler{},
		catalog.OpVersionGt:  semverHandler{cmp: func(a, b *semver.Version) bool { return a.GreaterThan(b) }},
		catalog.OpVersionLt:  semverHandler{cmp: func(a, b *semver.Version) bool { return a.LessThan(b) }},
	}

	// regexCache keeps compiled patterns for the hot evaluation path.
	// Values are *regexp.Regexp.
	regexCache sync.Map
)

func getOperatorHandler(op catalog.Operator) (OperatorHandler, bool) {
	h, ok := operatorHandlers[op]
	return h, ok
}

type equalsHandler struct{}

// Check normalizes both sides via the field's declared type before
// comparing: strings and enum values compare as exact case-sensitive
// strings, numbers numerically, dates as instants.
func (equalsHandler) Check(def catalog.FieldDefinition, got, want any) bool {
	switch def.Type {
	case catalog.TypeString, catalog.TypeEnum:
		g, okG := toString(got)
		w, okW := toString(want)
		return okG && okW && g == w
	case catalog.TypeNumber:
		g, okG := toFloat64(got)
		w, okW := toFloat64(want)
		return okG && okW && g == w
	case catalog.TypeBoolean:
		g, okG := got.(bool)
		w, okW := want.(bool)
		return okG && okW && g == w
	case catalog.TypeDate:
		g, okG := toTime(got)
		w, okW := toTime(want)
		return okG && okW && g.Equal(w)
	default:
		return false
	}
}

type notEqualsHandler struct{}

func (notEqualsHandler) Check(def catalog.FieldDefinition, got, want any) bool {
	return !equalsHandler{}.Check(def, got, want)
}

// orderedHandler implements gt/gte/lt/lte for number and date fields.
type orderedHandler struct {
	num  func(a, b float64) bool
	date func(a, b time.Time) bool
}

func (h orderedHandler) Check(def catalog.FieldDefinition, got, want any) bool {
	switch def.Type {
	case catalog.TypeNumber:
		g, okG := toFloat64(got)
		w, okW := toFloat64(want)
		return okG && okW && h.num(g, w)
	case catalog.TypeDate:
		g, okG := toTime(got)
		w, okW := toTime(want)
		return okG && okW && h.date(g, w)
	default:
		return false
	}
}

type inHandler struct{}

// Check tests membership of the resolved value in the rule's value list,
// using the same equality rule as eq.
func (inHandler) Check(def catalog.FieldDefinition, got, want any) bool {
	list, ok := toSlice(want)
	if !ok {
		return false
	}
	eq := equalsHandler{}
	for _, item := range list {
		if eq.Check(def, got, item) {
			return true
		}
	}
	return false
}

type notInHandler struct{}

func (notInHandler) Check(def catalog.FieldDefinition, got, want any) bool {
	// nin only matches when the value list is well-formed.
	if _, ok := toSlice(want); !ok {
		return false
	}
	return !inHandler{}.Check(def, got, want)
}

type containsHandler struct{}

// Check is a substring test for string fields; when the resolved context
// value is itself a list, it is a membership test instead.
func (containsHandler) Check(def catalog.FieldDefinition, got, want any) bool {
	if list, ok := toSlice(got); ok {
		eq := equalsHandler{}
		for _, item := range list {
			if eq.Check(def, item, want) {
				return true
			}
		}
		return false
	}

	g, okG := toString(got)
	w, okW := toString(want)
	return okG && okW && strings.Contains(g, w)
}

type affixHandler struct {
	check func(s, affix string) bool
}

func (h affixHandler) Check(def catalog.FieldDefinition, got, want any) bool {
	g, okG := toString(got)
	w, okW := toString(want)
	return okG && okW && h.check(g, w)
}

type regexHandler struct{}

func (regexHandler) Check(def catalog.FieldDefinition, got, want any) bool {
	g, okG := toString(got)
	pattern, okW := toString(want)
	if !okG || !okW {
		return false
	}
	rx, ok := getCompiledRegex(pattern)
	if !ok {
		return false
	}
	return rx.MatchString(g)
}

type semverHandler struct {
	cmp func(a, b *semver.Version) bool
}

func (h semverHandler) Check(def catalog.FieldDefinition, got, want any) bool {
	g, okG := toString(got)
	w, okW := toString(want)
	if !okG || !okW {
		return false
	}
	gotVer, err := semver.NewVersion(g)
	if err != nil {
		return false
	}
	wantVer, err := semver.NewVersion(w)
	if err != nil {
		return false
	}
	return h.cmp(gotVer, wantVer)
}

func getCompiledRegex(pattern string) (*regexp.Regexp, bool) {
	if cached, ok := regexCache.Load(pattern); ok {
		rx, ok := cached.(*regexp.Regexp)
		return rx, ok
	}

	rx, err := regexp.Compile(pattern)
	if err != nil {
		return nil, false
	}
	regexCache.Store(pattern, rx)
	return rx, true
}

// ---- coercion helpers ----

func toString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// toTime accepts RFC 3339 strings and time.Time values. Dates compare as
// instants; the evaluator never reads the clock itself.
func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

func toSlice(v any) ([]any, bool) {
	switch values := v.(type) {
	case []any:
		return values, true
	case []string:
		out := make([]any, len(values))
		for i, s := range values {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
