package condition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wareflow/ruleengine/internal/catalog"
)

// Sentinel errors for condition tree decoding.
var (
	ErrEmptyNode   = errors.New("condition node is empty")
	ErrMixedNode   = errors.New("condition node mixes leaf and group keys")
	ErrUnknownKind = errors.New("condition node is neither leaf nor group")
)

// rawNode is the superset of both variants' wire fields, used to
// discriminate during decoding. The wire shape carries no explicit kind tag:
// a group is the variant that has a logicalOperator (and children), a leaf
// is the variant that has a field and operator.
type rawNode struct {
	ID              string            `json:"id"`
	Field           *string           `json:"field"`
	Operator        *string           `json:"operator"`
	Value           json.RawMessage   `json:"value"`
	LogicalOperator *string           `json:"logicalOperator"`
	Children        []json.RawMessage `json:"children"`
}

// UnmarshalNode decodes one condition node (leaf or group) from its JSON
// wire form, recursively decoding group children in order.
func UnmarshalNode(data []byte) (Node, error) {
	var raw rawNode
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode condition node: %w", err)
	}

	isGroup := raw.LogicalOperator != nil || raw.Children != nil
	isLeaf := raw.Field != nil || raw.Operator != nil

	switch {
	case isGroup && isLeaf:
		return nil, fmt.Errorf("%w: id=%q", ErrMixedNode, raw.ID)
	case isGroup:
		group := &Group{ID: raw.ID, Children: make([]Node, 0, len(raw.Children))}
		if raw.LogicalOperator != nil {
			group.LogicalOperator = LogicalOperator(*raw.LogicalOperator)
		}
		for _, childData := range raw.Children {
			child, err := UnmarshalNode(childData)
			if err != nil {
				return nil, err
			}
			group.Children = append(group.Children, child)
		}
		return group, nil
	case isLeaf:
		leaf := &Leaf{ID: raw.ID}
		if raw.Field != nil {
			leaf.Field = *raw.Field
		}
		if raw.Operator != nil {
			leaf.Operator = catalog.Operator(*raw.Operator)
		}
		if len(raw.Value) > 0 {
			value, err := decodeValue(raw.Value)
			if err != nil {
				return nil, fmt.Errorf("decode leaf %q value: %w", raw.ID, err)
			}
			leaf.Value = value
		}
		return leaf, nil
	case raw.ID == "" && !isGroup && !isLeaf:
		return nil, ErrEmptyNode
	default:
		return nil, fmt.Errorf("%w: id=%q", ErrUnknownKind, raw.ID)
	}
}

// UnmarshalJSON decodes a group in the wire shape, including nested children.
func (g *Group) UnmarshalJSON(data []byte) error {
	node, err := UnmarshalNode(data)
	if err != nil {
		return err
	}
	group, ok := node.(*Group)
	if !ok {
		return fmt.Errorf("%w: expected group", ErrUnknownKind)
	}
	*g = *group
	return nil
}

// decodeValue decodes a leaf value preserving numeric fidelity: numbers stay
// json.Number so the evaluator can coerce without float drift on integers.
func decodeValue(data json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// jsonEqual compares two leaf values by canonical JSON encoding.
func jsonEqual(a, b any) bool {
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}
