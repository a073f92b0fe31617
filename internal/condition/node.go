// Package condition defines the condition tree: a closed sum type whose two
// variants are Leaf (one field compared to one value) and Group (AND/OR over
// an ordered list of child nodes). Trees are owned values with no cycles by
// construction; the engine treats them as immutable.
package condition

import (
	"github.com/wareflow/ruleengine/internal/catalog"
)

// LogicalOperator combines the children of a Group.
type LogicalOperator string

const (
	And LogicalOperator = "AND"
	Or  LogicalOperator = "OR"
)

// Valid reports whether op is a known logical operator.
func (op LogicalOperator) Valid() bool {
	return op == And || op == Or
}

// Node is either a *Leaf or a *Group. The sum is closed: no other type
// satisfies the interface, so evaluator switches are exhaustive.
type Node interface {
	// NodeID returns the node's unique identifier within its rule.
	NodeID() string

	isNode()
}

// Leaf tests one catalog field against one value via one operator.
type Leaf struct {
	ID       string           `json:"id"`
	Field    string           `json:"field"`
	Operator catalog.Operator `json:"operator"`
	Value    any              `json:"value"`
}

func (l *Leaf) NodeID() string { return l.ID }
func (l *Leaf) isNode()        {}

// Group combines child nodes with AND/OR. Children are evaluated in list
// order. A Group with no children is a validation error and never reaches
// the evaluator through a validated rule.
type Group struct {
	ID              string          `json:"id"`
	LogicalOperator LogicalOperator `json:"logicalOperator"`
	Children        []Node          `json:"children"`
}

func (g *Group) NodeID() string { return g.ID }
func (g *Group) isNode()        {}

// Walk visits node and every descendant depth-first in child order. It stops
// early when fn returns false.
func Walk(node Node, fn func(Node) bool) bool {
	if node == nil {
		return true
	}
	if !fn(node) {
		return false
	}
	if group, ok := node.(*Group); ok {
		for _, child := range group.Children {
			if !Walk(child, fn) {
				return false
			}
		}
	}
	return true
}

// Leaves returns every Leaf in the tree in depth-first child order.
func Leaves(node Node) []*Leaf {
	var out []*Leaf
	Walk(node, func(n Node) bool {
		if leaf, ok := n.(*Leaf); ok {
			out = append(out, leaf)
		}
		return true
	})
	return out
}

// Equal reports structural equality of two trees: same variants, same
// field/operator/value, same child order. Leaf values are compared through
// their JSON representation so that trees surviving a serialization round
// trip compare equal to their originals.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == b
	}

	switch an := a.(type) {
	case *Leaf:
		bn, ok := b.(*Leaf)
		if !ok {
			return false
		}
		return an.ID == bn.ID &&
			an.Field == bn.Field &&
			an.Operator == bn.Operator &&
			jsonEqual(an.Value, bn.Value)
	case *Group:
		bn, ok := b.(*Group)
		if !ok {
			return false
		}
		if an.ID != bn.ID || an.LogicalOperator != bn.LogicalOperator || len(an.Children) != len(bn.Children) {
			return false
		}
		for i := range an.Children {
			if !Equal(an.Children[i], bn.Children[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
