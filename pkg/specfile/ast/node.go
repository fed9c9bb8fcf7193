package ast

import (
	"fmt"
	"math"
	"sort"
)

// Kind identifies which variant a Node holds.
type Kind int

const (
	KindNull      Kind = iota // null / absent value
	KindScalar                // string, int, float64 or bool
	KindSequence              // ordered list of nodes
	KindMapping               // ordered string-keyed entries
	KindDirective             // unresolved for/if control node
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindDirective:
		return "directive"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one value of a specification document tree.
//
// Exactly one payload is meaningful for a given Kind: Value for scalars,
// Items for sequences, Entries for mappings and Directive for directives.
// Trees are treated as immutable once built; transformations such as
// resolution and merging return new trees and share nothing mutable with
// their input.
type Node struct {
	Kind      Kind
	Value     any
	Items     []*Node
	Entries   []*Entry
	Directive *Directive
	Location  Location
}

// Entry is a single key/value pair of a mapping node.
type Entry struct {
	Key   string
	Value *Node
}

// Null returns a null node.
func Null() *Node {
	return &Node{Kind: KindNull}
}

// Scalar returns a scalar node holding v. Integer and float types are
// normalized to int and float64; a nil value yields a null node.
func Scalar(v any) *Node {
	if v == nil {
		return Null()
	}
	return &Node{Kind: KindScalar, Value: normalizeScalar(v)}
}

// Sequence returns a sequence node with the given items.
func Sequence(items ...*Node) *Node {
	if items == nil {
		items = []*Node{}
	}
	return &Node{Kind: KindSequence, Items: items}
}

// Mapping returns a mapping node with the given entries.
func Mapping(entries ...*Entry) *Node {
	if entries == nil {
		entries = []*Entry{}
	}
	return &Node{Kind: KindMapping, Entries: entries}
}

// E is shorthand for building a mapping entry.
func E(key string, value *Node) *Entry {
	return &Entry{Key: key, Value: value}
}

// IsNull reports whether the node is nil or a null node.
func (n *Node) IsNull() bool {
	return n == nil || n.Kind == KindNull
}

// IsScalar reports whether the node is a scalar.
func (n *Node) IsScalar() bool {
	return n != nil && n.Kind == KindScalar
}

// IsSequence reports whether the node is a sequence.
func (n *Node) IsSequence() bool {
	return n != nil && n.Kind == KindSequence
}

// IsMapping reports whether the node is a mapping.
func (n *Node) IsMapping() bool {
	return n != nil && n.Kind == KindMapping
}

// IsDirective reports whether the node is an unresolved directive.
func (n *Node) IsDirective() bool {
	return n != nil && n.Kind == KindDirective
}

// Len returns the number of items of a sequence or entries of a mapping.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.Kind {
	case KindSequence:
		return len(n.Items)
	case KindMapping:
		return len(n.Entries)
	default:
		return 0
	}
}

// Get returns the value stored under key in a mapping node.
func (n *Node) Get(key string) (*Node, bool) {
	if !n.IsMapping() {
		return nil, false
	}
	for _, e := range n.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether a mapping node contains key.
func (n *Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Keys returns the keys of a mapping node in document order.
func (n *Node) Keys() []string {
	if !n.IsMapping() {
		return nil
	}
	keys := make([]string, len(n.Entries))
	for i, e := range n.Entries {
		keys[i] = e.Key
	}
	return keys
}

// With returns a copy of the mapping node with key set to value. An existing
// key keeps its position; a new key is appended. Entry values are shared
// with the receiver, which is left untouched.
func (n *Node) With(key string, value *Node) *Node {
	out := &Node{Kind: KindMapping, Location: n.Location}
	replaced := false
	for _, e := range n.Entries {
		if e.Key == key {
			out.Entries = append(out.Entries, &Entry{Key: key, Value: value})
			replaced = true
			continue
		}
		out.Entries = append(out.Entries, e)
	}
	if !replaced {
		out.Entries = append(out.Entries, &Entry{Key: key, Value: value})
	}
	return out
}

// Without returns a copy of the mapping node with the given keys removed.
func (n *Node) Without(keys ...string) *Node {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	out := &Node{Kind: KindMapping, Location: n.Location, Entries: []*Entry{}}
	for _, e := range n.Entries {
		if !drop[e.Key] {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// AsString returns the scalar value as a string when it holds one.
func (n *Node) AsString() (string, bool) {
	if !n.IsScalar() {
		return "", false
	}
	s, ok := n.Value.(string)
	return s, ok
}

// AsBool returns the scalar value as a bool when it holds one.
func (n *Node) AsBool() (bool, bool) {
	if !n.IsScalar() {
		return false, false
	}
	b, ok := n.Value.(bool)
	return b, ok
}

// AsInt returns the scalar value as an int. Floats with no fractional part
// are accepted.
func (n *Node) AsInt() (int, bool) {
	if !n.IsScalar() {
		return 0, false
	}
	switch v := n.Value.(type) {
	case int:
		return v, true
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int(v), true
		}
	}
	return 0, false
}

// AsFloat returns the scalar value as a float64. Ints are widened.
func (n *Node) AsFloat() (float64, bool) {
	if !n.IsScalar() {
		return 0, false
	}
	switch v := n.Value.(type) {
	case int:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// IsNumber reports whether the node is an int or float scalar.
func (n *Node) IsNumber() bool {
	_, ok := n.AsFloat()
	return ok
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Kind: n.Kind, Value: n.Value, Location: n.Location}
	if n.Items != nil {
		out.Items = make([]*Node, len(n.Items))
		for i, item := range n.Items {
			out.Items[i] = item.Clone()
		}
	}
	if n.Entries != nil {
		out.Entries = make([]*Entry, len(n.Entries))
		for i, e := range n.Entries {
			out.Entries[i] = &Entry{Key: e.Key, Value: e.Value.Clone()}
		}
	}
	if n.Directive != nil {
		d := *n.Directive
		d.In = n.Directive.In.Clone()
		d.Cond = n.Directive.Cond.Clone()
		d.Body = n.Directive.Body.Clone()
		out.Directive = &d
	}
	return out
}

// Equal reports whether two trees hold the same data. Locations are ignored
// and numbers compare by value, so int 1 equals float 1.0.
func Equal(a, b *Node) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindScalar:
		af, aNum := a.AsFloat()
		bf, bNum := b.AsFloat()
		if aNum && bNum {
			return af == bf
		}
		return a.Value == b.Value
	case KindSequence:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(a.Entries) != len(b.Entries) {
			return false
		}
		for i := range a.Entries {
			if a.Entries[i].Key != b.Entries[i].Key || !Equal(a.Entries[i].Value, b.Entries[i].Value) {
				return false
			}
		}
		return true
	case KindDirective:
		da, db := a.Directive, b.Directive
		return da.Type == db.Type && da.Each == db.Each &&
			Equal(da.In, db.In) && Equal(da.Cond, db.Cond) && Equal(da.Body, db.Body)
	}
	return false
}

// Interface converts the tree into plain Go values: map[string]any,
// []any and scalars. Key order is lost; use MarshalJSON or the parser's
// encoder to keep it.
func (n *Node) Interface() any {
	if n.IsNull() {
		return nil
	}
	switch n.Kind {
	case KindScalar:
		return n.Value
	case KindSequence:
		out := make([]any, len(n.Items))
		for i, item := range n.Items {
			out[i] = item.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(n.Entries))
		for _, e := range n.Entries {
			out[e.Key] = e.Value.Interface()
		}
		return out
	case KindDirective:
		return map[string]any{string(n.Directive.Type): n.Directive.fields()}
	}
	return nil
}

// FromInterface builds a tree from plain Go values. Maps are emitted with
// their keys sorted so the result is deterministic.
func FromInterface(v any) (*Node, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil
	case *Node:
		return val.Clone(), nil
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return Scalar(val), nil
	case []any:
		items := make([]*Node, len(val))
		for i, item := range val {
			n, err := FromInterface(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = n
		}
		return Sequence(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]*Entry, 0, len(keys))
		for _, k := range keys {
			n, err := FromInterface(val[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			entries = append(entries, E(k, n))
		}
		return Mapping(entries...), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// normalizeScalar maps the numeric Go types onto int and float64. Integers
// that overflow an int become float64.
func normalizeScalar(v any) any {
	switch x := v.(type) {
	case int8:
		return int(x)
	case int16:
		return int(x)
	case int32:
		return int(x)
	case int64:
		if x < math.MinInt || x > math.MaxInt {
			return float64(x)
		}
		return int(x)
	case uint:
		if x > math.MaxInt {
			return float64(x)
		}
		return int(x)
	case uint8:
		return int(x)
	case uint16:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		if x > math.MaxInt {
			return float64(x)
		}
		return int(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}
