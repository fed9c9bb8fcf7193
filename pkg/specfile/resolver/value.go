package resolver

import (
	"fmt"
	"math"
	"math/big"

	"github.com/zclconf/go-cty/cty"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
)

// toCty converts a resolved tree into a cty value for expression
// evaluation. Sequences become tuples and mappings objects so mixed
// element types are allowed.
func toCty(n *ast.Node) (cty.Value, error) {
	if n.IsNull() {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	switch n.Kind {
	case ast.KindScalar:
		switch v := n.Value.(type) {
		case string:
			return cty.StringVal(v), nil
		case bool:
			return cty.BoolVal(v), nil
		case int:
			return cty.NumberIntVal(int64(v)), nil
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return cty.NilVal, fmt.Errorf("non-finite number %v cannot be used in expressions", v)
			}
			return cty.NumberFloatVal(v), nil
		}
		return cty.NilVal, fmt.Errorf("unsupported scalar %T", n.Value)
	case ast.KindSequence:
		if len(n.Items) == 0 {
			return cty.EmptyTupleVal, nil
		}
		items := make([]cty.Value, len(n.Items))
		for i, item := range n.Items {
			v, err := toCty(item)
			if err != nil {
				return cty.NilVal, err
			}
			items[i] = v
		}
		return cty.TupleVal(items), nil
	case ast.KindMapping:
		if len(n.Entries) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(n.Entries))
		for _, e := range n.Entries {
			v, err := toCty(e.Value)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[e.Key] = v
		}
		return cty.ObjectVal(attrs), nil
	}
	return cty.NilVal, fmt.Errorf("cannot use an unresolved %s directive as a value", n.Directive.Type)
}

// fromCty converts an evaluation result back into a tree. Whole numbers
// become ints. Object keys come out in lexicographic order.
func fromCty(v cty.Value) (*ast.Node, error) {
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	if v.IsNull() {
		return ast.Null(), nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return ast.Scalar(v.AsString()), nil
	case ty == cty.Bool:
		return ast.Scalar(v.True()), nil
	case ty == cty.Number:
		return ast.Scalar(number(v.AsBigFloat())), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		items := []*ast.Node{}
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			item, err := fromCty(ev)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return ast.Sequence(items...), nil
	case ty.IsObjectType() || ty.IsMapType():
		entries := []*ast.Entry{}
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			item, err := fromCty(ev)
			if err != nil {
				return nil, err
			}
			entries = append(entries, ast.E(k.AsString(), item))
		}
		return ast.Mapping(entries...), nil
	}
	return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
}

func number(f *big.Float) any {
	if f.IsInt() {
		if i, acc := f.Int64(); acc == big.Exact {
			return int(i)
		}
	}
	out, _ := f.Float64()
	return out
}
