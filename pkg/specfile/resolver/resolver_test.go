package resolver

import (
	"encoding/json"
	stderrors "errors"
	"math"
	"strings"
	"testing"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
	"github.com/orbit-ml/specfile/pkg/specfile/parser"
)

func mustParse(t *testing.T, src string) *ast.Node {
	t.Helper()
	doc, err := parser.NewParser().ParseBytes([]byte(src), "memory://test")
	if err != nil {
		t.Fatalf("ParseBytes() failed: %v", err)
	}
	return doc
}

func toJSON(t *testing.T, n *ast.Node) string {
	t.Helper()
	b, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	return string(b)
}

func TestResolve(t *testing.T) {
	decls := `
lr: 0.1
units: [32, 64]
name: mnist
opt: {name: adam, beta: [0.9, 0.999]}
dropout: 0
debug: true
`
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "no directives",
			doc:  "run: {cmd: train, args: [1, 2]}\nflag: null\n",
			want: `{"run":{"cmd":"train","args":[1,2]},"flag":null}`,
		},
		{
			name: "whole reference keeps type",
			doc:  "a: '{{ lr }}'\nb: '{{ units }}'\nc: '{{ opt }}'\nd: '{{ debug }}'\n",
			want: `{"a":0.1,"b":[32,64],"c":{"name":"adam","beta":[0.9,0.999]},"d":true}`,
		},
		{
			name: "interpolation",
			doc:  "cmd: 'train --lr={{ lr }} --name={{name}} --first={{ units[0] }} --b={{ opt.beta[1] }}'\n",
			want: `{"cmd":"train --lr=0.1 --name=mnist --first=32 --b=0.999"}`,
		},
		{
			name: "interpolated key",
			doc:  "'{{ name }}_run': 1\n",
			want: `{"mnist_run":1}`,
		},
		{
			name: "if false removes key",
			doc:  "model:\n  dropout:\n    if: {cond: 'dropout > 0', do: {rate: '{{ dropout }}'}}\n  dense: 1\n",
			want: `{"model":{"dense":1}}`,
		},
		{
			name: "if true replaces",
			doc:  "model:\n  if: {cond: '{{ debug }}', do: {verbose: 2}}\n",
			want: `{"model":{"verbose":2}}`,
		},
		{
			name: "if in sequence",
			doc:  "layers:\n  - a\n  - if: {cond: false, do: b}\n  - if: {cond: 'length(units) == 2', do: c}\n",
			want: `{"layers":["a","c"]}`,
		},
		{
			name: "for in sequence splices",
			doc:  "layers:\n  - input\n  - for: {each: u, in: '{{ units }}', do: {dense: '{{ u }}', lr: '{{ lr }}'}}\n  - output\n",
			want: `{"layers":["input",{"dense":32,"lr":0.1},{"dense":64,"lr":0.1},"output"]}`,
		},
		{
			name: "for list body concatenated",
			doc:  "layers:\n  - for: {each: u, in: [1, 2], do: ['{{ u }}', '{{ u }}']}\n",
			want: `{"layers":[1,1,2,2]}`,
		},
		{
			name: "for in mapping merges",
			doc:  "params:\n  for: {each: u, in: '{{ units }}', do: {'p{{ u }}': '{{ u }}'}}\n",
			want: `{"params":{"p32":32,"p64":64}}`,
		},
		{
			name: "for in mapping concatenates scalars",
			doc:  "sizes:\n  for: {each: i, in: 'range(3)', do: 'size-{{ i }}'}\n",
			want: `{"sizes":["size-0","size-1","size-2"]}`,
		},
		{
			name: "for empty removes",
			doc:  "a:\n  for: {each: i, in: [], do: 1}\nb: 2\n",
			want: `{"b":2}`,
		},
		{
			name: "nested directives",
			doc: `
layers:
  - for:
      each: u
      in: "{{ units }}"
      do:
        - dense: "{{ u }}"
        - if:
            cond: "u > 32"
            do: {dropout: 0.5}
`,
			want: `{"layers":[{"dense":32},{"dense":64},{"dropout":0.5}]}`,
		},
		{
			name: "loop variable shadows",
			doc:  "x:\n  for: {each: lr, in: [1], do: '{{ lr }}'}\ny: '{{ lr }}'\n",
			want: `{"x":[1],"y":0.1}`,
		},
		{
			name: "interpolated expression",
			doc:  "x:\n  for: {each: i, in: 'range({{ units[0] }}, 34)', do: '{{ i }}'}\n",
			want: `{"x":[32,33]}`,
		},
	}

	base := NewDeclarations(mustParse(t, decls))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Resolve(mustParse(t, tt.doc), base)
			if err != nil {
				t.Fatalf("Resolve() failed: %v", err)
			}
			if ast.HasDirectives(out) {
				t.Error("result still has directives")
			}
			if got := toJSON(t, out); got != tt.want {
				t.Errorf("Resolve() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolve_ForBindsInOrder(t *testing.T) {
	doc := mustParse(t, "out:\n  - for: {each: v, in: [1, 2, 3], do: {value: '{{ v }}', outer: '{{ outer }}'}}\n")
	decls := Empty().With("outer", ast.Scalar("kept"))

	out, err := Resolve(doc, decls)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	items, _ := out.Get("out")
	if items.Len() != 3 {
		t.Fatalf("len = %d, want 3", items.Len())
	}
	for i, item := range items.Items {
		v, _ := item.Get("value")
		if v.Value != i+1 {
			t.Errorf("item %d value = %v, want %d", i, v.Value, i+1)
		}
		o, _ := item.Get("outer")
		if o.Value != "kept" {
			t.Errorf("item %d outer = %v", i, o.Value)
		}
	}
	if decls.Has("v") {
		t.Error("loop variable leaked into declarations")
	}
}

func TestResolve_FalseBodyAbsent(t *testing.T) {
	doc := mustParse(t, "model:\n  layers:\n    - if: {cond: 'flag', do: {secret_marker: 1}}\n  other:\n    if: {cond: 'flag', do: secret_marker}\n")
	out, err := Resolve(doc, Empty().With("flag", ast.Scalar(false)))
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got := toJSON(t, out); strings.Contains(got, "secret_marker") {
		t.Errorf("false branch leaked: %s", got)
	}
}

func TestResolve_DoesNotMutate(t *testing.T) {
	doc := mustParse(t, "a:\n  - for: {each: i, in: [1, 2], do: '{{ i }}'}\nb: '{{ x }}'\n")
	before := doc.Clone()
	if _, err := Resolve(doc, Empty().With("x", ast.Scalar(1))); err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if !ast.Equal(before, doc) {
		t.Error("Resolve() modified its input")
	}
}

func TestResolve_Deterministic(t *testing.T) {
	doc := mustParse(t, "m:\n  for: {each: k, in: [b, a, c], do: {'{{ k }}': '{{ k }}'}}\n")
	first, _ := Resolve(doc, Empty())
	for i := 0; i < 10; i++ {
		again, _ := Resolve(doc, Empty())
		if toJSON(t, again) != toJSON(t, first) {
			t.Fatal("Resolve() is not deterministic")
		}
	}
	if got := toJSON(t, first); got != `{"m":{"b":"b","a":"a","c":"c"}}` {
		t.Errorf("Resolve() = %s", got)
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		target   error
		wantPath string
	}{
		{"undeclared whole", "run:\n  cmd: '{{ missing }}'\n", specErrors.ErrUndeclaredVariable, "run.cmd"},
		{"undeclared interpolated", "run:\n  cmd: 'x {{ missing }}'\n", specErrors.ErrUndeclaredVariable, "run.cmd"},
		{"undeclared in cond", "a:\n  if: {cond: 'missing > 1', do: 1}\n", specErrors.ErrUndeclaredVariable, "a.cond"},
		{"undeclared in for", "a:\n  - for: {each: i, in: '{{ nope }}', do: 1}\n", specErrors.ErrUndeclaredVariable, "a[0].in"},
		{"missing attribute", "a: '{{ opt.missing }}'\n", specErrors.ErrSpecification, "a"},
		{"index out of range", "a: '{{ list[5] }}'\n", specErrors.ErrSpecification, "a"},
		{"interpolate mapping", "a: 'x {{ opt }}'\n", specErrors.ErrSpecification, "a"},
		{"non bool cond", "a:\n  if: {cond: '1 + 1', do: 1}\n", specErrors.ErrSpecification, "a.cond"},
		{"non list in", "a:\n  for: {each: i, in: '{{ n }}', do: 1}\n", specErrors.ErrSpecification, "a.in"},
		{"unknown function", "a:\n  for: {each: i, in: 'file(\"x\")', do: 1}\n", specErrors.ErrSpecification, "a.in"},
		{"bad expression", "a:\n  if: {cond: '1 +', do: 1}\n", specErrors.ErrSpecification, "a.cond"},
		{"duplicate key", "'{{ n }}': 1\n'3': 2\n", specErrors.ErrSpecification, "3"},
		{"nan in cond", "a:\n  if: {cond: 'nan > 0', do: 1}\n", specErrors.ErrSpecification, "a.cond"},
		{"inf in for", "a:\n  - for: {each: i, in: 'range(inf)', do: 1}\n", specErrors.ErrSpecification, "a[0].in"},
	}

	decls := Empty().
		With("opt", ast.Mapping(ast.E("name", ast.Scalar("adam")))).
		With("list", ast.Sequence(ast.Scalar(1))).
		With("n", ast.Scalar(3)).
		With("nan", ast.Scalar(math.NaN())).
		With("inf", ast.Scalar(math.Inf(1)))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(mustParse(t, tt.doc), decls)
			if !stderrors.Is(err, tt.target) {
				t.Fatalf("Resolve() error = %v, want %v", err, tt.target)
			}
			var e *specErrors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error type = %T", err)
			}
			if e.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", e.Path, tt.wantPath)
			}
		})
	}
}

func TestResolve_UndeclaredSuggestion(t *testing.T) {
	_, err := Resolve(mustParse(t, "a: '{{ lerning_rate }}'\n"), Empty().With("learning_rate", ast.Scalar(1)))
	var e *specErrors.Error
	if !stderrors.As(err, &e) || e.Suggestion != "Did you mean 'learning_rate'?" {
		t.Errorf("error = %v", err)
	}
}

func TestResolve_MaxIterations(t *testing.T) {
	doc := mustParse(t, "a:\n  for: {each: i, in: 'range(100)', do: '{{ i }}'}\n")
	_, err := New(WithMaxIterations(10)).Resolve(doc, Empty())
	if err == nil || !strings.Contains(err.Error(), "exceed 10 iterations") {
		t.Errorf("Resolve() error = %v", err)
	}
}

func TestResolve_RootRemoved(t *testing.T) {
	root := ast.NewIf(ast.Scalar(false), ast.Mapping(ast.E("a", ast.Scalar(1))))
	out, err := Resolve(root, nil)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if !out.IsMapping() || out.Len() != 0 {
		t.Errorf("Resolve() = %s, want empty mapping", toJSON(t, out))
	}
}

func TestDeclare_Sequential(t *testing.T) {
	node := mustParse(t, `
base: 16
units: "{{ base }}"
layers:
  for: {each: i, in: "range(2)", do: "{{ units }}"}
`)
	decls, err := New().Declare(node, Empty().With("outer", ast.Scalar(1)))
	if err != nil {
		t.Fatalf("Declare() failed: %v", err)
	}
	if v, _ := decls.Lookup("units"); v.Value != 16 {
		t.Errorf("units = %v, want 16", v.Value)
	}
	layers, _ := decls.Lookup("layers")
	if got := toJSON(t, layers); got != "[16,16]" {
		t.Errorf("layers = %s", got)
	}
	if !decls.Has("outer") {
		t.Error("Declare() dropped base declarations")
	}

	if _, err := New().Declare(ast.Sequence(), nil); err == nil {
		t.Error("Declare(sequence) should fail")
	}
	if d, err := New().Declare(nil, nil); err != nil || d.Len() != 0 {
		t.Errorf("Declare(nil) = %v, %v", d, err)
	}
}
