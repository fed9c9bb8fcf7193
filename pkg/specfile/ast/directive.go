package ast

// DirectiveType identifies a control directive.
type DirectiveType string

const (
	DirectiveFor DirectiveType = "for"
	DirectiveIf  DirectiveType = "if"
)

// Directive keywords used inside the directive body mapping.
const (
	KeywordEach = "each"
	KeywordIn   = "in"
	KeywordCond = "cond"
	KeywordDo   = "do"
)

// Directive is an embedded for/if control construct.
//
//	for: {each: i, in: "range(3)", do: {...}}
//	if:  {cond: "dropout > 0", do: {...}}
type Directive struct {
	Type DirectiveType

	// Each is the loop variable bound for every element (for only).
	Each string

	// In is the iterable: a literal sequence or an expression scalar (for only).
	In *Node

	// Cond is the condition: an expression string or a literal bool (if only).
	Cond *Node

	// Body is the template resolved once per iteration or when Cond holds.
	Body *Node

	Location Location
}

// IsDirectiveKey reports whether key names a directive.
func IsDirectiveKey(key string) bool {
	return key == string(DirectiveFor) || key == string(DirectiveIf)
}

// NewFor returns a for directive node.
func NewFor(each string, in, body *Node) *Node {
	return &Node{
		Kind:      KindDirective,
		Directive: &Directive{Type: DirectiveFor, Each: each, In: in, Body: body},
	}
}

// NewIf returns an if directive node.
func NewIf(cond, body *Node) *Node {
	return &Node{
		Kind:      KindDirective,
		Directive: &Directive{Type: DirectiveIf, Cond: cond, Body: body},
	}
}

// fields returns the directive body as plain Go values.
func (d *Directive) fields() map[string]any {
	out := map[string]any{KeywordDo: d.Body.Interface()}
	switch d.Type {
	case DirectiveFor:
		out[KeywordEach] = d.Each
		out[KeywordIn] = d.In.Interface()
	case DirectiveIf:
		out[KeywordCond] = d.Cond.Interface()
	}
	return out
}

// ToMapping returns the directive in its document form, a single-key
// mapping, so it can be encoded back to YAML or JSON.
func (d *Directive) ToMapping() *Node {
	var body []*Entry
	switch d.Type {
	case DirectiveFor:
		body = append(body, E(KeywordEach, Scalar(d.Each)), E(KeywordIn, d.In))
	case DirectiveIf:
		body = append(body, E(KeywordCond, d.Cond))
	}
	body = append(body, E(KeywordDo, d.Body))
	return &Node{
		Kind:     KindMapping,
		Location: d.Location,
		Entries:  []*Entry{E(string(d.Type), Mapping(body...))},
	}
}
