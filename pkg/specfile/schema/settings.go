package schema

import (
	"slices"
	"strings"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
	"github.com/orbit-ml/specfile/pkg/specfile/matrix"
)

// Settings keys.
const (
	SettingLogging       = "logging"
	SettingConcurrency   = "concurrency"
	SettingSeed          = "seed"
	SettingMatrix        = "matrix"
	SettingRandomSearch  = "random_search"
	SettingHyperband     = "hyperband"
	SettingEarlyStopping = "early_stopping"
)

var settingsFields = []string{
	SettingLogging, SettingConcurrency, SettingSeed, SettingMatrix,
	SettingRandomSearch, SettingHyperband, SettingEarlyStopping,
}

// GroupOnlySettings are the settings keys that only make sense for a group.
// They are stripped from the settings of every expanded experiment.
var GroupOnlySettings = []string{
	SettingConcurrency, SettingSeed, SettingMatrix,
	SettingRandomSearch, SettingHyperband, SettingEarlyStopping,
}

// Log levels accepted by settings.logging.level.
var LogLevels = []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}

// DefaultLogLevel applies when settings.logging.level is absent.
const DefaultLogLevel = "INFO"

// Optimization directions for metrics.
const (
	OptimizationMaximize = "maximize"
	OptimizationMinimize = "minimize"
)

var optimizations = []string{OptimizationMaximize, OptimizationMinimize}

// Resource types for hyperband budgets.
const (
	ResourceInt   = "int"
	ResourceFloat = "float"
)

var resourceTypes = []string{ResourceInt, ResourceFloat}

// Settings is the decoded `settings` section.
type Settings struct {
	LogLevel      string
	Concurrency   int // 0 when unset
	Seed          *int64
	Matrix        *matrix.SearchSpace
	RandomSearch  *RandomSearch
	Hyperband     *Hyperband
	EarlyStopping []EarlyStopping
}

// RandomSearch configures random sampling of the matrix.
type RandomSearch struct {
	NExperiments int
}

// Hyperband configures the hyperband strategy. The allocator itself lives
// outside this module; these values are passed through to it.
type Hyperband struct {
	MaxIter  int
	Eta      float64
	Resource Resource
	Metric   Metric
	Resume   bool
}

// Resource names the budget hyperband allocates.
type Resource struct {
	Name string
	Type string
}

// Metric is an optimization target.
type Metric struct {
	Name         string
	Optimization string
}

// EarlyStopping stops a group once a metric crosses a value.
type EarlyStopping struct {
	Metric       string
	Value        float64
	Optimization string
}

// ConcurrencyOrDefault returns the concurrency hint, 1 when unset.
func (s *Settings) ConcurrencyOrDefault() int {
	if s == nil || s.Concurrency <= 0 {
		return 1
	}
	return s.Concurrency
}

// HasMatrix reports whether a matrix was declared.
func (s *Settings) HasMatrix() bool {
	return s != nil && s.Matrix != nil
}

// DecodeSettings reads the `settings` section of a document of the given
// kind. A null node yields default settings. Keys that only apply to groups
// are rejected for other kinds.
func DecodeSettings(node *ast.Node, kind Kind) (*Settings, error) {
	path := string(SectionSettings)
	s := &Settings{LogLevel: DefaultLogLevel}
	if node.IsNull() {
		return s, nil
	}

	errs := specErrors.NewErrorList()
	if !mappingField(errs, node, path) {
		return nil, errs.ToError()
	}
	checkFields(errs, node, path, settingsFields)

	if kind != KindGroup {
		for _, key := range GroupOnlySettings {
			if v, ok := node.Get(key); ok {
				errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, ast.JoinPath(path, key),
					"'%s' is only valid for group specifications, not %s", key, kind).
					At(v.Location))
			}
		}
	}

	for _, e := range node.Entries {
		p := ast.JoinPath(path, e.Key)
		switch e.Key {
		case SettingLogging:
			s.LogLevel = decodeLogging(errs, e.Value, p)
		case SettingConcurrency:
			s.Concurrency = positiveInt(errs, e.Value, p)
		case SettingSeed:
			if n, ok := e.Value.AsInt(); ok {
				seed := int64(n)
				s.Seed = &seed
			} else {
				errs.Add(typeError(e.Value, p, "an integer"))
			}
		case SettingMatrix:
			if kind != KindGroup {
				continue
			}
			space, err := matrix.SpaceFromNode(e.Value, p)
			if err != nil {
				errs.Merge(err)
				continue
			}
			s.Matrix = space
		case SettingRandomSearch:
			s.RandomSearch = decodeRandomSearch(errs, e.Value, p)
		case SettingHyperband:
			s.Hyperband = decodeHyperband(errs, e.Value, p)
		case SettingEarlyStopping:
			s.EarlyStopping = decodeEarlyStopping(errs, e.Value, p)
		}
	}

	if rs, ok := node.Get(SettingRandomSearch); ok && node.Has(SettingHyperband) {
		errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, path,
			"'random_search' and 'hyperband' are mutually exclusive").
			At(rs.Location).
			WithSuggestion("Keep only one search algorithm"))
	}

	if err := errs.ToError(); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeLogging(errs *specErrors.ErrorList, node *ast.Node, path string) string {
	if node.IsNull() {
		return DefaultLogLevel
	}
	if !mappingField(errs, node, path) {
		return DefaultLogLevel
	}
	checkFields(errs, node, path, []string{"level"})
	level, ok := node.Get("level")
	if !ok || level.IsNull() {
		return DefaultLogLevel
	}
	s, ok := level.AsString()
	if !ok {
		errs.Add(typeError(level, ast.JoinPath(path, "level"), "a string"))
		return DefaultLogLevel
	}
	upper := strings.ToUpper(s)
	if !slices.Contains(LogLevels, upper) {
		errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, ast.JoinPath(path, "level"),
			"invalid log level %q", s).
			At(level.Location).
			WithSuggestion(specErrors.SuggestFieldName(upper, LogLevels)))
		return DefaultLogLevel
	}
	return upper
}

func decodeRandomSearch(errs *specErrors.ErrorList, node *ast.Node, path string) *RandomSearch {
	if !mappingField(errs, node, path) {
		return nil
	}
	checkFields(errs, node, path, []string{"n_experiments"})
	rs := &RandomSearch{}
	if n, ok := node.Get("n_experiments"); ok {
		rs.NExperiments = positiveInt(errs, n, ast.JoinPath(path, "n_experiments"))
	}
	return rs
}

func decodeHyperband(errs *specErrors.ErrorList, node *ast.Node, path string) *Hyperband {
	if !mappingField(errs, node, path) {
		return nil
	}
	checkFields(errs, node, path, []string{"max_iter", "eta", "resource", "metric", "resume"})

	hb := &Hyperband{Eta: 3}
	for _, e := range node.Entries {
		p := ast.JoinPath(path, e.Key)
		switch e.Key {
		case "max_iter":
			hb.MaxIter = positiveInt(errs, e.Value, p)
		case "eta":
			hb.Eta = floatField(errs, e.Value, p)
			if e.Value.IsNumber() && hb.Eta <= 1 {
				errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, p,
					"eta must be greater than 1, got %v", e.Value.Value).At(e.Value.Location))
			}
		case "resource":
			hb.Resource = decodeResource(errs, e.Value, p)
		case "metric":
			hb.Metric = decodeMetric(errs, e.Value, p)
		case "resume":
			hb.Resume = boolField(errs, e.Value, p)
		}
	}
	for _, required := range []string{"max_iter", "resource", "metric"} {
		if !node.Has(required) {
			errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, ast.JoinPath(path, required),
				"missing required field '%s'", required).At(node.Location))
		}
	}
	return hb
}

func decodeResource(errs *specErrors.ErrorList, node *ast.Node, path string) Resource {
	r := Resource{Type: ResourceFloat}
	if !mappingField(errs, node, path) {
		return r
	}
	checkFields(errs, node, path, []string{"name", "type"})
	if n, ok := node.Get("name"); ok {
		r.Name = stringField(errs, n, ast.JoinPath(path, "name"))
	} else {
		errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, ast.JoinPath(path, "name"),
			"missing resource name").At(node.Location))
	}
	if t, ok := node.Get("type"); ok {
		r.Type = oneOf(errs, t, ast.JoinPath(path, "type"), resourceTypes)
	}
	return r
}

func decodeMetric(errs *specErrors.ErrorList, node *ast.Node, path string) Metric {
	m := Metric{Optimization: OptimizationMaximize}
	if !mappingField(errs, node, path) {
		return m
	}
	checkFields(errs, node, path, []string{"name", "optimization"})
	if n, ok := node.Get("name"); ok {
		m.Name = stringField(errs, n, ast.JoinPath(path, "name"))
	} else {
		errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, ast.JoinPath(path, "name"),
			"missing metric name").At(node.Location))
	}
	if o, ok := node.Get("optimization"); ok {
		m.Optimization = oneOf(errs, o, ast.JoinPath(path, "optimization"), optimizations)
	}
	return m
}

func decodeEarlyStopping(errs *specErrors.ErrorList, node *ast.Node, path string) []EarlyStopping {
	if !node.IsSequence() {
		errs.Add(typeError(node, path, "a list"))
		return nil
	}
	out := make([]EarlyStopping, 0, len(node.Items))
	for i, item := range node.Items {
		p := ast.IndexPath(path, i)
		if !mappingField(errs, item, p) {
			continue
		}
		checkFields(errs, item, p, []string{"metric", "value", "optimization"})
		es := EarlyStopping{Optimization: OptimizationMaximize}
		if m, ok := item.Get("metric"); ok {
			es.Metric = stringField(errs, m, ast.JoinPath(p, "metric"))
		} else {
			errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, ast.JoinPath(p, "metric"),
				"missing metric name").At(item.Location))
		}
		if v, ok := item.Get("value"); ok {
			es.Value = floatField(errs, v, ast.JoinPath(p, "value"))
		} else {
			errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, ast.JoinPath(p, "value"),
				"missing metric value").At(item.Location))
		}
		if o, ok := item.Get("optimization"); ok {
			es.Optimization = oneOf(errs, o, ast.JoinPath(p, "optimization"), optimizations)
		}
		out = append(out, es)
	}
	return out
}

// ExperimentSettings returns a copy of a group's settings node without the
// group-only keys. It returns nil when nothing is left.
func ExperimentSettings(node *ast.Node) *ast.Node {
	if !node.IsMapping() {
		return nil
	}
	out := node.Without(GroupOnlySettings...)
	if out.Len() == 0 {
		return nil
	}
	return out
}
