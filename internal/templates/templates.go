// Package templates loads the per-jurisdiction checklist templates new
// projects start from.
package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/permit-readiness/constants"
	"github.com/joseph-ayodele/permit-readiness/internal/core/rules"
	"github.com/joseph-ayodele/permit-readiness/internal/entity"
)

//go:embed data/*.yaml data/checklist.schema.json
var embedded embed.FS

const schemaName = "checklist.schema.json"

// Template is the checklist a jurisdiction requires.
type Template struct {
	Jurisdiction constants.Jurisdiction `json:"jurisdiction"`
	Description  string                 `json:"description,omitempty"`
	Items        entity.Checklist       `json:"items"`
	Source       string                 `json:"-"`
}

// Registry holds the current templates. Overrides from a directory replace the
// embedded defaults per jurisdiction.
type Registry struct {
	mu          sync.RWMutex
	byJur       map[constants.Jurisdiction]Template
	schema      *jsonschema.Schema
	overrideDir string
	logger      *slog.Logger
}

// Load reads the embedded templates and, when overrideDir is set, the YAML
// files inside it. Embedded templates must be valid; a bad override file is
// logged and skipped.
func Load(overrideDir string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	r := &Registry{schema: schema, overrideDir: overrideDir, logger: logger}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload rebuilds the registry from the embedded data and the override dir.
func (r *Registry) Reload() error {
	next := make(map[constants.Jurisdiction]Template, len(constants.Jurisdictions()))

	names, err := fs.Glob(embedded, "data/*.yaml")
	if err != nil {
		return err
	}
	for _, name := range names {
		raw, err := embedded.ReadFile(name)
		if err != nil {
			return err
		}
		t, err := r.Parse(raw, "embedded:"+filepath.Base(name))
		if err != nil {
			return err
		}
		next[t.Jurisdiction] = t
	}

	if r.overrideDir != "" {
		for _, t := range r.readOverrides() {
			next[t.Jurisdiction] = t
		}
	}

	for _, j := range constants.Jurisdictions() {
		if _, ok := next[j]; !ok {
			return fmt.Errorf("no checklist template for %q", j)
		}
	}

	r.mu.Lock()
	r.byJur = next
	r.mu.Unlock()
	r.logger.Info("templates loaded", "count", len(next), "override_dir", r.overrideDir)
	return nil
}

func (r *Registry) readOverrides() []Template {
	entries, err := os.ReadDir(r.overrideDir)
	if err != nil {
		r.logger.Warn("cannot read template dir", "dir", r.overrideDir, "error", err)
		return nil
	}
	var out []Template
	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		p := filepath.Join(r.overrideDir, e.Name())
		raw, err := os.ReadFile(p)
		if err != nil {
			r.logger.Warn("cannot read template", "path", p, "error", err)
			continue
		}
		t, err := r.Parse(raw, p)
		if err != nil {
			r.logger.Warn("skipping invalid template", "path", p, "error", err)
			continue
		}
		out = append(out, t)
	}
	return out
}

// Parse decodes one YAML template, checks it against the schema and
// resolves its jurisdiction.
func (r *Registry) Parse(raw []byte, source string) (Template, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Template{}, fmt.Errorf("%s: parse yaml: %w", source, err)
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return Template{}, fmt.Errorf("%s: yaml is not json-compatible: %w", source, err)
	}

	var v any
	if err := json.Unmarshal(js, &v); err != nil {
		return Template{}, fmt.Errorf("%s: unmarshal data: %w", source, err)
	}
	if err := r.schema.Validate(v); err != nil {
		return Template{}, fmt.Errorf("%s: template does not match schema: %w", source, err)
	}

	var t Template
	if err := json.Unmarshal(js, &t); err != nil {
		return Template{}, fmt.Errorf("%s: decode template: %w", source, err)
	}
	j, ok := constants.Canonicalize(string(t.Jurisdiction))
	if !ok {
		return Template{}, fmt.Errorf("%s: unsupported jurisdiction %q", source, t.Jurisdiction)
	}
	t.Jurisdiction = j
	t.Source = source

	seen := make(map[string]struct{}, len(t.Items))
	for i := range t.Items {
		it := &t.Items[i]
		it.ID = strings.TrimSpace(it.ID)
		if it.ID == "" {
			return Template{}, fmt.Errorf("%s: item %d has an empty id", source, i)
		}
		if _, dup := seen[it.ID]; dup {
			return Template{}, fmt.Errorf("%s: duplicate item id %q", source, it.ID)
		}
		seen[it.ID] = struct{}{}
		it.Custom = false
	}
	r.logRuleIssues(js, source)
	return t, nil
}

// logRuleIssues reports rule keys that were ignored while decoding.
func (r *Registry) logRuleIssues(js []byte, source string) {
	var loose struct {
		Items []struct {
			Name            string          `json:"name"`
			ValidationRules json.RawMessage `json:"validationRules"`
		} `json:"items"`
	}
	if err := json.Unmarshal(js, &loose); err != nil {
		return
	}
	for _, it := range loose.Items {
		if len(it.ValidationRules) == 0 {
			continue
		}
		if _, issues := rules.DecodeRule(it.ValidationRules); len(issues) > 0 {
			r.logger.Warn("template rule issues", "source", source, "item", it.Name, "issues", issues)
		}
	}
}

// Get returns a copy of the template for a jurisdiction name or synonym.
func (r *Registry) Get(jurisdiction string) (Template, bool) {
	j, ok := constants.Canonicalize(jurisdiction)
	if !ok {
		return Template{}, false
	}
	r.mu.RLock()
	t, ok := r.byJur[j]
	r.mu.RUnlock()
	if !ok {
		return Template{}, false
	}
	t.Items = t.Items.Clone()
	return t, true
}

// List returns every template in jurisdiction order.
func (r *Registry) List() []Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Template, 0, len(r.byJur))
	for _, t := range r.byJur {
		t.Items = t.Items.Clone()
		out = append(out, t)
	}
	order := make(map[constants.Jurisdiction]int)
	for i, j := range constants.Jurisdictions() {
		order[j] = i
	}
	sort.Slice(out, func(a, b int) bool { return order[out[a].Jurisdiction] < order[out[b].Jurisdiction] })
	return out
}

func compileSchema() (*jsonschema.Schema, error) {
	b, err := embedded.ReadFile("data/" + schemaName)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaName, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaName)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func isYAML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
