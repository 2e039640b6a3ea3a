package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/permit-readiness/internal/entity"
)

// loadChecklist reads a checklist file: a JSON array of items, a YAML list,
// or a template document with an "items" key.
func loadChecklist(path string) (entity.Checklist, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if raw, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("convert %s: %w", path, err)
		}
	}

	var cl entity.Checklist
	if err := json.Unmarshal(raw, &cl); err == nil {
		return cl, nil
	}
	var wrapped struct {
		Items entity.Checklist `json:"items"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(wrapped.Items) == 0 {
		return nil, fmt.Errorf("%s: no checklist items", path)
	}
	return wrapped.Items, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
