package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Rule is the declarative constraint set attached to a checklist item.
// A nil or zero field means "not checked", never "must be absent".
type Rule struct {
	MinPages                   *int     `json:"minPages,omitempty"`
	RequiredKeywords           []string `json:"requiredKeywords,omitempty"`
	MustContainSignature       bool     `json:"mustContainSignature,omitempty"`
	MustBeProfessionallySealed bool     `json:"mustBeProfessionallySealed,omitempty"`
	CaseSensitiveKeywords      bool     `json:"caseSensitiveKeywords,omitempty"`
}

// IsEmpty reports whether the rule checks nothing at all.
func (r Rule) IsEmpty() bool {
	return r.MinPages == nil &&
		len(r.RequiredKeywords) == 0 &&
		!r.MustContainSignature &&
		!r.MustBeProfessionallySealed
}

// Pages returns a pointer to n, for building rules in code.
func Pages(n int) *int { return &n }

// Clone returns a copy that shares no memory with r.
func (r Rule) Clone() Rule {
	out := r
	if r.MinPages != nil {
		out.MinPages = Pages(*r.MinPages)
	}
	if r.RequiredKeywords != nil {
		out.RequiredKeywords = append([]string(nil), r.RequiredKeywords...)
	}
	return out
}

var knownKeys = map[string]struct{}{
	"minPages":                   {},
	"requiredKeywords":           {},
	"mustContainSignature":       {},
	"mustBeProfessionallySealed": {},
	"caseSensitiveKeywords":      {},
}

// DecodeRule parses a validationRules object. It never fails: unknown keys,
// wrong-typed values and invalid entries are dropped and described in issues.
// A document that is not a JSON object decodes to the empty rule.
func DecodeRule(raw []byte) (Rule, []string) {
	var r Rule
	var issues []string

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return r, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return r, []string{fmt.Sprintf("validationRules ignored: not an object (%v)", err)}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := knownKeys[k]; !ok {
			issues = append(issues, fmt.Sprintf("unknown key %q ignored", k))
		}
	}

	if v, ok := fields["minPages"]; ok {
		if n, ok := decodeMinPages(v); ok {
			r.MinPages = &n
		} else {
			issues = append(issues, fmt.Sprintf("minPages ignored: want a non-negative integer, got %s", compact(v)))
		}
	}
	if v, ok := fields["requiredKeywords"]; ok {
		kws, kwIssues := decodeKeywords(v)
		r.RequiredKeywords = kws
		issues = append(issues, kwIssues...)
	}
	r.MustContainSignature = decodeFlag(fields, "mustContainSignature", &issues)
	r.MustBeProfessionallySealed = decodeFlag(fields, "mustBeProfessionallySealed", &issues)
	r.CaseSensitiveKeywords = decodeFlag(fields, "caseSensitiveKeywords", &issues)

	return r, issues
}

// UnmarshalJSON decodes leniently; see DecodeRule.
func (r *Rule) UnmarshalJSON(data []byte) error {
	*r, _ = DecodeRule(data)
	return nil
}

func decodeMinPages(v json.RawMessage) (int, bool) {
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return 0, false
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func decodeKeywords(v json.RawMessage) ([]string, []string) {
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		// a lone string is accepted as a one-element list
		var single string
		if err := json.Unmarshal(v, &single); err == nil && strings.TrimSpace(single) != "" {
			return []string{single}, []string{"requiredKeywords given as a string; treated as a single keyword"}
		}
		return nil, []string{fmt.Sprintf("requiredKeywords ignored: want a list of strings, got %s", compact(v))}
	}

	var out []string
	var issues []string
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			issues = append(issues, fmt.Sprintf("requiredKeywords[%d] ignored: not a string", i))
			continue
		}
		if strings.TrimSpace(s) == "" {
			issues = append(issues, fmt.Sprintf("requiredKeywords[%d] ignored: blank", i))
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, issues
}

func decodeFlag(fields map[string]json.RawMessage, key string, issues *[]string) bool {
	v, ok := fields[key]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(v, &b); err != nil {
		*issues = append(*issues, fmt.Sprintf("%s ignored: want a boolean, got %s", key, compact(v)))
		return false
	}
	return b
}

func compact(v json.RawMessage) string {
	s := string(bytes.TrimSpace(v))
	if len(s) > 40 {
		s = s[:39] + "…"
	}
	return s
}
