package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/joseph-ayodele/permit-readiness/internal/core/rules"
)

// ChecklistItem is one artifact a jurisdiction (or the applicant) asks for.
// Jurisdiction items and user-added items share this type; Custom tells them apart.
type ChecklistItem struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Required        bool        `json:"required"`
	Custom          bool        `json:"custom,omitempty"`
	FileTypes       string      `json:"fileTypes,omitempty"`
	ValidationRules *rules.Rule `json:"validationRules,omitempty"`
}

// Rule returns the item's rule, or the empty rule.
func (c ChecklistItem) Rule() rules.Rule {
	if c.ValidationRules == nil {
		return rules.Rule{}
	}
	return *c.ValidationRules
}

// UnmarshalJSON accepts numeric ids, which older jurisdiction data uses.
func (c *ChecklistItem) UnmarshalJSON(data []byte) error {
	type plain ChecklistItem
	var aux struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, err := decodeID(aux.ID)
	if err != nil {
		return err
	}
	*c = ChecklistItem(aux.plain)
	c.ID = id
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10), nil
		}
		return n.String(), nil
	}
	return "", fmt.Errorf("checklist item id: want string or number, got %s", raw)
}

// Checklist is an ordered list of items. Order is display order.
type Checklist []ChecklistItem

// Find returns the item with the given id.
func (cl Checklist) Find(id string) (ChecklistItem, bool) {
	for _, it := range cl {
		if it.ID == id {
			return it, true
		}
	}
	return ChecklistItem{}, false
}

// Required returns the required items in order.
func (cl Checklist) Required() []ChecklistItem {
	var out []ChecklistItem
	for _, it := range cl {
		if it.Required {
			out = append(out, it)
		}
	}
	return out
}

// Clone deep-copies the checklist, rules included.
func (cl Checklist) Clone() Checklist {
	if cl == nil {
		return nil
	}
	out := make(Checklist, len(cl))
	for i, it := range cl {
		out[i] = it
		if it.ValidationRules != nil {
			r := it.ValidationRules.Clone()
			out[i].ValidationRules = &r
		}
	}
	return out
}
