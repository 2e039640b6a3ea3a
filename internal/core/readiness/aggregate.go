package readiness

import (
	"sort"

	"github.com/joseph-ayodele/permit-readiness/internal/entity"
)

// Summary is the project-level readiness view. It is always recomputed,
// never stored.
type Summary struct {
	CompletionPercentage  int                    `json:"completionPercentage"`
	MissingRequired       []entity.ChecklistItem `json:"missingRequired"`
	RequiredCount         int                    `json:"requiredCount"`
	UploadedRequiredCount int                    `json:"uploadedRequiredCount"`
	OptionalUploadedCount int                    `json:"optionalUploadedCount"`
	DuplicateUploads      []Duplicate            `json:"duplicateUploads,omitempty"`
	Ready                 bool                   `json:"ready"`
}

// Duplicate flags a checklist item with more than one uploaded document.
// It is informational and does not affect completion.
type Duplicate struct {
	ChecklistItemID string `json:"checklistItemId"`
	Count           int    `json:"count"`
}

// Aggregate computes readiness from the checklist and the item ids of all
// uploaded documents (one entry per document; repeats allowed).
// An item counts as uploaded when it has at least one document. Validation
// status is not considered.
func Aggregate(checklist []entity.ChecklistItem, uploadedIDs []string) Summary {
	counts := make(map[string]int, len(uploadedIDs))
	for _, id := range uploadedIDs {
		counts[id]++
	}

	s := Summary{MissingRequired: []entity.ChecklistItem{}}
	seenRequired := make(map[string]struct{})
	for _, item := range checklist {
		if !item.Required {
			continue
		}
		if _, dup := seenRequired[item.ID]; dup {
			continue
		}
		seenRequired[item.ID] = struct{}{}
		s.RequiredCount++
		if counts[item.ID] > 0 {
			s.UploadedRequiredCount++
		} else {
			s.MissingRequired = append(s.MissingRequired, item)
		}
	}

	uploadedRequiredDocs := 0
	for id := range seenRequired {
		uploadedRequiredDocs += counts[id]
	}
	s.OptionalUploadedCount = len(uploadedIDs) - uploadedRequiredDocs

	s.CompletionPercentage = completion(s.UploadedRequiredCount, s.RequiredCount)
	s.Ready = s.RequiredCount > 0 && s.CompletionPercentage == 100
	s.DuplicateUploads = duplicates(counts)
	return s
}

// completion is floor(100*uploaded/required) clamped to [0, 100]; 0 when nothing is required.
func completion(uploaded, required int) int {
	if required <= 0 {
		return 0
	}
	pct := uploaded * 100 / required
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

func duplicates(counts map[string]int) []Duplicate {
	var out []Duplicate
	for id, n := range counts {
		if n > 1 {
			out = append(out, Duplicate{ChecklistItemID: id, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChecklistItemID < out[j].ChecklistItemID })
	return out
}
