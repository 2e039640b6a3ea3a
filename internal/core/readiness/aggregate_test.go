package readiness

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/permit-readiness/internal/entity"
)

func item(id string, required bool) entity.ChecklistItem {
	return entity.ChecklistItem{ID: id, Name: "Item " + id, Required: required}
}

func TestAggregate_ScenarioD(t *testing.T) {
	checklist := []entity.ChecklistItem{
		item("r1", true), item("r2", true), item("r3", true),
		item("o1", false), item("o2", false), item("o3", false), item("o4", false), item("o5", false),
	}
	uploaded := []string{"r1", "r3", "o1", "o2", "o3", "o4", "o5"}

	got := Aggregate(checklist, uploaded)

	want := Summary{
		CompletionPercentage:  66,
		MissingRequired:       []entity.ChecklistItem{item("r2", true)},
		RequiredCount:         3,
		UploadedRequiredCount: 2,
		OptionalUploadedCount: 5,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_NoRequiredItemsIsZero(t *testing.T) {
	checklist := []entity.ChecklistItem{item("o1", false), item("o2", false)}
	for _, uploaded := range [][]string{nil, {"o1"}, {"o1", "o2", "o2", "x"}} {
		got := Aggregate(checklist, uploaded)
		if got.CompletionPercentage != 0 {
			t.Errorf("uploads %v: completion = %d, want 0", uploaded, got.CompletionPercentage)
		}
		if got.Ready {
			t.Errorf("uploads %v: Ready = true with nothing required", uploaded)
		}
	}
	if got := Aggregate(nil, []string{"a"}); got.CompletionPercentage != 0 || got.OptionalUploadedCount != 1 {
		t.Errorf("empty checklist: %+v", got)
	}
}

func TestAggregate_MissingPreservesChecklistOrder(t *testing.T) {
	checklist := []entity.ChecklistItem{item("c", true), item("a", true), item("o", false), item("b", true)}
	got := Aggregate(checklist, []string{"a"})

	var ids []string
	for _, it := range got.MissingRequired {
		ids = append(ids, it.ID)
	}
	if diff := cmp.Diff([]string{"c", "b"}, ids); diff != "" {
		t.Errorf("missing order (-want +got):\n%s", diff)
	}
}

func TestAggregate_DuplicatesAndOrphans(t *testing.T) {
	checklist := []entity.ChecklistItem{item("r1", true), item("r2", true), item("o1", false)}
	uploaded := []string{"r1", "r1", "r1", "r2", "orphan", "o1"}

	got := Aggregate(checklist, uploaded)
	if got.CompletionPercentage != 100 || !got.Ready {
		t.Errorf("completion = %d ready = %v, want 100 true", got.CompletionPercentage, got.Ready)
	}
	if got.UploadedRequiredCount != 2 {
		t.Errorf("UploadedRequiredCount = %d, want 2", got.UploadedRequiredCount)
	}
	if got.OptionalUploadedCount != 2 {
		t.Errorf("OptionalUploadedCount = %d, want 2 (orphan + o1)", got.OptionalUploadedCount)
	}
	want := []Duplicate{{ChecklistItemID: "r1", Count: 3}}
	if diff := cmp.Diff(want, got.DuplicateUploads); diff != "" {
		t.Errorf("duplicates (-want +got):\n%s", diff)
	}
	if len(got.MissingRequired) != 0 {
		t.Errorf("MissingRequired = %v", got.MissingRequired)
	}
}

func TestAggregate_DuplicateRequiredIDsCountOnce(t *testing.T) {
	checklist := []entity.ChecklistItem{item("r1", true), item("r1", true), item("r2", true)}
	got := Aggregate(checklist, []string{"r1"})
	if got.RequiredCount != 2 || got.CompletionPercentage != 50 {
		t.Errorf("got %+v, want 2 required and 50%%", got)
	}
}

func TestAggregate_MonotonicInUploads(t *testing.T) {
	var checklist []entity.ChecklistItem
	for i := 0; i < 7; i++ {
		checklist = append(checklist, item(fmt.Sprintf("r%d", i), true))
	}
	var uploaded []string
	prev := Aggregate(checklist, uploaded).CompletionPercentage
	for _, it := range checklist {
		uploaded = append(uploaded, it.ID)
		cur := Aggregate(checklist, uploaded).CompletionPercentage
		if cur < prev {
			t.Fatalf("completion decreased from %d to %d after uploading %s", prev, cur, it.ID)
		}
		if cur < 0 || cur > 100 {
			t.Fatalf("completion %d out of range", cur)
		}
		prev = cur
	}
	if prev != 100 {
		t.Errorf("final completion = %d, want 100", prev)
	}
}

func TestCompletionFloors(t *testing.T) {
	tests := []struct{ uploaded, required, want int }{
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 66},
		{3, 3, 100},
		{5, 3, 100},
		{-1, 3, 0},
		{1, 0, 0},
	}
	for _, tt := range tests {
		if got := completion(tt.uploaded, tt.required); got != tt.want {
			t.Errorf("completion(%d, %d) = %d, want %d", tt.uploaded, tt.required, got, tt.want)
		}
	}
}
