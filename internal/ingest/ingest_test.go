package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-readiness/constants"
	"github.com/joseph-ayodele/permit-readiness/internal/entity"
	"github.com/joseph-ayodele/permit-readiness/internal/services/permit"
	"github.com/joseph-ayodele/permit-readiness/internal/testutil"
)

type fakeUploader struct {
	mu   sync.Mutex
	reqs []permit.UploadDocumentRequest
	seen map[string]uuid.UUID
	fail map[string]error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{seen: map[string]uuid.UUID{}, fail: map[string]error{}}
}

func (f *fakeUploader) UploadDocument(_ context.Context, req permit.UploadDocumentRequest) (*permit.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if err := f.fail[req.Filename]; err != nil {
		return nil, err
	}
	key := req.ChecklistItemID + "/" + string(req.Data)
	id, dup := f.seen[key]
	if !dup || !req.SkipDuplicates {
		id = uuid.New()
		f.seen[key] = id
		dup = false
	}
	return &permit.UploadResult{
		Document:     &entity.Document{ID: id, ChecklistItemID: req.ChecklistItemID, ContentHash: []byte{0xab, 0xcd}},
		Validation:   &entity.ValidationRecord{Status: constants.StatusPass},
		Deduplicated: dup,
	}, nil
}

func (f *fakeUploader) requests() []permit.UploadDocumentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]permit.UploadDocumentRequest(nil), f.reqs...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "1", "plot.pdf"), "plot")
	writeFile(t, filepath.Join(root, "1", "nested", "copy.PDF"), "plot")
	writeFile(t, filepath.Join(root, "2", "beam.dwg"), "beam")
	writeFile(t, filepath.Join(root, "2", "notes.txt"), "ignored")
	writeFile(t, filepath.Join(root, ".cache", "x.pdf"), "hidden")
	writeFile(t, filepath.Join(root, "loose.pdf"), "no item")
	writeFile(t, filepath.Join(root, "3", "bad.pdf"), "boom")

	up := newFakeUploader()
	up.fail["bad.pdf"] = errors.New("checklist item not found")
	ing := NewFSIngestor(up, testutil.Logger())

	results, stats, err := ing.IngestDirectory(context.Background(), uuid.New(), root, true)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	want := DirStats{Matched: 5, Succeeded: 3, Deduplicated: 1, Failed: 2}
	stats.Scanned = 0
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}
	if len(results) != 5 {
		t.Fatalf("results = %d", len(results))
	}

	var items []string
	for _, r := range up.requests() {
		items = append(items, r.ChecklistItemID+":"+r.Filename)
		if !r.SkipDuplicates {
			t.Errorf("request for %s did not skip duplicates", r.Filename)
		}
	}
	sort.Strings(items)
	if diff := cmp.Diff([]string{"1:copy.PDF", "1:plot.pdf", "2:beam.dwg", "3:bad.pdf"}, items); diff != "" {
		t.Errorf("uploads (-want +got):\n%s", diff)
	}
	for _, r := range results {
		if r.Err == "" && (r.HashHex != "abcd" || r.Status != constants.StatusPass) {
			t.Errorf("result = %+v", r)
		}
	}
}

func TestIngestDirectoryIncludesHidden(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".9", "x.pdf"), "x")
	up := newFakeUploader()
	_, stats, err := NewFSIngestor(up, testutil.Logger()).IngestDirectory(context.Background(), uuid.New(), root, false)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if stats.Succeeded != 1 || up.requests()[0].ChecklistItemID != ".9" {
		t.Errorf("stats = %+v", stats)
	}
}

func TestIngestPathRejectsExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.exe")
	writeFile(t, path, "x")
	ing := NewFSIngestor(newFakeUploader(), testutil.Logger())
	if _, err := ing.IngestPath(context.Background(), uuid.New(), "1", path); err == nil {
		t.Fatal("expected error")
	}
	if _, _, err := ing.IngestDirectory(context.Background(), uuid.New(), " ", true); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestItemFromPath(t *testing.T) {
	root := filepath.FromSlash("/data/project")
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"/data/project/3/a.pdf", "3", true},
		{"/data/project/site-plan/sub/a.pdf", "site-plan", true},
		{"/data/project/a.pdf", "", false},
		{"/data/other/3/a.pdf", "", false},
	}
	for _, tt := range tests {
		got, ok := itemFromPath(root, filepath.FromSlash(tt.path))
		if got != tt.want || ok != tt.ok {
			t.Errorf("itemFromPath(%q) = %q, %v", tt.path, got, ok)
		}
	}
}

func TestWatchUploadsNewFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "4"), 0o755); err != nil {
		t.Fatal(err)
	}
	up := newFakeUploader()
	ing := NewFSIngestor(up, testutil.Logger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ing.Watch(ctx, uuid.New(), root, WatchConfig{Debounce: 20 * time.Millisecond}) }()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(root, "4", "energy.pdf"), "title 24")

	deadline := time.Now().Add(3 * time.Second)
	for len(up.requests()) == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch: %v", err)
	}
	reqs := up.requests()
	if len(reqs) == 0 || reqs[0].ChecklistItemID != "4" || reqs[0].Filename != "energy.pdf" {
		t.Fatalf("requests = %+v", reqs)
	}
}

func TestStartWatcherInitialScan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "1", "a.pdf"), "a")
	writeFile(t, filepath.Join(root, "1", "skip.txt"), "b")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Logger: testutil.Logger()})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	select {
	case p := <-events:
		if filepath.Base(p) != "a.pdf" {
			t.Errorf("event = %q", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no initial event")
	}

	if _, _, err := StartWatcher(ctx, WatchConfig{}); err == nil {
		t.Error("expected error without roots")
	}
}
