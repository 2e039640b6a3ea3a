package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-readiness/internal/common"
	"github.com/joseph-ayodele/permit-readiness/internal/testutil"
)

func TestLocalStorePutGetDelete(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), testutil.Logger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	body := []byte("%PDF-1.4 fake")

	if err := s.Put(ctx, "p/1/doc.pdf", bytes.NewReader(body), int64(len(body)), "application/pdf"); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, "p/1/doc.pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Errorf("got %q, want %q", got, body)
	}

	if err := s.Delete(ctx, "p/1/doc.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "p/1/doc.pdf"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "p/1/doc.pdf"); err != nil {
		t.Errorf("second delete should succeed, got %v", err)
	}
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), testutil.Logger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for _, key := range []string{"", "../outside.pdf", "a/../../b", "."} {
		err := s.Put(context.Background(), key, strings.NewReader("x"), 1, "")
		if !errors.Is(err, common.ErrInvalidInput) {
			t.Errorf("Put(%q) = %v, want ErrInvalidInput", key, err)
		}
	}
}

func TestDocumentKey(t *testing.T) {
	pid := uuid.MustParse("5b0c1a4e-2f3d-4c5b-8a6e-7f8091a2b3c4")
	did := uuid.MustParse("0f1e2d3c-4b5a-4968-8776-655443322110")
	got := DocumentKey(pid, "../custom 1", did, "Site Plan.PDF")
	want := pid.String() + "/___custom_1/" + did.String() + ".pdf"
	if got != want {
		t.Errorf("DocumentKey = %q, want %q", got, want)
	}
	if _, err := cleanKey(got); err != nil {
		t.Errorf("generated key not canonical: %v", err)
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), common.StorageConfig{Backend: "ftp"}, testutil.Logger())
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("New(ftp) = %v, want ErrInvalidInput", err)
	}
}

// fakeS3 accepts object PUTs and DELETEs on path-style URLs.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		b, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = b
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestMinioStorePutAndDelete(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	s, err := NewMinioStore(MinioConfig{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "test",
		SecretKey: "testsecret",
		Bucket:    "permits",
		Region:    "us-east-1",
	}, testutil.Logger())
	if err != nil {
		t.Fatalf("new minio store: %v", err)
	}

	ctx := context.Background()
	if err := s.Put(ctx, "p/1/doc.pdf", strings.NewReader("hello"), 5, "application/pdf"); err != nil {
		t.Fatalf("put: %v", err)
	}
	fake.mu.Lock()
	got := string(fake.objects["/permits/p/1/doc.pdf"])
	fake.mu.Unlock()
	// plain-http uploads use aws-chunked framing around the payload
	if !strings.Contains(got, "hello") {
		t.Errorf("stored %q, want payload %q", got, "hello")
	}

	if err := s.Delete(ctx, "p/1/doc.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	fake.mu.Lock()
	_, still := fake.objects["/permits/p/1/doc.pdf"]
	fake.mu.Unlock()
	if still {
		t.Error("object not deleted")
	}
}
