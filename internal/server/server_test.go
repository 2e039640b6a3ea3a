package server

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/permit-readiness/constants"
	"github.com/joseph-ayodele/permit-readiness/internal/ingest"
	"github.com/joseph-ayodele/permit-readiness/internal/repository"
	"github.com/joseph-ayodele/permit-readiness/internal/services/permit"
	"github.com/joseph-ayodele/permit-readiness/internal/storage"
	"github.com/joseph-ayodele/permit-readiness/internal/templates"
	"github.com/joseph-ayodele/permit-readiness/internal/testutil"
	"github.com/joseph-ayodele/permit-readiness/internal/testutil/pdftest"
)

func startServer(t *testing.T) (*Client, *grpc.ClientConn) {
	t.Helper()
	db := testutil.OpenDB(t)
	log := testutil.Logger()
	store, err := storage.NewLocalStore(t.TempDir(), log)
	if err != nil {
		t.Fatal(err)
	}
	tpl, err := templates.Load("", log)
	if err != nil {
		t.Fatal(err)
	}
	svc := permit.NewService(permit.Deps{
		Projects:    repository.NewProjectRepository(db, log),
		Documents:   repository.NewDocumentRepository(db, log),
		Validations: repository.NewValidationRepository(db, log),
		Store:       store,
		Templates:   tpl,
	}, log)
	gs, _ := NewGRPCServer(NewPermitServer(svc, ingest.NewFSIngestor(svc, log), tpl, log), log)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn), conn
}

func TestPermitServiceFlow(t *testing.T) {
	c, _ := startServer(t)
	ctx := context.Background()

	var created ProjectResponse
	if err := c.Call(ctx, "CreateProject", CreateProjectRequest{Name: "Mission Bay Lab", Jurisdiction: "sf"}, &created); err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Project.Jurisdiction != string(constants.SanFrancisco) || len(created.Project.Checklist) != 12 {
		t.Fatalf("project = %+v", created.Project)
	}
	pid := created.Project.ID.String()

	var added ItemResponse
	if err := c.Call(ctx, "AddCustomItem", AddCustomItemRequest{ProjectID: pid, ID: "geo", Name: "Geotechnical Report", Required: true}, &added); err != nil {
		t.Fatalf("add item: %v", err)
	}

	var up UploadDocumentResponse
	pdf := pdftest.BuildPDF("Geotechnical report", "Signed: A. Rivera, P.E.")
	if err := c.Call(ctx, "UploadDocument", UploadDocumentRequest{ProjectID: pid, ChecklistItemID: "geo", Filename: "geo.pdf", Data: pdf}, &up); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if up.Validation.Status != constants.StatusPass || up.Document.FileSize != int64(len(pdf)) {
		t.Errorf("upload = %+v / %+v", up.Document, up.Validation)
	}
	did := up.Document.ID.String()

	var v ValidationResponse
	if err := c.Call(ctx, "GetValidation", ItemRequest{ProjectID: pid, ChecklistItemID: "geo"}, &v); err != nil {
		t.Fatalf("get validation: %v", err)
	}
	if v.Validation.Status != constants.StatusPass {
		t.Errorf("validation = %+v", v.Validation)
	}

	var sum DocumentSummaryResponse
	if err := c.Call(ctx, "DocumentSummary", DocumentRequest{DocumentID: did}, &sum); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Summary.PageCount != 2 || !sum.Summary.HasSignature || !sum.Summary.HasProfessionalSeal {
		t.Errorf("summary = %+v", sum.Summary)
	}

	var rd ReadinessResponse
	if err := c.Call(ctx, "Readiness", ProjectRequest{ProjectID: pid}, &rd); err != nil {
		t.Fatalf("readiness: %v", err)
	}
	if rd.Readiness.Ready || rd.Readiness.UploadedRequiredCount != 1 {
		t.Errorf("readiness = %+v", rd.Readiness)
	}

	var rep ExportReportResponse
	if err := c.Call(ctx, "ExportReport", ProjectRequest{ProjectID: pid}, &rep); err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(rep.Xlsx) < 2 || string(rep.Xlsx[:2]) != "PK" {
		t.Error("export is not an xlsx payload")
	}

	var hist ValidationHistoryResponse
	var re ValidationRecordResponse
	if err := c.Call(ctx, "RevalidateDocument", DocumentRequest{DocumentID: did}, &re); err != nil {
		t.Fatalf("revalidate: %v", err)
	}
	if err := c.Call(ctx, "ValidationHistory", DocumentRequest{DocumentID: did}, &hist); err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist.Validations) != 2 {
		t.Errorf("history = %d entries", len(hist.Validations))
	}

	var del DeleteResponse
	if err := c.Call(ctx, "DeleteProject", ProjectRequest{ProjectID: pid}, &del); err != nil || !del.Deleted {
		t.Fatalf("delete: %v", err)
	}
	var list ListProjectsResponse
	if err := c.Call(ctx, "ListProjects", Empty{}, &list); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Projects) != 0 {
		t.Errorf("projects after delete = %+v", list.Projects)
	}
}

func TestPermitServiceErrors(t *testing.T) {
	c, _ := startServer(t)
	ctx := context.Background()
	tests := []struct {
		method string
		req    any
		want   codes.Code
	}{
		{"GetProject", ProjectRequest{ProjectID: "nope"}, codes.InvalidArgument},
		{"GetProject", ProjectRequest{ProjectID: "7b6c6b5e-2f4e-4d36-9d0a-4d7b1f0e2a11"}, codes.NotFound},
		{"CreateProject", CreateProjectRequest{Name: "x", Jurisdiction: "Atlantis"}, codes.InvalidArgument},
		{"DocumentSummary", DocumentRequest{DocumentID: "7b6c6b5e-2f4e-4d36-9d0a-4d7b1f0e2a11"}, codes.NotFound},
		{"IngestDirectory", IngestDirectoryRequest{ProjectID: "nope", RootPath: "/tmp"}, codes.InvalidArgument},
	}
	for _, tt := range tests {
		err := c.Call(ctx, tt.method, tt.req, &struct{}{})
		if got := status.Code(err); got != tt.want {
			t.Errorf("%s: code = %v (%v), want %v", tt.method, got, err, tt.want)
		}
	}
}

func TestIngestDirectoryAndTemplates(t *testing.T) {
	c, _ := startServer(t)
	ctx := context.Background()

	var created ProjectResponse
	if err := c.Call(ctx, "CreateProject", CreateProjectRequest{Name: "Back Bay", Jurisdiction: "boston"}, &created); err != nil {
		t.Fatalf("create: %v", err)
	}
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "1"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "1", "form.pdf"), pdftest.BuildPDF("Building permit application"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out IngestDirectoryResponse
	if err := c.Call(ctx, "IngestDirectory", IngestDirectoryRequest{ProjectID: created.Project.ID.String(), RootPath: root}, &out); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if out.Succeeded != 1 || out.Failed != 0 || out.Results[0].ChecklistItemID != "1" {
		t.Errorf("ingest = %+v", out)
	}

	var tpl ListTemplatesResponse
	if err := c.Call(ctx, "ListTemplates", Empty{}, &tpl); err != nil {
		t.Fatalf("templates: %v", err)
	}
	var got []string
	for _, tp := range tpl.Templates {
		got = append(got, string(tp.Jurisdiction))
	}
	if diff := cmp.Diff(constants.AsStringSlice(), got); diff != "" {
		t.Errorf("templates (-want +got):\n%s", diff)
	}
}

func TestHealthAndRequestID(t *testing.T) {
	c, conn := startServer(t)
	ctx := context.Background()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil || resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("health = %v, %v", resp, err)
	}

	var header metadata.MD
	ctx = metadata.AppendToOutgoingContext(ctx, RequestIDKey, "rid-42")
	if err := c.Call(ctx, "ListProjects", Empty{}, &ListProjectsResponse{}, grpc.Header(&header)); err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := header.Get(RequestIDKey); len(got) != 1 || got[0] != "rid-42" {
		t.Errorf("request id header = %v", got)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	skip := false
	in := IngestDirectoryRequest{ProjectID: "p", RootPath: "/r", SkipHidden: &skip}
	s, err := encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if s.Fields["skip_hidden"].GetKind().(*structpb.Value_BoolValue).BoolValue {
		t.Error("skip_hidden lost")
	}
	var out IngestDirectoryRequest
	if err := decode(s, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}
