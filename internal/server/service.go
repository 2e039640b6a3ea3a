package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "permit.v1.PermitService"

// PermitServiceServer is the server API for permit.v1.PermitService.
type PermitServiceServer interface {
	CreateProject(context.Context, *CreateProjectRequest) (*ProjectResponse, error)
	ListProjects(context.Context, *Empty) (*ListProjectsResponse, error)
	GetProject(context.Context, *ProjectRequest) (*ProjectResponse, error)
	DeleteProject(context.Context, *ProjectRequest) (*DeleteResponse, error)
	AddCustomItem(context.Context, *AddCustomItemRequest) (*ItemResponse, error)
	RemoveCustomItem(context.Context, *ItemRequest) (*DeleteResponse, error)
	UploadDocument(context.Context, *UploadDocumentRequest) (*UploadDocumentResponse, error)
	ListDocuments(context.Context, *ProjectRequest) (*ListDocumentsResponse, error)
	DeleteDocument(context.Context, *DocumentRequest) (*DeleteResponse, error)
	GetValidation(context.Context, *ItemRequest) (*ValidationResponse, error)
	DocumentValidation(context.Context, *DocumentRequest) (*ValidationResponse, error)
	ValidationHistory(context.Context, *DocumentRequest) (*ValidationHistoryResponse, error)
	RevalidateDocument(context.Context, *DocumentRequest) (*ValidationRecordResponse, error)
	RevalidateProject(context.Context, *ProjectRequest) (*RevalidateProjectResponse, error)
	DocumentSummary(context.Context, *DocumentRequest) (*DocumentSummaryResponse, error)
	Readiness(context.Context, *ProjectRequest) (*ReadinessResponse, error)
	ExportReport(context.Context, *ProjectRequest) (*ExportReportResponse, error)
	IngestDirectory(context.Context, *IngestDirectoryRequest) (*IngestDirectoryResponse, error)
	ListTemplates(context.Context, *Empty) (*ListTemplatesResponse, error)
}

var _ PermitServiceServer = (*PermitServer)(nil)

// PermitServiceDesc declares the service by hand. Every method takes and
// returns a google.protobuf.Struct.
var PermitServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PermitServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateProject", PermitServiceServer.CreateProject),
		unary("ListProjects", PermitServiceServer.ListProjects),
		unary("GetProject", PermitServiceServer.GetProject),
		unary("DeleteProject", PermitServiceServer.DeleteProject),
		unary("AddCustomItem", PermitServiceServer.AddCustomItem),
		unary("RemoveCustomItem", PermitServiceServer.RemoveCustomItem),
		unary("UploadDocument", PermitServiceServer.UploadDocument),
		unary("ListDocuments", PermitServiceServer.ListDocuments),
		unary("DeleteDocument", PermitServiceServer.DeleteDocument),
		unary("GetValidation", PermitServiceServer.GetValidation),
		unary("DocumentValidation", PermitServiceServer.DocumentValidation),
		unary("ValidationHistory", PermitServiceServer.ValidationHistory),
		unary("RevalidateDocument", PermitServiceServer.RevalidateDocument),
		unary("RevalidateProject", PermitServiceServer.RevalidateProject),
		unary("DocumentSummary", PermitServiceServer.DocumentSummary),
		unary("Readiness", PermitServiceServer.Readiness),
		unary("ExportReport", PermitServiceServer.ExportReport),
		unary("IngestDirectory", PermitServiceServer.IngestDirectory),
		unary("ListTemplates", PermitServiceServer.ListTemplates),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "permit/v1/permit.proto",
}

// RegisterPermitServiceServer registers srv on s.
func RegisterPermitServiceServer(s grpc.ServiceRegistrar, srv PermitServiceServer) {
	s.RegisterService(&PermitServiceDesc, srv)
}

func unary[Req, Resp any](name string, call func(PermitServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				r := new(Req)
				if err := decode(req.(*structpb.Struct), r); err != nil {
					return nil, status.Errorf(codes.InvalidArgument, "%s: %v", name, err)
				}
				resp, err := call(srv.(PermitServiceServer), ctx, r)
				if err != nil {
					return nil, err
				}
				out, err := encode(resp)
				if err != nil {
					return nil, status.Errorf(codes.Internal, "%s: %v", name, err)
				}
				return out, nil
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, handler)
		},
	}
}
