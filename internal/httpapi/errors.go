package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/permit-readiness/internal/common"
)

// HTTPStatus maps a gRPC status code to its HTTP equivalent.
func HTTPStatus(code codes.Code) int {
	switch code {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.FailedPrecondition:
		return http.StatusPreconditionFailed
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Canceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error": ..., "code": ..., "request_id": ...}.
func writeError(c *gin.Context, err error) {
	st := status.Convert(common.ToStatus(err))
	c.AbortWithStatusJSON(HTTPStatus(st.Code()), gin.H{
		"error":      st.Message(),
		"code":       st.Code().String(),
		"request_id": GetRequestID(c),
	})
}

func badRequest(c *gin.Context, msg string) {
	writeError(c, status.Error(codes.InvalidArgument, msg))
}
