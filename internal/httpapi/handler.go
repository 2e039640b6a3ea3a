// Package httpapi exposes the permit service over JSON/HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/permit-readiness/internal/core/rules"
	"github.com/joseph-ayodele/permit-readiness/internal/entity"
	"github.com/joseph-ayodele/permit-readiness/internal/services/permit"
	"github.com/joseph-ayodele/permit-readiness/internal/templates"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// multipartOverhead is the room allowed above MaxUploadBytes for multipart
// boundaries and part headers.
const multipartOverhead = 64 << 10

// TemplateLister lists the jurisdiction checklist templates.
type TemplateLister interface {
	List() []templates.Template
}

// Options configures the router.
type Options struct {
	// MaxUploadBytes caps multipart uploads; 0 means 32 MiB.
	MaxUploadBytes int64
	// Health reports dependency health for /healthz; nil means always healthy.
	Health func(ctx context.Context) error
	Logger *slog.Logger
}

// Handler serves the /api/v1 routes.
type Handler struct {
	svc       *permit.Service
	templates TemplateLister
	opts      Options
	logger    *slog.Logger
}

func NewHandler(svc *permit.Service, tpl TemplateLister, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	return &Handler{svc: svc, templates: tpl, opts: opts, logger: opts.Logger}
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = h.opts.MaxUploadBytes
	router.Use(RequestID())
	router.Use(Recovery(h.logger))
	router.Use(RequestLogger(h.logger))

	router.GET("/healthz", h.Healthz)

	api := router.Group("/api/v1")
	{
		api.GET("/templates", h.ListTemplates)

		api.POST("/projects", h.CreateProject)
		api.GET("/projects", h.ListProjects)
		api.GET("/projects/:id", h.GetProject)
		api.DELETE("/projects/:id", h.DeleteProject)
		api.POST("/projects/:id/items", h.AddCustomItem)
		api.DELETE("/projects/:id/items/:itemId", h.RemoveCustomItem)
		api.POST("/projects/:id/items/:itemId/documents", h.UploadDocument)
		api.GET("/projects/:id/items/:itemId/validation", h.GetValidation)
		api.GET("/projects/:id/documents", h.ListDocuments)
		api.POST("/projects/:id/revalidate", h.RevalidateProject)
		api.GET("/projects/:id/readiness", h.Readiness)
		api.GET("/projects/:id/report", h.ExportReport)

		api.DELETE("/documents/:id", h.DeleteDocument)
		api.GET("/documents/:id/validation", h.DocumentValidation)
		api.GET("/documents/:id/history", h.ValidationHistory)
		api.POST("/documents/:id/revalidate", h.RevalidateDocument)
		api.GET("/documents/:id/summary", h.DocumentSummary)
	}
	return router
}

func (h *Handler) Healthz(c *gin.Context) {
	if h.opts.Health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.opts.Health(ctx); err != nil {
			h.logger.Warn("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ListTemplates(c *gin.Context) {
	var out []templates.Template
	if h.templates != nil {
		out = h.templates.List()
	}
	c.JSON(http.StatusOK, gin.H{"templates": out})
}

type createProjectBody struct {
	Name         string           `json:"name"`
	Jurisdiction string           `json:"jurisdiction"`
	Checklist    entity.Checklist `json:"checklist"`
}

func (h *Handler) CreateProject(c *gin.Context) {
	var body createProjectBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	p, err := h.svc.CreateProject(c.Request.Context(), permit.CreateProjectRequest{
		Name:         body.Name,
		Jurisdiction: body.Jurisdiction,
		Checklist:    body.Checklist,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListProjects(c *gin.Context) {
	list, err := h.svc.ListProjects(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []entity.ProjectSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"projects": list})
}

func (h *Handler) GetProject(c *gin.Context) {
	p, err := h.svc.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProject(c *gin.Context) {
	if err := h.svc.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type customItemBody struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Required        bool        `json:"required"`
	FileTypes       string      `json:"fileTypes"`
	ValidationRules *rules.Rule `json:"validationRules"`
}

func (h *Handler) AddCustomItem(c *gin.Context) {
	var body customItemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	item, err := h.svc.AddCustomItem(c.Request.Context(), permit.AddCustomItemRequest{
		ProjectID:       c.Param("id"),
		ID:              body.ID,
		Name:            body.Name,
		Required:        body.Required,
		FileTypes:       body.FileTypes,
		ValidationRules: body.ValidationRules,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) RemoveCustomItem(c *gin.Context) {
	if err := h.svc.RemoveCustomItem(c.Request.Context(), c.Param("id"), c.Param("itemId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadDocument accepts a multipart "file" field. ?skip_duplicates=true
// returns the existing document when identical bytes were already uploaded
// for the item.
func (h *Handler) UploadDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes+multipartOverhead)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.tooLarge(c)
			return
		}
		badRequest(c, "no file provided")
		return
	}
	if header.Size > h.opts.MaxUploadBytes {
		h.tooLarge(c)
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, "failed to read file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.opts.MaxUploadBytes+1))
	if err != nil {
		badRequest(c, "failed to read file")
		return
	}
	if int64(len(data)) > h.opts.MaxUploadBytes {
		h.tooLarge(c)
		return
	}

	skip, _ := strconv.ParseBool(c.Query("skip_duplicates"))
	res, err := h.svc.UploadDocument(c.Request.Context(), permit.UploadDocumentRequest{
		ProjectID:       c.Param("id"),
		ChecklistItemID: c.Param("itemId"),
		Filename:        header.Filename,
		Data:            data,
		SkipDuplicates:  skip,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	code := http.StatusCreated
	if res.Deduplicated {
		code = http.StatusOK
	}
	c.JSON(code, gin.H{
		"document":     res.Document,
		"validation":   res.Validation,
		"deduplicated": res.Deduplicated,
	})
}

func (h *Handler) tooLarge(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
		"error":      fmt.Sprintf("file exceeds %d bytes", h.opts.MaxUploadBytes),
		"request_id": GetRequestID(c),
	})
}

func (h *Handler) GetValidation(c *gin.Context) {
	v, err := h.svc.GetValidation(c.Request.Context(), c.Param("id"), c.Param("itemId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) ListDocuments(c *gin.Context) {
	docs, err := h.svc.ListDocuments(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if docs == nil {
		docs = []*entity.Document{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (h *Handler) RevalidateProject(c *gin.Context) {
	n, err := h.svc.RevalidateProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"documents": n})
}

func (h *Handler) Readiness(c *gin.Context) {
	sum, err := h.svc.Readiness(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *Handler) ExportReport(c *gin.Context) {
	b, err := h.svc.ExportReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="readiness-%s.xlsx"`, c.Param("id")))
	c.Data(http.StatusOK, xlsxContentType, b)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	if err := h.svc.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DocumentValidation(c *gin.Context) {
	v, err := h.svc.DocumentValidation(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) ValidationHistory(c *gin.Context) {
	hist, err := h.svc.ValidationHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if hist == nil {
		hist = []*entity.ValidationRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"validations": hist})
}

func (h *Handler) RevalidateDocument(c *gin.Context) {
	rec, err := h.svc.RevalidateDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) DocumentSummary(c *gin.Context) {
	sum, err := h.svc.DocumentSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
