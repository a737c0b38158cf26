package workflow

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arnelahh/eDiploma-app-sub000/internal/doctypes"
	"github.com/arnelahh/eDiploma-app-sub000/internal/documents"
	"github.com/arnelahh/eDiploma-app-sub000/internal/render"
	"github.com/arnelahh/eDiploma-app-sub000/internal/shared/metrics"
	"github.com/arnelahh/eDiploma-app-sub000/internal/shared/server/middleware"
	"github.com/arnelahh/eDiploma-app-sub000/internal/shared/server/respond"
	"github.com/arnelahh/eDiploma-app-sub000/internal/theses"
)

// Handler wires the pipeline HTTP endpoints to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches pipeline routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/theses/:thesisId/documents", h.summary)
	rg.GET("/theses/:thesisId/documents/:stage", h.get)
	rg.PUT("/theses/:thesisId/documents/:stage", h.save)
	rg.POST("/theses/:thesisId/documents/:stage/start", h.start)
	rg.GET("/theses/:thesisId/documents/:stage/file", h.download)
}

func (h *Handler) summary(c *gin.Context) {
	thesisID, ok := thesisIDParam(c)
	if !ok {
		return
	}

	stages, err := h.Svc.Summary(c.Request.Context(), thesisID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeStorage, "failed to load pipeline state", nil)
		return
	}

	resp := make([]StageResponse, 0, len(stages))
	for _, st := range stages {
		resp = append(resp, toStageResponse(st))
	}
	respond.OK(c, resp)
}

func (h *Handler) get(c *gin.Context) {
	thesisID, ok := thesisIDParam(c)
	if !ok {
		return
	}

	res, err := h.Svc.Get(c.Request.Context(), thesisID, c.Param("stage"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond.OK(c, toResponse(res))
}

func (h *Handler) save(c *gin.Context) {
	thesisID, ok := thesisIDParam(c)
	if !ok {
		return
	}

	var body saveRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	res, err := h.Svc.Save(c.Request.Context(), SaveRequest{
		ThesisID:     thesisID,
		Type:         c.Param("stage"),
		AuthorID:     middleware.UserIDFromContext(c),
		NumberDigits: body.NumberDigits,
		Fields:       body.Fields,
		RequestID:    middleware.RequestIDFromContext(c),
	})
	if err != nil {
		var blocked *BlockedError
		if errors.As(err, &blocked) {
			metrics.IncSaveBlocked()
		}
		h.respondError(c, err)
		return
	}

	metrics.IncDocumentSaved()
	if res.Record.Status == documents.StatusReady {
		metrics.IncDocumentReady()
	}
	c.Set("stage", string(res.Descriptor.Stage))
	respond.OK(c, toResponse(res))
}

func (h *Handler) start(c *gin.Context) {
	thesisID, ok := thesisIDParam(c)
	if !ok {
		return
	}

	desc, err := h.Svc.Start(c.Request.Context(), thesisID, c.Param("stage"), middleware.UserIDFromContext(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond.OK(c, gin.H{"stage": string(desc.Stage), "name": desc.Name})
}

func (h *Handler) download(c *gin.Context) {
	thesisID, ok := thesisIDParam(c)
	if !ok {
		return
	}

	res, err := h.Svc.Get(c.Request.Context(), thesisID, c.Param("stage"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if len(res.Record.Content) == 0 {
		respond.Error(c, http.StatusNotFound, documents.ErrorCodeNotFound, "document has no content yet", nil)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+string(res.Descriptor.Stage)+`.html"`)
	c.Data(http.StatusOK, "text/html; charset=utf-8", res.Record.Content)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var blocked *BlockedError
	switch {
	case errors.As(err, &blocked):
		// The UI grays blocked stages out; reaching this is a fallback for
		// stale clients, so the message names the missing prerequisite.
		respond.Error(c, http.StatusConflict, ErrorCodeBlocked, blocked.Error(), gin.H{
			"missing": missingNames(blocked),
		})
	case errors.Is(err, doctypes.ErrUnknownType):
		respond.Error(c, http.StatusNotFound, ErrorCodeUnknownType, "unknown document type", nil)
	case IsInvalidNumber(err):
		respond.Error(c, http.StatusBadRequest, ErrorCodeInvalidNum, "document number must be exactly 4 digits", nil)
	case errors.Is(err, render.ErrBoxOverflow), errors.Is(err, render.ErrTemplateNotFound):
		respond.Error(c, http.StatusUnprocessableEntity, ErrorCodeRender, err.Error(), nil)
	case errors.Is(err, theses.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "THESIS_NOT_FOUND", "thesis not found", nil)
	case errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, documents.ErrorCodeNotFound, "document not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, ErrorCodeStorage, "failed to save document", nil)
	}
}

func missingNames(blocked *BlockedError) []string {
	names := make([]string, 0, len(blocked.Missing))
	for _, d := range blocked.Missing {
		names = append(names, d.Name)
	}
	return names
}

func thesisIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("thesisId"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid thesis id", nil)
		return 0, false
	}
	c.Set("thesisId", id)
	return id, true
}
