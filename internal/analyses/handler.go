package analyses

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"triage-backend/internal/extract"
	"triage-backend/internal/shared/server/respond"
	"triage-backend/internal/shared/util"
)

// DefaultMaxUploadBytes caps the file read for /analyze/upload.
const DefaultMaxUploadBytes = 10 << 20

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler with the default upload cap.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, MaxUploadBytes: DefaultMaxUploadBytes}
}

// RegisterRoutes attaches the triage routes to the router group.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/health", h.health)
	rg.POST("/analyze", h.analyze)
	rg.POST("/analyze/upload", h.analyzeUpload)
	rg.GET("/symptoms", h.listSymptoms)
	rg.GET("/diseases/:name", h.getDisease)
}

func (h *Handler) health(c *gin.Context) {
	respond.OK(c, h.Svc.Health())
}

func (h *Handler) analyze(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		if isTooLarge(err) {
			respond.TooLarge(c, "request body too large")
			return
		}
		respond.Invalid(c, "invalid JSON body", "symptoms", "must be a JSON object with a string field")
		return
	}
	h.run(c, req.Symptoms)
}

func (h *Handler) analyzeUpload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			respond.TooLarge(c, "upload too large")
			return
		}
		respond.Invalid(c, "file is required", "file", "required")
		return
	}

	fileName, err := util.SanitizeFileName(fh.Filename)
	if err != nil {
		respond.Invalid(c, "invalid file name", "file", "invalid_name")
		return
	}
	c.Set("uploadName", fileName)

	f, err := fh.Open()
	if err != nil {
		respond.Invalid(c, "unable to read upload", "", "")
		return
	}
	defer f.Close()

	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		respond.Invalid(c, "unable to read upload", "", "")
		return
	}
	if int64(len(data)) > limit {
		respond.TooLarge(c, "upload too large")
		return
	}

	text, err := extract.Text(c.Request.Context(), data, fh.Header.Get("Content-Type"), fileName)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			respond.Error(c, http.StatusUnsupportedMediaType, respond.CodeUnsupportedMedia, "upload must be PDF, DOCX or plain text", nil)
			return
		}
		respond.Invalid(c, "unable to extract text from upload", "file", "unreadable")
		return
	}
	h.run(c, text)
}

func (h *Handler) run(c *gin.Context, text string) {
	c.Set("inputDigest", util.Digest(text))
	result, err := h.Svc.Analyze(c.Request.Context(), text)
	if err != nil {
		if errors.Is(err, ErrNoSymptoms) {
			c.Set("triageOutcome", "no_symptoms")
			respond.OK(c, NoSymptoms{Success: false, Message: NoSymptomsMessage})
			return
		}
		respond.Internal(c, "failed to analyze symptoms")
		return
	}

	c.Set("predictionMethod", result.PredictionMethod)
	c.Set("triageLevel", string(result.TriageLevel))
	c.Set("triageOutcome", "analyzed")
	respond.OK(c, result)
}

func (h *Handler) listSymptoms(c *gin.Context) {
	list := h.Svc.Symptoms()
	respond.OK(c, gin.H{
		"count":    len(list),
		"symptoms": list,
	})
}

func (h *Handler) getDisease(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		respond.Invalid(c, "disease name is required", "name", "required")
		return
	}
	info, err := h.Svc.Disease(name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.NotFound(c, "disease not found")
			return
		}
		respond.Internal(c, "failed to fetch disease")
		return
	}
	respond.OK(c, info)
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
