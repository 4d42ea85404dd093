package v1

import (
	"io"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carelink/carelink-ai/internal/domain/prescription"
	"github.com/carelink/carelink-ai/internal/service"
)

// Content types accepted for prescription uploads.
var allowedUploadTypes = []string{"image/jpeg", "image/png", "image/jpg", "application/pdf"}

// maxUploadBytes caps prescription uploads at 20 MiB.
const maxUploadBytes = 20 << 20

// PrescriptionHandler serves the extraction and validation endpoints.
type PrescriptionHandler struct {
	svc *service.PrescriptionService
	log *zap.Logger
}

func NewPrescriptionHandler(svc *service.PrescriptionService, log *zap.Logger) *PrescriptionHandler {
	return &PrescriptionHandler{svc: svc, log: log}
}

// Extract handles POST /ocr/extract: a multipart upload of a scanned
// prescription, returning the structured record.
func (h *PrescriptionHandler) Extract(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "missing file field")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !slices.Contains(allowedUploadTypes, contentType) {
		respondError(c, http.StatusBadRequest,
			"Type de fichier non supporté: "+contentType+". Formats acceptés: JPG, PNG, PDF")
		return
	}

	if file.Size > maxUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	h.log.Info("prescription received",
		zap.String("filename", file.Filename),
		zap.Int64("size", file.Size),
	)

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "unable to read upload")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes))
	if err != nil {
		respondError(c, http.StatusBadRequest, "unable to read upload")
		return
	}

	record, err := h.svc.ExtractFromImage(c.Request.Context(), data)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

type validateMedicationRequest struct {
	Name string `json:"nom" binding:"required"`
}

// ValidateMedication handles POST /validate-medication.
func (h *PrescriptionHandler) ValidateMedication(c *gin.Context) {
	var req validateMedicationRequest
	if !bindJSON(c, &req) {
		return
	}

	c.JSON(http.StatusOK, h.svc.ValidateMedication(req.Name))
}

// GetRecord handles GET /prescriptions/:id for archived extractions.
func (h *PrescriptionHandler) GetRecord(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	record, err := h.svc.GetRecord(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListRecords handles GET /prescriptions, newest first.
func (h *PrescriptionHandler) ListRecords(c *gin.Context) {
	q := &prescription.ListRecordsQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}

	page, err := h.svc.ListRecords(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
