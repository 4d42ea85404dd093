package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carelink/carelink-ai/internal/domain/prescription"
	"github.com/carelink/carelink-ai/internal/service"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, prescription.ErrUnreadableText):
		respondError(c, http.StatusBadRequest,
			"Impossible de lire le texte. Vérifiez la qualité de l'image.")

	case errors.Is(err, prescription.ErrUnsupportedFileType):
		respondError(c, http.StatusBadRequest,
			"Type de fichier non supporté. Formats acceptés: JPG, PNG, PDF")

	case errors.Is(err, prescription.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrArchiveDisabled):
		respondError(c, http.StatusServiceUnavailable, err.Error())

	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+param+": must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}
