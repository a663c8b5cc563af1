package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/types"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, apiResponse{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// Fail maps the error kinds onto 400, 404 and 500.
func Fail(c *gin.Context, logger *zap.Logger, err error) {
	var (
		validation *types.ValidationError
		notFound   *types.NotFoundError
		system     *types.SystemError
	)
	switch {
	case errors.As(err, &validation):
		Error(c, http.StatusBadRequest, validation.Message, nil)
	case errors.As(err, &notFound):
		Error(c, http.StatusNotFound, notFound.Message, nil)
	case errors.As(err, &system):
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		Error(c, http.StatusInternalServerError, system.Message, nil)
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		Error(c, http.StatusInternalServerError, "internal error", nil)
	}
}
