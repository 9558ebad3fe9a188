package handler

import (
	"errors"
	"net/http"

	"cyoa-maker/internal/service"
	"cyoa-maker/shared/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByErrorType = map[service.ErrorType]int{
	service.ErrorTypeValidation: http.StatusBadRequest,
	service.ErrorTypeNotFound:   http.StatusNotFound,
	service.ErrorTypeRepository: http.StatusBadRequest,
	service.ErrorTypeScript:     http.StatusUnprocessableEntity,
	service.ErrorTypeTimeout:    http.StatusRequestTimeout,
	service.ErrorTypeInternal:   http.StatusInternalServerError,
}

func handleServiceError(c *gin.Context, err error) {
	errType := service.ClassifyError(err)
	statusCode, ok := statusByErrorType[errType]
	if !ok {
		statusCode = http.StatusInternalServerError
	}

	resp := models.ErrorResponse{Message: err.Error()}
	var scriptErr *models.ScriptError
	if errors.As(err, &scriptErr) {
		resp.Kind = scriptErr.Kind
		resp.Message = scriptErr.Message
	}
	if statusCode == http.StatusInternalServerError {
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		_ = c.Error(err)
		if resp.Kind == "" {
			resp.Message = "An unexpected internal error occurred"
		}
	}

	c.AbortWithStatusJSON(statusCode, resp)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// bindOptionalJSON binds the body when there is one.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, dst)
}
