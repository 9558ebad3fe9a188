package service

import (
	"context"
	"errors"
	"os"

	"cyoa-maker/shared/models"

	"go.uber.org/zap"
)

// ErrorType classifies a failure for logging and for the transport layers.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeRepository ErrorType = "repository"
	ErrorTypeScript     ErrorType = "script"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeInternal   ErrorType = "internal"
)

// ClassifyError maps an error returned by the editor service to its ErrorType.
func ClassifyError(err error) ErrorType {
	var scriptErr *models.ScriptError
	switch {
	case errors.As(err, &scriptErr):
		switch scriptErr.Kind {
		case models.ScriptErrorTimeout, models.ScriptErrorCanceled:
			return ErrorTypeTimeout
		case models.ScriptErrorHost:
			if errors.Is(err, models.ErrInvalidInput) || errors.Is(err, models.ErrReservedName) || errors.Is(err, models.ErrIdentifierCollision) {
				return ErrorTypeValidation
			}
			return ErrorTypeInternal
		default:
			return ErrorTypeScript
		}
	case errors.Is(err, models.ErrNodeNotFound),
		errors.Is(err, models.ErrChoiceNotFound),
		errors.Is(err, models.ErrProjectNotLoaded),
		errors.Is(err, os.ErrNotExist):
		return ErrorTypeNotFound
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrBadRequest),
		errors.Is(err, models.ErrDuplicateChoice),
		errors.Is(err, models.ErrReservedName),
		errors.Is(err, models.ErrIdentifierCollision):
		return ErrorTypeValidation
	case errors.Is(err, models.ErrInvalidProject):
		return ErrorTypeRepository
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrorTypeTimeout
	default:
		return ErrorTypeInternal
	}
}

// handleError logs err at a level matching its type and returns it unchanged.
func (s *editorService) handleError(operation string, err error, fields ...zap.Field) error {
	if err == nil {
		return nil
	}
	errType := ClassifyError(err)
	logFields := append([]zap.Field{
		zap.String("operation", operation),
		zap.String("error_type", string(errType)),
		zap.Error(err),
	}, fields...)

	switch errType {
	case ErrorTypeValidation, ErrorTypeNotFound:
		s.logger.Debug("Rejected editor request", logFields...)
	case ErrorTypeScript, ErrorTypeTimeout:
		s.logger.Info("Script failed", logFields...)
	case ErrorTypeRepository:
		s.logger.Warn("Project store error", logFields...)
	default:
		s.logger.Error("Internal editor error", logFields...)
	}
	return err
}
