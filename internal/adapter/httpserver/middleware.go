package httpserver

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/photocontest/internal/adapter/metrics"
	"github.com/pscheid92/photocontest/internal/domain"
	"github.com/pscheid92/photocontest/internal/platform/correlation"
	apperrors "github.com/pscheid92/photocontest/internal/platform/errors"
)

// correlationMiddleware reuses a well-formed inbound X-Request-ID or mints a new one,
// and echoes it on the response.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := correlation.FromHeader(c.Request().Header.Get(correlation.Header))
		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(correlation.Header, id)
		return next(c)
	}
}

func ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return err
			}

			structuredErr := toStructuredError(err)
			logError(c, structuredErr)
			if reason, ok := structuredErr.Context["reason"].(string); ok {
				c.Set(metrics.RejectionReasonKey, reason)
			}

			if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

// toStructuredError maps domain rejections onto response categories. The rejection kind
// is always exposed as context.reason.
func toStructuredError(err error) *apperrors.Error {
	var structuredErr *apperrors.Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	reason := domain.ReasonOf(err)
	switch reason {
	case domain.ReasonMalformedInput, domain.ReasonTitleTooLong, domain.ReasonAuthorTooLong, domain.ReasonUnsupportedFormat:
		structuredErr = apperrors.ValidationError(err.Error())
	case domain.ReasonDuplicateVote:
		structuredErr = apperrors.ConflictError(err.Error())
	case domain.ReasonPhotoNotFound:
		structuredErr = apperrors.NotFoundError(err.Error())
	default:
		structuredErr = apperrors.InternalError(domain.ErrStorage.Error(), err)
	}
	return structuredErr.WithField("reason", string(reason))
}

func logError(c echo.Context, err *apperrors.Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}
	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	ctx := c.Request().Context()
	switch err.Type {
	case apperrors.TypeValidation:
		slog.InfoContext(ctx, "Validation error", attrs...)
	case apperrors.TypeNotFound:
		slog.InfoContext(ctx, "Not found", attrs...)
	case apperrors.TypeConflict:
		slog.InfoContext(ctx, "Conflict", attrs...)
	case apperrors.TypeInternal, apperrors.TypeExternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Internal error", attrs...)
	default:
		slog.ErrorContext(ctx, "Unknown error type", attrs...)
	}
}
