package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	dto "task-marketplace.com/task-marketplace/internal/data_models"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
)

var kindByStatus = map[int]apperrors.Kind{
	http.StatusBadRequest:   apperrors.KindValidation,
	http.StatusUnauthorized: apperrors.KindUnauthorized,
	http.StatusForbidden:    apperrors.KindForbidden,
	http.StatusNotFound:     apperrors.KindNotFound,
	http.StatusConflict:     apperrors.KindConflict,
}

// ErrorHandler renders every error as {"kind", "message"} with the matching status.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	logger = logger.With("component", "http")

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := render(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("failed to write error response", "error", err)
		}
	}
}

func render(err error) (int, dto.ErrorResponse) {
	var appErr *apperrors.Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode, dto.ErrorResponse{Kind: string(appErr.Kind), Message: appErr.Error()}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		kind, ok := kindByStatus[httpErr.Code]
		if !ok {
			kind = apperrors.Kind(http.StatusText(httpErr.Code))
		}
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, dto.ErrorResponse{Kind: string(kind), Message: msg}
	}

	return http.StatusInternalServerError, dto.ErrorResponse{
		Kind:    string(apperrors.KindInternal),
		Message: "internal server error",
	}
}
