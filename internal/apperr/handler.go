package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/DjordjeVuckovic/content-query/internal/content"
	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
	"github.com/labstack/echo/v4"
)

func GlobalErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			body := map[string]string{"error": ve.Error(), "title": "validation error"}
			if ve.Param != "" {
				body["param"] = ve.Param
			}
			_ = c.JSON(http.StatusBadRequest, body)
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := fmt.Sprintf("%v", he.Message)
			_ = c.JSON(he.Code, map[string]string{"error": msg})
			return
		}

		var re *storage.RemoteStatusError
		if errors.As(err, &re) {
			slog.Warn("remote backend answered with an unexpected status", "method", re.Method, "uri", re.URI, "status", re.Status)
			_ = c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error(), "title": "remote backend error"})
			return
		}

		switch {
		case errors.Is(err, storage.ErrRecordNotFound), errors.Is(err, schema.ErrContentTypeNotFound):
			_ = c.JSON(http.StatusNotFound, map[string]string{"error": err.Error(), "title": "not found"})
		case errors.Is(err, content.ErrNotSyncable):
			_ = c.JSON(http.StatusConflict, map[string]string{"error": err.Error(), "title": "conflict"})
		case errors.Is(err, content.ErrBackendUnavailable):
			_ = c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error(), "title": "backend unavailable"})
		default:
			slog.Error("unhandled error", "method", c.Request().Method, "uri", c.Request().RequestURI, "error", err)
			_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
	}
}
