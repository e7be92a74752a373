package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/stadio-ml/stadio/internal/adapters/auth"
	"github.com/stadio-ml/stadio/internal/adapters/repository"
	"github.com/stadio-ml/stadio/internal/app"
	"github.com/stadio-ml/stadio/internal/domain/gate"
	"github.com/stadio-ml/stadio/internal/domain/submission"
	"github.com/stadio-ml/stadio/pkg/logger"
	"github.com/stadio-ml/stadio/pkg/metrics"
)

// writeServiceError maps a service error onto the wire. Expected rejections
// keep their message; anything unclassified is an internal error and goes
// out opaque with a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var cooldown *gate.CooldownError
	if errors.As(err, &cooldown) {
		secs := int(cooldown.Remaining.Seconds())
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Code:    "cooldown",
			Message: fmt.Sprintf("cooldown active: retry in %ds", secs),
		})
		return
	}

	status, code := classify(err)
	if status == http.StatusInternalServerError {
		logger.Named("api").Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err))
		metrics.RecordInternalError("api")
		writeJSON(w, status, errorResponse{Code: code, Message: http.StatusText(status)})
		return
	}
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrInvalidKey):
		return http.StatusUnauthorized, "invalid_key"
	case errors.Is(err, submission.ErrUnsupportedExtension),
		errors.Is(err, submission.ErrParse),
		errors.Is(err, submission.ErrMissingColumns),
		errors.Is(err, submission.ErrUnexpectedColumns),
		errors.Is(err, submission.ErrRowCountMismatch),
		errors.Is(err, submission.ErrIDSetMismatch):
		return http.StatusUnprocessableEntity, "invalid_submission"
	case errors.Is(err, gate.ErrNotOpen):
		return http.StatusForbidden, "not_open"
	case errors.Is(err, gate.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "quota_exceeded"
	case errors.Is(err, app.ErrBusy):
		return http.StatusTooManyRequests, "busy"
	case errors.Is(err, app.ErrPrivateHidden),
		errors.Is(err, app.ErrSelectionClosed):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, repository.ErrTooManySelections):
		return http.StatusForbidden, "too_many_selections"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
