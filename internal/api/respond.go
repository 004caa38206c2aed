package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/matzehuels/procsheet/pkg/cache"
	"github.com/matzehuels/procsheet/pkg/errors"
	"github.com/matzehuels/procsheet/pkg/sheet"
	"github.com/matzehuels/procsheet/pkg/store"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    errors.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

// statusFor maps error codes to HTTP statuses.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDiagram,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig,
		errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeDiagramNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeLayoutFailed:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= 500 {
		s.Logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.Logger.Debug("request rejected", "path", r.URL.Path, "err", err)
	}

	var body errorBody
	body.Error.Code = code
	body.Error.Message = errors.UserMessage(err)
	if status >= 500 && code == errors.ErrCodeInternal {
		body.Error.Message = "internal error"
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeWorkbook sends an exported document as an attachment.
func writeWorkbook(w http.ResponseWriter, res *sheet.Result, layoutHit bool) {
	h := w.Header()
	h.Set("Content-Type", sheet.ContentType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	h.Set("Content-Length", fmt.Sprint(len(res.Data)))
	h.Set("X-Procsheet-Warnings", fmt.Sprint(len(res.Warnings)))
	if layoutHit {
		h.Set("X-Procsheet-Layout-Cache", "hit")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

// storeError attaches a code to a store failure.
func storeError(err error, format string, args ...any) error {
	switch {
	case stderrors.Is(err, store.ErrNotFound):
		return errors.Wrap(errors.ErrCodeDiagramNotFound, err, format, args...)
	case cache.IsRetryable(err):
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, format, args...)
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, format, args...)
	}
}
