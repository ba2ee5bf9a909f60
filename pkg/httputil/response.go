package httputil

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/meshy-studio/meshy/pkg/errors"
)

// ImmutableCache is the Cache-Control value for rendered images. A URL
// fully determines its image, so clients may keep it forever.
const ImmutableCache = "public, max-age=31536000, immutable"

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// WriteImage writes data as a cacheable image response.
func WriteImage(w http.ResponseWriter, contentType string, data []byte) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("Cache-Control", ImmutableCache)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// WriteText writes s as a plain-text response.
func WriteText(w http.ResponseWriter, status int, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(s))
}

// WriteError writes err as a JSON error response and returns the status
// used.
func WriteError(w http.ResponseWriter, err error) int {
	status := errors.HTTPStatus(err)
	body := ErrorBody{Code: errors.GetCode(err), Message: errors.UserMessage(err)}
	if body.Code == "" {
		body.Code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		body.Message = http.StatusText(status)
	}

	if rl, ok := errors.AsRateLimited(err); ok && rl.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
	return status
}
