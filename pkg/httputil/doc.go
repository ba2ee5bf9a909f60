// Package httputil writes the HTTP responses of the image API.
//
// # Overview
//
//   - [WriteImage]: a finished JPEG with immutable caching headers
//   - [WriteError]: a JSON error body whose status follows the error code
//   - [WriteText]: plain-text responses such as embed snippets
//
// Images are always fully rendered into memory before any byte is written,
// so a failing render produces an error response and never a truncated
// image.
//
// # Errors
//
// [WriteError] maps a coded error from pkg/errors to its HTTP status and
// writes {"code": "...", "message": "..."}. Rate-limit errors also set the
// Retry-After header. Internal failures report a generic message; their
// details belong in the server log.
package httputil
