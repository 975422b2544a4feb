// Package handlers implements the REST endpoints of the API server.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/internal/interfaces/http/middleware"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

// DefaultMaxBodySize caps JSON request bodies when the server config does not.
const DefaultMaxBodySize int64 = 1 << 20

func ownerFrom(r *http.Request) string {
	return middleware.ContextGetOwner(r.Context())
}

// parsePagination extracts page and page_size from query parameters.
func parsePagination(r *http.Request) (int, int) {
	page := 1
	pageSize := 20

	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil && ps > 0 && ps <= 100 {
			pageSize = ps
		}
	}
	return page, pageSize
}

// decodeJSON reads a JSON body of at most limit bytes into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst interface{}) error {
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	body := http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return errors.New(errors.ErrCodeBadRequest, "request body is empty")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errors.Newf(errors.ErrCodeBadRequest, "request body exceeds %d bytes", limit)
		}
		return errors.Wrap(err, errors.ErrCodeBadRequest, "malformed JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorBody is the payload of an error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// ErrorResponse is the standard error response envelope.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// writeAppError maps err to the status of its code.  Server-side failures are
// logged and masked.
func writeAppError(w http.ResponseWriter, log logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	body := ErrorBody{Code: string(code)}
	var ae *errors.AppError
	if errors.As(err, &ae) {
		body.Message = ae.Message
		body.Detail = ae.Detail
	} else {
		body.Message = err.Error()
	}

	if status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", logging.String("code", string(code)), logging.Err(err))
		}
		if code == errors.CodeUnknown {
			code = errors.ErrCodeInternal
		}
		body = ErrorBody{Code: string(code), Message: errors.DefaultMessageForCode(code)}
	}
	writeJSON(w, status, ErrorResponse{Error: body})
}

//Personal.AI order the ending
