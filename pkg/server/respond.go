package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	errs "github.com/matzehuels/skillgraph/pkg/errors"
	"github.com/matzehuels/skillgraph/pkg/validate"
)

// maxBody bounds request bodies.
const maxBody = 4 << 20

// ErrorBody is the error envelope.
type ErrorBody struct {
	Error      ErrorDetail      `json:"error"`
	Validation *validate.Result `json:"validation,omitempty"`
}

// ErrorDetail carries the error code and message.
type ErrorDetail struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// statusOf maps an error code to an HTTP status.
func statusOf(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidPayload, errs.ErrCodeInvalidConfig,
		errs.ErrCodeInvalidFormat, errs.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errs.ErrCodeConnectionRejected, errs.ErrCodeMutationRejected:
		return http.StatusConflict
	case errs.ErrCodeInvalidGraph, errs.ErrCodeUnresolvedReference:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeNotFound, errs.ErrCodeSessionNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.failWith(w, r, err, nil)
}

// failWith writes err, attaching res for validation failures.
func (s *Server) failWith(w http.ResponseWriter, r *http.Request, err error, res *validate.Result) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	status := statusOf(code)

	msg := errs.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	body := ErrorBody{Error: ErrorDetail{Code: code, Message: msg}}
	if res != nil && !res.OK() {
		body.Validation = res
	}
	writeJSON(w, status, body)
}

// decodeBody reads a JSON request into v and validates its struct tags.
// An empty body is accepted when allowEmpty is set.
func (s *Server) decodeBody(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid request body")
	}
	if err := s.validate.Struct(v); err != nil {
		return errs.New(errs.ErrCodeInvalidInput, "%s", formatValidationError(err))
	}
	return nil
}

func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "required_without":
			msgs = append(msgs, fmt.Sprintf("%s or %s is required", field, strings.ToLower(e.Param())))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}
