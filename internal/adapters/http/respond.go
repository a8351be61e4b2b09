package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"shepherd/internal/adapters/storage"
	"shepherd/internal/application/orchestrators"
)

// maxBodyBytes bounds request bodies; a bulk sheet of a large congregation fits comfortably.
const maxBodyBytes = 1 << 20

// errBadRequest marks malformed requests rejected before reaching an orchestrator.
var errBadRequest = errors.New("bad request")

// validate checks request DTOs. Field errors are reported by JSON name.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
	State  string            `json:"state,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response_encode_failed", "error", err)
	}
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

// writeError maps domain and request errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &fieldErrs):
		body := errorBody{Error: "validation failed", Fields: make(map[string]string, len(fieldErrs))}
		for _, fe := range fieldErrs {
			_, field, _ := strings.Cut(fe.Namespace(), ".")
			body.Fields[field] = fieldMessage(fe)
		}
		writeJSON(w, http.StatusBadRequest, body)
	case errors.Is(err, errBadRequest), errors.Is(err, orchestrators.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, orchestrators.ErrUnknownMember),
		errors.Is(err, orchestrators.ErrUnknownFirstTimer),
		errors.Is(err, orchestrators.ErrUnknownService),
		errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, orchestrators.ErrArchivedMember),
		errors.Is(err, orchestrators.ErrNoRecipients):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		internalError(w, err)
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must be a date in " + fe.Param() + " form"
	case "min", "max":
		return fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param())
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

// decodeJSON decodes the request body into v, rejecting unknown fields, then validates it.
// An empty body is accepted when allowEmpty is set and leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
		}
	}
	return validate.Struct(v)
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, key)
	}
	return n, nil
}
