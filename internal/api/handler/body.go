package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/campusdine/mealplan-api/internal/api/response"
	"github.com/campusdine/mealplan-api/internal/api/validation"
)

// maxBodyBytes caps request bodies at 1 MiB.
const maxBodyBytes = 1 << 20

// looseFloat decodes from a JSON number or a numeric string such as "500".
// Clients of the previous system sent monetary amounts both ways.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return &json.UnmarshalTypeError{Value: "string", Type: reflect.TypeOf(float64(0))}
		}
		*f = looseFloat(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = looseFloat(v)
	return nil
}

// looseInt decodes from a JSON integer or a numeric string such as "200".
type looseInt int

func (n *looseInt) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return &json.UnmarshalTypeError{Value: "string", Type: reflect.TypeOf(int(0))}
		}
		*n = looseInt(v)
		return nil
	}

	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = looseInt(v)
	return nil
}

// decodeBody decodes a JSON request body into dst, capping the body size at
// maxBodyBytes. Unknown fields are rejected when strict is true. On failure
// it writes the error response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, strict bool, requestID string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if strict {
		dec.DisallowUnknownFields()
	}

	err := dec.Decode(dst)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		details := []validation.FieldError{{
			Field:   field,
			Message: fmt.Sprintf("%s must be a valid %s", field, jsonTypeName(typeErr.Type)),
		}}
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", details, requestID)
	case errors.As(err, &maxBytesErr):
		response.Err(w, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "Request body must not exceed 1 MiB", requestID)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		name := strings.TrimPrefix(err.Error(), "json: unknown field ")
		response.Err(w, http.StatusBadRequest, "UNKNOWN_FIELD", fmt.Sprintf("Unknown field %s in request body", name), requestID)
	default:
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
	}
	return false
}

// jsonTypeName names a Go target type the way API clients see it.
func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return "value"
	}
}

// mustTimestamp converts a date string that has already passed validation,
// panicking if it does not parse.
func mustTimestamp(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := validation.ParseTimestamp(*s)
	if err != nil {
		panic(fmt.Sprintf("unvalidated timestamp %q: %v", *s, err))
	}
	return &t
}

// formatTimestamp renders a timestamp in the UTC second-precision form used
// by all API responses.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

func formatOptionalTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTimestamp(*t)
	return &s
}
