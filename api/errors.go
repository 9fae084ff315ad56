package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/jrsteele09/go-course-portal/internal/utils"
	"github.com/pkg/errors"
)

// Keys the backend uses for messages that are not tied to a single field
var messageKeys = []string{"error", "detail", "message", "non_field_errors"}

// Error is a non-2xx response from the backend.
// Message holds the first general message found in the body, Fields the
// per-field validation messages keyed by field name.
type Error struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) > 0 {
		return e.FieldSummary()
	}
	return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// FieldSummary renders the field messages as "field: message" in a stable order
func (e *Error) FieldSummary() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], " "))
	}
	return strings.Join(parts, "; ")
}

func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func (e *Error) IsForbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

func (e *Error) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsValidation reports a 400 response, which the backend uses for rejected input
func (e *Error) IsValidation() bool {
	return e.StatusCode == http.StatusBadRequest
}

// AsError returns the *Error in err's chain, if any
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// parseError builds an *Error from a response. Bodies that are not JSON
// objects leave Message and Fields empty.
func parseError(resp *http.Response) *Error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	body := map[string]any{}
	if err := json.Unmarshal(data, &body); err != nil {
		return apiErr
	}

	for _, key := range messageKeys {
		if msgs := utils.ToStringSlice(body[key]); len(msgs) > 0 && apiErr.Message == "" {
			apiErr.Message = msgs[0]
		}
	}

	for key, value := range body {
		if isMessageKey(key) {
			continue
		}
		msgs := utils.ToStringSlice(value)
		if len(msgs) == 0 {
			continue
		}
		if apiErr.Fields == nil {
			apiErr.Fields = map[string][]string{}
		}
		apiErr.Fields[key] = msgs
	}
	return apiErr
}

func isMessageKey(key string) bool {
	for _, k := range messageKeys {
		if k == key {
			return true
		}
	}
	return false
}
