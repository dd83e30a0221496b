// Request parsing: form and JSON bodies, struct validation of entry input and
// entry reference extraction for deletes.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"budgeter/internal/core"
)

const maxBodyBytes = 64 << 10

var validate = validator.New(validator.WithRequiredStructEnabled())

// AddEntryRequest is the raw input of the add form.
type AddEntryRequest struct {
	Type        string `validate:"required,oneof=inc exp"`
	Description string `validate:"required,max=200"`
	Value       string `validate:"required,max=32"`
}

// ParsedEntry is an AddEntryRequest converted to domain types.
type ParsedEntry struct {
	Kind        core.Kind
	Description string
	Value       decimal.Decimal
}

// NewAddEntryRequest reads the add form fields from a parsed body.
func NewAddEntryRequest(p *RequestBodyParser) AddEntryRequest {
	return AddEntryRequest{
		Type:        strings.ToLower(p.Get("type")),
		Description: p.Get("description"),
		Value:       p.Get("value"),
	}
}

// Parse validates the request and converts it. All failures wrap core.ErrInvalidInput.
func (r AddEntryRequest) Parse() (ParsedEntry, error) {
	if err := validate.Struct(r); err != nil {
		return ParsedEntry{}, fmt.Errorf("%w: %s", core.ErrInvalidInput, describeValidationError(err))
	}

	kind, err := core.ParseKind(r.Type)
	if err != nil {
		return ParsedEntry{}, err
	}
	value, err := core.ParseAmount(r.Value)
	if err != nil {
		return ParsedEntry{}, err
	}

	return ParsedEntry{Kind: kind, Description: r.Description, Value: value}, nil
}

// describeValidationError turns the first validator failure into a short user-facing message.
func describeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "max":
		return field + " is too long"
	default:
		return field + " is invalid"
	}
}

// ParseEntryRef extracts the "inc-N" / "exp-N" identifier from the body or the query string.
func ParseEntryRef(r *http.Request, p *RequestBodyParser) (core.Kind, int, error) {
	ref := p.Get("id")
	if ref == "" {
		ref = strings.TrimSpace(r.URL.Query().Get("id"))
	}
	if ref == "" {
		return "", 0, fmt.Errorf("%w: id is required", core.ErrInvalidInput)
	}
	return core.ParseRef(ref)
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, and unlike Request.ParseForm it
// also reads DELETE bodies, which htmx sends for hx-delete.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireDeleteOrPOST is a convenience function for DELETE/POST handlers.
func RequireDeleteOrPOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodDelete, http.MethodPost)
}

// ParseBodyOrFail reads and parses the request body and returns an error response on failure.
func ParseBodyOrFail(r *http.Request) (*RequestBodyParser, *HTMXResponseBuilder) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return nil, BadRequestError("Malformed request")
	}
	return p, nil
}
