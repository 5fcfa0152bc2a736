// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (backend bodies, Redis errors, etc.).
package apierror

// Codes let the UI tell error families apart without parsing messages.
const (
	CodigoValidacion   = "validacion"
	CodigoNoEncontrado = "no_encontrado"
	CodigoConflicto    = "conflicto"
	CodigoBackend      = "backend"
	CodigoAuth         = "auth"
	CodigoInterno      = "interno"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Codigo string `json:"codigo,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// WithCodigo returns an envelope tagged with an error family.
func WithCodigo(codigo, msg string) *APIError {
	return &APIError{Detail: msg, Codigo: codigo}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Codigo string            `json:"codigo"`
	Fields map[string]string `json:"fields,omitempty"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Codigo: CodigoValidacion, Fields: fields}
}

// NewValidationMsg is a single blocking message, optionally tied to one field.
func NewValidationMsg(campo, msg string) *ValidationError {
	v := &ValidationError{Detail: msg, Codigo: CodigoValidacion}
	if campo != "" {
		v.Fields = map[string]string{campo: msg}
	}
	return v
}
