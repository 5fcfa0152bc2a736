package service

import (
	"errors"
	"fmt"
)

var (
	// ErrTransicionInvalida: the operation is not allowed in the current workflow state.
	ErrTransicionInvalida = errors.New("operación no permitida en el estado actual del pedido")
	// ErrEnvioEnCurso: a submission for this draft is already in flight.
	ErrEnvioEnCurso = errors.New("la venta se está enviando, espera la respuesta")
	// ErrNoEncontrado: unknown product, line, candidate or pending sale.
	ErrNoEncontrado = errors.New("no encontrado")
	// ErrBackend wraps every failed call to the remote backend.
	ErrBackend = errors.New("error del servidor de ventas")
	// ErrCredenciales: the backend rejected the login.
	ErrCredenciales = errors.New("credenciales invalidas")
	// ErrRolNoPermitido: the backend user has a role this front end does not serve.
	ErrRolNoPermitido = errors.New("rol de usuario no permitido")
)

// ValidationError is a blocking, user-facing message. State is never changed
// when one is returned.
type ValidationError struct {
	Campo   string
	Mensaje string
}

func (e *ValidationError) Error() string { return e.Mensaje }

func validacion(campo, msg string) error {
	return &ValidationError{Campo: campo, Mensaje: msg}
}

func noEncontrado(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNoEncontrado, fmt.Sprintf(format, args...))
}

// falloBackend tags err as a backend failure while keeping the cause reachable
// with errors.As.
func falloBackend(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBackend, op, err)
}
