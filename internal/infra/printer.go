package infra

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Impresora sends raw ESC/POS data to a thermal printer.
type Impresora interface {
	Imprimir(ctx context.Context, data []byte) error
	Configurada() bool
}

// impresoraRed dials a network thermal printer (raw port, usually 9100) once per job.
type impresoraRed struct {
	address string
	timeout time.Duration
}

// NewImpresora returns a network printer for address, or a no-op printer when
// address is empty.
func NewImpresora(address string) Impresora {
	if address == "" {
		return impresoraNula{}
	}
	return &impresoraRed{address: address, timeout: 5 * time.Second}
}

func (p *impresoraRed) Imprimir(ctx context.Context, data []byte) error {
	d := net.Dialer{Timeout: p.timeout}
	conn, err := d.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return fmt.Errorf("impresora: conectar %s: %w", p.address, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("impresora: escribir en %s: %w", p.address, err)
	}
	return nil
}

func (p *impresoraRed) Configurada() bool { return true }

type impresoraNula struct{}

func (impresoraNula) Imprimir(context.Context, []byte) error { return nil }
func (impresoraNula) Configurada() bool                      { return false }
