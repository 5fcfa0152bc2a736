package service

import (
	"context"

	"ferrepos/internal/dto"
	"ferrepos/internal/model"
)

// Backend is the remote REST backend as seen by the services.
// infra.BackendClient implements it; tests use an in-memory stub.
type Backend interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.BackendLoginResponse, error)
	ListarProductos(ctx context.Context, token string) ([]model.Producto, error)
	ListarComprobantes(ctx context.Context, token string) ([]model.Comprobante, error)
	BuscarClientes(ctx context.Context, token, consulta, tipo string) ([]model.ClienteBuscado, error)
	RegistrarCliente(ctx context.Context, token string, req dto.NuevoClienteRequest) error
	RegistrarVenta(ctx context.Context, token string, payload dto.RegistroVentaPayload) (*dto.RegistroVentaAck, error)
	ListarVentasPendientes(ctx context.Context, token string) ([]model.VentaPendiente, error)
	CancelarVenta(ctx context.Context, token string, id int) error

	EstadoCuenta(ctx context.Context, token, clienteID string) ([]model.MovimientoCuenta, error)
	DetalleComprobante(ctx context.Context, token, codigo string) ([]model.LineaComprobante, error)
	PDFComprobante(ctx context.Context, token, codigo string) ([]byte, error)
	ListarZonas(ctx context.Context, token string) ([]model.Zona, error)
	ClientesPorZona(ctx context.Context, token string, zonaID int) ([]model.SaldoCliente, error)
}
