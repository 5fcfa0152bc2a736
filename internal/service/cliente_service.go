package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"ferrepos/internal/dto"
	"ferrepos/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ClienteService registers customers and serves the seller's account views:
// statements, issued documents and balances by zone. Everything but
// registration is a read-only passthrough to the backend.
type ClienteService interface {
	Registrar(ctx context.Context, sesion model.Sesion, req dto.NuevoClienteRequest) error
	EstadoCuenta(ctx context.Context, sesion model.Sesion, clienteID string) (dto.EstadoCuentaResponse, error)
	DetalleComprobante(ctx context.Context, sesion model.Sesion, codigo string) (dto.DetalleComprobanteResponse, error)
	PDFComprobante(ctx context.Context, sesion model.Sesion, codigo string) ([]byte, error)
	Zonas(ctx context.Context, sesion model.Sesion) ([]model.Zona, error)
	ClientesPorZona(ctx context.Context, sesion model.Sesion, zonaID int) (dto.ClientesZonaResponse, error)
}

var errPDFVacio = errors.New("el PDF llegó vacío")

type clienteService struct{ backend Backend }

func NewClienteService(backend Backend) ClienteService { return &clienteService{backend: backend} }

// Registrar checks the document length for its type (DNI 8 digits, RUC 11) and
// forwards the request.
func (s *clienteService) Registrar(ctx context.Context, sesion model.Sesion, req dto.NuevoClienteRequest) error {
	req.Documento = strings.TrimSpace(req.Documento)
	req.Nombre = strings.TrimSpace(req.Nombre)
	largo := 11
	if req.TipoDocumento == "DNI" {
		largo = 8
	}
	if len(req.Documento) != largo || strings.Trim(req.Documento, "0123456789") != "" {
		return validacion("documento", "El "+req.TipoDocumento+" debe tener "+strconv.Itoa(largo)+" dígitos")
	}
	if err := s.backend.RegistrarCliente(ctx, sesion.Token, req); err != nil {
		return falloBackend("registrar cliente", err)
	}
	log.Info().Str("sesion_id", sesion.ID).Str("documento", req.Documento).Msg("cliente registrado")
	return nil
}

// EstadoCuenta returns the customer's movements; Saldo is the last running balance.
func (s *clienteService) EstadoCuenta(ctx context.Context, sesion model.Sesion, clienteID string) (dto.EstadoCuentaResponse, error) {
	clienteID = strings.TrimSpace(clienteID)
	if clienteID == "" {
		return dto.EstadoCuentaResponse{}, validacion("cliente", "Indica el cliente")
	}
	movs, err := s.backend.EstadoCuenta(ctx, sesion.Token, clienteID)
	if err != nil {
		return dto.EstadoCuentaResponse{}, falloBackend("estado de cuenta", err)
	}
	resp := dto.EstadoCuentaResponse{ClienteID: clienteID, Movimientos: movs, Saldo: decimal.Zero}
	if resp.Movimientos == nil {
		resp.Movimientos = []model.MovimientoCuenta{}
	}
	if n := len(movs); n > 0 {
		resp.Saldo = movs[n-1].Saldo
	}
	return resp, nil
}

func (s *clienteService) DetalleComprobante(ctx context.Context, sesion model.Sesion, codigo string) (dto.DetalleComprobanteResponse, error) {
	codigo = strings.TrimSpace(codigo)
	if codigo == "" {
		return dto.DetalleComprobanteResponse{}, validacion("codigo", "Indica el comprobante")
	}
	lineas, err := s.backend.DetalleComprobante(ctx, sesion.Token, codigo)
	if err != nil {
		return dto.DetalleComprobanteResponse{}, falloBackend("detalle de comprobante", err)
	}
	total := decimal.Zero
	for _, l := range lineas {
		total = total.Add(l.Total)
	}
	if lineas == nil {
		lineas = []model.LineaComprobante{}
	}
	return dto.DetalleComprobanteResponse{Codigo: codigo, Lineas: lineas, Total: total}, nil
}

// PDFComprobante fetches the document PDF rendered by the backend. An empty
// body is a backend failure.
func (s *clienteService) PDFComprobante(ctx context.Context, sesion model.Sesion, codigo string) ([]byte, error) {
	codigo = strings.TrimSpace(codigo)
	if codigo == "" {
		return nil, validacion("codigo", "Indica el comprobante")
	}
	pdf, err := s.backend.PDFComprobante(ctx, sesion.Token, codigo)
	if err != nil {
		return nil, falloBackend("pdf de comprobante", err)
	}
	if len(pdf) == 0 {
		log.Warn().Str("sesion_id", sesion.ID).Str("codigo", codigo).Msg("cliente: pdf vacío")
		return nil, falloBackend("pdf de comprobante", errPDFVacio)
	}
	return pdf, nil
}

func (s *clienteService) Zonas(ctx context.Context, sesion model.Sesion) ([]model.Zona, error) {
	zonas, err := s.backend.ListarZonas(ctx, sesion.Token)
	if err != nil {
		return nil, falloBackend("listar zonas", err)
	}
	if zonas == nil {
		zonas = []model.Zona{}
	}
	return zonas, nil
}

// ClientesPorZona lists a zone's customers; Deuda sums their balances.
func (s *clienteService) ClientesPorZona(ctx context.Context, sesion model.Sesion, zonaID int) (dto.ClientesZonaResponse, error) {
	if zonaID <= 0 {
		return dto.ClientesZonaResponse{}, validacion("zona", "Selecciona una zona")
	}
	clientes, err := s.backend.ClientesPorZona(ctx, sesion.Token, zonaID)
	if err != nil {
		return dto.ClientesZonaResponse{}, falloBackend("clientes por zona", err)
	}
	deuda := decimal.Zero
	for _, c := range clientes {
		deuda = deuda.Add(c.Saldo)
	}
	if clientes == nil {
		clientes = []model.SaldoCliente{}
	}
	return dto.ClientesZonaResponse{ZonaID: zonaID, Data: clientes, Deuda: deuda}, nil
}
