package dto

import (
	"ferrepos/internal/model"

	"github.com/shopspring/decimal"
)

// NuevoClienteRequest registers a customer on the backend (POST /clientes).
// The same shape is accepted from the UI and forwarded as is.
type NuevoClienteRequest struct {
	TipoDocumento string `json:"tipo_documento" validate:"required,oneof=RUC DNI"`
	Documento     string `json:"documento"      validate:"required,min=8,max=15"`
	Nombre        string `json:"nombre"         validate:"required,min=2,max=150"`
	Direccion     string `json:"direccion"      validate:"max=200"`
	Telefono      string `json:"telefono"       validate:"max=20"`
	Correo        string `json:"correo"         validate:"omitempty,email"`
	Estrellas     int    `json:"nestrella"      validate:"min=1,max=5"`
	Comentario    string `json:"cestrella"      validate:"max=500"`
	Latitud       string `json:"lat"            validate:"omitempty,latitude"`
	Longitud      string `json:"long"           validate:"omitempty,longitude"`
}

// ─── Account DTOs ────────────────────────────────────────────────────────────

// EstadoCuentaResponse is returned by GET /v1/clientes/:id/estado-cuenta.
// Saldo is the balance after the last movement.
type EstadoCuentaResponse struct {
	ClienteID   string                   `json:"cliente_id"`
	Movimientos []model.MovimientoCuenta `json:"movimientos"`
	Saldo       decimal.Decimal          `json:"saldo"`
}

// DetalleComprobanteResponse is returned by GET /v1/comprobantes/:codigo/detalle.
type DetalleComprobanteResponse struct {
	Codigo string                   `json:"codigo"`
	Lineas []model.LineaComprobante `json:"lineas"`
	Total  decimal.Decimal          `json:"total"`
}

// ClientesZonaResponse is returned by GET /v1/zonas/:id/clientes.
type ClientesZonaResponse struct {
	ZonaID int                  `json:"zona_id"`
	Data   []model.SaldoCliente `json:"data"`
	Deuda  decimal.Decimal      `json:"deuda"`
}
