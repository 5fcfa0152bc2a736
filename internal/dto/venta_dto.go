package dto

import (
	"ferrepos/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Backend wire DTOs: POST /ventas/registro ───────────────────────────────

// ItemVentaPayload is one line of a sale sent to the backend.
// CodigoProducto is the normalized item identifier; NivelPrecio is "1" | "2" | "3".
type ItemVentaPayload struct {
	CodigoProducto string `json:"ccodprod"`
	Cantidad       int    `json:"ncantidad"`
	NivelPrecio    string `json:"ctipprec"`
}

// ClienteLibrePayload carries the free-text identity of a retail buyer.
type ClienteLibrePayload struct {
	Nombres     string `json:"nombres,omitempty"`
	DNI         string `json:"dni,omitempty"`
	RUC         string `json:"ruc,omitempty"`
	RazonSocial string `json:"razon_social,omitempty"`
	Direccion   string `json:"direccion,omitempty"`
}

// RegistroVentaPayload is the body of POST /ventas/registro.
// Exactly one of CodigoCliente (registered customer) or Cliente (free text) is set.
// BorradorID is the client-side draft identifier the backend may deduplicate on.
type RegistroVentaPayload struct {
	CodigoCliente string               `json:"ccodclie,omitempty"`
	Cliente       *ClienteLibrePayload `json:"cliente,omitempty"`
	TipoDoc       string               `json:"ctipdocu"`
	Serie         string               `json:"cserdocu"`
	BorradorID    string               `json:"id_borrador"`
	Items         []ItemVentaPayload   `json:"items"`
}

// RegistroVentaAck is the backend acknowledgment of a created sale. Only the
// identifiers are read; the total shown to the user is the local cart total.
type RegistroVentaAck struct {
	ID      FlexString `json:"id"`
	Numero  FlexString `json:"numero_venta"`
	Estado  string     `json:"estado"`
	Mensaje string     `json:"mensaje"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// VentaConfirmadaResponse is returned by POST /v1/pedido/envio on success.
type VentaConfirmadaResponse struct {
	Venta   model.VentaRegistrada `json:"venta"`
	Mensaje string                `json:"mensaje"`
	Pedido  PedidoResponse        `json:"pedido"`
}

// VentasDelDiaResponse is returned by GET /v1/ventas/hoy.
type VentasDelDiaResponse struct {
	Fecha string                  `json:"fecha"` // YYYY-MM-DD
	Data  []model.VentaRegistrada `json:"data"`
	Total decimal.Decimal         `json:"total"`
}
