package dto

import (
	"ferrepos/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AgregarItemRequest struct {
	ProductoID int `json:"producto_id" validate:"required,min=1"`
}

// CambiarCantidadRequest carries the raw quantity typed by the user; it is
// clamped by the cart, so no range is enforced here.
type CambiarCantidadRequest struct {
	Cantidad int `json:"cantidad"`
}

type CambiarPrecioRequest struct {
	Precio decimal.Decimal `json:"precio" validate:"required"`
}

type SeleccionarComprobanteRequest struct {
	Tipo  string `json:"ctipdocu" validate:"required,max=10"`
	Serie string `json:"cserdocu" validate:"required,max=10"`
}

type SeleccionarClienteRequest struct {
	Codigo string `json:"ccodclie" validate:"required"`
}

type ClienteLibreRequest struct {
	Nombres     string `json:"nombres"      validate:"max=150"`
	DNI         string `json:"dni"          validate:"omitempty,max=15"`
	RUC         string `json:"ruc"          validate:"omitempty,max=15"`
	RazonSocial string `json:"razon_social" validate:"max=150"`
	Direccion   string `json:"direccion"    validate:"max=200"`
	Correo      string `json:"correo"       validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineaPedidoResponse struct {
	ProductoID         int               `json:"producto_id"`
	Nombre             string            `json:"nombre"`
	Unidad             string            `json:"unidad"`
	Stock              *int              `json:"stock,omitempty"`
	Cantidad           int               `json:"cantidad"`
	PrecioSeleccionado decimal.Decimal   `json:"precio_seleccionado"`
	NivelPrecio        string            `json:"nivel_precio"`
	Precios            []decimal.Decimal `json:"precios"`
	Subtotal           decimal.Decimal   `json:"subtotal"`
}

// AjusteCantidadResponse tells the UI the requested quantity was clamped.
type AjusteCantidadResponse struct {
	ProductoID int    `json:"producto_id"`
	Solicitada int    `json:"solicitada"`
	Aplicada   int    `json:"aplicada"`
	Motivo     string `json:"motivo"`
}

// PedidoResponse is the snapshot of a seller's draft returned by every /v1/pedido endpoint.
type PedidoResponse struct {
	Estado          string                  `json:"estado"`
	Lineas          []LineaPedidoResponse   `json:"lineas"`
	Total           decimal.Decimal         `json:"total"`
	BorradorID      string                  `json:"borrador_id,omitempty"`
	Comprobantes    []model.Comprobante     `json:"comprobantes,omitempty"`
	Comprobante     *model.Comprobante      `json:"comprobante,omitempty"`
	BusquedaCliente string                  `json:"busqueda_cliente,omitempty"`
	Sugerencias     []model.ClienteBuscado  `json:"sugerencias,omitempty"`
	Cliente         *model.ClienteBuscado   `json:"cliente,omitempty"`
	ClienteLibre    *model.ClienteLibre     `json:"cliente_libre,omitempty"`
	UltimoError     string                  `json:"ultimo_error,omitempty"`
	Ajuste          *AjusteCantidadResponse `json:"ajuste,omitempty"`
}

// BusquedaClienteResponse is returned by GET /v1/pedido/clientes.
// Vigente is false when a newer search superseded this one; the suggestions
// are then the current ones, not this request's results.
type BusquedaClienteResponse struct {
	Consulta    string                 `json:"consulta"`
	Sugerencias []model.ClienteBuscado `json:"sugerencias"`
	Vigente     bool                   `json:"vigente"`
}

// CatalogoResponse is returned by GET /v1/catalogo.
type CatalogoResponse struct {
	Data       []model.Producto `json:"data"`
	Total      int              `json:"total"`
	Disponible bool             `json:"disponible"`
}
