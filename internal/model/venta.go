package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// VentaPendiente is a sale recorded by the backend but not yet finalized,
// awaiting cashier completion or cancellation.
type VentaPendiente struct {
	ID       int             `json:"id"`
	Numero   string          `json:"numero_venta"`
	Cliente  string          `json:"nombre"`
	Telefono string          `json:"telefono"`
	Total    decimal.Decimal `json:"total"`
}

// VentaItem is one line of a submitted sale as kept in the local history.
type VentaItem struct {
	ProductoID     int             `json:"producto_id"`
	Nombre         string          `json:"nombre"`
	Unidad         string          `json:"unidad"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	NivelPrecio    string          `json:"nivel_precio"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// VentaRegistrada is a same-day history entry for a sale the backend acknowledged.
// The backend stays the source of truth; this record only feeds the seller's
// "ventas del día" view and receipt reprints.
type VentaRegistrada struct {
	ID           string          `json:"id"`
	Numero       string          `json:"numero"`
	BorradorID   string          `json:"borrador_id"`
	VendedorID   string          `json:"vendedor_id"`
	Vendedor     string          `json:"vendedor"`
	Comprobante  Comprobante     `json:"comprobante"`
	Cliente      string          `json:"cliente"`
	ClienteDoc   string          `json:"cliente_doc"`
	Items        []VentaItem     `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Estado       string          `json:"estado"`
	RegistradaEn time.Time       `json:"registrada_en"`
}
