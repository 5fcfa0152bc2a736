package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReciboEncabezado is the business header printed on every receipt.
type ReciboEncabezado struct {
	Negocio   string `json:"negocio"`
	RUC       string `json:"ruc,omitempty"`
	Direccion string `json:"direccion,omitempty"`
}

// ReciboLinea is a printable receipt line.
type ReciboLinea struct {
	Descripcion    string          `json:"descripcion"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// Recibo is a printable receipt composed at print time from a pending sale or a
// history entry. It is not persisted.
type Recibo struct {
	Encabezado ReciboEncabezado `json:"encabezado"`
	Titulo     string           `json:"titulo"` // "Boleta de venta" | "Factura"
	Numero     string           `json:"numero"`
	Fecha      time.Time        `json:"fecha"`
	Cliente    string           `json:"cliente"`
	MetodoPago string           `json:"metodo_pago,omitempty"`
	Lineas     []ReciboLinea    `json:"lineas"`
	Total      decimal.Decimal  `json:"total"`
}
