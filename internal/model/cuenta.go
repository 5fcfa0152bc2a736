package model

import "github.com/shopspring/decimal"

// Kinds of customer account movement (ctipregi).
const (
	MovimientoCargo = "C" // issued document; has line detail and a PDF
	MovimientoAbono = "D" // payment
)

// MovimientoCuenta is one row of a customer's account statement.
// Saldo is the running balance after the movement, as computed by the backend.
type MovimientoCuenta struct {
	Fecha         string          `json:"fecha"`
	Detalle       string          `json:"detalle"`
	Total         decimal.Decimal `json:"total"`
	Saldo         decimal.Decimal `json:"saldo"`
	Tipo          string          `json:"ctipregi"`
	CodigoInterno string          `json:"ccodinte"`
}

// TieneComprobante reports whether the movement links to an issued document.
func (m MovimientoCuenta) TieneComprobante() bool {
	return m.Tipo == MovimientoCargo && m.CodigoInterno != ""
}

// LineaComprobante is one item line of an issued document.
type LineaComprobante struct {
	Cantidad       decimal.Decimal `json:"cantidad"`
	Unidad         string          `json:"unidad"`
	Producto       string          `json:"producto"`
	PrecioUnitario decimal.Decimal `json:"punit"`
	Total          decimal.Decimal `json:"total"`
}

// Zona is a sales territory customers are grouped by.
type Zona struct {
	ID     int    `json:"idzona"`
	Nombre string `json:"zona"`
}

// SaldoCliente is a customer's outstanding balance in a zone listing.
type SaldoCliente struct {
	ID     string          `json:"id"`
	Nombre string          `json:"nombre"`
	Saldo  decimal.Decimal `json:"saldo"`
}
