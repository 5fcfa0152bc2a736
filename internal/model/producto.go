package model

import (
	"github.com/shopspring/decimal"
)

// Producto is a purchasable catalog item as published by the backend.
// Immutable once loaded; identity is ID.
// Precio1 always exists; Precio2 and Precio3 are optional tiers (zero = not configured).
type Producto struct {
	ID      int             `json:"id"`
	Nombre  string          `json:"nombre"`
	Unidad  string          `json:"unidad"`
	Stock   *int            `json:"stock,omitempty"`
	Precio1 decimal.Decimal `json:"precio1"`
	Precio2 decimal.Decimal `json:"precio2"`
	Precio3 decimal.Decimal `json:"precio3"`
}

// Niveles of price tiers, as sent to the backend in ctipprec.
const (
	NivelPrecio1 = "1"
	NivelPrecio2 = "2"
	NivelPrecio3 = "3"
)

// NivelDe returns the tier code matching precio, checking tiers in order 1, 2, 3.
func (p Producto) NivelDe(precio decimal.Decimal) (string, bool) {
	if precio.Equal(p.Precio1) {
		return NivelPrecio1, true
	}
	if !p.Precio2.IsZero() && precio.Equal(p.Precio2) {
		return NivelPrecio2, true
	}
	if !p.Precio3.IsZero() && precio.Equal(p.Precio3) {
		return NivelPrecio3, true
	}
	return "", false
}

// Precios lists the configured tier prices.
func (p Producto) Precios() []decimal.Decimal {
	precios := []decimal.Decimal{p.Precio1}
	if !p.Precio2.IsZero() {
		precios = append(precios, p.Precio2)
	}
	if !p.Precio3.IsZero() {
		precios = append(precios, p.Precio3)
	}
	return precios
}
