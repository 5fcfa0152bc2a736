package service

import (
	"ferrepos/internal/model"

	"github.com/shopspring/decimal"
)

// LineaPedido is one product in the cart. Cantidad is always >= 1.
type LineaPedido struct {
	Producto           model.Producto
	Cantidad           int
	PrecioSeleccionado decimal.Decimal
}

// NivelPrecio is the tier code of the selected price, matched against tiers 1, 2, 3 in order.
func (l LineaPedido) NivelPrecio() string {
	if nivel, ok := l.Producto.NivelDe(l.PrecioSeleccionado); ok {
		return nivel
	}
	return model.NivelPrecio1
}

func (l LineaPedido) Subtotal() decimal.Decimal {
	return l.PrecioSeleccionado.Mul(decimal.NewFromInt(int64(l.Cantidad)))
}

// Carrito holds at most one line per product id, in insertion order.
// It is not safe for concurrent use; PuntoVenta serialises access.
type Carrito struct {
	lineas []LineaPedido
}

func (c *Carrito) indice(id int) int {
	for i, l := range c.lineas {
		if l.Producto.ID == id {
			return i
		}
	}
	return -1
}

// Agregar adds p with quantity 1 at tier 1 price. A product already in the
// cart is left as is. Reports whether a line was added.
func (c *Carrito) Agregar(p model.Producto) bool {
	if c.indice(p.ID) >= 0 {
		return false
	}
	c.lineas = append(c.lineas, LineaPedido{Producto: p, Cantidad: 1, PrecioSeleccionado: p.Precio1})
	return true
}

// CambiarCantidad sets the quantity of a line, clamped to [1, stock] when the
// stock is known and positive. Returns the applied quantity and whether it differs
// from n.
func (c *Carrito) CambiarCantidad(id, n int) (int, bool, error) {
	i := c.indice(id)
	if i < 0 {
		return 0, false, noEncontrado("producto %d no está en el pedido", id)
	}
	aplicada := n
	if aplicada < 1 {
		aplicada = 1
	}
	if s := c.lineas[i].Producto.Stock; s != nil && *s > 0 && aplicada > *s {
		aplicada = *s
	}
	c.lineas[i].Cantidad = aplicada
	return aplicada, aplicada != n, nil
}

// CambiarPrecio selects one of the product's configured tier prices.
func (c *Carrito) CambiarPrecio(id int, precio decimal.Decimal) error {
	i := c.indice(id)
	if i < 0 {
		return noEncontrado("producto %d no está en el pedido", id)
	}
	if _, ok := c.lineas[i].Producto.NivelDe(precio); !ok {
		return validacion("precio", "El precio "+precio.StringFixed(2)+" no es un nivel de precio del producto")
	}
	c.lineas[i].PrecioSeleccionado = precio
	return nil
}

// Quitar removes a line. Reports whether it existed.
func (c *Carrito) Quitar(id int) bool {
	i := c.indice(id)
	if i < 0 {
		return false
	}
	c.lineas = append(c.lineas[:i], c.lineas[i+1:]...)
	return true
}

// Total is the sum of quantity times selected price over all lines.
func (c *Carrito) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lineas {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Lineas returns a copy of the lines.
func (c *Carrito) Lineas() []LineaPedido {
	out := make([]LineaPedido, len(c.lineas))
	copy(out, c.lineas)
	return out
}

func (c *Carrito) Vacio() bool { return len(c.lineas) == 0 }

func (c *Carrito) Vaciar() { c.lineas = nil }
