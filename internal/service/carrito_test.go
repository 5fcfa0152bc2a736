package service

import (
	"errors"
	"math/rand"
	"testing"

	"ferrepos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarrito_AgregarUnaVezPorProducto(t *testing.T) {
	var c Carrito
	martillo := producto(10, "Martillo", 65, 60, 0, nil)

	assert.True(t, c.Agregar(martillo))
	_, _, err := c.CambiarCantidad(10, 4)
	require.NoError(t, err)
	assert.False(t, c.Agregar(martillo), "re-adding must not create a second line")

	lineas := c.Lineas()
	require.Len(t, lineas, 1)
	assert.Equal(t, 4, lineas[0].Cantidad, "re-adding must not reset the quantity")
	assert.True(t, lineas[0].PrecioSeleccionado.Equal(decimal.NewFromInt(65)))
}

func TestCarrito_NivelPrecioYTotal(t *testing.T) {
	var c Carrito
	c.Agregar(producto(10, "Martillo", 65, 60, 0, nil))
	_, _, err := c.CambiarCantidad(10, 2)
	require.NoError(t, err)

	assert.Equal(t, model.NivelPrecio1, c.Lineas()[0].NivelPrecio())
	assert.Equal(t, "130", c.Total().String())

	require.NoError(t, c.CambiarPrecio(10, decimal.RequireFromString("60.00")))
	assert.Equal(t, model.NivelPrecio2, c.Lineas()[0].NivelPrecio())
	assert.Equal(t, "120", c.Total().String())
}

func TestCarrito_PrecioNoConfigurado(t *testing.T) {
	var c Carrito
	c.Agregar(producto(10, "Martillo", 65, 60, 0, nil))

	err := c.CambiarPrecio(10, decimal.NewFromInt(0))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "precio", ve.Campo)
	assert.True(t, c.Lineas()[0].PrecioSeleccionado.Equal(decimal.NewFromInt(65)))
}

func TestCarrito_CantidadAcotada(t *testing.T) {
	var c Carrito
	c.Agregar(producto(30, "Taladro", 250, 0, 0, intPtr(3)))
	c.Agregar(producto(40, "Lija", 2, 0, 0, intPtr(0)))

	aplicada, ajustada, err := c.CambiarCantidad(30, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, aplicada)
	assert.True(t, ajustada)

	aplicada, ajustada, err = c.CambiarCantidad(30, 9)
	require.NoError(t, err)
	assert.Equal(t, 3, aplicada)
	assert.True(t, ajustada)

	aplicada, ajustada, err = c.CambiarCantidad(30, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, aplicada)
	assert.False(t, ajustada)

	// Zero stock means unknown: no upper bound.
	aplicada, _, err = c.CambiarCantidad(40, 500)
	require.NoError(t, err)
	assert.Equal(t, 500, aplicada)

	_, _, err = c.CambiarCantidad(99, 1)
	assert.True(t, errors.Is(err, ErrNoEncontrado))
}

func TestCarrito_Quitar(t *testing.T) {
	var c Carrito
	c.Agregar(producto(10, "Martillo", 65, 0, 0, nil))
	c.Agregar(producto(20, "Clavos", 1.5, 0, 0, nil))

	assert.True(t, c.Quitar(10))
	assert.False(t, c.Quitar(10))
	require.Len(t, c.Lineas(), 1)
	assert.Equal(t, 20, c.Lineas()[0].Producto.ID)

	c.Vaciar()
	assert.True(t, c.Vacio())
	assert.True(t, c.Total().IsZero())
}

// Random edit sequences must keep one line per product, quantities >= 1 and
// the total equal to the sum of the lines.
func TestCarrito_EdicionesAleatorias(t *testing.T) {
	catalogo := []model.Producto{
		producto(1, "A", 10, 9, 8, intPtr(5)),
		producto(2, "B", 3.5, 0, 0, nil),
		producto(3, "C", 100, 95, 0, intPtr(1)),
		producto(4, "D", 0.25, 0.2, 0.15, intPtr(0)),
	}
	rng := rand.New(rand.NewSource(42))

	for ronda := 0; ronda < 200; ronda++ {
		var c Carrito
		for paso := 0; paso < 30; paso++ {
			p := catalogo[rng.Intn(len(catalogo))]
			switch rng.Intn(4) {
			case 0:
				c.Agregar(p)
			case 1:
				_, _, _ = c.CambiarCantidad(p.ID, rng.Intn(12)-3)
			case 2:
				precios := p.Precios()
				_ = c.CambiarPrecio(p.ID, precios[rng.Intn(len(precios))])
			case 3:
				c.Quitar(p.ID)
			}

			vistos := map[int]bool{}
			suma := decimal.Zero
			for _, l := range c.Lineas() {
				require.False(t, vistos[l.Producto.ID], "duplicate line for %d", l.Producto.ID)
				vistos[l.Producto.ID] = true
				require.GreaterOrEqual(t, l.Cantidad, 1)
				if s := l.Producto.Stock; s != nil && *s > 0 {
					require.LessOrEqual(t, l.Cantidad, *s)
				}
				_, ok := l.Producto.NivelDe(l.PrecioSeleccionado)
				require.True(t, ok)
				suma = suma.Add(l.PrecioSeleccionado.Mul(decimal.NewFromInt(int64(l.Cantidad))))
			}
			require.True(t, suma.Equal(c.Total()))
		}
	}
}
