package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"ferrepos/internal/dto"
	"ferrepos/internal/model"
	"ferrepos/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubImpresora records what would be sent to the thermal printer.
type stubImpresora struct {
	configurada bool
	err         error
	enviado     []byte
}

func (i *stubImpresora) Imprimir(_ context.Context, data []byte) error {
	if i.err != nil {
		return i.err
	}
	i.enviado = data
	return nil
}

func (i *stubImpresora) Configurada() bool { return i.configurada }

var encabezadoTest = model.ReciboEncabezado{Negocio: "Ferretería El Tornillo", RUC: "20555555555"}

func TestReciboHistorial(t *testing.T) {
	historial := repository.NewHistorialMemRepository()
	svc := NewReciboService(encabezadoTest, 32, historial, &stubImpresora{}).(*reciboService)
	svc.now = func() time.Time { return fechaFija }

	venta := model.VentaRegistrada{
		ID: "501", Numero: "V-000501", VendedorID: "7",
		Comprobante: model.Comprobante{Tipo: model.TipoFactura, Serie: "F001"},
		Cliente:     "Constructora Andes SAC", ClienteDoc: "20123456789",
		Items: []model.VentaItem{{
			Nombre: "Martillo", Cantidad: 2,
			PrecioUnitario: decimal.NewFromInt(60), Subtotal: decimal.NewFromInt(120),
		}},
		Total:        decimal.NewFromInt(120),
		RegistradaEn: fechaFija,
	}
	require.NoError(t, historial.Registrar(context.Background(), venta))

	recibo, err := svc.ReciboHistorial(context.Background(), "7", "V-000501")
	require.NoError(t, err)
	assert.Equal(t, "Factura", recibo.Titulo)
	assert.Equal(t, "Constructora Andes SAC (20123456789)", recibo.Cliente)
	assert.Len(t, recibo.Lineas, 1)

	_, err = svc.ReciboHistorial(context.Background(), "8", "501")
	assert.ErrorIs(t, err, ErrNoEncontrado, "other sellers' sales are not visible")
}

func TestReciboCaja_Validaciones(t *testing.T) {
	reg, _ := buildPendientes()
	svc := NewReciboService(encabezadoTest, 32, repository.NewHistorialMemRepository(), &stubImpresora{})
	ctx := context.Background()

	_, err := svc.ReciboCaja(ctx, reg, dto.ReciboRequest{Numero: "V-100", Tipo: "boleta", MetodoPago: "efectivo"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "dni", ve.Campo)

	_, err = svc.ReciboCaja(ctx, reg, dto.ReciboRequest{Numero: "V-100", Tipo: "factura", MetodoPago: "yape", RUC: "20123456789"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "ruc", ve.Campo)

	recibo, err := svc.ReciboCaja(ctx, reg, dto.ReciboRequest{
		Numero: "V-101", Tipo: "factura", MetodoPago: "tarjeta",
		RUC: "20123456789", RazonSocial: "Constructora Andes SAC",
	})
	require.NoError(t, err)
	assert.Equal(t, "Factura", recibo.Titulo)
	assert.Equal(t, "Tarjeta", recibo.MetodoPago)
	assert.Equal(t, "15.5", recibo.Total.String())
	assert.Equal(t, "Constructora Andes SAC (RUC 20123456789)", recibo.Cliente)

	_, err = svc.ReciboCaja(ctx, reg, dto.ReciboRequest{Numero: "V-404", Tipo: "boleta", MetodoPago: "efectivo", DNI: "12345678"})
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestRecibo_RenderizarEImprimir(t *testing.T) {
	impresora := &stubImpresora{}
	svc := NewReciboService(encabezadoTest, 32, repository.NewHistorialMemRepository(), impresora)
	recibo := ReciboDeVenta(encabezadoTest, model.VentaRegistrada{
		Numero:      "V-1",
		Comprobante: model.Comprobante{Tipo: model.TipoBoleta},
		Cliente:     "Ana",
		Items:       []model.VentaItem{{Nombre: "Clavos", Cantidad: 10, PrecioUnitario: decimal.RequireFromString("1.5"), Subtotal: decimal.NewFromInt(15)}},
		Total:       decimal.NewFromInt(15),
	})

	pdf, contentType, err := svc.Renderizar(recibo, FormatoPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	_, _, err = svc.Renderizar(recibo, "docx")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	err = svc.Imprimir(context.Background(), recibo)
	require.ErrorAs(t, err, &ve, "no printer configured")

	impresora.configurada = true
	require.NoError(t, svc.Imprimir(context.Background(), recibo))
	assert.NotEmpty(t, impresora.enviado)

	impresora.err = errors.New("printer offline")
	assert.Error(t, svc.Imprimir(context.Background(), recibo))
}

func TestClienteService_LargoDocumento(t *testing.T) {
	backend := newStubBackend()
	svc := NewClienteService(backend)
	ctx := context.Background()

	err := svc.Registrar(ctx, sesionVendedor, dto.NuevoClienteRequest{TipoDocumento: "DNI", Documento: "1234567", Nombre: "Ana"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "documento", ve.Campo)

	err = svc.Registrar(ctx, sesionVendedor, dto.NuevoClienteRequest{TipoDocumento: "RUC", Documento: "2012345678A", Nombre: "Andes"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 0, backend.veces("registrar_cliente"))

	require.NoError(t, svc.Registrar(ctx, sesionVendedor, dto.NuevoClienteRequest{TipoDocumento: "RUC", Documento: " 20123456789 ", Nombre: "Andes"}))
	assert.Equal(t, 1, backend.veces("registrar_cliente"))
}
