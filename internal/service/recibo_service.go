package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ferrepos/internal/dto"
	"ferrepos/internal/infra"
	"ferrepos/internal/model"
	"ferrepos/internal/repository"

	"github.com/shopspring/decimal"
)

// Formatos de recibo.
const (
	FormatoJSON   = "json"
	FormatoPDF    = "pdf"
	FormatoESCPOS = "escpos"
)

// ReciboService composes printable receipts for the seller's history and the
// cashier's pending sales, renders them and sends them to the thermal printer.
type ReciboService interface {
	ReciboHistorial(ctx context.Context, vendedorID, ventaID string) (model.Recibo, error)
	ReciboCaja(ctx context.Context, pendientes *RegistroPendientes, req dto.ReciboRequest) (model.Recibo, error)
	Renderizar(recibo model.Recibo, formato string) ([]byte, string, error)
	Imprimir(ctx context.Context, recibo model.Recibo) error
}

type reciboService struct {
	encabezado model.ReciboEncabezado
	ancho      int
	historial  repository.HistorialRepository
	impresora  infra.Impresora
	now        func() time.Time
}

func NewReciboService(encabezado model.ReciboEncabezado, ancho int, historial repository.HistorialRepository, impresora infra.Impresora) ReciboService {
	return &reciboService{
		encabezado: encabezado,
		ancho:      ancho,
		historial:  historial,
		impresora:  impresora,
		now:        time.Now,
	}
}

// ReciboDeVenta builds the receipt of an acknowledged sale.
func ReciboDeVenta(enc model.ReciboEncabezado, v model.VentaRegistrada) model.Recibo {
	lineas := make([]model.ReciboLinea, 0, len(v.Items))
	for _, it := range v.Items {
		lineas = append(lineas, model.ReciboLinea{
			Descripcion:    it.Nombre,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       it.Subtotal,
		})
	}
	cliente := v.Cliente
	if v.ClienteDoc != "" {
		cliente = strings.TrimSpace(cliente + " (" + v.ClienteDoc + ")")
	}
	return model.Recibo{
		Encabezado: enc,
		Titulo:     tituloComprobante(v.Comprobante.Tipo),
		Numero:     v.Numero,
		Fecha:      v.RegistradaEn,
		Cliente:    cliente,
		Lineas:     lineas,
		Total:      v.Total,
	}
}

func tituloComprobante(tipo string) string {
	switch tipo {
	case model.TipoFactura:
		return "Factura"
	case model.TipoBoleta:
		return "Boleta de venta"
	default:
		return "Nota de venta"
	}
}

func (s *reciboService) ReciboHistorial(ctx context.Context, vendedorID, ventaID string) (model.Recibo, error) {
	ventas, err := s.historial.ListarDelDia(ctx, vendedorID, s.now())
	if err != nil {
		return model.Recibo{}, fmt.Errorf("historial: %w", err)
	}
	for _, v := range ventas {
		if v.ID == ventaID || v.Numero == ventaID {
			return ReciboDeVenta(s.encabezado, v), nil
		}
	}
	return model.Recibo{}, noEncontrado("venta %s no está en el historial de hoy", ventaID)
}

// ReciboCaja previews the receipt a cashier is about to issue for a pending sale.
// Boleta needs the buyer's DNI; factura needs RUC and razón social.
func (s *reciboService) ReciboCaja(ctx context.Context, pendientes *RegistroPendientes, req dto.ReciboRequest) (model.Recibo, error) {
	var cliente, titulo string
	switch req.Tipo {
	case "boleta":
		dni := strings.TrimSpace(req.DNI)
		if dni == "" {
			return model.Recibo{}, validacion("dni", "Ingresa el DNI del cliente para la boleta")
		}
		titulo, cliente = "Boleta de venta", "DNI "+dni
	case "factura":
		ruc, razon := strings.TrimSpace(req.RUC), strings.TrimSpace(req.RazonSocial)
		if ruc == "" || razon == "" {
			return model.Recibo{}, validacion("ruc", "Ingresa RUC y razón social para la factura")
		}
		titulo, cliente = "Factura", razon+" (RUC "+ruc+")"
	default:
		return model.Recibo{}, validacion("tipo", "Tipo de recibo no válido")
	}

	venta, err := pendientes.BuscarPorNumero(ctx, req.Numero)
	if err != nil {
		return model.Recibo{}, err
	}
	return model.Recibo{
		Encabezado: s.encabezado,
		Titulo:     titulo,
		Numero:     venta.Numero,
		Fecha:      s.now(),
		Cliente:    cliente,
		MetodoPago: metodoPagoEtiqueta(req.MetodoPago),
		Lineas: []model.ReciboLinea{{
			Descripcion:    "Venta " + venta.Numero,
			Cantidad:       1,
			PrecioUnitario: venta.Total,
			Subtotal:       venta.Total,
		}},
		Total: venta.Total.Round(2),
	}, nil
}

func metodoPagoEtiqueta(m string) string {
	switch m {
	case "efectivo":
		return "Efectivo"
	case "tarjeta":
		return "Tarjeta"
	case "yape":
		return "Yape"
	}
	return m
}

// Renderizar encodes a receipt. JSON receipts are returned by the handler as
// they are, so only pdf and escpos produce bytes here.
func (s *reciboService) Renderizar(recibo model.Recibo, formato string) ([]byte, string, error) {
	switch formato {
	case FormatoPDF:
		pdf, err := infra.GenerarReciboPDF(recibo)
		if err != nil {
			return nil, "", err
		}
		return pdf, "application/pdf", nil
	case FormatoESCPOS:
		return infra.ReciboESCPOS(recibo, s.ancho), "application/octet-stream", nil
	}
	return nil, "", validacion("formato", "Formato de recibo no soportado: "+formato)
}

// Imprimir sends the receipt to the configured thermal printer.
func (s *reciboService) Imprimir(ctx context.Context, recibo model.Recibo) error {
	if !s.impresora.Configurada() {
		return validacion("imprimir", "No hay impresora configurada")
	}
	return s.impresora.Imprimir(ctx, infra.ReciboESCPOS(recibo, s.ancho))
}

// totalVenta sums history entries for the day view.
func totalVenta(ventas []model.VentaRegistrada) decimal.Decimal {
	total := decimal.Zero
	for _, v := range ventas {
		total = total.Add(v.Total)
	}
	return total
}
