package dto

import "ferrepos/internal/model"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CancelarPendienteRequest must carry Confirmar=true; cancellation is never implicit.
type CancelarPendienteRequest struct {
	Confirmar bool `json:"confirmar"`
}

// ReciboRequest drives the cashier's receipt preview (POST /v1/caja/recibo).
type ReciboRequest struct {
	Numero      string `json:"numero_venta" validate:"required"`
	Tipo        string `json:"tipo"         validate:"required,oneof=boleta factura"`
	MetodoPago  string `json:"metodo_pago"  validate:"required,oneof=efectivo tarjeta yape"`
	DNI         string `json:"dni"          validate:"omitempty,max=15"`
	RUC         string `json:"ruc"          validate:"omitempty,max=15"`
	RazonSocial string `json:"razon_social" validate:"max=150"`
	Formato     string `json:"formato"      validate:"omitempty,oneof=json pdf escpos"`
	Imprimir    bool   `json:"imprimir"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PendientesResponse struct {
	Data          []model.VentaPendiente `json:"data"`
	CampoBusqueda string                 `json:"campo_busqueda"`
}

type ReciboResponse struct {
	Recibo  model.Recibo `json:"recibo"`
	Impreso bool         `json:"impreso"`
	Mensaje string       `json:"mensaje,omitempty"`
}
