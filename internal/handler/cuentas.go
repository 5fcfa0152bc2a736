package handler

import (
	"net/http"

	"ferrepos/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Customer account views for the seller: statements, issued documents and
// balances by zone. Served by VentasHandler since they share ClienteService.

// EstadoCuenta godoc
// @Summary      Estado de cuenta del cliente
// @Description  Movimientos con saldo acumulado. Los de tipo C enlazan a un comprobante (ccodinte).
// @Tags         clientes
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "ID de cliente"
// @Success      200 {object} dto.EstadoCuentaResponse
// @Failure      404 {object} apierror.APIError
// @Failure      502 {object} apierror.APIError
// @Router       /v1/clientes/{id}/estado-cuenta [get]
func (h *VentasHandler) EstadoCuenta(c *gin.Context) {
	resp, err := h.clientes.EstadoCuenta(c.Request.Context(), *middleware.GetSesion(c), c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DetalleComprobante godoc
// @Summary      Líneas de un comprobante emitido
// @Tags         clientes
// @Produce      json
// @Security     BearerAuth
// @Param        codigo path     string true "Código interno (ccodinte)"
// @Success      200    {object} dto.DetalleComprobanteResponse
// @Failure      404    {object} apierror.APIError
// @Router       /v1/comprobantes/{codigo}/detalle [get]
func (h *VentasHandler) DetalleComprobante(c *gin.Context) {
	resp, err := h.clientes.DetalleComprobante(c.Request.Context(), *middleware.GetSesion(c), c.Param("codigo"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PDFComprobante godoc
// @Summary      PDF de un comprobante emitido
// @Description  PDF generado por el servidor de ventas, para ver o imprimir.
// @Tags         clientes
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        codigo path string true "Código interno (ccodinte)"
// @Success      200
// @Failure      404 {object} apierror.APIError
// @Failure      502 {object} apierror.APIError
// @Router       /v1/comprobantes/{codigo}/pdf [get]
func (h *VentasHandler) PDFComprobante(c *gin.Context) {
	codigo := c.Param("codigo")
	pdf, err := h.clientes.PDFComprobante(c.Request.Context(), *middleware.GetSesion(c), codigo)
	if err != nil {
		responderError(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename=comprobante-"+codigo+".pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Zonas godoc
// @Summary      Zonas de venta
// @Tags         clientes
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array}  model.Zona
// @Failure      502 {object} apierror.APIError
// @Router       /v1/zonas [get]
func (h *VentasHandler) Zonas(c *gin.Context) {
	zonas, err := h.clientes.Zonas(c.Request.Context(), *middleware.GetSesion(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": zonas})
}

// ClientesPorZona godoc
// @Summary      Clientes de una zona con su deuda
// @Tags         clientes
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     int true "ID de zona"
// @Success      200 {object} dto.ClientesZonaResponse
// @Failure      502 {object} apierror.APIError
// @Router       /v1/zonas/{id}/clientes [get]
func (h *VentasHandler) ClientesPorZona(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	resp, err := h.clientes.ClientesPorZona(c.Request.Context(), *middleware.GetSesion(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
