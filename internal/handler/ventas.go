package handler

import (
	"net/http"

	"ferrepos/internal/dto"
	"ferrepos/internal/middleware"
	"ferrepos/internal/service"

	"github.com/gin-gonic/gin"
)

// VentasHandler serves the seller's same-day history, receipt reprints and
// customer registration.
type VentasHandler struct {
	terminales *service.Terminales
	recibos    service.ReciboService
	clientes   service.ClienteService
}

func NewVentasHandler(terminales *service.Terminales, recibos service.ReciboService, clientes service.ClienteService) *VentasHandler {
	return &VentasHandler{terminales: terminales, recibos: recibos, clientes: clientes}
}

// VentasDelDia godoc
// @Summary      Ventas del día
// @Description  Ventas registradas hoy por el vendedor autenticado.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.VentasDelDiaResponse
// @Router       /v1/ventas/hoy [get]
func (h *VentasHandler) VentasDelDia(c *gin.Context) {
	t := h.terminales.Obtener(*middleware.GetSesion(c))
	resp, err := t.Pedido.VentasDelDia(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReciboVenta godoc
// @Summary      Recibo de una venta del día
// @Tags         ventas
// @Produce      json
// @Produce      application/pdf
// @Produce      application/octet-stream
// @Security     BearerAuth
// @Param        id      path     string true  "ID o número de venta"
// @Param        formato query    string false "json | pdf | escpos"
// @Success      200     {object} model.Recibo
// @Failure      404     {object} apierror.APIError
// @Router       /v1/ventas/hoy/{id}/recibo [get]
func (h *VentasHandler) ReciboVenta(c *gin.Context) {
	sesion := middleware.GetSesion(c)
	recibo, err := h.recibos.ReciboHistorial(c.Request.Context(), sesion.Usuario.ID, c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	formato := c.DefaultQuery("formato", service.FormatoJSON)
	if formato == service.FormatoJSON {
		c.JSON(http.StatusOK, recibo)
		return
	}
	data, contentType, err := h.recibos.Renderizar(recibo, formato)
	if err != nil {
		responderError(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename=recibo_"+recibo.Numero+extension(formato))
	c.Data(http.StatusOK, contentType, data)
}

// RegistrarCliente godoc
// @Summary      Registrar cliente
// @Tags         clientes
// @Accept       json
// @Security     BearerAuth
// @Param        body body dto.NuevoClienteRequest true "Cliente"
// @Success      201
// @Failure      422 {object} apierror.ValidationError
// @Failure      502 {object} apierror.APIError
// @Router       /v1/clientes [post]
func (h *VentasHandler) RegistrarCliente(c *gin.Context) {
	var req dto.NuevoClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.clientes.Registrar(c.Request.Context(), *middleware.GetSesion(c), req); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func extension(formato string) string {
	if formato == service.FormatoPDF {
		return ".pdf"
	}
	return ".bin"
}
