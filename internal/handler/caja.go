package handler

import (
	"net/http"

	"ferrepos/internal/dto"
	"ferrepos/internal/middleware"
	"ferrepos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// CajaHandler serves the cashier's pending-sale registry and receipts.
type CajaHandler struct {
	terminales *service.Terminales
	recibos    service.ReciboService
}

func NewCajaHandler(terminales *service.Terminales, recibos service.ReciboService) *CajaHandler {
	return &CajaHandler{terminales: terminales, recibos: recibos}
}

func (h *CajaHandler) pendientes(c *gin.Context) *service.RegistroPendientes {
	return h.terminales.Obtener(*middleware.GetSesion(c)).Pendientes
}

// ListarPendientes godoc
// @Summary Ventas pendientes
// @Description Consulta siempre al servidor de ventas; se puede repetir sin efectos.
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.PendientesResponse
// @Failure 502 {object} apierror.APIError
// @Router /v1/caja/pendientes [get]
func (h *CajaHandler) ListarPendientes(c *gin.Context) {
	resp, err := h.pendientes(c).Listar(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SeleccionarPendiente godoc
// @Summary Elegir venta para completar
// @Description Copia el número de la venta al campo de búsqueda; no carga nada.
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param numero path string true "Número de venta"
// @Success 200 {object} dto.PendientesResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/seleccion/{numero} [post]
func (h *CajaHandler) SeleccionarPendiente(c *gin.Context) {
	resp, err := h.pendientes(c).SeleccionarParaCompletar(c.Param("numero"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// BuscarPendiente godoc
// @Summary Buscar venta pendiente por número
// @Description Sin número usa el campo de búsqueda.
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param numero query string false "Número de venta"
// @Success 200 {object} model.VentaPendiente
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/pendientes/buscar [get]
func (h *CajaHandler) BuscarPendiente(c *gin.Context) {
	venta, err := h.pendientes(c).BuscarPorNumero(c.Request.Context(), c.Query("numero"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, venta)
}

// CancelarPendiente godoc
// @Summary Cancelar venta pendiente
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id   path int                          true "ID de venta"
// @Param body body dto.CancelarPendienteRequest true "Confirmación"
// @Success 200 {object} dto.PendientesResponse
// @Failure 422 {object} apierror.ValidationError
// @Failure 502 {object} apierror.APIError
// @Router /v1/caja/pendientes/{id}/cancelar [put]
func (h *CajaHandler) CancelarPendiente(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	var req dto.CancelarPendienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.pendientes(c).Cancelar(c.Request.Context(), id, req.Confirmar)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recibo godoc
// @Summary Vista previa del recibo
// @Description Boleta requiere DNI, factura RUC y razón social. Con imprimir=true se envía a la impresora térmica.
// @Tags caja
// @Accept json
// @Produce json
// @Produce application/pdf
// @Produce application/octet-stream
// @Security BearerAuth
// @Param body body dto.ReciboRequest true "Datos del recibo"
// @Success 200 {object} dto.ReciboResponse
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/caja/recibo [post]
func (h *CajaHandler) Recibo(c *gin.Context) {
	var req dto.ReciboRequest
	if !bindAndValidate(c, &req) {
		return
	}
	recibo, err := h.recibos.ReciboCaja(c.Request.Context(), h.pendientes(c), req)
	if err != nil {
		responderError(c, err)
		return
	}

	resp := dto.ReciboResponse{Recibo: recibo}
	if req.Imprimir {
		if err := h.recibos.Imprimir(c.Request.Context(), recibo); err != nil {
			log.Warn().Err(err).Str("numero", recibo.Numero).Msg("caja: impresión fallida")
			resp.Mensaje = "No se pudo imprimir: " + err.Error()
		} else {
			resp.Impreso = true
		}
	}

	switch req.Formato {
	case "", service.FormatoJSON:
		c.JSON(http.StatusOK, resp)
	default:
		data, contentType, err := h.recibos.Renderizar(recibo, req.Formato)
		if err != nil {
			responderError(c, err)
			return
		}
		if resp.Mensaje != "" {
			c.Header("X-Recibo-Aviso", resp.Mensaje)
		}
		c.Header("Content-Disposition", "inline; filename=recibo_"+recibo.Numero+extension(req.Formato))
		c.Data(http.StatusOK, contentType, data)
	}
}
