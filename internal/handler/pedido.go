package handler

import (
	"net/http"

	"ferrepos/internal/dto"
	"ferrepos/internal/middleware"
	"ferrepos/internal/model"
	"ferrepos/internal/service"

	"github.com/gin-gonic/gin"
)

// PedidoHandler serves the seller's catalog and order draft.
// Every request works on the caller's own session workspace.
type PedidoHandler struct{ terminales *service.Terminales }

func NewPedidoHandler(terminales *service.Terminales) *PedidoHandler {
	return &PedidoHandler{terminales: terminales}
}

func (h *PedidoHandler) terminal(c *gin.Context) *service.Terminal {
	return h.terminales.Obtener(*middleware.GetSesion(c))
}

func (h *PedidoHandler) responder(c *gin.Context, resp dto.PedidoResponse, err error) {
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Catalog ───────────────────────────────────────────────────────────────────

// BuscarCatalogo godoc
// @Summary      Buscar productos
// @Description  Filtra el catálogo de la sesión por nombre. Si el catálogo no se pudo cargar devuelve una lista vacía con disponible=false.
// @Tags         catalogo
// @Produce      json
// @Security     BearerAuth
// @Param        q   query    string false "Texto a buscar"
// @Success      200 {object} dto.CatalogoResponse
// @Router       /v1/catalogo [get]
func (h *PedidoHandler) BuscarCatalogo(c *gin.Context) {
	productos, disponible := h.terminal(c).Catalogo.Buscar(c.Request.Context(), c.Query("q"))
	c.JSON(http.StatusOK, dto.CatalogoResponse{Data: productos, Total: len(productos), Disponible: disponible})
}

// RecargarCatalogo godoc
// @Summary      Recargar catálogo
// @Tags         catalogo
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.CatalogoResponse
// @Failure      502 {object} apierror.APIError
// @Router       /v1/catalogo/recargar [post]
func (h *PedidoHandler) RecargarCatalogo(c *gin.Context) {
	cat := h.terminal(c).Catalogo
	if err := cat.Recargar(c.Request.Context()); err != nil {
		responderError(c, err)
		return
	}
	productos, disponible := cat.Buscar(c.Request.Context(), "")
	c.JSON(http.StatusOK, dto.CatalogoResponse{Data: productos, Total: len(productos), Disponible: disponible})
}

// ── Cart ──────────────────────────────────────────────────────────────────────

// ObtenerPedido godoc
// @Summary      Estado del pedido
// @Tags         pedido
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.PedidoResponse
// @Router       /v1/pedido [get]
func (h *PedidoHandler) ObtenerPedido(c *gin.Context) {
	c.JSON(http.StatusOK, h.terminal(c).Pedido.Snapshot())
}

// AgregarItem godoc
// @Summary      Agregar producto
// @Description  Agrega el producto con cantidad 1 y precio nivel 1. Si ya está en el pedido no cambia nada.
// @Tags         pedido
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.AgregarItemRequest true "Producto"
// @Success      200  {object} dto.PedidoResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/pedido/items [post]
func (h *PedidoHandler) AgregarItem(c *gin.Context) {
	var req dto.AgregarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.terminal(c).Pedido.Agregar(c.Request.Context(), req.ProductoID)
	h.responder(c, resp, err)
}

// CambiarCantidad godoc
// @Summary      Cambiar cantidad
// @Description  La cantidad se ajusta a [1, stock]; el ajuste se informa en "ajuste".
// @Tags         pedido
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     int                        true "ID de producto"
// @Param        body body     dto.CambiarCantidadRequest true "Cantidad"
// @Success      200  {object} dto.PedidoResponse
// @Router       /v1/pedido/items/{id}/cantidad [patch]
func (h *PedidoHandler) CambiarCantidad(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	var req dto.CambiarCantidadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.terminal(c).Pedido.CambiarCantidad(id, req.Cantidad)
	h.responder(c, resp, err)
}

// CambiarPrecio godoc
// @Summary      Cambiar nivel de precio
// @Description  Solo se aceptan los precios configurados del producto.
// @Tags         pedido
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     int                      true "ID de producto"
// @Param        body body     dto.CambiarPrecioRequest true "Precio"
// @Success      200  {object} dto.PedidoResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/pedido/items/{id}/precio [patch]
func (h *PedidoHandler) CambiarPrecio(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	var req dto.CambiarPrecioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.terminal(c).Pedido.CambiarPrecio(id, req.Precio)
	h.responder(c, resp, err)
}

// QuitarItem godoc
// @Summary      Quitar producto
// @Tags         pedido
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     int true "ID de producto"
// @Success      200 {object} dto.PedidoResponse
// @Router       /v1/pedido/items/{id} [delete]
func (h *PedidoHandler) QuitarItem(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	resp, err := h.terminal(c).Pedido.Quitar(id)
	h.responder(c, resp, err)
}

// ── Confirmation ──────────────────────────────────────────────────────────────

// AbrirConfirmacion godoc
// @Summary      Abrir confirmación
// @Description  Pasa al paso de cliente/comprobante, genera el id de borrador y carga los comprobantes.
// @Tags         pedido
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.PedidoResponse
// @Failure      409 {object} apierror.APIError
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/pedido/confirmacion [post]
func (h *PedidoHandler) AbrirConfirmacion(c *gin.Context) {
	resp, err := h.terminal(c).Pedido.AbrirConfirmacion(c.Request.Context())
	h.responder(c, resp, err)
}

// CancelarConfirmacion godoc
// @Summary      Cancelar confirmación
// @Description  Descarta comprobante, cliente e id de borrador; el carrito se conserva.
// @Tags         pedido
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.PedidoResponse
// @Router       /v1/pedido/confirmacion [delete]
func (h *PedidoHandler) CancelarConfirmacion(c *gin.Context) {
	resp, err := h.terminal(c).Pedido.CancelarConfirmacion()
	h.responder(c, resp, err)
}

// SeleccionarComprobante godoc
// @Summary      Elegir comprobante
// @Description  Cambiar de comprobante limpia el cliente elegido.
// @Tags         pedido
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.SeleccionarComprobanteRequest true "Tipo y serie"
// @Success      200  {object} dto.PedidoResponse
// @Router       /v1/pedido/comprobante [put]
func (h *PedidoHandler) SeleccionarComprobante(c *gin.Context) {
	var req dto.SeleccionarComprobanteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.terminal(c).Pedido.SeleccionarComprobante(req.Tipo, req.Serie)
	h.responder(c, resp, err)
}

// BuscarCliente godoc
// @Summary      Buscar cliente registrado
// @Description  Requiere al menos 2 caracteres y un comprobante elegido. vigente=false indica que una búsqueda más reciente la reemplazó.
// @Tags         pedido
// @Produce      json
// @Security     BearerAuth
// @Param        q   query    string true "Nombre o RUC"
// @Success      200 {object} dto.BusquedaClienteResponse
// @Router       /v1/pedido/clientes [get]
func (h *PedidoHandler) BuscarCliente(c *gin.Context) {
	resp, err := h.terminal(c).Pedido.BuscarCliente(c.Request.Context(), c.Query("q"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SeleccionarCliente godoc
// @Summary      Elegir cliente sugerido
// @Tags         pedido
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.SeleccionarClienteRequest true "Código de cliente"
// @Success      200  {object} dto.PedidoResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/pedido/cliente [put]
func (h *PedidoHandler) SeleccionarCliente(c *gin.Context) {
	var req dto.SeleccionarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.terminal(c).Pedido.SeleccionarCliente(req.Codigo)
	h.responder(c, resp, err)
}

// LimpiarCliente godoc
// @Summary      Quitar cliente elegido
// @Tags         pedido
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.PedidoResponse
// @Router       /v1/pedido/cliente [delete]
func (h *PedidoHandler) LimpiarCliente(c *gin.Context) {
	resp, err := h.terminal(c).Pedido.LimpiarCliente()
	h.responder(c, resp, err)
}

// IngresarClienteLibre godoc
// @Summary      Datos de cliente sin registro
// @Description  Para boleta y notas de venta: nombres y DNI son obligatorios al enviar.
// @Tags         pedido
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.ClienteLibreRequest true "Cliente"
// @Success      200  {object} dto.PedidoResponse
// @Router       /v1/pedido/cliente-libre [put]
func (h *PedidoHandler) IngresarClienteLibre(c *gin.Context) {
	var req dto.ClienteLibreRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.terminal(c).Pedido.IngresarClienteLibre(model.ClienteLibre{
		Nombres:     req.Nombres,
		DNI:         req.DNI,
		RUC:         req.RUC,
		RazonSocial: req.RazonSocial,
		Direccion:   req.Direccion,
		Correo:      req.Correo,
	})
	h.responder(c, resp, err)
}

// Enviar godoc
// @Summary      Confirmar y registrar la venta
// @Description  Valida el borrador y lo envía una sola vez al servidor de ventas. Si falla, el borrador se conserva para reintentar con el mismo id.
// @Tags         pedido
// @Produce      json
// @Security     BearerAuth
// @Success      201 {object} dto.VentaConfirmadaResponse
// @Failure      409 {object} apierror.APIError
// @Failure      422 {object} apierror.ValidationError
// @Failure      502 {object} apierror.APIError
// @Router       /v1/pedido/envio [post]
func (h *PedidoHandler) Enviar(c *gin.Context) {
	resp, err := h.terminal(c).Pedido.Confirmar(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
