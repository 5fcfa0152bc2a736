package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"ferrepos/internal/dto"
	"ferrepos/internal/infra"
	"ferrepos/internal/model"
	"ferrepos/internal/repository"
	"ferrepos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// EstadoVenta is the state of a seller's draft.
type EstadoVenta string

const (
	EstadoInactivo    EstadoVenta = "inactivo"    // empty cart
	EstadoArmando     EstadoVenta = "armando"     // cart has lines, editable
	EstadoConfirmando EstadoVenta = "confirmando" // choosing series and customer
	EstadoEnviando    EstadoVenta = "enviando"    // submission in flight
	EstadoFallido     EstadoVenta = "fallido"     // last submission failed, draft kept
)

const (
	msgFacturaSinCliente = "Debes seleccionar un cliente válido para factura"
	msgBoletaIncompleta  = "Completa todos los campos para boleta."
	msgSinComprobante    = "Selecciona un tipo de comprobante"
	msgPedidoVacio       = "Agrega al menos un producto al pedido"
)

// ColaRecibos enqueues receipt e-mails. worker.Dispatcher implements it.
type ColaRecibos interface {
	EnqueueReciboEmail(ctx context.Context, payload worker.ReciboEmailPayload) error
}

// Dependencias are the collaborators shared by every session workspace.
type Dependencias struct {
	Backend   Backend
	Historial repository.HistorialRepository
	Correos   ColaRecibos // optional
	Negocio   model.ReciboEncabezado
}

// PuntoVenta is one seller's order draft and its submission workflow.
// All state is guarded by mu; backend calls run with mu released.
type PuntoVenta struct {
	deps     Dependencias
	sesion   model.Sesion
	catalogo *Catalogo

	mu          sync.Mutex
	estado      EstadoVenta
	carrito     Carrito
	resolver    ClienteResolver
	selector    SelectorComprobante
	libre       model.ClienteLibre
	borradorID  string
	ultimoError string

	now     func() time.Time
	nuevoID func() string
}

func NewPuntoVenta(deps Dependencias, sesion model.Sesion, catalogo *Catalogo) *PuntoVenta {
	return &PuntoVenta{
		deps:     deps,
		sesion:   sesion,
		catalogo: catalogo,
		estado:   EstadoInactivo,
		now:      time.Now,
		nuevoID:  func() string { return uuid.NewString() },
	}
}

// Estado returns the current workflow state.
func (p *PuntoVenta) Estado() EstadoVenta {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.estado
}

// Snapshot returns the draft as shown to the UI.
func (p *PuntoVenta) Snapshot() dto.PedidoResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// ── Cart edits (inactivo / armando) ───────────────────────────────────────────

func (p *PuntoVenta) editable() error {
	switch p.estado {
	case EstadoInactivo, EstadoArmando:
		return nil
	case EstadoEnviando:
		return ErrEnvioEnCurso
	}
	return ErrTransicionInvalida
}

func (p *PuntoVenta) seguirCarrito() {
	if p.carrito.Vacio() {
		p.estado = EstadoInactivo
	} else {
		p.estado = EstadoArmando
	}
}

// Agregar puts a catalog product in the cart. Adding a product already present has no effect.
func (p *PuntoVenta) Agregar(ctx context.Context, productoID int) (dto.PedidoResponse, error) {
	producto, err := p.catalogo.Producto(ctx, productoID)
	if err != nil {
		return dto.PedidoResponse{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.editable(); err != nil {
		return dto.PedidoResponse{}, err
	}
	p.carrito.Agregar(producto)
	p.seguirCarrito()
	return p.snapshot(), nil
}

// CambiarCantidad sets a line quantity; the applied value is clamped and any
// adjustment is reported in the response.
func (p *PuntoVenta) CambiarCantidad(productoID, cantidad int) (dto.PedidoResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.editable(); err != nil {
		return dto.PedidoResponse{}, err
	}
	aplicada, ajustada, err := p.carrito.CambiarCantidad(productoID, cantidad)
	if err != nil {
		return dto.PedidoResponse{}, err
	}
	resp := p.snapshot()
	if ajustada {
		motivo := "minimo"
		if aplicada < cantidad {
			motivo = "stock"
		}
		resp.Ajuste = &dto.AjusteCantidadResponse{
			ProductoID: productoID,
			Solicitada: cantidad,
			Aplicada:   aplicada,
			Motivo:     motivo,
		}
	}
	return resp, nil
}

func (p *PuntoVenta) CambiarPrecio(productoID int, precio decimal.Decimal) (dto.PedidoResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.editable(); err != nil {
		return dto.PedidoResponse{}, err
	}
	if err := p.carrito.CambiarPrecio(productoID, precio); err != nil {
		return dto.PedidoResponse{}, err
	}
	return p.snapshot(), nil
}

func (p *PuntoVenta) Quitar(productoID int) (dto.PedidoResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.editable(); err != nil {
		return dto.PedidoResponse{}, err
	}
	if !p.carrito.Quitar(productoID) {
		return dto.PedidoResponse{}, noEncontrado("producto %d no está en el pedido", productoID)
	}
	p.seguirCarrito()
	return p.snapshot(), nil
}

// ── Confirmation (confirmando / fallido) ──────────────────────────────────────

func (p *PuntoVenta) confirmando() error {
	switch p.estado {
	case EstadoConfirmando, EstadoFallido:
		return nil
	case EstadoEnviando:
		return ErrEnvioEnCurso
	}
	return ErrTransicionInvalida
}

// AbrirConfirmacion starts the customer/series step: a new draft id is issued
// and the series options are fetched from the backend.
func (p *PuntoVenta) AbrirConfirmacion(ctx context.Context) (dto.PedidoResponse, error) {
	p.mu.Lock()
	if p.estado == EstadoEnviando {
		p.mu.Unlock()
		return dto.PedidoResponse{}, ErrEnvioEnCurso
	}
	if p.carrito.Vacio() {
		p.mu.Unlock()
		return dto.PedidoResponse{}, validacion("carrito", msgPedidoVacio)
	}
	if p.estado != EstadoArmando {
		p.mu.Unlock()
		return dto.PedidoResponse{}, ErrTransicionInvalida
	}
	p.estado = EstadoConfirmando
	p.borradorID = p.nuevoID()
	p.selector.Reiniciar()
	p.resolver.Limpiar()
	p.libre = model.ClienteLibre{}
	p.ultimoError = ""
	borrador := p.borradorID
	p.mu.Unlock()

	opciones, err := p.deps.Backend.ListarComprobantes(ctx, p.sesion.Token)
	if err != nil {
		log.Warn().Err(err).Str("sesion_id", p.sesion.ID).Msg("pedido: no se pudieron cargar los comprobantes")
		opciones = nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// The draft may have been cancelled while the options were loading.
	if p.borradorID == borrador && p.estado == EstadoConfirmando {
		p.selector.Cargar(opciones)
	}
	return p.snapshot(), nil
}

// CancelarConfirmacion discards the draft (series, customer, draft id) and
// returns to cart editing with the cart intact.
func (p *PuntoVenta) CancelarConfirmacion() (dto.PedidoResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.confirmando(); err != nil {
		return dto.PedidoResponse{}, err
	}
	p.descartarBorrador()
	p.seguirCarrito()
	return p.snapshot(), nil
}

func (p *PuntoVenta) descartarBorrador() {
	p.selector.Reiniciar()
	p.resolver.Limpiar()
	p.libre = model.ClienteLibre{}
	p.borradorID = ""
	p.ultimoError = ""
}

// SeleccionarComprobante picks a loaded series. Changing it always resets the customer.
func (p *PuntoVenta) SeleccionarComprobante(tipo, serie string) (dto.PedidoResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.confirmando(); err != nil {
		return dto.PedidoResponse{}, err
	}
	if _, err := p.selector.Seleccionar(tipo, serie); err != nil {
		return dto.PedidoResponse{}, err
	}
	p.resolver.Limpiar()
	p.libre = model.ClienteLibre{}
	return p.snapshot(), nil
}

// BuscarCliente runs a registered-customer lookup for the selected document type.
// Responses superseded by a newer search are dropped; lookup failures degrade
// to no suggestions.
func (p *PuntoVenta) BuscarCliente(ctx context.Context, consulta string) (dto.BusquedaClienteResponse, error) {
	p.mu.Lock()
	if err := p.confirmando(); err != nil {
		p.mu.Unlock()
		return dto.BusquedaClienteResponse{}, err
	}
	seq, q, buscar := p.resolver.Iniciar(consulta)
	actual := p.selector.Actual()
	if !buscar || actual == nil {
		p.resolver.Completar(seq, nil)
		resp := dto.BusquedaClienteResponse{Consulta: consulta, Sugerencias: []model.ClienteBuscado{}, Vigente: true}
		p.mu.Unlock()
		return resp, nil
	}
	tipo := actual.Tipo
	p.mu.Unlock()

	candidatos, err := p.deps.Backend.BuscarClientes(ctx, p.sesion.Token, q, tipo)
	if err != nil {
		log.Warn().Err(err).Str("sesion_id", p.sesion.ID).Str("consulta", q).Msg("pedido: búsqueda de clientes fallida")
		candidatos = nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	vigente := p.resolver.Completar(seq, candidatos)
	return dto.BusquedaClienteResponse{
		Consulta:    consulta,
		Sugerencias: p.resolver.Sugerencias(),
		Vigente:     vigente,
	}, nil
}

func (p *PuntoVenta) SeleccionarCliente(codigo string) (dto.PedidoResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.confirmando(); err != nil {
		return dto.PedidoResponse{}, err
	}
	if err := p.resolver.Seleccionar(codigo); err != nil {
		return dto.PedidoResponse{}, err
	}
	return p.snapshot(), nil
}

func (p *PuntoVenta) LimpiarCliente() (dto.PedidoResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.confirmando(); err != nil {
		return dto.PedidoResponse{}, err
	}
	p.resolver.Limpiar()
	return p.snapshot(), nil
}

// IngresarClienteLibre replaces the free-text customer identity.
func (p *PuntoVenta) IngresarClienteLibre(libre model.ClienteLibre) (dto.PedidoResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.confirmando(); err != nil {
		return dto.PedidoResponse{}, err
	}
	p.libre = libre
	return p.snapshot(), nil
}

// ── Submission ────────────────────────────────────────────────────────────────

// Confirmar validates the draft and submits it to the backend exactly once.
// Validation failures make no network call and change no state. A backend
// failure leaves the draft intact in EstadoFallido for a retry with the same
// draft id.
func (p *PuntoVenta) Confirmar(ctx context.Context) (*dto.VentaConfirmadaResponse, error) {
	p.mu.Lock()
	if p.estado == EstadoEnviando {
		p.mu.Unlock()
		return nil, ErrEnvioEnCurso
	}
	payload, err := p.validarEnvio()
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	p.estado = EstadoEnviando
	lineas := p.carrito.Lineas()
	total := p.carrito.Total()
	comprobante := *p.selector.Actual()
	cliente, clienteDoc := p.etiquetaCliente()
	correo := p.libre.Normalizado().Correo
	p.mu.Unlock()

	logger := log.With().Str("sesion_id", p.sesion.ID).Str("borrador_id", payload.BorradorID).Logger()

	ack, err := p.deps.Backend.RegistrarVenta(ctx, p.sesion.Token, payload)
	if err != nil {
		p.mu.Lock()
		p.estado = EstadoFallido
		p.ultimoError = mensajeUsuario(err)
		p.mu.Unlock()
		logger.Error().Err(err).Msg("pedido: registro de venta fallido")
		return nil, falloBackend("registrar venta", err)
	}

	venta := model.VentaRegistrada{
		ID:           ack.ID.String(),
		Numero:       ack.Numero.String(),
		BorradorID:   payload.BorradorID,
		VendedorID:   p.sesion.Usuario.ID,
		Vendedor:     p.sesion.Usuario.Nombre,
		Comprobante:  comprobante,
		Cliente:      cliente,
		ClienteDoc:   clienteDoc,
		Items:        itemsVenta(lineas),
		Total:        total,
		Estado:       ack.Estado,
		RegistradaEn: p.now(),
	}
	if venta.Numero == "" {
		venta.Numero = venta.ID
	}
	if venta.Numero == "" {
		venta.Numero = payload.BorradorID
	}

	p.mu.Lock()
	p.carrito.Vaciar()
	p.descartarBorrador()
	p.estado = EstadoInactivo
	pedido := p.snapshot()
	p.mu.Unlock()

	logger.Info().Str("numero", venta.Numero).Str("total", total.StringFixed(2)).Msg("pedido: venta registrada")

	// Bookkeeping runs detached from the request; the sale already exists remotely.
	bg := context.WithoutCancel(ctx)
	if err := p.deps.Historial.Registrar(bg, venta); err != nil {
		logger.Warn().Err(err).Msg("pedido: no se pudo guardar en el historial del día")
	}
	if correo != "" && p.deps.Correos != nil {
		job := worker.ReciboEmailPayload{
			ToEmail: correo,
			Subject: "Tu comprobante " + venta.Numero,
			Body:    "Adjuntamos el comprobante de tu compra en " + p.deps.Negocio.Negocio + ".",
			Recibo:  ReciboDeVenta(p.deps.Negocio, venta),
		}
		if err := p.deps.Correos.EnqueueReciboEmail(bg, job); err != nil {
			logger.Warn().Err(err).Msg("pedido: no se pudo encolar el correo del recibo")
		}
	}

	mensaje := ack.Mensaje
	if mensaje == "" {
		mensaje = "Venta " + venta.Numero + " registrada"
	}
	return &dto.VentaConfirmadaResponse{Venta: venta, Mensaje: mensaje, Pedido: pedido}, nil
}

// validarEnvio checks the draft and builds the backend payload (must be called under lock).
func (p *PuntoVenta) validarEnvio() (dto.RegistroVentaPayload, error) {
	if p.carrito.Vacio() {
		return dto.RegistroVentaPayload{}, validacion("carrito", msgPedidoVacio)
	}
	if err := p.confirmando(); err != nil {
		return dto.RegistroVentaPayload{}, err
	}
	comprobante := p.selector.Actual()
	if comprobante == nil {
		return dto.RegistroVentaPayload{}, validacion("comprobante", msgSinComprobante)
	}

	payload := dto.RegistroVentaPayload{
		TipoDoc:    comprobante.Tipo,
		Serie:      comprobante.Serie,
		BorradorID: p.borradorID,
	}
	if comprobante.RequiereClienteRegistrado() {
		cliente := p.resolver.Seleccionado()
		if cliente == nil {
			return dto.RegistroVentaPayload{}, validacion("cliente", msgFacturaSinCliente)
		}
		payload.CodigoCliente = cliente.Codigo
	} else {
		libre := p.libre.Normalizado()
		if libre.Nombres == "" || libre.DNI == "" {
			return dto.RegistroVentaPayload{}, validacion("cliente_libre", msgBoletaIncompleta)
		}
		payload.Cliente = &dto.ClienteLibrePayload{
			Nombres:     libre.Nombres,
			DNI:         libre.DNI,
			RUC:         libre.RUC,
			RazonSocial: libre.RazonSocial,
			Direccion:   libre.Direccion,
		}
	}

	for _, l := range p.carrito.Lineas() {
		payload.Items = append(payload.Items, dto.ItemVentaPayload{
			CodigoProducto: strconv.Itoa(l.Producto.ID),
			Cantidad:       l.Cantidad,
			NivelPrecio:    l.NivelPrecio(),
		})
	}
	return payload, nil
}

// etiquetaCliente is the customer label kept in the history (must be called under lock).
func (p *PuntoVenta) etiquetaCliente() (string, string) {
	if c := p.resolver.Seleccionado(); c != nil {
		return c.Nombre, c.RUC
	}
	libre := p.libre.Normalizado()
	return libre.Nombres, libre.DNI
}

func itemsVenta(lineas []LineaPedido) []model.VentaItem {
	items := make([]model.VentaItem, 0, len(lineas))
	for _, l := range lineas {
		items = append(items, model.VentaItem{
			ProductoID:     l.Producto.ID,
			Nombre:         l.Producto.Nombre,
			Unidad:         l.Producto.Unidad,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.PrecioSeleccionado,
			NivelPrecio:    l.NivelPrecio(),
			Subtotal:       l.Subtotal(),
		})
	}
	return items
}

// VentasDelDia lists the seller's acknowledged sales for today.
func (p *PuntoVenta) VentasDelDia(ctx context.Context) (dto.VentasDelDiaResponse, error) {
	hoy := p.now()
	ventas, err := p.deps.Historial.ListarDelDia(ctx, p.sesion.Usuario.ID, hoy)
	if err != nil {
		return dto.VentasDelDiaResponse{}, err
	}
	return dto.VentasDelDiaResponse{
		Fecha: hoy.Format(repository.FormatoFecha),
		Data:  ventas,
		Total: totalVenta(ventas),
	}, nil
}

// snapshot must be called under lock.
func (p *PuntoVenta) snapshot() dto.PedidoResponse {
	lineas := p.carrito.Lineas()
	resp := dto.PedidoResponse{
		Estado:          string(p.estado),
		Lineas:          make([]dto.LineaPedidoResponse, 0, len(lineas)),
		Total:           p.carrito.Total(),
		BorradorID:      p.borradorID,
		Comprobante:     p.selector.Actual(),
		BusquedaCliente: p.resolver.Consulta(),
		Cliente:         p.resolver.Seleccionado(),
		UltimoError:     p.ultimoError,
	}
	for _, l := range lineas {
		resp.Lineas = append(resp.Lineas, dto.LineaPedidoResponse{
			ProductoID:         l.Producto.ID,
			Nombre:             l.Producto.Nombre,
			Unidad:             l.Producto.Unidad,
			Stock:              l.Producto.Stock,
			Cantidad:           l.Cantidad,
			PrecioSeleccionado: l.PrecioSeleccionado,
			NivelPrecio:        l.NivelPrecio(),
			Precios:            l.Producto.Precios(),
			Subtotal:           l.Subtotal(),
		})
	}
	if p.estado == EstadoConfirmando || p.estado == EstadoFallido || p.estado == EstadoEnviando {
		resp.Comprobantes = p.selector.Opciones()
		resp.Sugerencias = p.resolver.Sugerencias()
		if !p.libre.Vacio() {
			libre := p.libre
			resp.ClienteLibre = &libre
		}
	}
	return resp
}

// mensajeUsuario extracts the backend's own message when it sent one.
func mensajeUsuario(err error) string {
	var be *infra.BackendError
	if errors.As(err, &be) && be.Detail != "" {
		return be.Detail
	}
	if errors.Is(err, infra.ErrCircuitOpen) {
		return "El servidor de ventas no está disponible, intenta en unos segundos"
	}
	return "No se pudo registrar la venta, intenta nuevamente"
}
