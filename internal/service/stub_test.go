package service

import (
	"context"
	"sync"
	"time"

	"ferrepos/internal/dto"
	"ferrepos/internal/infra"
	"ferrepos/internal/model"
	"ferrepos/internal/repository"
	"ferrepos/internal/worker"

	"github.com/shopspring/decimal"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubBackend is an in-memory Backend. Zero-value hooks fall back to the
// canned data; every call is counted.
type stubBackend struct {
	mu sync.Mutex

	productos    []model.Producto
	comprobantes []model.Comprobante
	clientes     []model.ClienteBuscado
	pendientes   []model.VentaPendiente
	movimientos  map[string][]model.MovimientoCuenta
	lineas       map[string][]model.LineaComprobante
	pdfs         map[string][]byte
	zonas        []model.Zona
	saldos       map[int][]model.SaldoCliente
	cuentaErr    error // returned by every account call when set

	loginFn      func(req dto.LoginRequest) (*dto.BackendLoginResponse, error)
	productosFn  func() ([]model.Producto, error)
	registrarFn  func(payload dto.RegistroVentaPayload) (*dto.RegistroVentaAck, error)
	buscarFn     func(consulta, tipo string) ([]model.ClienteBuscado, error)
	pendientesFn func() ([]model.VentaPendiente, error)
	cancelarFn   func(id int) error

	llamadas   map[string]int
	ventas     []dto.RegistroVentaPayload
	busquedas  []string
	cancelados []int
	tokens     []string
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		productos: []model.Producto{
			producto(10, "Martillo", 65, 60, 0, nil),
			producto(20, "Clavos 2\"", 1.5, 0, 0, intPtr(100)),
			producto(30, "Taladro", 250, 240, 230, intPtr(3)),
		},
		comprobantes: []model.Comprobante{
			{Tipo: model.TipoBoleta, Serie: "B001", Etiqueta: "Boleta B001"},
			{Tipo: model.TipoFactura, Serie: "F001", Etiqueta: "Factura F001"},
		},
		clientes: []model.ClienteBuscado{
			{Codigo: "C1", RUC: "20123456789", Nombre: "Constructora Andes SAC"},
			{Codigo: "C2", RUC: "20987654321", Nombre: "Ferromax EIRL"},
		},
		movimientos: map[string][]model.MovimientoCuenta{
			"C1": {
				{Fecha: "2026-03-01", Detalle: "F001-000120", Total: decimal.RequireFromString("500"), Saldo: decimal.RequireFromString("500"), Tipo: model.MovimientoCargo, CodigoInterno: "INT-120"},
				{Fecha: "2026-03-05", Detalle: "Abono efectivo", Total: decimal.RequireFromString("200"), Saldo: decimal.RequireFromString("300"), Tipo: model.MovimientoAbono},
			},
		},
		lineas: map[string][]model.LineaComprobante{
			"INT-120": {
				{Cantidad: decimal.NewFromInt(2), Unidad: "UND", Producto: "Taladro", PrecioUnitario: decimal.RequireFromString("240"), Total: decimal.RequireFromString("480")},
				{Cantidad: decimal.RequireFromString("1.5"), Unidad: "KG", Producto: "Clavos 2\"", PrecioUnitario: decimal.RequireFromString("13.3334"), Total: decimal.RequireFromString("20")},
			},
		},
		pdfs:  map[string][]byte{"INT-120": []byte("%PDF-1.4 comprobante")},
		zonas: []model.Zona{{ID: 1, Nombre: "Centro"}, {ID: 2, Nombre: "Norte"}},
		saldos: map[int][]model.SaldoCliente{
			1: {
				{ID: "C1", Nombre: "Constructora Andes SAC", Saldo: decimal.RequireFromString("300")},
				{ID: "C2", Nombre: "Ferromax EIRL", Saldo: decimal.RequireFromString("45.50")},
			},
		},
		llamadas: make(map[string]int),
	}
}

func (b *stubBackend) contar(op, token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.llamadas[op]++
	b.tokens = append(b.tokens, token)
}

func (b *stubBackend) veces(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.llamadas[op]
}

func (b *stubBackend) Login(_ context.Context, req dto.LoginRequest) (*dto.BackendLoginResponse, error) {
	b.contar("login", "")
	if b.loginFn != nil {
		return b.loginFn(req)
	}
	resp := &dto.BackendLoginResponse{Token: "tok-" + req.Username}
	resp.User.ID = "7"
	resp.User.Nombre = "Rosa"
	resp.User.Rol = "Vendedor"
	return resp, nil
}

func (b *stubBackend) ListarProductos(ctx context.Context, token string) ([]model.Producto, error) {
	b.contar("productos", token)
	productos, err := b.productos, error(nil)
	if b.productosFn != nil {
		productos, err = b.productosFn()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr // an HTTP call on a finished context fails
	}
	return productos, err
}

func (b *stubBackend) ListarComprobantes(_ context.Context, token string) ([]model.Comprobante, error) {
	b.contar("comprobantes", token)
	return b.comprobantes, nil
}

func (b *stubBackend) BuscarClientes(_ context.Context, token, consulta, tipo string) ([]model.ClienteBuscado, error) {
	b.contar("clientes", token)
	b.mu.Lock()
	b.busquedas = append(b.busquedas, consulta+"|"+tipo)
	b.mu.Unlock()
	if b.buscarFn != nil {
		return b.buscarFn(consulta, tipo)
	}
	return b.clientes, nil
}

func (b *stubBackend) RegistrarCliente(_ context.Context, token string, _ dto.NuevoClienteRequest) error {
	b.contar("registrar_cliente", token)
	return nil
}

func (b *stubBackend) RegistrarVenta(_ context.Context, token string, payload dto.RegistroVentaPayload) (*dto.RegistroVentaAck, error) {
	b.contar("ventas", token)
	b.mu.Lock()
	b.ventas = append(b.ventas, payload)
	b.mu.Unlock()
	if b.registrarFn != nil {
		return b.registrarFn(payload)
	}
	return &dto.RegistroVentaAck{ID: "501", Numero: "V-000501", Estado: "pendiente"}, nil
}

func (b *stubBackend) ListarVentasPendientes(_ context.Context, token string) ([]model.VentaPendiente, error) {
	b.contar("pendientes", token)
	if b.pendientesFn != nil {
		return b.pendientesFn()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.VentaPendiente, len(b.pendientes))
	copy(out, b.pendientes)
	return out, nil
}

func (b *stubBackend) CancelarVenta(_ context.Context, token string, id int) error {
	b.contar("cancelar", token)
	if b.cancelarFn != nil {
		if err := b.cancelarFn(id); err != nil {
			return err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelados = append(b.cancelados, id)
	for i, v := range b.pendientes {
		if v.ID == id {
			b.pendientes = append(b.pendientes[:i:i], b.pendientes[i+1:]...)
			break
		}
	}
	return nil
}

func (b *stubBackend) EstadoCuenta(_ context.Context, token, clienteID string) ([]model.MovimientoCuenta, error) {
	b.contar("estado_cuenta", token)
	if b.cuentaErr != nil {
		return nil, b.cuentaErr
	}
	movs, ok := b.movimientos[clienteID]
	if !ok {
		return nil, &infra.BackendError{Status: 404, Detail: "Cliente no encontrado"}
	}
	return movs, nil
}

func (b *stubBackend) DetalleComprobante(_ context.Context, token, codigo string) ([]model.LineaComprobante, error) {
	b.contar("detalle_comprobante", token)
	if b.cuentaErr != nil {
		return nil, b.cuentaErr
	}
	lineas, ok := b.lineas[codigo]
	if !ok {
		return nil, &infra.BackendError{Status: 404, Detail: "Comprobante no encontrado"}
	}
	return lineas, nil
}

func (b *stubBackend) PDFComprobante(_ context.Context, token, codigo string) ([]byte, error) {
	b.contar("pdf_comprobante", token)
	if b.cuentaErr != nil {
		return nil, b.cuentaErr
	}
	return b.pdfs[codigo], nil
}

func (b *stubBackend) ListarZonas(_ context.Context, token string) ([]model.Zona, error) {
	b.contar("zonas", token)
	if b.cuentaErr != nil {
		return nil, b.cuentaErr
	}
	return b.zonas, nil
}

func (b *stubBackend) ClientesPorZona(_ context.Context, token string, zonaID int) ([]model.SaldoCliente, error) {
	b.contar("clientes_zona", token)
	if b.cuentaErr != nil {
		return nil, b.cuentaErr
	}
	return b.saldos[zonaID], nil
}

var _ Backend = (*stubBackend)(nil)

// stubCola captures enqueued receipt e-mails.
type stubCola struct {
	mu   sync.Mutex
	jobs []worker.ReciboEmailPayload
}

func (c *stubCola) EnqueueReciboEmail(ctx context.Context, payload worker.ReciboEmailPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jobs = append(c.jobs, payload)
	return nil
}

var _ ColaRecibos = (*stubCola)(nil)

// historialEstricto refuses writes on a finished context, as a Redis call would.
type historialEstricto struct{ repository.HistorialRepository }

func (h historialEstricto) Registrar(ctx context.Context, v model.VentaRegistrada) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.HistorialRepository.Registrar(ctx, v)
}

// ── Fixtures ──────────────────────────────────────────────────────────────────

func intPtr(n int) *int { return &n }

func producto(id int, nombre string, p1, p2, p3 float64, stock *int) model.Producto {
	return model.Producto{
		ID:      id,
		Nombre:  nombre,
		Unidad:  "UND",
		Stock:   stock,
		Precio1: decimal.NewFromFloat(p1),
		Precio2: decimal.NewFromFloat(p2),
		Precio3: decimal.NewFromFloat(p3),
	}
}

var sesionVendedor = model.Sesion{
	ID:      "ses-1",
	Token:   "backend-token",
	Usuario: model.Usuario{ID: "7", Nombre: "Rosa", Rol: model.RolVendedor},
}

var fechaFija = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

type fixturePedido struct {
	backend   *stubBackend
	historial repository.HistorialRepository
	cola      *stubCola
	pedido    *PuntoVenta
}

func buildPedido() *fixturePedido {
	backend := newStubBackend()
	historial := repository.NewHistorialMemRepository()
	cola := &stubCola{}
	deps := Dependencias{
		Backend:   backend,
		Historial: historial,
		Correos:   cola,
		Negocio:   model.ReciboEncabezado{Negocio: "Ferretería El Tornillo", RUC: "20555555555"},
	}
	pv := NewPuntoVenta(deps, sesionVendedor, NewCatalogo(backend, sesionVendedor.Token))
	pv.now = func() time.Time { return fechaFija }
	n := 0
	pv.nuevoID = func() string {
		n++
		return "borrador-" + string(rune('0'+n))
	}
	return &fixturePedido{backend: backend, historial: historial, cola: cola, pedido: pv}
}
