package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"ferrepos/internal/config"
	"ferrepos/internal/dto"
	"ferrepos/internal/infra"
	"ferrepos/internal/model"
	"ferrepos/internal/repository"
	"ferrepos/internal/router"
	"ferrepos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Stub backend ──────────────────────────────────────────────────────────────

type fakeBackend struct {
	mu         sync.Mutex
	ventas     []dto.RegistroVentaPayload
	pendientes []model.VentaPendiente
}

func (b *fakeBackend) Login(_ context.Context, req dto.LoginRequest) (*dto.BackendLoginResponse, error) {
	if req.Password != "ok" {
		return nil, &infra.BackendError{Status: http.StatusUnauthorized, Detail: "Usuario o clave incorrectos"}
	}
	resp := &dto.BackendLoginResponse{Token: "backend-" + req.Username}
	resp.User.ID = dto.FlexString(req.Username)
	resp.User.Nombre = strings.ToUpper(req.Username)
	resp.User.Rol = req.Username // usernames double as roles in these tests
	return resp, nil
}

func (b *fakeBackend) ListarProductos(context.Context, string) ([]model.Producto, error) {
	return []model.Producto{{
		ID: 10, Nombre: "Martillo", Unidad: "UND",
		Precio1: decimal.RequireFromString("65.00"), Precio2: decimal.RequireFromString("60.00"),
	}}, nil
}

func (b *fakeBackend) ListarComprobantes(context.Context, string) ([]model.Comprobante, error) {
	return []model.Comprobante{
		{Tipo: model.TipoBoleta, Serie: "B001"},
		{Tipo: model.TipoFactura, Serie: "F001"},
	}, nil
}

func (b *fakeBackend) BuscarClientes(context.Context, string, string, string) ([]model.ClienteBuscado, error) {
	return []model.ClienteBuscado{{Codigo: "C1", RUC: "20123456789", Nombre: "Constructora Andes SAC"}}, nil
}

func (b *fakeBackend) RegistrarCliente(context.Context, string, dto.NuevoClienteRequest) error {
	return nil
}

func (b *fakeBackend) RegistrarVenta(_ context.Context, _ string, p dto.RegistroVentaPayload) (*dto.RegistroVentaAck, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ventas = append(b.ventas, p)
	return &dto.RegistroVentaAck{ID: "501", Numero: "V-000501", Estado: "pendiente"}, nil
}

func (b *fakeBackend) ListarVentasPendientes(context.Context, string) ([]model.VentaPendiente, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.VentaPendiente(nil), b.pendientes...), nil
}

func (b *fakeBackend) CancelarVenta(_ context.Context, _ string, id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, v := range b.pendientes {
		if v.ID == id {
			b.pendientes = append(b.pendientes[:i:i], b.pendientes[i+1:]...)
		}
	}
	return nil
}

func (b *fakeBackend) EstadoCuenta(_ context.Context, _ string, clienteID string) ([]model.MovimientoCuenta, error) {
	if clienteID != "C1" {
		return nil, &infra.BackendError{Status: http.StatusNotFound, Detail: "Cliente no encontrado"}
	}
	return []model.MovimientoCuenta{
		{Fecha: "2026-03-01", Detalle: "F001-120", Total: decimal.RequireFromString("500"), Saldo: decimal.RequireFromString("500"), Tipo: model.MovimientoCargo, CodigoInterno: "120"},
		{Fecha: "2026-03-05", Detalle: "Abono", Total: decimal.RequireFromString("150"), Saldo: decimal.RequireFromString("350"), Tipo: model.MovimientoAbono},
	}, nil
}

func (b *fakeBackend) DetalleComprobante(context.Context, string, string) ([]model.LineaComprobante, error) {
	return []model.LineaComprobante{{Cantidad: decimal.NewFromInt(2), Unidad: "UND", Producto: "Martillo", PrecioUnitario: decimal.RequireFromString("250"), Total: decimal.RequireFromString("500")}}, nil
}

func (b *fakeBackend) PDFComprobante(_ context.Context, _ string, codigo string) ([]byte, error) {
	return []byte("%PDF-1.4 " + codigo), nil
}

func (b *fakeBackend) ListarZonas(context.Context, string) ([]model.Zona, error) {
	return []model.Zona{{ID: 1, Nombre: "Centro"}}, nil
}

func (b *fakeBackend) ClientesPorZona(context.Context, string, int) ([]model.SaldoCliente, error) {
	return []model.SaldoCliente{{ID: "C1", Nombre: "Constructora Andes SAC", Saldo: decimal.RequireFromString("350")}}, nil
}

var _ service.Backend = (*fakeBackend)(nil)

// ── Helpers ──────────────────────────────────────────────────────────────────

type testEnv struct {
	engine  *gin.Engine
	backend *fakeBackend
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	backend := &fakeBackend{pendientes: []model.VentaPendiente{
		{ID: 3, Numero: "V-300", Cliente: "Ana", Total: decimal.RequireFromString("80.00")},
	}}
	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		NegocioNombre:      "Ferretería El Tornillo",
		ReciboAncho:        32,
	}
	r := router.New(cfg, router.Deps{
		Backend:   backend,
		Breaker:   infra.NewCircuitBreaker(infra.DefaultCBConfig()),
		Sesiones:  repository.NewSesionMemRepository(),
		Historial: repository.NewHistorialMemRepository(),
	})
	return &testEnv{engine: r, backend: backend}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": username, "password": "ok"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "disabled", body["redis"])
	assert.Equal(t, "closed", body["backend"])
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": "vendedor", "password": "mal"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": ""}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestVentaCompletaBoleta(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, model.RolVendedor)

	w := env.do(t, http.MethodGet, "/v1/catalogo?q=mart", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	cat := decode[dto.CatalogoResponse](t, w)
	assert.True(t, cat.Disponible)
	require.Len(t, cat.Data, 1)

	w = env.do(t, http.MethodPost, "/v1/pedido/items", map[string]int{"producto_id": 10}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, http.MethodPatch, "/v1/pedido/items/10/precio", map[string]string{"precio": "60.00"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, http.MethodPatch, "/v1/pedido/items/10/precio", map[string]string{"precio": "61.00"}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodPost, "/v1/pedido/confirmacion", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	pedido := decode[dto.PedidoResponse](t, w)
	require.NotEmpty(t, pedido.BorradorID)
	assert.Len(t, pedido.Comprobantes, 2)

	// Cart edits are a conflict while confirming.
	w = env.do(t, http.MethodDelete, "/v1/pedido/items/10", nil, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPut, "/v1/pedido/comprobante", map[string]string{"ctipdocu": "03", "cserdocu": "B001"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/v1/pedido/envio", nil, token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Completa todos los campos para boleta.")
	assert.Empty(t, env.backend.ventas)

	w = env.do(t, http.MethodPut, "/v1/pedido/cliente-libre", map[string]string{"nombres": "Juan Pérez", "dni": "45678912"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/v1/pedido/envio", nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ok := decode[dto.VentaConfirmadaResponse](t, w)
	assert.Equal(t, "V-000501", ok.Venta.Numero)
	assert.Equal(t, "inactivo", ok.Pedido.Estado)

	require.Len(t, env.backend.ventas, 1)
	assert.Equal(t, pedido.BorradorID, env.backend.ventas[0].BorradorID)
	assert.Equal(t, "2", env.backend.ventas[0].Items[0].NivelPrecio)

	w = env.do(t, http.MethodGet, "/v1/ventas/hoy", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	dia := decode[dto.VentasDelDiaResponse](t, w)
	require.Len(t, dia.Data, 1)

	w = env.do(t, http.MethodGet, "/v1/ventas/hoy/V-000501/recibo?formato=pdf", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestFacturaSinClienteBloqueada(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, model.RolAdmin)

	env.do(t, http.MethodPost, "/v1/pedido/items", map[string]int{"producto_id": 10}, token)
	env.do(t, http.MethodPost, "/v1/pedido/confirmacion", nil, token)
	env.do(t, http.MethodPut, "/v1/pedido/comprobante", map[string]string{"ctipdocu": "01", "cserdocu": "F001"}, token)

	w := env.do(t, http.MethodPost, "/v1/pedido/envio", nil, token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Debes seleccionar un cliente válido para factura")
	assert.Empty(t, env.backend.ventas)

	w = env.do(t, http.MethodGet, "/v1/pedido/clientes?q=con", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPut, "/v1/pedido/cliente", map[string]string{"ccodclie": "C1"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/v1/pedido/envio", nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "C1", env.backend.ventas[0].CodigoCliente)
}

func TestRolesYLogout(t *testing.T) {
	env := setupTestEnv(t)
	caja := env.login(t, model.RolCaja)
	vendedor := env.login(t, model.RolVendedor)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/v1/pedido", nil, caja).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/v1/caja/pendientes", nil, vendedor).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/v1/pedido", nil, "").Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/v1/auth/logout", nil, vendedor).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/v1/pedido", nil, vendedor).Code)
}

func TestCajaPendientesYRecibo(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, model.RolCaja)

	w := env.do(t, http.MethodGet, "/v1/caja/pendientes", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	lista := decode[dto.PendientesResponse](t, w)
	require.Len(t, lista.Data, 1)

	w = env.do(t, http.MethodPost, "/v1/caja/seleccion/V-300", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "V-300", decode[dto.PendientesResponse](t, w).CampoBusqueda)

	w = env.do(t, http.MethodGet, "/v1/caja/pendientes/buscar", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[model.VentaPendiente](t, w).ID)

	w = env.do(t, http.MethodPost, "/v1/caja/recibo", map[string]any{
		"numero_venta": "V-300", "tipo": "boleta", "metodo_pago": "efectivo",
	}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "boleta needs a DNI")

	w = env.do(t, http.MethodPost, "/v1/caja/recibo", map[string]any{
		"numero_venta": "V-300", "tipo": "boleta", "metodo_pago": "yape", "dni": "45678912", "imprimir": true,
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	recibo := decode[dto.ReciboResponse](t, w)
	assert.False(t, recibo.Impreso)
	assert.Contains(t, recibo.Mensaje, "impresora")
	assert.Equal(t, "Yape", recibo.Recibo.MetodoPago)

	w = env.do(t, http.MethodPut, "/v1/caja/pendientes/3/cancelar", map[string]bool{"confirmar": false}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = env.do(t, http.MethodPut, "/v1/caja/pendientes/3/cancelar", map[string]bool{"confirmar": true}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[dto.PendientesResponse](t, w).Data)

	w = env.do(t, http.MethodGet, "/v1/caja/pendientes/buscar?numero=V-300", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCuentasDeCliente(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, model.RolVendedor)

	w := env.do(t, http.MethodGet, "/v1/zonas", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Centro")

	w = env.do(t, http.MethodGet, "/v1/zonas/1/clientes", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	zona := decode[dto.ClientesZonaResponse](t, w)
	require.Len(t, zona.Data, 1)
	assert.Equal(t, "350", zona.Deuda.String())
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/v1/zonas/x/clientes", nil, token).Code)

	w = env.do(t, http.MethodGet, "/v1/clientes/C1/estado-cuenta", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	cuenta := decode[dto.EstadoCuentaResponse](t, w)
	require.Len(t, cuenta.Movimientos, 2)
	assert.Equal(t, "350", cuenta.Saldo.String())

	w = env.do(t, http.MethodGet, "/v1/clientes/C9/estado-cuenta", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Cliente no encontrado")

	w = env.do(t, http.MethodGet, "/v1/comprobantes/120/detalle", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "500", decode[dto.DetalleComprobanteResponse](t, w).Total.String())

	w = env.do(t, http.MethodGet, "/v1/comprobantes/120/pdf", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4 120", w.Body.String())

	caja := env.login(t, model.RolCaja)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/v1/zonas", nil, caja).Code)
}

func TestCorreosFallidosSoloAdmin(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.login(t, model.RolAdmin)
	vendedor := env.login(t, model.RolVendedor)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/v1/admin/correos/fallidos", nil, vendedor).Code)

	w := env.do(t, http.MethodGet, "/v1/admin/correos/fallidos", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Empty(t, body["data"])
	assert.EqualValues(t, 0, body["total"])

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/v1/admin/correos/fallidos?n=500", nil, admin).Code)
}
