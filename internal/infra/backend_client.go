package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ferrepos/internal/dto"
	"ferrepos/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BackendError is a non-2xx answer from the remote backend.
// Detail is taken from the body's detail, message or error field when present.
type BackendError struct {
	Status int
	Detail string
}

func (e *BackendError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend: status %d", e.Status)
	}
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Detail)
}

// IsBackendOutage reports whether err means the backend is unavailable rather
// than rejecting the request. 4xx answers do not trip the circuit breaker.
func IsBackendOutage(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Status >= 500
	}
	return !errors.Is(err, context.Canceled)
}

// BackendClient is the HTTP client for the store's REST backend.
// Every call after login carries the session's bearer token.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewBackendClient(baseURL string, timeout time.Duration, cb *CircuitBreaker) *BackendClient {
	if cb == nil {
		cfg := DefaultCBConfig()
		cfg.IsFailure = IsBackendOutage
		cb = NewCircuitBreaker(cfg)
	}
	return &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
	}
}

// Breaker exposes the circuit breaker state for the health endpoint.
func (c *BackendClient) Breaker() *CircuitBreaker { return c.cb }

type requestOpts struct {
	token          string
	idempotencyKey string
	body           any
	out            any
	// lenient keeps a 2xx answer successful even when its body does not decode.
	lenient bool
	// raw receives the body as is instead of decoding JSON into out.
	raw    *[]byte
	accept string
}

// maxRawBody caps binary answers such as document PDFs.
const maxRawBody = 20 << 20

// do performs one request through the circuit breaker and decodes a JSON answer into opts.out.
func (c *BackendClient) do(ctx context.Context, method, path string, opts requestOpts) error {
	return c.cb.Execute(func() error {
		var body io.Reader
		if opts.body != nil {
			raw, err := json.Marshal(opts.body)
			if err != nil {
				return fmt.Errorf("backend: marshal %s %s: %w", method, path, err)
			}
			body = bytes.NewReader(raw)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return fmt.Errorf("backend: create request: %w", err)
		}
		accept := opts.accept
		if accept == "" {
			accept = "application/json"
		}
		req.Header.Set("Accept", accept)
		if opts.body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if opts.token != "" {
			req.Header.Set("Authorization", "Bearer "+opts.token)
		}
		if opts.idempotencyKey != "" {
			req.Header.Set("Idempotency-Key", opts.idempotencyKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("backend: %s %s unreachable: %w", method, path, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &BackendError{Status: resp.StatusCode, Detail: errorDetail(resp.Body)}
		}
		if opts.raw != nil {
			data, err := io.ReadAll(io.LimitReader(resp.Body, maxRawBody))
			if err != nil {
				return fmt.Errorf("backend: read %s %s: %w", method, path, err)
			}
			*opts.raw = data
			return nil
		}
		if opts.out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(opts.out); err != nil && !errors.Is(err, io.EOF) {
			if opts.lenient {
				log.Warn().Err(err).Str("path", path).Int("status", resp.StatusCode).Msg("backend: respuesta aceptada con cuerpo irregular")
				return nil
			}
			return fmt.Errorf("backend: decode %s %s: %w", method, path, err)
		}
		return nil
	})
}

// errorDetail extracts a user-facing message from an error body.
func errorDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	if s, ok := body.Detail.(string); ok && s != "" {
		return s
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func (c *BackendClient) Login(ctx context.Context, req dto.LoginRequest) (*dto.BackendLoginResponse, error) {
	var out dto.BackendLoginResponse
	err := c.do(ctx, http.MethodPost, "/login", requestOpts{
		body: dto.BackendLoginRequest{Username: req.Username, Password: req.Password},
		out:  &out,
	})
	if err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &BackendError{Status: http.StatusUnauthorized, Detail: "el backend no devolvió token"}
	}
	return &out, nil
}

// ── Catalog ───────────────────────────────────────────────────────────────────

// productoWire tolerates the backend's mixed number/string encoding of ids and stock.
type productoWire struct {
	ID      dto.FlexString `json:"id"`
	Nombre  string         `json:"nombre"`
	Unidad  string         `json:"unidad"`
	Stock   dto.FlexString `json:"stock"`
	Precio1 dto.FlexString `json:"precio1"`
	Precio2 dto.FlexString `json:"precio2"`
	Precio3 dto.FlexString `json:"precio3"`
}

func (c *BackendClient) ListarProductos(ctx context.Context, token string) ([]model.Producto, error) {
	var wire []productoWire
	if err := c.do(ctx, http.MethodGet, "/productos", requestOpts{token: token, out: &wire}); err != nil {
		return nil, err
	}
	productos := make([]model.Producto, 0, len(wire))
	for _, w := range wire {
		p, err := w.toModel()
		if err != nil {
			return nil, fmt.Errorf("backend: producto %q: %w", w.ID, err)
		}
		productos = append(productos, p)
	}
	return productos, nil
}

func (w productoWire) toModel() (model.Producto, error) {
	id, err := strconv.Atoi(w.ID.String())
	if err != nil {
		return model.Producto{}, fmt.Errorf("id inválido: %w", err)
	}
	p := model.Producto{ID: id, Nombre: strings.TrimSpace(w.Nombre), Unidad: strings.TrimSpace(w.Unidad)}
	if s := w.Stock.String(); s != "" {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			stock := int(n)
			p.Stock = &stock
		}
	}
	if p.Precio1, err = parseDecimal(w.Precio1); err != nil {
		return model.Producto{}, fmt.Errorf("precio1: %w", err)
	}
	if p.Precio2, err = parseDecimal(w.Precio2); err != nil {
		return model.Producto{}, fmt.Errorf("precio2: %w", err)
	}
	if p.Precio3, err = parseDecimal(w.Precio3); err != nil {
		return model.Producto{}, fmt.Errorf("precio3: %w", err)
	}
	return p, nil
}

// ── Document series ───────────────────────────────────────────────────────────

func (c *BackendClient) ListarComprobantes(ctx context.Context, token string) ([]model.Comprobante, error) {
	var wire []model.Comprobante
	if err := c.do(ctx, http.MethodGet, "/comprobantes", requestOpts{token: token, out: &wire}); err != nil {
		return nil, err
	}
	out := make([]model.Comprobante, 0, len(wire))
	for _, cp := range wire {
		out = append(out, normalizarComprobante(cp))
	}
	return out, nil
}

// normalizarComprobante splits a "TT/SSSS" ctipdocu into type and series.
func normalizarComprobante(cp model.Comprobante) model.Comprobante {
	cp.Tipo = strings.TrimSpace(cp.Tipo)
	cp.Serie = strings.TrimSpace(cp.Serie)
	if tipo, serie, ok := strings.Cut(cp.Tipo, "/"); ok {
		cp.Tipo = strings.TrimSpace(tipo)
		if s := strings.TrimSpace(serie); s != "" {
			cp.Serie = s
		}
	}
	if cp.Etiqueta == "" {
		cp.Etiqueta = cp.Tipo + "/" + cp.Serie
	}
	return cp
}

// ── Customers ─────────────────────────────────────────────────────────────────

func (c *BackendClient) BuscarClientes(ctx context.Context, token, consulta, tipo string) ([]model.ClienteBuscado, error) {
	q := url.Values{}
	q.Set("q", consulta)
	q.Set("tipo", tipo)
	var out []model.ClienteBuscado
	if err := c.do(ctx, http.MethodGet, "/clientes/buscar?"+q.Encode(), requestOpts{token: token, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BackendClient) RegistrarCliente(ctx context.Context, token string, req dto.NuevoClienteRequest) error {
	return c.do(ctx, http.MethodPost, "/clientes", requestOpts{token: token, body: req})
}

// ── Sales ─────────────────────────────────────────────────────────────────────

// RegistrarVenta posts a sale. The draft id travels in the body and as Idempotency-Key.
// A 2xx answer means the sale exists, so an undecodable ack yields whatever
// fields did decode instead of an error.
func (c *BackendClient) RegistrarVenta(ctx context.Context, token string, payload dto.RegistroVentaPayload) (*dto.RegistroVentaAck, error) {
	var ack dto.RegistroVentaAck
	err := c.do(ctx, http.MethodPost, "/ventas/registro", requestOpts{
		token:          token,
		idempotencyKey: payload.BorradorID,
		body:           payload,
		out:            &ack,
		lenient:        true,
	})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

type pendienteWire struct {
	ID       dto.FlexString `json:"id"`
	Numero   dto.FlexString `json:"numero_venta"`
	Nombre   string         `json:"nombre"`
	Telefono dto.FlexString `json:"telefono"`
	Total    dto.FlexString `json:"total"`
}

func (c *BackendClient) ListarVentasPendientes(ctx context.Context, token string) ([]model.VentaPendiente, error) {
	var wire []pendienteWire
	if err := c.do(ctx, http.MethodGet, "/ventas/pendientes", requestOpts{token: token, out: &wire}); err != nil {
		return nil, err
	}
	out := make([]model.VentaPendiente, 0, len(wire))
	for _, w := range wire {
		id, err := strconv.Atoi(w.ID.String())
		if err != nil {
			return nil, fmt.Errorf("backend: venta pendiente id %q: %w", w.ID, err)
		}
		total, err := parseDecimal(w.Total)
		if err != nil {
			return nil, fmt.Errorf("backend: venta pendiente %d total: %w", id, err)
		}
		out = append(out, model.VentaPendiente{
			ID:       id,
			Numero:   w.Numero.String(),
			Cliente:  strings.TrimSpace(w.Nombre),
			Telefono: w.Telefono.String(),
			Total:    total,
		})
	}
	return out, nil
}

func (c *BackendClient) CancelarVenta(ctx context.Context, token string, id int) error {
	return c.do(ctx, http.MethodPut, "/ventas/"+strconv.Itoa(id)+"/cancelar", requestOpts{token: token})
}

// ── Customer accounts ─────────────────────────────────────────────────────────

type movimientoWire struct {
	Fecha         string         `json:"fecha"`
	Detalle       string         `json:"detalle"`
	Total         dto.FlexString `json:"total"`
	Saldo         dto.FlexString `json:"saldo"`
	Tipo          string         `json:"ctipregi"`
	CodigoInterno dto.FlexString `json:"ccodinte"`
}

// EstadoCuenta fetches a customer's account movements in backend order.
func (c *BackendClient) EstadoCuenta(ctx context.Context, token, clienteID string) ([]model.MovimientoCuenta, error) {
	var wire []movimientoWire
	path := "/clientes/detalle/" + url.PathEscape(clienteID)
	if err := c.do(ctx, http.MethodGet, path, requestOpts{token: token, out: &wire}); err != nil {
		return nil, err
	}
	out := make([]model.MovimientoCuenta, 0, len(wire))
	for i, w := range wire {
		total, err := parseDecimal(w.Total)
		if err != nil {
			return nil, fmt.Errorf("backend: movimiento %d total: %w", i, err)
		}
		saldo, err := parseDecimal(w.Saldo)
		if err != nil {
			return nil, fmt.Errorf("backend: movimiento %d saldo: %w", i, err)
		}
		out = append(out, model.MovimientoCuenta{
			Fecha:         strings.TrimSpace(w.Fecha),
			Detalle:       strings.TrimSpace(w.Detalle),
			Total:         total,
			Saldo:         saldo,
			Tipo:          strings.ToUpper(strings.TrimSpace(w.Tipo)),
			CodigoInterno: w.CodigoInterno.String(),
		})
	}
	return out, nil
}

type lineaComprobanteWire struct {
	Cantidad dto.FlexString `json:"cantidad"`
	Unidad   string         `json:"unidad"`
	Producto string         `json:"producto"`
	PUnit    dto.FlexString `json:"punit"`
	Total    dto.FlexString `json:"total"`
}

// DetalleComprobante fetches the item lines of an issued document.
func (c *BackendClient) DetalleComprobante(ctx context.Context, token, codigo string) ([]model.LineaComprobante, error) {
	var wire []lineaComprobanteWire
	path := "/clientes/comprobante/" + url.PathEscape(codigo)
	if err := c.do(ctx, http.MethodGet, path, requestOpts{token: token, out: &wire}); err != nil {
		return nil, err
	}
	out := make([]model.LineaComprobante, 0, len(wire))
	for i, w := range wire {
		var l model.LineaComprobante
		var err error
		if l.Cantidad, err = parseDecimal(w.Cantidad); err != nil {
			return nil, fmt.Errorf("backend: línea %d cantidad: %w", i, err)
		}
		if l.PrecioUnitario, err = parseDecimal(w.PUnit); err != nil {
			return nil, fmt.Errorf("backend: línea %d punit: %w", i, err)
		}
		if l.Total, err = parseDecimal(w.Total); err != nil {
			return nil, fmt.Errorf("backend: línea %d total: %w", i, err)
		}
		l.Unidad = strings.TrimSpace(w.Unidad)
		l.Producto = strings.TrimSpace(w.Producto)
		out = append(out, l)
	}
	return out, nil
}

// PDFComprobante downloads the backend-rendered PDF of an issued document.
func (c *BackendClient) PDFComprobante(ctx context.Context, token, codigo string) ([]byte, error) {
	var pdf []byte
	path := "/comprobantes/" + url.PathEscape(codigo) + "/pdf"
	if err := c.do(ctx, http.MethodGet, path, requestOpts{token: token, raw: &pdf, accept: "application/pdf"}); err != nil {
		return nil, err
	}
	return pdf, nil
}

type zonaWire struct {
	ID   dto.FlexString `json:"idzona"`
	Zona string         `json:"zona"`
}

func (c *BackendClient) ListarZonas(ctx context.Context, token string) ([]model.Zona, error) {
	var wire []zonaWire
	if err := c.do(ctx, http.MethodGet, "/zonas", requestOpts{token: token, out: &wire}); err != nil {
		return nil, err
	}
	out := make([]model.Zona, 0, len(wire))
	for _, w := range wire {
		id, err := strconv.Atoi(w.ID.String())
		if err != nil {
			return nil, fmt.Errorf("backend: zona id %q: %w", w.ID, err)
		}
		out = append(out, model.Zona{ID: id, Nombre: strings.TrimSpace(w.Zona)})
	}
	return out, nil
}

type saldoClienteWire struct {
	ID     dto.FlexString `json:"id"`
	Nombre string         `json:"nombre"`
	Saldo  dto.FlexString `json:"saldo"`
}

// ClientesPorZona fetches the customers of a zone with their balances.
func (c *BackendClient) ClientesPorZona(ctx context.Context, token string, zonaID int) ([]model.SaldoCliente, error) {
	var wire []saldoClienteWire
	q := url.Values{}
	q.Set("zona_id", strconv.Itoa(zonaID))
	if err := c.do(ctx, http.MethodGet, "/clientes/zona?"+q.Encode(), requestOpts{token: token, out: &wire}); err != nil {
		return nil, err
	}
	out := make([]model.SaldoCliente, 0, len(wire))
	for _, w := range wire {
		saldo, err := parseDecimal(w.Saldo)
		if err != nil {
			return nil, fmt.Errorf("backend: cliente %q saldo: %w", w.ID, err)
		}
		out = append(out, model.SaldoCliente{ID: w.ID.String(), Nombre: strings.TrimSpace(w.Nombre), Saldo: saldo})
	}
	return out, nil
}

// parseDecimal reads a price sent as a number or a string; empty is zero.
func parseDecimal(v dto.FlexString) (decimal.Decimal, error) {
	if v.String() == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(v.String())
}
