package router

import (
	"time"

	"ferrepos/internal/config"
	"ferrepos/internal/handler"
	"ferrepos/internal/infra"
	"ferrepos/internal/middleware"
	"ferrepos/internal/model"
	"ferrepos/internal/repository"
	"ferrepos/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Deps are the infrastructure pieces built by the composition root.
// Redis, Correos and Impresora are optional.
type Deps struct {
	Backend    service.Backend
	Breaker    *infra.CircuitBreaker
	Sesiones   repository.SesionRepository
	Historial  repository.HistorialRepository
	Correos    service.ColaRecibos
	Impresora  infra.Impresora
	Redis      *redis.Client
	Terminales *service.Terminales
}

// Encabezado builds the receipt header from config.
func Encabezado(cfg *config.Config) model.ReciboEncabezado {
	return model.ReciboEncabezado{
		Negocio:   cfg.NegocioNombre,
		RUC:       cfg.NegocioRUC,
		Direccion: cfg.NegocioDireccion,
	}
}

// NewTerminales builds the session workspace registry for d.
func NewTerminales(cfg *config.Config, d Deps) *service.Terminales {
	return service.NewTerminales(service.Dependencias{
		Backend:   d.Backend,
		Historial: d.Historial,
		Correos:   d.Correos,
		Negocio:   Encabezado(cfg),
	}, cfg.Inactividad())
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Backend/Repository ← HTTP/Redis
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Terminales == nil {
		d.Terminales = NewTerminales(cfg, d)
	}
	if d.Impresora == nil {
		d.Impresora = infra.NewImpresora(cfg.PrinterAddress)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Origins()...))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(d.Backend, d.Sesiones, d.Terminales, cfg)
	reciboSvc := service.NewReciboService(Encabezado(cfg), cfg.ReciboAncho, d.Historial, d.Impresora)
	clienteSvc := service.NewClienteService(d.Backend)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	pedidoH := handler.NewPedidoHandler(d.Terminales)
	ventasH := handler.NewVentasHandler(d.Terminales, reciboSvc, clienteSvc)
	cajaH := handler.NewCajaHandler(d.Terminales, reciboSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.Redis, d.Breaker))

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		// Logout only needs a valid token; the session may already be gone.
		auth.POST("/logout", jwtMW, authH.Logout)
	}

	v1 := r.Group("/v1", jwtMW, middleware.SesionLoader(d.Sesiones))

	vendedor := v1.Group("", middleware.RequireRole(model.RolVendedor, model.RolAdmin))
	{
		vendedor.GET("/catalogo", pedidoH.BuscarCatalogo)
		vendedor.POST("/catalogo/recargar", pedidoH.RecargarCatalogo)

		pedido := vendedor.Group("/pedido")
		{
			pedido.GET("", pedidoH.ObtenerPedido)
			pedido.POST("/items", pedidoH.AgregarItem)
			pedido.PATCH("/items/:id/cantidad", pedidoH.CambiarCantidad)
			pedido.PATCH("/items/:id/precio", pedidoH.CambiarPrecio)
			pedido.DELETE("/items/:id", pedidoH.QuitarItem)
			pedido.POST("/confirmacion", pedidoH.AbrirConfirmacion)
			pedido.DELETE("/confirmacion", pedidoH.CancelarConfirmacion)
			pedido.PUT("/comprobante", pedidoH.SeleccionarComprobante)
			pedido.GET("/clientes", pedidoH.BuscarCliente)
			pedido.PUT("/cliente", pedidoH.SeleccionarCliente)
			pedido.DELETE("/cliente", pedidoH.LimpiarCliente)
			pedido.PUT("/cliente-libre", pedidoH.IngresarClienteLibre)
			pedido.POST("/envio", pedidoH.Enviar)
		}

		vendedor.GET("/ventas/hoy", ventasH.VentasDelDia)
		vendedor.GET("/ventas/hoy/:id/recibo", ventasH.ReciboVenta)
		vendedor.POST("/clientes", ventasH.RegistrarCliente)
		vendedor.GET("/clientes/:id/estado-cuenta", ventasH.EstadoCuenta)
		vendedor.GET("/comprobantes/:codigo/detalle", ventasH.DetalleComprobante)
		vendedor.GET("/comprobantes/:codigo/pdf", ventasH.PDFComprobante)
		vendedor.GET("/zonas", ventasH.Zonas)
		vendedor.GET("/zonas/:id/clientes", ventasH.ClientesPorZona)
	}

	caja := v1.Group("/caja", middleware.RequireRole(model.RolCaja, model.RolAdmin))
	{
		caja.GET("/pendientes", cajaH.ListarPendientes)
		caja.GET("/pendientes/buscar", cajaH.BuscarPendiente)
		caja.PUT("/pendientes/:id/cancelar", cajaH.CancelarPendiente)
		caja.POST("/seleccion/:numero", cajaH.SeleccionarPendiente)
		caja.POST("/recibo", cajaH.Recibo)
	}

	admin := v1.Group("/admin", middleware.RequireRole(model.RolAdmin))
	{
		admin.GET("/correos/fallidos", handler.CorreosFallidos(d.Redis))
	}

	// Swagger UI only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
