package router

import (
	"time"

	"kairo/internal/broker"
	"kairo/internal/config"
	"kairo/internal/handler"
	"kairo/internal/infra"
	"kairo/internal/ledger"
	"kairo/internal/middleware"
	"kairo/internal/repository"
	"kairo/internal/service"
	"kairo/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-wide resources built in main. Every field except DB
// may be nil: Redis disables the cache, queue and tenant limiter; Events
// falls back to a no-op publisher; Cotizaciones hides the breaker in /health.
type Deps struct {
	DB           *gorm.DB
	RDB          *redis.Client
	Metrics      *infra.Metrics
	Events       broker.Publisher
	Dispatcher   *worker.Dispatcher
	Cotizaciones *infra.CotizacionesClient
}

// Services is the service layer shared by the HTTP API and the crons.
type Services struct {
	Monedas      service.MonedaService
	Contrapartes service.ContraparteService
	Cuentas      service.CuentaService
	MonedaRepo   repository.MonedaRepository
}

// NewServices wires Service ← Repository ← DB/Redis.
func NewServices(cfg *config.Config, deps Deps) Services {
	monedaRepo := repository.NewMonedaRepository(deps.DB)
	contraparteRepo := repository.NewContraparteRepository(deps.DB)
	cuentaRepo := repository.NewCuentaRepository(deps.DB)

	monedaSvc := service.NewMonedaService(monedaRepo, deps.RDB, cfg.MonedasCacheTTL, deps.Metrics)

	var recordatorios service.RecordatorioQueue
	if deps.Dispatcher != nil {
		recordatorios = deps.Dispatcher
	}
	cuentaSvc := service.NewCuentaService(cuentaRepo, contraparteRepo, monedaSvc, recordatorios, deps.Events, deps.Metrics,
		service.CuentaConfig{
			Sobrepago: ledger.OverpaymentPolicy(cfg.PoliticaSobrepago),
			Antiguedad: ledger.AgingPolicy{
				Bajo:    cfg.BandaRiesgoBajo,
				Medio:   cfg.BandaRiesgoMedio,
				Elevado: cfg.BandaRiesgoElevado,
			},
		})

	return Services{
		Monedas:      monedaSvc,
		Contrapartes: service.NewContraparteService(contraparteRepo),
		Cuentas:      cuentaSvc,
		MonedaRepo:   monedaRepo,
	}
}

// New returns the configured Gin engine.
func New(cfg *config.Config, deps Deps, svcs Services) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	monedasH := handler.NewMonedasHandler(svcs.Monedas)
	contrapartesH := handler.NewContrapartesHandler(svcs.Contrapartes)
	cuentasH := handler.NewCuentasHandler(svcs.Cuentas)

	// ── Public ───────────────────────────────────────────────────────────────
	var breaker func() string
	if deps.Cotizaciones != nil {
		breaker = deps.Cotizaciones.Estado
	}
	r.GET("/health", handler.Health(deps.DB, deps.RDB, breaker))
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// ── Protected ────────────────────────────────────────────────────────────
	v1 := r.Group("/v1",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.TenantRateLimiter(deps.RDB, 1000, time.Minute), // per tenant
	)
	Register(v1, monedasH, contrapartesH, cuentasH)

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

// Register mounts the /v1 routes on an authenticated group. Roles: any
// authenticated user reads; supervisor and administrador issue, reverse and
// void; administrador manages the registries.
func Register(v1 *gin.RouterGroup, monedasH *handler.MonedasHandler, contrapartesH *handler.ContrapartesHandler, cuentasH *handler.CuentasHandler) {
	admin := middleware.RequireRole(middleware.RolAdministrador)
	supervisor := middleware.RequireRole(middleware.RolSupervisor, middleware.RolAdministrador)

	monedas := v1.Group("/monedas")
	{
		monedas.GET("", monedasH.Listar)
		monedas.POST("/convertir", monedasH.Convertir)
		monedas.POST("", admin, monedasH.Crear)
		monedas.PUT("/:id", admin, monedasH.Actualizar)
		monedas.DELETE("/:id", admin, monedasH.Desactivar)
	}

	contrapartes := v1.Group("/contrapartes")
	{
		contrapartes.GET("", contrapartesH.Listar)
		contrapartes.GET("/:id", contrapartesH.ObtenerPorID)
		contrapartes.POST("", admin, contrapartesH.Crear)
		contrapartes.DELETE("/:id", admin, contrapartesH.Eliminar)
	}

	cuentas := v1.Group("/cuentas")
	{
		// static paths before /:id
		cuentas.GET("/antiguedad", cuentasH.Antiguedad)
		cuentas.GET("/resumen", cuentasH.Resumen)

		cuentas.GET("", cuentasH.Listar)
		cuentas.POST("", supervisor, cuentasH.Crear)
		cuentas.GET("/:id", cuentasH.ObtenerPorID)
		cuentas.POST("/:id/abonos", cuentasH.AplicarAbono)
		cuentas.DELETE("/:id/abonos/:abono_id", supervisor, cuentasH.RevertirAbono)
		cuentas.POST("/:id/anular", supervisor, cuentasH.Anular)
	}
}
