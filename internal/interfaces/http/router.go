package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/contableweb/contable-api/internal/application/auth"
	"github.com/contableweb/contable-api/internal/application/billing"
	"github.com/contableweb/contable-api/internal/application/tokens"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Orchestrator *billing.Orchestrator
	TokenCache   *tokens.Cache
	AuthUseCase  *auth.AuthUseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUseCase)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Facturación electrónica (protegido)
	facturas := protected.Group("/facturas")
	facturacionHandler := NewFacturacionHandler(deps.Orchestrator)
	facturas.Post("/c", facturacionHandler.AutorizarFacturaC)
	facturas.Get("/proximo", facturacionHandler.ProximoNumero)
	facturas.Get("/registros", facturacionHandler.Registros)
	facturas.Get("/registros/:ptoVta/:cbteTipo/:cbteNro", facturacionHandler.Registro)

	// Diagnóstico y catálogos AFIP (protegido)
	afipGroup := protected.Group("/afip")
	afipHandler := NewAFIPHandler(deps.Orchestrator, deps.TokenCache)
	afipGroup.Get("/estado", afipHandler.Estado)
	afipGroup.Get("/ticket", afipHandler.Ticket)
	afipGroup.Get("/tipos-comprobante", afipHandler.TiposComprobante)
	afipGroup.Get("/tipos-documento", afipHandler.TiposDocumento)
	afipGroup.Get("/condiciones-iva", afipHandler.CondicionesIVA)
}
