package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/CarlosHuyghusrl/facturaia-api/internal/application/auth"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/application/review"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	Review    *review.Coordinator
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Facturas (protegido). Las rutas fijas van antes de /:id.
	facturas := protected.Group("/facturas")
	facturaHandler := NewFacturaHandler(deps.Review)
	facturas.Post("/validar", facturaHandler.Validar)
	facturas.Post("/escanear", facturaHandler.Escanear)
	facturas.Get("/resumen", facturaHandler.Resumen)
	facturas.Post("/", facturaHandler.Create)
	facturas.Get("/", facturaHandler.List)
	facturas.Get("/:id", facturaHandler.GetByID)
	facturas.Put("/:id", facturaHandler.Update)
	facturas.Delete("/:id", facturaHandler.Delete)
	facturas.Post("/:id/aprobar", facturaHandler.Aprobar)
	facturas.Get("/:id/pdf", facturaHandler.ConstanciaPDF)
}
