package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/CarlosHuyghusrl/facturaia-api/internal/application/dto"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/application/review"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain"
)

// FacturaHandler maneja el ciclo de revisión de facturas (protegido).
type FacturaHandler struct {
	uc *review.Coordinator
}

// NewFacturaHandler construye el handler.
func NewFacturaHandler(uc *review.Coordinator) *FacturaHandler {
	return &FacturaHandler{uc: uc}
}

// Validar godoc
// @Summary      Validar campos fiscales sin persistir
// @Tags         facturas
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidarFacturaRequest  true  "campos extraídos del comprobante"
// @Success      200   {object}  validacion.Veredicto
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/facturas/validar [post]
func (h *FacturaHandler) Validar(c *fiber.Ctx) error {
	var in dto.ValidarFacturaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido o montos no numéricos"})
	}
	return c.JSON(h.uc.Validar(in))
}

// Create registra una factura con campos ya extraídos, la valida y deriva el estado.
// POST /api/facturas
func (h *FacturaHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CrearFacturaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido o montos no numéricos"})
	}
	factura, err := h.uc.Registrar(c.Context(), userID, in)
	if err != nil {
		return facturaError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(factura)
}

// Escanear envía la imagen al servicio OCR y registra la factura extraída.
// POST /api/facturas/escanear
func (h *FacturaHandler) Escanear(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in struct {
		ImagenURL string `json:"imagen_url"`
	}
	if err := c.BodyParser(&in); err != nil || in.ImagenURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "imagen_url requerida"})
	}
	factura, err := h.uc.Escanear(c.Context(), userID, in.ImagenURL)
	if err != nil {
		if err == domain.ErrInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "extracción no configurada"})
		}
		// El extractor es un servicio externo: sus fallas son 502, no 500.
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "OCR_FAILED", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(factura)
}

// List lista las facturas del usuario con filtros y paginación.
// GET /api/facturas
func (h *FacturaHandler) List(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ListarFacturasRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "filtros inválidos"})
	}
	out, err := h.uc.List(c.Context(), userID, in)
	if err != nil {
		return facturaError(c, err)
	}
	return c.JSON(out)
}

// Resumen agrega conteos y totales del período (por defecto, el mes en curso).
// GET /api/facturas/resumen?desde=YYYY-MM-DD&hasta=YYYY-MM-DD
func (h *FacturaHandler) Resumen(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	now := time.Now()
	desde := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	hasta := desde.AddDate(0, 1, 0)
	if s := c.Query("desde"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "desde debe ser YYYY-MM-DD"})
		}
		desde = t
	}
	if s := c.Query("hasta"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "hasta debe ser YYYY-MM-DD"})
		}
		hasta = t
	}
	out, err := h.uc.Resumen(c.Context(), userID, desde, hasta)
	if err != nil {
		return facturaError(c, err)
	}
	return c.JSON(out)
}

// GetByID obtiene una factura con su último veredicto.
// GET /api/facturas/:id
func (h *FacturaHandler) GetByID(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	factura, err := h.uc.Get(c.Context(), userID, id)
	if err != nil {
		return facturaError(c, err)
	}
	return c.JSON(factura)
}

// Aprobar godoc
// @Summary      Aprobar una factura
// @Description  Recalcula el veredicto con los campos actuales; solo aprueba si es limpio.
// @Tags         facturas
// @Produce      json
// @Param        id  path  string  true  "ID de la factura"
// @Success      200  {object}  dto.FacturaResponse
// @Failure      412  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/aprobar [post]
func (h *FacturaHandler) Aprobar(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	factura, err := h.uc.Aprobar(c.Context(), userID, c.Params("id"))
	if err != nil {
		return facturaError(c, err)
	}
	return c.JSON(factura)
}

// Update corrige los campos y re-valida (corregir-y-guardar).
// PUT /api/facturas/:id
func (h *FacturaHandler) Update(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ActualizarFacturaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido o montos no numéricos"})
	}
	factura, err := h.uc.CorregirYGuardar(c.Context(), userID, c.Params("id"), in)
	if err != nil {
		return facturaError(c, err)
	}
	return c.JSON(factura)
}

// ConstanciaPDF descarga la constancia de validación en PDF.
// GET /api/facturas/:id/pdf
func (h *FacturaHandler) ConstanciaPDF(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	raw, err := h.uc.ConstanciaPDF(c.Context(), userID, c.Params("id"))
	if err != nil {
		return facturaError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="constancia.pdf"`)
	return c.Send(raw)
}

// Delete elimina una factura del usuario.
// DELETE /api/facturas/:id
func (h *FacturaHandler) Delete(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.Eliminar(c.Context(), userID, c.Params("id")); err != nil {
		return facturaError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// facturaError mapea errores de dominio a códigos HTTP. La aprobación contra
// un veredicto no limpio es 412 para que la app distinga "corrige primero"
// de un conflicto de edición concurrente (409).
func facturaError(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
	case domain.ErrForbidden:
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	case domain.ErrPreconditionFailed:
		return c.Status(fiber.StatusPreconditionFailed).JSON(dto.ErrorResponse{Code: "PRECONDITION_FAILED", Message: "el veredicto vigente no permite aprobar; corrige los campos primero"})
	case domain.ErrConflict:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "la factura fue modificada por otra sesión; recarga e intenta de nuevo"})
	case domain.ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
