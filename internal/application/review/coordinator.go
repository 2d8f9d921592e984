package review

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/CarlosHuyghusrl/facturaia-api/internal/application/dto"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain/entity"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain/repository"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain/validacion"
	"github.com/CarlosHuyghusrl/facturaia-api/pkg/logger"
)

// Coordinator orquesta el ciclo de revisión de facturas: registro, validación,
// corrección y aprobación. El estado de una factura es siempre función del
// último veredicto; nunca se fija a mano por separado.
type Coordinator struct {
	facturaRepo repository.FacturaRepository
	txRunner    TxRunner
	extractor   Extractor
	constancia  GeneradorConstancia
	validador   *validacion.Validador
	log         *logger.Logger
}

// NewCoordinator construye el coordinador. extractor y constancia pueden ser
// nil si la app solo recibe campos ya extraídos o no expone el PDF.
func NewCoordinator(
	facturaRepo repository.FacturaRepository,
	txRunner TxRunner,
	extractor Extractor,
	constancia GeneradorConstancia,
	validador *validacion.Validador,
	log *logger.Logger,
) *Coordinator {
	return &Coordinator{
		facturaRepo: facturaRepo,
		txRunner:    txRunner,
		extractor:   extractor,
		constancia:  constancia,
		validador:   validador,
		log:         log,
	}
}

// Validar corre el motor sobre una bolsa de campos sin persistir nada.
func (c *Coordinator) Validar(in dto.ValidarFacturaRequest) validacion.Veredicto {
	return c.validador.Validar(camposDesdeDTO(in.CamposFactura))
}

// Registrar crea una factura con los campos extraídos, corre la primera
// validación y deriva el estado inicial del veredicto.
func (c *Coordinator) Registrar(ctx context.Context, usuarioID string, in dto.CrearFacturaRequest) (*dto.FacturaResponse, error) {
	if usuarioID == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	f := &entity.Factura{
		ID:        uuid.New().String(),
		UsuarioID: usuarioID,
		Estado:    entity.EstadoProcesando,
		ImagenURL: in.ImagenURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	aplicarCampos(f, in.CamposFactura)

	veredicto := c.validador.Validar(camposDesdeEntidad(f))
	if err := anotarVeredicto(f, veredicto); err != nil {
		return nil, err
	}

	if err := c.facturaRepo.Create(f); err != nil {
		return nil, err
	}
	c.log.Info().
		Str("factura_id", f.ID).
		Str("estado", f.Estado).
		Int("errores", len(veredicto.Errores)).
		Int("advertencias", len(veredicto.Advertencias)).
		Msg("factura registrada y validada")

	return toFacturaResponse(f, &veredicto), nil
}

// Escanear envía la imagen al servicio de extracción y registra la factura con
// los campos devueltos.
func (c *Coordinator) Escanear(ctx context.Context, usuarioID, imagenURL string) (*dto.FacturaResponse, error) {
	if c.extractor == nil {
		return nil, domain.ErrInvalidInput
	}
	campos, err := c.extractor.Extraer(ctx, imagenURL)
	if err != nil {
		c.log.Error().Err(err).Str("imagen", imagenURL).Msg("extracción OCR fallida")
		return nil, err
	}
	return c.Registrar(ctx, usuarioID, dto.CrearFacturaRequest{
		CamposFactura: campos,
		ImagenURL:     imagenURL,
	})
}

// Get devuelve una factura del usuario con su último veredicto persistido.
func (c *Coordinator) Get(ctx context.Context, usuarioID, id string) (*dto.FacturaResponse, error) {
	f, err := c.cargar(usuarioID, id)
	if err != nil {
		return nil, err
	}
	return toFacturaResponse(f, veredictoGuardado(f)), nil
}

// List devuelve una página de facturas del usuario.
func (c *Coordinator) List(ctx context.Context, usuarioID string, in dto.ListarFacturasRequest) (*dto.FacturaListResponse, error) {
	in.DefaultPage()
	filtro := repository.FiltroFacturas{
		Estado: in.Estado,
		Limit:  in.Limit,
		Offset: in.Offset,
	}
	if in.Desde != "" {
		if t, err := time.Parse("2006-01-02", in.Desde); err == nil {
			filtro.Desde = t
		}
	}
	if in.Hasta != "" {
		if t, err := time.Parse("2006-01-02", in.Hasta); err == nil {
			filtro.Hasta = t
		}
	}

	facturas, err := c.facturaRepo.ListByUsuario(usuarioID, filtro)
	if err != nil {
		return nil, err
	}
	items := make([]dto.FacturaResponse, 0, len(facturas))
	for _, f := range facturas {
		items = append(items, *toFacturaResponse(f, veredictoGuardado(f)))
	}
	return &dto.FacturaListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// Resumen agrega conteos por estado y sumas del período para el usuario.
func (c *Coordinator) Resumen(ctx context.Context, usuarioID string, desde, hasta time.Time) (*dto.ResumenFacturasResponse, error) {
	res, err := c.facturaRepo.Resumen(ctx, usuarioID, desde, hasta)
	if err != nil {
		return nil, err
	}
	out := &dto.ResumenFacturasResponse{
		Total:      res.Total,
		PorEstado:  res.PorEstado,
		ITBISTotal: res.ITBISTotal,
		MontoTotal: res.MontoTotal,
	}
	if !res.UltimaActividad.IsZero() {
		t := res.UltimaActividad
		out.UltimaActividad = &t
	}
	return out, nil
}

// Aprobar valida la factura con sus campos actuales y, solo si el veredicto
// vigente es aprobable, la pasa a validado. Nunca usa un veredicto cacheado:
// la validación se recalcula dentro de la misma transacción que escribe el
// estado, así una edición concurrente no puede colarse.
func (c *Coordinator) Aprobar(ctx context.Context, usuarioID, id string) (*dto.FacturaResponse, error) {
	var out *dto.FacturaResponse
	err := c.txRunner.Run(ctx, func(repo repository.FacturaRepository) error {
		f, err := cargarDe(repo, usuarioID, id)
		if err != nil {
			return err
		}

		veredicto := c.validador.Validar(camposDesdeEntidad(f))
		if !veredicto.Aprobable() {
			c.log.Warn().
				Str("factura_id", f.ID).
				Int("errores", len(veredicto.Errores)).
				Int("advertencias", len(veredicto.Advertencias)).
				Msg("aprobación rechazada por veredicto vigente")
			return domain.ErrPreconditionFailed
		}

		f.Estado = entity.EstadoValidado
		f.UpdatedAt = time.Now()
		if err := anotarVeredicto(f, veredicto); err != nil {
			return err
		}
		if err := repo.Update(f); err != nil {
			return err
		}
		out = toFacturaResponse(f, &veredicto)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.log.Info().Str("factura_id", id).Msg("factura aprobada")
	return out, nil
}

// CorregirYGuardar aplica los campos editados, re-valida y deriva el estado
// del veredicto nuevo. Campos, veredicto y estado se escriben como una sola
// unidad; Version protege contra ediciones concurrentes.
func (c *Coordinator) CorregirYGuardar(ctx context.Context, usuarioID, id string, in dto.ActualizarFacturaRequest) (*dto.FacturaResponse, error) {
	var out *dto.FacturaResponse
	err := c.txRunner.Run(ctx, func(repo repository.FacturaRepository) error {
		f, err := cargarDe(repo, usuarioID, id)
		if err != nil {
			return err
		}
		if in.Version != f.Version {
			return domain.ErrConflict
		}

		aplicarCampos(f, in.CamposFactura)
		veredicto := c.validador.Validar(camposDesdeEntidad(f))
		f.Estado = derivarEstado(veredicto)
		f.UpdatedAt = time.Now()
		if err := anotarVeredicto(f, veredicto); err != nil {
			return err
		}
		if err := repo.Update(f); err != nil {
			return err
		}
		out = toFacturaResponse(f, &veredicto)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.log.Info().
		Str("factura_id", id).
		Str("estado", out.Estado).
		Msg("factura corregida y re-validada")
	return out, nil
}

// ConstanciaPDF genera la constancia de validación de una factura del usuario.
func (c *Coordinator) ConstanciaPDF(ctx context.Context, usuarioID, id string) ([]byte, error) {
	if c.constancia == nil {
		return nil, domain.ErrInvalidInput
	}
	f, err := c.cargar(usuarioID, id)
	if err != nil {
		return nil, err
	}
	return c.constancia.GenerarConstancia(ctx, f, veredictoGuardado(f))
}

// Eliminar borra una factura del usuario.
func (c *Coordinator) Eliminar(ctx context.Context, usuarioID, id string) error {
	if _, err := c.cargar(usuarioID, id); err != nil {
		return err
	}
	return c.facturaRepo.Delete(id)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (c *Coordinator) cargar(usuarioID, id string) (*entity.Factura, error) {
	return cargarDe(c.facturaRepo, usuarioID, id)
}

func cargarDe(repo repository.FacturaRepository, usuarioID, id string) (*entity.Factura, error) {
	f, err := repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, domain.ErrNotFound
	}
	if f.UsuarioID != usuarioID {
		return nil, domain.ErrForbidden
	}
	return f, nil
}

// derivarEstado es la función de transición del ciclo de revisión: el estado
// es siempre función del veredicto recién calculado.
func derivarEstado(v validacion.Veredicto) string {
	switch {
	case v.Aprobable():
		return entity.EstadoValidado
	case v.Valido:
		return entity.EstadoRevision
	case v.ErrorEnCampo(validacion.CampoNCF):
		// Sin NCF legible el comprobante no es recuperable como documento fiscal.
		return entity.EstadoError
	default:
		return entity.EstadoRevision
	}
}

// anotarVeredicto persiste el veredicto como JSON en las notas de revisión
// (pista de auditoría de por qué se pidió revisión) y deriva el estado si la
// factura sigue en procesamiento.
func anotarVeredicto(f *entity.Factura, v validacion.Veredicto) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.NotasRevision = string(raw)
	if f.Estado == entity.EstadoProcesando || f.Estado == entity.EstadoPendiente {
		f.Estado = derivarEstado(v)
	}
	return nil
}

// veredictoGuardado deserializa el último veredicto persistido; nil si la
// factura aún no fue validada o las notas no son un veredicto.
func veredictoGuardado(f *entity.Factura) *validacion.Veredicto {
	if f.NotasRevision == "" {
		return nil
	}
	var v validacion.Veredicto
	if err := json.Unmarshal([]byte(f.NotasRevision), &v); err != nil {
		return nil
	}
	return &v
}

func camposDesdeDTO(in dto.CamposFactura) validacion.Campos {
	return validacion.Campos{
		NCF:               in.NCF,
		TipoNCF:           in.TipoNCF,
		NCFVencimiento:    in.NCFVencimiento,
		EmisorRNC:         in.EmisorRNC,
		EmisorNombre:      in.EmisorNombre,
		ReceptorRNC:       in.ReceptorRNC,
		ReceptorNombre:    in.ReceptorNombre,
		MontoServicios:    in.MontoServicios,
		MontoBienes:       in.MontoBienes,
		Descuento:         in.Descuento,
		ITBISFacturado:    in.ITBISFacturado,
		ITBISRetenido:     in.ITBISRetenido,
		ITBISExento:       in.ITBISExento,
		ISCMonto:          in.ISCMonto,
		PropinaLegal:      in.PropinaLegal,
		OtrosImpuestos:    in.OtrosImpuestos,
		RetencionISRTipo:  in.RetencionISRTipo,
		RetencionISRMonto: in.RetencionISRMonto,
		TotalFactura:      in.TotalFactura,
	}
}

func camposDesdeEntidad(f *entity.Factura) validacion.Campos {
	return validacion.Campos{
		NCF:               f.NCF,
		TipoNCF:           f.TipoNCF,
		NCFVencimiento:    f.NCFVencimiento,
		EmisorRNC:         f.EmisorRNC,
		EmisorNombre:      f.EmisorNombre,
		ReceptorRNC:       f.ReceptorRNC,
		ReceptorNombre:    f.ReceptorNombre,
		MontoServicios:    f.MontoServicios,
		MontoBienes:       f.MontoBienes,
		Descuento:         f.Descuento,
		ITBISFacturado:    f.ITBISFacturado,
		ITBISRetenido:     f.ITBISRetenido,
		ITBISExento:       f.ITBISExento,
		ISCMonto:          f.ISCMonto,
		PropinaLegal:      f.PropinaLegal,
		OtrosImpuestos:    f.OtrosImpuestos,
		RetencionISRTipo:  f.RetencionISRTipo,
		RetencionISRMonto: f.RetencionISRMonto,
		TotalFactura:      f.TotalFactura,
	}
}

func aplicarCampos(f *entity.Factura, in dto.CamposFactura) {
	f.NCF = in.NCF
	f.TipoNCF = in.TipoNCF
	f.NCFVencimiento = in.NCFVencimiento
	f.FechaEmision = in.FechaEmision
	f.EmisorRNC = in.EmisorRNC
	f.EmisorNombre = in.EmisorNombre
	f.ReceptorRNC = in.ReceptorRNC
	f.ReceptorNombre = in.ReceptorNombre
	f.MontoServicios = in.MontoServicios
	f.MontoBienes = in.MontoBienes
	f.Descuento = in.Descuento
	f.ITBISFacturado = in.ITBISFacturado
	f.ITBISRetenido = in.ITBISRetenido
	f.ITBISExento = in.ITBISExento
	f.ISCMonto = in.ISCMonto
	f.PropinaLegal = in.PropinaLegal
	f.OtrosImpuestos = in.OtrosImpuestos
	f.RetencionISRTipo = in.RetencionISRTipo
	f.RetencionISRMonto = in.RetencionISRMonto
	f.TotalFactura = in.TotalFactura
}

func toFacturaResponse(f *entity.Factura, v *validacion.Veredicto) *dto.FacturaResponse {
	return &dto.FacturaResponse{
		ID:        f.ID,
		UsuarioID: f.UsuarioID,
		Estado:    f.Estado,
		CamposFactura: dto.CamposFactura{
			NCF:               f.NCF,
			TipoNCF:           f.TipoNCF,
			NCFVencimiento:    f.NCFVencimiento,
			FechaEmision:      f.FechaEmision,
			EmisorRNC:         f.EmisorRNC,
			EmisorNombre:      f.EmisorNombre,
			ReceptorRNC:       f.ReceptorRNC,
			ReceptorNombre:    f.ReceptorNombre,
			MontoServicios:    f.MontoServicios,
			MontoBienes:       f.MontoBienes,
			Descuento:         f.Descuento,
			ITBISFacturado:    f.ITBISFacturado,
			ITBISRetenido:     f.ITBISRetenido,
			ITBISExento:       f.ITBISExento,
			ISCMonto:          f.ISCMonto,
			PropinaLegal:      f.PropinaLegal,
			OtrosImpuestos:    f.OtrosImpuestos,
			RetencionISRTipo:  f.RetencionISRTipo,
			RetencionISRMonto: f.RetencionISRMonto,
			TotalFactura:      f.TotalFactura,
		},
		Veredicto: v,
		ImagenURL: f.ImagenURL,
		Version:   f.Version,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}
