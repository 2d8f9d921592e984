package review

import (
	"context"

	"github.com/CarlosHuyghusrl/facturaia-api/internal/application/dto"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain/entity"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain/repository"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain/validacion"
)

// TxRunner ejecuta una función con un repositorio de facturas atado a una
// transacción. Leer-validar-escribir dentro de fn es atómico: un veredicto
// viejo nunca autoriza la aprobación de campos editados después.
type TxRunner interface {
	Run(ctx context.Context, fn func(facturaRepo repository.FacturaRepository) error) error
}

// Extractor puerto hacia el servicio externo de extracción OCR/AI. Devuelve la
// bolsa de campos tal como la leyó; el motor de validación la trata como
// entrada no confiable.
type Extractor interface {
	Extraer(ctx context.Context, imagenURL string) (dto.CamposFactura, error)
}

// GeneradorConstancia puerto hacia el generador de la constancia PDF.
type GeneradorConstancia interface {
	GenerarConstancia(ctx context.Context, factura *entity.Factura, veredicto *validacion.Veredicto) ([]byte, error)
}
