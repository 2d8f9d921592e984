package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de revisión de una factura escaneada.
const (
	EstadoPendiente  = "pendiente"  // subida, sin validar
	EstadoProcesando = "procesando" // extracción OCR y primera validación en curso
	EstadoRevision   = "revision"   // veredicto con advertencias, o con errores corregibles
	EstadoValidado   = "validado"   // veredicto limpio o aprobación explícita
	EstadoError      = "error"      // inválida e irrecuperable (ej. sin NCF)
)

// Factura representa un comprobante fiscal NCF escaneado por un cliente.
// Los campos monetarios son DECIMAL en la base; el veredicto de la última
// validación se persiste en NotasRevision como JSON (pista de auditoría).
type Factura struct {
	ID        string
	UsuarioID string

	// Identificación del comprobante
	NCF            string
	TipoNCF        string
	NCFVencimiento string // YYYY-MM-DD, vacío si el OCR no lo extrajo
	FechaEmision   string // YYYY-MM-DD, vacío si el OCR no lo extrajo

	// Partes
	EmisorRNC      string
	EmisorNombre   string
	ReceptorRNC    string
	ReceptorNombre string

	// Montos
	MontoServicios decimal.Decimal
	MontoBienes    decimal.Decimal
	Descuento      decimal.Decimal

	// Impuestos
	ITBISFacturado decimal.Decimal
	ITBISRetenido  decimal.Decimal
	ITBISExento    decimal.Decimal
	ISCMonto       decimal.Decimal
	PropinaLegal   decimal.Decimal
	OtrosImpuestos decimal.Decimal

	// Retención ISR
	RetencionISRTipo  int
	RetencionISRMonto decimal.Decimal

	TotalFactura decimal.Decimal

	// Ciclo de revisión
	Estado        string
	NotasRevision string // JSON del último veredicto de validación
	ImagenURL     string // imagen original del comprobante, si se subió

	// Version se incrementa en cada escritura; las actualizaciones comparan
	// y fallan con ErrConflict si otro escritor ganó (concurrencia optimista).
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EnRevision indica si la factura admite corrección de campos por el usuario.
func (f *Factura) EnRevision() bool {
	return f.Estado == EstadoRevision || f.Estado == EstadoError
}
