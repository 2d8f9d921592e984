package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain/validacion"
)

// CamposFactura bolsa de campos fiscales extraídos/editables de un comprobante.
// Los montos ausentes llegan como cero; las cadenas no numéricas se rechazan en
// el binding de Fiber antes de llegar al use case.
type CamposFactura struct {
	NCF            string `json:"ncf" validate:"omitempty,max=13"`
	TipoNCF        string `json:"tipo_ncf" validate:"omitempty,max=3"`
	NCFVencimiento string `json:"ncf_vencimiento" validate:"omitempty,max=10"`
	FechaEmision   string `json:"fecha_emision" validate:"omitempty,max=10"`

	EmisorRNC      string `json:"emisor_rnc" validate:"omitempty,max=11"`
	EmisorNombre   string `json:"emisor_nombre" validate:"omitempty,max=200"`
	ReceptorRNC    string `json:"receptor_rnc" validate:"omitempty,max=11"`
	ReceptorNombre string `json:"receptor_nombre" validate:"omitempty,max=200"`

	MontoServicios decimal.Decimal `json:"monto_servicios"`
	MontoBienes    decimal.Decimal `json:"monto_bienes"`
	Descuento      decimal.Decimal `json:"descuento"`

	ITBISFacturado decimal.Decimal `json:"itbis_facturado"`
	ITBISRetenido  decimal.Decimal `json:"itbis_retenido"`
	ITBISExento    decimal.Decimal `json:"itbis_exento"`
	ISCMonto       decimal.Decimal `json:"isc_monto"`
	PropinaLegal   decimal.Decimal `json:"propina_legal"`
	OtrosImpuestos decimal.Decimal `json:"otros_impuestos"`

	RetencionISRTipo  int             `json:"retencion_isr_tipo" validate:"omitempty,min=0,max=8"`
	RetencionISRMonto decimal.Decimal `json:"retencion_isr_monto"`

	TotalFactura decimal.Decimal `json:"total_factura"`
}

// CrearFacturaRequest entrada para registrar una factura escaneada.
type CrearFacturaRequest struct {
	CamposFactura
	ImagenURL string `json:"imagen_url" validate:"omitempty,url,max=500"`
}

// ActualizarFacturaRequest entrada para corregir-y-guardar. Version debe ser
// la versión leída por el cliente; si la factura cambió desde entonces la
// actualización falla con 409.
type ActualizarFacturaRequest struct {
	CamposFactura
	Version int `json:"version" validate:"min=0"`
}

// ValidarFacturaRequest entrada del endpoint de validación pura (sin persistir).
type ValidarFacturaRequest struct {
	CamposFactura
}

// FacturaResponse salida de una factura con su último veredicto.
type FacturaResponse struct {
	ID        string `json:"id"`
	UsuarioID string `json:"usuario_id"`
	Estado    string `json:"estado"`
	CamposFactura
	Veredicto *validacion.Veredicto `json:"veredicto,omitempty"`
	ImagenURL string                `json:"imagen_url,omitempty"`
	Version   int                   `json:"version"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// ListarFacturasRequest filtros del listado.
type ListarFacturasRequest struct {
	PageRequest
	Estado string `query:"estado" validate:"omitempty,oneof=pendiente procesando revision validado error"`
	Desde  string `query:"desde" validate:"omitempty,datetime=2006-01-02"`
	Hasta  string `query:"hasta" validate:"omitempty,datetime=2006-01-02"`
}

// FacturaListResponse página de facturas.
type FacturaListResponse struct {
	Items []FacturaResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ResumenFacturasResponse agregado del período para el dashboard del cliente.
type ResumenFacturasResponse struct {
	Total           int             `json:"total"`
	PorEstado       map[string]int  `json:"por_estado"`
	ITBISTotal      decimal.Decimal `json:"itbis_total"`
	MontoTotal      decimal.Decimal `json:"monto_total"`
	UltimaActividad *time.Time      `json:"ultima_actividad,omitempty"`
}
