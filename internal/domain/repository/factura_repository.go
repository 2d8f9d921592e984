package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain/entity"
)

// FiltroFacturas filtros de listado. Los campos en cero no restringen.
type FiltroFacturas struct {
	Estado string
	Desde  time.Time
	Hasta  time.Time
	Limit  int
	Offset int
}

// ResumenFacturas resultado crudo del agregado por estado (lo produce la DB;
// el use case lo convierte en DTO).
type ResumenFacturas struct {
	Total           int
	PorEstado       map[string]int
	ITBISTotal      decimal.Decimal // suma de ITBIS facturado de facturas validadas
	MontoTotal      decimal.Decimal // suma de totales de facturas validadas
	UltimaActividad time.Time
}

// FacturaRepository define el puerto de persistencia para Factura (DIP).
type FacturaRepository interface {
	Create(factura *entity.Factura) error
	GetByID(id string) (*entity.Factura, error)
	ListByUsuario(usuarioID string, filtro FiltroFacturas) ([]*entity.Factura, error)
	// Update reemplaza campos fiscales, estado y notas de revisión en una sola
	// escritura, condicionada a que la versión persistida siga siendo
	// factura.Version; devuelve domain.ErrConflict si otro escritor ganó.
	// En éxito incrementa factura.Version.
	Update(factura *entity.Factura) error
	Delete(id string) error

	// Resumen agrega conteos por estado y sumas de ITBIS/total para el usuario.
	Resumen(ctx context.Context, usuarioID string, desde, hasta time.Time) (*ResumenFacturas, error)
}
