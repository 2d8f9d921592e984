package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain/entity"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain/repository"
)

var _ repository.FacturaRepository = (*FacturaRepo)(nil)

const facturaColumns = `
	id, usuario_id, ncf, tipo_ncf, ncf_vencimiento, fecha_emision,
	emisor_rnc, emisor_nombre, receptor_rnc, receptor_nombre,
	monto_servicios, monto_bienes, descuento,
	itbis_facturado, itbis_retenido, itbis_exento, isc_monto, propina_legal, otros_impuestos,
	retencion_isr_tipo, retencion_isr_monto, total_factura,
	estado, notas_revision, imagen_url, version, created_at, updated_at`

// FacturaRepo implementación de FacturaRepository (usable con pool o tx).
type FacturaRepo struct {
	q Querier
}

// NewFacturaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFacturaRepository(q Querier) *FacturaRepo {
	return &FacturaRepo{q: q}
}

// Create persiste una factura nueva con version 0.
func (r *FacturaRepo) Create(f *entity.Factura) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	f.Version = 0
	query := `
		INSERT INTO facturas (` + facturaColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)`
	_, err := r.q.Exec(context.Background(), query,
		f.ID, f.UsuarioID,
		nullIfEmpty(f.NCF), nullIfEmpty(f.TipoNCF), nullIfEmpty(f.NCFVencimiento), nullIfEmpty(f.FechaEmision),
		nullIfEmpty(f.EmisorRNC), nullIfEmpty(f.EmisorNombre), nullIfEmpty(f.ReceptorRNC), nullIfEmpty(f.ReceptorNombre),
		f.MontoServicios, f.MontoBienes, f.Descuento,
		f.ITBISFacturado, f.ITBISRetenido, f.ITBISExento, f.ISCMonto, f.PropinaLegal, f.OtrosImpuestos,
		f.RetencionISRTipo, f.RetencionISRMonto, f.TotalFactura,
		f.Estado, nullIfEmpty(f.NotasRevision), nullIfEmpty(f.ImagenURL), f.Version,
		f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert factura: %w", err)
	}
	return nil
}

// GetByID obtiene una factura por ID; nil si no existe.
func (r *FacturaRepo) GetByID(id string) (*entity.Factura, error) {
	query := `SELECT ` + facturaColumns + ` FROM facturas WHERE id = $1`
	f, err := scanFactura(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get factura: %w", err)
	}
	return f, nil
}

// ListByUsuario lista facturas del usuario con filtros y paginación.
func (r *FacturaRepo) ListByUsuario(usuarioID string, filtro repository.FiltroFacturas) ([]*entity.Factura, error) {
	query := `SELECT ` + facturaColumns + ` FROM facturas WHERE usuario_id = $1`
	args := []any{usuarioID}
	if filtro.Estado != "" {
		args = append(args, filtro.Estado)
		query += fmt.Sprintf(" AND estado = $%d", len(args))
	}
	if !filtro.Desde.IsZero() {
		args = append(args, filtro.Desde)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !filtro.Hasta.IsZero() {
		args = append(args, filtro.Hasta)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if filtro.Limit > 0 {
		args = append(args, filtro.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filtro.Offset > 0 {
		args = append(args, filtro.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list facturas: %w", err)
	}
	defer rows.Close()
	var list []*entity.Factura
	for rows.Next() {
		f, err := scanFactura(rows)
		if err != nil {
			return nil, fmt.Errorf("scan factura: %w", err)
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

// Update reemplaza campos, estado y notas condicionado a la versión leída
// (concurrencia optimista). Con 0 filas afectadas devuelve ErrConflict; en
// éxito incrementa f.Version para que el caller devuelva la versión nueva.
func (r *FacturaRepo) Update(f *entity.Factura) error {
	query := `
		UPDATE facturas
		SET ncf = $3, tipo_ncf = $4, ncf_vencimiento = $5, fecha_emision = $6,
		    emisor_rnc = $7, emisor_nombre = $8, receptor_rnc = $9, receptor_nombre = $10,
		    monto_servicios = $11, monto_bienes = $12, descuento = $13,
		    itbis_facturado = $14, itbis_retenido = $15, itbis_exento = $16,
		    isc_monto = $17, propina_legal = $18, otros_impuestos = $19,
		    retencion_isr_tipo = $20, retencion_isr_monto = $21, total_factura = $22,
		    estado = $23, notas_revision = $24, imagen_url = $25,
		    version = version + 1, updated_at = $26
		WHERE id = $1 AND version = $2`
	tag, err := r.q.Exec(context.Background(), query,
		f.ID, f.Version,
		nullIfEmpty(f.NCF), nullIfEmpty(f.TipoNCF), nullIfEmpty(f.NCFVencimiento), nullIfEmpty(f.FechaEmision),
		nullIfEmpty(f.EmisorRNC), nullIfEmpty(f.EmisorNombre), nullIfEmpty(f.ReceptorRNC), nullIfEmpty(f.ReceptorNombre),
		f.MontoServicios, f.MontoBienes, f.Descuento,
		f.ITBISFacturado, f.ITBISRetenido, f.ITBISExento,
		f.ISCMonto, f.PropinaLegal, f.OtrosImpuestos,
		f.RetencionISRTipo, f.RetencionISRMonto, f.TotalFactura,
		f.Estado, nullIfEmpty(f.NotasRevision), nullIfEmpty(f.ImagenURL),
		f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update factura: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	f.Version++
	return nil
}

// Delete elimina una factura por ID.
func (r *FacturaRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM facturas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete factura: %w", err)
	}
	return nil
}

// Resumen agrega conteos por estado y sumas de ITBIS/total del período.
// Las sumas cubren solo facturas validadas (las demás aún no son confiables).
func (r *FacturaRepo) Resumen(ctx context.Context, usuarioID string, desde, hasta time.Time) (*repository.ResumenFacturas, error) {
	res := &repository.ResumenFacturas{PorEstado: make(map[string]int)}

	query := `
		SELECT estado, COUNT(*),
		       COALESCE(SUM(itbis_facturado) FILTER (WHERE estado = 'validado'), 0),
		       COALESCE(SUM(total_factura)   FILTER (WHERE estado = 'validado'), 0),
		       MAX(updated_at)
		FROM facturas
		WHERE usuario_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY estado`
	rows, err := r.q.Query(ctx, query, usuarioID, desde, hasta)
	if err != nil {
		return nil, fmt.Errorf("resumen facturas: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var estado string
		var cuenta int
		var itbis, total decimal.Decimal
		var ultima time.Time
		if err := rows.Scan(&estado, &cuenta, &itbis, &total, &ultima); err != nil {
			return nil, fmt.Errorf("scan resumen: %w", err)
		}
		res.Total += cuenta
		res.PorEstado[estado] = cuenta
		res.ITBISTotal = res.ITBISTotal.Add(itbis)
		res.MontoTotal = res.MontoTotal.Add(total)
		if ultima.After(res.UltimaActividad) {
			res.UltimaActividad = ultima
		}
	}
	return res, rows.Err()
}

type pgxScanner interface {
	Scan(dest ...any) error
}

func scanFactura(row pgxScanner) (*entity.Factura, error) {
	var f entity.Factura
	var ncf, tipoNCF, vencimiento, emision *string
	var emisorRNC, emisorNombre, receptorRNC, receptorNombre *string
	var notas, imagen *string
	err := row.Scan(
		&f.ID, &f.UsuarioID, &ncf, &tipoNCF, &vencimiento, &emision,
		&emisorRNC, &emisorNombre, &receptorRNC, &receptorNombre,
		&f.MontoServicios, &f.MontoBienes, &f.Descuento,
		&f.ITBISFacturado, &f.ITBISRetenido, &f.ITBISExento, &f.ISCMonto, &f.PropinaLegal, &f.OtrosImpuestos,
		&f.RetencionISRTipo, &f.RetencionISRMonto, &f.TotalFactura,
		&f.Estado, &notas, &imagen, &f.Version, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.NCF = derefStr(ncf)
	f.TipoNCF = derefStr(tipoNCF)
	f.NCFVencimiento = derefStr(vencimiento)
	f.FechaEmision = derefStr(emision)
	f.EmisorRNC = derefStr(emisorRNC)
	f.EmisorNombre = derefStr(emisorNombre)
	f.ReceptorRNC = derefStr(receptorRNC)
	f.ReceptorNombre = derefStr(receptorNombre)
	f.NotasRevision = derefStr(notas)
	f.ImagenURL = derefStr(imagen)
	return &f, nil
}

func derefStr(p *string) string {
	if p != nil {
		return *p
	}
	return ""
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
