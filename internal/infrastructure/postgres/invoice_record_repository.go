package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contableweb/contable-api/internal/domain/entity"
	"github.com/contableweb/contable-api/internal/domain/repository"
)

var _ repository.InvoiceRecordRepository = (*InvoiceRecordRepo)(nil)

// InvoiceRecordRepo implementa InvoiceRecordRepository sobre PostgreSQL.
type InvoiceRecordRepo struct {
	pool *pgxpool.Pool
}

// NewInvoiceRecordRepository construye el repositorio.
func NewInvoiceRecordRepository(pool *pgxpool.Pool) *InvoiceRecordRepo {
	return &InvoiceRecordRepo{pool: pool}
}

func (r *InvoiceRecordRepo) Create(ctx context.Context, rec *entity.InvoiceRecord) error {
	const q = `
		INSERT INTO invoice_records
			(id, cuit_emisor, pto_vta, cbte_tipo, cbte_nro, cbte_fch,
			 doc_tipo, doc_nro, imp_total, resultado, cae, cae_fch_vto, detalle, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())`
	_, err := r.pool.Exec(ctx, q,
		rec.ID, rec.CuitEmisor, rec.PtoVta, rec.CbteTipo, rec.CbteNro, rec.CbteFch,
		rec.DocTipo, rec.DocNro, rec.ImpTotal, rec.Resultado, rec.CAE, rec.CAEFchVto, rec.Detalle,
	)
	if err != nil {
		return fmt.Errorf("insert invoice_record: %w", err)
	}
	return nil
}

func (r *InvoiceRecordRepo) GetByComprobante(ctx context.Context, cuitEmisor int64, ptoVta, cbteTipo int, cbteNro int64) (*entity.InvoiceRecord, error) {
	const q = `
		SELECT id, cuit_emisor, pto_vta, cbte_tipo, cbte_nro, cbte_fch,
		       doc_tipo, doc_nro, imp_total, resultado, cae, cae_fch_vto, detalle, created_at
		FROM invoice_records
		WHERE cuit_emisor = $1 AND pto_vta = $2 AND cbte_tipo = $3 AND cbte_nro = $4
		ORDER BY created_at DESC
		LIMIT 1`
	rec, err := scanInvoiceRecord(r.pool.QueryRow(ctx, q, cuitEmisor, ptoVta, cbteTipo, cbteNro))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice_record: %w", err)
	}
	return rec, nil
}

func (r *InvoiceRecordRepo) ListRecent(ctx context.Context, cuitEmisor int64, limit int) ([]*entity.InvoiceRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
		SELECT id, cuit_emisor, pto_vta, cbte_tipo, cbte_nro, cbte_fch,
		       doc_tipo, doc_nro, imp_total, resultado, cae, cae_fch_vto, detalle, created_at
		FROM invoice_records
		WHERE cuit_emisor = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, q, cuitEmisor, limit)
	if err != nil {
		return nil, fmt.Errorf("list invoice_records: %w", err)
	}
	defer rows.Close()

	var out []*entity.InvoiceRecord
	for rows.Next() {
		rec, err := scanInvoiceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice_record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type pgxScanner interface {
	Scan(dest ...any) error
}

func scanInvoiceRecord(row pgxScanner) (*entity.InvoiceRecord, error) {
	rec := &entity.InvoiceRecord{}
	err := row.Scan(
		&rec.ID, &rec.CuitEmisor, &rec.PtoVta, &rec.CbteTipo, &rec.CbteNro, &rec.CbteFch,
		&rec.DocTipo, &rec.DocNro, &rec.ImpTotal, &rec.Resultado, &rec.CAE, &rec.CAEFchVto,
		&rec.Detalle, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
