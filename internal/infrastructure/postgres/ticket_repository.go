package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domafip "github.com/contableweb/contable-api/internal/domain/afip"
	"github.com/contableweb/contable-api/internal/domain/repository"
)

var _ repository.TicketRepository = (*TicketRepo)(nil)

// TicketRepo implementa TicketRepository sobre PostgreSQL. La tabla afip_tokens
// tiene a lo sumo una fila por servicio; Save pisa la anterior.
type TicketRepo struct {
	pool *pgxpool.Pool
}

// NewTicketRepository construye el repositorio.
func NewTicketRepository(pool *pgxpool.Pool) *TicketRepo {
	return &TicketRepo{pool: pool}
}

func (r *TicketRepo) Save(ctx context.Context, t *domafip.SecurityTicket) error {
	const q = `
		INSERT INTO afip_tokens
			(service_id, token, sign, expiration_time, obtained_at, raw_xml, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (service_id) DO UPDATE SET
			token           = EXCLUDED.token,
			sign            = EXCLUDED.sign,
			expiration_time = EXCLUDED.expiration_time,
			obtained_at     = EXCLUDED.obtained_at,
			raw_xml         = EXCLUDED.raw_xml,
			updated_at      = now()`
	_, err := r.pool.Exec(ctx, q,
		t.ServiceID, t.Token, t.Sign, t.ExpirationTime, t.ObtainedAt, t.RawXML,
	)
	if err != nil {
		return fmt.Errorf("upsert afip_token: %w", err)
	}
	return nil
}

// GetValid devuelve el ticket vigente del servicio, o nil si no hay.
// El filtro de vencimiento se hace contra el reloj de la base; el caller
// igual revalida contra su propio reloj antes de usarlo.
func (r *TicketRepo) GetValid(ctx context.Context, serviceID string) (*domafip.SecurityTicket, error) {
	const q = `
		SELECT service_id, token, sign, expiration_time, obtained_at, raw_xml
		FROM afip_tokens
		WHERE service_id = $1
		  AND expiration_time > now()`
	t := &domafip.SecurityTicket{}
	err := r.pool.QueryRow(ctx, q, serviceID).Scan(
		&t.ServiceID, &t.Token, &t.Sign, &t.ExpirationTime, &t.ObtainedAt, &t.RawXML,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get afip_token: %w", err)
	}
	return t, nil
}

func (r *TicketRepo) DeleteExpired(ctx context.Context) (int64, error) {
	const q = `DELETE FROM afip_tokens WHERE expiration_time <= now()`
	tag, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("delete afip_tokens vencidos: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *TicketRepo) Delete(ctx context.Context, serviceID string) error {
	const q = `DELETE FROM afip_tokens WHERE service_id = $1`
	if _, err := r.pool.Exec(ctx, q, serviceID); err != nil {
		return fmt.Errorf("delete afip_token: %w", err)
	}
	return nil
}
