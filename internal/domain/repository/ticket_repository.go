package repository

import (
	"context"

	domafip "github.com/contableweb/contable-api/internal/domain/afip"
)

// TicketRepository define el puerto de persistencia para tickets de acceso WSAA.
// La base actúa como respaldo del caché en memoria: tras un reinicio (o tras un
// fault "ya autenticado" de AFIP) el ticket vigente se recupera de acá en lugar
// de pedir uno nuevo.
type TicketRepository interface {
	// Save inserta o reemplaza el ticket del servicio. Un servicio tiene a lo
	// sumo un ticket persistido; guardar uno nuevo pisa el anterior.
	Save(ctx context.Context, t *domafip.SecurityTicket) error

	// GetValid devuelve el ticket no expirado del servicio, o nil si no hay
	// ninguno vigente. Ausencia no es error.
	GetValid(ctx context.Context, serviceID string) (*domafip.SecurityTicket, error)

	// DeleteExpired barre los tickets ya vencidos y devuelve cuántos borró.
	DeleteExpired(ctx context.Context) (int64, error)

	Delete(ctx context.Context, serviceID string) error
}
