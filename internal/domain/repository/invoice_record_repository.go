package repository

import (
	"context"

	"github.com/contableweb/contable-api/internal/domain/entity"
)

// InvoiceRecordRepository define el puerto de persistencia para el registro
// de auditoría de autorizaciones.
type InvoiceRecordRepository interface {
	Create(ctx context.Context, rec *entity.InvoiceRecord) error

	// GetByComprobante busca el registro de un comprobante puntual.
	GetByComprobante(ctx context.Context, cuitEmisor int64, ptoVta, cbteTipo int, cbteNro int64) (*entity.InvoiceRecord, error)

	// ListRecent lista los últimos intentos del emisor, más reciente primero.
	ListRecent(ctx context.Context, cuitEmisor int64, limit int) ([]*entity.InvoiceRecord, error)
}
