package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceRecord es el registro de auditoría de cada intento de autorización
// ante AFIP. Se persiste tanto el éxito como el rechazo: un rechazo es
// terminal y la fila queda como evidencia de qué se envió y qué respondió
// el servicio.
type InvoiceRecord struct {
	ID         string
	CuitEmisor int64
	PtoVta     int
	CbteTipo   int
	CbteNro    int64
	CbteFch    string // yyyyMMdd tal como viajó en el wire
	DocTipo    int
	DocNro     int64
	ImpTotal   decimal.Decimal
	Resultado  string // "A" aprobado, "R" rechazado, "P" parcial
	CAE        string // vacío si fue rechazado
	CAEFchVto  string
	Detalle    string // errores u observaciones devueltos, serializados para lectura
	CreatedAt  time.Time
}
