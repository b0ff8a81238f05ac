// Package afip define el modelo de dominio de la integración AFIP:
// el ticket de acceso emitido por WSAA y el request/resultado de
// autorización de comprobantes de WSFEv1.
package afip

import "time"

// SecurityTicket ticket de acceso (TA) emitido por WSAA para un servicio.
// Una vez construido se trata como snapshot inmutable: la cache lo reemplaza
// entero al refrescar, nunca muta campos de un ticket ya publicado.
type SecurityTicket struct {
	ServiceID      string
	Token          string
	Sign           string
	ExpirationTime time.Time // UTC
	ObtainedAt     time.Time // UTC
	RawXML         string    // loginTicketResponse original, para auditoría
}

// ExpiredAt indica si el ticket está expirado en el instante dado.
// La igualdad cuenta como expirado: expiresAt == now ya no sirve.
func (t *SecurityTicket) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpirationTime)
}

// IsExpired indica si el ticket está expirado ahora.
func (t *SecurityTicket) IsExpired() bool {
	return t.ExpiredAt(time.Now().UTC())
}

// TimeToExpiry tiempo restante hasta la expiración (negativo si ya expiró).
func (t *SecurityTicket) TimeToExpiry() time.Duration {
	return time.Until(t.ExpirationTime)
}

// AuthRequest bloque Auth compartido por todas las operaciones de WSFEv1:
// credenciales del ticket vigente más el CUIT del emisor.
type AuthRequest struct {
	Token string
	Sign  string
	CUIT  int64
}

// NewAuthRequest arma el bloque Auth a partir de un ticket vigente.
func NewAuthRequest(t *SecurityTicket, cuitEmisor int64) AuthRequest {
	return AuthRequest{Token: t.Token, Sign: t.Sign, CUIT: cuitEmisor}
}
