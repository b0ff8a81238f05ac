package afip_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domafip "github.com/contableweb/contable-api/internal/domain/afip"
)

func TestSecurityTicket_ExpiredAt(t *testing.T) {
	exp := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	ticket := &domafip.SecurityTicket{
		ServiceID:      "wsfe",
		Token:          "tok",
		Sign:           "sig",
		ExpirationTime: exp,
	}

	assert.False(t, ticket.ExpiredAt(exp.Add(-time.Second)), "antes del vencimiento debe estar vigente")
	assert.True(t, ticket.ExpiredAt(exp), "en el instante exacto del vencimiento ya NO está vigente")
	assert.True(t, ticket.ExpiredAt(exp.Add(time.Second)), "después del vencimiento debe estar vencido")
}

func TestSecurityTicket_TimeToExpiry(t *testing.T) {
	ticket := &domafip.SecurityTicket{
		ExpirationTime: time.Now().Add(10 * time.Hour),
	}
	restante := ticket.TimeToExpiry()
	assert.Greater(t, restante, 9*time.Hour)
	assert.LessOrEqual(t, restante, 10*time.Hour)
}

func TestNewAuthRequest(t *testing.T) {
	ticket := &domafip.SecurityTicket{Token: "tok", Sign: "sig"}
	auth := domafip.NewAuthRequest(ticket, 20123456786)
	assert.Equal(t, "tok", auth.Token)
	assert.Equal(t, "sig", auth.Sign)
	assert.Equal(t, int64(20123456786), auth.CUIT)
}
