package wsaa

import (
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgafip "github.com/contableweb/contable-api/pkg/afip"
)

func TestBuildLoginTicketRequest(t *testing.T) {
	now := time.Date(2026, 8, 31, 14, 30, 45, 0, time.Local)

	xmlStr, err := BuildLoginTicketRequest("wsfe", now, 20*time.Minute)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(xmlStr))

	root := doc.Root()
	require.Equal(t, "loginTicketRequest", root.Tag)
	assert.Equal(t, "1.0", root.SelectAttrValue("version", ""))

	header := root.SelectElement("header")
	require.NotNil(t, header)
	assert.Equal(t, "260831143045", header.SelectElement("uniqueId").Text(),
		"uniqueId debe ser yymmddhhmmss del instante de generación")
	assert.Equal(t, "2026-08-31T14:30:45", header.SelectElement("generationTime").Text())
	assert.Equal(t, "2026-08-31T14:50:45", header.SelectElement("expirationTime").Text(),
		"la ventana de validez debe ser exactamente la pedida")

	assert.Equal(t, "wsfe", root.SelectElement("service").Text())
}

func TestBuildLoginTicketRequest_Compacto(t *testing.T) {
	xmlStr, err := BuildLoginTicketRequest("wsfe", time.Now(), time.Minute)
	require.NoError(t, err)
	// El TRA se firma tal cual: sin indentación ni saltos de línea.
	assert.NotContains(t, xmlStr, "\n")
	assert.True(t, strings.HasPrefix(xmlStr, `<?xml version="1.0" encoding="UTF-8"?>`))
}

func TestBuildLoginTicketRequest_Invalidos(t *testing.T) {
	_, err := BuildLoginTicketRequest("", time.Now(), time.Minute)
	assert.True(t, pkgafip.IsValidation(err), "serviceId vacío debe rechazarse")

	largo := strings.Repeat("x", pkgafip.MaxServiceIDLen+1)
	_, err = BuildLoginTicketRequest(largo, time.Now(), time.Minute)
	assert.True(t, pkgafip.IsValidation(err), "serviceId de más de 35 caracteres debe rechazarse")

	_, err = BuildLoginTicketRequest("wsfe", time.Now(), 0)
	assert.True(t, pkgafip.IsValidation(err), "validez no positiva debe rechazarse")
}
