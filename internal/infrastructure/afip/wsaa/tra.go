// Construcción del TRA (loginTicketRequest) para el login WSAA.

package wsaa

import (
	"time"

	"github.com/beevik/etree"

	pkgafip "github.com/contableweb/contable-api/pkg/afip"
)

// formatoTimestampTRA es el formato de fecha que WSAA espera en el TRA.
// Sin zona horaria: AFIP interpreta hora local del emisor.
const formatoTimestampTRA = "2006-01-02T15:04:05"

// BuildLoginTicketRequest arma el XML compacto del TRA para el servicio dado.
// uniqueId se deriva del instante actual (yymmddhhmmss) y la ventana de validez
// va de now hasta now+validity. WSAA rechaza TRAs con ventanas ya vencidas o
// demasiado amplias; el que llama decide la validez (típicamente 20 minutos).
func BuildLoginTicketRequest(serviceID string, now time.Time, validity time.Duration) (string, error) {
	if serviceID == "" {
		return "", pkgafip.Validationf("el identificador de servicio no puede ser vacío")
	}
	if len(serviceID) > pkgafip.MaxServiceIDLen {
		return "", pkgafip.Validationf("identificador de servicio %q excede los %d caracteres", serviceID, pkgafip.MaxServiceIDLen)
	}
	if validity <= 0 {
		return "", pkgafip.Validationf("la validez del TRA debe ser positiva (recibida %s)", validity)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("loginTicketRequest")
	root.CreateAttr("version", "1.0")

	header := root.CreateElement("header")
	header.CreateElement("uniqueId").SetText(now.Format("060102150405"))
	header.CreateElement("generationTime").SetText(now.Format(formatoTimestampTRA))
	header.CreateElement("expirationTime").SetText(now.Add(validity).Format(formatoTimestampTRA))

	root.CreateElement("service").SetText(serviceID)

	// Sin indentación: el TRA viaja dentro del CMS y se firma tal cual.
	xmlStr, err := doc.WriteToString()
	if err != nil {
		return "", pkgafip.Validationf("serializar TRA: %v", err)
	}
	return xmlStr, nil
}
