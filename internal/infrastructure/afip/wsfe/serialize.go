// Serialización explícita de los requests SOAP de WSFEv1.
//
// Cada operación tiene su función de armado; nada de reflection. El wire de
// WSFEv1 es quisquilloso con el orden de los elementos, así que se escriben
// a mano respetando el orden del WSDL.

package wsfe

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	domafip "github.com/contableweb/contable-api/internal/domain/afip"
)

const nsWSFE = "http://ar.gov.afip.dif.FEV1/"

// escapeXML escapa los cinco caracteres reservados de XML.
func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}

// f2 formatea un decimal con exactamente dos decimales, como exige WSFEv1.
func f2(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type xmlBuilder struct {
	strings.Builder
}

func (b *xmlBuilder) el(name, value string) {
	b.WriteString("<")
	b.WriteString(name)
	b.WriteString(">")
	b.WriteString(escapeXML(value))
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">")
}

func (b *xmlBuilder) elInt(name string, v int64) {
	b.el(name, strconv.FormatInt(v, 10))
}

func (b *xmlBuilder) open(name string)  { b.WriteString("<" + name + ">") }
func (b *xmlBuilder) close(name string) { b.WriteString("</" + name + ">") }

// envolver arma el envelope SOAP 1.2-compatible (WSFE acepta SOAP 1.1 con
// text/xml, que es lo que usamos) con el body ya serializado adentro.
func envolver(body string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	b.WriteString(`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ar="`)
	b.WriteString(nsWSFE)
	b.WriteString(`"><soapenv:Header/><soapenv:Body>`)
	b.WriteString(body)
	b.WriteString(`</soapenv:Body></soapenv:Envelope>`)
	return b.String()
}

// auth serializa el bloque <ar:Auth> común a todas las operaciones autenticadas.
func serializeAuth(b *xmlBuilder, a domafip.AuthRequest) {
	b.open("ar:Auth")
	b.el("ar:Token", a.Token)
	b.el("ar:Sign", a.Sign)
	b.elInt("ar:Cuit", a.CUIT)
	b.close("ar:Auth")
}

// serializeFECAESolicitar arma el body de FECAESolicitar completo.
func serializeFECAESolicitar(a domafip.AuthRequest, req *domafip.AuthorizationRequest) string {
	var b xmlBuilder
	b.open("ar:FECAESolicitar")
	serializeAuth(&b, a)

	b.open("ar:FeCAEReq")

	b.open("ar:FeCabReq")
	b.elInt("ar:CantReg", int64(req.CantReg))
	b.elInt("ar:PtoVta", int64(req.PtoVta))
	b.elInt("ar:CbteTipo", int64(req.CbteTipo))
	b.close("ar:FeCabReq")

	b.open("ar:FeDetReq")
	for i := range req.Detalles {
		serializeDetalle(&b, &req.Detalles[i])
	}
	b.close("ar:FeDetReq")

	b.close("ar:FeCAEReq")
	b.close("ar:FECAESolicitar")
	return envolver(b.String())
}

func serializeDetalle(b *xmlBuilder, d *domafip.ComprobanteDetalle) {
	b.open("ar:FECAEDetRequest")
	b.elInt("ar:Concepto", int64(d.Concepto))
	b.elInt("ar:DocTipo", int64(d.DocTipo))
	b.elInt("ar:DocNro", d.DocNro)
	b.elInt("ar:CbteDesde", d.CbteDesde)
	b.elInt("ar:CbteHasta", d.CbteHasta)
	b.el("ar:CbteFch", d.CbteFch)
	b.el("ar:ImpTotal", f2(d.ImpTotal))
	b.el("ar:ImpTotConc", f2(d.ImpTotConc))
	b.el("ar:ImpNeto", f2(d.ImpNeto))
	b.el("ar:ImpOpEx", f2(d.ImpOpEx))
	b.el("ar:ImpTrib", f2(d.ImpTrib))
	b.el("ar:ImpIVA", f2(d.ImpIVA))

	// Fechas de servicio: solo cuando el concepto incluye servicios.
	if d.FchServDesde != "" {
		b.el("ar:FchServDesde", d.FchServDesde)
	}
	if d.FchServHasta != "" {
		b.el("ar:FchServHasta", d.FchServHasta)
	}
	if d.FchVtoPago != "" {
		b.el("ar:FchVtoPago", d.FchVtoPago)
	}

	b.el("ar:MonId", d.MonID)
	b.el("ar:MonCotiz", d.MonCotiz.String())
	b.elInt("ar:CondicionIVAReceptorId", int64(d.CondicionIVAReceptor))

	if len(d.Tributos) > 0 {
		b.open("ar:Tributos")
		for _, t := range d.Tributos {
			b.open("ar:Tributo")
			b.elInt("ar:Id", int64(t.ID))
			b.el("ar:Desc", t.Desc)
			b.el("ar:BaseImp", f2(t.BaseImp))
			b.el("ar:Alic", f2(t.Alic))
			b.el("ar:Importe", f2(t.Importe))
			b.close("ar:Tributo")
		}
		b.close("ar:Tributos")
	}

	if len(d.IVA) > 0 {
		b.open("ar:Iva")
		for _, iva := range d.IVA {
			b.open("ar:AlicIva")
			b.elInt("ar:Id", int64(iva.ID))
			b.el("ar:BaseImp", f2(iva.BaseImp))
			b.el("ar:Importe", f2(iva.Importe))
			b.close("ar:AlicIva")
		}
		b.close("ar:Iva")
	}

	b.close("ar:FECAEDetRequest")
}

// serializeFECompUltimoAutorizado arma el body de FECompUltimoAutorizado.
func serializeFECompUltimoAutorizado(a domafip.AuthRequest, ptoVta, cbteTipo int) string {
	var b xmlBuilder
	b.open("ar:FECompUltimoAutorizado")
	serializeAuth(&b, a)
	b.elInt("ar:PtoVta", int64(ptoVta))
	b.elInt("ar:CbteTipo", int64(cbteTipo))
	b.close("ar:FECompUltimoAutorizado")
	return envolver(b.String())
}

// serializeFEDummy arma el body del probe FEDummy (sin auth).
func serializeFEDummy() string {
	return envolver("<ar:FEDummy/>")
}

// serializeCatalogo arma el body de las operaciones de catálogo, que solo
// llevan el bloque Auth.
func serializeCatalogo(op string, a domafip.AuthRequest) string {
	var b xmlBuilder
	b.open("ar:" + op)
	serializeAuth(&b, a)
	b.close("ar:" + op)
	return envolver(b.String())
}
