// Parseo de las respuestas SOAP de WSFEv1.

package wsfe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	domafip "github.com/contableweb/contable-api/internal/domain/afip"
	pkgafip "github.com/contableweb/contable-api/pkg/afip"
)

// findLocal busca el primer descendiente con el nombre local dado, ignorando
// prefijos de namespace.
func findLocal(el *etree.Element, local string) *etree.Element {
	if el == nil {
		return nil
	}
	if el.Tag == local {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := findLocal(child, local); found != nil {
			return found
		}
	}
	return nil
}

func childText(el *etree.Element, local string) string {
	if found := findLocal(el, local); found != nil {
		return strings.TrimSpace(found.Text())
	}
	return ""
}

func childInt(el *etree.Element, local string) int {
	n, _ := strconv.Atoi(childText(el, local))
	return n
}

func childInt64(el *etree.Element, local string) int64 {
	n, _ := strconv.ParseInt(childText(el, local), 10, 64)
	return n
}

// parseFault detecta un SOAP Fault. WSFE casi nunca faultea (reporta errores
// de negocio en <Errors>), pero un envelope malformado o un problema del
// stack SOAP sí llega como fault.
func parseFault(raw []byte) *pkgafip.RemoteFaultError {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil
	}
	fault := findLocal(doc.Root(), "Fault")
	if fault == nil {
		return nil
	}
	return &pkgafip.RemoteFaultError{
		FaultCode:   childText(fault, "faultcode"),
		FaultString: childText(fault, "faultstring"),
	}
}

// parseErrores extrae el bloque <Errors> (lista de <Err> con Code y Msg)
// colgado del elemento dado. Devuelve nil si no hay errores.
func parseErrores(el *etree.Element) []pkgafip.ServiceError {
	errsEl := findLocal(el, "Errors")
	if errsEl == nil {
		return nil
	}
	var out []pkgafip.ServiceError
	for _, e := range errsEl.ChildElements() {
		out = append(out, pkgafip.ServiceError{
			Code: childInt(e, "Code"),
			Msg:  childText(e, "Msg"),
		})
	}
	return out
}

// parseObservaciones extrae <Observaciones> (lista de <Obs>) de un detalle.
func parseObservaciones(el *etree.Element) []pkgafip.ServiceError {
	obsEl := findLocal(el, "Observaciones")
	if obsEl == nil {
		return nil
	}
	var out []pkgafip.ServiceError
	for _, o := range obsEl.ChildElements() {
		out = append(out, pkgafip.ServiceError{
			Code: childInt(o, "Code"),
			Msg:  childText(o, "Msg"),
		})
	}
	return out
}

func parseRoot(op string, raw []byte, resultLocal string) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, parseErr(op, "respuesta SOAP inválida", raw, err)
	}
	result := findLocal(doc.Root(), resultLocal)
	if result == nil {
		return nil, parseErr(op, fmt.Sprintf("la respuesta no contiene %s", resultLocal), raw, nil)
	}
	return result, nil
}

// parseCAEResult interpreta el FECAESolicitarResult completo. Los errores de
// negocio NO se devuelven como error de Go: forman parte del resultado, porque
// un rechazo es un desenlace válido y terminal del flujo de autorización.
func parseCAEResult(raw []byte) (*domafip.AuthorizationResult, error) {
	const op = "FECAESolicitar"
	result, err := parseRoot(op, raw, "FECAESolicitarResult")
	if err != nil {
		return nil, err
	}

	out := &domafip.AuthorizationResult{}

	if cab := findLocal(result, "FeCabResp"); cab != nil {
		out.Resultado = childText(cab, "Resultado")
		out.FchProceso = childText(cab, "FchProceso")
	}

	// Con lote de 1, el primer FECAEDetResponse es el comprobante.
	if det := findLocal(result, "FECAEDetResponse"); det != nil {
		out.CbteNro = childInt64(det, "CbteDesde")
		out.CAE = childText(det, "CAE")
		out.CAEFchVto = childText(det, "CAEFchVto")
		out.Observaciones = parseObservaciones(det)
		// El Resultado por detalle manda si la cabecera vino vacía.
		if out.Resultado == "" {
			out.Resultado = childText(det, "Resultado")
		}
	}

	out.Errores = parseErrores(result)
	out.Exitoso = out.Resultado == pkgafip.ResultadoAprobado && out.CAE != ""

	if out.Resultado == "" && len(out.Errores) == 0 {
		return nil, parseErr(op, "respuesta sin resultado ni errores", raw, nil)
	}
	return out, nil
}

// parseUltimo interpreta FECompUltimoAutorizadoResult. Acá los errores de
// negocio sí son error de Go: sin número no hay nada que devolver.
func parseUltimo(raw []byte) (int64, error) {
	const op = "FECompUltimoAutorizado"
	result, err := parseRoot(op, raw, "FECompUltimoAutorizadoResult")
	if err != nil {
		return 0, err
	}
	if errs := parseErrores(result); len(errs) > 0 {
		return 0, &pkgafip.RemoteBusinessError{Service: "wsfe", Op: op, Errors: errs}
	}
	return childInt64(result, "CbteNro"), nil
}

// parseDummy interpreta FEDummyResult.
func parseDummy(raw []byte) (*domafip.ServerStatus, error) {
	const op = "FEDummy"
	result, err := parseRoot(op, raw, "FEDummyResult")
	if err != nil {
		return nil, err
	}
	return &domafip.ServerStatus{
		AppServer:  childText(result, "AppServer"),
		DbServer:   childText(result, "DbServer"),
		AuthServer: childText(result, "AuthServer"),
	}, nil
}

// parseCatalogo interpreta las respuestas de parámetros (FEParamGet*). Todas
// comparten la forma ResultGet > lista de ítems con Id/Desc/FchDesde/FchHasta.
func parseCatalogo(op string, raw []byte) ([]domafip.CatalogItem, error) {
	result, err := parseRoot(op, raw, op+"Result")
	if err != nil {
		return nil, err
	}
	if errs := parseErrores(result); len(errs) > 0 {
		return nil, &pkgafip.RemoteBusinessError{Service: "wsfe", Op: op, Errors: errs}
	}

	lista := findLocal(result, "ResultGet")
	if lista == nil {
		return nil, parseErr(op, "respuesta sin ResultGet", raw, nil)
	}
	var out []domafip.CatalogItem
	for _, item := range lista.ChildElements() {
		out = append(out, domafip.CatalogItem{
			ID:       childInt(item, "Id"),
			Desc:     childText(item, "Desc"),
			FchDesde: childText(item, "FchDesde"),
			FchHasta: childText(item, "FchHasta"),
		})
	}
	return out, nil
}

func parseErr(op, msg string, raw []byte, err error) *pkgafip.ParseError {
	return &pkgafip.ParseError{Service: "wsfe", Op: op, Msg: msg, Raw: string(raw), Err: err}
}
