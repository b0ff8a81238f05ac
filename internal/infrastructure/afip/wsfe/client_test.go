package wsfe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domafip "github.com/contableweb/contable-api/internal/domain/afip"
	pkgafip "github.com/contableweb/contable-api/pkg/afip"
)

func envolverRespuesta(inner string) string {
	return `<?xml version="1.0" encoding="utf-8"?><soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>` +
		inner + `</soap:Body></soap:Envelope>`
}

func clienteDePrueba(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
}

func requestFacturaC(nro int64) *domafip.AuthorizationRequest {
	total := decimal.RequireFromString("121.00")
	return &domafip.AuthorizationRequest{
		CantReg:  1,
		PtoVta:   1,
		CbteTipo: pkgafip.FacturaC,
		Detalles: []domafip.ComprobanteDetalle{{
			Concepto:             pkgafip.ConceptoProductos,
			DocTipo:              pkgafip.DocConsumidorFinal,
			CbteDesde:            nro,
			CbteHasta:            nro,
			CbteFch:              "20260831",
			ImpTotal:             total,
			ImpNeto:              total,
			ImpTotConc:           decimal.Zero,
			ImpOpEx:              decimal.Zero,
			ImpIVA:               decimal.Zero,
			ImpTrib:              decimal.Zero,
			MonID:                pkgafip.MonedaPeso,
			MonCotiz:             decimal.NewFromInt(1),
			CondicionIVAReceptor: pkgafip.IVAConsumidorFinal,
		}},
	}
}

func TestClient_SolicitarCAE_Aprobado(t *testing.T) {
	respuesta := envolverRespuesta(`<FECAESolicitarResponse xmlns="http://ar.gov.afip.dif.FEV1/"><FECAESolicitarResult><FeCabResp><Cuit>20123456786</Cuit><PtoVta>1</PtoVta><CbteTipo>11</CbteTipo><FchProceso>20260831120000</FchProceso><CantReg>1</CantReg><Resultado>A</Resultado></FeCabResp><FeDetResp><FECAEDetResponse><Concepto>1</Concepto><DocTipo>99</DocTipo><DocNro>0</DocNro><CbteDesde>42</CbteDesde><CbteHasta>42</CbteHasta><Resultado>A</Resultado><CAE>70012345678901</CAE><CAEFchVto>20260910</CAEFchVto></FECAEDetResponse></FeDetResp></FECAESolicitarResult></FECAESolicitarResponse>`)

	var soapAction string
	client := clienteDePrueba(t, func(w http.ResponseWriter, r *http.Request) {
		soapAction = r.Header.Get("SOAPAction")
		w.Header().Set("Content-Type", "text/xml")
		fmt.Fprint(w, respuesta)
	})

	result, err := client.SolicitarCAE(context.Background(), authDePrueba(), requestFacturaC(42))
	require.NoError(t, err)

	assert.Equal(t, "http://ar.gov.afip.dif.FEV1/FECAESolicitar", soapAction)
	assert.True(t, result.Exitoso)
	assert.Equal(t, "A", result.Resultado)
	assert.Equal(t, int64(42), result.CbteNro)
	assert.Equal(t, "70012345678901", result.CAE)
	assert.Equal(t, "20260910", result.CAEFchVto)
	assert.Empty(t, result.Errores)
}

func TestClient_SolicitarCAE_Rechazado(t *testing.T) {
	respuesta := envolverRespuesta(`<FECAESolicitarResponse xmlns="http://ar.gov.afip.dif.FEV1/"><FECAESolicitarResult><FeCabResp><Resultado>R</Resultado><FchProceso>20260831120000</FchProceso></FeCabResp><FeDetResp><FECAEDetResponse><CbteDesde>43</CbteDesde><CbteHasta>43</CbteHasta><Resultado>R</Resultado><CAE></CAE><Observaciones><Obs><Code>10016</Code><Msg>Campo CbteFch invalido</Msg></Obs></Observaciones></FECAEDetResponse></FeDetResp><Errors><Err><Code>10016</Code><Msg>Campo CbteFch invalido</Msg></Err></Errors></FECAESolicitarResult></FECAESolicitarResponse>`)

	client := clienteDePrueba(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, respuesta)
	})

	// El rechazo NO es error de Go: es un desenlace terminal con detalle.
	result, err := client.SolicitarCAE(context.Background(), authDePrueba(), requestFacturaC(43))
	require.NoError(t, err)

	assert.False(t, result.Exitoso)
	assert.Equal(t, "R", result.Resultado)
	assert.Empty(t, result.CAE)
	require.Len(t, result.Errores, 1)
	assert.Equal(t, 10016, result.Errores[0].Code)
	require.Len(t, result.Observaciones, 1)
}

func TestClient_SolicitarCAE_ValidaAntesDeEnviar(t *testing.T) {
	llamadas := 0
	client := clienteDePrueba(t, func(w http.ResponseWriter, r *http.Request) {
		llamadas++
	})

	req := requestFacturaC(42)
	req.PtoVta = 0
	_, err := client.SolicitarCAE(context.Background(), authDePrueba(), req)
	require.True(t, pkgafip.IsValidation(err))
	assert.Zero(t, llamadas, "un request inválido no debe tocar la red")
}

func TestClient_UltimoAutorizado(t *testing.T) {
	respuesta := envolverRespuesta(`<FECompUltimoAutorizadoResponse xmlns="http://ar.gov.afip.dif.FEV1/"><FECompUltimoAutorizadoResult><PtoVta>1</PtoVta><CbteTipo>11</CbteTipo><CbteNro>41</CbteNro></FECompUltimoAutorizadoResult></FECompUltimoAutorizadoResponse>`)

	client := clienteDePrueba(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, respuesta)
	})

	nro, err := client.UltimoAutorizado(context.Background(), authDePrueba(), 1, pkgafip.FacturaC)
	require.NoError(t, err)
	assert.Equal(t, int64(41), nro)
}

func TestClient_UltimoAutorizado_ErrorDeNegocio(t *testing.T) {
	respuesta := envolverRespuesta(`<FECompUltimoAutorizadoResponse xmlns="http://ar.gov.afip.dif.FEV1/"><FECompUltimoAutorizadoResult><Errors><Err><Code>600</Code><Msg>ValidacionDeToken: No validaron las credenciales</Msg></Err></Errors></FECompUltimoAutorizadoResult></FECompUltimoAutorizadoResponse>`)

	client := clienteDePrueba(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, respuesta)
	})

	_, err := client.UltimoAutorizado(context.Background(), authDePrueba(), 1, pkgafip.FacturaC)
	var bErr *pkgafip.RemoteBusinessError
	require.ErrorAs(t, err, &bErr)
	require.Len(t, bErr.Errors, 1)
	assert.Equal(t, 600, bErr.Errors[0].Code)
}

func TestClient_Dummy(t *testing.T) {
	respuesta := envolverRespuesta(`<FEDummyResponse xmlns="http://ar.gov.afip.dif.FEV1/"><FEDummyResult><AppServer>OK</AppServer><DbServer>OK</DbServer><AuthServer>OK</AuthServer></FEDummyResult></FEDummyResponse>`)

	client := clienteDePrueba(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, respuesta)
	})

	st, err := client.Dummy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &domafip.ServerStatus{AppServer: "OK", DbServer: "OK", AuthServer: "OK"}, st)
}

func TestClient_TiposComprobante(t *testing.T) {
	respuesta := envolverRespuesta(`<FEParamGetTiposCbteResponse xmlns="http://ar.gov.afip.dif.FEV1/"><FEParamGetTiposCbteResult><ResultGet><CbteTipo><Id>11</Id><Desc>Factura C</Desc><FchDesde>20100917</FchDesde><FchHasta>NULL</FchHasta></CbteTipo><CbteTipo><Id>1</Id><Desc>Factura A</Desc><FchDesde>20100917</FchDesde><FchHasta>NULL</FchHasta></CbteTipo></ResultGet></FEParamGetTiposCbteResult></FEParamGetTiposCbteResponse>`)

	client := clienteDePrueba(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, respuesta)
	})

	items, err := client.TiposComprobante(context.Background(), authDePrueba())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 11, items[0].ID)
	assert.Equal(t, "Factura C", items[0].Desc)
}

func TestClient_Fault(t *testing.T) {
	respuesta := envolverRespuesta(`<soap:Fault><faultcode>soap:Server</faultcode><faultstring>Internal error</faultstring></soap:Fault>`)

	client := clienteDePrueba(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, respuesta)
	})

	_, err := client.Dummy(context.Background())
	var fault *pkgafip.RemoteFaultError
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "Internal error", fault.FaultString)
}
