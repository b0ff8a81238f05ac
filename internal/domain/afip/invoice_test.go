package afip_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domafip "github.com/contableweb/contable-api/internal/domain/afip"
	pkgafip "github.com/contableweb/contable-api/pkg/afip"
)

// facturaCValida arma un request de factura C que pasa todas las validaciones.
func facturaCValida() *domafip.AuthorizationRequest {
	total := decimal.RequireFromString("121.00")
	return &domafip.AuthorizationRequest{
		CantReg:  1,
		PtoVta:   1,
		CbteTipo: pkgafip.FacturaC,
		Detalles: []domafip.ComprobanteDetalle{{
			Concepto:             pkgafip.ConceptoProductos,
			DocTipo:              pkgafip.DocConsumidorFinal,
			DocNro:               0,
			CbteDesde:            42,
			CbteHasta:            42,
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

func TestAuthorizationRequest_Validate_OK(t *testing.T) {
	require.NoError(t, facturaCValida().Validate())
}

func TestAuthorizationRequest_Validate_TotalNoPositivo(t *testing.T) {
	for _, total := range []string{"0", "-1.50"} {
		req := facturaCValida()
		req.Detalles[0].ImpTotal = decimal.RequireFromString(total)
		req.Detalles[0].ImpNeto = req.Detalles[0].ImpTotal

		err := req.Validate()
		require.Error(t, err, "total %s debería rechazarse", total)
		assert.True(t, pkgafip.IsValidation(err), "debe ser error de validación")
	}
}

func TestAuthorizationRequest_Validate_PuntoVenta(t *testing.T) {
	for _, ptoVta := range []int{0, 10000, -3} {
		req := facturaCValida()
		req.PtoVta = ptoVta

		err := req.Validate()
		require.Error(t, err, "ptoVta %d debería rechazarse", ptoVta)
		assert.True(t, pkgafip.IsValidation(err))
	}
}

func TestAuthorizationRequest_Validate_NumeroDeComprobante(t *testing.T) {
	req := facturaCValida()
	req.Detalles[0].CbteDesde = 0
	req.Detalles[0].CbteHasta = 0
	assert.Error(t, req.Validate(), "comprobante número 0 debe rechazarse")

	req = facturaCValida()
	req.Detalles[0].CbteDesde = 10
	req.Detalles[0].CbteHasta = 9
	assert.Error(t, req.Validate(), "rango invertido debe rechazarse")
}

func TestAuthorizationRequest_Validate_Conciliacion(t *testing.T) {
	req := facturaCValida()
	// total != neto + IVA + exento + no gravado + tributos
	req.Detalles[0].ImpNeto = decimal.RequireFromString("100.00")

	err := req.Validate()
	require.Error(t, err)
	assert.True(t, pkgafip.IsValidation(err))
}

func TestAuthorizationRequest_Validate_TipoC(t *testing.T) {
	// IVA distinto de cero en tipo C
	req := facturaCValida()
	req.Detalles[0].ImpIVA = decimal.RequireFromString("21.00")
	req.Detalles[0].ImpNeto = decimal.RequireFromString("100.00")
	assert.Error(t, req.Validate(), "tipo C con IVA debe rechazarse")

	// Tabla de alícuotas en tipo C
	req = facturaCValida()
	req.Detalles[0].IVA = []domafip.AlicuotaIVA{{
		ID:      pkgafip.AlicuotaVeintiuno,
		BaseImp: decimal.RequireFromString("100.00"),
		Importe: decimal.RequireFromString("21.00"),
	}}
	assert.Error(t, req.Validate(), "tipo C con tabla de IVA debe rechazarse")
}

func TestAuthorizationRequest_Validate_CondicionIVAObligatoria(t *testing.T) {
	req := facturaCValida()
	req.Detalles[0].CondicionIVAReceptor = 0

	err := req.Validate()
	require.Error(t, err)
	assert.True(t, pkgafip.IsValidation(err))
}

func TestAuthorizationRequest_Validate_CantRegInconsistente(t *testing.T) {
	req := facturaCValida()
	req.CantReg = 2
	assert.Error(t, req.Validate())

	req = facturaCValida()
	req.Detalles = nil
	req.CantReg = 0
	assert.Error(t, req.Validate(), "sin detalles debe rechazarse")
}
