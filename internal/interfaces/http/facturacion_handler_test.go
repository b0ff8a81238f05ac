package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contableweb/contable-api/internal/application/billing"
	domafip "github.com/contableweb/contable-api/internal/domain/afip"
	apphttp "github.com/contableweb/contable-api/internal/interfaces/http"
	"github.com/contableweb/contable-api/pkg/logger"
)

// ── Fakes de puertos AFIP ─────────────────────────────────────────────────────

type stubTokens struct{}

func (stubTokens) GetValid(ctx context.Context, serviceID string) (*domafip.SecurityTicket, error) {
	return &domafip.SecurityTicket{ServiceID: serviceID, Token: "tok", Sign: "sig"}, nil
}

type stubWSFE struct {
	ultimo    int64
	caeResult *domafip.AuthorizationResult
}

func (s *stubWSFE) SolicitarCAE(ctx context.Context, auth domafip.AuthRequest, req *domafip.AuthorizationRequest) (*domafip.AuthorizationResult, error) {
	return s.caeResult, nil
}

func (s *stubWSFE) UltimoAutorizado(ctx context.Context, auth domafip.AuthRequest, ptoVta, cbteTipo int) (int64, error) {
	return s.ultimo, nil
}

func (s *stubWSFE) Dummy(ctx context.Context) (*domafip.ServerStatus, error) {
	return &domafip.ServerStatus{AppServer: "OK", DbServer: "OK", AuthServer: "OK"}, nil
}

func (s *stubWSFE) TiposComprobante(ctx context.Context, auth domafip.AuthRequest) ([]domafip.CatalogItem, error) {
	return nil, nil
}

func (s *stubWSFE) TiposDocumento(ctx context.Context, auth domafip.AuthRequest) ([]domafip.CatalogItem, error) {
	return nil, nil
}

func (s *stubWSFE) CondicionesIVAReceptor(ctx context.Context, auth domafip.AuthRequest) ([]domafip.CatalogItem, error) {
	return nil, nil
}

func appConOrquestador(wsfe billing.WSFEClient) *fiber.App {
	log := logger.Nop()
	orch := billing.NewOrchestrator(stubTokens{}, wsfe, nil, log, 20123456786)

	app := fiber.New()
	handler := apphttp.NewFacturacionHandler(orch)
	app.Post("/api/facturas/c", handler.AutorizarFacturaC)
	app.Get("/api/facturas/proximo", handler.ProximoNumero)
	return app
}

// ── Tests ──────────────────────────────────────────────────────────────────────

func TestFacturacionHandler_AutorizarFacturaC_Aprobada(t *testing.T) {
	app := appConOrquestador(&stubWSFE{
		ultimo: 41,
		caeResult: &domafip.AuthorizationResult{
			Exitoso:   true,
			Resultado: "A",
			CbteNro:   42,
			CAE:       "70012345678901",
			CAEFchVto: "20260910",
		},
	})

	body := `{"ptoVta":1,"concepto":1,"docTipo":99,"docNro":0,"impTotal":"121.00","condicionIvaReceptor":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/facturas/c", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, true, out["exitoso"])
	assert.Equal(t, "70012345678901", out["cae"])
	assert.Equal(t, float64(42), out["cbteNro"])
}

func TestFacturacionHandler_AutorizarFacturaC_Rechazada(t *testing.T) {
	app := appConOrquestador(&stubWSFE{
		ultimo: 41,
		caeResult: &domafip.AuthorizationResult{
			Exitoso:   false,
			Resultado: "R",
			CbteNro:   42,
		},
	})

	body := `{"ptoVta":1,"concepto":1,"docTipo":99,"impTotal":"121.00","condicionIvaReceptor":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/facturas/c", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	// Rechazo terminal: el request se procesó, AFIP no autorizó.
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestFacturacionHandler_AutorizarFacturaC_Validacion400(t *testing.T) {
	app := appConOrquestador(&stubWSFE{ultimo: 41})

	// ptoVta fuera de rango
	body := `{"ptoVta":0,"concepto":1,"docTipo":99,"impTotal":"121.00","condicionIvaReceptor":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/facturas/c", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFacturacionHandler_ProximoNumero(t *testing.T) {
	app := appConOrquestador(&stubWSFE{ultimo: 41})

	req := httptest.NewRequest(http.MethodGet, "/api/facturas/proximo?ptoVta=1&cbteTipo=11", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, float64(42), out["proximo"])
}
