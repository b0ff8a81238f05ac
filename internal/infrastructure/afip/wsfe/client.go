// Cliente SOAP del servicio de facturación electrónica WSFEv1 de AFIP.

package wsfe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domafip "github.com/contableweb/contable-api/internal/domain/afip"
	pkgafip "github.com/contableweb/contable-api/pkg/afip"
)

// ── Constantes de entorno ──────────────────────────────────────────────────────

const (
	urlHomologacion = "https://wswhomo.afip.gov.ar/wsfev1/service.asmx"
	urlProduccion   = "https://servicios1.afip.gov.ar/wsfev1/service.asmx"

	timeoutDefault = 60 * time.Second
	maxRespuesta   = 1 << 20 // 1 MB
)

// ── Puerto (interfaz) ──────────────────────────────────────────────────────────

// Invoker define el puerto hacia WSFEv1. Cada operación recibe el bloque de
// auth ya resuelto; obtener y renovar el ticket es problema de otra capa.
type Invoker interface {
	SolicitarCAE(ctx context.Context, auth domafip.AuthRequest, req *domafip.AuthorizationRequest) (*domafip.AuthorizationResult, error)
	UltimoAutorizado(ctx context.Context, auth domafip.AuthRequest, ptoVta, cbteTipo int) (int64, error)
	Dummy(ctx context.Context) (*domafip.ServerStatus, error)
	TiposComprobante(ctx context.Context, auth domafip.AuthRequest) ([]domafip.CatalogItem, error)
	TiposDocumento(ctx context.Context, auth domafip.AuthRequest) ([]domafip.CatalogItem, error)
	CondicionesIVAReceptor(ctx context.Context, auth domafip.AuthRequest) ([]domafip.CatalogItem, error)
}

// ── Implementación ─────────────────────────────────────────────────────────────

// Config parámetros del cliente WSFEv1.
type Config struct {
	Production bool
	// BaseURL permite apuntar a un servidor de pruebas; vacío usa el endpoint
	// de AFIP según Production.
	BaseURL string
	Timeout time.Duration
}

// Client implementa Invoker contra el WS real.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ Invoker = (*Client)(nil)

// NewClient construye el cliente WSFEv1.
func NewClient(cfg Config) *Client {
	url := cfg.BaseURL
	if url == "" {
		if cfg.Production {
			url = urlProduccion
		} else {
			url = urlHomologacion
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = timeoutDefault
	}
	return &Client{
		baseURL:    url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SolicitarCAE presenta el comprobante y devuelve el resultado tipado.
// Un rechazo ("R") NO es error: viene en el resultado y es terminal.
func (c *Client) SolicitarCAE(ctx context.Context, auth domafip.AuthRequest, req *domafip.AuthorizationRequest) (*domafip.AuthorizationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	raw, err := c.post(ctx, "FECAESolicitar", serializeFECAESolicitar(auth, req))
	if err != nil {
		return nil, err
	}
	return parseCAEResult(raw)
}

// UltimoAutorizado devuelve el último número de comprobante autorizado para
// el punto de venta y tipo dados. 0 significa que nunca se emitió ninguno.
func (c *Client) UltimoAutorizado(ctx context.Context, auth domafip.AuthRequest, ptoVta, cbteTipo int) (int64, error) {
	if !pkgafip.PuntoVentaValido(ptoVta) {
		return 0, pkgafip.Validationf("punto de venta %d fuera de rango [1, 9999]", ptoVta)
	}
	raw, err := c.post(ctx, "FECompUltimoAutorizado", serializeFECompUltimoAutorizado(auth, ptoVta, cbteTipo))
	if err != nil {
		return 0, err
	}
	return parseUltimo(raw)
}

// Dummy es el probe de conectividad: no requiere ticket.
func (c *Client) Dummy(ctx context.Context) (*domafip.ServerStatus, error) {
	raw, err := c.post(ctx, "FEDummy", serializeFEDummy())
	if err != nil {
		return nil, err
	}
	return parseDummy(raw)
}

// TiposComprobante consulta el catálogo de tipos de comprobante.
func (c *Client) TiposComprobante(ctx context.Context, auth domafip.AuthRequest) ([]domafip.CatalogItem, error) {
	return c.catalogo(ctx, "FEParamGetTiposCbte", auth)
}

// TiposDocumento consulta el catálogo de tipos de documento.
func (c *Client) TiposDocumento(ctx context.Context, auth domafip.AuthRequest) ([]domafip.CatalogItem, error) {
	return c.catalogo(ctx, "FEParamGetTiposDoc", auth)
}

// CondicionesIVAReceptor consulta las condiciones frente al IVA admitidas
// para el receptor (RG 5616).
func (c *Client) CondicionesIVAReceptor(ctx context.Context, auth domafip.AuthRequest) ([]domafip.CatalogItem, error) {
	return c.catalogo(ctx, "FEParamGetCondicionIvaReceptor", auth)
}

func (c *Client) catalogo(ctx context.Context, op string, auth domafip.AuthRequest) ([]domafip.CatalogItem, error) {
	raw, err := c.post(ctx, op, serializeCatalogo(op, auth))
	if err != nil {
		return nil, err
	}
	return parseCatalogo(op, raw)
}

// post envía el envelope y devuelve el body crudo. El SOAPAction de WSFE es
// el namespace más el nombre de la operación.
func (c *Client) post(ctx context.Context, op, envelope string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(envelope))
	if err != nil {
		return nil, &pkgafip.TransportError{Service: "wsfe", Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", nsWSFE+op)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("timeout o cancelación: %w", ctx.Err())
		}
		return nil, &pkgafip.TransportError{Service: "wsfe", Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRespuesta))
	if err != nil {
		return nil, &pkgafip.TransportError{Service: "wsfe", Op: op, Err: err}
	}

	if fault := parseFault(raw); fault != nil {
		return nil, fault
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &pkgafip.TransportError{
			Service: "wsfe", Op: op,
			Err: fmt.Errorf("status HTTP inesperado %d", resp.StatusCode),
		}
	}
	return raw, nil
}
