// Cliente SOAP del servicio de autenticación WSAA de AFIP.

package wsaa

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"

	domafip "github.com/contableweb/contable-api/internal/domain/afip"
	pkgafip "github.com/contableweb/contable-api/pkg/afip"
)

// ── Constantes de entorno ──────────────────────────────────────────────────────

const (
	urlHomologacion = "https://wsaahomo.afip.gov.ar/ws/services/LoginCms"
	urlProduccion   = "https://wsaa.afip.gov.ar/ws/services/LoginCms"

	// nsWSAA es el namespace del servicio loginCms (Axis, heredado del WS original).
	nsWSAA = "http://wsaa.view.sua.dvadac.desein.afip.gov"

	// validezTRA ventana de validez estándar del ticket request.
	validezTRA = 20 * time.Minute

	timeoutDefault = 60 * time.Second
	maxRespuesta   = 1 << 20 // 1 MB
)

// ── Puerto (interfaz) ──────────────────────────────────────────────────────────

// LoginClient define el puerto de autenticación ante WSAA. La implementación
// concreta firma y envía el CMS por SOAP; para tests se inyecta un fake.
type LoginClient interface {
	// Login solicita un ticket de acceso para el servicio dado.
	Login(ctx context.Context, serviceID string) (*domafip.SecurityTicket, error)
}

// ── Implementación SOAP ────────────────────────────────────────────────────────

// Config parámetros del cliente WSAA.
type Config struct {
	Signer     *Signer
	Production bool
	// BaseURL permite apuntar a un servidor de pruebas; vacío usa el endpoint
	// de AFIP según Production.
	BaseURL string
	Timeout time.Duration
}

// Client implementa LoginClient contra el WS real.
type Client struct {
	signer     *Signer
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

var _ LoginClient = (*Client)(nil)

// NewClient construye el cliente WSAA.
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
		signer:     cfg.Signer,
		baseURL:    url,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Login arma el TRA, lo firma en CMS y lo presenta a loginCms. Devuelve el
// ticket con token, sign y vencimiento ya parseados.
func (c *Client) Login(ctx context.Context, serviceID string) (*domafip.SecurityTicket, error) {
	now := c.now()

	tra, err := BuildLoginTicketRequest(serviceID, now, validezTRA)
	if err != nil {
		return nil, err
	}
	cms, err := c.signer.Sign(tra)
	if err != nil {
		return nil, err
	}

	respuesta, err := c.post(ctx, cms)
	if err != nil {
		return nil, err
	}

	ticket, err := parseLoginResponse(respuesta)
	if err != nil {
		return nil, err
	}
	ticket.ServiceID = serviceID
	ticket.ObtainedAt = now
	return ticket, nil
}

// post envía el envelope loginCms y devuelve el body crudo de la respuesta.
func (c *Client) post(ctx context.Context, cmsB64 string) ([]byte, error) {
	envelope := buildLoginEnvelope(cmsB64)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(envelope))
	if err != nil {
		return nil, &pkgafip.TransportError{Service: "wsaa", Op: "loginCms", Err: err}
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	// WSAA espera SOAPAction presente pero vacío.
	req.Header.Set("SOAPAction", `""`)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("timeout o cancelación: %w", ctx.Err())
		}
		return nil, &pkgafip.TransportError{Service: "wsaa", Op: "loginCms", Err: err}
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxRespuesta))
	if err != nil {
		return nil, &pkgafip.TransportError{Service: "wsaa", Op: "loginCms", Err: err}
	}

	// Los faults de WSAA llegan con status 500; igual intentamos parsear fault
	// antes de descartar por status, porque el detalle del fault es lo único
	// que explica el rechazo.
	if fault := parseFault(rawBody); fault != nil {
		return nil, fault
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &pkgafip.TransportError{
			Service: "wsaa", Op: "loginCms",
			Err: fmt.Errorf("status HTTP inesperado %d: %s", resp.StatusCode, resumen(rawBody)),
		}
	}
	return rawBody, nil
}

// buildLoginEnvelope arma el envelope SOAP de loginCms. El CMS viaja en Base64
// sin saltos de línea; algunos stacks los agregan y WSAA los tolera, pero acá
// los evitamos de entrada.
func buildLoginEnvelope(cmsB64 string) string {
	cmsB64 = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, cmsB64)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:wsaa="`)
	b.WriteString(nsWSAA)
	b.WriteString(`"><soapenv:Header/><soapenv:Body><wsaa:loginCms><wsaa:in0>`)
	b.WriteString(cmsB64)
	b.WriteString(`</wsaa:in0></wsaa:loginCms></soapenv:Body></soapenv:Envelope>`)
	return b.String()
}

// ── Parseo de respuestas ──────────────────────────────────────────────────────

// parseFault detecta un SOAP Fault en el body. Devuelve nil si no hay fault.
// El detalle de Axis trae exceptionName y hostname, que conservamos porque
// exceptionName es la única forma confiable de distinguir "ya existe un TA
// válido" de otros rechazos.
func parseFault(rawBody []byte) *pkgafip.RemoteFaultError {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil
	}
	fault := findLocal(doc.Root(), "Fault")
	if fault == nil {
		return nil
	}

	out := &pkgafip.RemoteFaultError{}
	if e := findLocal(fault, "faultcode"); e != nil {
		out.FaultCode = strings.TrimSpace(e.Text())
	}
	if e := findLocal(fault, "faultstring"); e != nil {
		out.FaultString = strings.TrimSpace(e.Text())
	}
	if detail := findLocal(fault, "detail"); detail != nil {
		if e := findLocal(detail, "exceptionName"); e != nil {
			out.ExceptionName = strings.TrimSpace(e.Text())
		}
		if e := findLocal(detail, "hostname"); e != nil {
			out.Hostname = strings.TrimSpace(e.Text())
		}
	}
	return out
}

// parseLoginResponse extrae el loginTicketResponse embebido en loginCmsReturn
// y de ahí token, sign y expirationTime.
func parseLoginResponse(rawBody []byte) (*domafip.SecurityTicket, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, parseErr("respuesta SOAP inválida", rawBody, err)
	}

	ret := findLocal(doc.Root(), "loginCmsReturn")
	if ret == nil {
		return nil, parseErr("la respuesta no contiene loginCmsReturn", rawBody, nil)
	}

	// loginCmsReturn trae el loginTicketResponse como XML escapado.
	inner := etree.NewDocument()
	if err := inner.ReadFromString(ret.Text()); err != nil {
		return nil, parseErr("loginTicketResponse interno inválido", rawBody, err)
	}
	root := inner.Root()
	if root == nil {
		return nil, parseErr("loginTicketResponse interno vacío", rawBody, nil)
	}

	ticket := &domafip.SecurityTicket{RawXML: ret.Text()}

	if e := findLocal(root, "token"); e != nil {
		ticket.Token = strings.TrimSpace(e.Text())
	}
	if e := findLocal(root, "sign"); e != nil {
		ticket.Sign = strings.TrimSpace(e.Text())
	}
	if ticket.Token == "" || ticket.Sign == "" {
		return nil, parseErr("loginTicketResponse sin token o sign", rawBody, nil)
	}

	expEl := findLocal(root, "expirationTime")
	if expEl == nil {
		return nil, parseErr("loginTicketResponse sin expirationTime", rawBody, nil)
	}
	exp, err := parseTimestampWSAA(strings.TrimSpace(expEl.Text()))
	if err != nil {
		return nil, parseErr("expirationTime con formato desconocido", rawBody, err)
	}
	ticket.ExpirationTime = exp

	return ticket, nil
}

// parseTimestampWSAA tolera las variantes de timestamp que devuelve WSAA:
// con zona, con fracción de segundos, o pelado.
func parseTimestampWSAA(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999-07:00",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q no coincide con ningún layout conocido", s)
}

// findLocal busca el primer descendiente con el nombre local dado, ignorando
// prefijos de namespace (Axis y los stacks modernos prefijan distinto).
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

func parseErr(msg string, raw []byte, err error) *pkgafip.ParseError {
	return &pkgafip.ParseError{Service: "wsaa", Op: "loginCms", Msg: msg, Raw: string(raw), Err: err}
}

func resumen(raw []byte) string {
	const max = 300
	s := string(raw)
	if len(s) > max {
		return s[:max] + "…"
	}
	return s
}
