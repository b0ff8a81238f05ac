// Orquestación del ciclo de autorización electrónica ante AFIP.

package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domafip "github.com/contableweb/contable-api/internal/domain/afip"
	"github.com/contableweb/contable-api/internal/domain/entity"
	"github.com/contableweb/contable-api/internal/domain/repository"
	pkgafip "github.com/contableweb/contable-api/pkg/afip"
	"github.com/contableweb/contable-api/pkg/logger"
)

// Orchestrator orquesta el ciclo completo de autorización de un comprobante:
//
//	Ticket WSAA → FECompUltimoAutorizado → armado del detalle → FECAESolicitar → registro
//
// Cada paso de red puede fallar de forma distinta; el orquestador agrega el
// nombre del paso al error para que el caller sepa dónde se cortó el flujo.
type Orchestrator struct {
	tokens  TokenProvider
	wsfe    WSFEClient
	records repository.InvoiceRecordRepository
	log     *logger.Logger

	cuitEmisor int64
	serviceID  string
	now        func() time.Time
}

// NewOrchestrator construye el orquestador. records puede ser nil (sin
// registro de auditoría).
func NewOrchestrator(tokens TokenProvider, wsfe WSFEClient, records repository.InvoiceRecordRepository, log *logger.Logger, cuitEmisor int64) *Orchestrator {
	return &Orchestrator{
		tokens:     tokens,
		wsfe:       wsfe,
		records:    records,
		log:        log,
		cuitEmisor: cuitEmisor,
		serviceID:  pkgafip.ServiceWSFE,
		now:        time.Now,
	}
}

// FacturaCInput datos mínimos para emitir una factura C (monotributista):
// sin discriminación de IVA, el neto iguala al total.
type FacturaCInput struct {
	PtoVta               int
	Concepto             int
	DocTipo              int
	DocNro               int64
	ImpTotal             decimal.Decimal
	CondicionIVAReceptor int

	// Fechas de servicio (yyyyMMdd), solo si Concepto incluye servicios.
	FchServDesde string
	FchServHasta string
	FchVtoPago   string
}

// AutorizarFacturaC numera y autoriza una factura C. La numeración se resuelve
// contra AFIP en el momento (último autorizado + 1): AFIP es la única fuente
// de verdad del correlativo.
//
// Un rechazo NO devuelve error: viene en el resultado con Exitoso=false y es
// terminal. Reintentar con los mismos datos solo repetiría el rechazo; el
// comprobante debe corregirse y presentarse con el número siguiente.
func (o *Orchestrator) AutorizarFacturaC(ctx context.Context, in FacturaCInput) (*domafip.AuthorizationResult, error) {
	auth, err := o.auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtener ticket de acceso: %w", err)
	}

	ultimo, err := o.wsfe.UltimoAutorizado(ctx, auth, in.PtoVta, pkgafip.FacturaC)
	if err != nil {
		return nil, fmt.Errorf("consultar último autorizado: %w", err)
	}
	proximo := ultimo + 1

	req := o.armarRequestFacturaC(in, proximo)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result, err := o.wsfe.SolicitarCAE(ctx, auth, req)
	if err != nil {
		return nil, fmt.Errorf("solicitar CAE: %w", err)
	}

	o.registrar(ctx, req, result)

	if result.Exitoso {
		o.log.Info().
			Int("pto_vta", in.PtoVta).
			Int64("cbte_nro", result.CbteNro).
			Str("cae", result.CAE).
			Msg("comprobante autorizado")
	} else {
		o.log.Warn().
			Int("pto_vta", in.PtoVta).
			Int64("cbte_nro", proximo).
			Str("resultado", result.Resultado).
			Str("detalle", resumenErrores(result)).
			Msg("comprobante NO autorizado; el rechazo es terminal")
	}
	return result, nil
}

func (o *Orchestrator) armarRequestFacturaC(in FacturaCInput, nro int64) *domafip.AuthorizationRequest {
	detalle := domafip.ComprobanteDetalle{
		Concepto:             in.Concepto,
		DocTipo:              in.DocTipo,
		DocNro:               in.DocNro,
		CbteDesde:            nro,
		CbteHasta:            nro,
		CbteFch:              o.now().Format(pkgafip.FormatoFecha),
		ImpTotal:             in.ImpTotal,
		ImpNeto:              in.ImpTotal, // tipo C: neto = total, IVA = 0
		ImpTotConc:           decimal.Zero,
		ImpOpEx:              decimal.Zero,
		ImpIVA:               decimal.Zero,
		ImpTrib:              decimal.Zero,
		MonID:                pkgafip.MonedaPeso,
		MonCotiz:             decimal.NewFromInt(1),
		FchServDesde:         in.FchServDesde,
		FchServHasta:         in.FchServHasta,
		FchVtoPago:           in.FchVtoPago,
		CondicionIVAReceptor: in.CondicionIVAReceptor,
	}
	return &domafip.AuthorizationRequest{
		CantReg:  1,
		PtoVta:   in.PtoVta,
		CbteTipo: pkgafip.FacturaC,
		Detalles: []domafip.ComprobanteDetalle{detalle},
	}
}

// Autorizar presenta un request ya armado por el caller (cualquier tipo de
// comprobante). La numeración es responsabilidad del caller; usar
// ProximoNumero si hace falta.
func (o *Orchestrator) Autorizar(ctx context.Context, req *domafip.AuthorizationRequest) (*domafip.AuthorizationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	auth, err := o.auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtener ticket de acceso: %w", err)
	}
	result, err := o.wsfe.SolicitarCAE(ctx, auth, req)
	if err != nil {
		return nil, fmt.Errorf("solicitar CAE: %w", err)
	}
	o.registrar(ctx, req, result)
	return result, nil
}

// ProximoNumero consulta el próximo número de comprobante a emitir.
func (o *Orchestrator) ProximoNumero(ctx context.Context, ptoVta, cbteTipo int) (int64, error) {
	auth, err := o.auth(ctx)
	if err != nil {
		return 0, fmt.Errorf("obtener ticket de acceso: %w", err)
	}
	ultimo, err := o.wsfe.UltimoAutorizado(ctx, auth, ptoVta, cbteTipo)
	if err != nil {
		return 0, err
	}
	return ultimo + 1, nil
}

// VerificarConexion ejecuta el probe FEDummy. No requiere ticket: sirve para
// diagnosticar conectividad aun con el certificado vencido.
func (o *Orchestrator) VerificarConexion(ctx context.Context) (*domafip.ServerStatus, error) {
	return o.wsfe.Dummy(ctx)
}

// TiposComprobante expone el catálogo de tipos de comprobante.
func (o *Orchestrator) TiposComprobante(ctx context.Context) ([]domafip.CatalogItem, error) {
	auth, err := o.auth(ctx)
	if err != nil {
		return nil, err
	}
	return o.wsfe.TiposComprobante(ctx, auth)
}

// TiposDocumento expone el catálogo de tipos de documento.
func (o *Orchestrator) TiposDocumento(ctx context.Context) ([]domafip.CatalogItem, error) {
	auth, err := o.auth(ctx)
	if err != nil {
		return nil, err
	}
	return o.wsfe.TiposDocumento(ctx, auth)
}

// CondicionesIVAReceptor expone el catálogo de condiciones frente al IVA.
func (o *Orchestrator) CondicionesIVAReceptor(ctx context.Context) ([]domafip.CatalogItem, error) {
	auth, err := o.auth(ctx)
	if err != nil {
		return nil, err
	}
	return o.wsfe.CondicionesIVAReceptor(ctx, auth)
}

// Registros lista los últimos intentos de autorización del emisor.
func (o *Orchestrator) Registros(ctx context.Context, limit int) ([]*entity.InvoiceRecord, error) {
	if o.records == nil {
		return nil, nil
	}
	return o.records.ListRecent(ctx, o.cuitEmisor, limit)
}

// RegistroComprobante busca el registro de auditoría de un comprobante puntual.
func (o *Orchestrator) RegistroComprobante(ctx context.Context, ptoVta, cbteTipo int, cbteNro int64) (*entity.InvoiceRecord, error) {
	if o.records == nil {
		return nil, nil
	}
	return o.records.GetByComprobante(ctx, o.cuitEmisor, ptoVta, cbteTipo, cbteNro)
}

func (o *Orchestrator) auth(ctx context.Context) (domafip.AuthRequest, error) {
	ticket, err := o.tokens.GetValid(ctx, o.serviceID)
	if err != nil {
		return domafip.AuthRequest{}, err
	}
	return domafip.NewAuthRequest(ticket, o.cuitEmisor), nil
}

// registrar persiste el intento en la auditoría. Un fallo acá no toca el
// resultado: la autorización ya ocurrió en AFIP y eso es lo que vale.
func (o *Orchestrator) registrar(ctx context.Context, req *domafip.AuthorizationRequest, result *domafip.AuthorizationResult) {
	if o.records == nil || len(req.Detalles) == 0 {
		return
	}
	d := &req.Detalles[0]
	rec := &entity.InvoiceRecord{
		ID:         uuid.NewString(),
		CuitEmisor: o.cuitEmisor,
		PtoVta:     req.PtoVta,
		CbteTipo:   req.CbteTipo,
		CbteNro:    d.CbteDesde,
		CbteFch:    d.CbteFch,
		DocTipo:    d.DocTipo,
		DocNro:     d.DocNro,
		ImpTotal:   d.ImpTotal,
		Resultado:  result.Resultado,
		CAE:        result.CAE,
		CAEFchVto:  result.CAEFchVto,
		Detalle:    resumenErrores(result),
	}
	if err := o.records.Create(ctx, rec); err != nil {
		o.log.Error().Err(err).
			Int("pto_vta", rec.PtoVta).
			Int64("cbte_nro", rec.CbteNro).
			Msg("no se pudo registrar el intento de autorización")
	}
}

func resumenErrores(result *domafip.AuthorizationResult) string {
	var partes []string
	for _, e := range result.Errores {
		partes = append(partes, e.String())
	}
	for _, obs := range result.Observaciones {
		partes = append(partes, "obs "+obs.String())
	}
	return strings.Join(partes, "; ")
}
