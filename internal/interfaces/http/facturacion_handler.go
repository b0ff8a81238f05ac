package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/contableweb/contable-api/internal/application/billing"
	"github.com/contableweb/contable-api/internal/application/dto"
	domafip "github.com/contableweb/contable-api/internal/domain/afip"
	"github.com/contableweb/contable-api/internal/domain/entity"
	pkgafip "github.com/contableweb/contable-api/pkg/afip"
)

// FacturacionHandler maneja las peticiones HTTP de facturación electrónica (protegido).
type FacturacionHandler struct {
	orch *billing.Orchestrator
}

// NewFacturacionHandler construye el handler.
func NewFacturacionHandler(orch *billing.Orchestrator) *FacturacionHandler {
	return &FacturacionHandler{orch: orch}
}

// AutorizarFacturaC numera y autoriza una factura C ante AFIP.
// POST /api/facturas/c
func (h *FacturacionHandler) AutorizarFacturaC(c *fiber.Ctx) error {
	var in dto.AutorizarFacturaCRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	result, err := h.orch.AutorizarFacturaC(c.Context(), billing.FacturaCInput{
		PtoVta:               in.PtoVta,
		Concepto:             in.Concepto,
		DocTipo:              in.DocTipo,
		DocNro:               in.DocNro,
		ImpTotal:             in.ImpTotal,
		CondicionIVAReceptor: in.CondicionIVAReceptor,
		FchServDesde:         in.FchServDesde,
		FchServHasta:         in.FchServHasta,
		FchVtoPago:           in.FchVtoPago,
	})
	if err != nil {
		return errorAFIP(c, err)
	}

	status := fiber.StatusCreated
	if !result.Exitoso {
		// Rechazo: la petición se procesó pero AFIP no autorizó. Terminal.
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(toAutorizacionResponse(result))
}

// ProximoNumero consulta el próximo comprobante a emitir para un punto de
// venta y tipo dados.
// GET /api/facturas/proximo?ptoVta=1&cbteTipo=11
func (h *FacturacionHandler) ProximoNumero(c *fiber.Ctx) error {
	ptoVta, err := strconv.Atoi(c.Query("ptoVta"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ptoVta requerido"})
	}
	cbteTipo, err := strconv.Atoi(c.Query("cbteTipo"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cbteTipo requerido"})
	}

	proximo, err := h.orch.ProximoNumero(c.Context(), ptoVta, cbteTipo)
	if err != nil {
		return errorAFIP(c, err)
	}
	return c.JSON(dto.ProximoNumeroResponse{PtoVta: ptoVta, CbteTipo: cbteTipo, Proximo: proximo})
}

// Registros lista los últimos intentos de autorización registrados.
// GET /api/facturas/registros?limit=50
func (h *FacturacionHandler) Registros(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	recs, err := h.orch.Registros(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.RegistroResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, toRegistroResponse(r))
	}
	return c.JSON(out)
}

// Registro busca el registro de un comprobante puntual.
// GET /api/facturas/registros/:ptoVta/:cbteTipo/:cbteNro
func (h *FacturacionHandler) Registro(c *fiber.Ctx) error {
	ptoVta, err1 := strconv.Atoi(c.Params("ptoVta"))
	cbteTipo, err2 := strconv.Atoi(c.Params("cbteTipo"))
	cbteNro, err3 := strconv.ParseInt(c.Params("cbteNro"), 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros numéricos inválidos"})
	}
	rec, err := h.orch.RegistroComprobante(c.Context(), ptoVta, cbteTipo, cbteNro)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "comprobante no registrado"})
	}
	return c.JSON(toRegistroResponse(rec))
}

func toRegistroResponse(r *entity.InvoiceRecord) dto.RegistroResponse {
	return dto.RegistroResponse{
		ID:        r.ID,
		PtoVta:    r.PtoVta,
		CbteTipo:  r.CbteTipo,
		CbteNro:   r.CbteNro,
		CbteFch:   r.CbteFch,
		DocTipo:   r.DocTipo,
		DocNro:    r.DocNro,
		ImpTotal:  r.ImpTotal,
		Resultado: r.Resultado,
		CAE:       r.CAE,
		CAEFchVto: r.CAEFchVto,
		Detalle:   r.Detalle,
	}
}

func toAutorizacionResponse(r *domafip.AuthorizationResult) dto.AutorizacionResponse {
	return dto.AutorizacionResponse{
		Exitoso:       r.Exitoso,
		Resultado:     r.Resultado,
		CbteNro:       r.CbteNro,
		CAE:           r.CAE,
		CAEFchVto:     r.CAEFchVto,
		Errores:       toServiceErrors(r.Errores),
		Observaciones: toServiceErrors(r.Observaciones),
	}
}

func toServiceErrors(errs []pkgafip.ServiceError) []dto.ServiceErrorDTO {
	if len(errs) == 0 {
		return nil
	}
	out := make([]dto.ServiceErrorDTO, len(errs))
	for i, e := range errs {
		out[i] = dto.ServiceErrorDTO{Code: e.Code, Msg: e.Msg}
	}
	return out
}

// errorAFIP traduce la taxonomía de errores AFIP a códigos HTTP. Los fallos
// del lado de AFIP (fault, transporte, parseo) son 502: el problema no es del
// cliente ni de este servidor.
func errorAFIP(c *fiber.Ctx, err error) error {
	var vErr *pkgafip.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: vErr.Msg})
	}
	var bErr *pkgafip.RemoteBusinessError
	if errors.As(err, &bErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "AFIP_RECHAZO", Message: bErr.Error()})
	}
	var fErr *pkgafip.RemoteFaultError
	if errors.As(err, &fErr) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "AFIP_FAULT", Message: fErr.Error()})
	}
	var sErr *pkgafip.SigningError
	if errors.As(err, &sErr) {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "FIRMA", Message: "no se pudo firmar el ticket request"})
	}
	var tErr *pkgafip.TransportError
	if errors.As(err, &tErr) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "AFIP_NO_DISPONIBLE", Message: "no se pudo contactar a AFIP"})
	}
	var pErr *pkgafip.ParseError
	if errors.As(err, &pErr) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "AFIP_RESPUESTA_INVALIDA", Message: "respuesta de AFIP no interpretable"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
