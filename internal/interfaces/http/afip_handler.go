package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/contableweb/contable-api/internal/application/billing"
	"github.com/contableweb/contable-api/internal/application/dto"
	"github.com/contableweb/contable-api/internal/application/tokens"
	domafip "github.com/contableweb/contable-api/internal/domain/afip"
	pkgafip "github.com/contableweb/contable-api/pkg/afip"
)

// AFIPHandler expone diagnóstico y catálogos de los servicios AFIP (protegido).
type AFIPHandler struct {
	orch  *billing.Orchestrator
	cache *tokens.Cache
}

// NewAFIPHandler construye el handler.
func NewAFIPHandler(orch *billing.Orchestrator, cache *tokens.Cache) *AFIPHandler {
	return &AFIPHandler{orch: orch, cache: cache}
}

// Estado ejecuta el probe FEDummy contra WSFEv1.
// GET /api/afip/estado
func (h *AFIPHandler) Estado(c *fiber.Ctx) error {
	st, err := h.orch.VerificarConexion(c.Context())
	if err != nil {
		return errorAFIP(c, err)
	}
	return c.JSON(dto.EstadoServidoresResponse{
		AppServer:  st.AppServer,
		DbServer:   st.DbServer,
		AuthServer: st.AuthServer,
	})
}

// Ticket informa el estado del ticket WSAA en caché, sin disparar renovación.
// GET /api/afip/ticket
func (h *AFIPHandler) Ticket(c *fiber.Ctx) error {
	resp := dto.TicketStatusResponse{ServiceID: pkgafip.ServiceWSFE}
	if t := h.cache.Current(pkgafip.ServiceWSFE); t != nil {
		resp.Vigente = !t.IsExpired()
		resp.Expiration = t.ExpirationTime.Format(time.RFC3339)
		resp.ObtainedAt = t.ObtainedAt.Format(time.RFC3339)
	}
	return c.JSON(resp)
}

// TiposComprobante catálogo de tipos de comprobante.
// GET /api/afip/tipos-comprobante
func (h *AFIPHandler) TiposComprobante(c *fiber.Ctx) error {
	items, err := h.orch.TiposComprobante(c.Context())
	if err != nil {
		return errorAFIP(c, err)
	}
	return c.JSON(toCatalogDTOs(items))
}

// TiposDocumento catálogo de tipos de documento.
// GET /api/afip/tipos-documento
func (h *AFIPHandler) TiposDocumento(c *fiber.Ctx) error {
	items, err := h.orch.TiposDocumento(c.Context())
	if err != nil {
		return errorAFIP(c, err)
	}
	return c.JSON(toCatalogDTOs(items))
}

// CondicionesIVA catálogo de condiciones frente al IVA del receptor.
// GET /api/afip/condiciones-iva
func (h *AFIPHandler) CondicionesIVA(c *fiber.Ctx) error {
	items, err := h.orch.CondicionesIVAReceptor(c.Context())
	if err != nil {
		return errorAFIP(c, err)
	}
	return c.JSON(toCatalogDTOs(items))
}

func toCatalogDTOs(items []domafip.CatalogItem) []dto.CatalogItemDTO {
	out := make([]dto.CatalogItemDTO, len(items))
	for i, it := range items {
		out[i] = dto.CatalogItemDTO{ID: it.ID, Desc: it.Desc, FchDesde: it.FchDesde, FchHasta: it.FchHasta}
	}
	return out
}
