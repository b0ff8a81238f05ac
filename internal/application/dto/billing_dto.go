package dto

import "github.com/shopspring/decimal"

// AutorizarFacturaCRequest request HTTP de emisión de factura C.
type AutorizarFacturaCRequest struct {
	PtoVta               int             `json:"ptoVta"`
	Concepto             int             `json:"concepto"`
	DocTipo              int             `json:"docTipo"`
	DocNro               int64           `json:"docNro"`
	ImpTotal             decimal.Decimal `json:"impTotal"`
	CondicionIVAReceptor int             `json:"condicionIvaReceptor"`
	FchServDesde         string          `json:"fchServDesde,omitempty"`
	FchServHasta         string          `json:"fchServHasta,omitempty"`
	FchVtoPago           string          `json:"fchVtoPago,omitempty"`
}

// ServiceErrorDTO error u observación devuelto por AFIP.
type ServiceErrorDTO struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// AutorizacionResponse resultado de una autorización.
type AutorizacionResponse struct {
	Exitoso       bool              `json:"exitoso"`
	Resultado     string            `json:"resultado"`
	CbteNro       int64             `json:"cbteNro"`
	CAE           string            `json:"cae,omitempty"`
	CAEFchVto     string            `json:"caeFchVto,omitempty"`
	Errores       []ServiceErrorDTO `json:"errores,omitempty"`
	Observaciones []ServiceErrorDTO `json:"observaciones,omitempty"`
}

// ProximoNumeroResponse próximo comprobante a emitir.
type ProximoNumeroResponse struct {
	PtoVta   int   `json:"ptoVta"`
	CbteTipo int   `json:"cbteTipo"`
	Proximo  int64 `json:"proximo"`
}

// EstadoServidoresResponse respuesta del probe FEDummy.
type EstadoServidoresResponse struct {
	AppServer  string `json:"appServer"`
	DbServer   string `json:"dbServer"`
	AuthServer string `json:"authServer"`
}

// CatalogItemDTO ítem de catálogo de parámetros WSFEv1.
type CatalogItemDTO struct {
	ID       int    `json:"id"`
	Desc     string `json:"desc"`
	FchDesde string `json:"fchDesde,omitempty"`
	FchHasta string `json:"fchHasta,omitempty"`
}

// RegistroResponse fila del registro de auditoría de autorizaciones.
type RegistroResponse struct {
	ID        string          `json:"id"`
	PtoVta    int             `json:"ptoVta"`
	CbteTipo  int             `json:"cbteTipo"`
	CbteNro   int64           `json:"cbteNro"`
	CbteFch   string          `json:"cbteFch"`
	DocTipo   int             `json:"docTipo"`
	DocNro    int64           `json:"docNro"`
	ImpTotal  decimal.Decimal `json:"impTotal"`
	Resultado string          `json:"resultado"`
	CAE       string          `json:"cae,omitempty"`
	CAEFchVto string          `json:"caeFchVto,omitempty"`
	Detalle   string          `json:"detalle,omitempty"`
}

// TicketStatusResponse estado del ticket WSAA en caché.
type TicketStatusResponse struct {
	ServiceID  string `json:"serviceId"`
	Vigente    bool   `json:"vigente"`
	Expiration string `json:"expiration,omitempty"`
	ObtainedAt string `json:"obtainedAt,omitempty"`
}
