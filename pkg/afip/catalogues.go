// Package afip contiene los catálogos, constantes de wire y la taxonomía de
// errores de la integración con los web services de AFIP (WSAA / WSFEv1).
package afip

// =============================================================================
// Identificadores de servicio WSAA
// El serviceId identifica el WS de negocio para el que se pide el ticket;
// el protocolo lo limita a 35 caracteres.
// =============================================================================

const (
	// ServiceWSFE es el id del servicio de facturación electrónica (WSFEv1).
	ServiceWSFE = "wsfe"
	// ServicePadron es el id del servicio de consulta de padrón A5.
	ServicePadron = "ws_sr_constancia_inscripcion"

	// MaxServiceIDLen longitud máxima del serviceId según el protocolo WSAA.
	MaxServiceIDLen = 35
)

// =============================================================================
// Tipos de comprobante (RG 4291 - tabla de comprobantes WSFEv1)
// =============================================================================

const (
	FacturaA     = 1
	NotaDebitoA  = 2
	NotaCreditoA = 3
	FacturaB     = 6
	NotaDebitoB  = 7
	NotaCreditoB = 8
	// FacturaC comprobante simplificado: no discrimina IVA.
	FacturaC     = 11
	NotaDebitoC  = 12
	NotaCreditoC = 13
)

// EsComprobanteTipoC indica si el tipo corresponde a la familia C
// (sin discriminación de IVA: ImpIVA = 0 y ImpNeto = ImpTotal).
func EsComprobanteTipoC(cbteTipo int) bool {
	return cbteTipo == FacturaC || cbteTipo == NotaDebitoC || cbteTipo == NotaCreditoC
}

// =============================================================================
// Tipos de documento del receptor
// =============================================================================

const (
	DocCUIT            = 80
	DocCUIL            = 86
	DocDNI             = 96
	DocConsumidorFinal = 99
)

// =============================================================================
// Conceptos del comprobante
// =============================================================================

const (
	ConceptoProductos           = 1
	ConceptoServicios           = 2
	ConceptoProductosYServicios = 3
)

// =============================================================================
// Condición frente al IVA del receptor (obligatoria según RG 5616)
// =============================================================================

const (
	IVAResponsableInscripto   = 1
	IVASujetoExento           = 4
	IVAConsumidorFinal        = 5
	IVAResponsableMonotributo = 6
)

// =============================================================================
// Alícuotas de IVA (códigos de la tabla AlicIva de WSFEv1)
// =============================================================================

const (
	AlicuotaCero        = 3 // 0%
	AlicuotaDiezYMedio  = 4 // 10,5%
	AlicuotaVeintiuno   = 5 // 21%
	AlicuotaVeintisiete = 6 // 27%
	AlicuotaCinco       = 8 // 5%
	AlicuotaDosYMedio   = 9 // 2,5%
)

// =============================================================================
// Moneda y formatos de wire
// =============================================================================

const (
	// MonedaPeso código de moneda peso argentino.
	MonedaPeso = "PES"

	// FormatoFecha formato de fecha de comprobante y vencimientos (yyyyMMdd).
	FormatoFecha = "20060102"

	// ResultadoAprobado / ResultadoRechazado valores del campo Resultado
	// en cabecera y detalle de FECAESolicitar. "P" (parcial) se trata como
	// no aprobado.
	ResultadoAprobado  = "A"
	ResultadoRechazado = "R"
)

// PuntoVentaValido valida el rango permitido de punto de venta [1, 9999].
func PuntoVentaValido(ptoVta int) bool {
	return ptoVta >= 1 && ptoVta <= 9999
}
