package afip

import (
	"github.com/shopspring/decimal"

	pkgafip "github.com/contableweb/contable-api/pkg/afip"
)

// AlicuotaIVA línea de la tabla Iva del detalle (código de alícuota, base e importe).
type AlicuotaIVA struct {
	ID      int
	BaseImp decimal.Decimal
	Importe decimal.Decimal
}

// Tributo línea de la tabla Tributos del detalle.
type Tributo struct {
	ID      int
	Desc    string
	BaseImp decimal.Decimal
	Alic    decimal.Decimal
	Importe decimal.Decimal
}

// ComprobanteDetalle detalle de un comprobante dentro del request FECAESolicitar.
// Los nombres siguen el wire de WSFEv1; las fechas van como yyyyMMdd.
type ComprobanteDetalle struct {
	Concepto   int
	DocTipo    int
	DocNro     int64
	CbteDesde  int64
	CbteHasta  int64
	CbteFch    string
	ImpTotal   decimal.Decimal
	ImpTotConc decimal.Decimal
	ImpNeto    decimal.Decimal
	ImpOpEx    decimal.Decimal
	ImpIVA     decimal.Decimal
	ImpTrib    decimal.Decimal
	MonID      string
	MonCotiz   decimal.Decimal

	// Opcionales: obligatorios solo cuando Concepto incluye servicios.
	FchServDesde string
	FchServHasta string
	FchVtoPago   string

	// CondicionIVAReceptor condición frente al IVA del receptor (RG 5616).
	CondicionIVAReceptor int

	IVA      []AlicuotaIVA
	Tributos []Tributo
}

// AuthorizationRequest request completo de FECAESolicitar: cabecera de lote
// más uno o más detalles. En este diseño el lote es casi siempre de 1.
type AuthorizationRequest struct {
	CantReg  int
	PtoVta   int
	CbteTipo int
	Detalles []ComprobanteDetalle
}

// Validate aplica las invariantes del comprobante antes de cualquier llamada
// de red. La validación remota sigue siendo la autoritativa; esto solo evita
// round trips perdidos.
func (r *AuthorizationRequest) Validate() error {
	if !pkgafip.PuntoVentaValido(r.PtoVta) {
		return pkgafip.Validationf("punto de venta %d fuera de rango [1, 9999]", r.PtoVta)
	}
	if len(r.Detalles) == 0 {
		return pkgafip.Validationf("el request debe incluir al menos un detalle")
	}
	if r.CantReg != len(r.Detalles) {
		return pkgafip.Validationf("CantReg (%d) no coincide con la cantidad de detalles (%d)", r.CantReg, len(r.Detalles))
	}
	for i := range r.Detalles {
		if err := r.validateDetalle(&r.Detalles[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *AuthorizationRequest) validateDetalle(d *ComprobanteDetalle) error {
	if !d.ImpTotal.IsPositive() {
		return pkgafip.Validationf("el importe total debe ser mayor a cero (recibido %s)", d.ImpTotal.StringFixed(2))
	}
	if d.CbteDesde <= 0 || d.CbteHasta <= 0 {
		return pkgafip.Validationf("el número de comprobante debe ser mayor a cero (desde %d, hasta %d)", d.CbteDesde, d.CbteHasta)
	}
	if d.CbteHasta < d.CbteDesde {
		return pkgafip.Validationf("rango de comprobantes invertido: desde %d hasta %d", d.CbteDesde, d.CbteHasta)
	}
	if d.CbteFch == "" {
		return pkgafip.Validationf("falta la fecha del comprobante")
	}

	// total = neto + IVA + exento + no gravado + tributos
	suma := d.ImpNeto.Add(d.ImpIVA).Add(d.ImpOpEx).Add(d.ImpTotConc).Add(d.ImpTrib)
	if !suma.Equal(d.ImpTotal) {
		return pkgafip.Validationf("los importes no concilian: total %s != neto %s + IVA %s + exento %s + no gravado %s + tributos %s",
			d.ImpTotal.StringFixed(2), d.ImpNeto.StringFixed(2), d.ImpIVA.StringFixed(2),
			d.ImpOpEx.StringFixed(2), d.ImpTotConc.StringFixed(2), d.ImpTrib.StringFixed(2))
	}

	// Comprobantes C: sin discriminación de IVA.
	if pkgafip.EsComprobanteTipoC(r.CbteTipo) {
		if !d.ImpIVA.IsZero() {
			return pkgafip.Validationf("comprobante tipo C con ImpIVA distinto de cero (%s)", d.ImpIVA.StringFixed(2))
		}
		if !d.ImpNeto.Equal(d.ImpTotal) {
			return pkgafip.Validationf("comprobante tipo C: ImpNeto (%s) debe igualar ImpTotal (%s)",
				d.ImpNeto.StringFixed(2), d.ImpTotal.StringFixed(2))
		}
		if len(d.IVA) > 0 {
			return pkgafip.Validationf("comprobante tipo C no admite tabla de alícuotas de IVA")
		}
	}

	if d.CondicionIVAReceptor <= 0 {
		return pkgafip.Validationf("falta la condición frente al IVA del receptor (RG 5616)")
	}
	return nil
}

// AuthorizationResult resultado tipado de un intento de FECAESolicitar.
// Inmutable tras construirse; un rechazo es terminal y nunca se reenvía
// automáticamente (reenviar sin corregir datos arriesga doble autorización).
type AuthorizationResult struct {
	Exitoso       bool
	Resultado     string // "A", "R" o "P" tal como vino en cabecera
	CbteNro       int64
	CAE           string
	CAEFchVto     string
	FchProceso    string
	Errores       []pkgafip.ServiceError
	Observaciones []pkgafip.ServiceError
}

// ServerStatus respuesta del probe de conectividad FEDummy.
type ServerStatus struct {
	AppServer  string
	DbServer   string
	AuthServer string
}

// CatalogItem ítem genérico de los catálogos de parámetros de WSFEv1
// (tipos de comprobante, tipos de documento, condiciones de IVA).
type CatalogItem struct {
	ID       int
	Desc     string
	FchDesde string
	FchHasta string
}
