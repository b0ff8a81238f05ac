package billing

import (
	"context"

	domafip "github.com/contableweb/contable-api/internal/domain/afip"
)

// TokenProvider entrega tickets de acceso WSAA vigentes. La implementación
// concreta es el caché de tokens; para tests se inyecta un fake.
type TokenProvider interface {
	GetValid(ctx context.Context, serviceID string) (*domafip.SecurityTicket, error)
}

// WSFEClient es el subconjunto de operaciones WSFEv1 que necesita la
// facturación. Coincide con el Invoker de infraestructura.
type WSFEClient interface {
	SolicitarCAE(ctx context.Context, auth domafip.AuthRequest, req *domafip.AuthorizationRequest) (*domafip.AuthorizationResult, error)
	UltimoAutorizado(ctx context.Context, auth domafip.AuthRequest, ptoVta, cbteTipo int) (int64, error)
	Dummy(ctx context.Context) (*domafip.ServerStatus, error)
	TiposComprobante(ctx context.Context, auth domafip.AuthRequest) ([]domafip.CatalogItem, error)
	TiposDocumento(ctx context.Context, auth domafip.AuthRequest) ([]domafip.CatalogItem, error)
	CondicionesIVAReceptor(ctx context.Context, auth domafip.AuthRequest) ([]domafip.CatalogItem, error)
}
