// Package tokens administra el ciclo de vida de los tickets de acceso WSAA:
// caché en memoria, respaldo persistente, renovación single-flight y
// recuperación ante el fault "ya existe un TA válido".
package tokens

import (
	"context"
	"errors"
	"sync"
	"time"

	domafip "github.com/contableweb/contable-api/internal/domain/afip"
	"github.com/contableweb/contable-api/internal/domain/repository"
	"github.com/contableweb/contable-api/internal/infrastructure/afip/wsaa"
	pkgafip "github.com/contableweb/contable-api/pkg/afip"
	"github.com/contableweb/contable-api/pkg/logger"
)

// ── Observador ─────────────────────────────────────────────────────────────────

// Observer recibe notificaciones del ciclo de vida de los tickets. Todos los
// métodos se invocan de forma sincrónica bajo el lock de renovación; las
// implementaciones deben ser rápidas y nunca llamar de vuelta al caché.
type Observer interface {
	// TicketObtained se invoca cuando se obtiene un ticket nuevo (por login
	// o por recuperación desde la base).
	TicketObtained(t *domafip.SecurityTicket)
	// TicketExpired se invoca cuando un ticket del caché se descarta por vencido.
	TicketExpired(serviceID string)
	// RefreshFailed se invoca cuando una renovación falla de forma definitiva.
	RefreshFailed(serviceID string, err error)
}

// NopObserver implementación vacía para embeber cuando solo interesa un evento.
type NopObserver struct{}

func (NopObserver) TicketObtained(*domafip.SecurityTicket) {}
func (NopObserver) TicketExpired(string)                   {}
func (NopObserver) RefreshFailed(string, error)            {}

// ── Caché ──────────────────────────────────────────────────────────────────────

// Config parámetros del caché de tickets.
type Config struct {
	// RecoveryBackoff espera antes del único reintento de recuperación cuando
	// WSAA responde que ya existe un TA válido. Cero usa el default (30 s).
	RecoveryBackoff time.Duration
	// SweepInterval período del barrido de tickets vencidos. Cero usa 5 min.
	SweepInterval time.Duration
}

const (
	defaultRecoveryBackoff = 30 * time.Second
	defaultSweepInterval   = 5 * time.Minute
)

// Cache es el servicio de tickets. Lecturas concurrentes sobre el mapa en
// memoria; las renovaciones se serializan con un mutex dedicado para que un
// vencimiento bajo carga dispare un solo login (el resto espera y reutiliza).
type Cache struct {
	login    wsaa.LoginClient
	repo     repository.TicketRepository
	observer Observer
	log      *logger.Logger
	cfg      Config

	mu      sync.RWMutex
	tickets map[string]*domafip.SecurityTicket

	// refreshMu serializa las renovaciones contra WSAA.
	refreshMu sync.Mutex

	// now y sleep son inyectables para tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	stop chan struct{}
	done chan struct{}
}

// New construye el caché. repo puede ser nil (sin respaldo persistente) y
// observer puede ser nil (sin notificaciones).
func New(login wsaa.LoginClient, repo repository.TicketRepository, observer Observer, log *logger.Logger, cfg Config) *Cache {
	if cfg.RecoveryBackoff <= 0 {
		cfg.RecoveryBackoff = defaultRecoveryBackoff
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Cache{
		login:    login,
		repo:     repo,
		observer: observer,
		log:      log,
		cfg:      cfg,
		tickets:  make(map[string]*domafip.SecurityTicket),
		now:      time.Now,
		sleep:    sleepCtx,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetValid devuelve un ticket vigente para el servicio, renovando si hace
// falta. Es el único punto de entrada que necesitan los clientes de negocio.
func (c *Cache) GetValid(ctx context.Context, serviceID string) (*domafip.SecurityTicket, error) {
	now := c.now()

	c.mu.RLock()
	t, ok := c.tickets[serviceID]
	c.mu.RUnlock()
	if ok && !t.ExpiredAt(now) {
		return t, nil
	}

	return c.Refresh(ctx, serviceID)
}

// Current devuelve el ticket en memoria sin renovar, o nil si no hay ninguno
// (vencido o no). Pensado para endpoints de diagnóstico.
func (c *Cache) Current(serviceID string) *domafip.SecurityTicket {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickets[serviceID]
}

// HasValid informa si hay un ticket vigente en memoria, sin tocar la red.
func (c *Cache) HasValid(serviceID string) bool {
	c.mu.RLock()
	t, ok := c.tickets[serviceID]
	c.mu.RUnlock()
	return ok && !t.ExpiredAt(c.now())
}

// Refresh obtiene un ticket nuevo para el servicio. Serializa contra otras
// renovaciones: si otro goroutine renovó mientras esperábamos el lock, se
// reutiliza su resultado sin volver a WSAA.
func (c *Cache) Refresh(ctx context.Context, serviceID string) (*domafip.SecurityTicket, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Re-chequeo bajo el lock: la renovación pudo haberla hecho otro.
	now := c.now()
	c.mu.RLock()
	t, ok := c.tickets[serviceID]
	c.mu.RUnlock()
	if ok && !t.ExpiredAt(now) {
		return t, nil
	}
	if ok {
		c.descartarVencido(serviceID)
	}

	// Antes de ir a la red: un ticket persistido de una corrida anterior
	// puede seguir vigente.
	if t := c.recuperarPersistido(ctx, serviceID); t != nil {
		c.adoptar(t)
		return t, nil
	}

	t, err := c.loginConRecuperacion(ctx, serviceID)
	if err != nil {
		c.observer.RefreshFailed(serviceID, err)
		return nil, err
	}
	c.adoptar(t)
	return t, nil
}

// loginConRecuperacion hace el login y, si WSAA responde que ya existe un TA
// válido (emitido por otro proceso con el mismo certificado), espera el
// backoff y prueba recuperarlo del respaldo persistente. Un solo reintento:
// si tampoco está ahí, el fault original se propaga.
func (c *Cache) loginConRecuperacion(ctx context.Context, serviceID string) (*domafip.SecurityTicket, error) {
	t, err := c.login.Login(ctx, serviceID)
	if err == nil {
		return t, nil
	}

	var fault *pkgafip.RemoteFaultError
	if !errors.As(err, &fault) || !fault.TicketAlreadyExists() {
		return nil, err
	}

	c.log.Warn().
		Str("service", serviceID).
		Dur("backoff", c.cfg.RecoveryBackoff).
		Msg("WSAA reporta un TA ya emitido; esperando antes de buscarlo en el respaldo")

	if serr := c.sleep(ctx, c.cfg.RecoveryBackoff); serr != nil {
		return nil, serr
	}
	if t := c.recuperarPersistido(ctx, serviceID); t != nil {
		c.log.Info().Str("service", serviceID).Msg("ticket recuperado del respaldo persistente")
		return t, nil
	}
	return nil, err
}

// recuperarPersistido busca en la base un ticket vigente. Errores de base acá
// no abortan el flujo: se loguea y se sigue como si no hubiera respaldo.
func (c *Cache) recuperarPersistido(ctx context.Context, serviceID string) *domafip.SecurityTicket {
	if c.repo == nil {
		return nil
	}
	t, err := c.repo.GetValid(ctx, serviceID)
	if err != nil {
		c.log.Error().Err(err).Str("service", serviceID).Msg("no se pudo leer el respaldo de tickets")
		return nil
	}
	if t == nil || t.ExpiredAt(c.now()) {
		return nil
	}
	return t
}

// adoptar publica el ticket en memoria y en el respaldo. Un fallo al persistir
// se loguea fuerte pero no invalida el ticket: en memoria sigue sirviendo.
func (c *Cache) adoptar(t *domafip.SecurityTicket) {
	c.mu.Lock()
	c.tickets[t.ServiceID] = t
	c.mu.Unlock()

	if c.repo != nil {
		// Contexto propio: la persistencia no debe morir con el request que
		// disparó la renovación.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.repo.Save(ctx, t); err != nil {
			c.log.Error().Err(err).Str("service", t.ServiceID).
				Msg("ticket obtenido pero NO persistido; tras un reinicio habrá que esperar al TA en AFIP")
		}
	}

	c.log.Info().
		Str("service", t.ServiceID).
		Time("expira", t.ExpirationTime).
		Msg("ticket de acceso vigente")
	c.observer.TicketObtained(t)
}

func (c *Cache) descartarVencido(serviceID string) {
	c.mu.Lock()
	delete(c.tickets, serviceID)
	c.mu.Unlock()
	c.observer.TicketExpired(serviceID)
}

// ── Ciclo de vida ──────────────────────────────────────────────────────────────

// Start lanza el barrido periódico de tickets vencidos (memoria y base).
// Llamar una sola vez; Stop lo detiene.
func (c *Cache) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		c.sweep(ctx) // limpieza inicial: que el arranque no herede vencidos
		ticker := time.NewTicker(c.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.sweep(ctx)
			case <-c.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop detiene el barrido y espera a que termine.
func (c *Cache) Stop() {
	close(c.stop)
	<-c.done
}

func (c *Cache) sweep(ctx context.Context) {
	now := c.now()

	c.mu.Lock()
	var vencidos []string
	for id, t := range c.tickets {
		if t.ExpiredAt(now) {
			delete(c.tickets, id)
			vencidos = append(vencidos, id)
		}
	}
	c.mu.Unlock()

	for _, id := range vencidos {
		c.observer.TicketExpired(id)
	}

	if c.repo != nil {
		n, err := c.repo.DeleteExpired(ctx)
		if err != nil {
			c.log.Error().Err(err).Msg("barrido de tickets persistidos falló")
		} else if n > 0 || len(vencidos) > 0 {
			c.log.Debug().Int64("db", n).Int("memoria", len(vencidos)).Msg("tickets vencidos barridos")
		}
	}
}
