package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/contableweb/contable-api/internal/application/auth"
	"github.com/contableweb/contable-api/internal/application/billing"
	"github.com/contableweb/contable-api/internal/application/tokens"
	"github.com/contableweb/contable-api/internal/infrastructure/afip/wsaa"
	"github.com/contableweb/contable-api/internal/infrastructure/afip/wsfe"
	"github.com/contableweb/contable-api/internal/infrastructure/postgres"
	httpRouter "github.com/contableweb/contable-api/internal/interfaces/http"
	"github.com/contableweb/contable-api/pkg/config"
	"github.com/contableweb/contable-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Bool("afip_produccion", cfg.AFIP.Production).
		Msg("iniciando aplicación")

	if err := cfg.AFIP.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración AFIP inválida")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	signer, err := wsaa.NewSigner(cfg.AFIP.CertPath, cfg.AFIP.CertKeyPath, cfg.AFIP.CertPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("cargar certificado AFIP")
	}
	log.Info().
		Time("vence", signer.Certificate().NotAfter).
		Str("sujeto", signer.Certificate().Subject.CommonName).
		Msg("certificado AFIP cargado")

	wsaaClient := wsaa.NewClient(wsaa.Config{
		Signer:     signer,
		Production: cfg.AFIP.Production,
	})
	wsfeClient := wsfe.NewClient(wsfe.Config{
		Production: cfg.AFIP.Production,
	})

	ticketRepo := postgres.NewTicketRepository(pool)
	recordRepo := postgres.NewInvoiceRecordRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	authUseCase := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	tokenCache := tokens.New(wsaaClient, ticketRepo, nil, log, tokens.Config{
		RecoveryBackoff: cfg.AFIP.RecoveryBackoff,
		SweepInterval:   cfg.AFIP.SweepInterval,
	})
	tokenCache.Start(ctx)
	defer tokenCache.Stop()

	orchestrator := billing.NewOrchestrator(tokenCache, wsfeClient, recordRepo, log, cfg.AFIP.CuitEmisor)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 90, // las llamadas a AFIP pueden tardar
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Orchestrator: orchestrator,
		TokenCache:   tokenCache,
		AuthUseCase:  authUseCase,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
