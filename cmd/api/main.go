package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appnfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/application/nfe"
	infranfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/infrastructure/nfe"
	infrapdf "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/infrastructure/pdf"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/infrastructure/postgres"
	httpRouter "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/interfaces/http"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/pkg/config"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	importRepo := postgres.NewNFeImportRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Canal SEFAZ: certificado A1 + cliente SOAP de distribuição de DF-e.
	// Sem certificado o serviço sobe normalmente; as buscas remotas respondem
	// que o canal não está configurado.
	identidade, err := infranfe.LoadTLSIdentity(cfg.NFE)
	if err != nil {
		log.Fatal().Err(err).Msg("carregar certificado digital")
	}
	if !identidade.Configurado() {
		log.Warn().Msg("certificado digital ausente; buscas na SEFAZ desabilitadas")
	}
	sefazClient := infranfe.NewSOAPClient(cfg.NFE, identidade, log)
	retriever := infranfe.NewRetriever(importRepo, sefazClient, log)

	parser := infranfe.NewParser()
	vinculador := appnfe.NewCatalogoUseCase(log)
	importUC := appnfe.NewImportUseCase(importRepo, txRunner, parser, vinculador, log)

	danfeGenerator := infrapdf.NewMarotoDANFEGenerator()
	downloadUC := appnfe.NewDownloadUseCase(retriever, parser, danfeGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 90, // buscas na SEFAZ podem demorar
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Sistema de Estoque API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ImportUC:   importUC,
		DownloadUC: downloadUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("encerramento do servidor")
	}

	log.Info().Msg("aplicação finalizada")
}
