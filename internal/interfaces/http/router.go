// Package http expõe a API REST sobre Fiber.
package http

import (
	"github.com/gofiber/fiber/v2"

	appnfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/application/nfe"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	ImportUC   *appnfe.ImportUseCase
	DownloadUC *appnfe.DownloadUseCase
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	nfeHandler := NewNFeHandler(deps.ImportUC, deps.DownloadUC)

	// Importações de NF-e
	importacoes := api.Group("/nfe/importacoes")
	importacoes.Post("/", nfeHandler.Importar)
	importacoes.Get("/", nfeHandler.Listar)
	importacoes.Get("/:id", nfeHandler.Obter)
	importacoes.Post("/:id/reprocessar", nfeHandler.Reprocessar)
	importacoes.Delete("/:id", nfeHandler.Excluir)

	// Documentos por chave de acesso
	api.Get("/nfe/notas/:chave/download", nfeHandler.Baixar)

	// Estado do canal SEFAZ
	api.Get("/nfe/config", nfeHandler.Config)
}
