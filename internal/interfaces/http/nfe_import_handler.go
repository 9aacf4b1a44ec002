package http

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/application/dto"
	appnfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/application/nfe"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain"
	domnfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/nfe"
)

// NFeHandler atende as rotas de importação e busca de NF-e.
type NFeHandler struct {
	importUC   *appnfe.ImportUseCase
	downloadUC *appnfe.DownloadUseCase
}

// NewNFeHandler constrói o handler.
func NewNFeHandler(importUC *appnfe.ImportUseCase, downloadUC *appnfe.DownloadUseCase) *NFeHandler {
	return &NFeHandler{importUC: importUC, downloadUC: downloadUC}
}

// Importar recebe o XML da nota (multipart "arquivo" ou corpo cru) e dispara
// a importação. Responde 201 mesmo quando o parse falhou: o resultado está no
// campo status do registro devolvido.
// POST /api/nfe/importacoes
func (h *NFeHandler) Importar(c *fiber.Ctx) error {
	nome, xmlBytes, err := lerArquivoXML(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: err.Error()})
	}
	if len(xmlBytes) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "XML vazio"})
	}

	imp, err := h.importUC.Importar(c.Context(), nome, xmlBytes)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromImportacao(imp))
}

// Listar devolve o histórico de importações paginado.
// GET /api/nfe/importacoes
func (h *NFeHandler) Listar(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginação inválida"})
	}
	page.DefaultPage()

	lista, err := h.importUC.Listar(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.ImportacaoResponse, 0, len(lista))
	for _, imp := range lista {
		out = append(out, dto.FromImportacao(imp))
	}
	return c.JSON(out)
}

// Obter devolve a importação com seus itens. O frontend consulta esta rota
// até o status sair de PROCESSANDO.
// GET /api/nfe/importacoes/:id
func (h *NFeHandler) Obter(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	imp, err := h.importUC.Obter(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "importação não encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	itens, err := h.importUC.ListarItens(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ImportacaoDetalheResponse{
		ImportacaoResponse: dto.FromImportacao(imp),
		Itens:              dto.FromImportacaoItens(itens),
	})
}

// Reprocessar recalcula contadores e devolve o registro atualizado.
// POST /api/nfe/importacoes/:id/reprocessar
func (h *NFeHandler) Reprocessar(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	if err := h.importUC.Reprocessar(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "importação não encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	imp, err := h.importUC.Obter(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.FromImportacao(imp))
}

// Excluir remove a importação, seus itens e o XML arquivado.
// DELETE /api/nfe/importacoes/:id
func (h *NFeHandler) Excluir(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	if err := h.importUC.Excluir(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "importação não encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Baixar reconstrói o documento pela chave de acesso (local primeiro, SEFAZ
// em seguida) no formato pedido.
// GET /api/nfe/notas/:chave/download?formato=xml|pdf
func (h *NFeHandler) Baixar(c *fiber.Ctx) error {
	chave := c.Params("chave")
	formato := c.Query("formato", appnfe.FormatoXML)

	download, err := h.downloadUC.Baixar(c.Context(), chave, formato)
	if err != nil {
		return responderErroBusca(c, err)
	}

	nomeArquivo := chave + "." + formato
	c.Set(fiber.HeaderContentType, download.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+nomeArquivo+`"`)
	c.Set("X-Documento-Origem", string(download.Origem))
	return c.Send(download.Conteudo)
}

// Config informa se o canal SEFAZ está operacional e em qual ambiente, sem
// expor nenhum dado do certificado.
// GET /api/nfe/config
func (h *NFeHandler) Config(c *fiber.Ctx) error {
	return c.JSON(dto.ConfigSEFAZResponse{
		Configurado: h.downloadUC.Configurado(),
		Ambiente:    h.downloadUC.Ambiente(),
	})
}

// ── helpers ───────────────────────────────────────────────────────────────────

// lerArquivoXML aceita multipart (campo "arquivo") ou o XML direto no corpo.
func lerArquivoXML(c *fiber.Ctx) (nome string, conteudo []byte, err error) {
	if fh, ferr := c.FormFile("arquivo"); ferr == nil {
		f, err := fh.Open()
		if err != nil {
			return "", nil, err
		}
		defer f.Close()
		conteudo, err = io.ReadAll(f)
		if err != nil {
			return "", nil, err
		}
		return fh.Filename, conteudo, nil
	}
	return "nota.xml", c.Body(), nil
}

// responderErroBusca mapeia os erros do domínio de busca para HTTP.
func responderErroBusca(c *fiber.Ctx, err error) error {
	var rejeicao *domnfe.RejeicaoSEFAZ
	var transporte *domnfe.ErroTransporte

	switch {
	case errors.Is(err, domnfe.ErrChaveInvalida):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "CHAVE_INVALIDA", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domnfe.ErrNaoConfigurado), errors.Is(err, domnfe.ErrIdentidadeAusente):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "SEFAZ_NAO_CONFIGURADO", Message: err.Error()})
	case errors.Is(err, domnfe.ErrPayloadVazio):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "nota não localizada na SEFAZ"})
	case errors.As(err, &rejeicao):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "SEFAZ_REJEICAO", Message: rejeicao.Error()})
	case errors.As(err, &transporte):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "SEFAZ_INDISPONIVEL", Message: transporte.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
