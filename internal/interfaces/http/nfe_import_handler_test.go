package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appnfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/application/nfe"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/entity"
	domnfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/nfe"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/repository"
	apphttp "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/interfaces/http"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes em memória
// ──────────────────────────────────────────────────────────────────────────────

const chaveTeste = "35190712345678000190550010000000011000000010"

type memRepo struct {
	imports map[string]*entity.NFeImport
	itens   map[string][]*entity.NFeImportItem
	xml     map[string]string
}

func newMemRepo() *memRepo {
	return &memRepo{
		imports: map[string]*entity.NFeImport{},
		itens:   map[string][]*entity.NFeImportItem{},
		xml:     map[string]string{},
	}
}

func (r *memRepo) Create(_ context.Context, imp *entity.NFeImport) error {
	c := *imp
	r.imports[imp.ID] = &c
	return nil
}

func (r *memRepo) Update(_ context.Context, imp *entity.NFeImport) error {
	c := *imp
	r.imports[imp.ID] = &c
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*entity.NFeImport, error) {
	imp, ok := r.imports[id]
	if !ok {
		return nil, nil
	}
	c := *imp
	return &c, nil
}

func (r *memRepo) List(_ context.Context, _, _ int) ([]*entity.NFeImport, error) {
	var out []*entity.NFeImport
	for _, imp := range r.imports {
		c := *imp
		out = append(out, &c)
	}
	return out, nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	delete(r.imports, id)
	return nil
}

func (r *memRepo) CreateItems(_ context.Context, importID string, itens []*entity.NFeImportItem) error {
	r.itens[importID] = append(r.itens[importID], itens...)
	return nil
}

func (r *memRepo) ListItems(_ context.Context, importID string) ([]*entity.NFeImportItem, error) {
	return r.itens[importID], nil
}

func (r *memRepo) DeleteItems(_ context.Context, importID string) error {
	delete(r.itens, importID)
	return nil
}

func (r *memRepo) StoreRawXML(_ context.Context, chave, xml string) error {
	r.xml[chave] = xml
	return nil
}

func (r *memRepo) FindRawXML(_ context.Context, chave string) (string, error) {
	return r.xml[chave], nil
}

func (r *memRepo) DeleteRawXML(_ context.Context, chave string) error {
	delete(r.xml, chave)
	return nil
}

type produtoStub struct{}

func (produtoStub) Create(context.Context, *entity.Produto) error { return nil }
func (produtoStub) Update(context.Context, *entity.Produto) error { return nil }
func (produtoStub) GetByCodigo(context.Context, string) (*entity.Produto, error) {
	return nil, nil
}

type txStub struct{ repo *memRepo }

func (s txStub) RunImport(_ context.Context, fn func(repository.NFeImportRepository, repository.ProdutoRepository) error) error {
	return fn(s.repo, produtoStub{})
}

type parserStub struct {
	nota *domnfe.NotaFiscal
	err  error
}

func (p parserStub) Parse([]byte) (*domnfe.NotaFiscal, error) { return p.nota, p.err }

type retrieverStub struct {
	doc         *domnfe.DocumentoDFe
	err         error
	configurado bool
}

func (r retrieverStub) Buscar(context.Context, domnfe.ChaveAcesso) (*domnfe.DocumentoDFe, error) {
	return r.doc, r.err
}
func (r retrieverStub) Configurado() bool { return r.configurado }
func (r retrieverStub) Ambiente() string  { return "2" }

type danfeStub struct{}

func (danfeStub) Gerar(context.Context, *domnfe.NotaFiscal) ([]byte, error) {
	return []byte("%PDF-1.7 stub"), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de teste
// ──────────────────────────────────────────────────────────────────────────────

func notaTeste() *domnfe.NotaFiscal {
	return &domnfe.NotaFiscal{
		Chave:       domnfe.ChaveAcesso(chaveTeste),
		Numero:      "123",
		Emitente:    domnfe.Emitente{Nome: "Distribuidora Alfa LTDA", CNPJ: "12345678000190"},
		DataEmissao: time.Date(2019, 7, 10, 12, 0, 0, 0, time.UTC),
		ValorTotal:  decimal.RequireFromString("150.50"),
		Itens: []domnfe.Item{
			{
				Codigo:        "P001",
				Descricao:     "Parafuso sextavado",
				Quantidade:    decimal.NewFromInt(10),
				ValorUnitario: decimal.RequireFromString("1.50"),
				Unidade:       "UN",
				ValorTotal:    decimal.RequireFromString("15.00"),
			},
		},
	}
}

type deps struct {
	repo      *memRepo
	parser    parserStub
	retriever retrieverStub
}

func buildTestApp(d deps) *fiber.App {
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	importUC := appnfe.NewImportUseCase(d.repo, txStub{repo: d.repo}, d.parser, nil, log)
	downloadUC := appnfe.NewDownloadUseCase(d.retriever, d.parser, danfeStub{})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{ImportUC: importUC, DownloadUC: downloadUC})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de importação
// ──────────────────────────────────────────────────────────────────────────────

func TestImportar_XMLValido_Retorna201Concluido(t *testing.T) {
	app := buildTestApp(deps{repo: newMemRepo(), parser: parserStub{nota: notaTeste()}})

	resp, body := doJSON(t, app, http.MethodPost, "/api/nfe/importacoes", "<nfeProc>...</nfeProc>")

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, entity.ImportStatusConcluido, body["status"])
	assert.Equal(t, chaveTeste, body["chave_acesso"])
	assert.Equal(t, float64(1), body["itens_encontrados"])
}

func TestImportar_ParseFalha_Retorna201ComStatusErro(t *testing.T) {
	app := buildTestApp(deps{
		repo:   newMemRepo(),
		parser: parserStub{err: domnfe.ErrChaveInvalida},
	})

	resp, body := doJSON(t, app, http.MethodPost, "/api/nfe/importacoes", "<xml ruim>")

	assert.Equal(t, http.StatusCreated, resp.StatusCode,
		"falha de parse vira registro ERRO, não erro HTTP")
	assert.Equal(t, entity.ImportStatusErro, body["status"])
	assert.NotEmpty(t, body["mensagem_erro"])
}

func TestImportar_CorpoVazio_Retorna400(t *testing.T) {
	app := buildTestApp(deps{repo: newMemRepo(), parser: parserStub{nota: notaTeste()}})

	resp, body := doJSON(t, app, http.MethodPost, "/api/nfe/importacoes", "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", body["code"])
}

func TestObter_ComItens(t *testing.T) {
	repo := newMemRepo()
	app := buildTestApp(deps{repo: repo, parser: parserStub{nota: notaTeste()}})

	_, criado := doJSON(t, app, http.MethodPost, "/api/nfe/importacoes", "<nfeProc/>")
	id := criado["id"].(string)

	resp, body := doJSON(t, app, http.MethodGet, "/api/nfe/importacoes/"+id, "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, body["id"])
	itens, ok := body["itens"].([]any)
	require.True(t, ok)
	require.Len(t, itens, 1)
	item := itens[0].(map[string]any)
	assert.Equal(t, "P001", item["codigo"])
}

func TestObter_NaoEncontrada_Retorna404(t *testing.T) {
	app := buildTestApp(deps{repo: newMemRepo(), parser: parserStub{nota: notaTeste()}})

	resp, body := doJSON(t, app, http.MethodGet, "/api/nfe/importacoes/inexistente", "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestListar_DevolveHistorico(t *testing.T) {
	repo := newMemRepo()
	app := buildTestApp(deps{repo: repo, parser: parserStub{nota: notaTeste()}})

	doJSON(t, app, http.MethodPost, "/api/nfe/importacoes", "<nfeProc/>")
	doJSON(t, app, http.MethodPost, "/api/nfe/importacoes", "<nfeProc/>")

	req := httptest.NewRequest(http.MethodGet, "/api/nfe/importacoes?limit=10&offset=0", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var lista []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lista))
	assert.Len(t, lista, 2)
}

func TestReprocessar_Retorna200Concluido(t *testing.T) {
	repo := newMemRepo()
	app := buildTestApp(deps{repo: repo, parser: parserStub{nota: notaTeste()}})

	_, criado := doJSON(t, app, http.MethodPost, "/api/nfe/importacoes", "<nfeProc/>")
	id := criado["id"].(string)

	resp, body := doJSON(t, app, http.MethodPost, "/api/nfe/importacoes/"+id+"/reprocessar", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.ImportStatusConcluido, body["status"])
}

func TestExcluir_RemoveRegistroEItens(t *testing.T) {
	repo := newMemRepo()
	app := buildTestApp(deps{repo: repo, parser: parserStub{nota: notaTeste()}})

	_, criado := doJSON(t, app, http.MethodPost, "/api/nfe/importacoes", "<nfeProc/>")
	id := criado["id"].(string)

	resp, _ := doJSON(t, app, http.MethodDelete, "/api/nfe/importacoes/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/nfe/importacoes/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, repo.itens[id])
	assert.Empty(t, repo.xml[chaveTeste])
}

func TestExcluir_NaoEncontrada_Retorna404(t *testing.T) {
	app := buildTestApp(deps{repo: newMemRepo(), parser: parserStub{nota: notaTeste()}})

	resp, _ := doJSON(t, app, http.MethodDelete, "/api/nfe/importacoes/inexistente", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de download e config
// ──────────────────────────────────────────────────────────────────────────────

func TestBaixar_XML_DevolveDocumentoComOrigem(t *testing.T) {
	app := buildTestApp(deps{
		repo:      newMemRepo(),
		parser:    parserStub{nota: notaTeste()},
		retriever: retrieverStub{doc: &domnfe.DocumentoDFe{XML: "<nfeProc/>", Origem: domnfe.OrigemLocal}},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/nfe/notas/"+chaveTeste+"/download?formato=xml", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/xml", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "local", resp.Header.Get("X-Documento-Origem"))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), chaveTeste+".xml")

	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "<nfeProc/>", string(raw))
}

func TestBaixar_PDF_DevolveDANFE(t *testing.T) {
	app := buildTestApp(deps{
		repo:      newMemRepo(),
		parser:    parserStub{nota: notaTeste()},
		retriever: retrieverStub{doc: &domnfe.DocumentoDFe{XML: "<nfeProc/>", Origem: domnfe.OrigemSEFAZ}},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/nfe/notas/"+chaveTeste+"/download?formato=pdf", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "sefaz", resp.Header.Get("X-Documento-Origem"))
}

func TestBaixar_ChaveInvalida_Retorna400(t *testing.T) {
	app := buildTestApp(deps{repo: newMemRepo(), parser: parserStub{nota: notaTeste()}})

	resp, body := doJSON(t, app, http.MethodGet, "/api/nfe/notas/123/download", "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "CHAVE_INVALIDA", body["code"])
}

func TestBaixar_RejeicaoSEFAZ_Retorna422(t *testing.T) {
	app := buildTestApp(deps{
		repo:      newMemRepo(),
		parser:    parserStub{nota: notaTeste()},
		retriever: retrieverStub{err: &domnfe.RejeicaoSEFAZ{CStat: "128", XMotivo: "Lote nao processado"}},
	})

	resp, body := doJSON(t, app, http.MethodGet, "/api/nfe/notas/"+chaveTeste+"/download", "")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "SEFAZ_REJEICAO", body["code"])
	assert.Contains(t, body["message"], "128")
}

func TestBaixar_SemConfiguracao_Retorna503(t *testing.T) {
	app := buildTestApp(deps{
		repo:      newMemRepo(),
		parser:    parserStub{nota: notaTeste()},
		retriever: retrieverStub{err: domnfe.ErrNaoConfigurado},
	})

	resp, body := doJSON(t, app, http.MethodGet, "/api/nfe/notas/"+chaveTeste+"/download", "")

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "SEFAZ_NAO_CONFIGURADO", body["code"])
}

func TestConfig_InformaEstadoDoCanal(t *testing.T) {
	app := buildTestApp(deps{
		repo:      newMemRepo(),
		parser:    parserStub{nota: notaTeste()},
		retriever: retrieverStub{configurado: true},
	})

	resp, body := doJSON(t, app, http.MethodGet, "/api/nfe/config", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["configurado"])
	assert.Equal(t, "2", body["ambiente"])
}
