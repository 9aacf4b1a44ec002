// Package nfe contém os casos de uso do subsistema de importação e busca de
// NF-e: orquestração da importação, reprocessamento, exclusão e download.
package nfe

import (
	"context"

	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/entity"
	domnfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/nfe"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/repository"
)

// Parser converte bytes de XML em uma nota validada. Implementado pela
// infraestrutura (etree); nos testes injeta-se um fake.
type Parser interface {
	Parse(raw []byte) (*domnfe.NotaFiscal, error)
}

// Retriever resolve o XML de uma nota por chave de acesso (local primeiro,
// SEFAZ em cache miss), com verificação de configuração sem I/O.
type Retriever interface {
	Buscar(ctx context.Context, chave domnfe.ChaveAcesso) (*domnfe.DocumentoDFe, error)
	Configurado() bool
	Ambiente() string
}

// ImportTxRunner executa fn dentro de uma transação com os repositórios de
// importação e de catálogo atados à mesma tx. Erro de fn causa rollback.
type ImportTxRunner interface {
	RunImport(ctx context.Context, fn func(
		importRepo repository.NFeImportRepository,
		produtoRepo repository.ProdutoRepository,
	) error) error
}

// VinculoCatalogo é o resultado da vinculação dos itens ao catálogo.
type VinculoCatalogo struct {
	Criados     int
	Atualizados int
	Falhas      []string // mensagens por item; vazio = tudo vinculado
}

// CatalogoLinker vincula itens importados a produtos do catálogo usando o
// repositório da transação corrente. Falhas por item são contidas (entram em
// Falhas), nunca derrubam a importação inteira.
type CatalogoLinker interface {
	VincularInTx(ctx context.Context, produtoRepo repository.ProdutoRepository, itens []*entity.NFeImportItem) VinculoCatalogo
}

// DANFEGenerator gera a representação gráfica (DANFE simplificado) de uma nota.
type DANFEGenerator interface {
	Gerar(ctx context.Context, nota *domnfe.NotaFiscal) ([]byte, error)
}
