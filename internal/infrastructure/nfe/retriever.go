package nfe

import (
	"context"
	"fmt"

	domnfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/nfe"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/pkg/logger"
)

// LocalXMLFinder é o porto de consulta ao armazenamento local de XML por
// chave de acesso. Devolve string vazia quando não há documento arquivado.
// Satisfeito pelo repositório de importações.
type LocalXMLFinder interface {
	FindRawXML(ctx context.Context, chave string) (string, error)
}

// SEFAZClient é o porto da consulta remota. Satisfeito pelo SOAPClient;
// nos testes injeta-se um fake com contador de chamadas.
type SEFAZClient interface {
	BuscarPorChave(ctx context.Context, chave domnfe.ChaveAcesso) (string, error)
	Configurado() bool
	Ambiente() string
}

// Retriever resolve o XML de uma NF-e: primeiro o armazenamento local e,
// somente em cache miss, o web service da SEFAZ.
//
// A consulta local e a remota são sequenciais por chamada; chamadas
// concorrentes para chaves diferentes são independentes. Chamadas
// concorrentes para a mesma chave não são deduplicadas aqui; coordenação
// "no máximo uma em voo por chave" é responsabilidade de quem chama.
type Retriever struct {
	local LocalXMLFinder
	sefaz SEFAZClient
	log   *logger.Logger
}

// NewRetriever constrói o resolvedor.
func NewRetriever(local LocalXMLFinder, sefaz SEFAZClient, log *logger.Logger) *Retriever {
	return &Retriever{local: local, sefaz: sefaz, log: log}
}

// Buscar devolve o documento com a procedência marcada. Quando existe XML
// local não vazio, nenhuma chamada de rede acontece.
func (r *Retriever) Buscar(ctx context.Context, chave domnfe.ChaveAcesso) (*domnfe.DocumentoDFe, error) {
	xmlLocal, err := r.local.FindRawXML(ctx, chave.String())
	if err != nil {
		return nil, fmt.Errorf("consultar XML local: %w", err)
	}
	if xmlLocal != "" {
		r.log.Debug().Str("chave", chave.String()).Msg("XML resolvido do armazenamento local")
		return &domnfe.DocumentoDFe{XML: xmlLocal, Origem: domnfe.OrigemLocal}, nil
	}

	xmlRemoto, err := r.sefaz.BuscarPorChave(ctx, chave)
	if err != nil {
		return nil, err
	}
	return &domnfe.DocumentoDFe{XML: xmlRemoto, Origem: domnfe.OrigemSEFAZ}, nil
}

// Configurado informa, sem I/O de rede, se a consulta remota está habilitada.
func (r *Retriever) Configurado() bool { return r.sefaz.Configurado() }

// Ambiente devolve o tpAmb configurado no cliente remoto.
func (r *Retriever) Ambiente() string { return r.sefaz.Ambiente() }
