package dto

import (
	"github.com/shopspring/decimal"

	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/entity"
)

// ImportacaoResponse registro de importação nas respostas.
type ImportacaoResponse struct {
	ID               string `json:"id"`
	NomeArquivo      string `json:"nome_arquivo"`
	Status           string `json:"status"` // PROCESSANDO|CONCLUIDO|ERRO|PARCIAL
	ItensEncontrados int    `json:"itens_encontrados"`
	ItensCriados     int    `json:"itens_criados"`
	ItensAtualizados int    `json:"itens_atualizados"`
	Fornecedor       string `json:"fornecedor,omitempty"`
	ChaveAcesso      string `json:"chave_acesso,omitempty"`
	MensagemErro     string `json:"mensagem_erro,omitempty"`
	CriadoEm         string `json:"criado_em"`
	ProcessadoEm     string `json:"processado_em,omitempty"`
}

// ImportacaoDetalheResponse importação com itens para GET /api/nfe/importacoes/:id.
type ImportacaoDetalheResponse struct {
	ImportacaoResponse
	Itens []ImportacaoItemResponse `json:"itens"`
}

// ImportacaoItemResponse linha de produto importada.
type ImportacaoItemResponse struct {
	ID            string          `json:"id"`
	Codigo        string          `json:"codigo"`
	Descricao     string          `json:"descricao"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	ValorUnitario decimal.Decimal `json:"valor_unitario"`
	Unidade       string          `json:"unidade"`
	ValorTotal    decimal.Decimal `json:"valor_total"`
}

// ConfigSEFAZResponse resposta de GET /api/nfe/config: informa se o canal
// SEFAZ está operacional (certificado + identidade) e em qual ambiente.
type ConfigSEFAZResponse struct {
	Configurado bool   `json:"configurado"`
	Ambiente    string `json:"ambiente"` // "1" produção | "2" homologação
}

// FromImportacao converte a entidade para o DTO de resposta.
func FromImportacao(imp *entity.NFeImport) ImportacaoResponse {
	resp := ImportacaoResponse{
		ID:               imp.ID,
		NomeArquivo:      imp.NomeArquivo,
		Status:           imp.Status,
		ItensEncontrados: imp.ItensEncontrados,
		ItensCriados:     imp.ItensCriados,
		ItensAtualizados: imp.ItensAtualizados,
		Fornecedor:       imp.Fornecedor,
		ChaveAcesso:      imp.ChaveAcesso,
		MensagemErro:     imp.MensagemErro,
		CriadoEm:         imp.CriadoEm.Format("2006-01-02T15:04:05Z07:00"),
	}
	if imp.ProcessadoEm != nil {
		resp.ProcessadoEm = imp.ProcessadoEm.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// FromImportacaoItens converte os itens da importação para o DTO de resposta.
func FromImportacaoItens(itens []*entity.NFeImportItem) []ImportacaoItemResponse {
	out := make([]ImportacaoItemResponse, 0, len(itens))
	for _, item := range itens {
		out = append(out, ImportacaoItemResponse{
			ID:            item.ID,
			Codigo:        item.Codigo,
			Descricao:     item.Descricao,
			Quantidade:    item.Quantidade,
			ValorUnitario: item.ValorUnitario,
			Unidade:       item.Unidade,
			ValorTotal:    item.ValorTotal,
		})
	}
	return out
}
