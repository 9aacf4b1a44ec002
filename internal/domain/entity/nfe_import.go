package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status do ciclo de vida de uma importação de NF-e.
// O caso de uso de importação é o único escritor do campo Status; depois de
// CONCLUIDO o registro só muda por exclusão explícita.
const (
	ImportStatusProcessando = "PROCESSANDO"
	ImportStatusConcluido   = "CONCLUIDO"
	ImportStatusErro        = "ERRO"
	ImportStatusParcial     = "PARCIAL"
)

// NFeImport é o registro persistido de uma importação de nota fiscal.
type NFeImport struct {
	ID               string
	NomeArquivo      string
	Status           string
	ItensEncontrados int
	ItensCriados     int
	ItensAtualizados int
	Fornecedor       string // snapshot do nome do emitente no momento da importação
	ChaveAcesso      string // vazio quando o parse falhou antes de extrair a chave
	MensagemErro     string // preenchido em ERRO/PARCIAL
	CriadoEm         time.Time
	ProcessadoEm     *time.Time
}

// NFeImportItem é uma linha de produto persistida, vinculada a uma importação.
type NFeImportItem struct {
	ID            string
	ImportID      string
	Codigo        string
	Descricao     string
	Quantidade    decimal.Decimal
	ValorUnitario decimal.Decimal
	Unidade       string
	ValorTotal    decimal.Decimal
}
