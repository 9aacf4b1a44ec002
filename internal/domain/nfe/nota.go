package nfe

import (
	"time"

	"github.com/shopspring/decimal"
)

// NumeroIndefinido é o sentinela usado quando a nota não declara número.
const NumeroIndefinido = "S/N"

// Origem indica a procedência do XML devolvido por uma busca.
type Origem string

const (
	// OrigemLocal indica que o XML veio do armazenamento local (cache hit).
	OrigemLocal Origem = "local"
	// OrigemSEFAZ indica que o XML foi obtido do web service da SEFAZ.
	OrigemSEFAZ Origem = "sefaz"
)

// Emitente dados do fornecedor emissor da nota. Endereço é opcional.
type Emitente struct {
	Nome     string
	CNPJ     string // CNPJ ou CPF do emitente, como veio no XML
	Endereco string // Linha única montada a partir de enderEmit (pode ser vazia)
}

// Item uma linha de produto da nota. Invariante (garantida pelo parser):
// Quantidade > 0 e ValorTotal >= 0.
type Item struct {
	Codigo        string
	Descricao     string
	Quantidade    decimal.Decimal
	ValorUnitario decimal.Decimal
	Unidade       string
	ValorTotal    decimal.Decimal
}

// NotaFiscal é o modelo em memória de uma NF-e validada. Imutável após a
// construção pelo parser; seguro para uso concorrente.
type NotaFiscal struct {
	Chave       ChaveAcesso
	Numero      string
	Emitente    Emitente
	DataEmissao time.Time
	ValorTotal  decimal.Decimal // vNF declarado; 0 quando ausente/não parseável
	Itens       []Item          // nunca vazio em uma nota aceita
}

// DocumentoDFe é o resultado efêmero de uma busca de documento fiscal:
// o XML cru e a procedência (cache local ou consulta ao vivo), exposta para
// auditoria de quem chamou.
type DocumentoDFe struct {
	XML    string
	Origem Origem
}
