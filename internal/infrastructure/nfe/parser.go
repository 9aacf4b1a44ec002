// Package nfe implementa a infraestrutura do subsistema de NF-e: parser do XML,
// cliente SOAP da distribuição de DF-e (SEFAZ), codec do payload docZip e
// carga da identidade TLS (certificado digital A1).
package nfe

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	domnfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/nfe"
)

// Parser converte bytes de XML de NF-e em uma NotaFiscal validada.
// Sem I/O nem efeitos colaterais; seguro para uso concorrente.
//
// Ordem de validação:
//  1. localizar infNFe e seu atributo Id;
//  2. chave de acesso: 44 dígitos após remover o prefixo "NFe" (ErrChaveInvalida);
//  3. emitente e data de emissão: data inválida/ausente cai para time.Now(),
//     nunca falha sozinha (fallback documentado e intencionalmente não
//     determinístico);
//  4. itens: números normalizados (vírgula decimal -> ponto, não parseável -> 0);
//     itens com quantidade <= 0 ou total < 0 são descartados, não derrubam a nota;
//  5. zero itens sobreviventes -> ErrSemItensValidos;
//  6. vNF declarado, 0 quando ausente.
type Parser struct{}

// NewParser constrói o parser.
func NewParser() *Parser { return &Parser{} }

// Parse interpreta o XML e devolve a nota validada.
func (p *Parser) Parse(raw []byte) (*domnfe.NotaFiscal, error) {
	doc := etree.NewDocument()
	// NF-e antiga circula em ISO-8859-1; o portal exige UTF-8 mas o mundo não obedece.
	doc.ReadSettings.CharsetReader = charsetReader

	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("ler XML da NF-e: %w", err)
	}

	// Aceita tanto o envelope nfeProc quanto a NFe crua.
	infNFe := doc.FindElement("//infNFe")
	if infNFe == nil {
		return nil, fmt.Errorf("elemento infNFe não encontrado: %w", domnfe.ErrChaveInvalida)
	}

	chave, err := domnfe.NovaChave(infNFe.SelectAttrValue("Id", ""))
	if err != nil {
		return nil, err
	}

	nota := &domnfe.NotaFiscal{
		Chave:       chave,
		Numero:      childText(infNFe, "ide/nNF", domnfe.NumeroIndefinido),
		Emitente:    parseEmitente(infNFe.FindElement("emit")),
		DataEmissao: parseDataEmissao(infNFe),
		ValorTotal:  decimalOuZero(childText(infNFe, "total/ICMSTot/vNF", "")),
	}

	for _, det := range infNFe.SelectElements("det") {
		prod := det.FindElement("prod")
		if prod == nil {
			continue
		}
		item := domnfe.Item{
			Codigo:        childText(prod, "cProd", ""),
			Descricao:     childText(prod, "xProd", ""),
			Quantidade:    decimalOuZero(childText(prod, "qCom", "")),
			ValorUnitario: decimalOuZero(childText(prod, "vUnCom", "")),
			Unidade:       childText(prod, "uCom", ""),
			ValorTotal:    decimalOuZero(childText(prod, "vProd", "")),
		}
		// Item malformado é descartado em silêncio; a nota segue.
		if item.Quantidade.LessThanOrEqual(decimal.Zero) || item.ValorTotal.IsNegative() {
			continue
		}
		nota.Itens = append(nota.Itens, item)
	}

	if len(nota.Itens) == 0 {
		return nil, domnfe.ErrSemItensValidos
	}

	return nota, nil
}

// parseEmitente extrai os dados do fornecedor. Todos os campos de endereço são
// opcionais; ausências viram string vazia, nunca erro.
func parseEmitente(emit *etree.Element) domnfe.Emitente {
	if emit == nil {
		return domnfe.Emitente{}
	}
	e := domnfe.Emitente{
		Nome: childText(emit, "xNome", ""),
		CNPJ: childText(emit, "CNPJ", ""),
	}
	if e.CNPJ == "" {
		e.CNPJ = childText(emit, "CPF", "")
	}
	if ender := emit.FindElement("enderEmit"); ender != nil {
		partes := make([]string, 0, 4)
		for _, tag := range []string{"xLgr", "nro", "xBairro", "xMun"} {
			if s := childText(ender, tag, ""); s != "" {
				partes = append(partes, s)
			}
		}
		if uf := childText(ender, "UF", ""); uf != "" {
			partes = append(partes, uf)
		}
		e.Endereco = strings.Join(partes, ", ")
	}
	return e
}

// parseDataEmissao tenta dhEmi (layout 4.x, RFC3339) e depois dEmi (layouts
// 2.x/3.x, data simples). Valor ausente ou inválido cai para o agora.
func parseDataEmissao(infNFe *etree.Element) time.Time {
	if s := childText(infNFe, "ide/dhEmi", ""); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}
	if s := childText(infNFe, "ide/dEmi", ""); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t
		}
	}
	return time.Now()
}

// childText devolve o texto do elemento no caminho dado, ou def se ausente/vazio.
func childText(el *etree.Element, path, def string) string {
	child := el.FindElement(path)
	if child == nil {
		return def
	}
	s := strings.TrimSpace(child.Text())
	if s == "" {
		return def
	}
	return s
}

// decimalOuZero normaliza vírgula decimal para ponto e interpreta como decimal.
// String não parseável vale 0, não erro.
func decimalOuZero(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// charsetReader cobre os encodings legados vistos em XML de NF-e.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	default:
		return input, nil
	}
}
