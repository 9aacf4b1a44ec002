// Package pdf implementa a geração do DANFE simplificado (Documento Auxiliar
// da Nota Fiscal Eletrônica) a partir de uma nota já interpretada.
//
// Layout da página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emitente + CNPJ  │  N° NF-e + Data de emissão      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CHAVE DE ACESSO: 44 dígitos + código de barras             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABELA: Código | Descrição | Un | Qtd | V.Unit | V.Total   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAIS: VALOR TOTAL DA NOTA                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RODAPÉ: consulta pela chave no Portal Nacional da NF-e     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appnfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/application/nfe"
	domnfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/nfe"
)

// ── Paleta de cores ───────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoDANFEGenerator implementa nfe.DANFEGenerator usando Maroto v2.
type MarotoDANFEGenerator struct{}

// NewMarotoDANFEGenerator constrói o gerador.
func NewMarotoDANFEGenerator() *MarotoDANFEGenerator { return &MarotoDANFEGenerator{} }

var _ appnfe.DANFEGenerator = (*MarotoDANFEGenerator)(nil)

// Gerar gera o DANFE simplificado e devolve seus bytes.
func (g *MarotoDANFEGenerator) Gerar(_ context.Context, nota *domnfe.NotaFiscal) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("DANFE Simplificado", true).
		WithAuthor(nota.Emitente.Nome, true).
		Build()

	m := maroto.New(cfg)

	// Header principal
	m.AddRows(headerRow(nota))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(chaveRows(nota)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	// Tabela de itens
	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(nota) {
		m.AddRows(r)
	}

	// Totais
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(nota))

	// Rodapé
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(rodapeRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: gerar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Seções ────────────────────────────────────────────────────────────────────

// headerRow: emitente + CNPJ (esq) e número + data de emissão (dir).
func headerRow(nota *domnfe.NotaFiscal) core.Row {
	data := nota.DataEmissao.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New(nota.Emitente.Nome, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("CNPJ: "+nonEmpty(nota.Emitente.CNPJ, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
			text.New(nonEmpty(nota.Emitente.Endereco, ""), props.Text{
				Size: 7, Top: 14, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("DANFE SIMPLIFICADO — NF-e", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Nº "+nota.Numero, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Emissão: "+data, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// chaveRows: chave de acesso em texto agrupado + código de barras Code 128.
func chaveRows(nota *domnfe.NotaFiscal) []core.Row {
	chave := string(nota.Chave)
	return []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("CHAVE DE ACESSO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
		row.New(5).Add(col.New(12).Add(
			text.New(agruparChave(chave), props.Text{
				Size: 9, Align: align.Center, Top: 1,
			}),
		)),
		row.New(14).Add(
			col.New(2),
			col.New(8).Add(code.NewBar(chave, props.Barcode{
				Percent: 90,
				Center:  true,
			})),
			col.New(2),
		),
	}
}

// tableHeaderRow: cabeçalho da tabela de itens.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Código", 2, align.Left),
		h("Descrição do produto", 4, align.Left),
		h("Un", 1, align.Center),
		h("Qtd", 1, align.Right),
		h("V. Unit.", 2, align.Right),
		h("V. Total", 2, align.Right),
	)
}

// tableItemRows: uma linha por item da nota.
func tableItemRows(nota *domnfe.NotaFiscal) []core.Row {
	result := make([]core.Row, 0, len(nota.Itens))
	for _, item := range nota.Itens {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(
				item.Codigo,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(4).Add(text.New(
				item.Descricao,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				item.Unidade,
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(1).Add(text.New(
				item.Quantidade.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"R$ "+item.ValorUnitario.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"R$ "+item.ValorTotal.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalRow: valor total da nota alinhado à direita.
func totalRow(nota *domnfe.NotaFiscal) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("VALOR TOTAL DA NOTA:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(3).Add(text.New("R$ "+nota.ValorTotal.StringFixed(2), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

// rodapeRow: orientação de consulta no Portal Nacional.
func rodapeRow() core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New(
			"Consulte a autenticidade desta NF-e pela chave de acesso no Portal "+
				"Nacional da NF-e (www.nfe.fazenda.gov.br). Este documento é uma "+
				"representação simplificada da nota fiscal eletrônica.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// agruparChave separa os 44 dígitos em grupos de 4 para leitura.
// Ex: "3519...0010" → "3519 0712 3456 ...".
func agruparChave(chave string) string {
	var b strings.Builder
	for i, c := range chave {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(c)
	}
	return b.String()
}
