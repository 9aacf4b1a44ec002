package nfe_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domnfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/nfe"
	infranfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/infrastructure/nfe"
)

const chaveTeste = "35190712345678000190550010000000011000000010"

// Nota de referência: 3 itens, sendo 1 com quantidade zero (descartado),
// total declarado com vírgula decimal. Números misturam vírgula e ponto de
// propósito: o parser precisa aceitar os dois.
const xmlNotaValida = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe>
    <infNFe Id="NFe35190712345678000190550010000000011000000010" versao="4.00">
      <ide><nNF>1234</nNF><dhEmi>2019-07-01T10:30:00-03:00</dhEmi></ide>
      <emit>
        <CNPJ>12345678000190</CNPJ>
        <xNome>Distribuidora Alvorada LTDA</xNome>
        <enderEmit><xLgr>Rua das Laranjeiras</xLgr><nro>100</nro><xBairro>Centro</xBairro><xMun>Sao Paulo</xMun><UF>SP</UF></enderEmit>
      </emit>
      <det nItem="1"><prod><cProd>A1</cProd><xProd>Arroz 5kg</xProd><uCom>UN</uCom><qCom>10</qCom><vUnCom>10,00</vUnCom><vProd>100,00</vProd></prod></det>
      <det nItem="2"><prod><cProd>B2</cProd><xProd>Feijao 1kg</xProd><uCom>UN</uCom><qCom>5</qCom><vUnCom>10.10</vUnCom><vProd>50.50</vProd></prod></det>
      <det nItem="3"><prod><cProd>C3</cProd><xProd>Brinde</xProd><uCom>UN</uCom><qCom>0</qCom><vUnCom>1.00</vUnCom><vProd>0.00</vProd></prod></det>
      <total><ICMSTot><vNF>150,50</vNF></ICMSTot></total>
    </infNFe>
  </NFe>
</nfeProc>`

func TestParse_NotaValida(t *testing.T) {
	p := infranfe.NewParser()

	nota, err := p.Parse([]byte(xmlNotaValida))
	require.NoError(t, err)

	assert.Equal(t, chaveTeste, nota.Chave.String())
	assert.Equal(t, "1234", nota.Numero)
	assert.Equal(t, "Distribuidora Alvorada LTDA", nota.Emitente.Nome)
	assert.Equal(t, "12345678000190", nota.Emitente.CNPJ)
	assert.Contains(t, nota.Emitente.Endereco, "Rua das Laranjeiras")
	assert.Contains(t, nota.Emitente.Endereco, "SP")

	// 3 declarados, 2 válidos: o item com qCom=0 é descartado sem derrubar a nota.
	require.Len(t, nota.Itens, 2)
	assert.Equal(t, "A1", nota.Itens[0].Codigo)
	assert.True(t, nota.Itens[0].Quantidade.Equal(decimal.NewFromInt(10)))
	assert.True(t, nota.Itens[0].ValorTotal.Equal(decimal.RequireFromString("100")))
	assert.True(t, nota.Itens[1].ValorUnitario.Equal(decimal.RequireFromString("10.10")))

	// vNF "150,50" normalizado para 150.50
	assert.True(t, nota.ValorTotal.Equal(decimal.RequireFromString("150.50")),
		"total declarado deve valer 150.50, veio %s", nota.ValorTotal)

	emissao, _ := time.Parse(time.RFC3339, "2019-07-01T10:30:00-03:00")
	assert.True(t, nota.DataEmissao.Equal(emissao))
}

// O parse é puro: bytes idênticos produzem notas idênticas (a nota de
// referência tem dhEmi, então nem o fallback de "agora" entra em jogo).
func TestParse_Deterministico(t *testing.T) {
	p := infranfe.NewParser()

	a, err := p.Parse([]byte(xmlNotaValida))
	require.NoError(t, err)
	b, err := p.Parse([]byte(xmlNotaValida))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestParse_RaizNFeSemEnvelope(t *testing.T) {
	semEnvelope := strings.TrimSuffix(strings.TrimSpace(xmlNotaValida), "</nfeProc>")
	semEnvelope = strings.Replace(semEnvelope, `<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">`, "", 1)
	semEnvelope = strings.Replace(semEnvelope, "<NFe>", `<NFe xmlns="http://www.portalfiscal.inf.br/nfe">`, 1)

	nota, err := infranfe.NewParser().Parse([]byte(semEnvelope))
	require.NoError(t, err)
	assert.Equal(t, chaveTeste, nota.Chave.String())
}

func TestParse_ChaveInvalida(t *testing.T) {
	casos := map[string]string{
		"id curto":    `Id="NFe123"`,
		"id ausente":  `versao="4.00" data-x="1"`,
		"id sem NFe":  `Id="ZZZ` + chaveTeste + `"`,
	}
	for nome, attr := range casos {
		t.Run(nome, func(t *testing.T) {
			x := strings.Replace(xmlNotaValida, `Id="NFe`+chaveTeste+`" versao="4.00"`, attr, 1)
			_, err := infranfe.NewParser().Parse([]byte(x))
			require.ErrorIs(t, err, domnfe.ErrChaveInvalida)
		})
	}
}

func TestParse_SemItensValidos(t *testing.T) {
	// Todas as quantidades zeradas: a nota inteira falha.
	x := strings.ReplaceAll(xmlNotaValida, "<qCom>10</qCom>", "<qCom>0</qCom>")
	x = strings.ReplaceAll(x, "<qCom>5</qCom>", "<qCom>-1</qCom>")

	_, err := infranfe.NewParser().Parse([]byte(x))
	require.ErrorIs(t, err, domnfe.ErrSemItensValidos)
}

func TestParse_DataEmissaoFallbacks(t *testing.T) {
	t.Run("dEmi de layout antigo", func(t *testing.T) {
		x := strings.Replace(xmlNotaValida, "<dhEmi>2019-07-01T10:30:00-03:00</dhEmi>", "<dEmi>2018-03-15</dEmi>", 1)
		nota, err := infranfe.NewParser().Parse([]byte(x))
		require.NoError(t, err)
		assert.Equal(t, 2018, nota.DataEmissao.Year())
		assert.Equal(t, time.March, nota.DataEmissao.Month())
	})

	t.Run("data ausente cai para agora", func(t *testing.T) {
		// Fallback lossy documentado: intencionalmente não determinístico.
		x := strings.Replace(xmlNotaValida, "<dhEmi>2019-07-01T10:30:00-03:00</dhEmi>", "", 1)
		nota, err := infranfe.NewParser().Parse([]byte(x))
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), nota.DataEmissao, 5*time.Second)
	})

	t.Run("data invalida cai para agora", func(t *testing.T) {
		x := strings.Replace(xmlNotaValida, "2019-07-01T10:30:00-03:00", "ontem de manha", 1)
		nota, err := infranfe.NewParser().Parse([]byte(x))
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), nota.DataEmissao, 5*time.Second)
	})
}

func TestParse_NumerosNaoParseaveisValemZero(t *testing.T) {
	x := strings.Replace(xmlNotaValida, "<vNF>150,50</vNF>", "<vNF>abc</vNF>", 1)
	x = strings.Replace(x, "<vUnCom>10,00</vUnCom>", "<vUnCom>???</vUnCom>", 1)

	nota, err := infranfe.NewParser().Parse([]byte(x))
	require.NoError(t, err)
	assert.True(t, nota.ValorTotal.IsZero())
	assert.True(t, nota.Itens[0].ValorUnitario.IsZero())
}

func TestParse_NumeroAusenteUsaSentinela(t *testing.T) {
	x := strings.Replace(xmlNotaValida, "<nNF>1234</nNF>", "", 1)
	nota, err := infranfe.NewParser().Parse([]byte(x))
	require.NoError(t, err)
	assert.Equal(t, domnfe.NumeroIndefinido, nota.Numero)
}

func TestParse_Latin1(t *testing.T) {
	x := strings.Replace(xmlNotaValida, `encoding="UTF-8"`, `encoding="ISO-8859-1"`, 1)
	x = strings.Replace(x, "Feijao 1kg", "Feij\xe3o 1kg", 1) // 0xE3 = "ã" em latin-1

	nota, err := infranfe.NewParser().Parse([]byte(x))
	require.NoError(t, err)
	require.Len(t, nota.Itens, 2)
	assert.Equal(t, "Feijão 1kg", nota.Itens[1].Descricao)
}

func TestParse_XMLMalformado(t *testing.T) {
	_, err := infranfe.NewParser().Parse([]byte("<nfeProc><NFe>"))
	require.Error(t, err)
}
