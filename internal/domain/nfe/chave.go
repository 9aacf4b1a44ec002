// Package nfe contém os objetos de valor da Nota Fiscal Eletrônica:
// chave de acesso, nota parseada e a taxonomia de erros do subsistema.
package nfe

import (
	"fmt"
	"strings"
)

// TamanhoChave é o comprimento fixo da chave de acesso da NF-e.
const TamanhoChave = 44

// prefixoChave é o prefixo usado no atributo Id de infNFe ("NFe" + 44 dígitos).
const prefixoChave = "NFe"

// ChaveAcesso identifica unicamente uma NF-e: exatamente 44 dígitos ASCII.
type ChaveAcesso string

// NovaChave valida e normaliza uma chave de acesso. Aceita o valor com ou sem
// o prefixo "NFe" do atributo Id. Nunca trunca nem preenche: qualquer coisa
// diferente de 44 dígitos é ErrChaveInvalida.
func NovaChave(raw string) (ChaveAcesso, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, prefixoChave)
	if len(s) != TamanhoChave {
		return "", fmt.Errorf("%w: esperados %d dígitos, recebidos %d", ErrChaveInvalida, TamanhoChave, len(s))
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: caractere não numérico %q", ErrChaveInvalida, r)
		}
	}
	return ChaveAcesso(s), nil
}

func (c ChaveAcesso) String() string { return string(c) }
