package nfe

import (
	"errors"
	"fmt"
)

// Erros do subsistema de NF-e. O parser e o cliente de busca devolvem estes
// erros tipados e não fazem nenhuma recuperação; quem os converte em estado
// durável (registro de importação com status ERRO) é o caso de uso de
// importação.
var (
	// ErrChaveInvalida indica que o atributo identificador não contém uma
	// chave de acesso de exatamente 44 dígitos após remover o prefixo "NFe".
	ErrChaveInvalida = errors.New("chave de acesso inválida")

	// ErrSemItensValidos indica que nenhum item da nota sobreviveu à filtragem
	// (quantidade > 0 e valor total >= 0).
	ErrSemItensValidos = errors.New("nota fiscal sem itens válidos")

	// ErrIdentidadeAusente indica que nem CNPJ nem CPF (ou ambos) do
	// interessado estão configurados; a consulta remota nem chega a ser tentada.
	ErrIdentidadeAusente = errors.New("identidade do interessado ausente: configure exatamente um entre NFE_CNPJ e NFE_CPF")

	// ErrNaoConfigurado indica ausência de material de certificado; falha
	// antes de qualquer handshake TLS.
	ErrNaoConfigurado = errors.New("certificado digital não configurado")

	// ErrPayloadVazio indica que a SEFAZ aceitou a consulta mas não devolveu
	// docZip; anomalia do serviço upstream, não do parser.
	ErrPayloadVazio = errors.New("resposta aceita pela SEFAZ sem docZip")
)

// RejeicaoSEFAZ é devolvido quando o web service responde com um cStat fora do
// conjunto aceito (138/139/140). Condição terminal para a chamada; não há retry
// automático.
type RejeicaoSEFAZ struct {
	CStat   string
	XMotivo string
}

func (e *RejeicaoSEFAZ) Error() string {
	return fmt.Sprintf("SEFAZ rejeitou a consulta [cStat=%s]: %s", e.CStat, e.XMotivo)
}

// ErroTransporte é devolvido em falha HTTP (status não-2xx). Corpo é truncado
// para diagnóstico.
type ErroTransporte struct {
	Status int
	Corpo  string
}

func (e *ErroTransporte) Error() string {
	return fmt.Sprintf("falha de transporte SEFAZ [HTTP %d]: %s", e.Status, e.Corpo)
}
