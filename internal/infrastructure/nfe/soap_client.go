package nfe

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domnfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/nfe"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/pkg/config"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/pkg/logger"
)

// ── Constantes do serviço ──────────────────────────────────────────────────────

const (
	// AmbienteProducao e AmbienteHomologacao são os valores de tpAmb da SEFAZ.
	AmbienteProducao    = "1"
	AmbienteHomologacao = "2"

	soapURLProducao    = "https://www1.nfe.fazenda.gov.br/NFeDistribuicaoDFe/NFeDistribuicaoDFe.asmx"
	soapURLHomologacao = "https://hom1.nfe.fazenda.gov.br/NFeDistribuicaoDFe/NFeDistribuicaoDFe.asmx"

	soap12NS    = "http://www.w3.org/2003/05/soap-envelope"
	nfeWsdlNS   = "http://www.portalfiscal.inf.br/nfe/wsdl/NFeDistribuicaoDFe"
	nfePortalNS = "http://www.portalfiscal.inf.br/nfe"

	versaoDistDFe = "1.01"

	// maxCorpoDiagnostico limita o corpo devolvido em ErroTransporte.
	maxCorpoDiagnostico = 2048
)

// cStatAceitos são os únicos códigos que indicam lote de documentos disponível.
// Qualquer outro cStat é rejeição; o payload não é sequer decodificado.
var cStatAceitos = map[string]bool{
	"138": true,
	"139": true,
	"140": true,
}

// ── Cliente SOAP ───────────────────────────────────────────────────────────────

// SOAPClient consulta o web service NFeDistribuicaoDFe da SEFAZ por chave de
// acesso, via TLS mútuo com o certificado A1 do interessado.
//
// O cliente não faz retry interno; política de repetição é decisão de quem
// chama. O http.Client carrega um timeout generoso (60 s) porque o WS pode
// demorar vários segundos, mas o ctx do chamador continua mandando.
type SOAPClient struct {
	httpClient *http.Client
	url        string
	cfg        config.NFEConfig
	identidade *TLSIdentity
	log        *logger.Logger
}

// NewSOAPClient constrói o cliente. A URL vem do ambiente configurado, com
// override opcional por NFE_ENDPOINT_URL (testes/contingência).
func NewSOAPClient(cfg config.NFEConfig, identidade *TLSIdentity, log *logger.Logger) *SOAPClient {
	url := soapURLHomologacao
	if cfg.Ambiente == AmbienteProducao {
		url = soapURLProducao
	}
	if cfg.EndpointURL != "" {
		url = cfg.EndpointURL
	}
	return &SOAPClient{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: identidade.ClientTLSConfig(),
			},
		},
		url:        url,
		cfg:        cfg,
		identidade: identidade,
		log:        log,
	}
}

// Configurado informa se há certificado e identidade suficientes para
// consultar a SEFAZ. Nenhum I/O de rede.
func (c *SOAPClient) Configurado() bool {
	return c.identidade.Configurado() && exatamenteUmaIdentidade(c.cfg)
}

// Ambiente devolve o tpAmb configurado.
func (c *SOAPClient) Ambiente() string { return c.cfg.Ambiente }

// ── Estruturas SOAP (requisição) ──────────────────────────────────────────────

type soapEnvelope struct {
	XMLName   xml.Name `xml:"soap12:Envelope"`
	XmlnsSoap string   `xml:"xmlns:soap12,attr"`
	Body      soapBody `xml:"soap12:Body"`
}

type soapBody struct {
	Interesse nfeDistDFeInteresse `xml:"nfeDistDFeInteresse"`
}

type nfeDistDFeInteresse struct {
	Xmlns    string      `xml:"xmlns,attr"`
	DadosMsg nfeDadosMsg `xml:"nfeDadosMsg"`
}

type nfeDadosMsg struct {
	Dist distDFeInt `xml:"distDFeInt"`
}

type distDFeInt struct {
	Xmlns     string     `xml:"xmlns,attr"`
	Versao    string     `xml:"versao,attr"`
	TpAmb     string     `xml:"tpAmb"`
	CUFAutor  string     `xml:"cUFAutor,omitempty"`
	CNPJ      string     `xml:"CNPJ,omitempty"`
	CPF       string     `xml:"CPF,omitempty"`
	ConsChNFe *consChNFe `xml:"consChNFe"`
}

type consChNFe struct {
	ChNFe string `xml:"chNFe"`
}

// ── Estruturas SOAP (resposta) ────────────────────────────────────────────────

type soapRespEnvelope struct {
	Body soapRespBody `xml:"Body"`
}

type soapRespBody struct {
	Resposta *distInteresseResponse `xml:"nfeDistDFeInteresseResponse"`
	Fault    *soapFault             `xml:"Fault"`
}

type distInteresseResponse struct {
	Resultado retDistDFeInt `xml:"nfeDistDFeInteresseResult>retDistDFeInt"`
}

// retDistDFeInt é o nó "resultado da distribuição" aninhado na resposta.
type retDistDFeInt struct {
	TpAmb   string          `xml:"tpAmb"`
	CStat   string          `xml:"cStat"`
	XMotivo string          `xml:"xMotivo"`
	Lote    *loteDistDFeInt `xml:"loteDistDFeInt"`
}

type loteDistDFeInt struct {
	DocZip []docZipElem `xml:"docZip"`
}

type docZipElem struct {
	NSU      string `xml:"NSU,attr"`
	Schema   string `xml:"schema,attr"`
	Conteudo string `xml:",chardata"`
}

type soapFault struct {
	Code   string `xml:"Code>Value"`
	Reason string `xml:"Reason>Text"`
}

// ── Consulta por chave ────────────────────────────────────────────────────────

// BuscarPorChave consulta a SEFAZ pela chave de acesso e devolve o XML do
// documento, já decodificado (Base64 -> gzip -> texto).
//
// Falhas de configuração (certificado, identidade) curto-circuitam antes de
// qualquer tentativa de rede.
func (c *SOAPClient) BuscarPorChave(ctx context.Context, chave domnfe.ChaveAcesso) (string, error) {
	if !c.identidade.Configurado() {
		return "", domnfe.ErrNaoConfigurado
	}
	if !exatamenteUmaIdentidade(c.cfg) {
		return "", domnfe.ErrIdentidadeAusente
	}

	payload, err := c.montarEnvelope(chave)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("soap: criar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("soap: timeout ou cancelamento: %w", ctx.Err())
		}
		return "", fmt.Errorf("soap: chamada HTTP falhou: %w", err)
	}
	defer resp.Body.Close()

	corpo, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return "", fmt.Errorf("soap: ler resposta: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &domnfe.ErroTransporte{Status: resp.StatusCode, Corpo: truncar(corpo, maxCorpoDiagnostico)}
	}

	return c.interpretarResposta(corpo, chave)
}

// montarEnvelope serializa o envelope SOAP 1.2 da consulta consChNFe.
func (c *SOAPClient) montarEnvelope(chave domnfe.ChaveAcesso) ([]byte, error) {
	env := soapEnvelope{
		XmlnsSoap: soap12NS,
		Body: soapBody{
			Interesse: nfeDistDFeInteresse{
				Xmlns: nfeWsdlNS,
				DadosMsg: nfeDadosMsg{
					Dist: distDFeInt{
						Xmlns:     nfePortalNS,
						Versao:    versaoDistDFe,
						TpAmb:     c.cfg.Ambiente,
						CUFAutor:  c.cfg.UFAutor,
						CNPJ:      c.cfg.CNPJ,
						CPF:       c.cfg.CPF,
						ConsChNFe: &consChNFe{ChNFe: chave.String()},
					},
				},
			},
		},
	}
	out, err := xml.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("soap: serializar envelope: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// interpretarResposta localiza retDistDFeInt, aplica o gating de cStat e
// decodifica o docZip.
func (c *SOAPClient) interpretarResposta(corpo []byte, chave domnfe.ChaveAcesso) (string, error) {
	var env soapRespEnvelope
	if err := xml.Unmarshal(corpo, &env); err != nil {
		return "", fmt.Errorf("soap: resposta não parseável: %s", truncar(corpo, maxCorpoDiagnostico))
	}

	if env.Body.Fault != nil {
		return "", fmt.Errorf("soap: fault [%s]: %s", env.Body.Fault.Code, env.Body.Fault.Reason)
	}
	if env.Body.Resposta == nil {
		return "", fmt.Errorf("soap: resposta vazia ou inesperada: %s", truncar(corpo, maxCorpoDiagnostico))
	}

	ret := env.Body.Resposta.Resultado
	if !cStatAceitos[ret.CStat] {
		// Rejeição explícita: não tentar decodificar payload algum.
		return "", &domnfe.RejeicaoSEFAZ{CStat: ret.CStat, XMotivo: ret.XMotivo}
	}

	b64 := primeiroDocZip(ret.Lote)
	if b64 == "" {
		return "", domnfe.ErrPayloadVazio
	}

	xmlTexto, comprimido, err := DecodificarDocZip(b64)
	if err != nil {
		return "", err
	}
	if !comprimido {
		// Fallback preservado: a SEFAZ às vezes devolve o XML sem gzip.
		// Fica registrado para auditoria posterior.
		c.log.Warn().
			Str("chave", chave.String()).
			Str("cStat", ret.CStat).
			Msg("docZip sem compressão gzip; tratado como XML plano")
	}

	c.log.Info().
		Str("chave", chave.String()).
		Str("cStat", ret.CStat).
		Msg("documento obtido da SEFAZ")

	return xmlTexto, nil
}

// primeiroDocZip devolve o conteúdo Base64 do primeiro docZip não vazio,
// preferindo o schema procNFe quando o lote traz mais de um documento.
func primeiroDocZip(lote *loteDistDFeInt) string {
	if lote == nil {
		return ""
	}
	for _, d := range lote.DocZip {
		if d.Conteudo != "" && strings.Contains(d.Schema, "procNFe") {
			return d.Conteudo
		}
	}
	for _, d := range lote.DocZip {
		if d.Conteudo != "" {
			return d.Conteudo
		}
	}
	return ""
}

// exatamenteUmaIdentidade exige exatamente um entre CNPJ e CPF.
func exatamenteUmaIdentidade(cfg config.NFEConfig) bool {
	return (cfg.CNPJ != "") != (cfg.CPF != "")
}

func truncar(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
