package nfe

import (
	"context"
	"fmt"

	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain"
	domnfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/nfe"
)

// Formatos de download aceitos.
const (
	FormatoXML = "xml"
	FormatoPDF = "pdf"
)

// Download é o resultado de uma reconstrução de documento sob demanda.
type Download struct {
	Conteudo    []byte
	ContentType string
	Origem      domnfe.Origem
}

// DownloadUseCase reconstrói uma NF-e por chave de acesso: resolve o XML via
// Retriever (local primeiro, SEFAZ em cache miss) e, para PDF, parseia e
// entrega ao gerador de DANFE.
type DownloadUseCase struct {
	retriever Retriever
	parser    Parser
	danfe     DANFEGenerator
}

// NewDownloadUseCase constrói o caso de uso.
func NewDownloadUseCase(retriever Retriever, parser Parser, danfe DANFEGenerator) *DownloadUseCase {
	return &DownloadUseCase{retriever: retriever, parser: parser, danfe: danfe}
}

// Baixar resolve e formata o documento. formato: "xml" ou "pdf".
func (uc *DownloadUseCase) Baixar(ctx context.Context, chaveRaw, formato string) (*Download, error) {
	chave, err := domnfe.NovaChave(chaveRaw)
	if err != nil {
		return nil, err
	}

	doc, err := uc.retriever.Buscar(ctx, chave)
	if err != nil {
		return nil, err
	}

	switch formato {
	case FormatoXML:
		return &Download{
			Conteudo:    []byte(doc.XML),
			ContentType: "application/xml",
			Origem:      doc.Origem,
		}, nil

	case FormatoPDF:
		nota, err := uc.parser.Parse([]byte(doc.XML))
		if err != nil {
			return nil, fmt.Errorf("parsear XML para DANFE: %w", err)
		}
		pdf, err := uc.danfe.Gerar(ctx, nota)
		if err != nil {
			return nil, fmt.Errorf("gerar DANFE: %w", err)
		}
		return &Download{
			Conteudo:    pdf,
			ContentType: "application/pdf",
			Origem:      doc.Origem,
		}, nil

	default:
		return nil, fmt.Errorf("%w: formato %q (use xml ou pdf)", domain.ErrInvalidInput, formato)
	}
}

// Configurado expõe, sem I/O de rede, se a consulta remota está habilitada.
func (uc *DownloadUseCase) Configurado() bool { return uc.retriever.Configurado() }

// Ambiente devolve o tpAmb configurado.
func (uc *DownloadUseCase) Ambiente() string { return uc.retriever.Ambiente() }
