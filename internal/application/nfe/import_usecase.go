package nfe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/entity"
	domnfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/nfe"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/repository"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/pkg/logger"
)

// ImportUseCase orquestra a importação de NF-e:
//
//	parse -> registro PROCESSANDO -> XML arquivado -> itens -> vínculo ao catálogo -> CONCLUIDO
//
// É o único lugar que captura erros do parser para convertê-los em estado
// durável: falha de parse vira registro ERRO persistido com a mensagem, nunca
// some em silêncio. Os passos de escrita rodam em uma transação; qualquer
// falha dentro do escopo deixa o registro em ERRO, jamais meio escrito como
// CONCLUIDO.
type ImportUseCase struct {
	repo       repository.NFeImportRepository // atado ao pool (fora de tx)
	tx         ImportTxRunner
	parser     Parser
	vinculador CatalogoLinker // opcional; nil => ItensCriados = ItensEncontrados
	log        *logger.Logger
}

// NewImportUseCase constrói o caso de uso. vinculador pode ser nil.
func NewImportUseCase(
	repo repository.NFeImportRepository,
	tx ImportTxRunner,
	parser Parser,
	vinculador CatalogoLinker,
	log *logger.Logger,
) *ImportUseCase {
	return &ImportUseCase{repo: repo, tx: tx, parser: parser, vinculador: vinculador, log: log}
}

// Importar processa o XML recebido e devolve o registro persistido.
//
// Falha de parse não é erro para o chamador: o registro volta em status ERRO
// com a mensagem do parser, para visibilidade do operador. Erros devolvidos
// aqui são somente falhas de persistência do próprio registro.
func (uc *ImportUseCase) Importar(ctx context.Context, nomeArquivo string, xmlBytes []byte) (*entity.NFeImport, error) {
	nota, parseErr := uc.parser.Parse(xmlBytes)
	if parseErr != nil {
		imp := &entity.NFeImport{
			ID:           uuid.New().String(),
			NomeArquivo:  nomeArquivo,
			Status:       entity.ImportStatusErro,
			MensagemErro: parseErr.Error(),
			CriadoEm:     time.Now(),
		}
		if err := uc.repo.Create(ctx, imp); err != nil {
			return nil, fmt.Errorf("persistir importação com erro de parse: %w", err)
		}
		uc.log.Warn().Str("import_id", imp.ID).Str("arquivo", nomeArquivo).
			Err(parseErr).Msg("XML de NF-e rejeitado pelo parser")
		return imp, nil
	}

	imp := &entity.NFeImport{
		ID:               uuid.New().String(),
		NomeArquivo:      nomeArquivo,
		Status:           entity.ImportStatusProcessando,
		ItensEncontrados: len(nota.Itens),
		Fornecedor:       nota.Emitente.Nome,
		ChaveAcesso:      nota.Chave.String(),
		CriadoEm:         time.Now(),
	}
	// O registro nasce PROCESSANDO fora da transação: se a escrita em lote
	// falhar, ele sobrevive para receber o status ERRO.
	if err := uc.repo.Create(ctx, imp); err != nil {
		return nil, fmt.Errorf("criar registro de importação: %w", err)
	}

	itens := itensParaPersistir(imp.ID, nota)

	txErr := uc.tx.RunImport(ctx, func(importRepo repository.NFeImportRepository, produtoRepo repository.ProdutoRepository) error {
		// XML cru arquivado por chave: alimenta as buscas locais futuras.
		if err := importRepo.StoreRawXML(ctx, nota.Chave.String(), string(xmlBytes)); err != nil {
			return fmt.Errorf("arquivar XML: %w", err)
		}
		if err := importRepo.CreateItems(ctx, imp.ID, itens); err != nil {
			return fmt.Errorf("persistir itens: %w", err)
		}

		if uc.vinculador != nil {
			vinculo := uc.vinculador.VincularInTx(ctx, produtoRepo, itens)
			imp.ItensCriados = vinculo.Criados
			imp.ItensAtualizados = vinculo.Atualizados
			if len(vinculo.Falhas) > 0 {
				imp.Status = entity.ImportStatusParcial
				imp.MensagemErro = strings.Join(vinculo.Falhas, "; ")
			} else {
				imp.Status = entity.ImportStatusConcluido
			}
		} else {
			imp.ItensCriados = len(itens)
			imp.Status = entity.ImportStatusConcluido
		}

		agora := time.Now()
		imp.ProcessadoEm = &agora
		return importRepo.Update(ctx, imp)
	})

	if txErr != nil {
		uc.marcarErro(ctx, imp, txErr)
		return imp, nil
	}

	uc.log.Info().Str("import_id", imp.ID).Str("chave", imp.ChaveAcesso).
		Int("itens", imp.ItensEncontrados).Str("status", imp.Status).
		Msg("importação de NF-e finalizada")
	return imp, nil
}

// Reprocessar recalcula os contadores a partir dos itens já armazenados e
// volta o status para CONCLUIDO. Ação de recuperação deliberadamente estreita:
// não re-parseia os bytes originais, que podem não existir mais.
func (uc *ImportUseCase) Reprocessar(ctx context.Context, importID string) error {
	imp, err := uc.repo.GetByID(ctx, importID)
	if err != nil {
		return fmt.Errorf("buscar importação: %w", err)
	}
	if imp == nil {
		return domain.ErrNotFound
	}

	itens, err := uc.repo.ListItems(ctx, importID)
	if err != nil {
		uc.marcarErro(ctx, imp, fmt.Errorf("reprocessar: listar itens: %w", err))
		return err
	}

	imp.ItensEncontrados = len(itens)
	imp.ItensCriados = len(itens)
	imp.Status = entity.ImportStatusConcluido
	imp.MensagemErro = ""
	agora := time.Now()
	imp.ProcessadoEm = &agora

	if err := uc.repo.Update(ctx, imp); err != nil {
		return fmt.Errorf("atualizar importação reprocessada: %w", err)
	}
	uc.log.Info().Str("import_id", importID).Int("itens", len(itens)).Msg("importação reprocessada")
	return nil
}

// Excluir remove a importação em cascata: itens, XML arquivado e por último o
// registro, nessa ordem, para não deixar referências órfãs.
func (uc *ImportUseCase) Excluir(ctx context.Context, importID string) error {
	imp, err := uc.repo.GetByID(ctx, importID)
	if err != nil {
		return fmt.Errorf("buscar importação: %w", err)
	}
	if imp == nil {
		return domain.ErrNotFound
	}

	return uc.tx.RunImport(ctx, func(importRepo repository.NFeImportRepository, _ repository.ProdutoRepository) error {
		if err := importRepo.DeleteItems(ctx, importID); err != nil {
			return fmt.Errorf("excluir itens: %w", err)
		}
		if imp.ChaveAcesso != "" {
			if err := importRepo.DeleteRawXML(ctx, imp.ChaveAcesso); err != nil {
				return fmt.Errorf("excluir XML arquivado: %w", err)
			}
		}
		if err := importRepo.Delete(ctx, importID); err != nil {
			return fmt.Errorf("excluir registro: %w", err)
		}
		return nil
	})
}

// Obter devolve a importação, ou domain.ErrNotFound.
func (uc *ImportUseCase) Obter(ctx context.Context, importID string) (*entity.NFeImport, error) {
	imp, err := uc.repo.GetByID(ctx, importID)
	if err != nil {
		return nil, err
	}
	if imp == nil {
		return nil, domain.ErrNotFound
	}
	return imp, nil
}

// Listar devolve o histórico de importações.
func (uc *ImportUseCase) Listar(ctx context.Context, limit, offset int) ([]*entity.NFeImport, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.repo.List(ctx, limit, offset)
}

// ListarItens devolve os itens de uma importação.
func (uc *ImportUseCase) ListarItens(ctx context.Context, importID string) ([]*entity.NFeImportItem, error) {
	return uc.repo.ListItems(ctx, importID)
}

// marcarErro grava o estado ERRO com a mensagem; falha ao gravar só é logada,
// não há mais nada útil a fazer.
func (uc *ImportUseCase) marcarErro(ctx context.Context, imp *entity.NFeImport, causa error) {
	imp.Status = entity.ImportStatusErro
	imp.MensagemErro = causa.Error()
	if err := uc.repo.Update(ctx, imp); err != nil {
		uc.log.Error().Str("import_id", imp.ID).Err(err).
			Msg("não foi possível persistir o status ERRO")
		return
	}
	uc.log.Error().Str("import_id", imp.ID).Err(causa).Msg("importação de NF-e falhou")
}

func itensParaPersistir(importID string, nota *domnfe.NotaFiscal) []*entity.NFeImportItem {
	itens := make([]*entity.NFeImportItem, len(nota.Itens))
	for i, it := range nota.Itens {
		itens[i] = &entity.NFeImportItem{
			ID:            uuid.New().String(),
			ImportID:      importID,
			Codigo:        it.Codigo,
			Descricao:     it.Descricao,
			Quantidade:    it.Quantidade,
			ValorUnitario: it.ValorUnitario,
			Unidade:       it.Unidade,
			ValorTotal:    it.ValorTotal,
		}
	}
	return itens
}
