package nfe

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/entity"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/repository"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/pkg/logger"
)

// CatalogoUseCase implementa CatalogoLinker: faz upsert de produtos do
// catálogo a partir dos itens da nota, por código (cProd). Código conhecido
// atualiza preço de compra e unidade; desconhecido cria o produto.
//
// Roda com o repositório da transação da importação, então um rollback da
// importação desfaz também o catálogo. Falha em um item não interrompe os
// demais; ela vira uma entrada em Falhas e a importação fecha como PARCIAL.
type CatalogoUseCase struct {
	log *logger.Logger
}

// NewCatalogoUseCase constrói o vinculador.
func NewCatalogoUseCase(log *logger.Logger) *CatalogoUseCase {
	return &CatalogoUseCase{log: log}
}

var _ CatalogoLinker = (*CatalogoUseCase)(nil)

// VincularInTx processa os itens um a um contra o catálogo.
func (uc *CatalogoUseCase) VincularInTx(
	ctx context.Context,
	produtoRepo repository.ProdutoRepository,
	itens []*entity.NFeImportItem,
) VinculoCatalogo {
	var v VinculoCatalogo
	agora := time.Now()

	for _, item := range itens {
		if item.Codigo == "" {
			v.Falhas = append(v.Falhas, fmt.Sprintf("item %q sem código de produto", item.Descricao))
			continue
		}

		existente, err := produtoRepo.GetByCodigo(ctx, item.Codigo)
		if err != nil {
			v.Falhas = append(v.Falhas, fmt.Sprintf("consultar produto %s: %v", item.Codigo, err))
			continue
		}

		if existente == nil {
			novo := &entity.Produto{
				ID:           uuid.New().String(),
				Codigo:       item.Codigo,
				Nome:         item.Descricao,
				Unidade:      item.Unidade,
				PrecoCompra:  item.ValorUnitario,
				CriadoEm:     agora,
				AtualizadoEm: agora,
			}
			if err := produtoRepo.Create(ctx, novo); err != nil {
				v.Falhas = append(v.Falhas, fmt.Sprintf("criar produto %s: %v", item.Codigo, err))
				continue
			}
			v.Criados++
			continue
		}

		existente.PrecoCompra = item.ValorUnitario
		if item.Unidade != "" {
			existente.Unidade = item.Unidade
		}
		existente.AtualizadoEm = agora
		if err := produtoRepo.Update(ctx, existente); err != nil {
			v.Falhas = append(v.Falhas, fmt.Sprintf("atualizar produto %s: %v", item.Codigo, err))
			continue
		}
		v.Atualizados++
	}

	if len(v.Falhas) > 0 {
		uc.log.Warn().Int("falhas", len(v.Falhas)).Msg("vinculação ao catálogo com falhas parciais")
	}
	return v
}
