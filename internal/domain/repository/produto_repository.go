package repository

import (
	"context"

	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/entity"
)

// ProdutoRepository define o porto de persistência do catálogo de produtos (DIP).
type ProdutoRepository interface {
	Create(ctx context.Context, p *entity.Produto) error
	Update(ctx context.Context, p *entity.Produto) error
	GetByCodigo(ctx context.Context, codigo string) (*entity.Produto, error)
}
