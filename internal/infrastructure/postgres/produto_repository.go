package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/entity"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/repository"
)

var _ repository.ProdutoRepository = (*ProdutoRepo)(nil)

// ProdutoRepo implementa o porto ProdutoRepository sobre PostgreSQL
// (usável com pool ou tx).
type ProdutoRepo struct {
	q Querier
}

// NewProdutoRepository constrói o adaptador de persistência do catálogo.
// Passar pool ou tx (Querier).
func NewProdutoRepository(q Querier) *ProdutoRepo {
	return &ProdutoRepo{q: q}
}

// Create persiste um novo produto do catálogo.
func (r *ProdutoRepo) Create(ctx context.Context, p *entity.Produto) error {
	query := `
		INSERT INTO produtos (id, codigo, nome, unidade, preco_compra, criado_em, atualizado_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Codigo, p.Nome, p.Unidade, p.PrecoCompra, p.CriadoEm, p.AtualizadoEm,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert produto: %w", err)
	}
	return nil
}

// Update atualiza nome, unidade e preço de compra de um produto existente.
func (r *ProdutoRepo) Update(ctx context.Context, p *entity.Produto) error {
	query := `
		UPDATE produtos SET nome = $2, unidade = $3, preco_compra = $4, atualizado_em = $5
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, p.ID, p.Nome, p.Unidade, p.PrecoCompra, p.AtualizadoEm)
	if err != nil {
		return fmt.Errorf("update produto: %w", err)
	}
	return nil
}

// GetByCodigo obtém um produto pelo código do fornecedor. Devolve (nil, nil)
// quando não existe.
func (r *ProdutoRepo) GetByCodigo(ctx context.Context, codigo string) (*entity.Produto, error) {
	query := `
		SELECT id, codigo, nome, unidade, preco_compra, criado_em, atualizado_em
		FROM produtos WHERE codigo = $1`
	var p entity.Produto
	err := r.q.QueryRow(ctx, query, codigo).Scan(
		&p.ID, &p.Codigo, &p.Nome, &p.Unidade, &p.PrecoCompra, &p.CriadoEm, &p.AtualizadoEm,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get produto: %w", err)
	}
	return &p, nil
}
