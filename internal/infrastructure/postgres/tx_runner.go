package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	appnfe "github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/application/nfe"
	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/repository"
)

// TxRunner executa casos de uso dentro de uma transação, entregando
// repositórios atados à mesma tx. Commit apenas se fn retornar nil.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) RunImport(ctx context.Context, fn func(
	importRepo repository.NFeImportRepository,
	produtoRepo repository.ProdutoRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("iniciar transação: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback após commit é no-op

	if err := fn(NewNFeImportRepository(tx), NewProdutoRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

var _ appnfe.ImportTxRunner = (*TxRunner)(nil)
