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

var _ repository.NFeImportRepository = (*NFeImportRepo)(nil)

// NFeImportRepo implementa o porto NFeImportRepository sobre PostgreSQL
// (usável com pool ou tx).
type NFeImportRepo struct {
	q Querier
}

// NewNFeImportRepository constrói o adaptador de persistência das importações.
// Passar pool ou tx (Querier).
func NewNFeImportRepository(q Querier) *NFeImportRepo {
	return &NFeImportRepo{q: q}
}

// Create persiste um novo registro de importação.
func (r *NFeImportRepo) Create(ctx context.Context, imp *entity.NFeImport) error {
	query := `
		INSERT INTO nfe_imports (id, nome_arquivo, status, itens_encontrados, itens_criados, itens_atualizados, fornecedor, chave_acesso, mensagem_erro, criado_em, processado_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		imp.ID, imp.NomeArquivo, imp.Status, imp.ItensEncontrados, imp.ItensCriados,
		imp.ItensAtualizados, nullIfEmpty(imp.Fornecedor), nullIfEmpty(imp.ChaveAcesso),
		nullIfEmpty(imp.MensagemErro), imp.CriadoEm, imp.ProcessadoEm,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert importação: %w", err)
	}
	return nil
}

// Update atualiza o registro inteiro (status, contadores, mensagem, timestamps).
func (r *NFeImportRepo) Update(ctx context.Context, imp *entity.NFeImport) error {
	query := `
		UPDATE nfe_imports
		SET status = $2, itens_encontrados = $3, itens_criados = $4, itens_atualizados = $5,
		    fornecedor = $6, chave_acesso = $7, mensagem_erro = $8, processado_em = $9
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		imp.ID, imp.Status, imp.ItensEncontrados, imp.ItensCriados, imp.ItensAtualizados,
		nullIfEmpty(imp.Fornecedor), nullIfEmpty(imp.ChaveAcesso), nullIfEmpty(imp.MensagemErro),
		imp.ProcessadoEm,
	)
	if err != nil {
		return fmt.Errorf("update importação: %w", err)
	}
	return nil
}

// GetByID obtém uma importação por ID. Devolve (nil, nil) quando não existe.
func (r *NFeImportRepo) GetByID(ctx context.Context, id string) (*entity.NFeImport, error) {
	query := `
		SELECT id, nome_arquivo, status, itens_encontrados, itens_criados, itens_atualizados,
		       COALESCE(fornecedor, ''), COALESCE(chave_acesso, ''), COALESCE(mensagem_erro, ''),
		       criado_em, processado_em
		FROM nfe_imports WHERE id = $1`
	var imp entity.NFeImport
	err := r.q.QueryRow(ctx, query, id).Scan(
		&imp.ID, &imp.NomeArquivo, &imp.Status, &imp.ItensEncontrados, &imp.ItensCriados,
		&imp.ItensAtualizados, &imp.Fornecedor, &imp.ChaveAcesso, &imp.MensagemErro,
		&imp.CriadoEm, &imp.ProcessadoEm,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get importação: %w", err)
	}
	return &imp, nil
}

// List lista importações em ordem decrescente de criação, com paginação.
func (r *NFeImportRepo) List(ctx context.Context, limit, offset int) ([]*entity.NFeImport, error) {
	query := `
		SELECT id, nome_arquivo, status, itens_encontrados, itens_criados, itens_atualizados,
		       COALESCE(fornecedor, ''), COALESCE(chave_acesso, ''), COALESCE(mensagem_erro, ''),
		       criado_em, processado_em
		FROM nfe_imports ORDER BY criado_em DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list importações: %w", err)
	}
	defer rows.Close()
	var list []*entity.NFeImport
	for rows.Next() {
		var imp entity.NFeImport
		if err := rows.Scan(&imp.ID, &imp.NomeArquivo, &imp.Status, &imp.ItensEncontrados,
			&imp.ItensCriados, &imp.ItensAtualizados, &imp.Fornecedor, &imp.ChaveAcesso,
			&imp.MensagemErro, &imp.CriadoEm, &imp.ProcessadoEm); err != nil {
			return nil, fmt.Errorf("scan importação: %w", err)
		}
		list = append(list, &imp)
	}
	return list, rows.Err()
}

// Delete remove o registro de importação por ID.
func (r *NFeImportRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM nfe_imports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete importação: %w", err)
	}
	return nil
}

// CreateItems persiste os itens de uma importação em lote.
func (r *NFeImportRepo) CreateItems(ctx context.Context, importID string, itens []*entity.NFeImportItem) error {
	query := `
		INSERT INTO nfe_import_items (id, import_id, codigo, descricao, quantidade, valor_unitario, unidade, valor_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, item := range itens {
		_, err := r.q.Exec(ctx, query,
			item.ID, importID, item.Codigo, item.Descricao, item.Quantidade,
			item.ValorUnitario, item.Unidade, item.ValorTotal,
		)
		if err != nil {
			return fmt.Errorf("insert item %s: %w", item.Codigo, err)
		}
	}
	return nil
}

// ListItems lista os itens de uma importação na ordem em que foram gravados.
func (r *NFeImportRepo) ListItems(ctx context.Context, importID string) ([]*entity.NFeImportItem, error) {
	query := `
		SELECT id, import_id, codigo, descricao, quantidade, valor_unitario, unidade, valor_total
		FROM nfe_import_items WHERE import_id = $1 ORDER BY codigo`
	rows, err := r.q.Query(ctx, query, importID)
	if err != nil {
		return nil, fmt.Errorf("list itens: %w", err)
	}
	defer rows.Close()
	var list []*entity.NFeImportItem
	for rows.Next() {
		var item entity.NFeImportItem
		if err := rows.Scan(&item.ID, &item.ImportID, &item.Codigo, &item.Descricao,
			&item.Quantidade, &item.ValorUnitario, &item.Unidade, &item.ValorTotal); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &item)
	}
	return list, rows.Err()
}

// DeleteItems remove todos os itens de uma importação.
func (r *NFeImportRepo) DeleteItems(ctx context.Context, importID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM nfe_import_items WHERE import_id = $1`, importID)
	if err != nil {
		return fmt.Errorf("delete itens: %w", err)
	}
	return nil
}

// StoreRawXML arquiva o XML cru por chave de acesso. Reimportação da mesma
// chave sobrescreve o XML arquivado (upsert).
func (r *NFeImportRepo) StoreRawXML(ctx context.Context, chave, xml string) error {
	query := `
		INSERT INTO nfe_xml (chave_acesso, xml, criado_em)
		VALUES ($1, $2, now())
		ON CONFLICT (chave_acesso) DO UPDATE SET xml = EXCLUDED.xml`
	_, err := r.q.Exec(ctx, query, chave, xml)
	if err != nil {
		return fmt.Errorf("arquivar xml: %w", err)
	}
	return nil
}

// FindRawXML busca o XML arquivado por chave. Devolve "" quando não há.
func (r *NFeImportRepo) FindRawXML(ctx context.Context, chave string) (string, error) {
	var xml string
	err := r.q.QueryRow(ctx, `SELECT xml FROM nfe_xml WHERE chave_acesso = $1`, chave).Scan(&xml)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("buscar xml: %w", err)
	}
	return xml, nil
}

// DeleteRawXML remove o XML arquivado de uma chave.
func (r *NFeImportRepo) DeleteRawXML(ctx context.Context, chave string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM nfe_xml WHERE chave_acesso = $1`, chave)
	if err != nil {
		return fmt.Errorf("delete xml: %w", err)
	}
	return nil
}
