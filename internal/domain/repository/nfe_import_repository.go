package repository

import (
	"context"

	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/internal/domain/entity"
)

// NFeImportRepository define o porto de persistência do histórico de
// importações de NF-e: registro, itens e o XML cru arquivado por chave.
//
// Convenções: Get* devolve (nil, nil) quando o recurso não existe;
// FindRawXML devolve string vazia quando não há XML arquivado.
type NFeImportRepository interface {
	Create(ctx context.Context, imp *entity.NFeImport) error
	Update(ctx context.Context, imp *entity.NFeImport) error
	GetByID(ctx context.Context, id string) (*entity.NFeImport, error)
	List(ctx context.Context, limit, offset int) ([]*entity.NFeImport, error)
	Delete(ctx context.Context, id string) error

	CreateItems(ctx context.Context, importID string, itens []*entity.NFeImportItem) error
	ListItems(ctx context.Context, importID string) ([]*entity.NFeImportItem, error)
	DeleteItems(ctx context.Context, importID string) error

	StoreRawXML(ctx context.Context, chave, xml string) error
	FindRawXML(ctx context.Context, chave string) (string, error)
	DeleteRawXML(ctx context.Context, chave string) error
}
