package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Produto representa um produto do catálogo de estoque.
// PrecoCompra é o último valor unitário visto em nota de entrada.
type Produto struct {
	ID           string
	Codigo       string // código do produto na nota (cProd), único no catálogo
	Nome         string
	Unidade      string // unidade comercial (uCom)
	PrecoCompra  decimal.Decimal
	CriadoEm     time.Time
	AtualizadoEm time.Time
}
