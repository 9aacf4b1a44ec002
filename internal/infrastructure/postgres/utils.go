package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation identifica violação de constraint UNIQUE (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// nullIfEmpty converte string vazia em NULL para colunas opcionais.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
