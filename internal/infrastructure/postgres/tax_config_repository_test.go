package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

type noRow struct{}

func (noRow) Scan(...any) error { return pgx.ErrNoRows }

// stubQuerier responde sin filas y registra la última sentencia.
type stubQuerier struct {
	Querier
	sql  string
	args []any
}

func (s *stubQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	s.sql, s.args = sql, args
	return noRow{}
}

func (s *stubQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.sql, s.args = sql, args
	return pgconn.NewCommandTag("UPDATE 0"), nil
}

func TestTaxConfigRepo_SinRegistroGlobal(t *testing.T) {
	q := &stubQuerier{}
	r := NewTaxConfigRepository(q)

	cfg, err := r.GetGlobal(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, q.sql, "WHERE is_global")
}

func TestTaxConfigRepo_SaveAgregaAlHistorial(t *testing.T) {
	q := &stubQuerier{}
	r := NewTaxConfigRepository(q)

	change := entity.TaxChange{Description: "GST reducido"}
	err := r.Save(context.Background(), &entity.TaxConfig{ID: "cfg"}, change)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, q.sql, "change_history = change_history || $9::jsonb")
	require.Len(t, q.args, 9)
	assert.Equal(t, []entity.TaxChange{change}, q.args[8])
}
