package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

var _ repository.UnitTypeRepository = (*UnitTypeRepo)(nil)

const unitTypeColumns = `id, user_id, name, name_key, abbreviation, abbreviation_key, created_at, updated_at`

// UnitTypeRepo unidades de medida sobre PostgreSQL.
type UnitTypeRepo struct {
	q Querier
}

// NewUnitTypeRepository construye el adaptador de persistencia para unidades.
func NewUnitTypeRepository(q Querier) *UnitTypeRepo {
	return &UnitTypeRepo{q: q}
}

func scanUnitType(row pgx.Row) (*entity.UnitType, error) {
	var u entity.UnitType
	if err := row.Scan(&u.ID, &u.UserID, &u.Name, &u.NameKey, &u.Abbreviation, &u.AbbreviationKey,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UnitTypeRepo) Create(ctx context.Context, u *entity.UnitType) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO unit_types (id, user_id, name, name_key, abbreviation, abbreviation_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.UserID, u.Name, u.NameKey, u.Abbreviation, u.AbbreviationKey, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert unit type: %w", err)
	}
	return nil
}

func (r *UnitTypeRepo) GetByID(ctx context.Context, id, ownerID string) (*entity.UnitType, error) {
	where, args := ownerFilter(ownerID, []any{id})
	u, err := scanUnitType(r.q.QueryRow(ctx, `SELECT `+unitTypeColumns+` FROM unit_types WHERE id = $1`+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit type: %w", err)
	}
	return u, nil
}

// FindConflict la abreviatura vacía nunca choca.
func (r *UnitTypeRepo) FindConflict(ctx context.Context, ownerID, nameKey, abbreviationKey, excludeID string) (*entity.UnitType, error) {
	query := `SELECT ` + unitTypeColumns + ` FROM unit_types
		WHERE user_id = $1
		  AND (name_key = $2 OR ($3 <> '' AND abbreviation_key = $3))
		  AND ($4 = '' OR id::text <> $4)
		LIMIT 1`
	u, err := scanUnitType(r.q.QueryRow(ctx, query, ownerID, nameKey, abbreviationKey, excludeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find unit type conflict: %w", err)
	}
	return u, nil
}

func (r *UnitTypeRepo) Update(ctx context.Context, u *entity.UnitType) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE unit_types SET name = $2, name_key = $3, abbreviation = $4, abbreviation_key = $5, updated_at = $6
		WHERE id = $1`,
		u.ID, u.Name, u.NameKey, u.Abbreviation, u.AbbreviationKey, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update unit type: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UnitTypeRepo) List(ctx context.Context, ownerID string) ([]*entity.UnitType, error) {
	where, args := ownerFilter(ownerID, nil)
	rows, err := r.q.Query(ctx, `SELECT `+unitTypeColumns+` FROM unit_types WHERE TRUE`+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, fmt.Errorf("list unit types: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.UnitType, 0)
	for rows.Next() {
		u, err := scanUnitType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit type: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func (r *UnitTypeRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM unit_types WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInUse
		}
		return fmt.Errorf("delete unit type: %w", err)
	}
	return nil
}
