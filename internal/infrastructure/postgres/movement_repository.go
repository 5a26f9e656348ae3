package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementsTable = "movements"

// Algoritmos de compresión de la columna changes.
const (
	compressionNone = "none"
	compressionZstd = "zstd"
)

// movementRow fila plana de movements con las referencias ligeras resueltas por LEFT JOIN.
type movementRow struct {
	ID                string    `db:"id"`
	EventType         string    `db:"event_type"`
	Title             string    `db:"title"`
	Description       string    `db:"description"`
	UserID            string    `db:"user_id"`
	UserEmail         string    `db:"user_email"`
	ProductID         string    `db:"product_id"`
	PurchaseID        string    `db:"purchase_id"`
	CategoryID        string    `db:"category_id"`
	Metadata          []byte    `db:"metadata"`
	Changes           []byte    `db:"changes"`
	ChangesCompressed []byte    `db:"changes_compressed"`
	CompressionAlgo   string    `db:"compression_algo"`
	CreatedAt         time.Time `db:"created_at"`
	ProductName       string    `db:"product_name"`
	ProductSKU        string    `db:"product_sku"`
	PurchaseNumber    string    `db:"purchase_number"`
	CategoryName      string    `db:"category_name"`
}

// MovementRepo registro append-only de movimientos. Los changes que superan el umbral
// se guardan comprimidos con zstd en changes_compressed.
type MovementRepo struct {
	q                 Querier
	builder           squirrel.StatementBuilderType
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewMovementRepository construye el repo. compressThreshold <= 0 desactiva la compresión.
func NewMovementRepository(q Querier, compressThreshold int) (*MovementRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &MovementRepo{
		q:                 q,
		builder:           squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: compressThreshold,
	}, nil
}

// encodeChanges devuelve (changes, changes_compressed, compression_algo) listos para insertar.
func (r *MovementRepo) encodeChanges(c *entity.Changes) (any, []byte, string, error) {
	if c.Empty() {
		return nil, nil, compressionNone, nil
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, nil, "", fmt.Errorf("marshal changes: %w", err)
	}
	if r.compressThreshold > 0 && len(raw) > r.compressThreshold {
		return nil, r.encoder.EncodeAll(raw, nil), compressionZstd, nil
	}
	return raw, nil, compressionNone, nil
}

func (r *MovementRepo) decodeChanges(row *movementRow) (*entity.Changes, error) {
	raw := row.Changes
	if row.CompressionAlgo == compressionZstd && len(row.ChangesCompressed) > 0 {
		out, err := r.decoder.DecodeAll(row.ChangesCompressed, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress changes: %w", err)
		}
		raw = out
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var c entity.Changes
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("unmarshal changes: %w", err)
	}
	return &c, nil
}

func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	changes, compressed, algo, err := r.encodeChanges(m.Changes)
	if err != nil {
		return err
	}
	metadata := m.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	sql, args, err := r.builder.Insert(movementsTable).
		Columns("id", "event_type", "title", "description", "user_id", "user_email",
			"product_id", "purchase_id", "category_id", "metadata",
			"changes", "changes_compressed", "compression_algo", "created_at").
		Values(m.ID, string(m.EventType), m.Title, m.Description, m.UserID, m.UserEmail,
			nullable(m.ProductID), nullable(m.PurchaseID), nullable(m.CategoryID), meta,
			changes, compressed, algo, m.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func (r *MovementRepo) selectMovements() squirrel.SelectBuilder {
	return r.builder.Select(
		"m.id", "m.event_type", "m.title", "m.description", "m.user_id", "m.user_email",
		"COALESCE(m.product_id::text, '') AS product_id",
		"COALESCE(m.purchase_id::text, '') AS purchase_id",
		"COALESCE(m.category_id::text, '') AS category_id",
		"m.metadata", "m.changes", "m.changes_compressed", "m.compression_algo", "m.created_at",
		"COALESCE(p.name, '') AS product_name",
		"COALESCE(p.sku, '') AS product_sku",
		"COALESCE(pu.purchase_number, '') AS purchase_number",
		"COALESCE(c.name, '') AS category_name",
	).
		From(movementsTable + " m").
		LeftJoin("products p ON p.id = m.product_id").
		LeftJoin("purchases pu ON pu.id = m.purchase_id").
		LeftJoin("categories c ON c.id = m.category_id")
}

// listQuery traduce el filtro a SQL; separado para poder probarlo sin base de datos.
func (r *MovementRepo) listQuery(f entity.MovementFilter) (string, []any, error) {
	q := r.selectMovements()
	if len(f.EventTypes) > 0 {
		types := make([]string, 0, len(f.EventTypes))
		for _, et := range f.EventTypes {
			types = append(types, string(et))
		}
		q = q.Where(squirrel.Eq{"m.event_type": types})
	}
	if f.UserID != "" {
		q = q.Where(squirrel.Eq{"m.user_id": f.UserID})
	}
	if f.ProductID != "" {
		q = q.Where(squirrel.Eq{"m.product_id": f.ProductID})
	}
	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"m.created_at": *f.DateFrom})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"m.created_at": *f.DateTo})
	}
	q = q.OrderBy("m.created_at DESC", "m.id DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	return q.ToSql()
}

func (r *MovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.Movement, error) {
	sql, args, err := r.listQuery(f)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	out := make([]*entity.Movement, 0, len(rows))
	for i := range rows {
		m, err := r.toEntity(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MovementRepo) GetByID(ctx context.Context, id, ownerID string) (*entity.Movement, error) {
	q := r.selectMovements().Where(squirrel.Eq{"m.id": id})
	if ownerID != "" {
		q = q.Where(squirrel.Eq{"m.user_id": ownerID})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var row movementRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return r.toEntity(&row)
}

// Correct solo toca title, description y metadata.
func (r *MovementRepo) Correct(ctx context.Context, id string, patch entity.MovementPatch) error {
	q := r.builder.Update(movementsTable).Where(squirrel.Eq{"id": id})
	set := false
	if patch.Title != nil {
		q, set = q.Set("title", *patch.Title), true
	}
	if patch.Description != nil {
		q, set = q.Set("description", *patch.Description), true
	}
	if patch.Metadata != nil {
		meta, err := json.Marshal(patch.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		q, set = q.Set("metadata", meta), true
	}
	if !set {
		return errors.New("corrección vacía")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	cmd, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("correct movement: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MovementRepo) toEntity(row *movementRow) (*entity.Movement, error) {
	changes, err := r.decodeChanges(row)
	if err != nil {
		return nil, err
	}
	metadata := map[string]any{}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &entity.Movement{
		ID:             row.ID,
		EventType:      entity.EventType(row.EventType),
		Title:          row.Title,
		Description:    row.Description,
		UserID:         row.UserID,
		UserEmail:      row.UserEmail,
		ProductID:      row.ProductID,
		PurchaseID:     row.PurchaseID,
		CategoryID:     row.CategoryID,
		Metadata:       metadata,
		Changes:        changes,
		CreatedAt:      row.CreatedAt,
		ProductName:    row.ProductName,
		ProductSKU:     row.ProductSKU,
		PurchaseNumber: row.PurchaseNumber,
		CategoryName:   row.CategoryName,
	}, nil
}
