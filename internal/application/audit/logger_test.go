package audit_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-compras/internal/application/audit"
	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
	"github.com/jhoicas/inventario-compras/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-compras/pkg/logger"
)

var (
	ana   = entity.Actor{UserID: "6f1c2a9e-0b1d-4c55-9a41-1f0e7d2b3a01", Email: "ana@example.com", Role: entity.RoleUser}
	beto  = entity.Actor{UserID: "6f1c2a9e-0b1d-4c55-9a41-1f0e7d2b3a02", Email: "beto@example.com", Role: entity.RoleUser}
	admin = entity.Actor{UserID: "6f1c2a9e-0b1d-4c55-9a41-1f0e7d2b3a03", Email: "admin@example.com", Role: entity.RoleAdmin}
)

type brokenRepo struct {
	repository.MovementRepository
}

func (brokenRepo) Create(context.Context, *entity.Movement) error {
	return errors.New("conexión rechazada")
}

type capture struct {
	got []*entity.Movement
}

func (c *capture) Publish(m *entity.Movement) { c.got = append(c.got, m) }

func TestRecord_CompletaYPublica(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	pub := &capture{}
	l := audit.NewLogger(store.Movements(), pub, logger.Nop())

	m := l.Record(ctx, audit.Entry{EventType: entity.EventTaxUpdated, Description: "GST 18 → 12", Actor: admin})
	require.NotNil(t, m)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "Impuestos actualizados", m.Title)
	assert.False(t, m.CreatedAt.IsZero())
	require.Len(t, pub.got, 1)
	assert.Equal(t, m.ID, pub.got[0].ID)
}

func TestRecord_FallaSoloVaAlLog(t *testing.T) {
	var buf bytes.Buffer
	pub := &capture{}
	l := audit.NewLogger(brokenRepo{}, pub, logger.NewWithWriter(&buf, "info"))

	assert.NotPanics(t, func() {
		m := l.Record(context.Background(), audit.Entry{EventType: entity.EventProductCreated, Actor: ana, ProductID: "p1"})
		assert.Nil(t, m)
	})
	assert.Empty(t, pub.got)
	assert.Contains(t, buf.String(), "product.created")
	assert.Contains(t, buf.String(), "conexión rechazada")
}

func TestRecord_TipoDesconocido(t *testing.T) {
	store := memory.NewStore()
	l := audit.NewLogger(store.Movements(), nil, nil)
	assert.Nil(t, l.Record(context.Background(), audit.Entry{EventType: "product.exploded", Actor: ana}))
}

func TestParseQuery_UsuarioSoloVeLoSuyo(t *testing.T) {
	f, err := audit.ParseQuery(ana, dto.MovementQuery{UserID: beto.UserID, EventType: "stock.refill, stock.changed", Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, ana.UserID, f.UserID)
	assert.Equal(t, []entity.EventType{entity.EventStockRefill, entity.EventStockChanged}, f.EventTypes)
	assert.Equal(t, audit.MaxLimit, f.Limit)

	f, err = audit.ParseQuery(admin, dto.MovementQuery{UserID: beto.UserID})
	require.NoError(t, err)
	assert.Equal(t, beto.UserID, f.UserID)
	assert.Equal(t, audit.DefaultLimit, f.Limit)
}

func TestParseQuery_Errores(t *testing.T) {
	_, err := audit.ParseQuery(ana, dto.MovementQuery{EventType: "nada.raro"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = audit.ParseQuery(ana, dto.MovementQuery{DateFrom: "ayer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = audit.ParseQuery(admin, dto.MovementQuery{UserID: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = audit.ParseQuery(ana, dto.MovementQuery{ProductID: "no-es-uuid"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = audit.ParseQuery(ana, dto.MovementQuery{DateFrom: "2024-05-02", DateTo: "2024-05-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f, err := audit.ParseQuery(ana, dto.MovementQuery{DateFrom: "2024-05-01", DateTo: "2024-05-01"})
	require.NoError(t, err)
	assert.True(t, f.DateTo.After(*f.DateFrom), "dateTo sin hora cubre el día completo")
}

func TestList_FiltraYOrdena(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	l := audit.NewLogger(store.Movements(), nil, logger.Nop())
	l.Record(ctx, audit.Entry{EventType: entity.EventProductCreated, Actor: ana})
	l.Record(ctx, audit.Entry{EventType: entity.EventStockRefill, Actor: ana})
	l.Record(ctx, audit.Entry{EventType: entity.EventProductCreated, Actor: beto})

	f, err := audit.ParseQuery(ana, dto.MovementQuery{})
	require.NoError(t, err)
	list, err := l.List(ctx, f)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt))
	}

	f, err = audit.ParseQuery(admin, dto.MovementQuery{EventType: "product.created"})
	require.NoError(t, err)
	list, err = l.List(ctx, f)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCorrect_ListaPermitida(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	l := audit.NewLogger(store.Movements(), nil, logger.Nop())
	m := l.Record(ctx, audit.Entry{EventType: entity.EventStockRefill, Description: "recarga", Actor: ana})
	require.NotNil(t, m)

	title := "Recarga corregida"
	_, err := l.Correct(ctx, ana, m.ID, []string{"title"}, entity.MovementPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = l.Correct(ctx, admin, m.ID, []string{"title", "eventType"}, entity.MovementPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = l.Correct(ctx, admin, "no-existe", []string{"title"}, entity.MovementPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out, err := l.Correct(ctx, admin, m.ID, []string{"title", "metadata"}, entity.MovementPatch{
		Title: &title, Metadata: map[string]any{"ticket": "SUP-12"},
	})
	require.NoError(t, err)
	assert.Equal(t, title, out.Title)
	assert.Equal(t, "recarga", out.Description)
	assert.Equal(t, "SUP-12", out.Metadata["ticket"])
	assert.Equal(t, entity.EventStockRefill, out.EventType)
}

func TestGet_AjenoNoSeVe(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	l := audit.NewLogger(store.Movements(), nil, logger.Nop())
	m := l.Record(ctx, audit.Entry{EventType: entity.EventStockRefill, Actor: ana})
	require.NotNil(t, m)

	_, err := l.Get(ctx, beto, m.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, err := l.Get(ctx, admin, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
}
