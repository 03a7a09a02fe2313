package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/atinyakov/SolForge/internal/models"
)

func setupCardMock(t *testing.T) (*PostgresCardRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	return NewPostgresCardRepository(db), mock, func() { db.Close() }
}

func mintedCard(t *testing.T) models.Card {
	c := models.Card{ID: "c1", Name: "Ember Drake", Rarity: models.RarityRare, PriceSol: decimal.RequireFromString("0.5")}
	c, err := c.WithMint("Mint1111111111111111111111111111111111111", "sig")
	if err != nil {
		t.Fatalf("WithMint: %v", err)
	}
	return c
}

func TestPostgresSave_Minted(t *testing.T) {
	repo, mock, cleanup := setupCardMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO cards").
		WithArgs("c1", "Mint1111111111111111111111111111111111111", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Save(context.Background(), mintedCard(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresSave_DraftHasNullMint(t *testing.T) {
	repo, mock, cleanup := setupCardMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO cards").
		WithArgs("d1", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Save(context.Background(), models.Card{ID: "d1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresSave_SameMintUnderTwoIDs(t *testing.T) {
	repo, mock, cleanup := setupCardMock(t)
	defer cleanup()

	first := mintedCard(t)
	second := first
	second.ID = "c2"

	for _, id := range []string{"c1", "c2"} {
		mock.ExpectExec("INSERT INTO cards").
			WithArgs(id, "Mint1111111111111111111111111111111111111", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	for _, c := range []models.Card{first, second} {
		if err := repo.Save(context.Background(), c); err != nil {
			t.Fatalf("Save %s: %v", c.ID, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresSave_StorageError(t *testing.T) {
	repo, mock, cleanup := setupCardMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO cards").
		WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})

	err := repo.Save(context.Background(), mintedCard(t))
	if err == nil || !strings.Contains(err.Error(), "save card c1") {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
}

func TestPostgresGet(t *testing.T) {
	repo, mock, cleanup := setupCardMock(t)
	defer cleanup()

	doc := `{"id":"c1","name":"Ember Drake","stats":{"attack":70,"defense":40},"imageUrl":"","priceSol":0.5,"mintAddress":"Mint1"}`
	mock.ExpectQuery("SELECT data FROM cards WHERE id").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(doc)))

	card, err := repo.Get(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if card.Name != "Ember Drake" || card.Stats.Attack != 70 {
		t.Errorf("unexpected card: %+v", card)
	}
	if addr, ok := card.MintAddress(); !ok || addr != "Mint1" {
		t.Errorf("mint address = %q, %v", addr, ok)
	}
	if !card.PriceSol.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("price = %s", card.PriceSol)
	}
}

func TestPostgresGet_NotFound(t *testing.T) {
	repo, mock, cleanup := setupCardMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT data FROM cards WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"data"}))

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresGet_QueryError(t *testing.T) {
	repo, mock, cleanup := setupCardMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT data FROM cards WHERE id").
		WithArgs("c1").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Get(context.Background(), "c1")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected query error, got %v", err)
	}
}
