package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atinyakov/SolForge/internal/models"
)

// PostgresCardRepository stores cards as JSONB documents in PostgreSQL.
type PostgresCardRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresCardRepository creates a PostgresCardRepository over db.
// db must be a valid connection with the cards schema applied.
func NewPostgresCardRepository(db *sql.DB) *PostgresCardRepository {
	return &PostgresCardRepository{DB: db}
}

// Save upserts card by id. The mint address is kept in its own column so
// drafts can be told apart without decoding the document.
func (r *PostgresCardRepository) Save(ctx context.Context, card models.Card) error {
	data, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("encode card: %w", err)
	}

	var mint sql.NullString
	if addr, ok := card.MintAddress(); ok {
		mint = sql.NullString{String: addr, Valid: true}
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO cards (id, mint_address, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET
			mint_address = EXCLUDED.mint_address,
			data = EXCLUDED.data,
			updated_at = now()
	`, card.ID, mint, data)
	if err != nil {
		return fmt.Errorf("save card %s: %w", card.ID, err)
	}
	return nil
}

// Get loads the card stored under id.
func (r *PostgresCardRepository) Get(ctx context.Context, id string) (models.Card, error) {
	var data []byte
	err := r.DB.QueryRowContext(ctx, `SELECT data FROM cards WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Card{}, ErrNotFound
	}
	if err != nil {
		return models.Card{}, fmt.Errorf("get card %s: %w", id, err)
	}

	var card models.Card
	if err := json.Unmarshal(data, &card); err != nil {
		return models.Card{}, fmt.Errorf("decode card %s: %w", id, err)
	}
	return card, nil
}
