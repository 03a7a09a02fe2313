// Package service holds the card, purchase and pinning logic behind the
// HTTP handlers.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/nfnt/resize"
	"go.uber.org/zap"

	"github.com/atinyakov/SolForge/internal/models"
	"github.com/atinyakov/SolForge/internal/repository"
)

// MaxImageWidth caps the width accepted for resized card images.
const MaxImageWidth = 1024

// CardRepository is the storage the card service depends on.
type CardRepository interface {
	// Save stores card under its id, replacing any previous version.
	Save(ctx context.Context, card models.Card) error
	// Get returns the card stored under id or repository.ErrNotFound.
	Get(ctx context.Context, id string) (models.Card, error)
}

// CardService validates, stores and serves cards.
type CardService struct {
	repo CardRepository
	log  *zap.Logger
}

// NewCardService constructs a CardService over repo.
func NewCardService(repo CardRepository, log *zap.Logger) *CardService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CardService{repo: repo, log: log}
}

// Save validates card and stores it. Saving an existing id overwrites it.
func (s *CardService) Save(ctx context.Context, card models.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCard, err)
	}
	if err := s.repo.Save(ctx, card); err != nil {
		return fmt.Errorf("save card: %w", err)
	}
	mint, _ := card.MintAddress()
	s.log.Info("card saved",
		zap.String("id", card.ID),
		zap.String("stage", card.Stage().String()),
		zap.String("mint", mint),
	)
	return nil
}

// Get returns the card stored under id.
func (s *CardService) Get(ctx context.Context, id string) (models.Card, error) {
	card, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Card{}, ErrCardNotFound
	}
	if err != nil {
		return models.Card{}, fmt.Errorf("get card: %w", err)
	}
	return card, nil
}

// Image decodes the inline image of card id. A positive width returns a
// PNG scaled to that width, keeping the aspect ratio.
func (s *CardService) Image(ctx context.Context, id string, width int) (string, []byte, error) {
	card, err := s.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if card.ImageURL == "" {
		return "", nil, ErrNoImage
	}
	mime, data, err := models.DecodeDataURL(card.ImageURL)
	if err != nil {
		return "", nil, ErrNoImage
	}
	if width <= 0 {
		return mime, data, nil
	}
	if width > MaxImageWidth {
		return "", nil, fmt.Errorf("%w: width above %d", ErrInvalidImage, MaxImageWidth)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// formats without a registered decoder are served as stored
		s.log.Debug("image not resizable", zap.String("id", id), zap.String("mime", mime), zap.Error(err))
		return mime, data, nil
	}
	if img.Bounds().Dx() <= width {
		return mime, data, nil
	}

	scaled := resize.Resize(uint(width), 0, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", nil, fmt.Errorf("encode image: %w", err)
	}
	return "image/png", buf.Bytes(), nil
}
