package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/SolForge/internal/models"
)

// MetadataSymbol is the token symbol written into pinned metadata.
const MetadataSymbol = "ETF"

// Pinner uploads content to IPFS and returns its CID. GatewayURL turns a
// CID into a link a browser can open.
type Pinner interface {
	PinFile(ctx context.Context, name, contentType string, data []byte) (string, error)
	PinJSON(ctx context.Context, name string, content any) (string, error)
	GatewayURL(cid string) string
}

// PinRequest is the card data needed to pin artwork and metadata.
type PinRequest struct {
	ID          string       `json:"id,omitempty"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Rarity      string       `json:"rarity"`
	Stats       models.Stats `json:"stats"`
	ImageURL    string       `json:"imageUrl"`
}

// PinResult holds the IPFS identifiers of a pinned card.
type PinResult struct {
	ImageCID    string `json:"imageCid"`
	MetadataCID string `json:"metadataCid"`
	MetadataURI string `json:"metadataUri"`
	ImageURI    string `json:"imageUri"`

	// ImageGatewayURL is ImageURI on the configured HTTP gateway.
	ImageGatewayURL string `json:"imageGatewayUrl,omitempty"`
}

// TokenMetadata is the off-chain metadata document referenced by the
// on-chain metadata account.
type TokenMetadata struct {
	Name        string           `json:"name"`
	Symbol      string           `json:"symbol"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Attributes  []TokenAttribute `json:"attributes"`
	Properties  TokenProperties  `json:"properties"`
}

// TokenAttribute is one trait.
type TokenAttribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// TokenProperties lists the files behind the token.
type TokenProperties struct {
	Files    []TokenFile `json:"files"`
	Category string      `json:"category"`
}

// TokenFile is a file reference inside TokenProperties.
type TokenFile struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

// PinService pins card artwork and metadata.
type PinService struct {
	pinner Pinner
	log    *zap.Logger
}

// NewPinService constructs a PinService. A nil pinner makes every call
// fail with ErrPinningNotConfigured.
func NewPinService(p Pinner, log *zap.Logger) *PinService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PinService{pinner: p, log: log}
}

// Pin uploads the inline image of req, then the metadata document pointing
// at it.
func (s *PinService) Pin(ctx context.Context, req PinRequest) (PinResult, error) {
	if s.pinner == nil {
		return PinResult{}, ErrPinningNotConfigured
	}
	mime, data, err := models.DecodeDataURL(req.ImageURL)
	if err != nil {
		return PinResult{}, fmt.Errorf("%w: imageUrl must be a base64 data URL", ErrInvalidImage)
	}

	base := fileBase(req)
	imageCID, err := s.pinner.PinFile(ctx, base+extension(mime), mime, data)
	if err != nil {
		return PinResult{}, fmt.Errorf("pin image: %w", err)
	}
	imageURI := "ipfs://" + imageCID

	meta := TokenMetadata{
		Name:        req.Name,
		Symbol:      MetadataSymbol,
		Description: req.Description,
		Image:       imageURI,
		Attributes: []TokenAttribute{
			{TraitType: "Rarity", Value: req.Rarity},
			{TraitType: "Attack", Value: req.Stats.Attack},
			{TraitType: "Defense", Value: req.Stats.Defense},
		},
		Properties: TokenProperties{
			Files:    []TokenFile{{URI: imageURI, Type: mime}},
			Category: "image",
		},
	}
	metaCID, err := s.pinner.PinJSON(ctx, base+".json", meta)
	if err != nil {
		return PinResult{}, fmt.Errorf("pin metadata: %w", err)
	}

	s.log.Info("card pinned",
		zap.String("name", req.Name),
		zap.String("imageCid", imageCID),
		zap.String("metadataCid", metaCID),
	)
	return PinResult{
		ImageCID:    imageCID,
		MetadataCID: metaCID,
		MetadataURI: "ipfs://" + metaCID,
		ImageURI:    imageURI,

		ImageGatewayURL: s.pinner.GatewayURL(imageCID),
	}, nil
}

func fileBase(req PinRequest) string {
	if req.ID != "" {
		return "card-" + req.ID
	}
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, strings.TrimSpace(req.Name))
	if slug == "" {
		return "card"
	}
	return slug
}

func extension(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
