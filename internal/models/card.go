// Package models defines the card record shared by the server, the store and
// the command-line client.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// priceSol travels as a JSON number on the wire.
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	// ErrMissingID is returned when a card has no id.
	ErrMissingID = errors.New("missing card id")
	// ErrInvalidRarity is returned for rarities outside the closed set.
	ErrInvalidRarity = errors.New("invalid rarity")
	// ErrInvalidStats is returned for stats outside 0-100.
	ErrInvalidStats = errors.New("stats must be within 0-100")
	// ErrInvalidPrice is returned for a negative price.
	ErrInvalidPrice = errors.New("invalid priceSol")
	// ErrAlreadyMinted is returned when mint fields are set a second time.
	ErrAlreadyMinted = errors.New("card already minted")
	// ErrAlreadyPinned is returned when pin fields are set a second time.
	ErrAlreadyPinned = errors.New("card already pinned")
)

// Rarity is the closed set of card rarities.
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityRare      Rarity = "Rare"
	RarityEpic      Rarity = "Epic"
	RarityLegendary Rarity = "Legendary"
	RarityMythic    Rarity = "Mythic"
)

// Valid reports whether r is one of the known rarities.
func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary, RarityMythic:
		return true
	}
	return false
}

// Stats are the card's combat values, each within 0-100.
type Stats struct {
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
}

// MintRecord is the on-chain identity of a minted card.
type MintRecord struct {
	// Address is the base58 mint address.
	Address string
	// Signature is the mint transaction signature, when known.
	Signature string
}

// PinRecord holds the off-chain IPFS references of a pinned card.
type PinRecord struct {
	MetadataURI string
	ImageCID    string
}

// Stage is the lifecycle position of a card.
type Stage int

const (
	// StageDrafted cards exist only as generated metadata and artwork.
	StageDrafted Stage = iota
	// StageMinted cards have an on-chain mint.
	StageMinted
	// StagePinned cards are minted and have pinned metadata.
	StagePinned
)

func (s Stage) String() string {
	switch s {
	case StageMinted:
		return "minted"
	case StagePinned:
		return "pinned"
	default:
		return "drafted"
	}
}

// Card is a generated trading card. Mint and pin data are each set exactly
// once through WithMint and WithPin.
type Card struct {
	ID           string
	Name         string
	Description  string
	Rarity       Rarity
	Stats        Stats
	ImageURL     string
	VisualPrompt string
	// VarList is opaque generation provenance.
	VarList json.RawMessage
	// PriceSol is the sale price; zero means unset.
	PriceSol decimal.Decimal

	mint *MintRecord
	pin  *PinRecord
}

// Stage reports the lifecycle position of c.
func (c Card) Stage() Stage {
	switch {
	case c.mint == nil:
		return StageDrafted
	case c.pin == nil:
		return StageMinted
	default:
		return StagePinned
	}
}

// MintAddress returns the mint address and whether the card is minted.
func (c Card) MintAddress() (string, bool) {
	if c.mint == nil {
		return "", false
	}
	return c.mint.Address, true
}

// Mint returns the mint record, if any.
func (c Card) Mint() (MintRecord, bool) {
	if c.mint == nil {
		return MintRecord{}, false
	}
	return *c.mint, true
}

// Pin returns the pin record, if any.
func (c Card) Pin() (PinRecord, bool) {
	if c.pin == nil {
		return PinRecord{}, false
	}
	return *c.pin, true
}

// WithMint returns a copy of c carrying the mint record.
func (c Card) WithMint(address, signature string) (Card, error) {
	if c.mint != nil {
		return c, ErrAlreadyMinted
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return c, errors.New("empty mint address")
	}
	c.mint = &MintRecord{Address: address, Signature: strings.TrimSpace(signature)}
	return c, nil
}

// WithPin returns a copy of c carrying the pin record.
func (c Card) WithPin(metadataURI, imageCID string) (Card, error) {
	if c.pin != nil {
		return c, ErrAlreadyPinned
	}
	if metadataURI == "" && imageCID == "" {
		return c, errors.New("empty pin record")
	}
	c.pin = &PinRecord{MetadataURI: metadataURI, ImageCID: imageCID}
	return c, nil
}

// HasPrice reports whether the card carries a positive sale price.
func (c Card) HasPrice() bool {
	return c.PriceSol.IsPositive()
}

// Validate checks the field constraints enforced when a card is saved.
func (c Card) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrMissingID
	}
	if c.Rarity != "" && !c.Rarity.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRarity, c.Rarity)
	}
	if c.Stats.Attack < 0 || c.Stats.Attack > 100 || c.Stats.Defense < 0 || c.Stats.Defense > 100 {
		return ErrInvalidStats
	}
	if c.PriceSol.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

// cardJSON is the flat wire representation of a card.
type cardJSON struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Rarity       Rarity           `json:"rarity,omitempty"`
	Stats        Stats            `json:"stats"`
	ImageURL     string           `json:"imageUrl"`
	VisualPrompt string           `json:"visualPrompt,omitempty"`
	VarList      json.RawMessage  `json:"varList,omitempty"`
	PriceSol     *decimal.Decimal `json:"priceSol,omitempty"`
	MintAddress  string           `json:"mintAddress,omitempty"`
	MintTx       string           `json:"mintTx,omitempty"`
	MetadataURI  string           `json:"metadataUri,omitempty"`
	ImageCID     string           `json:"imageCid,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c Card) MarshalJSON() ([]byte, error) {
	out := cardJSON{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		Rarity:       c.Rarity,
		Stats:        c.Stats,
		ImageURL:     c.ImageURL,
		VisualPrompt: c.VisualPrompt,
		VarList:      c.VarList,
	}
	if !c.PriceSol.IsZero() {
		p := c.PriceSol
		out.PriceSol = &p
	}
	if c.mint != nil {
		out.MintAddress = c.mint.Address
		out.MintTx = c.mint.Signature
	}
	if c.pin != nil {
		out.MetadataURI = c.pin.MetadataURI
		out.ImageCID = c.pin.ImageCID
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Card) UnmarshalJSON(data []byte) error {
	var in cardJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*c = Card{
		ID:           in.ID,
		Name:         in.Name,
		Description:  in.Description,
		Rarity:       in.Rarity,
		Stats:        in.Stats,
		ImageURL:     in.ImageURL,
		VisualPrompt: in.VisualPrompt,
		VarList:      in.VarList,
	}
	if in.PriceSol != nil {
		c.PriceSol = *in.PriceSol
	}
	if strings.TrimSpace(in.MintAddress) != "" {
		c.mint = &MintRecord{Address: strings.TrimSpace(in.MintAddress), Signature: in.MintTx}
	}
	if in.MetadataURI != "" || in.ImageCID != "" {
		c.pin = &PinRecord{MetadataURI: in.MetadataURI, ImageCID: in.ImageCID}
	}
	return nil
}
