package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/atinyakov/SolForge/internal/models"
	"github.com/atinyakov/SolForge/internal/solana"
	"github.com/atinyakov/SolForge/internal/treasury"
)

// DefaultPriceSol is advertised when neither the card nor the link names a
// price.
var DefaultPriceSol = decimal.RequireFromString("0.1")

var lamportsPerSOL = decimal.NewFromInt(int64(solana.LamportsPerSOL))

// CardGetter looks cards up by id.
type CardGetter interface {
	Get(ctx context.Context, id string) (models.Card, error)
}

// ActionDocument is the link-unfurling description of a buy action.
type ActionDocument struct {
	Type        string       `json:"type"`
	Icon        string       `json:"icon"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Label       string       `json:"label"`
	Disabled    bool         `json:"disabled,omitempty"`
	Error       *ActionError `json:"error,omitempty"`
	Links       ActionLinks  `json:"links"`
}

// ActionLinks lists the actions offered by a document.
type ActionLinks struct {
	Actions []LinkedAction `json:"actions"`
}

// LinkedAction is one purchase option.
type LinkedAction struct {
	Label string `json:"label"`
	Href  string `json:"href"`
	Type  string `json:"type"`
}

// ActionError explains why a document is disabled.
type ActionError struct {
	Message string `json:"message"`
}

// Purchase is a treasury-signed transaction awaiting the buyer's signature.
type Purchase struct {
	Transaction string `json:"transaction"`
	Message     string `json:"message"`
}

// BuyService builds purchase transactions that swap SOL for one unit of a
// card token held by the treasury.
type BuyService struct {
	cards    CardGetter
	rpc      solana.RPC
	treasury treasury.Provider
	log      *zap.Logger
}

// NewBuyService constructs a BuyService.
func NewBuyService(cards CardGetter, rpc solana.RPC, tp treasury.Provider, log *zap.Logger) *BuyService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BuyService{cards: cards, rpc: rpc, treasury: tp, log: log}
}

func (s *BuyService) card(ctx context.Context, id string) (models.Card, error) {
	card, err := s.cards.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrCardNotFound) {
			return models.Card{}, ErrCardNotFound
		}
		return models.Card{}, fmt.Errorf("load card: %w", err)
	}
	return card, nil
}

// Describe returns the action document for card id. origin is the public
// scheme and host the links are built on.
func (s *BuyService) Describe(ctx context.Context, id string, amount decimal.Decimal, origin string) (ActionDocument, error) {
	card, err := s.card(ctx, id)
	if err != nil {
		return ActionDocument{}, err
	}

	price := DefaultPriceSol
	switch {
	case card.HasPrice():
		price = card.PriceSol
	case amount.IsPositive():
		price = amount
	}
	label := fmt.Sprintf("Buy %s SOL", price.String())

	q := url.Values{}
	q.Set("cardId", card.ID)
	q.Set("amount", price.String())

	doc := ActionDocument{
		Type:        "action",
		Icon:        fmt.Sprintf("%s/api/cards/%s/image", origin, url.PathEscape(card.ID)),
		Title:       fmt.Sprintf("%s \u2014 Solana ETF Card", card.Name),
		Description: card.Description,
		Label:       label,
		Links: ActionLinks{Actions: []LinkedAction{{
			Label: label,
			Href:  fmt.Sprintf("%s/api/actions/buy?%s", origin, q.Encode()),
			Type:  "transaction",
		}}},
	}
	if _, ok := card.MintAddress(); !ok {
		doc.Disabled = true
		doc.Error = &ActionError{Message: "Card is not minted yet"}
	}
	return doc, nil
}

// BuildPurchase builds the purchase of card id by account. The card price
// wins over amount; amount is used only when the card has none.
func (s *BuyService) BuildPurchase(ctx context.Context, id, account string, amount decimal.Decimal) (Purchase, error) {
	card, err := s.card(ctx, id)
	if err != nil {
		return Purchase{}, err
	}

	mintAddr, ok := card.MintAddress()
	if !ok {
		return Purchase{}, ErrNotMinted
	}
	mint, err := solana.ParsePublicKey(mintAddr)
	if err != nil {
		return Purchase{}, fmt.Errorf("%w: stored mintAddress is not a valid address", ErrNotMinted)
	}

	price := card.PriceSol
	if !card.HasPrice() {
		price = amount
	}
	if !price.IsPositive() {
		return Purchase{}, fmt.Errorf("%w: priceSol must be positive", ErrInvalidPrice)
	}
	lamports := price.Mul(lamportsPerSOL).Round(0)
	if !lamports.IsPositive() {
		return Purchase{}, fmt.Errorf("%w: %s SOL is below one lamport", ErrInvalidPrice, price)
	}

	buyer, err := solana.ParsePublicKey(account)
	if err != nil {
		return Purchase{}, fmt.Errorf("%w: %w", ErrInvalidAccount, err)
	}

	treas, err := s.treasury.Treasury(ctx)
	if err != nil {
		s.log.Error("treasury unavailable", zap.Error(err))
		return Purchase{}, ErrTreasuryMisconfigured
	}

	treasuryATA, _, err := common.FindAssociatedTokenAddress(treas.PublicKey, mint)
	if err != nil {
		return Purchase{}, fmt.Errorf("treasury token address: %w", err)
	}
	buyerATA, _, err := common.FindAssociatedTokenAddress(buyer, mint)
	if err != nil {
		return Purchase{}, fmt.Errorf("buyer token address: %w", err)
	}

	var (
		hasInventory bool
		buyerHasATA  bool
		bh           solana.Blockhash
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hasInventory, err = s.rpc.AccountExists(gctx, treasuryATA.ToBase58())
		return err
	})
	g.Go(func() error {
		var err error
		buyerHasATA, err = s.rpc.AccountExists(gctx, buyerATA.ToBase58())
		return err
	})
	g.Go(func() error {
		var err error
		bh, err = s.rpc.GetLatestBlockhash(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Purchase{}, fmt.Errorf("chain lookup: %w", err)
	}
	if !hasInventory {
		return Purchase{}, ErrNoInventory
	}

	ins := purchaseInstructions(buyer, treas.PublicKey, mint, buyerATA, treasuryATA, uint64(lamports.IntPart()), !buyerHasATA)
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        buyer,
			RecentBlockhash: bh.Hash,
			Instructions:    ins,
		}),
		Signers: []types.Account{treas},
	})
	if err != nil {
		return Purchase{}, fmt.Errorf("new transaction: %w", err)
	}
	raw, err := tx.Serialize()
	if err != nil {
		return Purchase{}, fmt.Errorf("serialize transaction: %w", err)
	}

	s.log.Info("purchase built",
		zap.String("card", card.ID),
		zap.String("buyer", buyer.ToBase58()),
		zap.String("price", price.String()),
		zap.Bool("createBuyerAccount", !buyerHasATA),
	)

	return Purchase{
		Transaction: base64.StdEncoding.EncodeToString(raw),
		Message:     fmt.Sprintf("Buying %s for %s SOL", card.Name, price.String()),
	}, nil
}

// purchaseInstructions returns [create buyer holding account], payment,
// token release. Both legs live in one transaction.
func purchaseInstructions(buyer, vault, mint, buyerATA, treasuryATA common.PublicKey, lamports uint64, createATA bool) []types.Instruction {
	ins := make([]types.Instruction, 0, 3)
	if createATA {
		ins = append(ins, associated_token_account.CreateAssociatedTokenAccount(
			associated_token_account.CreateAssociatedTokenAccountParam{
				Funder:                 buyer,
				Owner:                  buyer,
				Mint:                   mint,
				AssociatedTokenAccount: buyerATA,
			},
		))
	}
	return append(ins,
		system.Transfer(system.TransferParam{
			From:   buyer,
			To:     vault,
			Amount: lamports,
		}),
		token.Transfer(token.TransferParam{
			From:   treasuryATA,
			To:     buyerATA,
			Auth:   vault,
			Amount: 1,
		}),
	)
}
