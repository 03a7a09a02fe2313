package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/atinyakov/SolForge/internal/mint"
	"github.com/atinyakov/SolForge/internal/models"
	"github.com/atinyakov/SolForge/internal/service"
	"github.com/atinyakov/SolForge/internal/solana"
)

type mintOptions struct {
	keypair   string
	treasury  string
	price     string
	noPublish bool
}

func newMintCmd(a *app) *cobra.Command {
	var opts mintOptions
	cmd := &cobra.Command{
		Use:   "mint <id>",
		Short: "Mint a card as a one-of-one token",
		Long: `Mint creates a new token for the card with your keypair as payer and mint
authority. The minted unit goes to the treasury when one is configured, so
the server can sell it through the buy action. Pin the card first to attach
on-chain metadata; unpinned cards are minted without it.

On devnet the wallet is topped up from the faucet when its balance is low.
If confirmation times out, the transaction may still land: check it later
with "solforge status <signature>".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.mint(ctx, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.keypair, "keypair", "k", "", "wallet keypair file (overrides config)")
	cmd.Flags().StringVarP(&opts.treasury, "treasury", "t", "", "address receiving the minted unit (overrides config)")
	cmd.Flags().StringVarP(&opts.price, "price", "p", "", "sale price in SOL")
	cmd.Flags().BoolVar(&opts.noPublish, "no-publish", false, "keep the minted card local")
	return cmd
}

func (a *app) mint(ctx context.Context, id string, opts mintOptions) error {
	card, err := a.lib.Get(id)
	if err != nil {
		return err
	}
	if _, ok := card.MintAddress(); ok {
		return models.ErrAlreadyMinted
	}
	if opts.price != "" {
		p, err := decimal.NewFromString(opts.price)
		if err != nil || !p.IsPositive() {
			return fmt.Errorf("invalid price %q", opts.price)
		}
		card.PriceSol = p
	}

	keypairPath := firstNonEmpty(opts.keypair, a.cfg.Keypair)
	payer, err := solana.LoadKeypairFile(keypairPath)
	if err != nil {
		return fmt.Errorf("load wallet %s: %w", keypairPath, err)
	}

	var recipient common.PublicKey
	if addr := firstNonEmpty(opts.treasury, a.cfg.Treasury); addr != "" {
		recipient, err = solana.ParsePublicKey(addr)
		if err != nil {
			return fmt.Errorf("treasury: %w", err)
		}
	}

	params := mint.Params{
		Recipient: recipient,
		Name:      truncateRunes(card.Name, mint.MaxNameLength),
		Symbol:    service.MetadataSymbol,
	}
	if pin, ok := card.Pin(); ok {
		params.URI = pin.MetadataURI
	} else {
		a.printf("%s card is not pinned, minting without metadata\n", color.YellowString("Note:"))
	}

	rpc := solana.NewClient(a.cfg.RPCURL, uint64(a.cfg.SendRetries), a.log)
	minter := mint.NewMinter(rpc, a.log)

	a.printf("Minting %s from %s\n", color.HiWhiteString("%s", card.Name), payer.PublicKey.ToBase58())
	res, err := minter.Mint(ctx, params, mint.KeypairWallet{Account: payer}, mint.ObserverFunc(a.observe))
	if err != nil {
		a.explain(err)
		return err
	}

	card, err = card.WithMint(res.MintAddress, res.Signature)
	if err != nil {
		return err
	}
	a.lib.Put(card)
	if err := a.lib.Save(); err != nil {
		return err
	}
	a.printf("%s %s\n", color.GreenString("Mint:"), res.MintAddress)

	if opts.noPublish {
		return nil
	}
	if err := a.api.Publish(ctx, card); err != nil {
		return fmt.Errorf("minted but not published, retry with \"solforge publish %s\": %w", card.ID, err)
	}
	a.printf("%s %s\n", color.CyanString("Blink:"), a.api.BlinkURL(card.ID))
	return nil
}

func (a *app) observe(e mint.Event) {
	switch e.Status {
	case mint.StatusApprovalPending:
		a.printf("  %s\n", color.YellowString("signing..."))
	case mint.StatusSubmitted:
		a.printf("  %s %s\n", color.BlueString("submitted"), e.Signature)
	case mint.StatusConfirming:
		a.printf("  %s\n", color.BlueString("confirming..."))
	case mint.StatusConfirmed:
		a.printf("  %s\n", color.GreenString("confirmed"))
	case mint.StatusError:
		a.printf("  %s\n", color.RedString("failed"))
	}
}

// explain prints what the user can do about a failed mint.
func (a *app) explain(err error) {
	var te *mint.TxError
	if !errors.As(err, &te) {
		return
	}
	for _, l := range te.Logs {
		a.printf("  %s\n", color.HiBlackString("%s", l))
	}
	switch {
	case errors.Is(err, mint.ErrConfirmationTimeout) && te.Signature != "":
		a.printf("The transaction may still land. Check it with: solforge status %s\n", te.Signature)
	case errors.Is(err, mint.ErrBlockhashExpired), errors.Is(err, mint.ErrStaleBlockhash):
		a.printf("The blockhash expired before confirmation; it is safe to retry.\n")
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <signature>",
		Short: "Look up a submitted transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rpc := solana.NewClient(a.cfg.RPCURL, uint64(a.cfg.SendRetries), a.log)
			st, err := mint.NewSubmitter(rpc, a.log).Reconcile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printf("%s\n", statusLine(st))
			return nil
		},
	}
}

func statusLine(st solana.SignatureStatus) string {
	switch {
	case !st.Found:
		return color.YellowString("not found") + " (not landed yet, or the blockhash expired)"
	case st.Err != nil:
		return color.RedString("failed") + fmt.Sprintf(": %v", st.Err)
	case st.Confirmed():
		return color.GreenString("%s", st.Commitment)
	default:
		return color.BlueString("%s", st.Commitment)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}
