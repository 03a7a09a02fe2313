package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/atinyakov/SolForge/internal/models"
)

func newAddCmd(a *app) *cobra.Command {
	var price string
	cmd := &cobra.Command{
		Use:   "add <card.json|->",
		Short: "Add a generated card document to the library",
		Long: `Add reads a card document as produced by the card generator and stores it
in the library. A card without an id gets a fresh one. Use - to read from
standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			var card models.Card
			if err := json.NewDecoder(r).Decode(&card); err != nil {
				return fmt.Errorf("decode card: %w", err)
			}
			if strings.TrimSpace(card.ID) == "" {
				card.ID = uuid.NewString()
			}
			if price != "" {
				p, err := decimal.NewFromString(price)
				if err != nil {
					return fmt.Errorf("invalid price %q: %w", price, err)
				}
				card.PriceSol = p
			}
			if err := card.Validate(); err != nil {
				return err
			}

			a.lib.Put(card)
			if err := a.lib.Save(); err != nil {
				return err
			}
			a.printf("%s %s\n", color.GreenString("Added"), card.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&price, "price", "p", "", "sale price in SOL")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the cards in the library",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cards := a.lib.List()
			if len(cards) == 0 {
				a.printf("No cards yet. Add one with: solforge add card.json\n")
				return nil
			}
			for _, c := range cards {
				price := "-"
				if c.HasPrice() {
					price = c.PriceSol.String() + " SOL"
				}
				a.printf("%-36s  %-24s  %-9s  %s  %s\n",
					c.ID, c.Name, c.Rarity, stageLabel(c.Stage()), price)
			}
			return nil
		},
	}
}

func newPublishCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <id>",
		Short: "Store a card on the server so it can be sold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := a.lib.Get(args[0])
			if err != nil {
				return err
			}
			if err := a.api.Publish(cmd.Context(), card); err != nil {
				return err
			}
			a.printf("%s %s to %s\n", color.GreenString("Published"), card.ID, a.cfg.Server)
			return nil
		},
	}
}

func newBlinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "blink <id>",
		Short: "Print the action and Blink links that sell a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			card, err := a.lib.Get(args[0])
			if err != nil {
				return err
			}
			if _, ok := card.MintAddress(); !ok {
				a.printf("%s card is not minted yet, the action will be disabled\n", color.YellowString("Warning:"))
			}
			a.printf("%s %s\n", color.CyanString("Action:"), a.api.ActionURL(card.ID))
			a.printf("%s  %s\n", color.CyanString("Blink:"), a.api.BlinkURL(card.ID))
			return nil
		},
	}
}

func newPinCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pin <id>",
		Short: "Upload a card's artwork and metadata to IPFS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := a.lib.Get(args[0])
			if err != nil {
				return err
			}
			if _, ok := card.Pin(); ok {
				return models.ErrAlreadyPinned
			}

			res, err := a.api.Pin(cmd.Context(), card)
			if err != nil {
				return err
			}
			card, err = card.WithPin(res.MetadataURI, res.ImageCID)
			if err != nil {
				return err
			}
			a.lib.Put(card)
			if err := a.lib.Save(); err != nil {
				return err
			}

			a.printf("%s %s\n", color.GreenString("Pinned"), card.ID)
			a.printf("  image:    %s\n", res.ImageURI)
			if res.ImageGatewayURL != "" {
				a.printf("  preview:  %s\n", res.ImageGatewayURL)
			}
			a.printf("  metadata: %s\n", res.MetadataURI)
			return nil
		},
	}
}

func stageLabel(s models.Stage) string {
	label := fmt.Sprintf("%-7s", s.String())
	switch s {
	case models.StagePinned:
		return color.CyanString("%s", label)
	case models.StageMinted:
		return color.GreenString("%s", label)
	default:
		return color.YellowString("%s", label)
	}
}
