// Package main generates a treasury keypair and writes it as a Solana CLI
// style JSON byte array.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/blocto/solana-go-sdk/types"

	"github.com/atinyakov/SolForge/internal/solana"
)

func main() {
	out := flag.String("o", "treasury.json", "output keypair file")
	force := flag.Bool("f", false, "overwrite an existing file")
	flag.Parse()

	acc, err := generate(*out, *force)
	if err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Keypair written to %s\n", *out)
	fmt.Printf("   address: %s\n", acc.PublicKey.ToBase58())
	fmt.Printf("   export TREASURY_PUBLIC_KEY=%s\n", acc.PublicKey.ToBase58())
}

// generate creates a fresh keypair and writes it to path with owner-only
// permissions. An existing file is kept unless force is set.
func generate(path string, force bool) (types.Account, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return types.Account{}, fmt.Errorf("%s already exists (use -f to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return types.Account{}, err
	}

	acc := types.NewAccount()
	data, err := solana.MarshalKeypairJSON(acc)
	if err != nil {
		return types.Account{}, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return types.Account{}, fmt.Errorf("write keypair: %w", err)
	}
	return acc, nil
}
