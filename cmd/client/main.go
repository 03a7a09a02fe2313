// Command solforge is the command-line client of SolForge. It keeps a local
// card library, pins artwork through the server, mints cards on chain with
// a local keypair and prints the Blink that sells them.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atinyakov/SolForge/internal/client/library"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// app is the state shared by all subcommands once the root has loaded the
// config and the library.
type app struct {
	configPath  string
	libraryPath string
	server      string
	verbose     bool

	cfg library.Config
	lib *library.Library
	api *library.Client
	log *zap.Logger
	out io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "solforge",
		Short: "Mint and sell generated trading cards on Solana",
		Long: `solforge manages a local library of generated trading cards.

Cards enter the library as JSON documents produced by the card generator.
From there they can be pinned to IPFS through the SolForge server, minted
with your wallet keypair, published to the server and sold through a Blink.`,
		Version:       fmt.Sprintf("%s (built %s)", orNA(version), orNA(buildDate)),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", library.DefaultConfigPath(), "path to the client config file")
	root.PersistentFlags().StringVar(&a.libraryPath, "library", library.DefaultLibraryPath(), "path to the card library")
	root.PersistentFlags().StringVarP(&a.server, "server", "s", "", "SolForge server URL (overrides config)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log chain calls")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newPinCmd(a),
		newMintCmd(a),
		newStatusCmd(a),
		newPublishCmd(a),
		newBlinkCmd(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	if a.out == nil {
		a.out = cmd.OutOrStdout()
	}

	cfg, err := library.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.server != "" {
		cfg.Server = a.server
	}
	a.cfg = cfg

	lib, err := library.Open(a.libraryPath)
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}
	a.lib = lib
	a.api = library.NewClient(cfg.Server, nil)

	a.log = zap.NewNop()
	if a.verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			a.log = l
		}
	}
	return nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func main() {
	a := &app{}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}
