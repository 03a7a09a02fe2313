package main

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	colorize "github.com/fatih/color"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/atinyakov/SolForge/internal/models"
)

const (
	defaultArtWidth = 32
	defaultTermSize = 80
)

func newShowCmd(a *app) *cobra.Command {
	var artWidth int
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display a card with ANSI art",
		Long: `Show prints the card's artwork as 24-bit ANSI art next to its name,
rarity, stats, chain state and description.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			card, err := a.lib.Get(args[0])
			if err != nil {
				return err
			}

			art := ""
			if _, data, err := models.DecodeDataURL(card.ImageURL); err == nil {
				if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
					art = imageToAnsi(img, artWidth)
				}
			}

			width, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err != nil || width <= 0 {
				width = defaultTermSize
			}
			a.printf("%s", renderCard(card, art, width))
			return nil
		},
	}
	cmd.Flags().IntVarP(&artWidth, "width", "w", defaultArtWidth, "art width in terminal columns")
	return cmd
}

// imageToAnsi renders img cols characters wide. Each character is an upper
// half block covering a 2x2 pixel cell: the top pair sets the foreground,
// the bottom pair the background.
func imageToAnsi(img image.Image, cols int) string {
	b := img.Bounds()
	if cols <= 0 || b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}
	rows := (cols*b.Dy() + b.Dx()) / (2 * b.Dx())
	if rows < 1 {
		rows = 1
	}
	resized := resize.Resize(uint(cols*2), uint(rows*2), img, resize.Lanczos3)

	var sb strings.Builder
	for y := 0; y < rows*2; y += 2 {
		for x := 0; x < cols*2; x += 2 {
			top := averageColor(colorAt(resized, x, y), colorAt(resized, x+1, y))
			bottom := averageColor(colorAt(resized, x, y+1), colorAt(resized, x+1, y+1))
			tr, tg, tb := top.RGB255()
			br, bg, bb := bottom.RGB255()
			fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀\x1b[0m", tr, tg, tb, br, bg, bb)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func colorAt(img image.Image, x, y int) colorful.Color {
	b := img.Bounds()
	px, py := b.Min.X+x, b.Min.Y+y
	if px >= b.Max.X || py >= b.Max.Y {
		return colorful.Color{}
	}
	c, _ := colorful.MakeColor(img.At(px, py))
	return c
}

func averageColor(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	n := float64(len(colors))
	return colorful.Color{R: r / n, G: g / n, B: b / n}
}

func cardInfo(c models.Card, width int) []string {
	label := func(s string) string { return colorize.CyanString("%-8s", s) }
	lines := []string{
		label("Card:") + colorize.HiWhiteString("%s", c.Name),
		label("ID:") + c.ID,
	}
	if c.Rarity != "" {
		lines = append(lines, label("Rarity:")+string(c.Rarity))
	}
	lines = append(lines,
		label("Attack:")+fmt.Sprint(c.Stats.Attack),
		label("Defense:")+fmt.Sprint(c.Stats.Defense),
		label("Stage:")+c.Stage().String(),
	)
	if addr, ok := c.MintAddress(); ok {
		lines = append(lines, label("Mint:")+addr)
	}
	if pin, ok := c.Pin(); ok {
		lines = append(lines, label("IPFS:")+pin.MetadataURI)
	}
	if c.HasPrice() {
		lines = append(lines, label("Price:")+c.PriceSol.String()+" SOL")
	}
	if c.Description != "" {
		lines = append(lines, "", colorize.CyanString("Description:"))
		lines = append(lines, wrapText(c.Description, width)...)
	}
	return lines
}

// renderCard lays the art out on the left and the card info on the right.
func renderCard(c models.Card, art string, termWidth int) string {
	artLines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	artWidth := 0
	for _, l := range artLines {
		artWidth = max(artWidth, len([]rune(stripAnsi(l))))
	}

	const spacing = 4
	infoCol := artWidth + spacing
	if artWidth == 0 {
		infoCol = 0
	}
	info := cardInfo(c, max(termWidth-infoCol-2, 20))

	var sb strings.Builder
	sb.WriteString("\n")
	for i := 0; i < max(len(artLines), len(info)); i++ {
		sb.WriteString("  ")
		if i < len(artLines) && artWidth > 0 {
			sb.WriteString(artLines[i])
			sb.WriteString(strings.Repeat(" ", infoCol-len([]rune(stripAnsi(artLines[i])))))
		} else {
			sb.WriteString(strings.Repeat(" ", infoCol))
		}
		if i < len(info) {
			sb.WriteString(info[i])
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var out []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			out = append(out, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(out, line)
}

func stripAnsi(s string) string {
	var sb strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
