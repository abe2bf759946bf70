package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/voxdrop/voxdrop/internal/speech"
)

var languagesCmd = &cobra.Command{
	Use:     "languages",
	Aliases: []string{"langs"},
	Short:   "List the supported languages and accents",
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		return printCatalog(os.Stdout, speech.DefaultCatalog())
	},
}

func printCatalog(w io.Writer, c *speech.Catalog) error {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	styleFunc := func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return header
		}
		return cell
	}

	langs := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(styleFunc).
		Headers("--lang", "Language", "Native")
	for _, l := range c.Languages() {
		langs.Row(l.Code, l.Label, l.Native)
	}

	accents := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(styleFunc).
		Headers("--tld", "Accent")
	for _, a := range c.Accents() {
		accents.Row(a.TLD, a.Label)
	}

	_, err := fmt.Fprintf(w, "%s\n\n%s\n", langs.Render(), accents.Render())
	return err //nolint:wrapcheck
}
