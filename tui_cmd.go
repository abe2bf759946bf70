package main

import (
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [FILE]",
	Short: "Open the terminal form (the default)",
	Long:  paragraph("\nOpen the terminal form. A text or markdown " + keyword("FILE") + " pre-fills the input."),
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		var text string
		if len(args) == 1 {
			t, err := readInput(args[0], false)
			if err != nil {
				return err
			}
			text = t
		}
		return runTUI(text)
	},
}
