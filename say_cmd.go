package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/voxdrop/voxdrop/internal/audio"
	"github.com/voxdrop/voxdrop/internal/markdown"
	"github.com/voxdrop/voxdrop/internal/speech"
	"golang.org/x/term"
)

var (
	sayOut      string
	sayPlay     bool
	sayMarkdown bool

	sayCmd = &cobra.Command{
		Use:   "say [TEXT...|FILE|-]",
		Short: "Convert text to an MP3 file",
		Long: paragraph(fmt.Sprintf("\n%s text given as arguments, a file, or stdin into an MP3 in the working directory.",
			keyword("Convert"))),
		Example: paragraph("voxdrop say Hola mundo\nvoxdrop say -l en -t co.uk notes.md --play\necho 'Bonjour' | voxdrop say -l fr -o - > bonjour.mp3"),
		RunE:    runSay,
	}
)

// sayText resolves the text to convert from the command arguments.
func sayText(args []string) (string, error) {
	if len(args) == 0 {
		yes, err := stdinIsPipe()
		if err != nil {
			return "", err
		}
		if !yes {
			return "", errors.New("no text given: pass it as arguments, a file, or on stdin")
		}
		args = []string{"-"}
	}

	if len(args) == 1 {
		if args[0] == "-" {
			return readInput("-", sayMarkdown)
		}
		if st, err := os.Stat(args[0]); err == nil && st.Mode().IsRegular() {
			return readInput(args[0], sayMarkdown)
		}
	}

	text := strings.Join(args, " ")
	if sayMarkdown {
		return markdown.ToSpeech([]byte(text)) //nolint:wrapcheck
	}
	return text, nil
}

func runSay(cmd *cobra.Command, args []string) error {
	text, err := sayText(args)
	if err != nil {
		return err
	}

	s, closeCache, err := newStudio()
	if err != nil {
		return err
	}
	defer closeCache() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := s.Render(ctx, speech.Request{
		Text:     text,
		Language: opts.Language,
		Accent:   opts.Accent,
		Slow:     opts.Slow,
	})
	if err != nil {
		return errors.New(speech.UserMessage(err))
	}

	// Report the file on stdout unless stdout carries the audio itself.
	report := io.Writer(os.Stdout)
	if sayOut == "-" {
		report = os.Stderr
	}
	if err := writeOutput(sayOut, res.Audio); err != nil {
		return err
	}

	if f, ok := report.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		note := humanize.Bytes(uint64(len(res.Audio)))
		if res.Cached {
			note += ", cached"
		}
		fmt.Fprintf(report, "%s %s %s\n", keyword("Saved"), res.File.Path, faint("("+note+")"))
	} else {
		fmt.Fprintln(report, res.File.Path)
	}

	if sayPlay {
		if err := audio.Play(ctx, res.Audio); err != nil && !errors.Is(err, ctx.Err()) {
			return fmt.Errorf("unable to play audio: %w", err)
		}
	}
	return nil
}

// writeOutput copies the audio to path, or to stdout when path is "-".
func writeOutput(path string, mp3 []byte) error {
	switch path {
	case "":
		return nil
	case "-":
		_, err := os.Stdout.Write(mp3)
		return err //nolint:wrapcheck
	default:
		if err := os.WriteFile(path, mp3, 0o644); err != nil { //nolint:gosec
			return fmt.Errorf("unable to write %s: %w", path, err)
		}
		return nil
	}
}

func init() {
	sayCmd.Flags().StringVarP(&sayOut, "out", "o", "", "also write the MP3 to this path (- for stdout)")
	sayCmd.Flags().BoolVar(&sayPlay, "play", false, "play the audio when done")
	sayCmd.Flags().BoolVar(&sayMarkdown, "markdown", false, "treat the input as markdown and read only its text")
}
