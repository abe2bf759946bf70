package main

import (
	"bytes"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/dimiro1/banner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/voxdrop/voxdrop/internal/web"
	"golang.org/x/term"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Serve the text to MP3 form in the browser",
	Long:    paragraph(fmt.Sprintf("\n%s the text to MP3 form over HTTP. Generated files are kept in the working directory.", keyword("Serve"))),
	Example: paragraph("voxdrop serve\nvoxdrop serve --addr 127.0.0.1:8080 --engine gtts-cli"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, closeCache, err := newStudio()
		if err != nil {
			return err
		}
		defer closeCache() //nolint:errcheck

		printBanner(s.Engine())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := web.New(s, web.Config{
			Addr:          viper.GetString("serve.addr"),
			RetentionDays: opts.RetentionDays,
			Defaults: web.Defaults{
				Language: opts.Language,
				Accent:   opts.Accent,
				Slow:     opts.Slow,
			},
			Logger: log.Default().WithPrefix("web"),
		})
		return srv.Run(ctx) //nolint:wrapcheck
	},
}

func printBanner(engine string) {
	tpl := "{{ .Title \"voxdrop\" \"\" 0 }}\n" +
		"Version: " + Version + "\n" +
		"Engine:  " + engine + "\n" +
		"Serving: http://" + displayAddr(viper.GetString("serve.addr")) + "\n\n"
	banner.Init(os.Stderr, true, term.IsTerminal(int(os.Stderr.Fd())), bytes.NewBufferString(tpl))
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func init() {
	serveCmd.Flags().String("addr", ":8501", "address to listen on")
	_ = viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
}
