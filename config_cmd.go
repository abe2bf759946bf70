package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# directory for generated MP3 files
workdir: "temp"
# files older than this many days are removed when voxdrop starts
retention_days: 7
# spoken language: es, en, pt, fr, it, de or ja
language: "es"
# accent, as a Google Translate domain: com, co.uk, co.in, ca, com.au, ie or co.za
accent: "com"
# speak slowly
slow: false
# synthesis engine: gtts, gtts-cli or mock
engine: "gtts"

# Google Translate engine
gtts:
  # timeout for each request
  timeout: "30s"
  # requests per minute; long texts are sent in chunks of 100 characters
  requests_per_minute: 120

# gtts-cli engine
cli:
  binary: "gtts-cli"
  timeout: "60s"

# cache of rendered audio, so repeated texts are not synthesized again
cache:
  enabled: true
  # defaults to the user cache directory
  dir: ""
  # size limit in MB
  max_size: 100
  # zstd level, 0 disables compression
  compression_level: 3

# browser front end (voxdrop serve)
serve:
  addr: ":8501"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the voxdrop config file",
	Long:    paragraph(fmt.Sprintf("\n%s the voxdrop config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("voxdrop config\nvoxdrop config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("voxdrop", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

// ensureConfigFile writes the default config to configFile unless a file
// is already there.
func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
	}
	if configFile == "" {
		return errors.New("no config file location")
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unable to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
		return fmt.Errorf("unable create directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfig), 0o600); err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	log.Debug("Wrote default configuration", "path", configFile)
	return nil
}
