package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/kk-code-lab/rtree/internal/config"
	"github.com/kk-code-lab/rtree/internal/logging"
	statepkg "github.com/kk-code-lab/rtree/internal/state"
	"github.com/spf13/cobra"
)

type configOptions struct {
	init       bool
	resetPanel bool
}

func newConfigCmd(root *rootOptions) *cobra.Command {
	opts := &configOptions{}
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise the settings",
		Long: `Prints the effective settings as JSON: the settings file merged over the
defaults, with flag overrides applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			defer func() { _ = logging.Sync() }()
			out := cmd.OutOrStdout()

			if opts.init {
				if err := initConfig(root.configPath, cfg); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", root.configPath)
			}
			if opts.resetPanel {
				db, err := openStore(cfg.Store.Path)
				if err != nil {
					return err
				}
				defer func() { _ = db.Close() }()
				if err := db.DeleteKV(cmd.Context(), statepkg.PanelKey); err != nil {
					return err
				}
				fmt.Fprintln(out, "panel state cleared")
			}
			if opts.init || opts.resetPanel {
				return nil
			}

			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.init, "init", false, "write the settings file if it does not exist")
	cmd.Flags().BoolVar(&opts.resetPanel, "reset-panel", false, "forget the stored panel width")
	return cmd
}

func initConfig(path string, cfg config.Config) error {
	if path == "" {
		return errors.New("no settings file location; pass --config")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	return config.Save(path, cfg)
}
