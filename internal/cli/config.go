package cli

import (
	"fmt"
	"strings"

	"memo-cli/internal/store"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change ~/.memo/config.json",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the config file and the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"path":   path,
					"config": app.cfg,
					"effective": map[string]any{
						"dir":       app.Dir,
						"backend":   app.Backend,
						"dsnSet":    app.DSN != "",
						"key":       app.Key,
						"exportDir": app.ExportDir,
						"logLevel":  app.LogLevel,
					},
				},
			})
		},
	}
}

var configKeys = []string{"backend", "dsn", "key", "dataDir", "exportDir", "logLevel", "tui.theme"}

func newConfigSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one config value (keys: " + strings.Join(configKeys, ", ") + ")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := setConfigValue(cfg, key, value); err != nil {
				return writeErr(cmd, err)
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": cfg})
		},
	}
}

func setConfigValue(cfg *store.GlobalConfig, key, value string) error {
	switch key {
	case "backend":
		cfg.Backend = strings.ToLower(value)
	case "dsn":
		cfg.DSN = value
	case "key":
		cfg.Key = value
	case "dataDir":
		cfg.DataDir = value
	case "exportDir":
		cfg.ExportDir = value
	case "logLevel":
		cfg.LogLevel = strings.ToLower(value)
	case "tui.theme":
		if cfg.TUI == nil {
			cfg.TUI = &store.TUIConfig{}
		}
		cfg.TUI.Theme = strings.ToLower(value)
	default:
		return fmt.Errorf("config: unknown key %q (want one of %s)", key, strings.Join(configKeys, ", "))
	}
	return store.ValidateConfig(cfg)
}
