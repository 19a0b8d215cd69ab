package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"memo-cli/internal/format"
	"memo-cli/internal/logging"
	"memo-cli/internal/memo"
	"memo-cli/internal/store"
	"memo-cli/internal/tui"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// App holds the resolved settings for one invocation. Flag values start
// empty; resolve fills the gaps from env, the config file and defaults.
type App struct {
	Dir        string
	Backend    string
	DSN        string
	Key        string
	ExportDir  string
	LogLevel   string
	PrettyJSON bool

	cfg *store.GlobalConfig
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "memo",
		Short:        "Markdown memos in your terminal (TUI + CLI + web)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  memo

  # Scriptable commands
  memo list
  memo add --title "Groceries" --body "- milk"

  # Direct memo lookup (shortcut for: memo show <memo-id>)
  memo memo-abcd1234
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := app.resolve(); err != nil {
			return writeErr(cmd, err)
		}
		app.log = logging.New(logging.Options{
			Level:   app.LogLevel,
			Default: zapcore.WarnLevel,
			Writer:  cmd.ErrOrStderr(),
		})
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Data directory (env MEMO_DIR; default ~/.memo/data)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Storage backend: "+strings.Join(store.Backends(), "|")+" (env MEMO_BACKEND)")
	cmd.PersistentFlags().StringVar(&app.DSN, "dsn", "", "Postgres connection string (env MEMO_DSN)")
	cmd.PersistentFlags().StringVar(&app.Key, "key", "", "Storage key the memo list lives under (env MEMO_KEY)")
	cmd.PersistentFlags().StringVar(&app.ExportDir, "export-dir", "", "Where exports are written (env MEMO_EXPORT_DIR)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level: debug|info|warn|error (env MEMO_LOG_LEVEL)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// resolve applies flag > env > config file > default for every setting.
func (app *App) resolve() error {
	// Best-effort: a missing .env is normal.
	_ = godotenv.Load()

	cfg, err := store.LoadConfig()
	if err != nil {
		return err
	}
	app.cfg = cfg

	defaultDir, err := store.DefaultDataDir()
	if err != nil {
		return err
	}
	app.Dir = pick(app.Dir, "MEMO_DIR", cfg.DataDir, defaultDir)
	app.Backend = strings.ToLower(pick(app.Backend, "MEMO_BACKEND", cfg.Backend, store.BackendSQLite))
	app.DSN = pick(app.DSN, "MEMO_DSN", cfg.DSN, "")
	app.Key = pick(app.Key, "MEMO_KEY", cfg.Key, store.DefaultKey)
	app.ExportDir = pick(app.ExportDir, "MEMO_EXPORT_DIR", cfg.ExportDir, ".")
	app.LogLevel = pick(app.LogLevel, "MEMO_LOG_LEVEL", cfg.LogLevel, "")
	return nil
}

func pick(flagVal, envKey, cfgVal, def string) string {
	if v := strings.TrimSpace(flagVal); v != "" {
		return v
	}
	if v := strings.TrimSpace(cfgVal); v != "" {
		def = v
	}
	return strings.TrimSpace(envOr(envKey, def))
}

func (app *App) logger() *zap.Logger {
	if app.log == nil {
		return zap.NewNop()
	}
	return app.log
}

// openSession opens the configured store and loads (or bootstraps) the memo
// list. The returned close func releases the store.
func openSession(ctx context.Context, app *App, log *zap.Logger) (*memo.Session, func() error, error) {
	kv, err := store.OpenKV(ctx, store.Options{Backend: app.Backend, Dir: app.Dir, DSN: app.DSN})
	if err != nil {
		return nil, nil, err
	}
	st := store.New(kv, log)
	sess, err := memo.NewSession(ctx, memo.NewRepository(st, app.Key, memo.WithLogger(log)), log)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	return sess, st.Close, nil
}

func runTUI(cmd *cobra.Command, app *App) error {
	log, closeLog, err := logging.NewFile(filepath.Join(app.Dir, "memo.log"), logging.Options{
		Level:   app.LogLevel,
		Default: zapcore.InfoLevel,
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = closeLog() }()

	ctx := cmd.Context()
	sess, closeStore, err := openSession(ctx, app, log)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = closeStore() }()

	theme := ""
	if app.cfg != nil && app.cfg.TUI != nil {
		theme = app.cfg.TUI.Theme
	}
	return tui.Run(ctx, tui.Options{Session: sess, Log: log, ExportDir: app.ExportDir, Theme: theme})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
