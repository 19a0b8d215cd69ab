package cli

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"memo-cli/internal/logging"
	"memo-cli/internal/web"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string
	var open bool

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the memo UI as plain HTML (no JavaScript)",
		Example: strings.TrimSpace(`
# Serve on localhost
memo web --addr 127.0.0.1:3336

# Serve a Postgres-backed memo list
memo --backend postgres --dsn "postgres://localhost/memo?sslmode=disable" web
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}

			log := logging.New(logging.Options{
				Level:   app.LogLevel,
				Default: zapcore.InfoLevel,
				Writer:  cmd.ErrOrStderr(),
			})
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sess, closeStore, err := openSession(ctx, app, log)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = closeStore() }()

			srv, err := web.NewServer(web.ServerConfig{Addr: listenAddr}, sess, log)
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", srv.Addr())
			if err != nil {
				return writeErr(cmd, err)
			}

			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			opened := false
			openErr := ""
			if open {
				if err := openURL(url); err != nil {
					openErr = err.Error()
				} else {
					opened = true
				}
			}

			hints := []string{}
			if !opened {
				hints = append(hints, "open "+url)
			}

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      actualAddr,
					"url":       url,
					"backend":   app.Backend,
					"key":       app.Key,
					"opened":    opened,
					"openError": openErr,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": hints,
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "Memo web running at %s\n", url)

			if err := srv.Serve(ctx, ln); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", envOr("MEMO_WEB_ADDR", "127.0.0.1:3336"), "Bind address (host:port or :port)")
	cmd.Flags().BoolVar(&open, "open", false, "Open the UI in your default browser")
	return cmd
}

func openURL(u string) error {
	u = strings.TrimSpace(u)
	if u == "" {
		return errors.New("empty url")
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", u).Run()
	case "windows":
		return exec.Command("cmd", "/c", "start", "", u).Run()
	default:
		return exec.Command("xdg-open", u).Run()
	}
}
