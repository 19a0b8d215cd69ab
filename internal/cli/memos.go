package cli

import (
	"context"
	"errors"
	"strings"

	"memo-cli/internal/memo"
	"memo-cli/internal/model"
	"memo-cli/internal/present"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type memoOut struct {
	model.Memo
	HTML string `json:"html,omitempty"`
}

// withSession opens the store for the duration of fn.
func withSession(cmd *cobra.Command, app *App, fn func(ctx context.Context, sess *memo.Session) error) error {
	ctx := cmd.Context()
	sess, closeStore, err := openSession(ctx, app, app.logger())
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			app.logger().Warn("close store failed", zap.Error(err))
		}
	}()
	if err := fn(ctx, sess); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List memos in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(_ context.Context, sess *memo.Session) error {
				memos := sess.Repository().Memos()
				return writeOut(cmd, app, map[string]any{
					"data": memos,
					"meta": map[string]any{"count": len(memos), "key": sess.Repository().Key()},
				})
			})
		},
	}
}

func newShowCmd(app *App) *cobra.Command {
	var asHTML bool
	cmd := &cobra.Command{
		Use:   "show <memo-id>",
		Short: "Show one memo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(ctx context.Context, sess *memo.Session) error {
				if err := sess.Select(strings.TrimSpace(args[0])); err != nil {
					return err
				}
				out := memoOut{Memo: sess.Active()}
				if asHTML {
					html, err := present.NewHTMLRenderer().Render(ctx, out.Body)
					if err != nil {
						return err
					}
					out.HTML = html
				}
				return writeOut(cmd, app, map[string]any{"data": out})
			})
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "Include the body rendered as sanitized HTML")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var title, body string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a memo (title defaults to \"new memo N\")",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(ctx context.Context, sess *memo.Session) error {
				created, err := sess.Add(ctx)
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("title") || cmd.Flags().Changed("body") {
					t, b := created.Title, created.Body
					if cmd.Flags().Changed("title") {
						t = title
					}
					if cmd.Flags().Changed("body") {
						b = body
					}
					if err := sess.Save(ctx, t, b); err != nil {
						return err
					}
				}
				app.logger().Info("memo added", zap.String("memoId", created.ID))
				return writeOut(cmd, app, map[string]any{"data": sess.Active()})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Memo title")
	cmd.Flags().StringVar(&body, "body", "", "Memo body (markdown)")
	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	var title, body string
	cmd := &cobra.Command{
		Use:   "edit <memo-id>",
		Short: "Change a memo's title and/or body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("body") {
				return writeErr(cmd, errors.New("edit: nothing to change (pass --title and/or --body)"))
			}
			return withSession(cmd, app, func(ctx context.Context, sess *memo.Session) error {
				if err := sess.Select(strings.TrimSpace(args[0])); err != nil {
					return err
				}
				sess.Edit()
				current := sess.Active()
				t, b := current.Title, current.Body
				if cmd.Flags().Changed("title") {
					t = title
				}
				if cmd.Flags().Changed("body") {
					b = body
				}
				if err := sess.Save(ctx, t, b); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": sess.Active()})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&body, "body", "", "New body (markdown)")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <memo-id>",
		Short: "Delete a memo (the last memo cannot be deleted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(ctx context.Context, sess *memo.Session) error {
				id := strings.TrimSpace(args[0])
				if err := sess.Select(id); err != nil {
					return err
				}
				if err := sess.Delete(ctx); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{"deleted": id, "remaining": sess.Repository().Len()},
				})
			})
		},
	}
}

func newExportCmd(app *App) *cobra.Command {
	var outDir string
	var toStdout bool
	cmd := &cobra.Command{
		Use:   "export <memo-id>",
		Short: "Write a memo body to <title>.md",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, app, func(_ context.Context, sess *memo.Session) error {
				if err := sess.Select(strings.TrimSpace(args[0])); err != nil {
					return err
				}
				exp, err := present.ExportActive(sess.Snapshot())
				if err != nil {
					return err
				}
				if toStdout {
					_, err := cmd.OutOrStdout().Write(exp.Data)
					return err
				}
				dir := strings.TrimSpace(outDir)
				if dir == "" {
					dir = app.ExportDir
				}
				path, err := present.WriteExport(dir, exp)
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{
						"path":     path,
						"name":     exp.Name,
						"mimeType": exp.MIMEType,
						"bytes":    len(exp.Data),
					},
				})
			})
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default: --export-dir)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Write the raw body to stdout instead of a file")
	return cmd
}
