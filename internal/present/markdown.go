package present

import (
	"bytes"
	"context"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer turns markdown source into display output (HTML, ANSI text, ...).
type Renderer interface {
	Render(ctx context.Context, source string) (string, error)
}

type RendererFunc func(ctx context.Context, source string) (string, error)

func (f RendererFunc) Render(ctx context.Context, source string) (string, error) {
	return f(ctx, source)
}

// HTMLRenderer renders GitHub-flavored markdown to sanitized HTML.
type HTMLRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				emoji.Emoji,
			),
			goldmark.WithRendererOptions(
				// Raw HTML stays escaped; bluemonday below is the second line.
				html.WithHardWraps(),
			),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

func (h *HTMLRenderer) Render(ctx context.Context, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return "", nil
	}
	var b bytes.Buffer
	if err := h.md.Convert([]byte(source), &b); err != nil {
		return "", err
	}
	return h.policy.Sanitize(b.String()), nil
}
