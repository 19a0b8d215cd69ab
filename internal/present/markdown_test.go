package present

import (
	"context"
	"strings"
	"testing"
)

func TestHTMLRenderer_RendersGFM(t *testing.T) {
	r := NewHTMLRenderer()
	out, err := r.Render(context.Background(), "# Title\n\n- [x] done\n\n| a | b |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"<h1", "Title", "<table>", "<li>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestHTMLRenderer_StripsScripts(t *testing.T) {
	r := NewHTMLRenderer()
	out, err := r.Render(context.Background(), "hello <script>alert(1)</script>\n\n[x](javascript:alert(1))")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, "<script") || strings.Contains(out, "javascript:") {
		t.Fatalf("unsafe html survived:\n%s", out)
	}
}

func TestHTMLRenderer_EmptyAndCanceled(t *testing.T) {
	r := NewHTMLRenderer()
	out, err := r.Render(context.Background(), "   \n")
	if err != nil || out != "" {
		t.Fatalf("expected empty output, got %q, %v", out, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, "# x"); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}
