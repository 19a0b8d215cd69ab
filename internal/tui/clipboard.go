package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

func copyToClipboard(s string) error {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard: no clipboard utility available")
	}
	if err := clipboard.WriteAll(s); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}
