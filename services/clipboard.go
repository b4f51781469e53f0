package services

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// ClipboardText picks what to copy from an answer. With codeOnly the fenced
// code blocks are joined; answers without code fall back to the full text.
func ClipboardText(answer string, codeOnly bool) string {
	if codeOnly {
		if code := ExtractCodeBlocks(answer); len(code) > 0 {
			return strings.Join(code, "\n\n")
		}
	}
	return strings.TrimSpace(answer)
}

// CopyToClipboard writes text to the system clipboard.
func CopyToClipboard(text string) error {
	if text == "" {
		return fmt.Errorf("nothing to copy")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
