// Package license merges license texts into one consolidated notice.
package license

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Separator is placed between two merged license texts.
const Separator = "\n\n- - -\n\n"

// Merge joins the texts in order with Separator. Empty texts keep their slot.
func Merge(texts ...string) string {
	return strings.Join(texts, Separator)
}

// MergeFiles reads every source, merges them in order and writes the result to dst.
// dst may be one of the sources; all sources are read before dst is written.
func MergeFiles(dst string, perm os.FileMode, sources ...string) error {
	texts := make([]string, 0, len(sources))

	for _, source := range sources {
		contents, err := os.ReadFile(filepath.Clean(source))
		if err != nil {
			return fmt.Errorf("read license: %w", err)
		}

		texts = append(texts, string(contents))
	}

	if err := os.WriteFile(filepath.Clean(dst), []byte(Merge(texts...)), perm); err != nil {
		return fmt.Errorf("write merged license: %w", err)
	}

	return nil
}
