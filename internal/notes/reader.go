package notes

import (
	"fmt"
	"os"
	"strings"
)

// ReadFile loads clinical notes from a text file. The content is trimmed;
// an empty file is an error because downstream prediction requires input.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read notes file %s: %w", path, err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("notes file %s is empty", path)
	}
	return content, nil
}

// Format expands literal escape sequences that sometimes survive copy/paste
// into notes files (\n, \t, \r) and trims surrounding whitespace.
func Format(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, `\t`, "\t")
	text = strings.ReplaceAll(text, `\r`, "\r")
	return strings.TrimSpace(text)
}
