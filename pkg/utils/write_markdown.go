package utils

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

func WriteMarkdown(dir, fileName, content string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", path, err)
	}
	slog.Debug("answer written", "path", path)
	return path, nil
}

// AnswerFileName builds a markdown file name from the question and time.
func AnswerFileName(question string, at time.Time) string {
	slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(question), "-"), "-")
	if len(slug) > 48 {
		slug = strings.TrimRight(slug[:48], "-")
	}
	if slug == "" {
		slug = "answer"
	}
	return fmt.Sprintf("%s-%s.md", at.UTC().Format("20060102-150405"), slug)
}

// FormatAnswer renders a question and its answer as a markdown document.
func FormatAnswer(question, answer string) string {
	return fmt.Sprintf("# %s\n\n%s\n", strings.TrimSpace(question), strings.TrimSpace(answer))
}
