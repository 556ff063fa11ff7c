package backfill

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// LegacyAnswer is one free-form answer from the previous system's export.
type LegacyAnswer struct {
	UserID    string
	Text      string
	CreatedAt time.Time
}

type exportLine struct {
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// ParseExport reads one JSONL export file. Blank lines are skipped; a
// malformed line fails the whole file so a truncated export is noticed.
func ParseExport(path string) ([]LegacyAnswer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	var answers []LegacyAnswer
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var raw exportLine
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNo, err)
		}
		if raw.UserID == "" || raw.Text == "" {
			return nil, fmt.Errorf("%s line %d: user_id and text are required", path, lineNo)
		}

		createdAt, err := time.Parse(time.RFC3339, raw.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: created_at: %w", path, lineNo, err)
		}

		answers = append(answers, LegacyAnswer{
			UserID:    raw.UserID,
			Text:      raw.Text,
			CreatedAt: createdAt,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	return answers, nil
}
