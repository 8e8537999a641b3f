package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed corpus.json
var corpusJSON []byte

// CorpusEntry is a vlog line with the fields the fallback parser must
// extract from it.
type CorpusEntry struct {
	Raw               string `json:"raw"`
	ExpectedMode      string `json:"expected_mode"`
	ExpectedType      string `json:"expected_type"`
	ExpectedUser      string `json:"expected_user"`
	ExpectedPath      string `json:"expected_path"`
	ExpectedIP        string `json:"expected_ip"`
	ExpectedPID       int    `json:"expected_pid"`
	ExpectedCategory  string `json:"expected_category"`
	ExpectedTimestamp int64  `json:"expected_timestamp"`
	ExpectedError     string `json:"expected_error"`
	Description       string `json:"description"`
}

// LoadCorpus parses the embedded corpus.json and returns all entries.
func LoadCorpus() ([]CorpusEntry, error) {
	var entries []CorpusEntry
	if err := json.Unmarshal(corpusJSON, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus.json: %w", err)
	}
	return entries, nil
}
