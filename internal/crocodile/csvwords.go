package crocodile

import (
	"encoding/csv"
	"fmt"
	"os"
)

// LoadCSVWords reads a word list from a CSV file. Each record's first field
// is the word; extra fields are ignored so the file can carry frequency or
// difficulty columns. Blank records are skipped.
func LoadCSVWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse word list %s: %w", path, err)
	}

	words := make([]string, 0, len(records))
	for _, record := range records {
		if len(record) == 0 || record[0] == "" {
			continue
		}
		words = append(words, record[0])
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list %s is empty", path)
	}
	return words, nil
}

// DefaultWords keeps the game playable when no word list file is
// configured.
var DefaultWords = []string{
	"apple", "bicycle", "campfire", "dolphin", "elephant", "firework",
	"guitar", "helicopter", "island", "jellyfish", "kangaroo", "lighthouse",
	"mountain", "newspaper", "octopus", "penguin", "rainbow", "sandcastle",
	"telescope", "umbrella", "volcano", "waterfall", "xylophone", "yacht",
	"zebra", "anchor", "balloon", "cactus", "dragon", "envelope",
}
