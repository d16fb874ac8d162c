package lexicon

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/yamasante/medtranslate-api/interfaces"
	"github.com/yamasante/medtranslate-api/logging"
)

// Entry is one record in a lexicon file. Name is required; DCI, when
// present, is registered as a name of its own.
type Entry struct {
	Name     string `json:"name"`
	DCI      string `json:"dci,omitempty"`
	Category string `json:"category,omitempty"`
}

// LoadReport summarizes a bulk load: Added counts names registered,
// Skipped counts records that could not be used.
type LoadReport struct {
	Added   int
	Skipped int
}

// document is the on-disk shape. Each record is either a bare string or
// an Entry object, so exports and hand-written files both load.
type document struct {
	Medications []json.RawMessage `json:"medications"`
}

// LoadFile reads a lexicon file and registers its names on top of
// whatever the store already holds. Malformed records are skipped, not
// fatal; only an unreadable or unparseable file returns an error.
func LoadFile(store interfaces.LexiconStore, path string) (LoadReport, error) {
	var report LoadReport

	raw, err := os.ReadFile(path)
	if err != nil {
		return report, fmt.Errorf("reading lexicon file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return report, fmt.Errorf("parsing lexicon file: %w", err)
	}

	for _, record := range doc.Medications {
		var name string
		if err := json.Unmarshal(record, &name); err == nil {
			if name == "" {
				report.Skipped++
				continue
			}
			store.Add(name)
			report.Added++
			continue
		}

		var entry Entry
		if err := json.Unmarshal(record, &entry); err != nil || entry.Name == "" {
			report.Skipped++
			continue
		}
		store.Add(entry.Name)
		report.Added++
		if entry.DCI != "" {
			store.Add(entry.DCI)
			report.Added++
		}
	}

	store.MarkLoaded()
	logging.Info("Lexicon file loaded", "path", path, "added", report.Added,
		"skipped", report.Skipped, "entries", store.Len())
	return report, nil
}

// SaveFile writes the store's names to path in the same document shape
// LoadFile reads, so a saved lexicon round-trips.
func SaveFile(store interfaces.LexiconStore, path string) error {
	doc := struct {
		Medications []string `json:"medications"`
	}{Medications: store.Names()}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding lexicon: %w", err)
	}

	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("writing lexicon file: %w", err)
	}
	return nil
}
