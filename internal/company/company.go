package company

import (
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

// row is one line of the ticker reference table.
type row struct {
	Symbol string `csv:"Symbol"`
	Name   string `csv:"Name"`
}

// Lookup maps tickers to company names. It is built once at startup from a
// CSV reference table and passed to consumers explicitly; lookups are
// read-only afterwards and safe for concurrent use.
type Lookup struct {
	names map[string]string
}

// Load reads the reference table from path.
func Load(path string) (*Lookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open company table %s: %w", path, err)
	}
	defer f.Close()

	var rows []*row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse company table %s: %w", path, err)
	}

	names := make(map[string]string, len(rows))
	for _, r := range rows {
		if r.Symbol == "" {
			continue
		}
		names[strings.ToUpper(r.Symbol)] = r.Name
	}
	return &Lookup{names: names}, nil
}

// Name returns the company name for a ticker, or the ticker itself when
// unknown.
func (l *Lookup) Name(ticker string) string {
	ticker = strings.ToUpper(ticker)
	if name, ok := l.names[ticker]; ok && name != "" {
		return name
	}
	return ticker
}

// Len returns the number of known tickers.
func (l *Lookup) Len() int { return len(l.names) }
