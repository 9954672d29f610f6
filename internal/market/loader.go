package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Loader loads historical candle data
type Loader struct{}

// NewLoader creates a new loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadCSV loads candle data from a CSV file.
// Expected format: timestamp,open,high,low,close,volume
// timestamp can be Unix seconds, Unix milliseconds, or RFC3339.
func (l *Loader) LoadCSV(filename string, symbol string) (*Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// First row may be data rather than a header
	if _, err := strconv.ParseFloat(header[1], 64); err == nil {
		file.Seek(0, 0)
		reader = csv.NewReader(file)
	}

	candles := make([]Candle, 0)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		if len(record) < 6 {
			continue // Skip invalid records
		}

		candle, err := l.parseRecord(record, symbol)
		if err != nil {
			continue // Skip invalid records
		}

		candles = append(candles, candle)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})

	return &Series{
		Symbol:  symbol,
		Candles: candles,
	}, nil
}

// parseRecord parses a single CSV record into a Candle
func (l *Loader) parseRecord(record []string, symbol string) (Candle, error) {
	timestamp, err := l.parseTimestamp(record[0])
	if err != nil {
		return Candle{}, err
	}

	open, err := decimal.NewFromString(record[1])
	if err != nil {
		return Candle{}, fmt.Errorf("invalid open price: %w", err)
	}

	high, err := decimal.NewFromString(record[2])
	if err != nil {
		return Candle{}, fmt.Errorf("invalid high price: %w", err)
	}

	low, err := decimal.NewFromString(record[3])
	if err != nil {
		return Candle{}, fmt.Errorf("invalid low price: %w", err)
	}

	close, err := decimal.NewFromString(record[4])
	if err != nil {
		return Candle{}, fmt.Errorf("invalid close price: %w", err)
	}

	volume, err := decimal.NewFromString(record[5])
	if err != nil {
		return Candle{}, fmt.Errorf("invalid volume: %w", err)
	}

	return Candle{
		Symbol:    symbol,
		Timestamp: timestamp,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}, nil
}

// parseTimestamp parses a timestamp from string.
// Supports Unix seconds/milliseconds and RFC3339; timestamps are kept in UTC.
func (l *Loader) parseTimestamp(s string) (time.Time, error) {
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ts > 10000000000 {
			return time.Unix(ts/1000, (ts%1000)*1000000).UTC(), nil
		}
		return time.Unix(ts, 0).UTC(), nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", s)
}
