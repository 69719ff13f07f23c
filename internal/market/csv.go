package market

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type barFilter func(b Bar) bool

// LoadCSV reads an entire bar file into memory and validates the series.
// Expected columns: timestamp, open, high, low, close. The timestamp is
// either a unix epoch (possibly fractional) or a "2006-01-02 15:04:05"
// datetime.
func LoadCSV(path string) ([]Bar, error) {
	return LoadCSVWithFilter(path, func(b Bar) bool { return true })
}

func LoadCSVWithFilter(path string, filter barFilter) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open bar file: %w", err)
	}
	defer f.Close()

	bars, err := ReadBars(bufio.NewReader(f), filter)
	if err != nil {
		return nil, fmt.Errorf("failed to read bars from %s: %w", path, err)
	}

	return bars, nil
}

// ReadBars parses bars from csv data and rejects out-of-order series.
func ReadBars(r io.Reader, filter barFilter) ([]Bar, error) {
	rdr := csv.NewReader(r)
	if _, err := rdr.Read(); err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	var bars []Bar
	for {
		data, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read bar data: %w", err)
		}

		if len(data) < 5 {
			return nil, fmt.Errorf("bar row has %d columns, want at least 5", len(data))
		}

		ts, err := parseBarTime(data[0])
		if err != nil {
			return nil, fmt.Errorf("failed to parse bar time: %w", err)
		}

		open, err := decimal.NewFromString(data[1])
		if err != nil {
			return nil, fmt.Errorf("failed to read open price: %w", err)
		}

		high, err := decimal.NewFromString(data[2])
		if err != nil {
			return nil, fmt.Errorf("failed to read high price: %w", err)
		}

		low, err := decimal.NewFromString(data[3])
		if err != nil {
			return nil, fmt.Errorf("failed to read low price: %w", err)
		}

		close, err := decimal.NewFromString(data[4])
		if err != nil {
			return nil, fmt.Errorf("failed to read close price: %w", err)
		}

		bar := Bar{
			Time:  ts,
			Open:  open,
			High:  high,
			Low:   low,
			Close: close,
		}
		if filter(bar) {
			bars = append(bars, bar)
		}
	}

	if err := ValidateSeries(bars); err != nil {
		return nil, err
	}

	return bars, nil
}

func parseBarTime(s string) (time.Time, error) {
	if epoch, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(int64(epoch), 0).UTC(), nil
	}

	return time.Parse(time.DateTime, s)
}
