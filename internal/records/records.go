// Package records parses the hyphen-delimited airport and flight files.
//
// Airport lines are CODE-COUNTRY-CITY. Flight lines are
// FLIGHTNO-ORIGIN-DEST-DURATION where FLIGHTNO itself contains a hyphen
// (ABC-123), so the first two tokens form the flight number and the next two
// are ORIGIN and DEST. Whatever follows is the DURATION, hyphens included,
// which keeps a negative duration a duration error rather than a shifted
// airport code. A four-token line has an unhyphenated flight number.
package records

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Domenick1991/airroutes/internal/domain"
)

type Airport struct {
	Code    string `json:"code"`
	Country string `json:"country"`
	City    string `json:"city"`
}

type Flight struct {
	Number      string `json:"number"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Duration    string `json:"duration"`
}

// Dataset is a complete airport and flight set, loaded together.
type Dataset struct {
	Airports []Airport
	Flights  []Flight
}

// LineError reports the record that failed a load.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Line is a non-blank input line with its 1-based position.
type Line struct {
	Number int
	Text   string
}

// ReadLines returns the non-blank lines of r.
func ReadLines(r io.Reader) ([]Line, error) {
	var lines []Line
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		lines = append(lines, Line{Number: n, Text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return lines, nil
}

func ParseAirport(line string) (Airport, error) {
	parts := strings.Split(line, "-")
	if len(parts) != 3 {
		return Airport{}, fmt.Errorf("%w: airport record needs CODE-COUNTRY-CITY, got %d fields", domain.ErrFormat, len(parts))
	}
	rec := Airport{
		Code:    strings.TrimSpace(parts[0]),
		Country: strings.TrimSpace(parts[1]),
		City:    strings.TrimSpace(parts[2]),
	}
	if rec.Code == "" {
		return Airport{}, fmt.Errorf("%w: empty airport code", domain.ErrFormat)
	}
	return rec, nil
}

func ParseFlight(line string) (Flight, error) {
	parts := strings.Split(line, "-")
	if len(parts) < 4 {
		return Flight{}, fmt.Errorf("%w: flight record needs FLIGHTNO-ORIGIN-DEST-DURATION, got %d fields", domain.ErrFormat, len(parts))
	}
	if len(parts) == 4 {
		return Flight{
			Number:      strings.TrimSpace(parts[0]),
			Origin:      strings.TrimSpace(parts[1]),
			Destination: strings.TrimSpace(parts[2]),
			Duration:    strings.TrimSpace(parts[3]),
		}, nil
	}
	rest := strings.SplitN(strings.Join(parts[2:], "-"), "-", 3)
	return Flight{
		Number:      strings.TrimSpace(parts[0]) + "-" + strings.TrimSpace(parts[1]),
		Origin:      strings.TrimSpace(rest[0]),
		Destination: strings.TrimSpace(rest[1]),
		Duration:    strings.TrimSpace(rest[2]),
	}, nil
}

// ParseAirports parses every line, failing on the first malformed one.
func ParseAirports(lines []Line) ([]Airport, error) {
	out := make([]Airport, 0, len(lines))
	for _, l := range lines {
		rec, err := ParseAirport(l.Text)
		if err != nil {
			return nil, &LineError{Line: l.Number, Text: l.Text, Err: err}
		}
		out = append(out, rec)
	}
	return out, nil
}

// ParseFlights parses every line, failing on the first malformed one.
func ParseFlights(lines []Line) ([]Flight, error) {
	out := make([]Flight, 0, len(lines))
	for _, l := range lines {
		rec, err := ParseFlight(l.Text)
		if err != nil {
			return nil, &LineError{Line: l.Number, Text: l.Text, Err: err}
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReadDataset reads and parses an airport stream and a flight stream.
func ReadDataset(airports, flights io.Reader) (Dataset, error) {
	aLines, err := ReadLines(airports)
	if err != nil {
		return Dataset{}, fmt.Errorf("airports: %w", err)
	}
	fLines, err := ReadLines(flights)
	if err != nil {
		return Dataset{}, fmt.Errorf("flights: %w", err)
	}
	ds := Dataset{}
	if ds.Airports, err = ParseAirports(aLines); err != nil {
		return Dataset{}, fmt.Errorf("airports: %w", err)
	}
	if ds.Flights, err = ParseFlights(fLines); err != nil {
		return Dataset{}, fmt.Errorf("flights: %w", err)
	}
	return ds, nil
}

func (a Airport) String() string {
	return a.Code + "-" + a.Country + "-" + a.City
}

func (f Flight) String() string {
	return f.Number + "-" + f.Origin + "-" + f.Destination + "-" + f.Duration
}
