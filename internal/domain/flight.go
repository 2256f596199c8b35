package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var flightNumberPattern = regexp.MustCompile(`^[A-Z]{3}-\d{3}$`)

// Flight references its airports from the shared airport set; it never owns them.
type Flight struct {
	number      string
	origin      *Airport
	destination *Airport
	hours       float64
}

func NewFlight(number string, origin, destination *Airport, hours float64) (*Flight, error) {
	if origin == nil || destination == nil {
		return nil, fmt.Errorf("%w: origin and destination must be airports", ErrInvalidArgument)
	}
	if !flightNumberPattern.MatchString(number) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFlightNumber, number)
	}
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDuration, hours)
	}
	return &Flight{number: number, origin: origin, destination: destination, hours: hours}, nil
}

// ParseHours parses a flight duration in hours.
func ParseHours(s string) (float64, error) {
	hours, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return hours, nil
}

func (f *Flight) Number() string        { return f.number }
func (f *Flight) Origin() *Airport      { return f.origin }
func (f *Flight) Destination() *Airport { return f.destination }
func (f *Flight) Hours() float64        { return f.hours }

func (f *Flight) IsDomestic() bool {
	return f.origin.Country() == f.destination.Country()
}

// Combine joins f with a connecting flight departing f's destination. The
// result keeps f's number and origin and sums both durations.
func (f *Flight) Combine(next *Flight) (*Flight, error) {
	if next == nil {
		return nil, fmt.Errorf("%w: connecting flight is nil", ErrInvalidArgument)
	}
	if !f.destination.Equal(next.origin) {
		return nil, fmt.Errorf("%w: %s arrives at %s, %s departs %s",
			ErrIncompatibleRoute, f.number, f.destination.Code(), next.number, next.origin.Code())
	}
	return NewFlight(f.number, f.origin, next.destination, f.hours+next.hours)
}

// Equal compares origin and destination only; number and duration are ignored.
func (f *Flight) Equal(other *Flight) bool {
	if f == nil || other == nil {
		return false
	}
	return f.origin.Equal(other.origin) && f.destination.Equal(other.destination)
}

func (f *Flight) String() string {
	kind := "international"
	if f.IsDomestic() {
		kind = "domestic"
	}
	return fmt.Sprintf("%s to %s (%dh) [%s]",
		f.origin.City(), f.destination.City(), int(math.RoundToEven(f.hours)), kind)
}
