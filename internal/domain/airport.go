package domain

import (
	"fmt"
	"strings"
)

// Airport is identified by its code alone. City and country may be corrected
// after construction, the code may not.
type Airport struct {
	code    string
	city    string
	country string
}

func NewAirport(code, city, country string) (*Airport, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: empty airport code", ErrInvalidArgument)
	}
	return &Airport{
		code:    code,
		city:    strings.TrimSpace(city),
		country: strings.TrimSpace(country),
	}, nil
}

// CanonicalCode is the key used to index airports and departures.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (a *Airport) Code() string    { return a.code }
func (a *Airport) City() string    { return a.city }
func (a *Airport) Country() string { return a.country }

func (a *Airport) SetCity(city string)       { a.city = strings.TrimSpace(city) }
func (a *Airport) SetCountry(country string) { a.country = strings.TrimSpace(country) }

// Is reports whether the airport carries the given code, ignoring case.
func (a *Airport) Is(code string) bool {
	return a != nil && strings.EqualFold(a.code, strings.TrimSpace(code))
}

func (a *Airport) Equal(other *Airport) bool {
	if a == nil || other == nil {
		return false
	}
	return strings.EqualFold(a.code, other.code)
}

func (a *Airport) String() string {
	return fmt.Sprintf("%s (%s, %s)", a.code, a.city, a.country)
}
