// Package routing holds the in-memory route index: the airport set and the
// flights departing each airport, with the direct, connecting, shortest and
// return flight queries over them.
//
// Loads replace the whole index under the write lock and only after every
// record has been validated, so a failed load leaves the previous index in
// place and no query ever observes a partially loaded one.
package routing

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Domenick1991/airroutes/internal/domain"
	"github.com/Domenick1991/airroutes/internal/records"
	"github.com/cespare/xxhash/v2"
)

type Index struct {
	mu         sync.RWMutex
	airports   []*domain.Airport
	byCode     map[string]*domain.Airport
	departures map[string][]*domain.Flight
	origins    []string // departure keys in first-seen order
	generation uint64
	dataset    string
}

// Stats describes the loaded index. Generation counts loads in this process
// only; Dataset identifies the indexed content and is equal across
// processes that loaded the same airports and flights.
type Stats struct {
	Airports   int    `json:"airports"`
	Flights    int    `json:"flights"`
	Generation uint64 `json:"generation"`
	Dataset    string `json:"dataset,omitempty"`
}

func NewIndex() *Index {
	return &Index{
		byCode:     map[string]*domain.Airport{},
		departures: map[string][]*domain.Flight{},
	}
}

type airportSet struct {
	list   []*domain.Airport
	byCode map[string]*domain.Airport
}

type flightTable struct {
	departures map[string][]*domain.Flight
	origins    []string
}

// Load replaces airports and flights together.
func (x *Index) Load(ds records.Dataset) error {
	set, err := buildAirports(ds.Airports)
	if err != nil {
		return err
	}
	table, err := buildFlights(set.byCode, ds.Flights)
	if err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.swap(set, table)
	return nil
}

// LoadAirports replaces the airport set and clears every flight, since the
// previous flights reference airports that are no longer indexed.
func (x *Index) LoadAirports(recs []records.Airport) error {
	set, err := buildAirports(recs)
	if err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.swap(set, flightTable{departures: map[string][]*domain.Flight{}})
	return nil
}

// LoadFlights replaces every flight, resolving endpoints against the
// currently loaded airports.
func (x *Index) LoadFlights(recs []records.Flight) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	table, err := buildFlights(x.byCode, recs)
	if err != nil {
		return err
	}
	x.swap(airportSet{list: x.airports, byCode: x.byCode}, table)
	return nil
}

func (x *Index) swap(set airportSet, table flightTable) {
	x.airports = set.list
	x.byCode = set.byCode
	x.departures = table.departures
	x.origins = table.origins
	x.generation++
	x.dataset = fingerprint(x.airports, x.departures, x.origins)
}

// fingerprint hashes every airport and flight in index order.
func fingerprint(airports []*domain.Airport, departures map[string][]*domain.Flight, origins []string) string {
	d := xxhash.New()
	for _, a := range airports {
		_, _ = d.WriteString("A\x00" + a.Code() + "\x00" + a.City() + "\x00" + a.Country() + "\n")
	}
	for _, origin := range origins {
		for _, f := range departures[origin] {
			_, _ = d.WriteString("F\x00" + f.Number() + "\x00" + f.Origin().Code() + "\x00" +
				f.Destination().Code() + "\x00" + strconv.FormatFloat(f.Hours(), 'g', -1, 64) + "\n")
		}
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

func buildAirports(recs []records.Airport) (airportSet, error) {
	set := airportSet{
		list:   make([]*domain.Airport, 0, len(recs)),
		byCode: make(map[string]*domain.Airport, len(recs)),
	}
	for i, rec := range recs {
		a, err := domain.NewAirport(rec.Code, rec.City, rec.Country)
		if err != nil {
			return airportSet{}, fmt.Errorf("airport %d (%s): %w: %w", i+1, rec, domain.ErrFormat, err)
		}
		key := domain.CanonicalCode(a.Code())
		if _, dup := set.byCode[key]; dup {
			continue
		}
		set.byCode[key] = a
		set.list = append(set.list, a)
	}
	return set, nil
}

func buildFlights(airports map[string]*domain.Airport, recs []records.Flight) (flightTable, error) {
	table := flightTable{departures: map[string][]*domain.Flight{}}
	for i, rec := range recs {
		f, err := newFlight(airports, rec)
		if err != nil {
			return flightTable{}, fmt.Errorf("flight %d (%s): %w", i+1, rec, err)
		}
		key := domain.CanonicalCode(f.Origin().Code())
		if _, seen := table.departures[key]; !seen {
			table.origins = append(table.origins, key)
		}
		table.departures[key] = append(table.departures[key], f)
	}
	return table, nil
}

func newFlight(airports map[string]*domain.Airport, rec records.Flight) (*domain.Flight, error) {
	origin, ok := airports[domain.CanonicalCode(rec.Origin)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAirport, rec.Origin)
	}
	dest, ok := airports[domain.CanonicalCode(rec.Destination)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAirport, rec.Destination)
	}
	hours, err := domain.ParseHours(rec.Duration)
	if err != nil {
		return nil, err
	}
	return domain.NewFlight(rec.Number, origin, dest, hours)
}

func (x *Index) Generation() uint64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.generation
}

// Dataset returns the content fingerprint of the loaded index, or "" before
// the first load.
func (x *Index) Dataset() string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dataset
}

func (x *Index) Stats() Stats {
	x.mu.RLock()
	defer x.mu.RUnlock()
	n := 0
	for _, fs := range x.departures {
		n += len(fs)
	}
	return Stats{Airports: len(x.airports), Flights: n, Generation: x.generation, Dataset: x.dataset}
}

// Airports returns the airport set in load order.
func (x *Index) Airports() []*domain.Airport {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]*domain.Airport(nil), x.airports...)
}

func (x *Index) FindAirport(code string) (*domain.Airport, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if a, ok := x.byCode[domain.CanonicalCode(code)]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, code)
}

// Departures returns the flights leaving code in insertion order.
func (x *Index) Departures(code string) []*domain.Flight {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]*domain.Flight(nil), x.departures[domain.CanonicalCode(code)]...)
}

// CorrectAirport updates an airport's city and country. Airports and the
// flights referencing them are replaced rather than mutated, so values
// already handed to readers never change underneath them.
func (x *Index) CorrectAirport(code, city, country string) (*domain.Airport, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	key := domain.CanonicalCode(code)
	old, ok := x.byCode[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, code)
	}
	fixed := *old
	fixed.SetCity(city)
	fixed.SetCountry(country)
	updated := &fixed

	airports := make([]*domain.Airport, len(x.airports))
	for i, a := range x.airports {
		if a == old {
			a = updated
		}
		airports[i] = a
	}
	byCode := make(map[string]*domain.Airport, len(x.byCode))
	for k, a := range x.byCode {
		byCode[k] = a
	}
	byCode[key] = updated

	departures := make(map[string][]*domain.Flight, len(x.departures))
	for origin, flights := range x.departures {
		rebuilt := make([]*domain.Flight, 0, len(flights))
		for _, f := range flights {
			if f.Origin() == old || f.Destination() == old {
				from, to := f.Origin(), f.Destination()
				if from == old {
					from = updated
				}
				if to == old {
					to = updated
				}
				nf, err := domain.NewFlight(f.Number(), from, to, f.Hours())
				if err != nil {
					return nil, err
				}
				f = nf
			}
			rebuilt = append(rebuilt, f)
		}
		departures[origin] = rebuilt
	}

	x.swap(airportSet{list: airports, byCode: byCode}, flightTable{departures: departures, origins: x.origins})
	return updated, nil
}

// FlightsByCity returns every flight departing from or arriving in city,
// ignoring case, in origin-then-insertion order.
func (x *Index) FlightsByCity(city string) []*domain.Flight {
	city = strings.TrimSpace(city)
	return x.filter(func(f *domain.Flight) bool {
		return strings.EqualFold(f.Origin().City(), city) || strings.EqualFold(f.Destination().City(), city)
	})
}

// FlightsByCountry is FlightsByCity keyed on country.
func (x *Index) FlightsByCountry(country string) []*domain.Flight {
	country = strings.TrimSpace(country)
	return x.filter(func(f *domain.Flight) bool {
		return strings.EqualFold(f.Origin().Country(), country) || strings.EqualFold(f.Destination().Country(), country)
	})
}

func (x *Index) filter(keep func(*domain.Flight) bool) []*domain.Flight {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var out []*domain.Flight
	for _, origin := range x.origins {
		for _, f := range x.departures[origin] {
			if keep(f) {
				out = append(out, f)
			}
		}
	}
	return out
}

// FindRoute looks for a direct flight from origin to dest, then for every
// airport reachable with exactly one connection. Longer itineraries are not
// searched.
func (x *Index) FindRoute(origin, dest *domain.Airport) (domain.Route, error) {
	if origin == nil || dest == nil {
		return domain.Route{}, fmt.Errorf("%w: origin and destination must be airports", domain.ErrInvalidArgument)
	}
	x.mu.RLock()
	defer x.mu.RUnlock()

	route := domain.Route{Origin: origin.Code(), Destination: dest.Code()}
	first := x.departures[domain.CanonicalCode(origin.Code())]
	for _, f := range first {
		if f.Destination().Equal(dest) {
			route.Direct = true
			return route, nil
		}
	}

	seen := map[string]struct{}{}
	for _, f := range first {
		via := domain.CanonicalCode(f.Destination().Code())
		if _, ok := seen[via]; ok {
			continue
		}
		for _, g := range x.departures[via] {
			if g.Destination().Equal(dest) {
				seen[via] = struct{}{}
				route.Connections = append(route.Connections, f.Destination().Code())
				break
			}
		}
	}
	if len(route.Connections) == 0 {
		return domain.Route{}, fmt.Errorf("%w: from %s to %s", domain.ErrNoRouteFound, origin.Code(), dest.Code())
	}
	return route, nil
}

// FindFlight returns the first direct flight from origin to dest.
func (x *Index) FindFlight(origin, dest *domain.Airport) (*domain.Flight, error) {
	if origin == nil || dest == nil {
		return nil, fmt.Errorf("%w: origin and destination must be airports", domain.ErrInvalidArgument)
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	for _, f := range x.departures[domain.CanonicalCode(origin.Code())] {
		if f.Destination().Equal(dest) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: no direct flight from %s to %s", domain.ErrNoRouteFound, origin.Code(), dest.Code())
}

// ShortestFlightFrom returns the quickest departure from origin, the first
// one on ties. ok is false when origin has no departures.
func (x *Index) ShortestFlightFrom(origin *domain.Airport) (shortest *domain.Flight, ok bool) {
	if origin == nil {
		return nil, false
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	for _, f := range x.departures[domain.CanonicalCode(origin.Code())] {
		if shortest == nil || f.Hours() < shortest.Hours() {
			shortest = f
		}
	}
	return shortest, shortest != nil
}

// FindReturnFlight returns the first flight from f's destination back to its origin.
func (x *Index) FindReturnFlight(f *domain.Flight) (*domain.Flight, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: flight is nil", domain.ErrInvalidArgument)
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	for _, back := range x.departures[domain.CanonicalCode(f.Destination().Code())] {
		if back.Destination().Equal(f.Origin()) {
			return back, nil
		}
	}
	return nil, fmt.Errorf("%w: there is no flight from %s to %s",
		domain.ErrNoReturnFlight, f.Destination().Code(), f.Origin().Code())
}
