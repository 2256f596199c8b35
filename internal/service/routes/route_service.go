package routes

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/Domenick1991/airroutes/internal/domain"
	"github.com/Domenick1991/airroutes/internal/records"
	"github.com/Domenick1991/airroutes/internal/routing"
)

type RouteUseCase interface {
	Reload(ctx context.Context) (routing.Stats, error)
	Stats(ctx context.Context) routing.Stats
	Airports(ctx context.Context) []*domain.Airport
	Airport(ctx context.Context, code string) (*domain.Airport, error)
	CorrectAirport(ctx context.Context, code, city, country string) (*domain.Airport, error)
	FlightsByCity(ctx context.Context, city string) []*domain.Flight
	FlightsByCountry(ctx context.Context, country string) []*domain.Flight
	FindRoute(ctx context.Context, from, to string) (domain.Route, error)
	ShortestFlightFrom(ctx context.Context, code string) (*domain.Flight, bool, error)
	FindReturnFlight(ctx context.Context, from, to string) (outbound, inbound *domain.Flight, err error)
}

// Source supplies the full dataset on every reload.
type Source interface {
	Load(ctx context.Context) (records.Dataset, error)
}

type RouteCache interface {
	GetRoute(ctx context.Context, dataset, from, to string) (*domain.Route, error)
	SetRoute(ctx context.Context, dataset, from, to string, route domain.Route) error
}

type RouteService struct {
	index    *routing.Index
	source   Source
	cache    RouteCache
	reloadMu sync.Mutex
	onReload []func(routing.Stats, error)
}

type RouteServiceOption func(*RouteService)

func WithCache(cache RouteCache) RouteServiceOption {
	return func(s *RouteService) {
		s.cache = cache
	}
}

// WithReloadHook registers fn to run after every reload attempt.
func WithReloadHook(fn func(routing.Stats, error)) RouteServiceOption {
	return func(s *RouteService) {
		s.onReload = append(s.onReload, fn)
	}
}

func NewRouteService(index *routing.Index, source Source, opts ...RouteServiceOption) *RouteService {
	s := &RouteService{index: index, source: source}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reload replaces the index with the source's current dataset. On error the
// previous index keeps serving.
func (s *RouteService) Reload(ctx context.Context) (routing.Stats, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	stats, err := s.reload(ctx)
	for _, fn := range s.onReload {
		fn(stats, err)
	}
	return stats, err
}

func (s *RouteService) reload(ctx context.Context) (routing.Stats, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		log.Printf("reload: load dataset: %v", err)
		return s.index.Stats(), fmt.Errorf("load dataset: %w", err)
	}
	if err := s.index.Load(ds); err != nil {
		log.Printf("reload: index dataset: %v", err)
		return s.index.Stats(), fmt.Errorf("index dataset: %w", err)
	}
	stats := s.index.Stats()
	log.Printf("reload: indexed %d airports, %d flights (generation %d, dataset %s)", stats.Airports, stats.Flights, stats.Generation, stats.Dataset)
	return stats, nil
}

func (s *RouteService) Stats(_ context.Context) routing.Stats {
	return s.index.Stats()
}

func (s *RouteService) Airports(_ context.Context) []*domain.Airport {
	return s.index.Airports()
}

func (s *RouteService) Airport(_ context.Context, code string) (*domain.Airport, error) {
	return s.index.FindAirport(code)
}

func (s *RouteService) CorrectAirport(_ context.Context, code, city, country string) (*domain.Airport, error) {
	return s.index.CorrectAirport(code, city, country)
}

func (s *RouteService) FlightsByCity(_ context.Context, city string) []*domain.Flight {
	return s.index.FlightsByCity(city)
}

func (s *RouteService) FlightsByCountry(_ context.Context, country string) []*domain.Flight {
	return s.index.FlightsByCountry(country)
}

func (s *RouteService) FindRoute(ctx context.Context, from, to string) (domain.Route, error) {
	dataset := s.index.Dataset()
	useCache := s.cache != nil && dataset != ""
	if useCache {
		if cached, err := s.cache.GetRoute(ctx, dataset, from, to); err == nil && cached != nil {
			return *cached, nil
		}
	}

	origin, err := s.index.FindAirport(from)
	if err != nil {
		return domain.Route{}, err
	}
	dest, err := s.index.FindAirport(to)
	if err != nil {
		return domain.Route{}, err
	}
	route, err := s.index.FindRoute(origin, dest)
	if err != nil {
		return domain.Route{}, err
	}
	if useCache {
		if err := s.cache.SetRoute(ctx, dataset, from, to, route); err != nil {
			log.Printf("route cache: set %s-%s: %v", from, to, err)
		}
	}
	return route, nil
}

// ShortestFlightFrom reports ok=false, without error, for an airport that
// has no departures. An unknown code is an error.
func (s *RouteService) ShortestFlightFrom(_ context.Context, code string) (*domain.Flight, bool, error) {
	origin, err := s.index.FindAirport(code)
	if err != nil {
		return nil, false, err
	}
	f, ok := s.index.ShortestFlightFrom(origin)
	return f, ok, nil
}

// FindReturnFlight takes the first direct flight from -> to and finds the
// flight that brings a passenger back.
func (s *RouteService) FindReturnFlight(_ context.Context, from, to string) (*domain.Flight, *domain.Flight, error) {
	origin, err := s.index.FindAirport(from)
	if err != nil {
		return nil, nil, err
	}
	dest, err := s.index.FindAirport(to)
	if err != nil {
		return nil, nil, err
	}
	outbound, err := s.index.FindFlight(origin, dest)
	if err != nil {
		return nil, nil, err
	}
	inbound, err := s.index.FindReturnFlight(outbound)
	if err != nil {
		return outbound, nil, err
	}
	return outbound, inbound, nil
}

var _ RouteUseCase = (*RouteService)(nil)
