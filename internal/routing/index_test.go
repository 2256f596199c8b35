package routing

import (
	"strings"
	"testing"

	"github.com/Domenick1991/airroutes/internal/domain"
	"github.com/Domenick1991/airroutes/internal/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAirports() []records.Airport {
	return []records.Airport{
		{Code: "AAA", Country: "Canada", City: "Toronto"},
		{Code: "BBB", Country: "Canada", City: "Montreal"},
		{Code: "CCC", Country: "United States", City: "New York"},
		{Code: "DDD", Country: "France", City: "Paris"},
	}
}

func flight(number, from, to, hours string) records.Flight {
	return records.Flight{Number: number, Origin: from, Destination: to, Duration: hours}
}

func loadedIndex(t *testing.T, flights ...records.Flight) *Index {
	t.Helper()
	x := NewIndex()
	require.NoError(t, x.Load(records.Dataset{Airports: testAirports(), Flights: flights}))
	return x
}

func airport(t *testing.T, x *Index, code string) *domain.Airport {
	t.Helper()
	a, err := x.FindAirport(code)
	require.NoError(t, err)
	return a
}

func TestIndex_FindAirportIgnoresCase(t *testing.T) {
	x := loadedIndex(t)

	for _, code := range []string{"AAA", "aaa", " aAa "} {
		a, err := x.FindAirport(code)
		require.NoError(t, err, code)
		assert.Equal(t, "AAA", a.Code())
	}

	_, err := x.FindAirport("ZZZ")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndex_LoadFlightsRejectsUnknownAirport(t *testing.T) {
	x := loadedIndex(t, flight("ACA-100", "AAA", "BBB", "1"))

	err := x.LoadFlights([]records.Flight{
		flight("ACA-200", "AAA", "CCC", "2"),
		flight("ACA-300", "AAA", "ZZZ", "2"),
	})
	assert.ErrorIs(t, err, domain.ErrUnknownAirport)

	// previous flights survive the failed load
	deps := x.Departures("AAA")
	require.Len(t, deps, 1)
	assert.Equal(t, "ACA-100", deps[0].Number())
}

func TestIndex_LoadFlightsPropagatesValidation(t *testing.T) {
	x := loadedIndex(t)

	assert.ErrorIs(t, x.LoadFlights([]records.Flight{flight("ACA100", "AAA", "BBB", "1")}), domain.ErrInvalidFlightNumber)
	assert.ErrorIs(t, x.LoadFlights([]records.Flight{flight("ACA-100", "AAA", "BBB", "-1")}), domain.ErrInvalidDuration)
	assert.ErrorIs(t, x.LoadFlights([]records.Flight{flight("ACA-100", "AAA", "BBB", "soon")}), domain.ErrInvalidDuration)
	assert.Equal(t, 0, x.Stats().Flights)
}

func TestIndex_FailedLoadKeepsPreviousState(t *testing.T) {
	x := loadedIndex(t, flight("ACA-100", "AAA", "BBB", "1"))
	before := x.Stats()

	err := x.Load(records.Dataset{
		Airports: []records.Airport{{Code: "XXX", Country: "Nowhere", City: "Nothing"}},
		Flights:  []records.Flight{flight("ACA-100", "XXX", "AAA", "1")},
	})
	require.ErrorIs(t, err, domain.ErrUnknownAirport)

	assert.Equal(t, before, x.Stats())
	_, err = x.FindAirport("XXX")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndex_LoadAirportsClearsFlights(t *testing.T) {
	x := loadedIndex(t, flight("ACA-100", "AAA", "BBB", "1"))

	require.NoError(t, x.LoadAirports(testAirports()[:2]))

	stats := x.Stats()
	assert.Equal(t, 2, stats.Airports)
	assert.Equal(t, 0, stats.Flights)
	assert.Equal(t, uint64(2), stats.Generation)
	assert.Empty(t, x.Departures("AAA"))
}

func TestIndex_LoadAirportsRejectsEmptyCode(t *testing.T) {
	x := loadedIndex(t)

	err := x.LoadAirports([]records.Airport{{Code: " ", Country: "Canada", City: "Toronto"}})
	assert.ErrorIs(t, err, domain.ErrFormat)
	assert.Equal(t, 4, x.Stats().Airports)
}

func TestIndex_DuplicateAirportKeepsFirst(t *testing.T) {
	x := NewIndex()
	require.NoError(t, x.LoadAirports([]records.Airport{
		{Code: "AAA", Country: "Canada", City: "Toronto"},
		{Code: "aaa", Country: "Canada", City: "Elsewhere"},
	}))

	assert.Len(t, x.Airports(), 1)
	assert.Equal(t, "Toronto", airport(t, x, "AAA").City())
}

func TestIndex_FlightsByCityAndCountry(t *testing.T) {
	x := loadedIndex(t,
		flight("ACA-100", "BBB", "CCC", "1"),
		flight("ACA-200", "AAA", "BBB", "1"),
		flight("ACA-300", "AAA", "DDD", "7"),
		flight("ACA-400", "BBB", "AAA", "1"),
	)

	numbers := func(fs []*domain.Flight) []string {
		out := make([]string, 0, len(fs))
		for _, f := range fs {
			out = append(out, f.Number())
		}
		return out
	}

	assert.Equal(t, []string{"ACA-100", "ACA-400", "ACA-200"}, numbers(x.FlightsByCity("montreal")))
	assert.Equal(t, []string{"ACA-300"}, numbers(x.FlightsByCountry("FRANCE")))
	assert.Equal(t, []string{"ACA-100", "ACA-400", "ACA-200", "ACA-300"}, numbers(x.FlightsByCountry("Canada")))
	assert.Empty(t, x.FlightsByCity("Berlin"))
}

func TestIndex_FindRoute(t *testing.T) {
	x := loadedIndex(t,
		flight("ACA-100", "AAA", "BBB", "1"),
		flight("ACA-200", "BBB", "CCC", "1"),
		flight("ACA-300", "AAA", "DDD", "1"),
	)
	a, b, c := airport(t, x, "AAA"), airport(t, x, "BBB"), airport(t, x, "CCC")

	route, err := x.FindRoute(a, b)
	require.NoError(t, err)
	assert.True(t, route.Direct)
	assert.Equal(t, "AAA", route.Origin)
	assert.Equal(t, "BBB", route.Destination)

	route, err = x.FindRoute(a, c)
	require.NoError(t, err)
	assert.False(t, route.Direct)
	assert.Equal(t, []string{"BBB"}, route.Connections)

	require.NoError(t, x.LoadFlights([]records.Flight{
		flight("ACA-100", "AAA", "BBB", "1"),
		flight("ACA-300", "AAA", "DDD", "1"),
	}))
	_, err = x.FindRoute(airport(t, x, "AAA"), airport(t, x, "CCC"))
	assert.ErrorIs(t, err, domain.ErrNoRouteFound)
}

func TestIndex_FindRouteReportsEachConnectionOnce(t *testing.T) {
	x := loadedIndex(t,
		flight("ACA-100", "AAA", "BBB", "1"),
		flight("ACA-101", "AAA", "BBB", "2"),
		flight("ACA-200", "BBB", "CCC", "1"),
		flight("ACA-201", "BBB", "CCC", "3"),
		flight("ACA-300", "AAA", "DDD", "1"),
		flight("ACA-400", "DDD", "CCC", "1"),
	)

	route, err := x.FindRoute(airport(t, x, "AAA"), airport(t, x, "CCC"))
	require.NoError(t, err)
	assert.Equal(t, []string{"BBB", "DDD"}, route.Connections)
}

func TestIndex_FindRouteDoesNotSearchTwoConnections(t *testing.T) {
	x := loadedIndex(t,
		flight("ACA-100", "AAA", "BBB", "1"),
		flight("ACA-200", "BBB", "CCC", "1"),
		flight("ACA-300", "CCC", "DDD", "1"),
	)

	_, err := x.FindRoute(airport(t, x, "AAA"), airport(t, x, "DDD"))
	assert.ErrorIs(t, err, domain.ErrNoRouteFound)
}

func TestIndex_ShortestFlightFrom(t *testing.T) {
	x := loadedIndex(t,
		flight("ACA-100", "AAA", "BBB", "3"),
		flight("ACA-200", "AAA", "CCC", "1"),
		flight("ACA-300", "AAA", "DDD", "5"),
		flight("ACA-400", "AAA", "BBB", "1"),
	)

	f, ok := x.ShortestFlightFrom(airport(t, x, "aaa"))
	require.True(t, ok)
	assert.Equal(t, "ACA-200", f.Number())
	assert.Equal(t, "CCC", f.Destination().Code())

	_, ok = x.ShortestFlightFrom(airport(t, x, "DDD"))
	assert.False(t, ok)
}

func TestIndex_FindReturnFlight(t *testing.T) {
	x := loadedIndex(t,
		flight("ACA-100", "AAA", "BBB", "1"),
		flight("ACA-200", "BBB", "CCC", "1"),
		flight("ACA-300", "BBB", "AAA", "1"),
		flight("ACA-400", "AAA", "DDD", "1"),
	)
	out, err := x.FindFlight(airport(t, x, "AAA"), airport(t, x, "BBB"))
	require.NoError(t, err)

	back, err := x.FindReturnFlight(out)
	require.NoError(t, err)
	assert.Equal(t, "ACA-300", back.Number())

	oneWay, err := x.FindFlight(airport(t, x, "AAA"), airport(t, x, "DDD"))
	require.NoError(t, err)
	_, err = x.FindReturnFlight(oneWay)
	assert.ErrorIs(t, err, domain.ErrNoReturnFlight)

	noDepartures, err := x.FindFlight(airport(t, x, "BBB"), airport(t, x, "CCC"))
	require.NoError(t, err)
	_, err = x.FindReturnFlight(noDepartures)
	assert.ErrorIs(t, err, domain.ErrNoReturnFlight)
}

func TestIndex_CorrectAirport(t *testing.T) {
	x := loadedIndex(t, flight("ACA-100", "AAA", "BBB", "1"))
	held := x.Departures("AAA")[0]

	updated, err := x.CorrectAirport("bbb", "Laval", "Quebec")
	require.NoError(t, err)
	assert.Equal(t, "BBB (Laval, Quebec)", updated.String())

	assert.Equal(t, "Montreal", held.Destination().City())
	assert.Equal(t, "Laval", x.Departures("AAA")[0].Destination().City())
	assert.Len(t, x.FlightsByCountry("Quebec"), 1)

	_, err = x.CorrectAirport("ZZZ", "a", "b")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndex_DatasetFingerprint(t *testing.T) {
	assert.Empty(t, NewIndex().Dataset())

	a := loadedIndex(t, flight("ACA-100", "AAA", "BBB", "1"), flight("ACA-200", "BBB", "CCC", "2"))
	b := NewIndex()
	require.NoError(t, b.LoadAirports(testAirports()))
	require.NoError(t, b.LoadFlights([]records.Flight{flight("ACA-100", "AAA", "BBB", "1"), flight("ACA-200", "BBB", "CCC", "2")}))

	// same data, different generations
	assert.NotEqual(t, a.Generation(), b.Generation())
	assert.Equal(t, a.Dataset(), b.Dataset())
	assert.Len(t, a.Dataset(), 16)

	direct := loadedIndex(t, flight("ACA-100", "AAA", "CCC", "1"))
	assert.NotEqual(t, a.Dataset(), direct.Dataset())

	longer := loadedIndex(t, flight("ACA-100", "AAA", "BBB", "1.5"), flight("ACA-200", "BBB", "CCC", "2"))
	assert.NotEqual(t, a.Dataset(), longer.Dataset())
}

func TestIndex_CorrectAirportChangesDataset(t *testing.T) {
	x := loadedIndex(t, flight("ACA-100", "AAA", "BBB", "1"))
	before := x.Dataset()

	_, err := x.CorrectAirport("DDD", "Roissy", "France")
	require.NoError(t, err)

	assert.NotEqual(t, before, x.Dataset())
	assert.Equal(t, x.Dataset(), x.Stats().Dataset)
}

func TestIndex_LoadRejectsNegativeDuration(t *testing.T) {
	ds, err := records.ReadDataset(
		strings.NewReader("AAA-Canada-Toronto\nBBB-Canada-Montreal\n"),
		strings.NewReader("ACA-100-AAA-BBB--2\n"),
	)
	require.NoError(t, err)

	err = NewIndex().Load(ds)
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
	assert.NotErrorIs(t, err, domain.ErrUnknownAirport)
}
