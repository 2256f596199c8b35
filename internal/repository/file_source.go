package repository

import (
	"context"
	"fmt"
	"os"

	"github.com/Domenick1991/airroutes/internal/records"
)

// FileSource reads the dataset from an airports file and a flights file.
type FileSource struct {
	AirportsPath string
	FlightsPath  string
}

func NewFileSource(airportsPath, flightsPath string) *FileSource {
	return &FileSource{AirportsPath: airportsPath, FlightsPath: flightsPath}
}

func (s *FileSource) Load(_ context.Context) (records.Dataset, error) {
	airports, err := os.Open(s.AirportsPath)
	if err != nil {
		return records.Dataset{}, fmt.Errorf("open airports file: %w", err)
	}
	defer airports.Close()

	flights, err := os.Open(s.FlightsPath)
	if err != nil {
		return records.Dataset{}, fmt.Errorf("open flights file: %w", err)
	}
	defer flights.Close()

	ds, err := records.ReadDataset(airports, flights)
	if err != nil {
		return records.Dataset{}, fmt.Errorf("read %s, %s: %w", s.AirportsPath, s.FlightsPath, err)
	}
	return ds, nil
}
