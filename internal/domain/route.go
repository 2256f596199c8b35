package domain

import "fmt"

// Route is the answer to a route query: either a direct flight exists, or
// Connections lists every airport through which a single connection works.
type Route struct {
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Direct      bool     `json:"direct"`
	Connections []string `json:"connections,omitempty"`
}

func (r Route) String() string {
	if r.Direct {
		return fmt.Sprintf("Direct Flight: %s to %s", r.Origin, r.Destination)
	}
	return fmt.Sprintf("Connecting Flight: %s to %s via %v", r.Origin, r.Destination, r.Connections)
}
