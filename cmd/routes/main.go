// Command routes answers route queries over local airport and flight files.
//
//	routes -airports airports.txt -flights flights.txt route YYZ CDG
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Domenick1991/airroutes/internal/repository"
	"github.com/Domenick1991/airroutes/internal/routing"
	"github.com/Domenick1991/airroutes/internal/service/routes"
)

var errUsage = errors.New(`usage: routes [-airports FILE] [-flights FILE] COMMAND ARGS
commands:
  airport CODE
  city NAME
  country NAME
  route FROM TO
  shortest CODE
  return FROM TO`)

func main() {
	airports := flag.String("airports", "data/airports.txt", "airports file")
	flights := flag.String("flights", "data/flights.txt", "flights file")
	flag.Parse()

	if err := run(context.Background(), os.Stdout, *airports, *flights, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, airportsPath, flightsPath string, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	svc := routes.NewRouteService(routing.NewIndex(), repository.NewFileSource(airportsPath, flightsPath))
	if _, err := svc.Reload(ctx); err != nil {
		return err
	}

	cmd, rest := args[0], args[1:]
	arg := func(n int) (string, error) {
		if len(rest) != n {
			return "", errUsage
		}
		return strings.Join(rest, " "), nil
	}

	switch cmd {
	case "airport":
		code, err := arg(1)
		if err != nil {
			return err
		}
		a, err := svc.Airport(ctx, code)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, a)
	case "city", "country":
		if len(rest) == 0 {
			return errUsage
		}
		name := strings.Join(rest, " ")
		found := svc.FlightsByCity(ctx, name)
		if cmd == "country" {
			found = svc.FlightsByCountry(ctx, name)
		}
		for _, f := range found {
			fmt.Fprintf(out, "%s %s\n", f.Number(), f)
		}
	case "route":
		if len(rest) != 2 {
			return errUsage
		}
		route, err := svc.FindRoute(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, route)
	case "shortest":
		code, err := arg(1)
		if err != nil {
			return err
		}
		f, ok, err := svc.ShortestFlightFrom(ctx, code)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(out, "no flights depart %s\n", code)
			return nil
		}
		fmt.Fprintf(out, "%s %s\n", f.Number(), f)
	case "return":
		if len(rest) != 2 {
			return errUsage
		}
		_, back, err := svc.FindReturnFlight(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", back.Number(), back)
	default:
		return errUsage
	}
	return nil
}
