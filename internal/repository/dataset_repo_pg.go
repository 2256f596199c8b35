package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Domenick1991/airroutes/internal/records"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema expected by PGDatasetRepository.
const Schema = `
CREATE TABLE IF NOT EXISTS airports (
	position INT  PRIMARY KEY,
	code     TEXT NOT NULL,
	country  TEXT NOT NULL,
	city     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS flights (
	position    INT  PRIMARY KEY,
	flight_no   TEXT NOT NULL,
	origin      TEXT NOT NULL,
	destination TEXT NOT NULL,
	duration    DOUBLE PRECISION NOT NULL
);`

type DatasetRepository interface {
	EnsureSchema(ctx context.Context) error
	Load(ctx context.Context) (records.Dataset, error)
	Replace(ctx context.Context, ds records.Dataset) error
}

type PGDatasetRepository struct {
	db *pgxpool.Pool
}

func NewDatasetRepository(db *pgxpool.Pool) DatasetRepository {
	return &PGDatasetRepository{db: db}
}

// EnsureSchema creates the airports and flights tables when missing.
func (r *PGDatasetRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Load reads both tables in a single repeatable-read transaction so a
// concurrent Replace is never observed half applied.
func (r *PGDatasetRepository) Load(ctx context.Context) (records.Dataset, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return records.Dataset{}, fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback(ctx)

	var ds records.Dataset

	rows, err := tx.Query(ctx, `SELECT code, country, city FROM airports ORDER BY position`)
	if err != nil {
		return records.Dataset{}, fmt.Errorf("query airports: %w", err)
	}
	for rows.Next() {
		var a records.Airport
		if err := rows.Scan(&a.Code, &a.Country, &a.City); err != nil {
			rows.Close()
			return records.Dataset{}, err
		}
		ds.Airports = append(ds.Airports, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return records.Dataset{}, err
	}

	rows, err = tx.Query(ctx, `SELECT flight_no, origin, destination, duration FROM flights ORDER BY position`)
	if err != nil {
		return records.Dataset{}, fmt.Errorf("query flights: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			f     records.Flight
			hours float64
		)
		if err := rows.Scan(&f.Number, &f.Origin, &f.Destination, &hours); err != nil {
			return records.Dataset{}, err
		}
		f.Duration = strconv.FormatFloat(hours, 'f', -1, 64)
		ds.Flights = append(ds.Flights, f)
	}
	return ds, rows.Err()
}

// Replace swaps the stored dataset for ds in one transaction.
func (r *PGDatasetRepository) Replace(ctx context.Context, ds records.Dataset) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM flights`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM airports`); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, a := range ds.Airports {
		batch.Queue(`INSERT INTO airports (position, code, country, city) VALUES ($1, $2, $3, $4)`, i, a.Code, a.Country, a.City)
	}
	for i, f := range ds.Flights {
		hours, err := strconv.ParseFloat(f.Duration, 64)
		if err != nil {
			return fmt.Errorf("flight %s duration %q: %w", f.Number, f.Duration, err)
		}
		batch.Queue(`INSERT INTO flights (position, flight_no, origin, destination, duration) VALUES ($1, $2, $3, $4, $5)`,
			i, f.Number, f.Origin, f.Destination, hours)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}
	return tx.Commit(ctx)
}

var _ DatasetRepository = (*PGDatasetRepository)(nil)
