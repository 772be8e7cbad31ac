package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/flycharts/flycharts/internal/sim"
	"github.com/flycharts/flycharts/pkg/logger"
)

// PositionStorage is a SQLite-based log of pushed position samples
type PositionStorage struct {
	db                *sql.DB
	logger            *logger.Logger
	maxPositionsInAPI int
}

// NewPositionStorage creates a new SQLite-based position log
func NewPositionStorage(dbPath string, maxPositionsInAPI int, log *logger.Logger) (*PositionStorage, error) {
	storageLogger := log.Named("sqlite")

	storageLogger.Info("Initializing SQLite storage",
		logger.String("path", dbPath))

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := initDatabase(db, storageLogger); err != nil {
		db.Close()
		return nil, err
	}

	return &PositionStorage{
		db:                db,
		logger:            storageLogger,
		maxPositionsInAPI: maxPositionsInAPI,
	}, nil
}

// Close closes the database connection
func (s *PositionStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// initDatabase initializes the database schema
func initDatabase(db *sql.DB, log *logger.Logger) error {
	log.Info("Initializing database schema")

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS positions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			latitude REAL,
			longitude REAL,
			altitude REAL,
			heading REAL,
			true_heading REAL,
			airspeed REAL,
			ground_speed REAL,
			vertical_speed REAL,
			aircraft_title TEXT,
			atc_id TEXT,
			timestamp TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create positions table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_positions_timestamp ON positions(timestamp)`)
	if err != nil {
		return fmt.Errorf("failed to create timestamp index: %w", err)
	}

	return nil
}

// Insert logs a single position sample
func (s *PositionStorage) Insert(reading *sim.PositionReading) error {
	_, err := s.db.Exec(`
		INSERT INTO positions (
			latitude, longitude, altitude, heading, true_heading,
			airspeed, ground_speed, vertical_speed, aircraft_title, atc_id, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reading.Latitude,
		reading.Longitude,
		reading.Altitude,
		reading.Heading,
		reading.TrueHeading,
		reading.Airspeed,
		reading.GroundSpeed,
		reading.VerticalSpeed,
		reading.AircraftTitle,
		reading.ATCID,
		reading.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}
	return nil
}

// Recent returns the most recent logged positions, oldest first, capped at
// the configured API limit
func (s *PositionStorage) Recent(limit int) ([]sim.PositionReading, error) {
	if limit <= 0 || limit > s.maxPositionsInAPI {
		limit = s.maxPositionsInAPI
	}

	rows, err := s.db.Query(`
		SELECT latitude, longitude, altitude, heading, true_heading,
			airspeed, ground_speed, vertical_speed, aircraft_title, atc_id, timestamp
		FROM positions
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	readings := make([]sim.PositionReading, 0, limit)
	for rows.Next() {
		var r sim.PositionReading
		var ts string
		if err := rows.Scan(
			&r.Latitude, &r.Longitude, &r.Altitude, &r.Heading, &r.TrueHeading,
			&r.Airspeed, &r.GroundSpeed, &r.VerticalSpeed, &r.AircraftTitle, &r.ATCID, &ts,
		); err != nil {
			return nil, fmt.Errorf("failed to scan position row: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			r.Timestamp = parsed
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate position rows: %w", err)
	}

	// Reverse into chronological order
	for i, j := 0, len(readings)-1; i < j; i, j = i+1, j-1 {
		readings[i], readings[j] = readings[j], readings[i]
	}

	return readings, nil
}

// Count returns the number of logged positions
func (s *PositionStorage) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM positions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count positions: %w", err)
	}
	return n, nil
}
