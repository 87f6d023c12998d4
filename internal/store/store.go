// Package store keeps a history of computed trend crossings in sqlite so
// repeated scans can be compared over time.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vigneshwaranr/highcharts-trendline/internal/forecast"
)

const schema = `
CREATE TABLE IF NOT EXISTS crossings (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	series1     TEXT NOT NULL,
	series2     TEXT NOT NULL,
	x           REAL NOT NULL,
	y           REAL NOT NULL,
	slope1      REAL NOT NULL,
	slope2      REAL NOT NULL,
	computed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_crossings_computed_at ON crossings(computed_at);
`

// Crossing is a stored forecast crossing.
type Crossing struct {
	ID         int64
	Series1    string
	Series2    string
	X, Y       float64
	Slope1     float64
	Slope2     float64
	ComputedAt time.Time
}

type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the crossing-history database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveCrossing records a computed crossing.
func (s *Store) SaveCrossing(res *forecast.Result) error {
	_, err := s.db.Exec(
		`INSERT INTO crossings (series1, series2, x, y, slope1, slope2, computed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.Name1, res.Name2, res.X, res.Y, res.Slope1, res.Slope2,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// RecentCrossings returns the newest crossings, most recent first.
func (s *Store) RecentCrossings(limit int) ([]Crossing, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, series1, series2, x, y, slope1, slope2, computed_at
		 FROM crossings ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Crossing
	for rows.Next() {
		var c Crossing
		var ts string
		if err := rows.Scan(&c.ID, &c.Series1, &c.Series2, &c.X, &c.Y, &c.Slope1, &c.Slope2, &ts); err != nil {
			return nil, err
		}
		c.ComputedAt, _ = time.Parse(time.RFC3339, ts)
		out = append(out, c)
	}
	return out, rows.Err()
}
