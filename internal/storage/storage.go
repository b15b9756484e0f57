package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
)

// Preferences stores engine settings that survive restarts.
type Preferences struct {
	DefaultDepth int `json:"default_depth"`
}

// DefaultPreferences returns the out-of-the-box engine preferences.
func DefaultPreferences() *Preferences {
	return &Preferences{
		DefaultDepth: 5,
	}
}

// SearchStats accumulates statistics over every search the engine has run.
type SearchStats struct {
	Searches     int           `json:"searches"`
	Nodes        uint64        `json:"nodes"`
	TotalTime    time.Duration `json:"total_time"`
	DeepestDepth int           `json:"deepest_depth"`
	LastSearch   time.Time     `json:"last_search"`
}

// NodesPerSecond returns the average search speed across all recorded
// searches, or 0 before the first one.
func (s *SearchStats) NodesPerSecond() float64 {
	if s.TotalTime <= 0 {
		return 0
	}
	return float64(s.Nodes) / s.TotalTime.Seconds()
}

// Store wraps BadgerDB for persistent storage. A nil *Store is valid and
// turns every operation into a no-op returning defaults, so callers can run
// without persistence.
type Store struct {
	db *badger.DB
}

// Open opens the store in the platform data directory.
func Open() (*Store, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return OpenAt(dbDir)
}

// OpenAt opens the store in a specific directory.
func OpenAt(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable badger's own logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SavePreferences saves engine preferences.
func (s *Store) SavePreferences(prefs *Preferences) error {
	if s == nil {
		return nil
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads engine preferences, returning defaults if none are
// stored yet.
func (s *Store) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	if s == nil {
		return prefs, nil
	}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPreferences))
		if err == badger.ErrKeyNotFound {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, prefs)
		})
	})

	return prefs, err
}

// LoadStats loads accumulated search statistics, returning empty stats if
// none are stored yet.
func (s *Store) LoadStats() (*SearchStats, error) {
	stats := &SearchStats{}
	if s == nil {
		return stats, nil
	}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if err == badger.ErrKeyNotFound {
			return nil // Use empty stats
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

// saveStats saves search statistics.
func (s *Store) saveStats(stats *SearchStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
}

// RecordSearch folds one completed search into the accumulated statistics.
func (s *Store) RecordSearch(depth int, nodes uint64, elapsed time.Duration) error {
	if s == nil {
		return nil
	}

	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.Searches++
	stats.Nodes += nodes
	stats.TotalTime += elapsed
	if depth > stats.DeepestDepth {
		stats.DeepestDepth = depth
	}
	stats.LastSearch = time.Now()

	return s.saveStats(stats)
}
