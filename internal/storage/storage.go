// Package storage keeps an optional log of served predictions in BoltDB.
//
// Records are keyed by zero-padded timestamp so a cursor walks them in time
// order; range and most-recent queries are cursor scans.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"energy-predictor/internal/features"

	"go.etcd.io/bbolt"
)

const predictionsBucket = "predictions"

// ErrClosed is returned by every operation on a closed Store.
var ErrClosed = errors.New("storage closed")

// PredictionRecord is one served prediction.
type PredictionRecord struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Model      string            `json:"model"`
	Input      features.RawInput `json:"input"`
	Features   []float64         `json:"features"`
	Prediction float64           `json:"prediction"`
}

// Store provides persistent storage for prediction records using BoltDB.
type Store struct {
	mu sync.RWMutex
	db *bbolt.DB
}

// New opens (or creates) the prediction database under dataPath.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "predictions.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(predictionsBucket)); err != nil {
			return fmt.Errorf("create predictions bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func recordKey(ts time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%020d_%s", ts.UnixNano(), id))
}

func timeKey(ts time.Time) []byte {
	return []byte(fmt.Sprintf("%020d", ts.UnixNano()))
}

// view runs fn in a read transaction unless the store is closed.
func (s *Store) view(fn func(tx *bbolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrClosed
	}
	return s.db.View(fn)
}

// StorePrediction appends rec to the log.
func (s *Store) StorePrediction(rec PredictionRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrClosed
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(predictionsBucket))

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal prediction: %w", err)
		}

		return b.Put(recordKey(rec.Timestamp, rec.ID), data)
	})
}

// GetPredictions returns records in [start, end] in time order. An empty
// model matches every model.
func (s *Store) GetPredictions(model string, start, end time.Time) ([]PredictionRecord, error) {
	var records []PredictionRecord

	err := s.view(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(predictionsBucket)).Cursor()
		startKey := timeKey(start)
		// '_' sorts after every digit, so this bounds all ids at end.
		endKey := append(timeKey(end), '_', 0xff)

		for k, v := c.Seek(startKey); k != nil && bytes.Compare(k, endKey) <= 0; k, v = c.Next() {
			var rec PredictionRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue // Skip malformed records
			}
			if model != "" && rec.Model != model {
				continue
			}
			records = append(records, rec)
		}
		return nil
	})

	return records, err
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]PredictionRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	records := make([]PredictionRecord, 0, limit)

	err := s.view(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(predictionsBucket)).Cursor()
		for k, v := c.Last(); k != nil && len(records) < limit; k, v = c.Prev() {
			var rec PredictionRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			records = append(records, rec)
		}
		return nil
	})

	return records, err
}

// Count returns the number of stored records.
func (s *Store) Count() (int, error) {
	var n int
	err := s.view(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(predictionsBucket)).Stats().KeyN
		return nil
	})
	return n, err
}
