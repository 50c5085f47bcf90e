// Package storage provides the persistent prediction log for the fraud
// scoring service. It uses BoltDB as the underlying engine and stores one
// JSON-encoded record per scored transaction, keyed by timestamp for
// efficient range queries by monitoring tooling.
package storage

import (
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const predictionsBucket = "predictions"

// PredictionRecord is one logged scoring outcome. Only the two
// non-anonymized transaction fields are kept alongside the result.
type PredictionRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	TxTime      float64   `json:"tx_time"`
	Amount      float64   `json:"amount"`
	Probability float64   `json:"probability"`
	IsFraud     bool      `json:"is_fraud"`
}

// Store wraps the BoltDB prediction log. All methods are safe for
// concurrent use.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the prediction log under dataPath.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "fraudscore-data.db")

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

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
