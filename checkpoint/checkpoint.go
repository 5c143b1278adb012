// Package checkpoint stores finished simulations in a bolt database,
// so an interrupted run over many trees can be resumed.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/op/go-logging"

	bolt "go.etcd.io/bbolt"

	"bitbucket.org/Davydov/seqgen/bio"
)

// log is the global logging variable.
var log = logging.MustGetLogger("checkpoint")

// MAIN is the bucket name for all the checkpoints.
var MAIN = []byte("main")

// ErrMismatch is returned by Load if a replicate was saved by a run
// with different settings or a different tree.
var ErrMismatch = errors.New("checkpoint was created with different settings")

// Data stores one finished replicate.
type Data struct {
	// Tree is the tree number in the input stream.
	Tree int `json:"tree"`
	// Replicate is the replicate number for the tree.
	Replicate int `json:"replicate"`
	// Fingerprint identifies the settings and the tree used.
	Fingerprint string `json:"fingerprint"`
	// RNGState is the random generator state after the
	// replicate.
	RNGState []byte `json:"rngState"`
	// Sequences are the simulated sequences.
	Sequences bio.Sequences `json:"sequences"`
}

// Store saves and loads checkpoints.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) a checkpoint database.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0666, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key returns the database key of a replicate.
func Key(tree, replicate int) []byte {
	return []byte(fmt.Sprintf("%08d/%06d", tree, replicate))
}

// Save saves a replicate.
func (s *Store) Save(data *Data) error {
	dataB, err := json.Marshal(data)
	if err != nil {
		log.Error("Error serializing checkpoint", err)
		return err
	}
	err = SaveData(s.db, Key(data.Tree, data.Replicate), dataB)
	if err != nil {
		log.Error("Error saving checkpoint", err)
	}
	return err
}

// Load returns a saved replicate or nil if it was not saved. The
// fingerprint of the saved replicate has to match.
func (s *Store) Load(tree, replicate int, fingerprint string) (*Data, error) {
	var data *Data

	b, err := LoadData(s.db, Key(tree, replicate))
	if err != nil || b == nil {
		return nil, err
	}

	err = json.Unmarshal(b, &data)
	if err != nil {
		return nil, err
	}
	if data.Fingerprint != fingerprint {
		return nil, fmt.Errorf("tree %d, replicate %d: %w", tree, replicate, ErrMismatch)
	}
	log.Debugf("Found checkpoint for tree %d, replicate %d", tree, replicate)
	return data, nil
}

// SaveData saves values in bolt database.
func SaveData(db *bolt.DB, key []byte, data []byte) error {
	if db == nil {
		return nil
	}
	err := db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(MAIN)
		if err != nil {
			return err
		}

		err = b.Put(key, data)
		return err
	})
	return err
}

// LoadData loads data from bolt database.
func LoadData(db *bolt.DB, key []byte) ([]byte, error) {
	var data []byte
	if db == nil {
		return nil, nil
	}
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(MAIN)
		if b == nil {
			return nil
		}

		v := b.Get(key)
		if v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
