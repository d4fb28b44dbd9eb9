package bolt

import (
	"context"
	"encoding/binary"
	"fmt"

	portsrepo "github.com/SscSPs/currency_conversion_app/internal/core/ports/repositories"
	bbolt "go.etcd.io/bbolt"
)

var (
	currenciesBucket    = []byte("Currencies")
	currencyCodesBucket = []byte("CurrencyCodes")
	rateLogsBucket      = []byte("RateLogs")
	latestRatesBucket   = []byte("LatestRates")
	metaBucket          = []byte("Meta")

	lastRetrievedAtKey = []byte("last_retrieved_at")
)

// Store is the embedded single-file store. It serves both the currency
// registry and the exchange rate log.
type Store struct {
	db *bbolt.DB
}

// NewStore prepares the buckets used by the repositories.
func NewStore(db *bbolt.DB) (*Store, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, bn := range [][]byte{currenciesBucket, currencyCodesBucket, rateLogsBucket, latestRatesBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(bn); err != nil {
				return fmt.Errorf("could not create bucket %s: %w", string(bn), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewRepositoryProvider wires the bbolt-backed repositories.
func NewRepositoryProvider(db *bbolt.DB) (portsrepo.RepositoryProvider, error) {
	store, err := NewStore(db)
	if err != nil {
		return portsrepo.RepositoryProvider{}, err
	}
	return portsrepo.RepositoryProvider{
		CurrencyRepo: &CurrencyRepository{store: store},
		RateLogRepo:  &ExchangeRateRepository{store: store},
		Store:        store,
	}, nil
}

// Ping verifies the database file can be read.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(rateLogsBucket) == nil {
			return fmt.Errorf("bucket %s missing", string(rateLogsBucket))
		}
		return nil
	})
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func btoi(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// pairKey orders latest-rate entries by base, then target.
func pairKey(baseID, targetID int64) []byte {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[:8], uint64(baseID))
	binary.BigEndian.PutUint64(b[8:], uint64(targetID))
	return b
}
