package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SscSPs/currency_conversion_app/internal/apperrors"
	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
	portsrepo "github.com/SscSPs/currency_conversion_app/internal/core/ports/repositories"
	"github.com/SscSPs/currency_conversion_app/internal/models"
	"github.com/SscSPs/currency_conversion_app/internal/utils/mapping"
	bbolt "go.etcd.io/bbolt"
)

// ExchangeRateRepository stores the append-only rate log. A second bucket
// indexes the newest observation per ordered pair.
type ExchangeRateRepository struct {
	store *Store
}

var _ portsrepo.RateLogRepositoryFacade = (*ExchangeRateRepository)(nil)

// FindLatestRate returns the newest observation for the ordered pair.
func (r *ExchangeRateRepository) FindLatestRate(ctx context.Context, baseCurrencyID, targetCurrencyID int64) (*domain.RateObservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var m models.ExchangeRateLog
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(latestRatesBucket).Get(pairKey(baseCurrencyID, targetCurrencyID))
		if data == nil {
			return apperrors.ErrNotFound
		}
		return json.Unmarshal(data, &m)
	})
	if err != nil {
		return nil, err
	}

	obs := mapping.ToDomainRateObservation(m)
	return &obs, nil
}

// FindLatestRatesForBase returns the newest observation per target, ordered by target id.
func (r *ExchangeRateRepository) FindLatestRatesForBase(ctx context.Context, baseCurrencyID int64) ([]domain.RateObservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := make([]byte, 8)
	binary.BigEndian.PutUint64(prefix, uint64(baseCurrencyID))

	var result []models.ExchangeRateLog
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(latestRatesBucket).Cursor()
		for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
			var m models.ExchangeRateLog
			if err := json.Unmarshal(v, &m); err != nil {
				return fmt.Errorf("could not unmarshal latest rate: %w", err)
			}
			result = append(result, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainRateObservationSlice(result), nil
}

// HasAnyData reports whether the log holds at least one observation.
func (r *ExchangeRateRepository) HasAnyData(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var found bool
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		k, _ := tx.Bucket(rateLogsBucket).Cursor().First()
		found = k != nil
		return nil
	})
	return found, err
}

// CountObservations returns the number of observations in the log.
func (r *ExchangeRateRepository) CountObservations(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var n int64
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		n = int64(tx.Bucket(rateLogsBucket).Stats().KeyN)
		return nil
	})
	return n, err
}

// FindMostRecentTimestamp returns the latest retrieval time, or nil for an empty log.
func (r *ExchangeRateRepository) FindMostRecentTimestamp(ctx context.Context) (*time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ts *time.Time
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(metaBucket).Get(lastRetrievedAtKey)
		if data == nil {
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, string(data))
		if err != nil {
			return fmt.Errorf("could not parse last retrieval time: %w", err)
		}
		parsed = parsed.UTC()
		ts = &parsed
		return nil
	})
	return ts, err
}

// NewBatch starts staging observations for one pass.
func (r *ExchangeRateRepository) NewBatch() portsrepo.RateLogBatch {
	return &rateLogBatch{store: r.store}
}

// rateLogBatch writes all staged rows in a single bbolt transaction.
type rateLogBatch struct {
	store *Store
	rows  []models.ExchangeRateLog
}

func (b *rateLogBatch) Append(obs domain.RateObservation) {
	b.rows = append(b.rows, mapping.ToModelExchangeRateLog(obs))
}

func (b *rateLogBatch) Len() int {
	return len(b.rows)
}

// Commit assigns ids and persists every staged row or none of them.
func (b *rateLogBatch) Commit(ctx context.Context) error {
	if len(b.rows) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.store.db.Update(func(tx *bbolt.Tx) error {
		logs := tx.Bucket(rateLogsBucket)
		latest := tx.Bucket(latestRatesBucket)
		meta := tx.Bucket(metaBucket)

		var newest time.Time
		if data := meta.Get(lastRetrievedAtKey); data != nil {
			if parsed, err := time.Parse(time.RFC3339Nano, string(data)); err == nil {
				newest = parsed
			}
		}

		for _, row := range b.rows {
			seq, err := logs.NextSequence()
			if err != nil {
				return fmt.Errorf("could not allocate rate log id: %w", err)
			}
			row.ID = int64(seq)

			data, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("could not marshal rate log: %w", err)
			}
			if err := logs.Put(itob(seq), data); err != nil {
				return fmt.Errorf("rate log write error: %w", err)
			}

			key := pairKey(row.BaseCurrencyID, row.TargetCurrencyID)
			supersedes := true
			if current := latest.Get(key); current != nil {
				var prev models.ExchangeRateLog
				if err := json.Unmarshal(current, &prev); err != nil {
					return fmt.Errorf("could not unmarshal latest rate: %w", err)
				}
				supersedes = mapping.ToDomainRateObservation(row).Newer(mapping.ToDomainRateObservation(prev))
			}
			if supersedes {
				if err := latest.Put(key, data); err != nil {
					return fmt.Errorf("latest rate write error: %w", err)
				}
			}

			if row.RetrievedAt.After(newest) {
				newest = row.RetrievedAt
			}
		}

		return meta.Put(lastRetrievedAtKey, []byte(newest.UTC().Format(time.RFC3339Nano)))
	})
	if err != nil {
		return fmt.Errorf("failed to commit %d exchange rate logs: %w", len(b.rows), err)
	}

	b.rows = nil
	return nil
}
