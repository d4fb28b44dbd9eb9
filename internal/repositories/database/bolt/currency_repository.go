package bolt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SscSPs/currency_conversion_app/internal/apperrors"
	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
	portsrepo "github.com/SscSPs/currency_conversion_app/internal/core/ports/repositories"
	"github.com/SscSPs/currency_conversion_app/internal/models"
	"github.com/SscSPs/currency_conversion_app/internal/utils/mapping"
	bbolt "go.etcd.io/bbolt"
)

// CurrencyRepository keeps currencies keyed by id with a code index.
type CurrencyRepository struct {
	store *Store
}

var _ portsrepo.CurrencyRepositoryFacade = (*CurrencyRepository)(nil)

// SaveCurrencies inserts currencies whose code is not registered yet.
func (r *CurrencyRepository) SaveCurrencies(ctx context.Context, currencies []domain.Currency) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	inserted := 0
	err := r.store.db.Update(func(tx *bbolt.Tx) error {
		byID := tx.Bucket(currenciesBucket)
		byCode := tx.Bucket(currencyCodesBucket)

		for _, c := range currencies {
			if byCode.Get([]byte(c.Code)) != nil {
				continue
			}

			seq, err := byID.NextSequence()
			if err != nil {
				return fmt.Errorf("could not allocate currency id: %w", err)
			}
			m := mapping.ToModelCurrency(c)
			m.ID = int64(seq)

			bytes, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("could not marshal currency %s: %w", m.Code, err)
			}
			if err := byID.Put(itob(seq), bytes); err != nil {
				return fmt.Errorf("currency write error: %w", err)
			}
			if err := byCode.Put([]byte(m.Code), itob(seq)); err != nil {
				return fmt.Errorf("currency index write error: %w", err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// FindCurrencyByCode retrieves a currency by its exact code.
func (r *CurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var m models.Currency
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(currencyCodesBucket).Get([]byte(currencyCode))
		if id == nil {
			return apperrors.ErrNotFound
		}
		data := tx.Bucket(currenciesBucket).Get(id)
		if data == nil {
			return apperrors.ErrNotFound
		}
		return json.Unmarshal(data, &m)
	})
	if err != nil {
		return nil, err
	}

	c := mapping.ToDomainCurrency(m)
	return &c, nil
}

// ListCurrencies returns all currencies ordered by id.
func (r *CurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []models.Currency
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(currenciesBucket).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var m models.Currency
			if err := json.Unmarshal(v, &m); err != nil {
				return fmt.Errorf("could not unmarshal currency %d: %w", btoi(k), err)
			}
			result = append(result, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainCurrencySlice(result), nil
}

// CountCurrencies returns the number of registered currencies.
func (r *CurrencyRepository) CountCurrencies(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var n int
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(currencyCodesBucket).Stats().KeyN
		return nil
	})
	return n, err
}
