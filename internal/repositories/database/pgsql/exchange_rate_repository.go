package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/currency_conversion_app/internal/apperrors"
	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
	portsrepo "github.com/SscSPs/currency_conversion_app/internal/core/ports/repositories"
	"github.com/SscSPs/currency_conversion_app/internal/models"
	"github.com/SscSPs/currency_conversion_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxExchangeRateRepository stores the append-only exchange rate log in PostgreSQL.
type PgxExchangeRateRepository struct {
	BaseRepository
}

// newPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func newPgxExchangeRateRepository(db *pgxpool.Pool) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.RateLogRepositoryFacade = (*PgxExchangeRateRepository)(nil)

const selectRateLogColumns = `id, base_currency_id, target_currency_id, rate, retrieved_at`

func scanRateLog(row pgx.Row) (models.ExchangeRateLog, error) {
	var m models.ExchangeRateLog
	err := row.Scan(&m.ID, &m.BaseCurrencyID, &m.TargetCurrencyID, &m.Rate, &m.RetrievedAt)
	return m, err
}

// FindLatestRate retrieves the newest observation for an ordered pair.
func (r *PgxExchangeRateRepository) FindLatestRate(ctx context.Context, baseCurrencyID, targetCurrencyID int64) (*domain.RateObservation, error) {
	query := `
		SELECT ` + selectRateLogColumns + `
		FROM exchange_rate_logs
		WHERE base_currency_id = $1 AND target_currency_id = $2
		ORDER BY retrieved_at DESC, id DESC
		LIMIT 1;
	`

	m, err := scanRateLog(r.Pool.QueryRow(ctx, query, baseCurrencyID, targetCurrencyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find latest rate %d->%d: %w", baseCurrencyID, targetCurrencyID, err)
	}

	obs := mapping.ToDomainRateObservation(m)
	return &obs, nil
}

// FindLatestRatesForBase retrieves the newest observation per target currency.
func (r *PgxExchangeRateRepository) FindLatestRatesForBase(ctx context.Context, baseCurrencyID int64) ([]domain.RateObservation, error) {
	query := `
		SELECT DISTINCT ON (target_currency_id) ` + selectRateLogColumns + `
		FROM exchange_rate_logs
		WHERE base_currency_id = $1
		ORDER BY target_currency_id, retrieved_at DESC, id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, baseCurrencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest rates for base %d: %w", baseCurrencyID, err)
	}
	defer rows.Close()

	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ExchangeRateLog, error) {
		return scanRateLog(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan latest rates for base %d: %w", baseCurrencyID, err)
	}
	return mapping.ToDomainRateObservationSlice(logs), nil
}

// HasAnyData reports whether the log holds at least one observation.
func (r *PgxExchangeRateRepository) HasAnyData(ctx context.Context) (bool, error) {
	var exists bool
	if err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM exchange_rate_logs);`).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check exchange rate log: %w", err)
	}
	return exists, nil
}

// CountObservations returns the number of observations in the log.
func (r *PgxExchangeRateRepository) CountObservations(ctx context.Context) (int64, error) {
	var n int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM exchange_rate_logs;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count exchange rate log: %w", err)
	}
	return n, nil
}

// FindMostRecentTimestamp returns the latest retrieval time, or nil for an empty log.
func (r *PgxExchangeRateRepository) FindMostRecentTimestamp(ctx context.Context) (*time.Time, error) {
	var ts *time.Time
	if err := r.Pool.QueryRow(ctx, `SELECT MAX(retrieved_at) FROM exchange_rate_logs;`).Scan(&ts); err != nil {
		return nil, fmt.Errorf("failed to find most recent retrieval time: %w", err)
	}
	if ts != nil {
		utc := ts.UTC()
		ts = &utc
	}
	return ts, nil
}

// NewBatch starts staging observations for one pass.
func (r *PgxExchangeRateRepository) NewBatch() portsrepo.RateLogBatch {
	return &pgxRateLogBatch{repo: r}
}

// pgxRateLogBatch inserts all staged rows inside a single transaction.
type pgxRateLogBatch struct {
	repo *PgxExchangeRateRepository
	rows []models.ExchangeRateLog
}

func (b *pgxRateLogBatch) Append(obs domain.RateObservation) {
	b.rows = append(b.rows, mapping.ToModelExchangeRateLog(obs))
}

func (b *pgxRateLogBatch) Len() int {
	return len(b.rows)
}

// Commit writes every staged row or none of them.
func (b *pgxRateLogBatch) Commit(ctx context.Context) error {
	if len(b.rows) == 0 {
		return nil
	}

	tx, err := b.repo.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = b.repo.Rollback(ctx, tx) }()

	query := `
		INSERT INTO exchange_rate_logs (base_currency_id, target_currency_id, rate, retrieved_at)
		VALUES ($1, $2, $3, $4);
	`
	batch := &pgx.Batch{}
	for _, row := range b.rows {
		batch.Queue(query, row.BaseCurrencyID, row.TargetCurrencyID, row.Rate, row.RetrievedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert %d exchange rate logs: %w", len(b.rows), err)
	}

	if err := b.repo.Commit(ctx, tx); err != nil {
		return err
	}
	b.rows = nil
	return nil
}
