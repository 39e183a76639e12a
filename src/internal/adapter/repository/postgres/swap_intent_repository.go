package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/api-sage/business-credits/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/business-credits/src/internal/domain"
	"github.com/api-sage/business-credits/src/internal/logger"
)

const uniqueViolation = "23505"

const swapIntentColumns = `id, from_business, to_business, from_amount, to_amount, user_account, status, last_step, last_error, attempts, created_at, updated_at`

var _ repo_interfaces.SwapIntentRepository = (*SwapIntentRepository)(nil)

type SwapIntentRepository struct {
	db *sql.DB
}

func NewSwapIntentRepository(db *sql.DB) *SwapIntentRepository {
	return &SwapIntentRepository{db: db}
}

func (r *SwapIntentRepository) Create(ctx context.Context, intent domain.SwapIntent) (domain.SwapIntent, error) {
	logger.Info("swap intent repository create", logger.Fields{
		"swapId":       intent.ID,
		"fromBusiness": intent.FromBusiness,
		"toBusiness":   intent.ToBusiness,
		"status":       intent.Status,
	})

	const query = `
INSERT INTO swap_intents (
	id,
	from_business,
	to_business,
	from_amount,
	to_amount,
	user_account,
	status,
	last_step,
	last_error,
	attempts
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)
RETURNING created_at, updated_at`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		intent.ID,
		intent.FromBusiness,
		intent.ToBusiness,
		intent.FromAmount,
		intent.ToAmount,
		string(intent.UserAccount),
		string(intent.Status),
		intent.LastStep,
		intent.LastError,
		intent.Attempts,
	).Scan(&intent.CreatedAt, &intent.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return domain.SwapIntent{}, domain.ErrDuplicateIntent
		}
		logger.Error("swap intent repository create failed", err, logger.Fields{"swapId": intent.ID})
		return domain.SwapIntent{}, fmt.Errorf("create swap intent: %w", err)
	}

	return intent, nil
}

func (r *SwapIntentRepository) UpdateStatus(ctx context.Context, intent domain.SwapIntent, expected domain.SwapStatus) (domain.SwapIntent, error) {
	logger.Info("swap intent repository update status", logger.Fields{
		"swapId":   intent.ID,
		"expected": expected,
		"status":   intent.Status,
	})

	const query = `
UPDATE swap_intents
SET status = $2,
    last_step = $3,
    last_error = $4,
    attempts = $5,
    updated_at = NOW()
WHERE id = $1
  AND status = $6
RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		intent.ID,
		string(intent.Status),
		intent.LastStep,
		intent.LastError,
		intent.Attempts,
		string(expected),
	).Scan(&intent.CreatedAt, &intent.UpdatedAt)
	if err == nil {
		return intent, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		logger.Error("swap intent repository update status failed", err, logger.Fields{"swapId": intent.ID})
		return domain.SwapIntent{}, fmt.Errorf("update swap intent: %w", err)
	}

	if _, getErr := r.GetByID(ctx, intent.ID); getErr != nil {
		return domain.SwapIntent{}, getErr
	}
	return domain.SwapIntent{}, domain.ErrStaleIntent
}

func (r *SwapIntentRepository) GetByID(ctx context.Context, id string) (domain.SwapIntent, error) {
	query := `SELECT ` + swapIntentColumns + ` FROM swap_intents WHERE id = $1`

	intent, err := scanSwapIntent(r.db.QueryRowContext(ctx, query, strings.TrimSpace(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SwapIntent{}, domain.ErrRecordNotFound
		}
		logger.Error("swap intent repository get failed", err, logger.Fields{"swapId": id})
		return domain.SwapIntent{}, fmt.Errorf("get swap intent: %w", err)
	}

	return intent, nil
}

func (r *SwapIntentRepository) List(ctx context.Context, status domain.SwapStatus, limit int) ([]domain.SwapIntent, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status == "" {
		query := `SELECT ` + swapIntentColumns + ` FROM swap_intents ORDER BY created_at DESC LIMIT $1`
		rows, err = r.db.QueryContext(ctx, query, limit)
	} else {
		query := `SELECT ` + swapIntentColumns + ` FROM swap_intents WHERE status = $1 ORDER BY created_at DESC LIMIT $2`
		rows, err = r.db.QueryContext(ctx, query, string(status), limit)
	}
	if err != nil {
		logger.Error("swap intent repository list failed", err, logger.Fields{"status": status})
		return nil, fmt.Errorf("list swap intents: %w", err)
	}
	defer rows.Close()

	intents := make([]domain.SwapIntent, 0)
	for rows.Next() {
		intent, err := scanSwapIntent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap intent: %w", err)
		}
		intents = append(intents, intent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap intents: %w", err)
	}

	return intents, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSwapIntent(row rowScanner) (domain.SwapIntent, error) {
	var (
		intent      domain.SwapIntent
		userAccount string
		status      string
		lastError   sql.NullString
	)
	if err := row.Scan(
		&intent.ID,
		&intent.FromBusiness,
		&intent.ToBusiness,
		&intent.FromAmount,
		&intent.ToAmount,
		&userAccount,
		&status,
		&intent.LastStep,
		&lastError,
		&intent.Attempts,
		&intent.CreatedAt,
		&intent.UpdatedAt,
	); err != nil {
		return domain.SwapIntent{}, err
	}

	intent.UserAccount = domain.Identity(userAccount)
	intent.Status = domain.SwapStatus(status)
	if lastError.Valid {
		value := lastError.String
		intent.LastError = &value
	}
	return intent, nil
}
