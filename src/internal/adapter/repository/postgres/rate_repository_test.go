package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api-sage/business-credits/src/internal/domain"
)

func TestRateRepositoryGetRates(t *testing.T) {
	db, mock := newMock(t)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM credit_rates\\s+ORDER BY rate_date DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "from_symbol", "to_symbol", "rate", "rate_date", "created_at"}).
			AddRow(int64(1), "ACM", "GLO", "0.80000000", day, day))

	rates, err := NewRateRepository(db).GetRates(context.Background())
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.Equal(t, "0.8", rates[0].Rate.String())
	assert.Equal(t, "GLO", rates[0].ToSymbol)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRateRepositoryGetRateNotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM credit_rates").
		WithArgs("ACM", "XYZ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "from_symbol", "to_symbol", "rate", "rate_date", "created_at"}))

	_, err := NewRateRepository(db).GetRate(context.Background(), "ACM", "XYZ")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
