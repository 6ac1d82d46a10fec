package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emreutkan/FreshDealBackendfork-sub000/internal/domain"
)

// Money crosses the driver boundary as text: decimals encode through
// driver.Valuer and scan through sql.Scanner, both string-backed, so a
// NUMERIC value never takes a float64 detour.
func TestMoneyTravelsAsText(t *testing.T) {
	in := decimal.RequireFromString("1234567.89")

	v, err := in.Value()
	require.NoError(t, err)
	s, ok := v.(string)
	require.True(t, ok, "decimal must encode as its text form")
	assert.Equal(t, "1234567.89", s)

	var out decimal.Decimal
	require.NoError(t, out.Scan(s))
	assert.True(t, in.Equal(out))

	var null decimal.NullDecimal
	require.NoError(t, null.Scan(nil))
	assert.False(t, null.Valid)
}

func TestMapPgError(t *testing.T) {
	serialization := &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
	assert.True(t, domain.IsConflict(mapPgError(serialization)))

	deadlock := &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}
	assert.True(t, domain.IsConflict(mapPgError(deadlock)))

	other := errors.New("broken pipe")
	assert.Equal(t, other, mapPgError(other))
}
