package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", EUR)
		require.NoError(t, err)
		assert.Equal(t, EUR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(123.45)))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", EUR)
		assert.Error(t, err)
	})
}

func TestZero(t *testing.T) {
	m := Zero(USD)
	assert.True(t, m.IsZero())
	assert.Equal(t, USD, m.Currency())
}

func TestMoneyIsPositiveNegativeZero(t *testing.T) {
	positive := MustMoney(decimal.NewFromInt(100), USD)
	negative := MustMoney(decimal.NewFromInt(-100), USD)
	zero := Zero(USD)

	assert.True(t, positive.IsPositive())
	assert.False(t, positive.IsNegative())
	assert.False(t, positive.IsZero())

	assert.False(t, negative.IsPositive())
	assert.True(t, negative.IsNegative())
	assert.False(t, negative.IsZero())

	assert.False(t, zero.IsPositive())
	assert.False(t, zero.IsNegative())
	assert.True(t, zero.IsZero())
}

func TestMoneyAdd(t *testing.T) {
	t.Run("adds same currency", func(t *testing.T) {
		m1 := MustMoney(decimal.NewFromFloat(100.50), USD)
		m2 := MustMoney(decimal.NewFromFloat(50.25), USD)
		result, err := m1.Add(m2)
		require.NoError(t, err)
		assert.True(t, result.Amount().Equal(decimal.NewFromFloat(150.75)))
	})

	t.Run("fails for different currencies", func(t *testing.T) {
		m1 := MustMoney(decimal.NewFromInt(100), USD)
		m2 := MustMoney(decimal.NewFromInt(50), EUR)
		_, err := m1.Add(m2)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "different currencies")
	})
}

func TestMoneySubtract(t *testing.T) {
	t.Run("subtracts same currency", func(t *testing.T) {
		m1 := MustMoney(decimal.NewFromInt(100), USD)
		m2 := MustMoney(decimal.NewFromFloat(40.50), USD)
		result, err := m1.Subtract(m2)
		require.NoError(t, err)
		assert.True(t, result.Amount().Equal(decimal.NewFromFloat(59.50)))
	})

	t.Run("fails for different currencies", func(t *testing.T) {
		m1 := MustMoney(decimal.NewFromInt(100), USD)
		m2 := MustMoney(decimal.NewFromInt(50), GBP)
		_, err := m1.Subtract(m2)
		assert.Error(t, err)
	})
}

func TestMoneyMultiply(t *testing.T) {
	m := MustMoney(decimal.NewFromFloat(10.50), USD)
	result := m.Multiply(decimal.NewFromInt(3))
	assert.True(t, result.Amount().Equal(decimal.NewFromFloat(31.50)))
	assert.Equal(t, USD, result.Currency())
}

func TestMoneyNegate(t *testing.T) {
	m := MustMoney(decimal.NewFromInt(25), USD)
	assert.True(t, m.Negate().Amount().Equal(decimal.NewFromInt(-25)))
}

func TestMoneyRound(t *testing.T) {
	m := MustMoney(decimal.NewFromFloat(10.456), USD)
	assert.Equal(t, "10.46", m.Round(2).Amount().String())
}

func TestMoneyComparisons(t *testing.T) {
	small := MustMoney(decimal.NewFromInt(10), USD)
	large := MustMoney(decimal.NewFromInt(20), USD)
	other := MustMoney(decimal.NewFromInt(10), EUR)

	t.Run("equals", func(t *testing.T) {
		assert.True(t, small.Equals(MustMoney(decimal.NewFromInt(10), USD)))
		assert.False(t, small.Equals(other))
	})

	t.Run("less than", func(t *testing.T) {
		lt, err := small.LessThan(large)
		require.NoError(t, err)
		assert.True(t, lt)
	})

	t.Run("greater than", func(t *testing.T) {
		gt, err := large.GreaterThan(small)
		require.NoError(t, err)
		assert.True(t, gt)
	})

	t.Run("comparison across currencies fails", func(t *testing.T) {
		_, err := small.LessThan(other)
		assert.Error(t, err)
	})
}

func TestMoneyCalculatePercentage(t *testing.T) {
	m := MustMoney(decimal.NewFromInt(200), USD)
	result := m.CalculatePercentage(decimal.NewFromInt(10))
	assert.True(t, result.Amount().Equal(decimal.NewFromInt(20)))
}

func TestMoneyString(t *testing.T) {
	m := MustMoney(decimal.NewFromFloat(99.9), USD)
	assert.Equal(t, "99.90 USD", m.String())
	assert.Equal(t, "99.900", m.StringFixed(3))
}

func TestMoneyJSON(t *testing.T) {
	t.Run("marshal", func(t *testing.T) {
		m := MustMoney(decimal.NewFromFloat(150.25), USD)
		data, err := json.Marshal(m)
		require.NoError(t, err)
		assert.JSONEq(t, `{"amount":"150.25","currency":"USD"}`, string(data))
	})

	t.Run("unmarshal", func(t *testing.T) {
		var m Money
		err := json.Unmarshal([]byte(`{"amount":"150.25","currency":"EUR"}`), &m)
		require.NoError(t, err)
		assert.Equal(t, EUR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(150.25)))
	})

	t.Run("unmarshal invalid amount", func(t *testing.T) {
		var m Money
		err := json.Unmarshal([]byte(`{"amount":"abc","currency":"EUR"}`), &m)
		assert.Error(t, err)
	})
}

func TestMoneyScan(t *testing.T) {
	t.Run("scans string value", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("42.5000"))
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(42.5)))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("scans byte slice", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan([]byte("13.37")))
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(13.37)))
	})

	t.Run("scans nil as zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan(struct{}{}))
	})
}

func TestMoneyValue(t *testing.T) {
	m := MustMoney(decimal.NewFromFloat(7.77), USD)
	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "7.77", v)
}
