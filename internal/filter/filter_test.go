package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterSQLLiteral(t *testing.T) {
	f, err := Parse("avg_speed > 18 && distance >= 100")
	require.NoError(t, err)

	clause, params := f.ToSQL()
	assert.Equal(t, "((properties ->> ? > ?) AND (properties ->> ? >= ?))", clause)
	assert.Equal(t, []any{"avg_speed", 18.0, "distance", 100.0}, params)
}

func TestFilterPrecedence(t *testing.T) {
	f, err := Parse("a = 1 && b = 2 || c = 3")
	require.NoError(t, err)
	// && binds tighter than ||
	or, ok := f.Expr.(Or)
	require.True(t, ok)
	_, ok = or.Left.(And)
	assert.True(t, ok)
}

func TestFilterIn(t *testing.T) {
	f, err := Parse(`sport in ["run", "ride"]`)
	require.NoError(t, err)
	clause, params := f.ToSQL()
	assert.Equal(t, "(properties ->> ? IN (?, ?))", clause)
	assert.Equal(t, []any{"sport", "run", "ride"}, params)
}

func TestFilterHasKey(t *testing.T) {
	f, err := Parse("has? elevation_gain")
	require.NoError(t, err)
	clause, params := f.ToSQL()
	assert.Equal(t, "(properties ->> ? IS NOT NULL)", clause)
	assert.Equal(t, []any{"elevation_gain"}, params)
}

func TestFilterLike(t *testing.T) {
	f, err := Parse(`title like "%morning%"`)
	require.NoError(t, err)
	clause, params := f.ToSQL()
	assert.Equal(t, "(properties ->> ? LIKE ?)", clause)
	assert.Equal(t, []any{"title", "%morning%"}, params)
}

func TestFilterNot(t *testing.T) {
	f, err := Parse(`!(sport = "run")`)
	require.NoError(t, err)
	_, ok := f.Expr.(Not)
	assert.True(t, ok)
}

func TestFilterInvalid(t *testing.T) {
	cases := []string{
		"",
		"key =",
		"1.23 < 4",
		"key > 1 extra",
	}
	for _, c := range cases {
		_, err := Parse(c)
		assert.Error(t, err, "expected error for %q", c)
	}
}
