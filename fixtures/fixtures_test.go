package fixtures

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBuildsDependenciesInOrder(t *testing.T) {
	r := NewRegistry()
	var order []string

	r.Register("db", nil, func(deps map[string]interface{}) (interface{}, error) {
		order = append(order, "db")
		return "db-conn", nil
	})
	r.Register("user", []string{"db"}, func(deps map[string]interface{}) (interface{}, error) {
		order = append(order, "user")
		require.Equal(t, "db-conn", deps["db"])
		return "user-1", nil
	})
	r.Register("wallet", []string{"db", "user"}, func(deps map[string]interface{}) (interface{}, error) {
		order = append(order, "wallet")
		require.Equal(t, "user-1", deps["user"])
		return "wallet-1", nil
	})

	value, err := r.Get("wallet")
	require.NoError(t, err)
	assert.Equal(t, "wallet-1", value)
	assert.Equal(t, []string{"db", "user", "wallet"}, order)
}

func TestGetCachesBuiltValues(t *testing.T) {
	r := NewRegistry()
	builds := 0

	r.Register("expensive", nil, func(deps map[string]interface{}) (interface{}, error) {
		builds++
		return builds, nil
	})

	first, err := r.Get("expensive")
	require.NoError(t, err)
	second, err := r.Get("expensive")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, builds)

	stats := r.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Builds)
}

func TestConcurrentGetsCountEveryLookup(t *testing.T) {
	r := NewRegistry()
	r.Register("shared", nil, func(deps map[string]interface{}) (interface{}, error) {
		return "shared-value", nil
	})

	const (
		workers = 8
		rounds  = 50
	)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				value, err := r.Get("shared")
				assert.NoError(t, err)
				assert.Equal(t, "shared-value", value)
			}
		}()
	}
	wg.Wait()

	stats := r.Stats()
	assert.Equal(t, int64(1), stats.Builds)
	assert.Equal(t, int64(workers*rounds), stats.Hits+stats.Misses)
}

func TestGetSharedDependencyBuiltOnce(t *testing.T) {
	r := NewRegistry()
	dbBuilds := 0

	r.Register("db", nil, func(deps map[string]interface{}) (interface{}, error) {
		dbBuilds++
		return "db-conn", nil
	})
	r.Register("a", []string{"db"}, func(deps map[string]interface{}) (interface{}, error) {
		return "a", nil
	})
	r.Register("b", []string{"db"}, func(deps map[string]interface{}) (interface{}, error) {
		return "b", nil
	})

	_, err := r.Get("a")
	require.NoError(t, err)
	_, err = r.Get("b")
	require.NoError(t, err)

	assert.Equal(t, 1, dbBuilds)
}

func TestGetDetectsCycles(t *testing.T) {
	r := NewRegistry()
	r.Register("a", []string{"b"}, func(deps map[string]interface{}) (interface{}, error) {
		return nil, nil
	})
	r.Register("b", []string{"a"}, func(deps map[string]interface{}) (interface{}, error) {
		return nil, nil
	})

	_, err := r.Get("a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestGetUnknownFixture(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestBuilderErrorPropagates(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	r.Register("broken", nil, func(deps map[string]interface{}) (interface{}, error) {
		return nil, boom
	})
	r.Register("dependent", []string{"broken"}, func(deps map[string]interface{}) (interface{}, error) {
		return "never", nil
	})

	_, err := r.Get("dependent")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestInvalidateForcesRebuild(t *testing.T) {
	r := NewRegistry()
	builds := 0
	r.Register("x", nil, func(deps map[string]interface{}) (interface{}, error) {
		builds++
		return builds, nil
	})

	_, err := r.Get("x")
	require.NoError(t, err)
	r.Invalidate("x")
	value, err := r.Get("x")
	require.NoError(t, err)

	assert.Equal(t, 2, value)
	assert.Equal(t, 2, builds)
}
