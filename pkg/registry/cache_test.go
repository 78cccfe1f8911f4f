package registry

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	entries []models.RegistryEntry
	calls   int
}

func (f *fakeSource) Registry(ctx context.Context, tenantID, productTypeID string, scope models.AttributeScope) ([]models.RegistryEntry, error) {
	f.calls++
	return f.entries, nil
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestEntriesWithoutRedisHitsSource(t *testing.T) {
	source := &fakeSource{entries: []models.RegistryEntry{
		{Attribute: models.Attribute{ID: "color"}, Scope: models.AttributeScopeProduct},
	}}
	c := NewCache(source, nil, 0, testLogger())

	entries, err := c.Entries(context.Background(), "t1", "pt-1", models.AttributeScopeProduct)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = c.Entries(context.Background(), "t1", "pt-1", models.AttributeScopeProduct)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestInvalidateWithoutRedisIsNoOp(t *testing.T) {
	c := NewCache(&fakeSource{}, nil, 0, testLogger())

	// Must not panic on a nil client.
	c.Invalidate(context.Background(), "t1", "pt-1")
}

func TestCacheKeyIsScopePartitioned(t *testing.T) {
	product := cacheKey("t1", "pt-1", models.AttributeScopeProduct)
	variant := cacheKey("t1", "pt-1", models.AttributeScopeVariant)

	assert.NotEqual(t, product, variant)
	assert.Contains(t, product, "t1")
	assert.Contains(t, product, "pt-1")
}
