package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchasesEmptyWhenNoDocument(t *testing.T) {
	purchases := NewPurchaseStore(newMemoryStorage(), discardLogger())
	assert.Empty(t, purchases.List(context.Background(), "u1"))
	assert.False(t, purchases.IsPurchased(context.Background(), "u1", "mv1"))
	assert.Nil(t, purchases.Details(context.Background(), "u1", "mv1"))
}

func TestPurchasesRecordAndList(t *testing.T) {
	ctx := context.Background()
	purchases := NewPurchaseStore(newMemoryStorage(), discardLogger())

	require.NoError(t, purchases.Record(ctx, "u1", "mv1", decimal.NewFromFloat(4.99), "pi_123"))
	require.NoError(t, purchases.Record(ctx, "u1", "mv2", decimal.NewFromFloat(2.99), "pi_456"))

	list := purchases.List(ctx, "u1")
	require.Len(t, list, 2)
	assert.Equal(t, "mv1", list[0].MovieID)
	assert.True(t, decimal.NewFromFloat(4.99).Equal(list[0].Price))
	assert.False(t, list[0].PurchaseDate.IsZero())

	assert.True(t, purchases.IsPurchased(ctx, "u1", "mv2"))
	assert.False(t, purchases.IsPurchased(ctx, "u1", "mv3"))
}

func TestPurchasesRecordDuplicateIsNoOp(t *testing.T) {
	ctx := context.Background()
	purchases := NewPurchaseStore(newMemoryStorage(), discardLogger())

	require.NoError(t, purchases.Record(ctx, "u1", "mv1", decimal.NewFromFloat(4.99), "pi_first"))
	require.NoError(t, purchases.Record(ctx, "u1", "mv1", decimal.NewFromFloat(9.99), "pi_second"))

	list := purchases.List(ctx, "u1")
	require.Len(t, list, 1)
	assert.Equal(t, "pi_first", list[0].PaymentIntentID, "original record wins")
}

func TestPurchasesDetails(t *testing.T) {
	ctx := context.Background()
	purchases := NewPurchaseStore(newMemoryStorage(), discardLogger())

	require.NoError(t, purchases.Record(ctx, "u1", "mv1", decimal.NewFromFloat(4.99), "pi_123"))

	details := purchases.Details(ctx, "u1", "mv1")
	require.NotNil(t, details)
	assert.Equal(t, "pi_123", details.PaymentIntentID)
	assert.Nil(t, purchases.Details(ctx, "u1", "mv9"))
}

func TestPurchasesClear(t *testing.T) {
	ctx := context.Background()
	storage := newMemoryStorage()
	purchases := NewPurchaseStore(storage, discardLogger())

	require.NoError(t, purchases.Record(ctx, "u1", "mv1", decimal.NewFromFloat(4.99), "pi_123"))
	require.NoError(t, purchases.Clear(ctx, "u1"))

	_, exists := storage.snapshot(purchasesKeyPrefix + "u1")
	assert.False(t, exists)
	assert.Empty(t, purchases.List(ctx, "u1"))
}

func TestPurchasesDegradeOnCorruptDocument(t *testing.T) {
	storage := newMemoryStorage()
	storage.data[purchasesKeyPrefix+"u1"] = "][not json"

	purchases := NewPurchaseStore(storage, discardLogger())
	assert.Empty(t, purchases.List(context.Background(), "u1"))
}

func TestPurchasesRecordReportsPersistFailure(t *testing.T) {
	storage := newMemoryStorage()
	storage.failSet = true

	purchases := NewPurchaseStore(storage, discardLogger())
	err := purchases.Record(context.Background(), "u1", "mv1", decimal.NewFromFloat(4.99), "pi_123")
	assert.ErrorIs(t, err, errStorageDown)
}
