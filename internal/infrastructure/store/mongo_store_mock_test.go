package store

import (
	"context"
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/domain/category"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// These tests run the store against a mock deployment that replays canned
// server replies, so the driver's command encoding and error mapping are
// exercised without a live server.

func newMockMongo(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

// =============================================================================
// ListByCategory
// =============================================================================

func TestMongoStore_ListByCategory_MissingIndex(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("hint rejected", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "error processing query: planner returned error :: caused by :: hint provided does not correspond to an existing index",
		}))
		s := NewMongoStore(mt.DB)

		products, err := s.ListByCategory(context.Background(), category.Drinks)

		assert.ErrorIs(mt, err, product.ErrQueryUnsupported)
		assert.Nil(mt, products)
	})
}

func TestMongoStore_ListByCategory_ReturnsProducts(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("cursor", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		ns := mt.DB.Name() + ".products"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "name", Value: "Zobo"},
			{Key: "price", Value: "300.00"},
			{Key: "category", Value: "drinks"},
			{Key: "displayCategory", Value: "Beverages"},
			{Key: "stockQuantity", Value: 4},
			{Key: "inStock", Value: true},
			{Key: "images", Value: bson.A{"z.jpg"}},
		}))
		s := NewMongoStore(mt.DB)

		products, err := s.ListByCategory(context.Background(), category.Drinks)

		require.NoError(mt, err)
		require.Len(mt, products, 1)
		assert.Equal(mt, oid.Hex(), products[0].ID)
		assert.Equal(mt, 4, products[0].StockQuantity)
		assert.True(mt, products[0].InStock)

		sent := mt.GetStartedEvent()
		require.NotNil(mt, sent)
		assert.Equal(mt, "find", sent.CommandName)
		assert.Contains(mt, sent.Command.String(), categoryKeysIndex)
	})
}

// =============================================================================
// Stock adjustment
// =============================================================================

func stockReply(qty any) bson.D {
	if qty == nil {
		return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil})
	}
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{{Key: "stockQuantity", Value: qty}}})
}

func TestMongoStore_DecrementStock_FloorsAtZero(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("oversell", func(mt *mtest.T) {
		mt.AddMockResponses(stockReply(3))
		s := NewMongoStore(mt.DB)
		s.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

		before, after, err := s.DecrementStock(context.Background(), primitive.NewObjectID().Hex(), 5)

		require.NoError(mt, err)
		assert.Equal(mt, 3, before)
		assert.Equal(mt, 0, after)

		sent := mt.GetStartedEvent()
		require.NotNil(mt, sent)
		assert.Equal(mt, "findAndModify", sent.CommandName)
		cmd := sent.Command.String()
		assert.Contains(mt, cmd, "$max")
		assert.Contains(mt, cmd, "inStock")
	})
}

func TestMongoStore_IncrementStock_ReturnsBeforeAndAfter(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("restock", func(mt *mtest.T) {
		mt.AddMockResponses(stockReply(2))
		s := NewMongoStore(mt.DB)

		before, after, err := s.IncrementStock(context.Background(), primitive.NewObjectID().Hex(), 10)

		require.NoError(mt, err)
		assert.Equal(mt, 2, before)
		assert.Equal(mt, 12, after)

		sent := mt.GetStartedEvent()
		require.NotNil(mt, sent)
		cmd := sent.Command.String()
		assert.Contains(mt, cmd, "$add")
		assert.Contains(mt, cmd, "inStock")
	})
}

func TestMongoStore_AdjustStock_NotFound(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("no document", func(mt *mtest.T) {
		mt.AddMockResponses(stockReply(nil))
		s := NewMongoStore(mt.DB)

		_, _, err := s.DecrementStock(context.Background(), primitive.NewObjectID().Hex(), 1)

		assert.ErrorIs(mt, err, product.ErrProductNotFound)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)

		_, _, err := s.IncrementStock(context.Background(), "not-an-object-id", 1)

		assert.ErrorIs(mt, err, product.ErrProductNotFound)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}
