package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := &Analysis{
		DishName:    "Ceviche",
		Ingredients: []string{"pescado", "limón"},
		RecipeSteps: []string{"cortar", "marinar"},
		FunFacts:    []string{"Origen: Perú"},
		ImageHash:   "abc123",
	}
	id, err := store.SaveAnalysis(ctx, a)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, a.ID)

	got, err := store.GetAnalysis(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ceviche", got.DishName)
	assert.Equal(t, []string{"pescado", "limón"}, got.Ingredients)
	assert.Equal(t, []string{"cortar", "marinar"}, got.RecipeSteps)
	assert.Equal(t, []string{"Origen: Perú"}, got.FunFacts)
	assert.Equal(t, "abc123", got.ImageHash)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
}

func TestSQLiteStore_IDsAreDistinct(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id1, err := store.SaveAnalysis(ctx, &Analysis{DishName: "Paella"})
	require.NoError(t, err)
	id2, err := store.SaveAnalysis(ctx, &Analysis{DishName: "Paella"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	got, err := store.GetAnalysis(ctx, id2)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Ingredients)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetAnalysis(context.Background(), 999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLiteStore_SaveRequiresDishName(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SaveAnalysis(context.Background(), &Analysis{DishName: "  "})
	assert.Error(t, err)
}

func TestSQLiteStore_ListAnalysesNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"Tacos", "Sushi", "Pizza"} {
		_, err := store.SaveAnalysis(ctx, &Analysis{
			DishName:    name,
			Ingredients: []string{name + "-1"},
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	history, err := store.ListAnalyses(ctx, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Pizza", history[0].DishName)
	assert.Equal(t, "Sushi", history[1].DishName)
	assert.Equal(t, []string{"Pizza-1"}, history[0].Ingredients)
	assert.True(t, history[0].CreatedAt.Equal(base.Add(2*time.Hour)))

	empty, err := store.ListAnalyses(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLiteStore_ListTiesBrokenByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	first, err := store.SaveAnalysis(ctx, &Analysis{DishName: "A", CreatedAt: at})
	require.NoError(t, err)
	second, err := store.SaveAnalysis(ctx, &Analysis{DishName: "B", CreatedAt: at})
	require.NoError(t, err)

	history, err := store.ListAnalyses(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second, history[0].ID)
	assert.Equal(t, first, history[1].ID)
}

func TestSQLiteStore_AllAnalysesAndPing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	all, err := store.AllAnalyses(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = store.SaveAnalysis(ctx, &Analysis{DishName: "Arepa", FunFacts: []string{"Venezuela"}})
	require.NoError(t, err)

	all, err = store.AllAnalyses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []string{"Venezuela"}, all[0].FunFacts)
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	id, err := store.SaveAnalysis(ctx, &Analysis{DishName: "Mole"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetAnalysis(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Mole", got.DishName)
}

func TestParseTimestamp(t *testing.T) {
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), parseTimestamp("2025-01-02 03:04:05"))
	assert.True(t, parseTimestamp("not a time").IsZero())
}
