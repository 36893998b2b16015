package store_test

import (
	"context"
	"errors"
	"testing"

	"content-porter/core/database"
	"content-porter/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStores builds the implementations under test behind one name so both
// keep the same matching semantics.
func newStores(t *testing.T) map[string]store.Store {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	gormStore, err := store.New(db)
	require.NoError(t, err)

	return map[string]store.Store{
		"gorm":   gormStore,
		"memory": store.NewMemory(),
	}
}

func TestStore_CreateAndFindByIdentifier(t *testing.T) {
	for name, st := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := st.Create(ctx, &store.Entry{
				ContentType: "api::article",
				Status:      store.StatusPublished,
				Data:        map[string]any{"slug": "hello-world", "title": "Hello"},
			})
			require.NoError(t, err)
			assert.NotEmpty(t, created.DocumentID)
			assert.Equal(t, store.DefaultLocale, created.Locale)

			found, err := st.FindOne(ctx, "api::article", store.Query{
				Status: store.StatusPublished,
				Field:  "slug",
				Value:  "hello-world",
			})
			require.NoError(t, err)
			assert.Equal(t, created.DocumentID, found.DocumentID)
			assert.Equal(t, "Hello", found.Data["title"])

			// Lookup misses return a wrapped ErrNotFound.
			_, err = st.FindOne(ctx, "api::article", store.Query{
				Status: store.StatusPublished,
				Field:  "slug",
				Value:  "missing",
			})
			assert.True(t, errors.Is(err, store.ErrNotFound))
		})
	}
}

func TestStore_VariantsShareDocumentID(t *testing.T) {
	for name, st := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			pub, err := st.Create(ctx, &store.Entry{
				ContentType: "api::article",
				Status:      store.StatusPublished,
				Locale:      "en",
				Data:        map[string]any{"slug": "a", "title": "A"},
			})
			require.NoError(t, err)

			// Draft variant reuses the document identity.
			_, err = st.Create(ctx, &store.Entry{
				ContentType: "api::article",
				DocumentID:  pub.DocumentID,
				Status:      store.StatusDraft,
				Locale:      "en",
				Data:        map[string]any{"slug": "a", "title": "A (draft)"},
			})
			require.NoError(t, err)

			variants, err := st.FindMany(ctx, "api::article", store.Query{
				DocumentIDs: []string{pub.DocumentID},
			})
			require.NoError(t, err)
			assert.Len(t, variants, 2)
		})
	}
}

func TestStore_Update(t *testing.T) {
	for name, st := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := st.Create(ctx, &store.Entry{
				ContentType: "api::article",
				Status:      store.StatusDraft,
				Data:        map[string]any{"slug": "a", "title": "old"},
			})
			require.NoError(t, err)

			created.Data["title"] = "new"
			updated, err := st.Update(ctx, created)
			require.NoError(t, err)
			assert.Equal(t, "new", updated.Data["title"])

			// Updating a variant that does not exist fails.
			_, err = st.Update(ctx, &store.Entry{
				ContentType: "api::article",
				DocumentID:  created.DocumentID,
				Locale:      created.Locale,
				Status:      store.StatusPublished,
				Data:        map[string]any{},
			})
			assert.True(t, errors.Is(err, store.ErrNotFound))
		})
	}
}

func TestStore_Media(t *testing.T) {
	for name, st := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := st.CreateMedia(ctx, &store.Media{
				Name: "logo.png",
				Hash: "abc123",
				URL:  "/uploads/logo.png",
			})
			require.NoError(t, err)
			assert.NotEmpty(t, created.DocumentID)

			byHash, err := st.FindMediaByHash(ctx, "abc123")
			require.NoError(t, err)
			require.NotNil(t, byHash)
			assert.Equal(t, "logo.png", byHash.Name)

			byName, err := st.FindMediaByName(ctx, "logo.png")
			require.NoError(t, err)
			require.NotNil(t, byName)

			byDoc, err := st.FindMediaByDocumentID(ctx, created.DocumentID)
			require.NoError(t, err)
			require.NotNil(t, byDoc)

			// Misses are nil, not errors.
			none, err := st.FindMediaByHash(ctx, "nope")
			require.NoError(t, err)
			assert.Nil(t, none)
		})
	}
}

func TestStore_SortByAttribute(t *testing.T) {
	for name, st := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, slug := range []string{"charlie", "alpha", "bravo"} {
				_, err := st.Create(ctx, &store.Entry{
					ContentType: "api::tag",
					Status:      store.StatusDraft,
					Data:        map[string]any{"slug": slug},
				})
				require.NoError(t, err)
			}

			entries, err := st.FindMany(ctx, "api::tag", store.Query{Sort: "slug"})
			require.NoError(t, err)
			require.Len(t, entries, 3)
			assert.Equal(t, "alpha", entries[0].Data["slug"])
			assert.Equal(t, "bravo", entries[1].Data["slug"])
			assert.Equal(t, "charlie", entries[2].Data["slug"])
		})
	}
}
