package importer

import (
	"context"
	"encoding/json"
	"testing"

	"content-porter/core/export"
	"content-porter/core/schema"
	"content-porter/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	schemas := []*schema.Schema{
		{
			UID:             "api::category",
			CollectionKind:  "collectionType",
			IdentifierField: "slug",
			Attributes: []schema.Attribute{
				{Name: "slug", Kind: schema.KindScalar, Type: "string", Required: true, Unique: true},
				{Name: "name", Kind: schema.KindScalar, Type: "string"},
			},
		},
		{
			UID:             "api::post",
			CollectionKind:  "collectionType",
			IdentifierField: "slug",
			Attributes: []schema.Attribute{
				{Name: "slug", Kind: schema.KindScalar, Type: "string", Required: true, Unique: true},
				{Name: "title", Kind: schema.KindScalar, Type: "string"},
				{Name: "category", Kind: schema.KindRelation, Target: "api::category"},
				{Name: "cover", Kind: schema.KindMedia},
			},
		},
	}
	for _, s := range schemas {
		require.NoError(t, reg.Register(s))
	}
	return reg
}

func newTestProcessor(t *testing.T, st store.Store) *Processor {
	t.Helper()
	return NewProcessor(testRegistry(t), st, nil, zap.NewNop())
}

func payload(t *testing.T, data map[string]any) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"version": 3, "data": data})
	require.NoError(t, err)
	return raw
}

func TestProcess_CreatesRecords(t *testing.T) {
	st := store.NewMemory()
	p := newTestProcessor(t, st)

	raw := payload(t, map[string]any{
		"api::category": []any{
			map[string]any{"draft": map[string]any{"default": map[string]any{
				"slug": "cat-1",
				"name": "Categories",
			}}},
		},
	})

	result, err := p.Process(context.Background(), raw, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Empty(t, result.Failures)
	assert.Empty(t, result.Errors)

	stored, err := st.FindOne(context.Background(), "api::category", store.Query{Field: "slug", Value: "cat-1"})
	require.NoError(t, err)
	assert.Equal(t, store.StatusDraft, stored.Status)
	assert.Equal(t, "Categories", stored.Data["name"])
	assert.NotEmpty(t, stored.DocumentID)
}

func TestProcess_PublishedAndDraftShareDocument(t *testing.T) {
	st := store.NewMemory()
	p := newTestProcessor(t, st)

	raw := payload(t, map[string]any{
		"api::category": []any{
			map[string]any{
				"draft": map[string]any{"default": map[string]any{
					"slug": "cat-1", "name": "Draft name",
				}},
				"published": map[string]any{"default": map[string]any{
					"slug": "cat-1", "name": "Published name",
					"publishedAt": "2026-01-02T03:04:05Z",
				}},
			},
		},
	})

	result, err := p.Process(context.Background(), raw, Options{})
	require.NoError(t, err)
	// Two variants, one logical record.
	assert.Equal(t, 1, result.Created)

	draft, err := st.FindOne(context.Background(), "api::category", store.Query{Status: store.StatusDraft, Field: "slug", Value: "cat-1"})
	require.NoError(t, err)
	published, err := st.FindOne(context.Background(), "api::category", store.Query{Status: store.StatusPublished, Field: "slug", Value: "cat-1"})
	require.NoError(t, err)
	assert.Equal(t, draft.DocumentID, published.DocumentID)
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, 2026, published.PublishedAt.Year())
	assert.Equal(t, "Draft name", draft.Data["name"])
	assert.Equal(t, "Published name", published.Data["name"])
}

func TestProcess_RepeatedImportIsIdempotent(t *testing.T) {
	st := store.NewMemory()
	raw := payload(t, map[string]any{
		"api::category": []any{
			map[string]any{"draft": map[string]any{"default": map[string]any{
				"slug": "cat-1", "name": "Categories",
			}}},
		},
	})

	first, err := newTestProcessor(t, st).Process(context.Background(), raw, Options{ExistingAction: ActionSkip})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)
	assert.Equal(t, 0, first.Skipped)

	// The same document again is a no-op: nothing created, the record
	// counted as skipped, no failures.
	second, err := newTestProcessor(t, st).Process(context.Background(), raw, Options{ExistingAction: ActionSkip})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 1, second.Skipped)
	assert.Empty(t, second.Failures)

	entries, err := st.FindMany(context.Background(), "api::category", store.Query{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Categories", entries[0].Data["name"])
}

func TestProcess_ExistingRecordPolicies(t *testing.T) {
	seed := func(t *testing.T) store.Store {
		st := store.NewMemory()
		_, err := st.Create(context.Background(), &store.Entry{
			ContentType: "api::category",
			Status:      store.StatusDraft,
			Data:        map[string]any{"slug": "cat-1", "name": "Before"},
		})
		require.NoError(t, err)
		return st
	}
	raw := func(t *testing.T) []byte {
		return payload(t, map[string]any{
			"api::category": []any{
				map[string]any{"draft": map[string]any{"default": map[string]any{
					"slug": "cat-1", "name": "After",
				}}},
			},
		})
	}

	t.Run("WarnByDefault", func(t *testing.T) {
		st := seed(t)
		result, err := newTestProcessor(t, st).Process(context.Background(), raw(t), Options{})
		require.NoError(t, err)
		assert.Equal(t, 0, result.Created)
		assert.Equal(t, 1, result.Skipped)
		require.Len(t, result.Failures, 1)
		assert.Contains(t, result.Failures[0].Error, "already exists")

		stored, err := st.FindOne(context.Background(), "api::category", store.Query{Field: "slug", Value: "cat-1"})
		require.NoError(t, err)
		assert.Equal(t, "Before", stored.Data["name"])
	})

	t.Run("SkipIsSilent", func(t *testing.T) {
		st := seed(t)
		result, err := newTestProcessor(t, st).Process(context.Background(), raw(t), Options{ExistingAction: ActionSkip})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
		assert.Empty(t, result.Failures)
	})

	t.Run("Update", func(t *testing.T) {
		st := seed(t)
		result, err := newTestProcessor(t, st).Process(context.Background(), raw(t), Options{ExistingAction: ActionUpdate})
		require.NoError(t, err)
		assert.Equal(t, 0, result.Created)
		assert.Equal(t, 1, result.Updated)

		stored, err := st.FindOne(context.Background(), "api::category", store.Query{Field: "slug", Value: "cat-1"})
		require.NoError(t, err)
		assert.Equal(t, "After", stored.Data["name"])
	})
}

func TestProcess_AllowLocaleUpdates(t *testing.T) {
	st := store.NewMemory()
	existing, err := st.Create(context.Background(), &store.Entry{
		ContentType: "api::category",
		Locale:      "en",
		Status:      store.StatusDraft,
		Data:        map[string]any{"slug": "cat-1", "name": "English"},
	})
	require.NoError(t, err)

	raw := payload(t, map[string]any{
		"api::category": []any{
			map[string]any{"draft": map[string]any{
				"en": map[string]any{"slug": "cat-1", "name": "Changed"},
				"fr": map[string]any{"slug": "cat-1", "name": "Français"},
			}},
		},
	})

	result, err := newTestProcessor(t, st).Process(context.Background(), raw, Options{
		ExistingAction:     ActionSkip,
		AllowLocaleUpdates: true,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Failures)

	// The record lands in exactly one bucket: one of its locales was
	// written, so it is updated, not skipped.
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Skipped)

	// The existing locale stays untouched, the new one is added.
	en, err := st.FindOne(context.Background(), "api::category", store.Query{Locale: "en", Field: "slug", Value: "cat-1"})
	require.NoError(t, err)
	assert.Equal(t, "English", en.Data["name"])

	fr, err := st.FindOne(context.Background(), "api::category", store.Query{Locale: "fr", Field: "slug", Value: "cat-1"})
	require.NoError(t, err)
	assert.Equal(t, "Français", fr.Data["name"])
	assert.Equal(t, existing.DocumentID, fr.DocumentID)
}

func TestProcess_MissingRelation(t *testing.T) {
	raw := func(t *testing.T) []byte {
		return payload(t, map[string]any{
			"api::post": []any{
				map[string]any{"draft": map[string]any{"default": map[string]any{
					"slug": "post-1", "title": "Hello", "category": "nope",
				}}},
			},
		})
	}

	t.Run("FailsRecordByDefault", func(t *testing.T) {
		st := store.NewMemory()
		result, err := newTestProcessor(t, st).Process(context.Background(), raw(t), Options{})
		require.NoError(t, err)
		assert.Equal(t, 0, result.Created)
		require.Len(t, result.Failures, 1)
		assert.Contains(t, result.Failures[0].Error, "nope")

		_, err = st.FindOne(context.Background(), "api::post", store.Query{Field: "slug", Value: "post-1"})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("NulledWhenIgnored", func(t *testing.T) {
		st := store.NewMemory()
		result, err := newTestProcessor(t, st).Process(context.Background(), raw(t), Options{IgnoreMissingRelations: true})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		assert.Empty(t, result.Failures)

		stored, err := st.FindOne(context.Background(), "api::post", store.Query{Field: "slug", Value: "post-1"})
		require.NoError(t, err)
		assert.Nil(t, stored.Data["category"])
	})
}

func TestProcess_RelationResolvedWithinRun(t *testing.T) {
	st := store.NewMemory()

	// Content types import in sorted order, so the category exists in the
	// run's identity cache by the time the post references it.
	raw := payload(t, map[string]any{
		"api::category": []any{
			map[string]any{"draft": map[string]any{"default": map[string]any{
				"slug": "cat-1", "name": "Categories",
			}}},
		},
		"api::post": []any{
			map[string]any{"draft": map[string]any{"default": map[string]any{
				"slug": "post-1", "title": "Hello", "category": "cat-1",
			}}},
		},
	})

	result, err := newTestProcessor(t, st).Process(context.Background(), raw, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Empty(t, result.Failures)

	cat, err := st.FindOne(context.Background(), "api::category", store.Query{Field: "slug", Value: "cat-1"})
	require.NoError(t, err)
	post, err := st.FindOne(context.Background(), "api::post", store.Query{Field: "slug", Value: "post-1"})
	require.NoError(t, err)
	assert.Equal(t, cat.DocumentID, post.Data["category"])
}

func TestProcess_DisallowNewRelations(t *testing.T) {
	st := store.NewMemory()
	_, err := st.Create(context.Background(), &store.Entry{
		ContentType: "api::post",
		Status:      store.StatusDraft,
		Data:        map[string]any{"slug": "post-1", "title": "Old"},
	})
	require.NoError(t, err)

	raw := payload(t, map[string]any{
		"api::category": []any{
			map[string]any{"draft": map[string]any{"default": map[string]any{
				"slug": "cat-new", "name": "New",
			}}},
		},
		"api::post": []any{
			map[string]any{"draft": map[string]any{"default": map[string]any{
				"slug": "post-1", "title": "New", "category": "cat-new",
			}}},
		},
	})

	result, err := newTestProcessor(t, st).Process(context.Background(), raw, Options{
		ExistingAction:       ActionUpdate,
		DisallowNewRelations: true,
	})
	require.NoError(t, err)
	// The category itself imports; the pre-existing post may not pick up a
	// relation to a record that only exists because of this run.
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Error, "cat-new")

	post, err := st.FindOne(context.Background(), "api::post", store.Query{Field: "slug", Value: "post-1"})
	require.NoError(t, err)
	assert.Equal(t, "Old", post.Data["title"])
}

func TestProcess_StructuralValidation(t *testing.T) {
	st := store.NewMemory()
	p := newTestProcessor(t, st)

	t.Run("WrongVersion", func(t *testing.T) {
		raw, err := json.Marshal(map[string]any{"version": 2, "data": map[string]any{
			"api::category": []any{map[string]any{"draft": map[string]any{"default": map[string]any{"slug": "x"}}}},
		}})
		require.NoError(t, err)

		result, err := p.Process(context.Background(), raw, Options{})
		require.NoError(t, err)
		require.NotEmpty(t, result.Errors)
		assert.Equal(t, 0, result.Created)
	})

	t.Run("UnknownContentType", func(t *testing.T) {
		raw := payload(t, map[string]any{
			"api::mystery": []any{map[string]any{"draft": map[string]any{"default": map[string]any{"slug": "x"}}}},
		})
		result, err := p.Process(context.Background(), raw, Options{})
		require.NoError(t, err)
		require.NotEmpty(t, result.Errors)
	})

	// Nothing was written by either rejected payload.
	_, err := st.FindOne(context.Background(), "api::category", store.Query{Field: "slug", Value: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProcess_DryRunPlansWithoutWriting(t *testing.T) {
	st := store.NewMemory()
	raw := payload(t, map[string]any{
		"api::category": []any{
			map[string]any{"draft": map[string]any{"default": map[string]any{
				"slug": "cat-1", "name": "Categories",
			}}},
		},
	})

	result, err := newTestProcessor(t, st).Process(context.Background(), raw, Options{DryRun: true})
	require.NoError(t, err)
	require.NotNil(t, result.Plan)
	assert.Equal(t, 1, result.Plan.Summary.Creates)
	assert.Equal(t, 0, result.Created)

	_, err = st.FindOne(context.Background(), "api::category", store.Query{Field: "slug", Value: "cat-1"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProcess_RoundTripWithExport(t *testing.T) {
	reg := testRegistry(t)
	source := store.NewMemory()
	cat, err := source.Create(context.Background(), &store.Entry{
		ContentType: "api::category",
		Status:      store.StatusDraft,
		Data:        map[string]any{"slug": "cat-1", "name": "Categories"},
	})
	require.NoError(t, err)
	_, err = source.Create(context.Background(), &store.Entry{
		ContentType: "api::post",
		Status:      store.StatusDraft,
		Data:        map[string]any{"slug": "post-1", "title": "Hello", "category": cat.DocumentID},
	})
	require.NoError(t, err)

	exporter := export.NewProcessor(reg, source, zap.NewNop(), "")
	doc, err := exporter.Run(context.Background(), export.Options{
		ContentType:           "api::post",
		ExportRelations:       true,
		DeepPopulateRelations: true,
	})
	require.NoError(t, err)
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	target := store.NewMemory()
	result, err := NewProcessor(reg, target, nil, zap.NewNop()).Process(context.Background(), raw, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Empty(t, result.Failures)

	post, err := target.FindOne(context.Background(), "api::post", store.Query{Field: "slug", Value: "post-1"})
	require.NoError(t, err)
	imported, err := target.FindOne(context.Background(), "api::category", store.Query{Field: "slug", Value: "cat-1"})
	require.NoError(t, err)
	// The relation points at the target store's own document identity.
	assert.Equal(t, imported.DocumentID, post.Data["category"])
	assert.NotEqual(t, cat.DocumentID, imported.DocumentID)
}
