package reconcile

import (
	"context"
	"testing"
	"time"

	"content-porter/core/document"
	"content-porter/core/schema"
	"content-porter/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(&schema.Schema{
		UID:             "api::article",
		CollectionKind:  "collectionType",
		IdentifierField: "slug",
		Attributes: []schema.Attribute{
			{Name: "slug", Kind: schema.KindScalar, Type: "string", Required: true, Unique: true},
			{Name: "title", Kind: schema.KindScalar, Type: "string"},
			{Name: "category", Kind: schema.KindRelation, Target: "api::category"},
		},
	}))
	return reg
}

func parseDoc(t *testing.T, raw string) *document.Document {
	t.Helper()
	doc, errs := document.Parse([]byte(raw), document.FormatJSON)
	require.Empty(t, errs)
	return doc
}

func TestPlan_CreatesUpdatesAndStoreOnly(t *testing.T) {
	reg := planRegistry(t)
	st := store.NewMemory()
	ctx := context.Background()

	// "existing" is in both payload and store with a diverged title;
	// "orphan" only in the store; "new" only in the payload.
	_, err := st.Create(ctx, &store.Entry{
		ContentType: "api::article",
		Status:      store.StatusPublished,
		Data:        map[string]any{"slug": "existing", "title": "Old"},
	})
	require.NoError(t, err)
	_, err = st.Create(ctx, &store.Entry{
		ContentType: "api::article",
		Status:      store.StatusDraft,
		Data:        map[string]any{"slug": "orphan", "title": "Orphan"},
	})
	require.NoError(t, err)

	doc := parseDoc(t, `{"version":3,"data":{"api::article":[
		{"published":{"default":{"slug":"existing","title":"New"}}},
		{"published":{"default":{"slug":"new","title":"Fresh"}}}
	]}}`)

	engine := NewEngine(reg, st, 0)
	plan, err := engine.Plan(ctx, doc, Options{ExistingAction: "update"})
	require.NoError(t, err)

	assert.Equal(t, 3, plan.Summary.TotalRecords)
	assert.Equal(t, 1, plan.Summary.MissingInStore)
	assert.Equal(t, 1, plan.Summary.OnlyInStore)
	assert.Equal(t, 1, plan.Summary.Mismatches)
	assert.Equal(t, 1, plan.Summary.Creates)
	assert.Equal(t, 1, plan.Summary.Updates)

	byKey := make(map[string]Result)
	for _, r := range plan.Results {
		byKey[r.Key] = r
	}
	assert.Contains(t, byKey["existing"].Mismatch[0], "title: payload=New store=Old")
	assert.True(t, byKey["orphan"].DraftPresent)
	assert.False(t, byKey["orphan"].PayloadPresent)
	assert.True(t, byKey["new"].PayloadPresent)
	assert.False(t, byKey["new"].PublishedPresent)
}

func TestPlan_SkipPolicy(t *testing.T) {
	reg := planRegistry(t)
	st := store.NewMemory()
	ctx := context.Background()

	_, err := st.Create(ctx, &store.Entry{
		ContentType: "api::article",
		Status:      store.StatusPublished,
		Data:        map[string]any{"slug": "existing", "title": "Same"},
	})
	require.NoError(t, err)

	doc := parseDoc(t, `{"version":3,"data":{"api::article":[
		{"published":{"default":{"slug":"existing","title":"Same"}}}
	]}}`)

	engine := NewEngine(reg, st, 0)
	plan, err := engine.Plan(ctx, doc, Options{ExistingAction: "skip"})
	require.NoError(t, err)

	require.Len(t, plan.Actions, 1)
	assert.Equal(t, ActionSkip, plan.Actions[0].Type)
	assert.Equal(t, 0, plan.Summary.Mismatches)
}

func TestPlan_ConfigurationErrorFailsFast(t *testing.T) {
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(&schema.Schema{
		UID:             "api::broken",
		CollectionKind:  "collectionType",
		IdentifierField: "missing",
		Attributes: []schema.Attribute{
			{Name: "title", Kind: schema.KindScalar, Type: "string"},
		},
	}))

	doc := parseDoc(t, `{"version":3,"data":{"api::broken":[
		{"published":{"default":{"title":"T"}}}
	]}}`)

	engine := NewEngine(reg, store.NewMemory(), 0)
	_, err := engine.Plan(context.Background(), doc, Options{ExistingAction: "skip"})
	require.Error(t, err)
	assert.True(t, schema.IsConfigurationError(err))
}

func TestIndexCache_TTLAndInvalidate(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	_, err := st.Create(ctx, &store.Entry{
		ContentType: "api::article",
		Status:      store.StatusDraft,
		Data:        map[string]any{"slug": "a"},
	})
	require.NoError(t, err)

	cache := newIndexCache()
	index, err := cache.getOrBuild(ctx, st, "api::article", "slug", time.Minute)
	require.NoError(t, err)
	assert.Len(t, index.Draft, 1)

	// A later write is invisible until the cache is invalidated.
	_, err = st.Create(ctx, &store.Entry{
		ContentType: "api::article",
		Status:      store.StatusDraft,
		Data:        map[string]any{"slug": "b"},
	})
	require.NoError(t, err)

	index, err = cache.getOrBuild(ctx, st, "api::article", "slug", time.Minute)
	require.NoError(t, err)
	assert.Len(t, index.Draft, 1)

	cache.invalidate()
	index, err = cache.getOrBuild(ctx, st, "api::article", "slug", time.Minute)
	require.NoError(t, err)
	assert.Len(t, index.Draft, 2)
}
