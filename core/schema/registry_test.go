package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_LoadDir(t *testing.T) {
	dir := t.TempDir()

	article := `{
		"uid": "api::article",
		"kind": "collectionType",
		"identifierField": "slug",
		"attributes": [
			{"name": "slug", "kind": "scalar", "type": "string", "required": true, "unique": true},
			{"name": "title", "kind": "scalar", "type": "string"},
			{"name": "category", "kind": "relation", "target": "api::category"}
		]
	}`
	seo := `{
		"uid": "shared.seo",
		"kind": "component",
		"attributes": [
			{"name": "metaTitle", "kind": "scalar", "type": "string"}
		]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "article.json"), []byte(article), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seo.json"), []byte(seo), 0o644))
	// Non-JSON files are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644))

	reg := NewRegistry()
	require.NoError(t, reg.LoadDir(dir))

	s, err := reg.Get("api::article")
	require.NoError(t, err)
	assert.Equal(t, "slug", s.IdentifierField)
	assert.Len(t, s.Attributes, 3)

	attr, ok := s.Attribute("category")
	assert.True(t, ok)
	assert.Equal(t, KindRelation, attr.Kind)
	assert.Equal(t, "api::category", attr.Target)

	// Components are registered but excluded from ContentTypes.
	assert.True(t, reg.Has("shared.seo"))
	assert.Equal(t, []string{"api::article"}, reg.ContentTypes())

	_, err = reg.Get("api::missing")
	assert.Error(t, err)
}

func TestRegistry_LoadDir_BadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))

	reg := NewRegistry()
	err := reg.LoadDir(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")
}

func TestSchema_RelationTargets(t *testing.T) {
	s := &Schema{
		UID: "api::article",
		Attributes: []Attribute{
			{Name: "title", Kind: KindScalar, Type: "string"},
			{Name: "category", Kind: KindRelation, Target: "api::category"},
			{Name: "tags", Kind: KindRelation, Target: "api::tag", Multiple: true},
		},
	}
	assert.Equal(t, []string{"api::category", "api::tag"}, s.RelationTargets())
}
