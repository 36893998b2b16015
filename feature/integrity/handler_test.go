package integrity_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"content-porter/core/database"
	"content-porter/core/schema"
	"content-porter/core/storage/mocks"
	"content-porter/core/store"
	"content-porter/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(&schema.Schema{
		UID:             "api::category",
		CollectionKind:  "collectionType",
		IdentifierField: "slug",
		Attributes: []schema.Attribute{
			{Name: "slug", Kind: schema.KindScalar, Type: "string", Required: true, Unique: true},
		},
	}))
	return reg
}

func TestHandleIntegrityCheck(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	_, err = store.New(db)
	require.NoError(t, err)

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "media").Return(true, nil)

	feature := integrity.NewFeature(testRegistry(t), client, "media", db, zap.NewNop())
	assert.Equal(t, "integrity", feature.Name())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	require.NoError(t, feature.Load(app))

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var report map[string]map[string]any
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, "ok", report["identifiers"]["status"])
	assert.Equal(t, "ok", report["store"]["status"])
	assert.Equal(t, "ok", report["bucket"]["status"])
}

func TestHandleBucketCheck_Fix(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "media").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "media", minio.MakeBucketOptions{}).Return(nil)

	feature := integrity.NewFeature(testRegistry(t), client, "media", nil, zap.NewNop())
	app := fiber.New()
	require.NoError(t, feature.Load(app))

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/bucket?fix=true", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, "fixed", report["status"])
	client.AssertExpectations(t)
}
