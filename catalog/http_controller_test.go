package catalog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/ecobuilt/api/auth"
	"github.com/ecobuilt/api/catalog"
	"github.com/ecobuilt/api/response"
	"github.com/ecobuilt/api/server"
)

type catalogFixture struct {
	app    *fiber.App
	repo   auth.RepositoryManager
	tokens auth.TokenService
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()

	db := newTestDB(t)
	addAuthsTable(t, db)

	repo := auth.NewRepositoryManager(db)

	tokens, err := auth.NewTokenService([]byte("test-signing-key"), time.Hour, "test-issuer", nil)
	require.NoError(t, err)

	controller := catalog.NewController(
		catalog.NewCategoriesRepository(db),
		catalog.NewVendorsRepository(db),
		catalog.NewProductsRepository(db),
		nil,
		nil,
	)

	app := fiber.New(fiber.Config{ErrorHandler: server.ErrorHandler(nil)})
	controller.RegisterRoutes(app, auth.NewGuard(tokens, repo.Auths(), nil))

	return &catalogFixture{app: app, repo: repo, tokens: tokens}
}

func addAuthsTable(t *testing.T, db *bun.DB) {
	t.Helper()

	_, err := db.Exec(`CREATE TABLE auths (
		id VARCHAR(36) PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(32) NOT NULL DEFAULT 'UNSPECIFIED',
		is_verified BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		deleted_at TIMESTAMP
	)`)
	require.NoError(t, err)
}

func (f *catalogFixture) tokenFor(t *testing.T, email string, role auth.Role) string {
	t.Helper()

	ctx := context.Background()

	identity, err := f.repo.Auths().Register(ctx, &auth.Auth{
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
	})
	require.NoError(t, err)
	require.NoError(t, f.repo.Auths().SetVerified(ctx, identity.ID))

	token, err := f.tokens.Issue(email, auth.TokenClassAccess)
	require.NoError(t, err)

	return token
}

func (f *catalogFixture) do(t *testing.T, method, path, token string, body any) (*http.Response, response.Envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	res, err := f.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	envelope := response.Envelope{}
	require.NoError(t, json.Unmarshal(raw, &envelope))

	return res, envelope
}

func TestCatalogController_CategoryGating(t *testing.T) {
	f := newCatalogFixture(t)
	admin := f.tokenFor(t, "admin@example.com", auth.RoleAdmin)
	buyer := f.tokenFor(t, "buyer@example.com", auth.RoleUser)

	t.Run("listing is public", func(t *testing.T) {
		res, envelope := f.do(t, http.MethodGet, "/categories", "", nil)

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.True(t, envelope.Success)
	})

	t.Run("buyers cannot create categories", func(t *testing.T) {
		res, envelope := f.do(t, http.MethodPost, "/categories", buyer, fiber.Map{"name": "Timber"})

		assert.Equal(t, http.StatusForbidden, res.StatusCode)
		assert.Equal(t, "Forbidden!", envelope.Message)
	})

	t.Run("operators manage categories end to end", func(t *testing.T) {
		res, envelope := f.do(t, http.MethodPost, "/categories", admin, fiber.Map{"name": "Timber"})
		require.Equal(t, http.StatusCreated, res.StatusCode)
		assert.Equal(t, "Category Created Successfully!", envelope.Message)

		data, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		created := catalog.Category{}
		require.NoError(t, json.Unmarshal(data, &created))

		res, envelope = f.do(t, http.MethodPut, "/categories/"+created.ID.String(), admin, fiber.Map{"name": "Reclaimed Timber"})
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "Category Updated Successfully!", envelope.Message)

		res, envelope = f.do(t, http.MethodDelete, "/categories/"+created.ID.String(), admin, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "Category Deleted Successfully!", envelope.Message)

		_, listEnvelope := f.do(t, http.MethodGet, "/categories", "", nil)
		data, err = json.Marshal(listEnvelope.Data)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "Reclaimed Timber")
	})
}

func TestCatalogController_ProductGating(t *testing.T) {
	f := newCatalogFixture(t)
	admin := f.tokenFor(t, "admin@example.com", auth.RoleAdmin)
	seller := f.tokenFor(t, "seller@example.com", auth.RoleVendor)
	buyer := f.tokenFor(t, "buyer@example.com", auth.RoleUser)

	t.Run("product listing requires a signed-in identity", func(t *testing.T) {
		res, _ := f.do(t, http.MethodGet, "/products", "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

		res, _ = f.do(t, http.MethodGet, "/products", buyer, nil)
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("only sellers create products", func(t *testing.T) {
		res, _ := f.do(t, http.MethodPost, "/products", admin, fiber.Map{
			"name": "Oak Plank", "sku": "OAK-1", "price": 12.5, "stock": 10,
		})
		assert.Equal(t, http.StatusForbidden, res.StatusCode)

		res, envelope := f.do(t, http.MethodPost, "/products", seller, fiber.Map{
			"name": "Oak Plank", "sku": "OAK-1", "price": 12.5, "stock": 10,
		})
		require.Equal(t, http.StatusCreated, res.StatusCode)
		assert.Equal(t, "Product Created Successfully!", envelope.Message)
	})

	t.Run("sellers and operators both amend products", func(t *testing.T) {
		_, envelope := f.do(t, http.MethodPost, "/products", seller, fiber.Map{
			"name": "Pine Plank", "sku": "PINE-1", "price": 8.0, "stock": 5,
		})

		data, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		created := catalog.Product{}
		require.NoError(t, json.Unmarshal(data, &created))

		res, _ := f.do(t, http.MethodPut, "/products/"+created.ID.String(), admin, fiber.Map{
			"name": "Pine Plank B-Grade", "sku": "PINE-1", "price": 6.0, "stock": 5,
		})
		assert.Equal(t, http.StatusOK, res.StatusCode)

		res, _ = f.do(t, http.MethodPut, "/products/"+created.ID.String(), buyer, fiber.Map{
			"name": "Hacked", "sku": "PINE-1", "price": 0.1, "stock": 5,
		})
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	})

	t.Run("filters pass through the query string", func(t *testing.T) {
		res, envelope := f.do(t, http.MethodGet, "/products?name=oak&min_stock=1", buyer, nil)

		require.Equal(t, http.StatusOK, res.StatusCode)

		data, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Oak Plank")
		assert.NotContains(t, string(data), "Pine Plank")
	})

	t.Run("bad filter values are rejected", func(t *testing.T) {
		res, _ := f.do(t, http.MethodGet, "/products?min_price=abc", buyer, nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})
}
