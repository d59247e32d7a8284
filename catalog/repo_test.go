package catalog_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/ecobuilt/api/catalog"
)

var testDBCounter int

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	testDBCounter++
	dsn := fmt.Sprintf("file:catalogtest%d?mode=memory&cache=shared", testDBCounter)

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ddl := []string{
		`CREATE TABLE categories (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(120) NOT NULL UNIQUE,
			is_deleted BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
		`CREATE TABLE vendors (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(120) NOT NULL UNIQUE,
			is_deleted BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
		`CREATE TABLE products (
			id VARCHAR(36) PRIMARY KEY,
			picture_keys TEXT NOT NULL DEFAULT '[]',
			name VARCHAR(200) NOT NULL,
			description TEXT,
			sku VARCHAR(64) NOT NULL,
			stock INTEGER NOT NULL DEFAULT 0,
			price REAL NOT NULL,
			sale_price REAL,
			category_id VARCHAR(36),
			vendor_id VARCHAR(36),
			is_deleted BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
	}

	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	return db
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

func TestCategoriesRepository(t *testing.T) {
	db := newTestDB(t)
	repo := catalog.NewCategoriesRepository(db)
	ctx := context.Background()

	t.Run("create and list", func(t *testing.T) {
		_, err := repo.Create(ctx, &catalog.Category{Name: "Timber"})
		require.NoError(t, err)
		_, err = repo.Create(ctx, &catalog.Category{Name: "Bricks"})
		require.NoError(t, err)

		records, err := repo.List(ctx, false)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "Bricks", records[0].Name)
		assert.Equal(t, "Timber", records[1].Name)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, &catalog.Category{Name: "Timber"})
		assert.Error(t, err)
	})

	t.Run("soft delete hides the row from listings", func(t *testing.T) {
		record, err := repo.Create(ctx, &catalog.Category{Name: "Discontinued"})
		require.NoError(t, err)

		require.NoError(t, repo.SoftDelete(ctx, record.ID))

		records, err := repo.List(ctx, false)
		require.NoError(t, err)
		for _, r := range records {
			assert.NotEqual(t, "Discontinued", r.Name)
		}

		all, err := repo.List(ctx, true)
		require.NoError(t, err)
		assert.Len(t, all, len(records)+1)

		// the row still resolves by id
		found, err := repo.GetByID(ctx, record.ID)
		require.NoError(t, err)
		assert.True(t, found.IsDeleted)
	})

	t.Run("unknown id yields not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)

		assert.ErrorIs(t, repo.SoftDelete(ctx, uuid.New()), catalog.ErrCategoryNotFound)
	})

	t.Run("update renames", func(t *testing.T) {
		record, err := repo.Create(ctx, &catalog.Category{Name: "Tools"})
		require.NoError(t, err)

		record.Name = "Power Tools"
		_, err = repo.Update(ctx, record)
		require.NoError(t, err)

		found, err := repo.GetByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, "Power Tools", found.Name)
	})
}

func TestVendorsRepository(t *testing.T) {
	db := newTestDB(t)
	repo := catalog.NewVendorsRepository(db)
	ctx := context.Background()

	record, err := repo.Create(ctx, &catalog.Vendor{Name: "Acme Lumber"})
	require.NoError(t, err)

	records, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record.Name = "Acme Lumber Co"
	_, err = repo.Update(ctx, record)
	require.NoError(t, err)

	found, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Lumber Co", found.Name)

	require.NoError(t, repo.SoftDelete(ctx, record.ID))

	records, err = repo.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestProductsRepository_List(t *testing.T) {
	db := newTestDB(t)
	repo := catalog.NewProductsRepository(db)
	ctx := context.Background()

	categoryID := uuid.New()
	vendorID := uuid.New()

	seed := []catalog.Product{
		{Name: "Oak Plank", Sku: "OAK-1", Stock: 50, Price: 12.50, CategoryID: categoryID, VendorID: vendorID},
		{Name: "Pine Plank", Sku: "PINE-1", Stock: 5, Price: 8.00, CategoryID: categoryID},
		{Name: "Red Brick", Sku: "BRICK-1", Stock: 500, Price: 0.75, VendorID: vendorID},
		{Name: "Old Stock Plank", Sku: "OLD-1", Stock: 0, Price: 3.00, IsDeleted: true},
	}
	for i := range seed {
		record := seed[i]
		created, err := repo.Create(ctx, &record)
		require.NoError(t, err)
		if record.IsDeleted {
			require.NoError(t, repo.SoftDelete(ctx, created.ID))
		}
	}

	t.Run("default listing excludes deleted rows", func(t *testing.T) {
		records, total, err := repo.List(ctx, catalog.ProductFilter{})

		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, records, 3)
	})

	t.Run("name filter is a case-insensitive contains", func(t *testing.T) {
		records, total, err := repo.List(ctx, catalog.ProductFilter{Name: "plank"})

		require.NoError(t, err)
		assert.Equal(t, 2, total)
		for _, r := range records {
			assert.Contains(t, r.Name, "Plank")
		}
	})

	t.Run("stock and price bounds combine", func(t *testing.T) {
		_, total, err := repo.List(ctx, catalog.ProductFilter{
			MinStock: intPtr(10),
			MinPrice: floatPtr(1.0),
			MaxPrice: floatPtr(20.0),
		})

		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("category and vendor narrow the listing", func(t *testing.T) {
		_, total, err := repo.List(ctx, catalog.ProductFilter{CategoryID: categoryID})
		require.NoError(t, err)
		assert.Equal(t, 2, total)

		_, total, err = repo.List(ctx, catalog.ProductFilter{VendorID: vendorID})
		require.NoError(t, err)
		assert.Equal(t, 2, total)

		_, total, err = repo.List(ctx, catalog.ProductFilter{
			CategoryID: categoryID,
			VendorID:   vendorID,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("explicit deleted filter surfaces soft-deleted rows", func(t *testing.T) {
		records, total, err := repo.List(ctx, catalog.ProductFilter{IsDeleted: boolPtr(true)})

		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, records, 1)
		assert.Equal(t, "Old Stock Plank", records[0].Name)
	})

	t.Run("paging clamps and offsets", func(t *testing.T) {
		records, total, err := repo.List(ctx, catalog.ProductFilter{Page: 2, Limit: 2})

		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, records, 1)
	})
}

func TestProductsRepository_Pictures(t *testing.T) {
	db := newTestDB(t)
	repo := catalog.NewProductsRepository(db)
	ctx := context.Background()

	record, err := repo.Create(ctx, &catalog.Product{
		Name:  "Oak Plank",
		Sku:   "OAK-1",
		Price: 12.50,
	})
	require.NoError(t, err)
	assert.NotNil(t, record.PictureKeys)

	record, err = repo.AddPictures(ctx, record.ID, []string{"uploads/a.jpg", "uploads/b.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"uploads/a.jpg", "uploads/b.jpg"}, record.PictureKeys)

	record, err = repo.AddPictures(ctx, record.ID, []string{"uploads/c.jpg"})
	require.NoError(t, err)

	found, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Len(t, found.PictureKeys, 3)

	_, err = repo.AddPictures(ctx, uuid.New(), []string{"uploads/x.jpg"})
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}
