package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/store_manager/internal/db/dbtest"
	"github.com/Skotchmaster/store_manager/internal/models"
)

var ctx = context.Background()

func newRepo(t *testing.T) *GormRepo {
	t.Helper()
	return &GormRepo{DB: dbtest.New(t)}
}

func seedProducts(t *testing.T, r *GormRepo) (*models.Category, []*models.Product) {
	t.Helper()

	c := &models.Category{Name: "electronics"}
	require.NoError(t, r.CreateCategory(ctx, c))

	var out []*models.Product
	for _, p := range []models.Product{
		{Name: "radio", Price: 500, Stock: 10, MinStock: 1, Description: "fm and am"},
		{Name: "phone", Price: 20000, Stock: 50, MinStock: 5, Description: "smart"},
		{Name: "television", Price: 30000, Stock: 20, MinStock: 2, Description: "smart tv"},
	} {
		p := p
		p.CategoryID = c.ID
		require.NoError(t, r.CreateProduct(ctx, &p))
		out = append(out, &p)
	}
	return c, out
}

func TestDecrementStock_CompareAndSet(t *testing.T) {
	r := newRepo(t)
	_, products := seedProducts(t, r)
	radio := products[0]

	n, err := r.DecrementStock(ctx, radio.ID, 10, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = r.DecrementStock(ctx, radio.ID, 10, 4)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "stale stock must not match")

	got, err := r.FindProductByID(ctx, radio.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 7, got.Stock)
}

func TestLockProductsByName(t *testing.T) {
	r := newRepo(t)
	seedProducts(t, r)

	err := r.InTx(ctx, func(tx *GormRepo) error {
		locked, err := tx.LockProductsByName(ctx, []string{"television", "ghost", "phone"})
		require.NoError(t, err)
		require.Len(t, locked, 2)
		assert.Equal(t, "phone", locked[0].Name)
		assert.Equal(t, "television", locked[1].Name)
		return nil
	})
	require.NoError(t, err)
}

func TestInTx_RollsBack(t *testing.T) {
	r := newRepo(t)
	_, products := seedProducts(t, r)
	phone := products[1]
	boom := errors.New("boom")

	err := r.InTx(ctx, func(tx *GormRepo) error {
		if _, err := tx.DecrementStock(ctx, phone.ID, 50, 0); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := r.FindProductByID(ctx, phone.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 50, got.Stock)
}

func TestProductLookups(t *testing.T) {
	r := newRepo(t)
	c, products := seedProducts(t, r)

	p, err := r.FindProductByName(ctx, "phone")
	require.NoError(t, err)
	require.NotNil(t, p.Category)
	assert.Equal(t, c.Name, p.Category.Name)

	_, err = r.FindProductByName(ctx, "ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	found, err := r.FindProductsByIDs(ctx, []uint{products[2].ID, 999, products[0].ID})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "television", found[0].Name)
	assert.Equal(t, "radio", found[1].Name)

	found, err = r.FindProductsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, found)

	n, err := r.CountProductsInCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestSearchProducts(t *testing.T) {
	r := newRepo(t)
	seedProducts(t, r)

	total, items, err := r.SearchProducts(ctx, "SMART", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "phone", items[0].Name)
	assert.Equal(t, "television", items[1].Name)

	total, items, err = r.SearchProducts(ctx, "smart", 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 1)
	assert.Equal(t, "television", items[0].Name)
}

func TestUpdateAndDelete_NotFound(t *testing.T) {
	r := newRepo(t)

	assert.ErrorIs(t, r.DeleteProduct(ctx, 42), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, r.DeleteCategory(ctx, 42), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, r.DeleteUser(ctx, 42), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, r.UpdateProduct(ctx, &models.Product{ID: 42, Name: "x"}), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, r.UpdateUser(ctx, &models.User{ID: 42, Username: "x"}), gorm.ErrRecordNotFound)
}

func TestSales_ListAndCount(t *testing.T) {
	r := newRepo(t)

	jane := &models.User{Username: "jane", PasswordHash: "x", Role: models.RoleAttendant}
	john := &models.User{Username: "john", PasswordHash: "x", Role: models.RoleAttendant}
	require.NoError(t, r.CreateUser(ctx, jane))
	require.NoError(t, r.CreateUser(ctx, john))

	for _, attendant := range []uint{jane.ID, john.ID, jane.ID} {
		sale := &models.SaleRecord{Items: 1, Total: 100, AttendantID: attendant}
		require.NoError(t, r.CreateSaleRecord(ctx, sale))
		require.NoError(t, r.CreateSaleLineItems(ctx, []models.SaleLineItem{
			{ProductName: "radio", Price: 100, Quantity: 1, LineTotal: 100, SaleID: sale.ID},
		}))
	}

	total, items, err := r.ListSales(ctx, jane.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Greater(t, items[0].ID, items[1].ID, "newest first")

	total, _, err = r.ListSales(ctx, 0, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	n, err := r.CountSalesByAttendant(ctx, john.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	sale, err := r.GetSale(ctx, items[0].ID)
	require.NoError(t, err)
	require.Len(t, sale.LineItems, 1)
	assert.Equal(t, "radio", sale.LineItems[0].ProductName)

	require.NoError(t, r.CreateSaleLineItems(ctx, nil))
}

func TestRevokeToken_Idempotent(t *testing.T) {
	r := newRepo(t)

	revoked, err := r.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.RevokeToken(ctx, "jti-1"))
	require.NoError(t, r.RevokeToken(ctx, "jti-1"))

	revoked, err = r.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAdminExists(t *testing.T) {
	r := newRepo(t)

	ok, err := r.AdminExists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.CreateUser(ctx, &models.User{Username: "boss", PasswordHash: "x", Role: models.RoleAdmin}))
	ok, err = r.AdminExists(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
