package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/store_manager/internal/db/dbtest"
	"github.com/Skotchmaster/store_manager/internal/events"
	"github.com/Skotchmaster/store_manager/internal/hash"
	"github.com/Skotchmaster/store_manager/internal/models"
	"github.com/Skotchmaster/store_manager/internal/repo"
)

type testEnv struct {
	DB     *gorm.DB
	Repo   *repo.GormRepo
	Events *events.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := dbtest.New(t)
	return &testEnv{
		DB:     db,
		Repo:   &repo.GormRepo{DB: db},
		Events: &events.Recorder{},
	}
}

func (env *testEnv) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	require.NoError(t, env.DB.Create(c).Error)
	return c
}

func (env *testEnv) product(t *testing.T, c *models.Category, name string, price, stock, minStock int64) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price, Stock: stock, MinStock: minStock, CategoryID: c.ID}
	require.NoError(t, env.DB.Create(p).Error)
	return p
}

func (env *testEnv) user(t *testing.T, username, role string) *models.User {
	t.Helper()
	pw, err := hash.HashPassword("password")
	require.NoError(t, err)
	u := &models.User{Username: username, PasswordHash: pw, Role: role}
	require.NoError(t, env.DB.Create(u).Error)
	return u
}

func (env *testEnv) stock(t *testing.T, id uint) int64 {
	t.Helper()
	var p models.Product
	require.NoError(t, env.DB.First(&p, id).Error)
	return p.Stock
}

func (env *testEnv) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.DB.Model(model).Count(&n).Error)
	return n
}

// storeFixture is the catalog used across the sale tests.
type storeFixture struct {
	Table      *models.Product
	Television *models.Product
	Phone      *models.Product
	Attendant  *models.User
	Other      *models.User
	Admin      *models.User
}

func (env *testEnv) seedStore(t *testing.T) storeFixture {
	t.Helper()

	furniture := env.category(t, "furniture")
	electronics := env.category(t, "electronics")

	return storeFixture{
		Table:      env.product(t, furniture, "table", 10000, 100, 10),
		Television: env.product(t, electronics, "television", 30000, 200, 20),
		Phone:      env.product(t, electronics, "phone", 20000, 1000, 50),
		Attendant:  env.user(t, "jane", models.RoleAttendant),
		Other:      env.user(t, "john", models.RoleAttendant),
		Admin:      env.user(t, "boss", models.RoleAdmin),
	}
}

var bg = context.Background()
