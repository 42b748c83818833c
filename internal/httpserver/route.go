package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/store_manager/internal/db"
	"github.com/Skotchmaster/store_manager/internal/logging"
	"github.com/Skotchmaster/store_manager/internal/metrics"
	authmw "github.com/Skotchmaster/store_manager/internal/middleware/auth"
	"github.com/Skotchmaster/store_manager/internal/models"
)

type Deps struct {
	DB            *gorm.DB
	JWTSecret     []byte
	Authenticator authmw.Authenticator

	AuthHandler     *AuthHTTP
	CategoryHandler *CategoryHTTP
	ProductHandler  *ProductHTTP
	SaleHandler     *SaleHTTP
	UserHandler     *UserHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := db.Ping(ctx, d.DB); err != nil {
			logging.FromContext(ctx).Error("ready_check_failed", "status", 503, "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	requireAuth := authmw.RequireAuth(d.JWTSecret, d.Authenticator)
	adminOnly := authmw.RequireRole("admin access required", models.RoleAdmin)
	attendantOnly := authmw.RequireRole("only attendants can create a sale record", models.RoleAttendant)

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.Logout, requireAuth)

	api := e.Group("/api/v2", requireAuth)

	sales := api.Group("/sales")
	sales.POST("", d.SaleHandler.CreateSale, attendantOnly)
	sales.GET("", d.SaleHandler.ListSales)
	sales.GET("/:id", d.SaleHandler.GetSale)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/search", d.ProductHandler.SearchProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, adminOnly)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, adminOnly)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, adminOnly)

	categories := api.Group("/categories", adminOnly)
	categories.GET("", d.CategoryHandler.ListCategories)
	categories.POST("", d.CategoryHandler.CreateCategory)
	categories.GET("/:id", d.CategoryHandler.GetCategory)
	categories.PUT("/:id", d.CategoryHandler.UpdateCategory)
	categories.DELETE("/:id", d.CategoryHandler.DeleteCategory)

	users := api.Group("/users", adminOnly)
	users.GET("", d.UserHandler.ListUsers)
	users.POST("", d.UserHandler.CreateUser)
	users.GET("/:id", d.UserHandler.GetUser)
	users.PUT("/:id", d.UserHandler.UpdateUser)
	users.DELETE("/:id", d.UserHandler.DeleteUser)
}
