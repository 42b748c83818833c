package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/Skotchmaster/store_manager/internal/events"
	"github.com/Skotchmaster/store_manager/internal/logging"
	"github.com/Skotchmaster/store_manager/internal/models"
	"github.com/Skotchmaster/store_manager/internal/repo"
	"github.com/Skotchmaster/store_manager/internal/search"
	"github.com/Skotchmaster/store_manager/internal/transport"
)

// CatalogService manages categories and products. Search is optional; without
// it product search falls back to the database.
type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Search search.Index
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	name, err := validName("category name", req.Name)
	if err != nil {
		return nil, err
	}

	if err := s.categoryNameFree(ctx, name, 0); err != nil {
		return nil, err
	}

	category := &models.Category{Name: name, Description: req.Description}
	if err := s.Repo.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(ErrConflict, "category already exists")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.Repo.FindCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "category with id %d does not exist", id)
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, offset, limit int) (int64, []models.Category, error) {
	total, items, err := s.Repo.ListCategories(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list categories: %w", err)
	}
	return total, items, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, req transport.CategoryRequest) (*models.Category, error) {
	name, err := validName("category name", req.Name)
	if err != nil {
		return nil, err
	}

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.categoryNameFree(ctx, name, id); err != nil {
		return nil, err
	}

	category.Name = name
	category.Description = req.Description
	if err := s.Repo.UpdateCategory(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(ErrConflict, "category already exists")
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

// DeleteCategory refuses to remove a category that products still reference.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}

	n, err := s.Repo.CountProductsInCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		return newError(ErrConflict, "category is referenced by %d products", n)
	}

	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(ErrNotFound, "category with id %d does not exist", id)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *CatalogService) categoryNameFree(ctx context.Context, name string, selfID uint) error {
	existing, err := s.Repo.FindCategoryByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return newError(ErrConflict, "category already exists")
	case err == nil, errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return fmt.Errorf("find category: %w", err)
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.ProductRequest) (*models.Product, error) {
	product, err := s.productFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.productNameFree(ctx, product.Name, 0); err != nil {
		return nil, err
	}

	if err := s.Repo.CreateProduct(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(ErrConflict, "product already exists")
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.productChanged(ctx, events.TypeProductCreated, product)
	return product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.Repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "product with id %d does not exist", id)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	total, items, err := s.Repo.ListProducts(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list products: %w", err)
	}
	return total, items, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req transport.ProductRequest) (*models.Product, error) {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}

	product, err := s.productFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.productNameFree(ctx, product.Name, id); err != nil {
		return nil, err
	}

	product.ID = id
	if err := s.Repo.UpdateProduct(ctx, product); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, newError(ErrConflict, "product already exists")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, newError(ErrNotFound, "product with id %d does not exist", id)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	updated, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	s.productChanged(ctx, events.TypeProductUpdated, updated)
	return updated, nil
}

// DeleteProduct leaves sale history alone; line items keep their own copy of
// the product name and price.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(ErrNotFound, "product with id %d does not exist", id)
		}
		return fmt.Errorf("delete product: %w", err)
	}

	s.productChanged(ctx, events.TypeProductDeleted, &models.Product{ID: id})
	return nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	q = NormalizeName(q)
	if q == "" {
		return 0, nil, newError(ErrValidation, "search query is required")
	}

	if s.Search == nil {
		total, items, err := s.Repo.SearchProducts(ctx, q, offset, limit)
		if err != nil {
			return 0, nil, fmt.Errorf("search products: %w", err)
		}
		return total, items, nil
	}

	total, docs, err := s.Search.Search(ctx, q, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("search products: %w", err)
	}

	ids := make([]uint, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	items, err := s.Repo.FindProductsByIDs(ctx, ids)
	if err != nil {
		return 0, nil, fmt.Errorf("load search hits: %w", err)
	}
	return total, items, nil
}

func (s *CatalogService) productFromRequest(ctx context.Context, req transport.ProductRequest) (*models.Product, error) {
	name, err := validName("product name", req.Name)
	if err != nil {
		return nil, err
	}
	if req.Price <= 0 {
		return nil, newError(ErrValidation, "product price must be greater than 0")
	}
	if req.Stock < 0 {
		return nil, newError(ErrValidation, "product stock cannot be negative")
	}
	if req.MinStock < 0 {
		return nil, newError(ErrValidation, "product min_stock cannot be negative")
	}

	category, err := s.resolveCategory(ctx, req)
	if err != nil {
		return nil, err
	}

	return &models.Product{
		Name:        name,
		Price:       req.Price,
		Stock:       req.Stock,
		MinStock:    req.MinStock,
		Description: req.Description,
		CategoryID:  category.ID,
		Category:    category,
	}, nil
}

func (s *CatalogService) resolveCategory(ctx context.Context, req transport.ProductRequest) (*models.Category, error) {
	var (
		category *models.Category
		err      error
	)
	switch {
	case req.CategoryID != 0:
		category, err = s.Repo.FindCategoryByID(ctx, req.CategoryID)
	case NormalizeName(req.Category) != "":
		category, err = s.Repo.FindCategoryByName(ctx, NormalizeName(req.Category))
	default:
		return nil, newError(ErrValidation, "product category is required")
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "category provided does not exist")
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return category, nil
}

func (s *CatalogService) productNameFree(ctx context.Context, name string, selfID uint) error {
	existing, err := s.Repo.FindProductByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return newError(ErrConflict, "product already exists")
	case err == nil, errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return fmt.Errorf("find product: %w", err)
	}
}

// productChanged fans a committed product mutation out to the event stream
// and the search index. Neither may fail the request.
func (s *CatalogService) productChanged(ctx context.Context, kind string, p *models.Product) {
	events.Emit(ctx, s.Events, events.TopicProducts, strconv.FormatUint(uint64(p.ID), 10), events.ProductChanged{
		Type:      kind,
		ProductID: p.ID,
		Name:      p.Name,
		Stock:     p.Stock,
	})

	if s.Search == nil {
		return
	}
	l := logging.FromContext(ctx).With("svc", "catalog.index", "product_id", p.ID)

	var err error
	if kind == events.TypeProductDeleted {
		err = s.Search.DeleteProduct(ctx, p.ID)
	} else {
		err = s.Search.IndexProduct(ctx, search.DocumentFromProduct(p))
	}
	if err != nil {
		l.Warn("index_product_failed", "type", kind, "error", err)
	}
}
