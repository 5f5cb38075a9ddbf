// internal/domain/product/service.go
package product

import (
	"fmt"

	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/config"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service handles product catalog logic. Listing stays deliberately plain:
// filtering/sorting/search belongs to the generic data-access layer, not here.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	Title       string  `json:"title" binding:"required"`
	Slug        string  `json:"slug" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Quantity    int     `json:"quantity" binding:"min=0"`
	Colors      string  `json:"colors"`
	ImageCover  string  `json:"imageCover"`
	CategoryID  uint    `json:"categoryId" binding:"required"`
}

// UpdateProductRequest represents product update data
type UpdateProductRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Colors      *string  `json:"colors"`
	ImageCover  *string  `json:"imageCover"`
	IsActive    *bool    `json:"isActive"`
}

// ProductListResponse represents a paginated product list
type ProductListResponse struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Total    int64     `json:"total"`
}

// GetProducts retrieves active products with plain pagination
func (s *Service) GetProducts(page, limit int) (*ProductListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var products []Product
	var total int64

	query := s.db.Model(&Product{}).Where("is_active = ?", true)
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	err := query.Preload("Category").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return &ProductListResponse{
		Products: products,
		Page:     page,
		Limit:    limit,
		Total:    total,
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var prod Product
	result := s.db.Preload("Category").Where("id = ?", id).First(&prod)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("no product found with id %d", id)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}
	return &prod, nil
}

// CreateProduct creates a new product (admin)
func (s *Service) CreateProduct(req *CreateProductRequest) (*Product, error) {
	prod := Product{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Colors:      req.Colors,
		ImageCover:  req.ImageCover,
		CategoryID:  req.CategoryID,
		IsActive:    true,
	}

	if err := s.db.Create(&prod).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &prod, nil
}

// UpdateProduct updates an existing product (admin)
func (s *Service) UpdateProduct(id uint, req *UpdateProductRequest) (*Product, error) {
	prod, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, apperror.Validation("price must be greater than zero")
		}
		updates["price"] = *req.Price
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, apperror.Validation("quantity must not be negative")
		}
		updates["quantity"] = *req.Quantity
	}
	if req.Colors != nil {
		updates["colors"] = *req.Colors
	}
	if req.ImageCover != nil {
		updates["image_cover"] = *req.ImageCover
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return prod, nil
	}

	if err := s.db.Model(prod).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return prod, nil
}

// DeleteProduct soft-deletes a product (admin)
func (s *Service) DeleteProduct(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("no product found with id %d", id)
	}
	return nil
}

// GetCategories lists all categories
func (s *Service) GetCategories() ([]Category, error) {
	var categories []Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// CreateCategory creates a category (admin)
func (s *Service) CreateCategory(name, slug, image string) (*Category, error) {
	category := Category{Name: name, Slug: slug, Image: image}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}

// DeleteCategory removes a category (admin)
func (s *Service) DeleteCategory(id uint) error {
	result := s.db.Delete(&Category{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("no category found with id %d", id)
	}
	return nil
}
