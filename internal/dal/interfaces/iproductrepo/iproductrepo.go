package iproductrepo

import (
	"context"

	"github.com/clouddelivery/backend/internal/service/models/product"
)

// IProductRepository is an interface for the product postgres repository.
type IProductRepository interface {
	Insert(ctx context.Context, p product.Product) (*product.Product, error)
	Update(ctx context.Context, p product.Product) (*product.Product, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*product.Product, error)
	Query(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
}
