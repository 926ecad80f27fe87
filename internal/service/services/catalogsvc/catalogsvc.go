package catalogsvc

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/clouddelivery/backend/internal/dal/interfaces/iproductrepo"
	"github.com/clouddelivery/backend/internal/errs"
	"github.com/clouddelivery/backend/internal/service/models/product"
)

// CatalogService manages the product catalog and its image files.
type CatalogService struct {
	products   iproductrepo.IProductRepository
	uploadsDir string
}

// ImageUpload is a validated product image ready to be stored. The
// transport layer enforces size and content type limits before handing
// the stream over.
type ImageUpload struct {
	Ext  string
	Data io.Reader
}

// option is a function that configures the CatalogService.
type option func(*CatalogService)

// MustNewCatalogService creates a new CatalogService and ensures the
// uploads directory exists.
func MustNewCatalogService(opts ...option) *CatalogService {
	s := &CatalogService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.uploadsDir != "" {
		if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
			panic("failed to create uploads directory: " + err.Error())
		}
	}

	return s
}

// WithProductRepository sets the product repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithProductRepository(products iproductrepo.IProductRepository) option {
	return func(s *CatalogService) {
		s.products = products
	}
}

// WithUploadsDir sets the directory product images are stored in.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUploadsDir(dir string) option {
	return func(s *CatalogService) {
		s.uploadsDir = dir
	}
}

// List retrieves catalog entries matching the filter, newest first.
func (s *CatalogService) List(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error) {
	return s.products.Query(ctx, filter)
}

// GetByID retrieves a single product.
func (s *CatalogService) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return s.products.GetByID(ctx, id)
}

func validate(p product.Product) error {
	if p.Name == "" || p.Description == "" || p.Category == "" {
		return fmt.Errorf("name, description and category are required: %w", errs.ErrInvalidArgument)
	}
	if !p.Price.IsPositive() {
		return fmt.Errorf("price must be positive: %w", errs.ErrInvalidArgument)
	}

	return nil
}

// Create persists a new product. If the catalog write fails after the
// image file was stored, the file is removed so no orphan remains.
func (s *CatalogService) Create(ctx context.Context, p product.Product, img *ImageUpload) (*product.Product, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	var storedPath string
	if img != nil {
		url, path, err := s.storeImage(img)
		if err != nil {
			return nil, err
		}
		p.ImageURL = &url
		storedPath = path
	}

	created, err := s.products.Insert(ctx, p)
	if err != nil {
		s.removeFile(storedPath)
		return nil, err
	}

	return created, nil
}

// Update overwrites a product's fields. The prior image is kept when no
// new one is uploaded; a replaced image file is released after the
// catalog write succeeds.
func (s *CatalogService) Update(ctx context.Context, id int64, p product.Product, img *ImageUpload) (*product.Product, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var storedPath string
	if img != nil {
		url, path, err := s.storeImage(img)
		if err != nil {
			return nil, err
		}
		p.ImageURL = &url
		storedPath = path
	} else {
		p.ImageURL = existing.ImageURL
	}

	p.ID = id
	updated, err := s.products.Update(ctx, p)
	if err != nil {
		s.removeFile(storedPath)
		return nil, err
	}

	if img != nil && existing.ImageURL != nil {
		s.removeFile(s.imagePath(*existing.ImageURL))
	}

	return updated, nil
}

// Delete removes a product and releases its image file if present.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	if existing.ImageURL != nil {
		s.removeFile(s.imagePath(*existing.ImageURL))
	}

	return nil
}

// storeImage writes the upload under a random filename and returns the
// public URL and the filesystem path.
func (s *CatalogService) storeImage(img *ImageUpload) (string, string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate image name: %w", err)
	}
	name := hex.EncodeToString(buf) + img.Ext
	path := filepath.Join(s.uploadsDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, img.Data); err != nil {
		s.removeFile(path)
		return "", "", fmt.Errorf("failed to write image file: %w", err)
	}

	return "/uploads/" + name, path, nil
}

func (s *CatalogService) imagePath(url string) string {
	return filepath.Join(s.uploadsDir, filepath.Base(url))
}

func (s *CatalogService) removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove image file", "path", path, "error", err)
	}
}
