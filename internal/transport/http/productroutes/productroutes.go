package productroutes

import (
	"context"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
	"github.com/shopspring/decimal"

	"github.com/clouddelivery/backend/internal/service/models/product"
	"github.com/clouddelivery/backend/internal/service/services/catalogsvc"
	"github.com/clouddelivery/backend/internal/transport/http/httperr"
)

// maxImageBytes caps uploaded product images at 5MB.
const maxImageBytes = 5 << 20

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// service is an interface for the catalog service layer.
type service interface {
	List(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
	GetByID(ctx context.Context, id int64) (*product.Product, error)
	Create(ctx context.Context, p product.Product, img *catalogsvc.ImageUpload) (*product.Product, error)
	Update(ctx context.Context, id int64, p product.Product, img *catalogsvc.ImageUpload) (*product.Product, error)
	Delete(ctx context.Context, id int64) error
}

type queryProductsRequest struct {
	Category string `schema:"category,omitempty"`
	Limit    int    `schema:"limit,omitempty"`
	Offset   int    `schema:"offset,omitempty"`
}

// ListProducts handles the public catalog listing.
func ListProducts(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &queryProductsRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	products, err := service.List(r.Context(), &product.QueryProductsModel{
		Category: query.Category,
		Limit:    query.Limit,
		Offset:   query.Offset,
	})
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	if products == nil {
		products = []product.Product{}
	}
	httperr.WriteJSON(w, http.StatusOK, products)
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// GetProduct handles the public single-product read.
func GetProduct(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := idParam(r)
	if !ok {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}

	found, err := service.GetByID(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	httperr.WriteJSON(w, http.StatusOK, found)
}

// parseProductForm reads product fields and an optional image from a
// multipart form. The caller must close the returned file through the
// upload's Data reader lifecycle (request body scope).
func parseProductForm(r *http.Request) (product.Product, *catalogsvc.ImageUpload, multipart.File, string) {
	var p product.Product

	if err := r.ParseMultipartForm(maxImageBytes + 1<<20); err != nil {
		return p, nil, nil, "invalid multipart form"
	}

	p.Name = r.FormValue("name")
	p.Description = r.FormValue("description")
	p.Category = r.FormValue("category")

	if raw := r.FormValue("price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return p, nil, nil, "invalid price"
		}
		p.Price = price
	}

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return p, nil, nil, ""
	}
	if err != nil {
		return p, nil, nil, "invalid image field"
	}

	if header.Size > maxImageBytes {
		file.Close()
		return p, nil, nil, "image exceeds 5MB limit"
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExt[ext] {
		file.Close()
		return p, nil, nil, "image must be jpeg, jpg, png or webp"
	}

	return p, &catalogsvc.ImageUpload{Ext: ext, Data: file}, file, ""
}

// CreateProduct handles the admin catalog mutation.
func CreateProduct(w http.ResponseWriter, r *http.Request, service service) {
	p, img, file, errMsg := parseProductForm(r)
	if errMsg != "" {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
		return
	}
	if file != nil {
		defer file.Close()
	}

	created, err := service.Create(r.Context(), p, img)
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	httperr.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "product created",
		"product": created,
	})
}

// UpdateProduct handles the admin catalog mutation. The stored image is
// preserved when the form carries no new one.
func UpdateProduct(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := idParam(r)
	if !ok {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}

	p, img, file, errMsg := parseProductForm(r)
	if errMsg != "" {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
		return
	}
	if file != nil {
		defer file.Close()
	}

	updated, err := service.Update(r.Context(), id, p, img)
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	httperr.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "product updated",
		"product": updated,
	})
}

// DeleteProduct handles the admin catalog deletion.
func DeleteProduct(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := idParam(r)
	if !ok {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}

	if err := service.Delete(r.Context(), id); err != nil {
		httperr.WriteError(w, err)
		return
	}

	httperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}
