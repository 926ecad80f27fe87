package orderroutes

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/clouddelivery/backend/internal/service/models/order"
	"github.com/clouddelivery/backend/internal/service/models/orderitem"
	"github.com/clouddelivery/backend/internal/transport/http/httperr"
	"github.com/clouddelivery/backend/internal/transport/http/middleware/auth"
)

// service is an interface for the order service layer.
type service interface {
	Create(ctx context.Context, userID int64, items []order.NewItem, paymentMethod string) (*order.Order, error)
	GetByID(ctx context.Context, orderID int64) (*order.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]order.Order, error)
	ListAll(ctx context.Context) ([]order.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, rawStatus string) (*order.Order, error)
}

// itemInCreateOrderRequest represents an item in a checkout request.
type itemInCreateOrderRequest struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int   `json:"quantity"   validate:"gt=0"`
}

// createOrderRequest represents a checkout request.
type createOrderRequest struct {
	Items         []itemInCreateOrderRequest `json:"items"          validate:"required,min=1,dive"`
	PaymentMethod string                     `json:"payment_method" validate:"required"`
}

// Validate validates the checkout request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// CreateOrder handles the checkout request for the authenticated user.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	c, ok := auth.FromContext(r.Context())
	if !ok {
		httperr.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "token required"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := req.Validate(); err != nil {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	items := make([]order.NewItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.NewItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	created, err := service.Create(r.Context(), c.UserID, items, req.PaymentMethod)
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	httperr.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "order created",
		"orderId": created.ID,
	})
}

// GetOrder fetches a single order with its items. Any authenticated user
// may fetch any order by id; ownership is not checked.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := idParam(r)
	if !ok {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	found, err := service.GetByID(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	httperr.WriteJSON(w, http.StatusOK, found)
}

// ListOrders returns the authenticated user's orders with items, newest
// first.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	c, ok := auth.FromContext(r.Context())
	if !ok {
		httperr.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "token required"})
		return
	}

	orders, err := service.ListByUser(r.Context(), c.UserID)
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	httperr.WriteJSON(w, http.StatusOK, orders)
}

// ListAllOrders returns every order across all users with owner names.
// The admin role requirement is enforced by the route middleware.
func ListAllOrders(w http.ResponseWriter, r *http.Request, service service) {
	orders, err := service.ListAll(r.Context())
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	httperr.WriteJSON(w, http.StatusOK, orders)
}

// orderSummary is the condensed per-order view of the my-orders endpoint.
type orderSummary struct {
	ID        int64                 `json:"id"`
	Status    string                `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
	UserName  string                `json:"user_name"`
	Items     []orderitem.OrderItem `json:"items"`
}

// MyOrders returns the authenticated user's orders grouped with their
// items, newest first.
func MyOrders(w http.ResponseWriter, r *http.Request, service service) {
	c, ok := auth.FromContext(r.Context())
	if !ok {
		httperr.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "token required"})
		return
	}

	orders, err := service.ListByUser(r.Context(), c.UserID)
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	result := make([]orderSummary, 0, len(orders))
	for _, o := range orders {
		items := o.Items
		if items == nil {
			items = []orderitem.OrderItem{}
		}
		result = append(result, orderSummary{
			ID:        o.ID,
			Status:    o.Status.String(),
			CreatedAt: o.CreatedAt,
			UserName:  o.UserName,
			Items:     items,
		})
	}

	httperr.WriteJSON(w, http.StatusOK, result)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus moves an order to a new status from the fixed set.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := idParam(r)
	if !ok {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := validator.New().Struct(&req); err != nil {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	updated, err := service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	httperr.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "status updated",
		"order":   updated,
	})
}
