package orderroutes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clouddelivery/backend/internal/errs"
	"github.com/clouddelivery/backend/internal/service/models/claims"
	"github.com/clouddelivery/backend/internal/service/models/order"
	"github.com/clouddelivery/backend/internal/service/models/role"
	"github.com/clouddelivery/backend/internal/service/models/status"
	"github.com/clouddelivery/backend/internal/transport/http/middleware/auth"
)

type fakeOrderService struct {
	createdUserID  int64
	createdItems   []order.NewItem
	createdPayment string
	createErr      error

	updatedID     int64
	updatedStatus string
	updateErr     error
}

func (s *fakeOrderService) Create(_ context.Context, userID int64, items []order.NewItem, paymentMethod string) (*order.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.createdUserID = userID
	s.createdItems = items
	s.createdPayment = paymentMethod
	return &order.Order{ID: 10, UserID: userID, Status: status.StatusPending}, nil
}

func (s *fakeOrderService) GetByID(_ context.Context, orderID int64) (*order.Order, error) {
	if orderID != 10 {
		return nil, errs.ErrNotFound
	}
	return &order.Order{ID: 10, UserID: 7}, nil
}

func (s *fakeOrderService) ListByUser(_ context.Context, userID int64) ([]order.Order, error) {
	return []order.Order{{ID: 10, UserID: userID}}, nil
}

func (s *fakeOrderService) ListAll(_ context.Context) ([]order.Order, error) {
	return []order.Order{{ID: 10, UserID: 7, UserName: "Alice"}}, nil
}

func (s *fakeOrderService) UpdateStatus(_ context.Context, orderID int64, rawStatus string) (*order.Order, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.updatedID = orderID
	s.updatedStatus = rawStatus
	return &order.Order{ID: orderID, Status: status.Status(rawStatus)}, nil
}

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	c := &claims.Claims{UserID: 7, Email: "alice@example.com", Role: role.RoleCustomer}
	return req.WithContext(auth.NewContext(req.Context(), c))
}

func TestCreateOrder_Created(t *testing.T) {
	svc := &fakeOrderService{}
	body, _ := json.Marshal(map[string]any{
		"items": []map[string]any{
			{"product_id": 1, "quantity": 2},
		},
		"payment_method": "cash",
	})

	rec := httptest.NewRecorder()
	CreateOrder(rec, authedRequest(http.MethodPost, "/api/orders", body), svc)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(7), svc.createdUserID)
	assert.Equal(t, "cash", svc.createdPayment)
	require.Len(t, svc.createdItems, 1)
	assert.Equal(t, order.NewItem{ProductID: 1, Quantity: 2}, svc.createdItems[0])

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "order created", resp["message"])
	assert.Equal(t, float64(10), resp["orderId"])
}

func TestCreateOrder_RejectsEmptyItems(t *testing.T) {
	svc := &fakeOrderService{}
	body, _ := json.Marshal(map[string]any{
		"items":          []map[string]any{},
		"payment_method": "cash",
	})

	rec := httptest.NewRecorder()
	CreateOrder(rec, authedRequest(http.MethodPost, "/api/orders", body), svc)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.createdUserID)
}

func TestCreateOrder_RejectsZeroQuantity(t *testing.T) {
	svc := &fakeOrderService{}
	body, _ := json.Marshal(map[string]any{
		"items": []map[string]any{
			{"product_id": 1, "quantity": 0},
		},
		"payment_method": "cash",
	})

	rec := httptest.NewRecorder()
	CreateOrder(rec, authedRequest(http.MethodPost, "/api/orders", body), svc)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder_RejectsMalformedBody(t *testing.T) {
	svc := &fakeOrderService{}

	rec := httptest.NewRecorder()
	CreateOrder(rec, authedRequest(http.MethodPost, "/api/orders", []byte("{not json")), svc)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder_UnknownProductIsNotFound(t *testing.T) {
	svc := &fakeOrderService{createErr: errs.ErrNotFound}
	body, _ := json.Marshal(map[string]any{
		"items": []map[string]any{
			{"product_id": 99, "quantity": 1},
		},
		"payment_method": "cash",
	})

	rec := httptest.NewRecorder()
	CreateOrder(rec, authedRequest(http.MethodPost, "/api/orders", body), svc)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func withIDParam(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetOrder_NotFound(t *testing.T) {
	svc := &fakeOrderService{}

	req := withIDParam(authedRequest(http.MethodGet, "/api/orders/99", nil), "99")
	rec := httptest.NewRecorder()
	GetOrder(rec, req, svc)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetOrder_InvalidID(t *testing.T) {
	svc := &fakeOrderService{}

	req := withIDParam(authedRequest(http.MethodGet, "/api/orders/abc", nil), "abc")
	rec := httptest.NewRecorder()
	GetOrder(rec, req, svc)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatus_OK(t *testing.T) {
	svc := &fakeOrderService{}
	body, _ := json.Marshal(map[string]string{"status": "preparing"})

	req := withIDParam(authedRequest(http.MethodPatch, "/api/orders/10/status", body), "10")
	rec := httptest.NewRecorder()
	UpdateStatus(rec, req, svc)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(10), svc.updatedID)
	assert.Equal(t, "preparing", svc.updatedStatus)
}

func TestUpdateStatus_UnknownStatusIsBadRequest(t *testing.T) {
	svc := &fakeOrderService{updateErr: errs.ErrInvalidArgument}
	body, _ := json.Marshal(map[string]string{"status": "shipped"})

	req := withIDParam(authedRequest(http.MethodPatch, "/api/orders/10/status", body), "10")
	rec := httptest.NewRecorder()
	UpdateStatus(rec, req, svc)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMyOrders_ReturnsSummaries(t *testing.T) {
	svc := &fakeOrderService{}

	rec := httptest.NewRecorder()
	MyOrders(rec, authedRequest(http.MethodGet, "/api/orders/my-orders", nil), svc)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, float64(10), resp[0]["id"])
	assert.NotNil(t, resp[0]["items"])
}
