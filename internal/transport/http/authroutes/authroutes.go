package authroutes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/clouddelivery/backend/internal/errs"
	"github.com/clouddelivery/backend/internal/service/models/user"
	"github.com/clouddelivery/backend/internal/transport/http/httperr"
	"github.com/clouddelivery/backend/internal/transport/http/middleware/auth"
)

// service is an interface for the auth service layer.
type service interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (string, *user.User, error)
}

// customersLister lists customer-role users.
type customersLister interface {
	ListCustomers(ctx context.Context) ([]user.User, error)
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register handles the registration request.
func Register(w http.ResponseWriter, r *http.Request, service service) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := validator.New().Struct(&req); err != nil {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := service.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		httperr.WriteError(w, err)
		return
	}

	httperr.WriteJSON(w, http.StatusCreated, map[string]string{"message": "user registered"})
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string        `json:"token"`
	User  loginUserInfo `json:"user"`
}

type loginUserInfo struct {
	Role  string `json:"role"`
	Email string `json:"email"`
}

// Login handles the authentication request. An unknown email answers 400
// while a wrong password answers 401, matching the published contract.
func Login(w http.ResponseWriter, r *http.Request, service service) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := validator.New().Struct(&req); err != nil {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	token, u, err := service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "user not found"})
			return
		}
		httperr.WriteError(w, err)
		return
	}

	httperr.WriteJSON(w, http.StatusOK, loginResponse{
		Token: token,
		User: loginUserInfo{
			Role:  u.Role.String(),
			Email: u.Email,
		},
	})
}

// Profile echoes the verified claims attached by the access guard.
func Profile(w http.ResponseWriter, r *http.Request) {
	c, ok := auth.FromContext(r.Context())
	if !ok {
		httperr.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "token required"})
		return
	}

	httperr.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "profile accessed",
		"user":    c,
	})
}

type customerInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ListCustomers returns id, name and email of every customer-role user.
func ListCustomers(w http.ResponseWriter, r *http.Request, lister customersLister) {
	users, err := lister.ListCustomers(r.Context())
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	result := make([]customerInfo, 0, len(users))
	for _, u := range users {
		result = append(result, customerInfo{ID: u.ID, Name: u.Name, Email: u.Email})
	}

	httperr.WriteJSON(w, http.StatusOK, result)
}
