package userroutes

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/clouddelivery/backend/internal/transport/http/httperr"
)

// service is an interface for the user service layer.
type service interface {
	Delete(ctx context.Context, id int64) error
}

// DeleteUser removes a user by id. The admin role requirement is
// enforced by the route middleware.
func DeleteUser(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httperr.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	if err := service.Delete(r.Context(), id); err != nil {
		httperr.WriteError(w, err)
		return
	}

	httperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
