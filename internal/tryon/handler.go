package tryon

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dresscode-shop/gateway/internal/api"
)

const ineligibleMessage = "Virtual try-on is only available for clothing items (t-shirts, pants, dresses, etc.). Accessories are not supported."

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// TryOn handles POST /api/v1/try-on. Malformed requests and ineligible
// categories are rejected here, before any collaborator is contacted.
func (h *Handler) TryOn(w http.ResponseWriter, r *http.Request) {
	var req TryOnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError("Missing image or garment URL"))
		return
	}

	if !IsEligible(req.Category) {
		api.HandleError(w, api.NewValidationError(ineligibleMessage))
		return
	}

	url, err := h.svc.TryOn(r.Context(), req)
	if err != nil {
		slog.Error("try-on", "category", req.Category, "error", err)
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, TryOnResponse{Result: url})
}
