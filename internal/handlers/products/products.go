package products

//go:generate mockgen -source=products.go -destination=mock_products.go -package=products

import (
	"context"
	"net/http"
	"strconv"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"github.com/GlebRadaev/goodpang/internal/dto"
	"github.com/GlebRadaev/goodpang/pkg/utils"
)

type Service interface {
	List(ctx context.Context, categoryID *int, query string) ([]domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

type ProductHandler struct {
	productService Service
}

func New(productService Service) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// GetProducts godoc
//
//	@Summary		List orderable products
//	@Description	Search by name with query, or filter by a category and its direct children.
//	@Tags			Products
//	@Produce		json
//	@Param			category_id	query		int		false	"Category ID"
//	@Param			query		query		string	false	"Part of the product name"
//	@Success		200			{array}		dto.ProductResponseDTO
//	@Failure		400			{object}	utils.Response	"Invalid category ID"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/products [get]
func (h *ProductHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	var categoryID *int
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid category ID")
			return
		}
		categoryID = &id
	}

	products, err := h.productService.List(r.Context(), categoryID, r.URL.Query().Get("query"))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]dto.ProductResponseDTO, 0, len(products))
	for _, p := range products {
		response = append(response, dto.ProductResponseDTO{ID: p.ID, Name: p.Name, Price: p.Price})
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// GetCategories godoc
//
//	@Summary		List categories
//	@Description	Root categories with their direct children
//	@Tags			Products
//	@Produce		json
//	@Success		200	{array}		dto.CategoryResponseDTO
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/products/categories [get]
func (h *ProductHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.productService.Categories(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]dto.CategoryResponseDTO, 0, len(categories))
	for _, c := range categories {
		children := make([]dto.CategoryChildDTO, 0, len(c.Children))
		for _, child := range c.Children {
			children = append(children, dto.CategoryChildDTO{ID: child.ID, Name: child.Name})
		}
		response = append(response, dto.CategoryResponseDTO{ID: c.ID, Name: c.Name, Children: children})
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}
