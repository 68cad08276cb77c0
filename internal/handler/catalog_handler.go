package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products, /categories, /sellers の公開API
type CatalogHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// ページ番号方式の一覧（count/next/previous/results）
type ProductListResponse struct {
	Count    int64           `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []model.Product `json:"results"`
}

func (h *CatalogHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/products", h.listProducts)
	g.GET("/products/:category_slug", h.listCategoryProducts)
	g.GET("/products/:category_slug/:product_slug", h.productDetail)
	g.GET("/categories", h.listCategories)
	g.GET("/sellers", h.listSellers)
	g.GET("/sellers/:slug", h.sellerDetail)
}

func (h *CatalogHandler) listProducts(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}
	q := c.QueryParam("q")

	out, err := h.uc.ListProducts(c.Request().Context(), page, q)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, ProductListResponse{
		Count:    out.Count,
		Next:     pageURL(c, out.NextPage),
		Previous: pageURL(c, out.PrevPage),
		Results:  out.Results,
	})
}

// 他のクエリは残してpageだけ差し替える
func pageURL(c echo.Context, page *int) *string {
	if page == nil {
		return nil
	}
	req := c.Request()
	query := url.Values{}
	for k, v := range req.URL.Query() {
		query[k] = v
	}
	if *page == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(*page))
	}

	u := url.URL{
		Scheme:   c.Scheme(),
		Host:     req.Host,
		Path:     req.URL.Path,
		RawQuery: query.Encode(),
	}
	s := u.String()
	return &s
}

func (h *CatalogHandler) listCategoryProducts(c echo.Context) error {
	list, err := h.uc.ListCategoryProducts(c.Request().Context(), c.Param("category_slug"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) productDetail(c echo.Context) error {
	p, err := h.uc.GetProduct(c.Request().Context(), c.Param("category_slug"), c.Param("product_slug"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHandler) listCategories(c echo.Context) error {
	list, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) listSellers(c echo.Context) error {
	list, err := h.uc.ListSellers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) sellerDetail(c echo.Context) error {
	s, err := h.uc.GetSeller(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
