package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"
)

type homeData struct {
	Categories []model.Category
}

type productsData struct {
	Page          usecase.ProductPage
	Query         string
	CategorySlugs map[int64]string
}

type categoryData struct {
	CategorySlug string
	Products     []model.Product
}

type productData struct {
	Product usecase.ProductDetail
}

func (p *Pages) home(c echo.Context) error {
	return p.renderHome(c, http.StatusOK, "", nil, nil)
}

func (p *Pages) renderHome(c echo.Context, code int, flash string, fields, form map[string]string) error {
	cats, err := p.deps.Catalog.ListCategories(c.Request().Context())
	if err != nil {
		return p.fail(c, err)
	}
	pd := p.data(c, "", homeData{Categories: cats})
	pd.Flash = flash
	pd.Fields = fields
	pd.Form = form
	return p.render(c, code, "home", pd)
}

// ホームの問い合わせフォーム
func (p *Pages) submitEnquiry(c echo.Context) error {
	in := usecase.EnquiryInput{
		Name:    c.FormValue("name"),
		Email:   c.FormValue("email"),
		Subject: c.FormValue("subject"),
		Message: c.FormValue("message"),
	}

	var userID *int64
	if id := currentUserID(c); id > 0 {
		userID = &id
	}

	if _, err := p.deps.Enquiry.Submit(c.Request().Context(), userID, in); err != nil {
		if fields, ok := fieldErrors(err); ok {
			return p.renderHome(c, http.StatusBadRequest, "", fields, formValues(c, "name", "email", "subject", "message"))
		}
		return p.fail(c, err)
	}
	return p.renderHome(c, http.StatusOK, "Thanks! We received your enquiry.", nil, nil)
}

func (p *Pages) products(c echo.Context) error {
	ctx := c.Request().Context()

	page := 1
	if v := c.QueryParam("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p.fail(c, usecase.NewHTTPError(http.StatusNotFound, "invalid page"))
		}
		page = n
	}
	q := strings.TrimSpace(c.QueryParam("q"))

	out, err := p.deps.Catalog.ListProducts(ctx, page, q)
	if err != nil {
		return p.fail(c, err)
	}

	//商品URLにカテゴリのslugが要る
	cats, err := p.deps.Catalog.ListCategories(ctx)
	if err != nil {
		return p.fail(c, err)
	}
	slugs := make(map[int64]string, len(cats))
	for _, cat := range cats {
		slugs[cat.ID] = cat.Slug
	}

	return p.render(c, http.StatusOK, "products", p.data(c, "Products", productsData{Page: out, Query: q, CategorySlugs: slugs}))
}

func (p *Pages) category(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("category")

	list, err := p.deps.Catalog.ListCategoryProducts(ctx, slug)
	if err != nil {
		return p.fail(c, err)
	}

	title := slug
	if cats, err := p.deps.Catalog.ListCategories(ctx); err == nil {
		for _, cat := range cats {
			if cat.Slug == slug {
				title = cat.Name
				break
			}
		}
	}
	return p.render(c, http.StatusOK, "category", p.data(c, title, categoryData{CategorySlug: slug, Products: list}))
}

func (p *Pages) product(c echo.Context) error {
	d, err := p.deps.Catalog.GetProduct(c.Request().Context(), c.Param("category"), c.Param("product"))
	if err != nil {
		return p.fail(c, err)
	}
	return p.render(c, http.StatusOK, "product", p.data(c, d.Name, productData{Product: d}))
}
