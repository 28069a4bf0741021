package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/internal/util"
	"github.com/Skotchmaster/marketplace/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func optionalID(c echo.Context, name string) (*uuid.UUID, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &id, nil
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_products")

	category, err := optionalID(c, "category")
	if err != nil {
		return err
	}
	vendor, err := optionalID(c, "vendor")
	if err != nil {
		return err
	}
	q := transport.ProductQuery{
		Page:       util.ParseIntDefault(c.QueryParam("page"), 1),
		Size:       util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
		CategoryID: category,
		VendorID:   vendor,
		Q:          c.QueryParam("q"),
		Sort:       c.QueryParam("sort"),
	}
	page, err := h.Svc.ListProducts(ctx, q)
	if err != nil {
		return fail(l, "list_products", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	page, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"),
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))
	if err != nil {
		return fail(l, "search", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return fail(logging.FromContext(ctx), "list_categories", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_category")

	var req transport.CreateCategoryRequest
	if err := bind(c, l, "create_category", &req); err != nil {
		return err
	}
	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return fail(l, "create_category", err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "vendor.create_product")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.CreateProductRequest
	if err := bind(c, l, "create_product", &req); err != nil {
		return err
	}
	p, err := h.Svc.CreateProduct(ctx, userID, req)
	if err != nil {
		return fail(l, "create_product", err)
	}
	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "vendor.update_product")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.PatchProductRequest
	if err := bind(c, l, "update_product", &req); err != nil {
		return err
	}
	p, err := h.Svc.UpdateProduct(ctx, userID, id, req)
	if err != nil {
		return fail(l, "update_product", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "vendor.delete_product")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(ctx, userID, id); err != nil {
		return fail(l, "delete_product", err)
	}
	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) VendorProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "vendor.list_products")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	page, err := h.Svc.VendorProducts(ctx, userID,
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))
	if err != nil {
		return fail(l, "vendor_products", err)
	}
	return c.JSON(http.StatusOK, page)
}
