package httpserver

import (
	"errors"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/storage"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/internal/util"
	"github.com/Skotchmaster/marketplace/pkg/logging"
)

type ReviewHTTP struct {
	Svc    *service.ReviewService
	Images *storage.Images
}

func (h *ReviewHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reviews.create")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.CreateReviewRequest
	if err := bind(c, l, "create_review", &req); err != nil {
		return err
	}
	rv, err := h.Svc.Create(ctx, userID, req)
	if err != nil {
		return fail(l, "create_review", err)
	}
	return c.JSON(http.StatusCreated, rv)
}

func (h *ReviewHTTP) Recent(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reviews.recent")

	rs, err := h.Svc.Recent(ctx, util.ParseIntDefault(c.QueryParam("limit"), service.DefaultRecentReviews))
	if err != nil {
		return fail(l, "recent_reviews", err)
	}
	return c.JSON(http.StatusOK, rs)
}

func (h *ReviewHTTP) ForProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reviews.for_product")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	page, err := h.Svc.ForProduct(ctx, id,
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))
	if err != nil {
		return fail(l, "product_reviews", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ReviewHTTP) Unreviewed(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.unreviewed")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	out, err := h.Svc.Unreviewed(ctx, userID)
	if err != nil {
		return fail(l, "unreviewed", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReviewHTTP) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "upload.review_image")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("image")
	if err != nil {
		l.Warn("upload_error", "status", 400, "reason", "missing image field", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	if fh.Size > storage.MaxImageSize {
		return echo.NewHTTPError(http.StatusBadRequest, storage.ErrTooLarge.Error())
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read image")
	}
	defer f.Close()

	p, err := h.Images.Save(ctx, userID, f)
	switch {
	case errors.Is(err, storage.ErrTooLarge), errors.Is(err, storage.ErrUnsupported):
		l.Warn("upload_error", "status", 400, "reason", err.Error())
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		l.Error("upload_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store image")
	}
	l.Info("upload_success", "path", p)
	return c.JSON(http.StatusCreated, transport.UploadResponse{Path: p})
}

func (h *ReviewHTTP) DeleteImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "upload.delete_review_image")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.DeleteImageRequest
	if err := bind(c, l, "delete_image", &req); err != nil {
		return err
	}
	err = h.Images.Delete(ctx, userID, req.Path)
	switch {
	case errors.Is(err, storage.ErrBadPath):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotOwner):
		l.Warn("delete_image_error", "status", 403, "reason", "not owner", "user_id", userID)
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case err != nil:
		l.Error("delete_image_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete image")
	}
	return c.NoContent(http.StatusNoContent)
}

// ServeImage streams a stored review image.
func (h *ReviewHTTP) ServeImage(c echo.Context) error {
	ctx := c.Request().Context()
	p := path.Join("/", h.Images.PublicPrefix, storage.ReviewPrefix, c.Param("name"))
	rc, ct, err := h.Images.Read(ctx, p)
	switch {
	case errors.Is(err, storage.ErrBadPath), errors.Is(err, storage.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "image not found")
	case err != nil:
		return fail(logging.FromContext(ctx), "serve_image", err)
	}
	defer rc.Close()
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, ct, rc)
}
