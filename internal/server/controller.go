package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"shop-api/internal/models"
	pkgmdw "shop-api/internal/server/middleware"
	"shop-api/internal/usecase"
)

const (
	defaultPageNum  = 1
	defaultPageSize = 10
)

type Controller interface {
	CreateProduct(c echo.Context) error
	ListProducts(c echo.Context) error
	GetProduct(c echo.Context) error
	UpdateProduct(c echo.Context) error
	DeleteProduct(c echo.Context) error
	Health(c echo.Context) error
}

type controller struct {
	productUsecase usecase.ProductUsecase
}

func NewController(productUsecase usecase.ProductUsecase) Controller {
	return &controller{
		productUsecase: productUsecase,
	}
}

func (h *controller) CreateProduct(c echo.Context) error {
	actor := pkgmdw.CurrentUser(c)

	params := usecase.CreateProductParams{
		Name: c.FormValue("name"),
	}

	var err error
	if params.Price, err = parseFloatField(c.FormValue("price"), "price"); err != nil {
		return err
	}
	if params.Stock, err = parseIntField(c.FormValue("stock"), "stock"); err != nil {
		return err
	}

	if form, err := c.MultipartForm(); err == nil {
		for _, header := range form.File["images"] {
			content, err := readAttachment(header)
			if err != nil {
				return models.NewAppError(err.Error(), http.StatusBadRequest)
			}
			params.Files = append(params.Files, usecase.Attachment{
				FileName: header.Filename,
				Content:  content,
			})
		}
	}

	ctx := c.Request().Context()
	product, err := h.productUsecase.Create(ctx, actor, params)
	if err != nil {
		return asAppError(err)
	}

	return success(c, echo.Map{"newProduct": product})
}

func (h *controller) ListProducts(c echo.Context) error {
	actor := pkgmdw.CurrentUser(c)

	var query models.ListProductsQuery
	if err := c.Bind(&query); err != nil {
		return models.NewAppError("invalid query parameters", http.StatusBadRequest)
	}
	if err := c.Validate(query); err != nil {
		return models.NewAppError(err.Error(), http.StatusBadRequest)
	}
	query.PageNum = parsePage(c.QueryParam("page"), defaultPageNum)
	query.PageSize = parsePage(c.QueryParam("limit"), defaultPageSize)

	ctx := c.Request().Context()
	page, err := h.productUsecase.List(ctx, actor, query)
	if err != nil {
		return asAppError(err)
	}

	return success(c, page)
}

func (h *controller) GetProduct(c echo.Context) error {
	actor := pkgmdw.CurrentUser(c)

	ctx := c.Request().Context()
	product, err := h.productUsecase.GetByID(ctx, actor, c.Param("id"))
	if err != nil {
		return asAppError(err)
	}

	return success(c, echo.Map{"product": product})
}

func (h *controller) UpdateProduct(c echo.Context) error {
	var req models.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return models.NewAppError("invalid request body", http.StatusBadRequest)
	}
	if err := c.Validate(req); err != nil {
		return models.NewAppError(err.Error(), http.StatusBadRequest)
	}

	ctx := c.Request().Context()
	if err := h.productUsecase.Update(ctx, c.Param("id"), req); err != nil {
		return asAppError(err)
	}

	return successMessage(c, "product updated")
}

func (h *controller) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.productUsecase.Delete(ctx, c.Param("id")); err != nil {
		return asAppError(err)
	}

	return successMessage(c, "product deleted")
}

func (h *controller) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "shop-api",
	})
}

// asAppError keeps typed AppErrors as-is and collapses everything else to a
// 400 carrying the underlying message.
func asAppError(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewAppError(err.Error(), http.StatusBadRequest)
}

// parsePage falls back to the default on absent or non-numeric values.
func parsePage(raw string, def int64) int64 {
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func parseFloatField(raw, field string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, models.NewAppError(fmt.Sprintf("invalid %s", field), http.StatusBadRequest)
	}
	return v, nil
}

func parseIntField(raw, field string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewAppError(fmt.Sprintf("invalid %s", field), http.StatusBadRequest)
	}
	return v, nil
}

func readAttachment(header *multipart.FileHeader) ([]byte, error) {
	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open attachment %q: %w", header.Filename, err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read attachment %q: %w", header.Filename, err)
	}
	return content, nil
}
