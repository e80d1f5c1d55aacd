package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-api/internal/models"
	pkgmdw "shop-api/internal/server/middleware"
	"shop-api/internal/usecase"
)

type stubUsecase struct {
	product *models.Product
	page    *models.ProductPage
	err     error

	createActor  *models.User
	createParams usecase.CreateProductParams
	listQuery    models.ListProductsQuery
	getID        string
	updateID     string
	updateReq    models.UpdateProductRequest
	deleteID     string
}

func (s *stubUsecase) Create(_ context.Context, actor *models.User, params usecase.CreateProductParams) (*models.Product, error) {
	s.createActor = actor
	s.createParams = params
	return s.product, s.err
}

func (s *stubUsecase) List(_ context.Context, _ *models.User, query models.ListProductsQuery) (*models.ProductPage, error) {
	s.listQuery = query
	return s.page, s.err
}

func (s *stubUsecase) GetByID(_ context.Context, _ *models.User, id string) (*models.Product, error) {
	s.getID = id
	return s.product, s.err
}

func (s *stubUsecase) Update(_ context.Context, id string, req models.UpdateProductRequest) error {
	s.updateID = id
	s.updateReq = req
	return s.err
}

func (s *stubUsecase) Delete(_ context.Context, id string) error {
	s.deleteID = id
	return s.err
}

func newTestContext(t *testing.T, req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	e := echo.New()
	e.Validator = pkgmdw.NewValidator()
	c := e.NewContext(req, rec)
	c.Set("user", &models.User{
		ID:     primitive.NewObjectID(),
		Name:   "budi",
		Role:   "Seller",
		ShopID: primitive.NewObjectID(),
	})
	return c, rec
}

func TestListProductsDefaults(t *testing.T) {
	stub := &stubUsecase{page: &models.ProductPage{}}
	h := NewController(stub)

	req := httptest.NewRequest(http.MethodGet, "/?page=abc&limit=0&productname=pen", nil)
	c, rec := newTestContext(t, req)

	require.NoError(t, h.ListProducts(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "pen", stub.listQuery.ProductName)
	assert.Equal(t, int64(1), stub.listQuery.PageNum)
	assert.Equal(t, int64(10), stub.listQuery.PageSize)
}

func TestListProductsExplicitPage(t *testing.T) {
	stub := &stubUsecase{page: &models.ProductPage{}}
	h := NewController(stub)

	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=25&shop=warung&username=bu", nil)
	c, _ := newTestContext(t, req)

	require.NoError(t, h.ListProducts(c))
	assert.Equal(t, int64(3), stub.listQuery.PageNum)
	assert.Equal(t, int64(25), stub.listQuery.PageSize)
	assert.Equal(t, "warung", stub.listQuery.Shop)
	assert.Equal(t, "bu", stub.listQuery.Username)
}

func TestListProductsFilterTooLong(t *testing.T) {
	stub := &stubUsecase{page: &models.ProductPage{}}
	h := NewController(stub)

	filter := strings.Repeat("x", 101)
	req := httptest.NewRequest(http.MethodGet, "/?productname="+filter, nil)
	c, _ := newTestContext(t, req)

	err := h.ListProducts(c)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	assert.Contains(t, appErr.Message, "productname")
}

func TestCreateProductMultipart(t *testing.T) {
	product := &models.Product{
		ID:       primitive.NewObjectID(),
		Name:     "Pen",
		Price:    10,
		Stock:    5,
		ImageURL: []string{"https://ik.example.com/a.png"},
	}
	stub := &stubUsecase{product: product}
	h := NewController(stub)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("name", "Pen"))
	require.NoError(t, writer.WriteField("price", "10"))
	require.NoError(t, writer.WriteField("stock", "5"))
	part, err := writer.CreateFormFile("images", "pen.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake png bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	c, rec := newTestContext(t, req)

	require.NoError(t, h.CreateProduct(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "Pen", stub.createParams.Name)
	assert.Equal(t, float64(10), stub.createParams.Price)
	assert.Equal(t, 5, stub.createParams.Stock)
	require.Len(t, stub.createParams.Files, 1)
	assert.Equal(t, "pen.png", stub.createParams.Files[0].FileName)
	assert.Equal(t, []byte("fake png bytes"), stub.createParams.Files[0].Content)
	require.NotNil(t, stub.createActor)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			NewProduct models.Product `json:"newProduct"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Success", resp.Status)
	assert.Equal(t, "Pen", resp.Data.NewProduct.Name)
	assert.Equal(t, []string{"https://ik.example.com/a.png"}, resp.Data.NewProduct.ImageURL)
}

func TestCreateProductInvalidPrice(t *testing.T) {
	stub := &stubUsecase{}
	h := NewController(stub)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("price", "ten"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	c, _ := newTestContext(t, req)

	err := h.CreateProduct(c)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	assert.Equal(t, "invalid price", appErr.Message)
}

func TestGetProductEnvelope(t *testing.T) {
	product := &models.Product{ID: primitive.NewObjectID(), Name: "Pen"}
	stub := &stubUsecase{product: product}
	h := NewController(stub)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c, rec := newTestContext(t, req)
	c.SetParamNames("id")
	c.SetParamValues(product.ID.Hex())

	require.NoError(t, h.GetProduct(c))
	assert.Equal(t, product.ID.Hex(), stub.getID)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Product models.Product `json:"product"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Success", resp.Status)
	assert.Equal(t, "Pen", resp.Data.Product.Name)
}

func TestUpdateProductPartialBody(t *testing.T) {
	stub := &stubUsecase{}
	h := NewController(stub)

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"price": 12.5}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, rec := newTestContext(t, req)
	c.SetParamNames("id")
	c.SetParamValues("abc123")

	require.NoError(t, h.UpdateProduct(c))
	assert.Equal(t, "abc123", stub.updateID)
	require.NotNil(t, stub.updateReq.Price)
	assert.Equal(t, 12.5, *stub.updateReq.Price)
	assert.Nil(t, stub.updateReq.Name)
	assert.Nil(t, stub.updateReq.Stock)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Success", resp.Status)
	assert.Equal(t, "product updated", resp.Message)
}

func TestUpdateProductNegativePrice(t *testing.T) {
	stub := &stubUsecase{}
	h := NewController(stub)

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"price": -1}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, _ := newTestContext(t, req)
	c.SetParamNames("id")
	c.SetParamValues("abc123")

	err := h.UpdateProduct(c)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	assert.Contains(t, appErr.Message, "price")
	assert.Empty(t, stub.updateID)
}

func TestUpdateProductEmptyName(t *testing.T) {
	stub := &stubUsecase{}
	h := NewController(stub)

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"name": ""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, _ := newTestContext(t, req)
	c.SetParamNames("id")
	c.SetParamValues("abc123")

	err := h.UpdateProduct(c)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	assert.Contains(t, appErr.Message, "name")
}

func TestDeleteProductMessage(t *testing.T) {
	stub := &stubUsecase{}
	h := NewController(stub)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	c, rec := newTestContext(t, req)
	c.SetParamNames("id")
	c.SetParamValues("abc123")

	require.NoError(t, h.DeleteProduct(c))
	assert.Equal(t, "abc123", stub.deleteID)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "product deleted", resp.Message)
}

func TestHealth(t *testing.T) {
	h := NewController(&stubUsecase{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"shop-api"}`, rec.Body.String())
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Warnf(string, ...interface{})  {}
func (noopLogger) Errorf(string, ...interface{}) {}
func (noopLogger) Debugw(string, ...interface{}) {}
func (noopLogger) Infow(string, ...interface{})  {}
func (noopLogger) Warnw(string, ...interface{})  {}
func (noopLogger) Errorw(string, ...interface{}) {}

func TestErrorHandlerAppError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	handler := ErrorHandler(noopLogger{})
	handler(models.NewAppError("product not found", http.StatusNotFound), c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":"Error","message":"product not found"}`, rec.Body.String())
}

func TestErrorHandlerUnknownError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	handler := ErrorHandler(noopLogger{})
	handler(assert.AnError, c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":"Error","message":"Internal Server Error"}`, rec.Body.String())
}
