package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/dbtest"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/catalog/internal/models"
	"github.com/Skotchmaster/storefront/services/catalog/internal/repo"
	"github.com/Skotchmaster/storefront/services/catalog/internal/service"
	"github.com/Skotchmaster/storefront/services/catalog/internal/transport"
)

var jwtSecret = []byte("catalog-test-secret")

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	r := &repo.GormRepo{DB: dbtest.Open(t, models.All()...)}
	reg := prometheus.NewRegistry()

	e := NewEcho(slog.New(slog.NewJSONHandler(io.Discard, nil)), metrics.NewServerMetrics(reg, "catalog_test"))
	Register(e, &Deps{
		CatalogHandler: &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: events.Nop{}}},
		JWTSecret:      jwtSecret,
		Gatherer:       reg,
		Ready:          r.Ping,
	})
	return e
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := tokens.SignAccess(jwtSecret, "1", role, time.Now().Add(time.Minute))
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(t *testing.T, e *echo.Echo, method, path, auth, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAdminCatalogFlow(t *testing.T) {
	e := newTestServer(t)
	admin := bearer(t, tokens.RoleAdmin)

	rec := do(t, e, http.MethodPost, "/catalog/categories", admin, `{"title":"Pizza"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodPost, "/catalog/products/", admin,
		`{"category_id":1,"title":"Margherita","price":"12.5","new_price":"10","rating":"4.5"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p transport.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "12.50", p.Price)
	require.NotNil(t, p.NewPrice)
	assert.Equal(t, "10.00", *p.NewPrice)
	assert.Equal(t, "4.5", p.Rating)
	require.NotNil(t, p.Category)
	assert.Equal(t, "Pizza", p.Category.Title)

	rec = do(t, e, http.MethodGet, "/catalog/products?category=piz&min_price=12", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page transport.ProductPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Meta.Total)
	assert.False(t, page.Meta.HasNext)

	rec = do(t, e, http.MethodGet, "/catalog/products/search?q=marg", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)

	rec = do(t, e, http.MethodPatch, "/catalog/products/1", admin, `{"clear_new_price":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Nil(t, p.NewPrice)

	rec = do(t, e, http.MethodDelete, "/catalog/products/1", admin, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, e, http.MethodGet, "/catalog/products/1", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogErrors(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/catalog/products", "", `{"title":"x","price":"1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, e, http.MethodPost, "/catalog/products", bearer(t, tokens.RoleUser), `{"title":"x","price":"1"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, e, http.MethodGet, "/catalog/products?min_price=cheap", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "min_price")

	rec = do(t, e, http.MethodGet, "/catalog/products/search", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodGet, "/catalog/products/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodGet, "/catalog/categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestServer(t)
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/health/ready", "", "").Code)

	rec := do(t, e, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_catalog_test_http_requests_total")
}

func TestIndexPage(t *testing.T) {
	e := newTestServer(t)
	admin := bearer(t, tokens.RoleAdmin)

	rec := do(t, e, http.MethodGet, "/catalog/index", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"top_banner":null`)

	body := `{"title":"Summer sale","image":"banners/summer.png","location":"index_head"}`
	assert.Equal(t, http.StatusUnauthorized, do(t, e, http.MethodPost, "/catalog/banners", "", body).Code)
	assert.Equal(t, http.StatusForbidden, do(t, e, http.MethodPost, "/catalog/banners", bearer(t, tokens.RoleUser), body).Code)

	rec = do(t, e, http.MethodPost, "/catalog/banners", admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodPost, "/catalog/banners", admin, `{"title":"x","image":"y","location":"footer"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPost, "/catalog/categories", admin, `{"title":"Pizza"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, e, http.MethodPost, "/catalog/products", admin, `{"category_id":1,"title":"Margherita","price":"12.5"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/catalog/index/?size=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var index transport.IndexPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &index))
	require.Len(t, index.TopBanner, 1)
	assert.Equal(t, "banners/summer.png", index.TopBanner[0].Image)
	assert.Nil(t, index.MiddleBanner)
	require.Len(t, index.Categories, 1)
	require.Len(t, index.Products.Data, 1)
	assert.Equal(t, 5, index.Products.Meta.Size)

	rec = do(t, e, http.MethodGet, "/catalog/index?min_price=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
