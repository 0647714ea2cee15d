package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/dbtest"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/storefront/internal/models"
	"github.com/Skotchmaster/storefront/services/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/services/storefront/internal/service"
	"github.com/Skotchmaster/storefront/services/storefront/internal/transport"
)

var jwtSecret = []byte("storefront-test-secret")

type testServer struct {
	e    *echo.Echo
	repo *repo.GormRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := dbtest.Open(t, models.All()...)
	r := &repo.GormRepo{DB: db}
	reg := prometheus.NewRegistry()
	svcMetrics := service.NewMetrics(reg)
	pub := events.Nop{}

	e := NewEcho(slog.New(slog.NewJSONHandler(io.Discard, nil)), metrics.NewServerMetrics(reg, "storefront_test"))
	Register(e, &Deps{
		BasketHandler: &BasketHTTP{Svc: &service.BasketService{Repo: r, Events: pub}},
		OrderHandler: &OrderHTTP{
			Svc:      &service.OrderService{Repo: r, Events: pub, Metrics: svcMetrics},
			Payments: &service.PaymentService{Repo: r, Events: pub, Metrics: svcMetrics, Sandbox: true},
		},
		JWTSecret: jwtSecret,
		Gatherer:  reg,
		Ready:     r.Ping,
	})
	return &testServer{e: e, repo: r}
}

func bearer(t *testing.T, userID uint, role string) string {
	t.Helper()
	tok, err := tokens.SignAccess(jwtSecret, strconv.FormatUint(uint64(userID), 10), role, time.Now().Add(time.Minute))
	require.NoError(t, err)
	return "Bearer " + tok
}

func (s *testServer) do(t *testing.T, method, path, auth, body string) *httptest.ResponseRecorder {
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
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) product(t *testing.T, price string) models.Product {
	t.Helper()
	p := models.Product{Title: "Plov", Price: decimal.RequireFromString(price)}
	require.NoError(t, s.repo.DB.Create(&p).Error)
	return p
}

func TestCheckoutAndPayFlow(t *testing.T) {
	s := newTestServer(t)
	user := bearer(t, 1, tokens.RoleUser)
	p := s.product(t, "9.90")

	rec := s.do(t, http.MethodPost, "/basket/items/add/", user, `{"product_id":`+strconv.Itoa(int(p.ID))+`,"quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	basket := decode[transport.Basket](t, rec)
	assert.Equal(t, "19.80", basket.TotalPrice)

	rec = s.do(t, http.MethodGet, "/basket/items/", user, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[transport.Basket](t, rec).Items, 1)

	rec = s.do(t, http.MethodPost, "/checkout/", user, `{"basket_id":`+strconv.Itoa(int(basket.ID))+`}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[transport.CheckoutResponse](t, rec)
	assert.Equal(t, "19.80", created.TotalPrice)
	assert.Equal(t, "Created", created.Status)

	orderPath := "/orders/" + strconv.Itoa(int(created.OrderID)) + "/"
	payPath := "/pay-order/" + strconv.Itoa(int(created.OrderID)) + "/"

	rec = s.do(t, http.MethodPost, payPath, user, `{"payment_method":"Card","card_number":"5500000000000004","card_name":"A B","card_expiry":"01/30","card_cvv":"123"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "card declined", decode[map[string]string](t, rec)["detail"])

	rec = s.do(t, http.MethodPost, payPath, user, `{"payment_method":"Card","card_number":"4242424242424242","card_name":"A B","card_expiry":"01/30","card_cvv":"123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	paid := decode[transport.PayResponse](t, rec)
	assert.Equal(t, "Paid", paid.Status)
	require.NotNil(t, paid.TransactionID)
	assert.Len(t, *paid.TransactionID, 12)

	rec = s.do(t, http.MethodGet, orderPath, user, "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[transport.OrderDetail](t, rec)
	assert.Equal(t, "19.80", detail.Subtotal)
	assert.Equal(t, "Paid", detail.Status)

	rec = s.do(t, http.MethodGet, orderPath+"receipt/", user, "")
	require.Equal(t, http.StatusOK, rec.Code)
	receipt := decode[transport.Receipt](t, rec)
	assert.Equal(t, *paid.TransactionID, *receipt.TransactionID)
	assert.Equal(t, "9.90", receipt.Lines[0].UnitPrice)

	rec = s.do(t, http.MethodGet, "/orders", user, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]transport.OrderSummary](t, rec), 1)
}

func TestErrorsMapToStatusCodes(t *testing.T) {
	s := newTestServer(t)
	owner := bearer(t, 1, tokens.RoleUser)
	other := bearer(t, 2, tokens.RoleUser)
	p := s.product(t, "1.00")

	rec := s.do(t, http.MethodPost, "/basket/items/add", owner, `{"product_id":`+strconv.Itoa(int(p.ID))+`,"quantity":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	basketID := decode[transport.Basket](t, rec).ID

	rec = s.do(t, http.MethodPost, "/checkout", owner, `{"basket_id":`+strconv.Itoa(int(basketID))+`}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := strconv.Itoa(int(decode[transport.CheckoutResponse](t, rec).OrderID))

	t.Run("unauthenticated", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/orders/", "", "").Code)
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/orders/", "Bearer junk", "").Code)
	})

	t.Run("foreign order", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/orders/"+orderID+"/", other, "").Code)
		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/orders/"+orderID+"/receipt/", other, "").Code)
		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/pay-order/"+orderID+"/", other, `{"payment_method":"Cash"}`).Code)
	})

	t.Run("empty basket", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/checkout/", owner, `{"basket_id":`+strconv.Itoa(int(basketID))+`}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "basket is empty", decode[map[string]string](t, rec)["detail"])
	})

	t.Run("field errors", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/pay-order/"+orderID+"/", owner, `{"payment_method":"Card"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[map[string]map[string]string](t, rec)
		assert.Equal(t, "required", body["errors"]["card_number"])

		rec = s.do(t, http.MethodPost, "/basket/items/add/", owner, `{"product_id":`+strconv.Itoa(int(p.ID))+`,"quantity":0}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[map[string]map[string]string](t, rec)["errors"], "quantity")
	})

	t.Run("missing basket item", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/basket/items/999/", owner, "").Code)
		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/basket/items/abc/", owner, "").Code)
	})

	t.Run("admin status", func(t *testing.T) {
		path := "/orders/" + orderID + "/status/"
		assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPatch, path, owner, `{"status":"Paid"}`).Code)

		admin := bearer(t, 99, tokens.RoleAdmin)
		rec := s.do(t, http.MethodPatch, path, admin, `{"status":"Delivered"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.do(t, http.MethodPatch, path, admin, `{"status":"Paid"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "an unpaid order cannot be marked paid by hand")

		rec = s.do(t, http.MethodPost, "/pay-order/"+orderID+"/", owner, `{"payment_method":"Cash"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = s.do(t, http.MethodPatch, path, admin, `{"status":"Paid"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		summary := decode[transport.OrderSummary](t, rec)
		assert.Equal(t, "Paid", summary.Status)
		assert.Equal(t, "Cash", summary.PaymentMethod)
		require.NotNil(t, summary.TransactionID)
		assert.Len(t, *summary.TransactionID, 12)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/live", "", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/ready", "", "").Code)

	rec := s.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_storefront_test_http_requests_total")
}
