package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackexport/internal/core/apperror"
	appctx "snackexport/internal/core/context"
	"snackexport/internal/core/id"
	"snackexport/internal/domain/auth"
	"snackexport/internal/domain/masterdata"
	"snackexport/internal/domain/memstore"
)

type apiFixture struct {
	router    *gin.Engine
	harness   *memstore.Harness
	productID id.ID
	userToken string
	adminTok  string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	productID := id.New()
	products := masterdata.StaticProducts{
		productID: {ID: productID, Name: "Rice Crackers"},
	}
	h := memstore.NewHarness(products, masterdata.DefaultSettings())

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	userToken, _, err := jwtService.GenerateAccessToken("u-1", "sales@example.com", []string{"sales"}, false)
	require.NoError(t, err)
	adminToken, _, err := jwtService.GenerateAccessToken("u-admin", "ops@example.com", []string{appctx.RoleAdmin}, true)
	require.NoError(t, err)

	router, err := NewRouter(RouterConfig{
		Engine:       h.Engine,
		JWTValidator: jwtService,
	})
	require.NoError(t, err)

	return &apiFixture{
		router:    router,
		harness:   h,
		productID: productID,
		userToken: userToken,
		adminTok:  adminToken,
	}
}

func (f *apiFixture) call(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (f *apiFixture) salesOrderBody(qty int) string {
	return `{
		"customerId": "` + id.New().String() + `",
		"orderDate": "2026-03-02",
		"destinationPort": "Yokohama",
		"tradeTerm": "FOB",
		"currency": "USD",
		"paymentMethod": "TT",
		"items": [{"productId": "` + f.productID.String() + `", "quantity": ` + jsonInt(qty) + `, "unitPrice": "2.50"}]
	}`
}

func jsonInt(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestRouter_RequiresAuth(t *testing.T) {
	f := newAPIFixture(t)

	status, body := f.call(t, http.MethodGet, "/api/v1/sales-orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, apperror.CodeUnauthorized, body["code"])

	status, _ = f.call(t, http.MethodGet, "/api/v1/sales-orders", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_SalesOrderLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	status, created := f.call(t, http.MethodPost, "/api/v1/sales-orders", f.userToken, f.salesOrderBody(120))
	require.Equal(t, http.StatusCreated, status, created)
	assert.Equal(t, "draft", created["status"])
	assert.Equal(t, "u-1", created["createdBy"])
	assert.NotEmpty(t, created["number"])
	orderID := created["id"].(string)

	status, got := f.call(t, http.MethodGet, "/api/v1/sales-orders/"+orderID, f.userToken, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(120), got["totalQuantity"])

	status, list := f.call(t, http.MethodGet, "/api/v1/sales-orders?status=draft", f.userToken, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), list["totalCount"])

	status, confirmed := f.call(t, http.MethodPost, "/api/v1/sales-orders/"+orderID+"/confirm", f.userToken, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "purchasing", confirmed["status"])

	status, body := f.call(t, http.MethodPost, "/api/v1/sales-orders/"+orderID+"/confirm", f.userToken, "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, apperror.CodeOrderNotConfirmable, body["code"])

	status, readiness := f.call(t, http.MethodGet, "/api/v1/sales-orders/"+orderID+"/readiness", f.userToken, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, readiness["isReady"])

	status, _ = f.call(t, http.MethodGet, "/api/v1/sales-orders/"+orderID+"/fulfillment", f.userToken, "")
	assert.Equal(t, http.StatusOK, status)

	assert.NotEmpty(t, f.harness.Journal.For(id.MustParse(orderID)))
}

func TestRouter_StatusOverrideIsAdminOnly(t *testing.T) {
	f := newAPIFixture(t)
	_, created := f.call(t, http.MethodPost, "/api/v1/sales-orders", f.userToken, f.salesOrderBody(10))
	orderID := created["id"].(string)
	path := "/api/v1/sales-orders/" + orderID + "/status"

	status, body := f.call(t, http.MethodPost, path, f.userToken, `{"status":"abnormal"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, apperror.CodeForbidden, body["code"])

	status, body = f.call(t, http.MethodPost, path, f.adminTok, `{"status":"abnormal"}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "abnormal", body["status"])
}

func TestRouter_RequestErrors(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed id", http.MethodGet, "/api/v1/sales-orders/not-a-uuid", "", http.StatusBadRequest, apperror.CodeValidation},
		{"unknown order", http.MethodGet, "/api/v1/sales-orders/" + id.New().String(), "", http.StatusNotFound, apperror.CodeNotFound},
		{"missing items", http.MethodPost, "/api/v1/sales-orders", `{"customerId":"` + id.New().String() + `","destinationPort":"Busan","tradeTerm":"FOB","currency":"USD","paymentMethod":"TT"}`, http.StatusBadRequest, apperror.CodeValidation},
		{"bad date", http.MethodPost, "/api/v1/sales-orders", `{"orderDate":"03/02/2026"}`, http.StatusBadRequest, apperror.CodeValidation},
		{"limit too large", http.MethodGet, "/api/v1/sales-orders?limit=9999", "", http.StatusBadRequest, apperror.CodeValidation},
		{"bad container type", http.MethodPost, "/api/v1/container-plans", `{"salesOrderIds":["` + id.New().String() + `"],"containerType":"53FT","containerCount":1,"destinationPort":"Busan"}`, http.StatusBadRequest, apperror.CodeValidation},
		{"unknown plan for outbound", http.MethodPost, "/api/v1/outbound-orders", `{"containerPlanId":"` + id.New().String() + `"}`, http.StatusNotFound, apperror.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := f.call(t, tt.method, tt.path, f.userToken, tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}

func TestRouter_ReadEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	paths := []string{
		"/api/v1/purchase-orders",
		"/api/v1/receiving-notes",
		"/api/v1/inventory",
		"/api/v1/inventory/by-product",
		"/api/v1/inventory/by-sales-order/" + id.New().String(),
		"/api/v1/container-plans",
		"/api/v1/outbound-orders",
		"/api/v1/logistics",
		"/api/v1/logistics/kanban",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, p, nil)
			req.Header.Set("Authorization", "Bearer "+f.userToken)
			w := httptest.NewRecorder()
			f.router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		})
	}
}
