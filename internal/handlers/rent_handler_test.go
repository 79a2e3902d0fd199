package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"rent-backend/internal/handlers"
	"rent-backend/internal/health"
	api "rent-backend/internal/http"
	"rent-backend/internal/models"
	"rent-backend/internal/services"
	"rent-backend/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() (*httptest.Server, *memory.Store) {
	store := memory.NewStore()
	store.AddTenant(&models.Tenant{ID: "t1", FirstName: "Asha", LastName: "Verma", Email: "asha@example.com"})
	store.AddRoom(&models.Room{ID: "r1", Number: "101", Type: "SINGLE", Floor: 1})
	store.AddRoom(&models.Room{ID: "r2", Number: "202", Type: "DOUBLE", Floor: 2})
	store.Assign("t1", "r1")

	svc := services.NewRentService(store, store)
	sweeper := services.NewOverdueSweeper(store)
	rentHandler := handlers.NewRentHandler(svc, sweeper)
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(nil))

	return httptest.NewServer(api.NewRouter(rentHandler, healthHandler)), store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-Id", "admin-1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func createRentHTTP(t *testing.T, baseURL string) map[string]any {
	t.Helper()
	resp := doJSON(t, http.MethodPost, baseURL+"/api/rents", map[string]any{
		"tenant_id":    "t1",
		"room_id":      "r1",
		"amount":       "1000",
		"period_start": "2025-07-01",
		"period_end":   "2025-07-31",
		"due_date":     "2025-07-05",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rent map[string]any
	decodeBody(t, resp, &rent)
	return rent
}

func TestRentEndpoints(t *testing.T) {
	server, _ := newTestServer()
	defer server.Close()

	rent := createRentHTTP(t, server.URL)
	rentID := rent["id"].(string)
	assert.Equal(t, "PENDING", rent["status"])

	t.Run("get", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/rents/"+rentID, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got map[string]any
		decodeBody(t, resp, &got)
		assert.Equal(t, rentID, got["id"])
		assert.NotNil(t, got["tenant"])
		assert.NotNil(t, got["room"])
	})

	t.Run("payment moves status", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/api/rents/"+rentID+"/payments", map[string]any{
			"amount": "400", "paid_at": "2025-07-03", "method": "UPI",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var result map[string]any
		decodeBody(t, resp, &result)
		updated := result["rent"].(map[string]any)
		assert.Equal(t, "PARTIAL", updated["status"])
	})

	t.Run("overpayment is 422", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/api/rents/"+rentID+"/payments", map[string]any{
			"amount": "9999", "paid_at": "2025-07-04", "method": "CASH",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("overlap is 409", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/api/rents", map[string]any{
			"tenant_id": "t1", "room_id": "r1", "amount": "500",
			"period_start": "2025-07-15", "period_end": "2025-08-15", "due_date": "2025-08-01",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("list with pagination metadata", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/rents?status=PARTIAL&page=1&limit=5", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var list map[string]any
		decodeBody(t, resp, &list)
		pagination := list["pagination"].(map[string]any)
		assert.Equal(t, float64(1), pagination["total"])
		assert.Equal(t, float64(5), pagination["limit"])
	})

	t.Run("invoice", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/rents/"+rentID+"/invoice", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var invoice map[string]any
		decodeBody(t, resp, &invoice)
		assert.Equal(t, "INV-101-2025-07", invoice["invoice_number"])
	})

	t.Run("summary", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/rents/summary?month=7&year=2025", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var summary map[string]any
		decodeBody(t, resp, &summary)
		assert.Equal(t, "July", summary["month"])
	})

	t.Run("delete then 404", func(t *testing.T) {
		resp := doJSON(t, http.MethodDelete, server.URL+"/api/rents/"+rentID, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		resp = doJSON(t, http.MethodGet, server.URL+"/api/rents/"+rentID, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestRentEndpointErrorStatuses(t *testing.T) {
	server, _ := newTestServer()
	defer server.Close()

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
	}{
		{"malformed body", http.MethodPost, "/api/rents", nil, http.StatusBadRequest},
		{"unknown rent", http.MethodGet, "/api/rents/ghost", nil, http.StatusNotFound},
		{"unassigned tenant", http.MethodPost, "/api/rents", map[string]any{
			"tenant_id": "t1", "room_id": "r2", "amount": "100",
			"period_start": "2025-07-01", "period_end": "2025-07-31", "due_date": "2025-07-05",
		}, http.StatusBadRequest},
		{"unknown room", http.MethodPost, "/api/rents", map[string]any{
			"tenant_id": "t1", "room_id": "r9", "amount": "100",
			"period_start": "2025-07-01", "period_end": "2025-07-31", "due_date": "2025-07-05",
		}, http.StatusNotFound},
		{"bad page param", http.MethodGet, "/api/rents?page=zero", nil, http.StatusBadRequest},
		{"bad date param", http.MethodGet, "/api/rents?start_date=01-07-2025", nil, http.StatusBadRequest},
		{"summary without month", http.MethodGet, "/api/rents/summary?year=2025", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			if tt.name == "malformed body" {
				req, err := http.NewRequest(tt.method, server.URL+tt.path, bytes.NewBufferString("{not json"))
				require.NoError(t, err)
				req.Header.Set("X-Actor-Id", "admin-1")
				resp, err = http.DefaultClient.Do(req)
				require.NoError(t, err)
			} else {
				resp = doJSON(t, tt.method, server.URL+tt.path, tt.body)
			}
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestCreateRentRequiresActor(t *testing.T) {
	server, _ := newTestServer()
	defer server.Close()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{
		"tenant_id": "t1", "room_id": "r1", "amount": "100",
		"period_start": "2025-07-01", "period_end": "2025-07-31", "due_date": "2025-07-05",
	}))
	resp, err := http.Post(fmt.Sprintf("%s/api/rents", server.URL), "application/json", &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// The test server has no database pool, so /health must report unhealthy
// without panicking.
func TestHealthEndpointWithoutDatabase(t *testing.T) {
	server, _ := newTestServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var status map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "unhealthy", status["status"])
}

func TestSweepEndpoint(t *testing.T) {
	server, _ := newTestServer()
	defer server.Close()

	resp := doJSON(t, http.MethodPost, server.URL+"/api/rents/sweep-overdue", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]int64
	decodeBody(t, resp, &body)
	assert.Equal(t, int64(0), body["updated"])
}
