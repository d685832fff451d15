package sales

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdesk/salesdesk/internal/shared"
)

type envelope struct {
	Status int             `json:"status"`
	Error  *string         `json:"error"`
	Data   json.RawMessage `json:"data"`
}

func newTestRouter(repo Repository) http.Handler {
	r := chi.NewRouter()
	r.Route("/sales", NewHandler(nil, NewService(repo, nil)).MountRoutes)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr, env
}

func TestHandlerCreateAndShow(t *testing.T) {
	repo := newMemRepository()
	repo.customers[1] = "Toko Sinar"
	repo.items[10] = "Kopi Arabika"
	router := newTestRouter(repo)

	rr, env := do(t, router, http.MethodPost, "/sales",
		`{"docdate":"2024-03-05","customerid":1,"items":[{"itemid":10,"unitprice":10,"qty":2},{"itemid":99,"unitprice":3.5,"qty":1}]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"docno":1}`, string(env.Data))

	rr, env = do(t, router, http.MethodGet, "/sales/1", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"docno": 1,
		"docdate": "2024-03-05",
		"customerid": 1,
		"customer": {"customerid": 1, "custname": "Toko Sinar"},
		"sales_detail": [
			{"itemid": 10, "itemname": "Kopi Arabika", "unitprice": 10, "qty": 2},
			{"itemid": null, "itemname": null, "unitprice": 3.5, "qty": 1}
		]
	}`, string(env.Data))
}

func TestHandlerShowNotFound(t *testing.T) {
	router := newTestRouter(newMemRepository())

	for _, target := range []string{"/sales/42", "/sales/nope"} {
		rr, env := do(t, router, http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotFound, rr.Code, target)
		assert.Equal(t, 404, env.Status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "Sales record not found", *env.Error)
		assert.JSONEq(t, "null", string(env.Data))
	}
}

func TestHandlerCreateRejectsBadBody(t *testing.T) {
	router := newTestRouter(newMemRepository())

	rr, env := do(t, router, http.MethodPost, "/sales", `{"docdate":"2024-03-05"`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, env.Error)

	rr, env = do(t, router, http.MethodPost, "/sales", `{"customerid":1}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, *env.Error, "docdate")

	rr, env = do(t, router, http.MethodPost, "/sales", `{"docdate":"2024-03-05","customerid":1,"items":[{"itemid":5,"qty":2}]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, *env.Error, "items[0].unitprice is required")
}

func TestHandlerCreateSurfacesStorageMessage(t *testing.T) {
	repo := newMemRepository()
	repo.insertLinesErr = errors.New("value too long")
	router := newTestRouter(repo)

	rr, env := do(t, router, http.MethodPost, "/sales",
		`{"docdate":"2024-03-05","customerid":1,"items":[{"itemid":1,"unitprice":1,"qty":1}]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, *env.Error, "value too long")
	assert.Empty(t, repo.state.headers)
}

func TestHandlerUpdate(t *testing.T) {
	repo := newMemRepository()
	router := newTestRouter(repo)

	_, _ = do(t, router, http.MethodPost, "/sales", `{"docdate":"2024-03-05","customerid":1,"items":[{"itemid":1,"unitprice":1,"qty":1}]}`)

	rr, env := do(t, router, http.MethodPut, "/sales/1", `{"docdate":"2024-04-01","customerid":2,"items":[]}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"docno":1,"docdate":"2024-04-01","customerid":2}`, string(env.Data))
	assert.Empty(t, repo.state.lines[1])

	rr, env = do(t, router, http.MethodPut, "/sales/9", `{"docdate":"2024-04-01","customerid":2}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "null", string(env.Data))

	rr, _ = do(t, router, http.MethodPut, "/sales/zero", `{"docdate":"2024-04-01","customerid":2}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerListAndDelete(t *testing.T) {
	repo := newMemRepository()
	repo.customers[1] = "Toko Sinar"
	router := newTestRouter(repo)
	for range 3 {
		_, _ = do(t, router, http.MethodPost, "/sales", `{"docdate":"2024-03-05","customerid":1}`)
	}

	rr, env := do(t, router, http.MethodGet, "/sales?limit=2&page=2", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"limit":2,"current_page":2,"total_page":2,"count":1,"total":3,
		"data":[{"docno":3,"docdate":"2024-03-05","customerid":1,"customer":{"customerid":1,"custname":"Toko Sinar"}}]}`, string(env.Data))

	rr, env = do(t, router, http.MethodDelete, "/sales/3", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "null", string(env.Data))
	assert.Len(t, repo.state.headers, 2)

	repo.listErr = errors.New("connection refused")
	rr, _ = do(t, router, http.MethodGet, "/sales", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHandlerCreateHonoursIdempotencyKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemRepository()
	repo.customers[1] = "Toko Sinar"
	r := chi.NewRouter()
	handler := NewHandler(nil, NewService(repo, nil)).WithIdempotency(shared.NewIdempotencyStore(client, time.Hour))
	r.Route("/sales", handler.MountRoutes)

	post := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/sales",
			strings.NewReader(`{"docdate":"2024-03-05","customerid":1,"items":[{"itemid":10,"unitprice":10,"qty":2}]}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(shared.IdempotencyHeader, key)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	require.Equal(t, http.StatusOK, post("first").Code)
	rr := post("first")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "Duplicate request")
	assert.Len(t, repo.state.headers, 1)

	repo.insertLinesErr = errors.New("boom")
	assert.Equal(t, http.StatusBadRequest, post("second").Code)
	repo.insertLinesErr = nil
	assert.Equal(t, http.StatusOK, post("second").Code)
	assert.Len(t, repo.state.headers, 2)
}
