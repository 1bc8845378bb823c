package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-transsaction-cache/internal/metrics"
	"github.com/goliatone/go-transsaction-cache/model"
	"github.com/goliatone/go-transsaction-cache/pkg/logger"
	"github.com/goliatone/go-transsaction-cache/pkg/testsupport"
	"github.com/goliatone/go-transsaction-cache/repositorycache"
	"github.com/goliatone/go-transsaction-cache/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var registered = time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T, svc repositorycache.Service) *httptest.Server {
	t.Helper()
	log := logger.NewForTests()
	srv := httptest.NewServer(NewRouter(NewHandler(svc, log), prometheus.NewRegistry(), log))
	t.Cleanup(srv.Close)
	return srv
}

func newMemoryService(t *testing.T) (*store.MemoryGateway, repositorycache.Service) {
	t.Helper()
	gw := store.NewMemoryGateway(testsupport.LoadTranssactions(t)...)
	return gw, repositorycache.NewDirect(gw, func() time.Time { return registered })
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

const validBody = `{"identityDni":"45871236","phoneNumber":"987654321","email":"lucia.torres@wallet.test","type":"DEPOSIT","amount":"10.50","currency":"pen","description":"gift"}`

func TestHandleFindAll(t *testing.T) {
	_, svc := newMemoryService(t)
	srv := newTestServer(t, svc)

	resp := do(t, http.MethodGet, srv.URL+"/v1/transsaction/findAll", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	testsupport.CompareWithGolden(t, testsupport.GoldenPath("find_all.json"), []byte(buf.String()))
}

func TestHandleFindAll_EmptyIsArray(t *testing.T) {
	srv := newTestServer(t, repositorycache.NewDirect(store.NewMemoryGateway(), nil))

	resp := do(t, http.MethodGet, srv.URL+"/v1/transsaction/findAll", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody[[]TranssactionModel](t, resp))
}

func TestHandleFindByID(t *testing.T) {
	_, svc := newMemoryService(t)
	srv := newTestServer(t, svc)

	t.Run("found", func(t *testing.T) {
		resp := do(t, http.MethodGet, srv.URL+"/v1/transsaction/findById/1c7e8a2b-6f3d-4b9a-a5e2-7d4f0c8b3a22", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decodeBody[TranssactionModel](t, resp)
		assert.Equal(t, "70125489", got.IdentityDni)
		assert.Equal(t, "-42.5", got.Amount.String())
	})

	t.Run("missing", func(t *testing.T) {
		resp := do(t, http.MethodGet, srv.URL+"/v1/transsaction/findById/nope", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHandleFindByIdentityDni(t *testing.T) {
	_, svc := newMemoryService(t)
	srv := newTestServer(t, svc)

	resp := do(t, http.MethodGet, srv.URL+"/v1/transsaction/findByIdentityDni/45871236", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "9b2f4c1e-3d5a-4e7b-8f10-2a6c9d0e1b11", decodeBody[TranssactionModel](t, resp).ID)

	resp = do(t, http.MethodGet, srv.URL+"/v1/transsaction/findByIdentityDni/00000000", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleCreate(t *testing.T) {
	gw, svc := newMemoryService(t)
	srv := newTestServer(t, svc)

	resp := do(t, http.MethodPost, srv.URL+"/v1/transsaction", validBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	got := decodeBody[TranssactionModel](t, resp)
	require.NotEmpty(t, got.ID)
	assert.Equal(t, DefaultLocationBase+"/"+got.ID, resp.Header.Get("Location"))
	assert.Equal(t, "PEN", got.Currency)
	require.NotNil(t, got.DateRegister)
	assert.True(t, got.DateRegister.Equal(model.Date(registered)))
	assert.Equal(t, 4, gw.Len())
}

func TestHandleCreate_IgnoresClientIDAndDate(t *testing.T) {
	_, svc := newMemoryService(t)
	srv := newTestServer(t, svc)

	body := `{"id":"9b2f4c1e-3d5a-4e7b-8f10-2a6c9d0e1b11","dateRegister":"1999-01-01T00:00:00Z",` + validBody[1:]
	resp := do(t, http.MethodPost, srv.URL+"/v1/transsaction/", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	got := decodeBody[TranssactionModel](t, resp)
	assert.NotEqual(t, "9b2f4c1e-3d5a-4e7b-8f10-2a6c9d0e1b11", got.ID)
	assert.True(t, got.DateRegister.Equal(model.Date(registered)))
}

func TestHandleCreate_Invalid(t *testing.T) {
	_, svc := newMemoryService(t)
	srv := newTestServer(t, svc)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "malformed json", body: `{"identityDni":`},
		{name: "missing dni", body: `{"type":"DEPOSIT","amount":"1","currency":"PEN"}`, field: "identityDni"},
		{name: "missing type", body: `{"identityDni":"1","amount":"1","currency":"PEN"}`, field: "type"},
		{name: "bad currency", body: `{"identityDni":"1","type":"DEPOSIT","amount":"1","currency":"SOLES"}`, field: "currency"},
		{name: "bad email", body: `{"identityDni":"1","type":"DEPOSIT","amount":"1","currency":"PEN","email":"nope"}`, field: "email"},
		{name: "negative amount", body: `{"identityDni":"1","type":"DEPOSIT","amount":"-1","currency":"PEN"}`, field: "amount"},
		{name: "unknown currency", body: `{"identityDni":"1","type":"DEPOSIT","amount":"1","currency":"ABC"}`, field: "currency"},
		{name: "phone with letters", body: `{"identityDni":"1","phoneNumber":"98765abcd","type":"DEPOSIT","amount":"1","currency":"PEN"}`, field: "phoneNumber"},
		{name: "short phone", body: `{"identityDni":"1","phoneNumber":"123","type":"DEPOSIT","amount":"1","currency":"PEN"}`, field: "phoneNumber"},
		{name: "dni with symbols", body: `{"identityDni":"45-87!","type":"DEPOSIT","amount":"1","currency":"PEN"}`, field: "identityDni"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, srv.URL+"/v1/transsaction", tt.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			got := decodeBody[ErrorResponse](t, resp)
			if tt.field != "" {
				assert.Equal(t, "validation_error", got.Error)
				assert.Contains(t, got.Fields, tt.field)
			} else {
				assert.Equal(t, "bad_request", got.Error)
			}
		})
	}
}

func TestHandleUpdate(t *testing.T) {
	_, svc := newMemoryService(t)
	srv := newTestServer(t, svc)
	id := "9b2f4c1e-3d5a-4e7b-8f10-2a6c9d0e1b11"

	resp := do(t, http.MethodPut, srv.URL+"/v1/transsaction/"+id, validBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, DefaultLocationBase+"/"+id, resp.Header.Get("Location"))

	got := decodeBody[TranssactionModel](t, resp)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "gift", got.Description)
	require.NotNil(t, got.DateRegister)
	assert.True(t, got.DateRegister.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))

	resp = do(t, http.MethodPut, srv.URL+"/v1/transsaction/missing", validBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleDelete(t *testing.T) {
	gw, svc := newMemoryService(t)
	srv := newTestServer(t, svc)
	id := "e4d3c2b1-a0f9-4e8d-9c7b-6a5f4e3d2c33"

	resp := do(t, http.MethodDelete, srv.URL+"/v1/transsaction/"+id, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, gw.Len())

	resp = do(t, http.MethodDelete, srv.URL+"/v1/transsaction/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// stubService answers every call with a fixed outcome.
type stubService struct {
	err error
}

func (s stubService) FindAll(context.Context) iter.Seq2[*model.Transsaction, error] {
	return func(yield func(*model.Transsaction, error) bool) {
		if s.err != nil {
			yield(nil, s.err)
		}
	}
}

func (s stubService) FindByID(context.Context, string) (*model.Transsaction, bool, error) {
	return nil, false, s.err
}

func (s stubService) FindByIdentityDni(context.Context, string) (*model.Transsaction, bool, error) {
	return nil, false, s.err
}

func (s stubService) Create(context.Context, *model.Transsaction) (*model.Transsaction, bool, error) {
	return nil, false, s.err
}

func (s stubService) Update(context.Context, string, *model.Transsaction) (*model.Transsaction, bool, error) {
	return nil, false, s.err
}

func (s stubService) Delete(context.Context, string) (*model.Transsaction, bool, error) {
	return nil, false, s.err
}

func TestHandlers_DegradedResults(t *testing.T) {
	srv := newTestServer(t, stubService{})

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/v1/transsaction/findAll", "", http.StatusOK},
		{http.MethodGet, "/v1/transsaction/findById/x", "", http.StatusNotFound},
		{http.MethodGet, "/v1/transsaction/findByIdentityDni/x", "", http.StatusNotFound},
		{http.MethodPost, "/v1/transsaction", validBody, http.StatusNotFound},
		{http.MethodPut, "/v1/transsaction/x", validBody, http.StatusBadRequest},
		{http.MethodDelete, "/v1/transsaction/x", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestHandlers_ServiceErrors(t *testing.T) {
	srv := newTestServer(t, stubService{err: errors.New("cache unreachable")})

	tests := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/v1/transsaction/findAll", ""},
		{http.MethodGet, "/v1/transsaction/findById/x", ""},
		{http.MethodGet, "/v1/transsaction/findByIdentityDni/x", ""},
		{http.MethodPost, "/v1/transsaction", validBody},
		{http.MethodPut, "/v1/transsaction/x", validBody},
		{http.MethodDelete, "/v1/transsaction/x", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path, tt.body)
			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.Equal(t, "internal_error", decodeBody[ErrorResponse](t, resp).Error)
		})
	}
}

func TestWithLocationBase(t *testing.T) {
	_, svc := newMemoryService(t)
	log := logger.NewForTests()
	h := NewHandler(svc, log, WithLocationBase("https://wallet.test/api/"))
	srv := httptest.NewServer(NewRouter(h, nil, log))
	t.Cleanup(srv.Close)

	resp := do(t, http.MethodPost, srv.URL+"/v1/transsaction", validBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	got := decodeBody[TranssactionModel](t, resp)
	assert.Equal(t, "https://wallet.test/api/"+got.ID, resp.Header.Get("Location"))

	resp = do(t, http.MethodGet, srv.URL+"/metrics", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_MetricsAndHealth(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.CacheHit(repositorycache.OpFindByID)

	_, svc := newMemoryService(t)
	log := logger.NewForTests()
	srv := httptest.NewServer(NewRouter(NewHandler(svc, log), reg, log))
	t.Cleanup(srv.Close)

	resp := do(t, http.MethodGet, srv.URL+"/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, resp)["status"])

	resp = do(t, http.MethodGet, srv.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `transsaction_cache_lookups_total{operation="findById",result="hit"} 1`)
}

type panicService struct{ stubService }

func (panicService) FindByID(context.Context, string) (*model.Transsaction, bool, error) {
	panic("boom")
}

func TestRouter_RecoversPanics(t *testing.T) {
	srv := newTestServer(t, panicService{})

	resp := do(t, http.MethodGet, srv.URL+"/v1/transsaction/findById/x", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
