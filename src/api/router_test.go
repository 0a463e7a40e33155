package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeledger-server/src/core/ledger"
	"homeledger-server/src/core/session"
	"homeledger-server/src/core/syncer"
	"homeledger-server/src/feed/feedfake"
	"homeledger-server/src/store"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

type testServer struct {
	*httptest.Server
	fake *feedfake.Connector
}

func newTestServer(t *testing.T, isDemo bool) *testServer {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	st := store.NewMemory()
	fake := feedfake.NewBank()
	router := NewRouter(st, ledger.NewService(st, false), session.NewService(st), syncer.New(st, fake), isDemo)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, fake: fake}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	resp, raw := s.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"email":    email,
		"password": "Sup3rSecret",
		"name":     "Tester",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var out map[string]string
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotEmpty(t, out["token"])
	return out["token"]
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	resp, raw := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(raw))
}

func TestRegisterLoginAndMe(t *testing.T) {
	s := newTestServer(t, false)
	s.register(t, "tester@home.test")

	resp, raw := s.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email": "tester@home.test", "password": "Sup3rSecret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var login map[string]string
	require.NoError(t, json.Unmarshal(raw, &login))

	resp, raw = s.do(t, http.MethodGet, "/api/me", login["token"], nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me map[string]any
	require.NoError(t, json.Unmarshal(raw, &me))
	assert.Equal(t, "tester@home.test", me["email"])

	resp, _ = s.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email": "tester@home.test", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t, false)
	s.register(t, "taken@home.test")

	resp, raw := s.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"email":    "taken@home.test",
		"password": "Sup3rSecret",
		"name":     "Second",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(raw), "already registered")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, false)
	resp, _ := s.do(t, http.MethodGet, "/api/transactions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register(t, "tester@home.test")

	resp, raw := s.do(t, http.MethodPost, "/api/transactions", token, map[string]any{
		"kind": "INCOME", "amount": "2500.00", "description": "Salary",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var created map[string]any
	require.NoError(t, json.Unmarshal(raw, &created))
	id := int64(created["id"].(float64))

	resp, raw = s.do(t, http.MethodPost, "/api/transactions", token, map[string]any{
		"kind": "EXPENSE", "amount": "199.99", "description": "Groceries",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, _ = s.do(t, http.MethodPost, "/api/transactions", token, map[string]any{
		"kind": "TRANSFER", "amount": "1", "description": "x",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = s.do(t, http.MethodGet, "/api/transactions", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(raw, &listed))
	assert.Len(t, listed, 2)

	resp, raw = s.do(t, http.MethodGet, "/api/transactions/totals", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var totals map[string]string
	require.NoError(t, json.Unmarshal(raw, &totals))
	assert.Equal(t, "2300.01", totals["balance"])

	resp, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", id), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/transactions/%d", id), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOwnershipAcrossActors(t *testing.T) {
	s := newTestServer(t, false)
	ownerToken := s.register(t, "owner@home.test")
	otherToken := s.register(t, "other@home.test")

	resp, raw := s.do(t, http.MethodPost, "/api/transactions", ownerToken, map[string]any{
		"kind": "INCOME", "amount": "10", "description": "Mine",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]any
	require.NoError(t, json.Unmarshal(raw, &created))
	id := int64(created["id"].(float64))

	resp, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/transactions/%d", id), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw = s.do(t, http.MethodGet, "/api/transactions", otherToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(raw, &listed))
	assert.Empty(t, listed)
}

func TestAccountCallbackAndSync(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register(t, "tester@home.test")

	resp, raw := s.do(t, http.MethodPost, "/api/accounts", token, map[string]any{
		"name":            "Main checking",
		"account_kind":    "CHECKING",
		"connection_kind": "BANK_FEED",
		"account_number":  "1234",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var account map[string]any
	require.NoError(t, json.Unmarshal(raw, &account))
	id := int64(account["id"].(float64))

	// No credentials yet.
	resp, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/accounts/%d/sync", id), token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, raw = s.do(t, http.MethodGet, "/api/accounts/authorize-url?connection_kind=BANK_FEED&institution_code=ins_1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var auth map[string]string
	require.NoError(t, json.Unmarshal(raw, &auth))
	assert.Contains(t, auth["authorization_url"], "ins_1")

	s.fake.Transactions = []syncer.ExternalTransaction{
		{ExternalID: "ext-1", Kind: "EXPENSE", Amount: decimalFromString(t, "12.34"), Description: "Feed item"},
	}
	resp, raw = s.do(t, http.MethodPost, fmt.Sprintf("/api/accounts/%d/callback", id), token, map[string]string{"code": "auth-code"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var result map[string]any
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, float64(1), result["created"])

	// Re-syncing the same feed writes nothing new.
	resp, raw = s.do(t, http.MethodPost, fmt.Sprintf("/api/accounts/%d/sync", id), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, float64(0), result["created"])
}

func TestSessionEndpoints(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register(t, "tester@home.test")

	resp, raw := s.do(t, http.MethodPost, "/api/sessions", token, map[string]string{"name": "Trip"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var created map[string]any
	require.NoError(t, json.Unmarshal(raw, &created))
	id := int64(created["id"].(float64))

	resp, raw = s.do(t, http.MethodPost, "/api/transactions", token, map[string]any{
		"kind": "EXPENSE", "amount": "40", "description": "Hotel", "session_id": id,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = s.do(t, http.MethodGet, fmt.Sprintf("/api/sessions/%d", id), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary map[string]any
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, float64(1), summary["transaction_count"])
	assert.Equal(t, "40", summary["total_expense"])
}

func TestAdminRoutesForbiddenForOwners(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register(t, "tester@home.test")

	resp, _ := s.do(t, http.MethodPost, "/api/admin/categories", token, map[string]string{
		"name": "Food", "kind": "EXPENSE",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDemoModeBlocksMutations(t *testing.T) {
	s := newTestServer(t, true)
	token := s.register(t, "tester@home.test")

	resp, _ := s.do(t, http.MethodPost, "/api/transactions", token, map[string]any{
		"kind": "INCOME", "amount": "10", "description": "x",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/transactions", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
