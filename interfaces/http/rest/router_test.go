package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflowbuilder/infrastructure/config"
	"workflowbuilder/infrastructure/di"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    struct {
		Applied *bool `json:"applied"`
	} `json:"meta"`
}

type apiError struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

type node struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Title  string                 `json:"title"`
		Params map[string]interface{} `json:"params"`
	} `json:"data"`
}

type result struct {
	Applied   bool   `json:"applied"`
	SessionID string `json:"sessionId"`
	Node      *node  `json:"node"`
}

type client struct {
	t       *testing.T
	handler http.Handler
}

func newClient(t *testing.T) *client {
	t.Helper()
	cfg := &config.Config{
		Environment:          "test",
		MaxBodyBytes:         4096,
		SessionTTL:           time.Minute,
		SessionSweepInterval: time.Minute,
		MaxSessions:          10,
		AWSRegion:            "us-west-2",
		LogLevel:             "error",
		RateLimitRPS:         1000,
		RateLimitBurst:       1000,
		EnableMetrics:        true,
		EnableCORS:           true,
		CORSOrigins:          []string{"*"},
	}
	c, err := di.InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	return &client{t: t, handler: c.Router.Setup()}
}

func (c *client) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) (T, envelope) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out, env
}

func (c *client) session() string {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/v1/sessions", map[string]string{"name": "Yield Bot"})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	res, _ := decode[result](c.t, rec)
	require.NotEmpty(c.t, res.SessionID)
	assert.Equal(c.t, "/api/v1/sessions/"+res.SessionID, rec.Header().Get("Location"))
	return res.SessionID
}

func TestRouter_Health(t *testing.T) {
	c := newClient(t)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/ready", nil).Code)

	metrics := c.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "workflow_builder_http_requests_total")
}

func TestRouter_EditWorkflow(t *testing.T) {
	c := newClient(t)
	id := c.session()
	base := "/api/v1/sessions/" + id

	rec := c.do(http.MethodPost, base+"/nodes", map[string]interface{}{"type": "web3-token", "x": 100, "y": 100})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	a, env := decode[result](t, rec)
	require.NotNil(t, env.Meta.Applied)
	assert.True(t, *env.Meta.Applied)
	assert.Equal(t, "Price Alert", a.Node.Data.Title)

	rec = c.do(http.MethodPost, base+"/nodes", map[string]interface{}{"type": "web2-social", "x": 400, "y": 100})
	b, _ := decode[result](t, rec)

	rec = c.do(http.MethodPost, base+"/connections", map[string]string{"source": a.Node.ID, "target": b.Node.ID})
	conn, _ := decode[result](t, rec)
	assert.True(t, conn.Applied)

	rec = c.do(http.MethodPost, base+"/connections", map[string]string{"source": a.Node.ID, "target": a.Node.ID})
	self, env := decode[result](t, rec)
	assert.False(t, self.Applied, "self loops are ignored")
	assert.False(t, *env.Meta.Applied)

	rec = c.do(http.MethodGet, base+"/canvas", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap, _ := decode[struct {
		Name        string            `json:"name"`
		ZoomLabel   string            `json:"zoomLabel"`
		Nodes       []json.RawMessage `json:"nodes"`
		Connections []json.RawMessage `json:"connections"`
	}](t, rec)
	assert.Equal(t, "Yield Bot", snap.Name)
	assert.Equal(t, "100%", snap.ZoomLabel)
	assert.Len(t, snap.Nodes, 2)
	assert.Len(t, snap.Connections, 1)

	rec = c.do(http.MethodGet, base+"/workflow", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Equal(t, http.StatusNotModified, c.do(http.MethodGet, base+"/workflow", nil, "If-None-Match", etag).Code)

	c.do(http.MethodPut, base+"/name", map[string]string{"name": "Renamed"})
	assert.NotEqual(t, etag, c.do(http.MethodGet, base+"/workflow", nil).Header().Get("ETag"))

	rec = c.do(http.MethodDelete, base+"/nodes/"+a.Node.ID, nil)
	del, _ := decode[result](t, rec)
	assert.True(t, del.Applied)
}

func TestRouter_Inspector(t *testing.T) {
	c := newClient(t)
	base := "/api/v1/sessions/" + c.session()

	rec := c.do(http.MethodGet, base+"/inspector", nil)
	view, _ := decode[struct {
		Empty   bool   `json:"empty"`
		Message string `json:"message"`
	}](t, rec)
	assert.True(t, view.Empty)
	assert.Equal(t, "Select a node to configure", view.Message)

	rec = c.do(http.MethodPost, base+"/nodes", map[string]interface{}{"type": "web3-wallet", "x": 0, "y": 0})
	n, _ := decode[result](t, rec)
	c.do(http.MethodPut, base+"/selection", map[string]string{"nodeId": n.Node.ID})

	rec = c.do(http.MethodPut, base+"/inspector/fields/privateKey", map[string]string{"value": "0xdeadbeef"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c.do(http.MethodPut, base+"/inspector/fields/network", map[string]string{"value": "polygon"})

	rec = c.do(http.MethodPost, base+"/inspector/save", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved, _ := decode[result](t, rec)
	assert.True(t, saved.Applied)
	assert.Equal(t, "polygon", saved.Node.Data.Params["network"])

	rec = c.do(http.MethodGet, base+"/inspector", nil)
	assert.NotContains(t, rec.Body.String(), "0xdeadbeef", "secrets never leave the panel")
	assert.Contains(t, rec.Body.String(), "Wallet on polygon")

	rec = c.do(http.MethodPut, base+"/inspector/fields/network", map[string]string{"value": "mars"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = c.do(http.MethodPost, base+"/inspector/save", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusAccepted, c.do(http.MethodPost, base+"/inspector/test", nil).Code)
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, base+"/inspector/test", nil).Code)
}

func TestRouter_Catalog(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodGet, "/api/v1/catalog?search=swap", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listing, _ := decode[struct {
		Items []struct {
			Type string `json:"type"`
		} `json:"items"`
	}](t, rec)
	require.Len(t, listing.Items, 1)
	assert.Equal(t, "web3-defi", listing.Items[0].Type)

	rec = c.do(http.MethodGet, "/api/v1/templates", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/schemas/web2-api", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"jsonSchema"`)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/v1/templates/Nope", nil).Code)
}

func TestRouter_Errors(t *testing.T) {
	c := newClient(t)
	id := c.session()

	rec := c.do(http.MethodPost, "/api/v1/sessions/"+id+"/nodes", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var e apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "INVALID_JSON", e.Code)

	rec = c.do(http.MethodPost, "/api/v1/sessions/"+id+"/pointer", map[string]interface{}{"phase": "tap"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/sessions/missing/canvas", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/sessions/missing/events", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/api/v1/sessions/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/v1/sessions/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/nope", nil).Code)
}
