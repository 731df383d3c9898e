package dockhand_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.llib.dev/dockhand"
)

func newTestClient(t *testing.T, handler http.Handler) *dockhand.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := dockhand.New(srv.URL)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("accepts unix hosts", func(t *testing.T) {
		_, err := dockhand.New("unix:///var/run/docker.sock")
		assert.NoError(t, err)
	})

	t.Run("accepts tcp hosts", func(t *testing.T) {
		_, err := dockhand.New("tcp://127.0.0.1:2375")
		assert.NoError(t, err)
	})

	t.Run("accepts http hosts", func(t *testing.T) {
		_, err := dockhand.New("http://127.0.0.1:2375")
		assert.NoError(t, err)
	})

	t.Run("rejects unknown schemes", func(t *testing.T) {
		_, err := dockhand.New("ssh://example.com")
		assert.ErrorIs(t, err, dockhand.ErrUnsupportedHost)
	})
}

func TestClient_APIVersion(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("OK"))
	}))
	t.Cleanup(srv.Close)

	c := &dockhand.Client{Host: srv.URL, APIVersion: "v1.43"}
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, "/v1.43/_ping", gotPath)
}

func TestClient_errorMapping(t *testing.T) {
	t.Run("404 maps to ErrNotFound and keeps the daemon's message", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "No such container: nope"})
		}))

		_, err := c.ContainerInspect(context.Background(), "nope")
		require.Error(t, err)
		assert.True(t, dockhand.IsErrNotFound(err))

		var apiErr dockhand.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "No such container: nope", apiErr.Message)
	})

	t.Run("409 maps to ErrConflict", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"message": "container is running"})
		}))

		err := c.ContainerRemove(context.Background(), "busy", dockhand.ContainerRemoveOptions{})
		assert.True(t, dockhand.IsErrConflict(err))
	})

	t.Run("non-json error bodies are kept as the message", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("something broke\n"))
		}))

		err := c.Ping(context.Background())
		var apiErr dockhand.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "something broke", apiErr.Message)
	})
}
