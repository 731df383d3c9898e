package dockhand_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.llib.dev/dockhand"
)

func TestNetworkList(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/networks", r.URL.Path)
		var filters map[string][]string
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("filters")), &filters))
		require.Equal(t, []string{"bridge"}, filters["driver"])
		json.NewEncoder(w).Encode([]dockhand.NetworkSummary{
			{ID: "net1", Name: "bridge", Driver: "bridge", Scope: "local"},
		})
	}))

	networks, err := c.NetworkList(context.Background(), map[string][]string{"driver": {"bridge"}})
	require.NoError(t, err)
	require.Len(t, networks, 1)
	assert.Equal(t, "bridge", networks[0].Name)
}

func TestNetworkCreate(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/networks/create", r.URL.Path)

		var req dockhand.NetworkCreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "app-net", req.Name)
		require.NotNil(t, req.IPAM)
		assert.Equal(t, "10.10.0.0/16", req.IPAM.Config[0].Subnet)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(dockhand.NetworkCreateResponse{ID: "net2"})
	}))

	resp, err := c.NetworkCreate(context.Background(), dockhand.NetworkCreateRequest{
		Name:   "app-net",
		Driver: "bridge",
		IPAM: &dockhand.IPAM{
			Driver: "default",
			Config: []dockhand.IPAMConfig{{Subnet: "10.10.0.0/16", Gateway: "10.10.0.1"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "net2", resp.ID)
}

func TestNetworkConnectDisconnect(t *testing.T) {
	t.Run("connect posts the container and endpoint config", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/networks/net1/connect", r.URL.Path)
			var req struct {
				Container      string
				EndpointConfig *dockhand.EndpointSettings
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "cafebabe", req.Container)
			require.NotNil(t, req.EndpointConfig)
			assert.Equal(t, []string{"web"}, req.EndpointConfig.Aliases)
			w.WriteHeader(http.StatusOK)
		}))

		err := c.NetworkConnect(context.Background(), "net1", "cafebabe", &dockhand.EndpointSettings{
			Aliases: []string{"web"},
		})
		assert.NoError(t, err)
	})

	t.Run("disconnect posts the container and the force flag", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/networks/net1/disconnect", r.URL.Path)
			var req struct {
				Container string
				Force     bool
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "cafebabe", req.Container)
			assert.True(t, req.Force)
			w.WriteHeader(http.StatusOK)
		}))

		assert.NoError(t, c.NetworkDisconnect(context.Background(), "net1", "cafebabe", true))
	})
}

func TestNetworkRemove(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/networks/net1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	assert.NoError(t, c.NetworkRemove(context.Background(), "net1"))
}

func TestNetworkPrune(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/networks/prune", r.URL.Path)
		json.NewEncoder(w).Encode(dockhand.NetworkPruneReport{NetworksDeleted: []string{"old-net"}})
	}))

	report, err := c.NetworkPrune(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"old-net"}, report.NetworksDeleted)
}

func TestRegistryLogin(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth", r.URL.Path)
		var auth dockhand.RegistryAuth
		require.NoError(t, json.NewDecoder(r.Body).Decode(&auth))
		assert.Equal(t, "bob", auth.Username)
		json.NewEncoder(w).Encode(dockhand.AuthToken{Status: "Login Succeeded", IdentityToken: "tok"})
	}))

	token, err := c.RegistryLogin(context.Background(), dockhand.RegistryAuth{
		Username: "bob", Password: "hunter2", ServerAddress: "registry.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Login Succeeded", token.Status)
	assert.Equal(t, "tok", token.IdentityToken)
}
