package dockhand

import (
	"context"
	"net/http"
	"net/url"
)

// NetworkSummary is one network of the network listing,
// and also the daemon's inspect view of a single network.
type NetworkSummary struct {
	Name       string
	ID         string `json:"Id"`
	Created    string
	Scope      string
	Driver     string
	EnableIPv6 bool
	IPAM       IPAM
	Internal   bool
	Attachable bool
	Ingress    bool
	Containers map[string]NetworkContainer `json:",omitempty"`
	Options    map[string]string           `json:",omitempty"`
	Labels     map[string]string           `json:",omitempty"`
}

// IPAM is the address management section of a network.
type IPAM struct {
	Driver  string
	Config  []IPAMConfig      `json:",omitempty"`
	Options map[string]string `json:",omitempty"`
}

// IPAMConfig is one address pool of a network.
type IPAMConfig struct {
	Subnet             string            `json:",omitempty"`
	IPRange            string            `json:",omitempty"`
	Gateway            string            `json:",omitempty"`
	AuxiliaryAddresses map[string]string `json:",omitempty"`
}

// EndpointIPAMConfig is the static addressing of a network endpoint.
type EndpointIPAMConfig struct {
	IPv4Address  string   `json:",omitempty"`
	IPv6Address  string   `json:",omitempty"`
	LinkLocalIPs []string `json:",omitempty"`
}

// NetworkContainer is one endpoint of a network, keyed by container id.
type NetworkContainer struct {
	Name        string
	EndpointID  string
	MacAddress  string
	IPv4Address string
	IPv6Address string
}

// NetworkCreateRequest is the body of the network create call.
type NetworkCreateRequest struct {
	Name       string
	Driver     string            `json:",omitempty"`
	Internal   bool              `json:",omitempty"`
	Attachable bool              `json:",omitempty"`
	Ingress    bool              `json:",omitempty"`
	IPAM       *IPAM             `json:",omitempty"`
	EnableIPv6 bool              `json:",omitempty"`
	Options    map[string]string `json:",omitempty"`
	Labels     map[string]string `json:",omitempty"`
}

// NetworkCreateResponse is the daemon's answer to a network create call.
type NetworkCreateResponse struct {
	ID      string `json:"Id"`
	Warning string
}

// NetworkPruneReport is the daemon's answer to a network prune.
type NetworkPruneReport struct {
	NetworksDeleted []string
}

// NetworkList returns the networks known to the daemon.
func (c *Client) NetworkList(ctx context.Context, filters map[string][]string) ([]NetworkSummary, error) {
	q := url.Values{}
	if err := setFilters(q, filters); err != nil {
		return nil, err
	}
	var networks []NetworkSummary
	err := c.doJSON(ctx, http.MethodGet, "/networks", q, nil, &networks)
	return networks, err
}

// NetworkInspect returns the detailed view of a single network,
// including its connected containers.
func (c *Client) NetworkInspect(ctx context.Context, networkID string) (NetworkSummary, error) {
	var network NetworkSummary
	err := c.doJSON(ctx, http.MethodGet, "/networks/"+networkID, nil, nil, &network)
	return network, err
}

// NetworkCreate creates a network. An empty driver defaults to bridge on the daemon side.
func (c *Client) NetworkCreate(ctx context.Context, req NetworkCreateRequest) (NetworkCreateResponse, error) {
	var resp NetworkCreateResponse
	err := c.doJSON(ctx, http.MethodPost, "/networks/create", nil, req, &resp)
	return resp, err
}

// NetworkRemove deletes a network. Networks with connected containers cannot be removed.
func (c *Client) NetworkRemove(ctx context.Context, networkID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/networks/"+networkID, nil, nil, nil)
}

// NetworkConnect connects a container to a network.
// The endpoint config is optional and carries static addressing and aliases.
func (c *Client) NetworkConnect(ctx context.Context, networkID, containerID string, config *EndpointSettings) error {
	body := struct {
		Container      string
		EndpointConfig *EndpointSettings `json:",omitempty"`
	}{Container: containerID, EndpointConfig: config}
	return c.doJSON(ctx, http.MethodPost, "/networks/"+networkID+"/connect", nil, body, nil)
}

// NetworkDisconnect disconnects a container from a network.
func (c *Client) NetworkDisconnect(ctx context.Context, networkID, containerID string, force bool) error {
	body := struct {
		Container string
		Force     bool
	}{Container: containerID, Force: force}
	return c.doJSON(ctx, http.MethodPost, "/networks/"+networkID+"/disconnect", nil, body, nil)
}

// NetworkPrune deletes the networks no container is connected to.
func (c *Client) NetworkPrune(ctx context.Context, filters map[string][]string) (NetworkPruneReport, error) {
	q := url.Values{}
	if err := setFilters(q, filters); err != nil {
		return NetworkPruneReport{}, err
	}
	var report NetworkPruneReport
	err := c.doJSON(ctx, http.MethodPost, "/networks/prune", q, nil, &report)
	return report, err
}
