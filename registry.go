package dockhand

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// RegistryAuth is the credential the daemon forwards to a registry
// during pull, push and search operations.
type RegistryAuth struct {
	Username      string `json:"username,omitempty"`
	Password      string `json:"password,omitempty"`
	Email         string `json:"email,omitempty"`
	ServerAddress string `json:"serveraddress,omitempty"`
	// IdentityToken authenticates against the registry instead of username/password.
	IdentityToken string `json:"identitytoken,omitempty"`
}

const registryAuthHeader = "X-Registry-Auth"

// header encodes the credential the way the daemon expects it:
// JSON serialised then base64-url encoded in the X-Registry-Auth header.
func (a RegistryAuth) header() (http.Header, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set(registryAuthHeader, base64.URLEncoding.EncodeToString(data))
	return h, nil
}

func (c *Client) registryAuthHeader() (http.Header, error) {
	if c.Credential == nil {
		return nil, nil
	}
	return c.Credential.header()
}

// AuthToken is the daemon's answer to a registry login check.
type AuthToken struct {
	Status        string
	IdentityToken string `json:",omitempty"`
}

// RegistryLogin validates a registry credential against the daemon.
// Registries supporting token auth hand back an identity token,
// which can replace the password in later RegistryAuth credentials.
func (c *Client) RegistryLogin(ctx context.Context, auth RegistryAuth) (AuthToken, error) {
	var token AuthToken
	err := c.doJSON(ctx, http.MethodPost, "/auth", nil, auth, &token)
	return token, err
}
