// Package dockhand is a client for the Docker Engine HTTP API.
//
// The request/response glue lives in this package, while the decoding of the
// daemon's long lived streaming responses (attach, logs, pull, build, events,
// stats) is done by the streamkit package.
package dockhand

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.llib.dev/frameless/pkg/errorkit"
	"go.llib.dev/frameless/pkg/logger"
	"go.llib.dev/frameless/pkg/logging"
)

// DefaultHost is the daemon address used when the Client.Host is left empty
// and the DOCKER_HOST environment variable is not set.
const DefaultHost = "unix:///var/run/docker.sock"

const (
	// ErrUnsupportedHost is returned for daemon addresses whose scheme this client cannot speak.
	ErrUnsupportedHost errorkit.Error = "dockhand: unsupported docker host scheme"
)

// Client is a handle to a Docker daemon.
//
// The zero value connects to DefaultHost.
// A Client is safe for concurrent use,
// though the streaming iterators it hands out are single consumer.
type Client struct {
	// Host [optional] is the daemon address.
	// Accepted forms: unix:///path/to.sock, tcp://host:port, http://host:port, https://host:port.
	//
	// default: the DOCKER_HOST environment variable, then DefaultHost
	Host string
	// APIVersion [optional] pins the API version path prefix, e.g. "v1.43".
	//
	// default: unversioned request paths, the daemon negotiates
	APIVersion string
	// HTTPClient [optional] will be used to make the http requests.
	//
	// default: a transport matching the Host, without a global timeout,
	// because streaming endpoints stay open indefinitely
	HTTPClient *http.Client
	// TLSConfig [optional] is applied to tcp/https hosts.
	TLSConfig *tls.Config
	// Credential [optional] is the registry credential
	// sent as X-Registry-Auth with image pull/push/build requests.
	Credential *RegistryAuth

	initOnce sync.Once
	initErr  error
	baseURL  string
	httpc    *http.Client
	dialCtx  func(ctx context.Context, network, addr string) (net.Conn, error)
}

// New returns a Client for the given daemon address.
func New(host string) (*Client, error) {
	c := &Client{Host: host}
	if err := c.init(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromEnv returns a Client configured from the environment the same way
// the docker cli resolves its daemon connection:
// DOCKER_HOST, DOCKER_CERT_PATH, DOCKER_TLS_VERIFY and DOCKER_API_VERSION.
func NewFromEnv() (*Client, error) {
	c := &Client{
		Host:       os.Getenv("DOCKER_HOST"),
		APIVersion: os.Getenv("DOCKER_API_VERSION"),
	}
	if certPath := os.Getenv("DOCKER_CERT_PATH"); certPath != "" {
		tlsc, err := LoadTLSConfig(certPath, os.Getenv("DOCKER_TLS_VERIFY") == "")
		if err != nil {
			return nil, err
		}
		c.TLSConfig = tlsc
	}
	if err := c.init(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadTLSConfig reads the docker style cert.pem/key.pem pair
// from the given directory, the same layout DOCKER_CERT_PATH points at.
func LoadTLSConfig(certPath string, insecureSkipVerify bool) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(
		filepath.Join(certPath, "cert.pem"),
		filepath.Join(certPath, "key.pem"),
	)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates:       []tls.Certificate{cert},
		InsecureSkipVerify: insecureSkipVerify,
	}, nil
}

func (c *Client) getHost() string {
	if c.Host != "" {
		return c.Host
	}
	if host := os.Getenv("DOCKER_HOST"); host != "" {
		return host
	}
	return DefaultHost
}

func (c *Client) init() error {
	c.initOnce.Do(func() {
		host := c.getHost()
		switch {
		case strings.HasPrefix(host, "unix://"):
			socketPath := strings.TrimPrefix(host, "unix://")
			c.baseURL = "http://docker"
			c.dialCtx = func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socketPath)
			}
			c.httpc = c.HTTPClient
			if c.httpc == nil {
				c.httpc = &http.Client{
					Transport: &http.Transport{DialContext: c.dialCtx},
				}
			}
		case strings.HasPrefix(host, "tcp://"):
			scheme := "http"
			if c.TLSConfig != nil {
				scheme = "https"
			}
			c.baseURL = scheme + "://" + strings.TrimPrefix(host, "tcp://")
			c.httpc = c.tcpClient()
		case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
			c.baseURL = host
			c.httpc = c.tcpClient()
		default:
			c.initErr = ErrUnsupportedHost.F("host: %s", host)
		}
	})
	return c.initErr
}

func (c *Client) tcpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: c.TLSConfig,
			DialContext: (&net.Dialer{
				Timeout: 30 * time.Second,
			}).DialContext,
		},
	}
}

func (c *Client) requestURL(path string, query url.Values) string {
	u := c.baseURL
	if c.APIVersion != "" {
		u += "/" + c.APIVersion
	}
	u += path
	if len(query) != 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do issues one request against the daemon.
// Callers own the returned response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, header http.Header) (*http.Response, error) {
	if err := c.init(); err != nil {
		return nil, err
	}
	requestURL := c.requestURL(path, query)
	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, err
	}
	for key, values := range header {
		req.Header[key] = values
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		logger.Debug(ctx, "docker api request failed",
			logging.Field("method", method),
			logging.Field("url", requestURL),
			logging.ErrField(err))
		return nil, err
	}
	logger.Debug(ctx, "docker api request",
		logging.Field("method", method),
		logging.Field("url", requestURL),
		logging.Field("status code", resp.StatusCode))
	return resp, nil
}

// doJSON issues a request with an optional JSON body and decodes a JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var (
		body   io.Reader
		header = http.Header{}
	)
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
		header.Set("Content-Type", "application/json")
	}
	resp, err := c.do(ctx, method, path, query, body, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if !statusOK(resp) {
		return apiError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// stream issues a request whose response body is a long lived stream.
// On success the caller owns the body; on failure the daemon's error body is decoded and closed.
func (c *Client) stream(ctx context.Context, method, path string, query url.Values, in any, header http.Header) (io.ReadCloser, error) {
	var body io.Reader
	if header == nil {
		header = http.Header{}
	}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
		header.Set("Content-Type", "application/json")
	}
	resp, err := c.do(ctx, method, path, query, body, header)
	if err != nil {
		return nil, err
	}
	if !statusOK(resp) {
		defer resp.Body.Close()
		return nil, apiError(resp)
	}
	return resp.Body, nil
}

func statusOK(resp *http.Response) bool {
	return 200 <= resp.StatusCode && resp.StatusCode <= 299
}

func boolValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func jsonString(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// encodeFilters renders the filters query parameter the daemon expects:
// a JSON object mapping filter names to the list of accepted values.
func encodeFilters(filters map[string][]string) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
