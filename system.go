package dockhand

import (
	"context"
	"io"
	"net/http"

	"go.llib.dev/dockhand/streamkit"
)

// Version is the daemon's version report.
type Version struct {
	Version       string
	APIVersion    string `json:"ApiVersion"`
	MinAPIVersion string
	GitCommit     string
	GoVersion     string
	Os            string
	Arch          string
	KernelVersion string
	Experimental  bool   `json:",omitempty"`
	BuildTime     string `json:",omitempty"`
}

// Info is the daemon wide system information report.
type Info struct {
	ID                 string
	Containers         int
	ContainersRunning  int
	ContainersPaused   int
	ContainersStopped  int
	Images             int
	Driver             string
	DockerRootDir      string
	MemoryLimit        bool
	SwapLimit          bool
	IPv4Forwarding     bool
	Debug              bool
	NFd                int
	NGoroutines        int
	NEventsListener    int
	KernelVersion      string
	OperatingSystem    string
	OSType             string
	Architecture       string
	NCPU               int
	MemTotal           int64
	IndexServerAddress string
	Name               string
	ServerVersion      string
	Labels             []string
}

// EventActor names the object an event happened to.
type EventActor struct {
	ID         string
	Attributes map[string]string
}

// EventMessage is one entry of the daemon's event stream.
type EventMessage struct {
	Type     string
	Action   string
	Actor    EventActor
	Scope    string `json:"scope,omitempty"`
	Time     int64  `json:"time"`
	TimeNano int64  `json:"timeNano"`
}

// Ping checks that the daemon is reachable and answering.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/_ping", nil, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if !statusOK(resp) {
		return apiError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// ServerVersion returns the daemon's version report.
func (c *Client) ServerVersion(ctx context.Context) (Version, error) {
	var v Version
	err := c.doJSON(ctx, http.MethodGet, "/version", nil, nil, &v)
	return v, err
}

// SystemInfo returns the daemon wide system information.
func (c *Client) SystemInfo(ctx context.Context) (Info, error) {
	var info Info
	err := c.doJSON(ctx, http.MethodGet, "/info", nil, nil, &info)
	return info, err
}

// Events follows the daemon's event stream.
// Without an Until option the stream stays open until the iterator is closed
// or the context is cancelled.
func (c *Client) Events(ctx context.Context, opts EventsOptions) (*streamkit.RecordIterator[EventMessage], error) {
	q, err := opts.values()
	if err != nil {
		return nil, err
	}
	body, err := c.stream(ctx, http.MethodGet, "/events", q, nil, nil)
	if err != nil {
		return nil, err
	}
	return streamkit.Records[EventMessage](body), nil
}
