package dockhand

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.llib.dev/dockhand/streamkit"
)

// ContainerSummary is one entry of the container listing.
type ContainerSummary struct {
	ID         string `json:"Id"`
	Image      string
	ImageID    string
	Status     string
	State      string
	Command    string
	Created    int64
	Names      []string
	Ports      []Port
	SizeRw     int64 `json:",omitempty"`
	SizeRootFs int64 `json:",omitempty"`
	Labels     map[string]string
	HostConfig struct {
		NetworkMode string
	}
}

// Port is a published port of a running container.
type Port struct {
	IP          string `json:"IP,omitempty"`
	PrivatePort uint16
	PublicPort  uint16 `json:",omitempty"`
	Type        string
}

// ContainerDetail is the full inspect view of a single container.
type ContainerDetail struct {
	ID              string `json:"Id"`
	Created         time.Time
	Path            string
	Args            []string
	State           ContainerState
	Image           string
	Name            string
	RestartCount    int
	Driver          string
	MountLabel      string
	ProcessLabel    string
	AppArmorProfile string
	HostnamePath    string
	HostsPath       string
	LogPath         string
	ResolvConfPath  string
	Mounts          []Mount
	Config          ContainerConfig
	NetworkSettings NetworkSettings
}

// ContainerState describes the runtime state the daemon reports on inspect.
type ContainerState struct {
	Status     string
	Running    bool
	Paused     bool
	Restarting bool
	OOMKilled  bool
	Dead       bool
	Pid        int64
	ExitCode   int64
	Error      string
	StartedAt  string
	FinishedAt string
}

// Mount is a filesystem mount of a container.
type Mount struct {
	Name        string `json:",omitempty"`
	Source      string
	Destination string
	Mode        string
	RW          bool
	Propagation string
}

// ContainerConfig is the configuration the container was created with.
type ContainerConfig struct {
	Hostname     string
	Domainname   string
	User         string
	AttachStdin  bool
	AttachStdout bool
	AttachStderr bool
	ExposedPorts map[string]struct{} `json:",omitempty"`
	Tty          bool
	OpenStdin    bool
	StdinOnce    bool
	Env          []string
	Cmd          []string `json:",omitempty"`
	Image        string
	Volumes      map[string]struct{} `json:",omitempty"`
	WorkingDir   string
	Entrypoint   []string          `json:",omitempty"`
	Labels       map[string]string `json:",omitempty"`
}

// NetworkSettings is the network state of an inspected container.
type NetworkSettings struct {
	Bridge                 string
	SandboxID              string
	SandboxKey             string
	HairpinMode            bool
	LinkLocalIPv6Address   string
	LinkLocalIPv6PrefixLen int
	EndpointID             string
	Gateway                string
	GlobalIPv6Address      string
	GlobalIPv6PrefixLen    int
	IPAddress              string
	IPPrefixLen            int
	IPv6Gateway            string
	MacAddress             string
	Ports                  map[string][]PortBinding `json:",omitempty"`
	Networks               map[string]EndpointSettings
}

// PortBinding maps a container port to a host address.
type PortBinding struct {
	HostIP   string `json:"HostIp"`
	HostPort string
}

// EndpointSettings is the per-network view within NetworkSettings.
// It doubles as the endpoint configuration of NetworkConnect.
type EndpointSettings struct {
	IPAMConfig          *EndpointIPAMConfig `json:",omitempty"`
	Links               []string            `json:",omitempty"`
	Aliases             []string            `json:",omitempty"`
	NetworkID           string
	EndpointID          string
	Gateway             string
	IPAddress           string
	IPPrefixLen         int
	IPv6Gateway         string
	GlobalIPv6Address   string
	GlobalIPv6PrefixLen int
	MacAddress          string
}

// ContainerCreateRequest is the body of the container create call.
type ContainerCreateRequest struct {
	Hostname        string            `json:",omitempty"`
	Domainname      string            `json:",omitempty"`
	User            string            `json:",omitempty"`
	AttachStdin     bool              `json:",omitempty"`
	AttachStdout    bool              `json:",omitempty"`
	AttachStderr    bool              `json:",omitempty"`
	Tty             bool              `json:",omitempty"`
	OpenStdin       bool              `json:",omitempty"`
	StdinOnce       bool              `json:",omitempty"`
	Env             []string          `json:",omitempty"`
	Cmd             []string          `json:",omitempty"`
	Entrypoint      []string          `json:",omitempty"`
	Image           string
	Labels          map[string]string `json:",omitempty"`
	WorkingDir      string            `json:",omitempty"`
	NetworkDisabled bool              `json:",omitempty"`
	MacAddress      string            `json:",omitempty"`
	StopSignal      string            `json:",omitempty"`
	StopTimeout     int               `json:",omitempty"`
	HostConfig      *HostConfig       `json:",omitempty"`
}

// HostConfig is the host level configuration of a container create call.
type HostConfig struct {
	Binds           []string                 `json:",omitempty"`
	Tmpfs           map[string]string        `json:",omitempty"`
	Links           []string                 `json:",omitempty"`
	Memory          int64                    `json:",omitempty"`
	MemorySwap      int64                    `json:",omitempty"`
	CPUShares       int64                    `json:"CpuShares,omitempty"`
	CPUPeriod       int64                    `json:"CpuPeriod,omitempty"`
	CPUQuota        int64                    `json:"CpuQuota,omitempty"`
	CpusetCpus      string                   `json:",omitempty"`
	OomKillDisable  bool                     `json:",omitempty"`
	PidMode         string                   `json:",omitempty"`
	PidsLimit       int64                    `json:",omitempty"`
	PortBindings    map[string][]PortBinding `json:",omitempty"`
	PublishAllPorts bool                     `json:",omitempty"`
	Privileged      bool                     `json:",omitempty"`
	ReadonlyRootfs  bool                     `json:",omitempty"`
	DNS             []string                 `json:"Dns,omitempty"`
	DNSOptions      []string                 `json:"DnsOptions,omitempty"`
	DNSSearch       []string                 `json:"DnsSearch,omitempty"`
	AutoRemove      bool                     `json:",omitempty"`
	VolumesFrom     []string                 `json:",omitempty"`
	CapAdd          []string                 `json:",omitempty"`
	CapDrop         []string                 `json:",omitempty"`
	GroupAdd        []string                 `json:",omitempty"`
	RestartPolicy   *RestartPolicy           `json:",omitempty"`
	NetworkMode     string                   `json:",omitempty"`
	Sysctls         map[string]string        `json:",omitempty"`
	CgroupParent    string                   `json:",omitempty"`
	ShmSize         int64                    `json:",omitempty"`
}

// RestartPolicy tells the daemon when to restart an exited container.
type RestartPolicy struct {
	Name              string
	MaximumRetryCount int `json:",omitempty"`
}

// ContainerCreateResponse is the daemon's answer to a container create call.
type ContainerCreateResponse struct {
	ID       string `json:"Id"`
	Warnings []string
}

// Top is the process listing of a running container.
type Top struct {
	Titles    []string
	Processes [][]string
}

// WaitResponse is the daemon's answer once a container exits.
type WaitResponse struct {
	StatusCode int64
	Error      *struct {
		Message string
	} `json:",omitempty"`
}

// ContainerList returns the containers known to the daemon.
func (c *Client) ContainerList(ctx context.Context, opts ContainerListOptions) ([]ContainerSummary, error) {
	q, err := opts.values()
	if err != nil {
		return nil, err
	}
	var containers []ContainerSummary
	err = c.doJSON(ctx, http.MethodGet, "/containers/json", q, nil, &containers)
	return containers, err
}

// ContainerInspect returns the detailed view of a single container.
func (c *Client) ContainerInspect(ctx context.Context, containerID string) (ContainerDetail, error) {
	var detail ContainerDetail
	err := c.doJSON(ctx, http.MethodGet, "/containers/"+containerID+"/json", nil, nil, &detail)
	return detail, err
}

// ContainerCreate creates a container without starting it.
// The name is optional; when empty the daemon generates one.
func (c *Client) ContainerCreate(ctx context.Context, name string, req ContainerCreateRequest) (ContainerCreateResponse, error) {
	q := url.Values{}
	if name != "" {
		q.Set("name", name)
	}
	var resp ContainerCreateResponse
	err := c.doJSON(ctx, http.MethodPost, "/containers/create", q, req, &resp)
	return resp, err
}

// ContainerStart starts a created container.
func (c *Client) ContainerStart(ctx context.Context, containerID string) error {
	return c.doJSON(ctx, http.MethodPost, "/containers/"+containerID+"/start", nil, nil, nil)
}

// ContainerStop asks the container to stop, then kills it after the timeout.
// A zero timeout uses the daemon's default.
func (c *Client) ContainerStop(ctx context.Context, containerID string, timeout time.Duration) error {
	return c.doJSON(ctx, http.MethodPost, "/containers/"+containerID+"/stop", timeoutValues(timeout), nil, nil)
}

// ContainerRestart restarts the container, killing it after the timeout.
// A zero timeout uses the daemon's default.
func (c *Client) ContainerRestart(ctx context.Context, containerID string, timeout time.Duration) error {
	return c.doJSON(ctx, http.MethodPost, "/containers/"+containerID+"/restart", timeoutValues(timeout), nil, nil)
}

// ContainerKill sends a signal to the container's main process.
// The signal is named like "SIGKILL"; when empty the daemon defaults to SIGKILL.
func (c *Client) ContainerKill(ctx context.Context, containerID, signal string) error {
	q := url.Values{}
	if signal != "" {
		q.Set("signal", signal)
	}
	return c.doJSON(ctx, http.MethodPost, "/containers/"+containerID+"/kill", q, nil, nil)
}

// ContainerRemove deletes a container.
func (c *Client) ContainerRemove(ctx context.Context, containerID string, opts ContainerRemoveOptions) error {
	return c.doJSON(ctx, http.MethodDelete, "/containers/"+containerID, opts.values(), nil, nil)
}

// ContainerRename gives the container a new name.
func (c *Client) ContainerRename(ctx context.Context, containerID, newName string) error {
	q := url.Values{}
	q.Set("name", newName)
	return c.doJSON(ctx, http.MethodPost, "/containers/"+containerID+"/rename", q, nil, nil)
}

// ContainerWait blocks until the container exits and returns its exit status.
func (c *Client) ContainerWait(ctx context.Context, containerID string) (WaitResponse, error) {
	var resp WaitResponse
	err := c.doJSON(ctx, http.MethodPost, "/containers/"+containerID+"/wait", nil, nil, &resp)
	return resp, err
}

// ContainerTop returns the processes running inside the container.
// The args are passed to the ps command; when empty the daemon defaults to "-ef".
func (c *Client) ContainerTop(ctx context.Context, containerID, psArgs string) (Top, error) {
	q := url.Values{}
	if psArgs != "" {
		q.Set("ps_args", psArgs)
	}
	var top Top
	err := c.doJSON(ctx, http.MethodGet, "/containers/"+containerID+"/top", q, nil, &top)
	return top, err
}

// ContainerChanges returns the filesystem changes of the container
// relative to its image. Kind 0 is modified, 1 is added, 2 is deleted.
func (c *Client) ContainerChanges(ctx context.Context, containerID string) ([]FilesystemChange, error) {
	var changes []FilesystemChange
	err := c.doJSON(ctx, http.MethodGet, "/containers/"+containerID+"/changes", nil, nil, &changes)
	return changes, err
}

// FilesystemChange is one changed path of a container's filesystem.
type FilesystemChange struct {
	Path string
	Kind int
}

// ContainerLogs returns the container's output as demultiplexed stdio streams.
// Containers started with a TTY deliver everything on the stdout channel.
// The caller closes the returned streams when done.
func (c *Client) ContainerLogs(ctx context.Context, containerID string, opts LogsOptions) (*streamkit.StdioStreams, error) {
	body, err := c.stream(ctx, http.MethodGet, "/containers/"+containerID+"/logs", opts.values(), nil, nil)
	if err != nil {
		return nil, err
	}
	return streamkit.Demux(streamkit.Frames(body)), nil
}

// ContainerExport returns the container's filesystem as a tar archive stream.
// The caller closes the returned reader.
func (c *Client) ContainerExport(ctx context.Context, containerID string) (io.ReadCloser, error) {
	return c.stream(ctx, http.MethodGet, "/containers/"+containerID+"/export", nil, nil, nil)
}

// ContainerStats returns the live resource usage of a container as an
// iterator of once-per-second samples. With stream disabled the daemon
// sends a single sample and closes.
// The caller closes the iterator when done.
func (c *Client) ContainerStats(ctx context.Context, containerID string, stream bool) (*streamkit.RecordIterator[Stats], error) {
	q := url.Values{}
	q.Set("stream", boolValue(stream))
	body, err := c.stream(ctx, http.MethodGet, "/containers/"+containerID+"/stats", q, nil, nil)
	if err != nil {
		return nil, err
	}
	return streamkit.Records[Stats](body), nil
}

func timeoutValues(timeout time.Duration) url.Values {
	q := url.Values{}
	if timeout > 0 {
		q.Set("t", strconv.Itoa(int(timeout/time.Second)))
	}
	return q
}
