package dockhand

import (
	"context"
	"net/http"

	"go.llib.dev/dockhand/streamkit"
)

// ExecCreateRequest is the body of the exec create call:
// the command to run inside an already running container.
type ExecCreateRequest struct {
	AttachStdin  bool     `json:",omitempty"`
	AttachStdout bool     `json:",omitempty"`
	AttachStderr bool     `json:",omitempty"`
	DetachKeys   string   `json:",omitempty"`
	Tty          bool     `json:",omitempty"`
	Env          []string `json:",omitempty"`
	Cmd          []string
	Privileged   bool   `json:",omitempty"`
	User         string `json:",omitempty"`
	WorkingDir   string `json:",omitempty"`
}

// ExecCreateResponse carries the id of the created exec instance.
type ExecCreateResponse struct {
	ID string `json:"Id"`
}

// ExecInspectResponse is the low level state of an exec instance.
type ExecInspectResponse struct {
	ID            string `json:"ID"`
	ContainerID   string
	Running       bool
	ExitCode      *int `json:",omitempty"`
	Pid           int
	OpenStdin     bool
	OpenStdout    bool
	OpenStderr    bool
	CanRemove     bool
	DetachKeys    string
	ProcessConfig ExecProcessConfig
}

// ExecProcessConfig describes the command an exec instance runs.
type ExecProcessConfig struct {
	Arguments  []string `json:"arguments"`
	Entrypoint string   `json:"entrypoint"`
	Privileged bool     `json:"privileged"`
	Tty        bool     `json:"tty"`
	User       string   `json:"user,omitempty"`
}

// ContainerExecCreate sets up a command to run inside a running container.
// The command does not start until ExecStart is called with the returned id.
func (c *Client) ContainerExecCreate(ctx context.Context, containerID string, req ExecCreateRequest) (ExecCreateResponse, error) {
	var resp ExecCreateResponse
	err := c.doJSON(ctx, http.MethodPost, "/containers/"+containerID+"/exec", nil, req, &resp)
	return resp, err
}

// ExecStart starts a previously created exec instance and returns its output
// as demultiplexed stdio streams, the same framing the attach endpoint uses.
// Instances created with a TTY deliver everything on the stdout channel.
// The caller closes the returned streams when done.
func (c *Client) ExecStart(ctx context.Context, execID string, tty bool) (*streamkit.StdioStreams, error) {
	body, err := c.stream(ctx, http.MethodPost, "/exec/"+execID+"/start", nil, struct {
		Detach bool
		Tty    bool
	}{Detach: false, Tty: tty}, nil)
	if err != nil {
		return nil, err
	}
	return streamkit.Demux(streamkit.Frames(body)), nil
}

// ExecStartDetached starts an exec instance without attaching to its output,
// the daemon answers as soon as the command is running.
func (c *Client) ExecStartDetached(ctx context.Context, execID string) error {
	return c.doJSON(ctx, http.MethodPost, "/exec/"+execID+"/start", nil, struct {
		Detach bool
		Tty    bool
	}{Detach: true}, nil)
}

// ExecInspect returns the state of an exec instance,
// including the exit code once the command finished.
func (c *Client) ExecInspect(ctx context.Context, execID string) (ExecInspectResponse, error) {
	var resp ExecInspectResponse
	err := c.doJSON(ctx, http.MethodGet, "/exec/"+execID+"/json", nil, nil, &resp)
	return resp, err
}
