package dockhand

import (
	"net/url"
	"strconv"
	"time"
)

// ContainerListOptions narrow down what ContainerList returns.
type ContainerListOptions struct {
	// All includes stopped containers, not only running ones.
	All bool
	// Latest returns only the most recently created container.
	Latest bool
	// Limit caps the number of returned containers. Zero means no limit.
	Limit int
	// Size makes the daemon calculate the on-disk size of each container.
	// This is an expensive operation.
	Size bool
	// Filters maps filter names to accepted values, e.g. {"status": {"exited"}}.
	Filters map[string][]string
}

func (o ContainerListOptions) values() (url.Values, error) {
	q := url.Values{}
	if o.All {
		q.Set("all", "1")
	}
	if o.Latest {
		q.Set("latest", "1")
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Size {
		q.Set("size", "1")
	}
	if err := setFilters(q, o.Filters); err != nil {
		return nil, err
	}
	return q, nil
}

// ContainerRemoveOptions alter how ContainerRemove behaves.
type ContainerRemoveOptions struct {
	// Force removes the container even when it is running.
	Force bool
	// RemoveVolumes removes the anonymous volumes associated with the container.
	RemoveVolumes bool
	// RemoveLinks removes the links associated with the container.
	RemoveLinks bool
}

func (o ContainerRemoveOptions) values() url.Values {
	q := url.Values{}
	if o.Force {
		q.Set("force", "1")
	}
	if o.RemoveVolumes {
		q.Set("v", "1")
	}
	if o.RemoveLinks {
		q.Set("link", "1")
	}
	return q
}

// LogsOptions select which output channels and which time window ContainerLogs returns.
type LogsOptions struct {
	// Follow keeps the stream open and delivers new log lines as the container writes them.
	Follow bool
	// Stdout includes the container's standard output.
	Stdout bool
	// Stderr includes the container's standard error.
	Stderr bool
	// Since only returns log lines written at or after the given time.
	Since time.Time
	// Until only returns log lines written before the given time.
	Until time.Time
	// Timestamps prefixes each line with its RFC3339Nano timestamp.
	Timestamps bool
	// Tail limits output to the given number of lines from the end, e.g. "100".
	//
	// default: "all"
	Tail string
}

func (o LogsOptions) values() url.Values {
	q := url.Values{}
	q.Set("follow", boolValue(o.Follow))
	q.Set("stdout", boolValue(o.Stdout))
	q.Set("stderr", boolValue(o.Stderr))
	if !o.Since.IsZero() {
		q.Set("since", strconv.FormatInt(o.Since.Unix(), 10))
	}
	if !o.Until.IsZero() {
		q.Set("until", strconv.FormatInt(o.Until.Unix(), 10))
	}
	if o.Timestamps {
		q.Set("timestamps", "1")
	}
	if o.Tail != "" {
		q.Set("tail", o.Tail)
	}
	return q
}

// AttachOptions select which stdio channels ContainerAttach hooks up.
type AttachOptions struct {
	// Stream attaches to the live output of the container.
	Stream bool
	// Stdin attaches the request body to the container's standard input.
	Stdin bool
	// Stdout includes the container's standard output.
	Stdout bool
	// Stderr includes the container's standard error.
	Stderr bool
	// Logs replays the output produced before attaching.
	Logs bool
	// DetachKeys overrides the key sequence for detaching, e.g. "ctrl-p,ctrl-q".
	DetachKeys string
}

func (o AttachOptions) values() url.Values {
	q := url.Values{}
	q.Set("stream", boolValue(o.Stream))
	q.Set("stdin", boolValue(o.Stdin))
	q.Set("stdout", boolValue(o.Stdout))
	q.Set("stderr", boolValue(o.Stderr))
	if o.Logs {
		q.Set("logs", "1")
	}
	if o.DetachKeys != "" {
		q.Set("detachKeys", o.DetachKeys)
	}
	return q
}

// EventsOptions narrow down the event stream returned by Events.
type EventsOptions struct {
	// Since only returns events recorded at or after the given time.
	Since time.Time
	// Until stops the stream after the given time instead of following forever.
	Until time.Time
	// Filters maps filter names to accepted values, e.g. {"type": {"container"}}.
	Filters map[string][]string
}

func (o EventsOptions) values() (url.Values, error) {
	q := url.Values{}
	if !o.Since.IsZero() {
		q.Set("since", strconv.FormatInt(o.Since.Unix(), 10))
	}
	if !o.Until.IsZero() {
		q.Set("until", strconv.FormatInt(o.Until.Unix(), 10))
	}
	if err := setFilters(q, o.Filters); err != nil {
		return nil, err
	}
	return q, nil
}

// ImageListOptions narrow down what ImageList returns.
type ImageListOptions struct {
	// All includes intermediate layers, not only named images.
	All bool
	// Digests includes the repo digests of each image.
	Digests bool
	// Filters maps filter names to accepted values, e.g. {"dangling": {"true"}}.
	Filters map[string][]string
}

func (o ImageListOptions) values() (url.Values, error) {
	q := url.Values{}
	if o.All {
		q.Set("all", "1")
	}
	if o.Digests {
		q.Set("digests", "1")
	}
	if err := setFilters(q, o.Filters); err != nil {
		return nil, err
	}
	return q, nil
}

// ImageBuildOptions configure an ImageBuild request.
// The build context itself travels in the request body as a tar archive.
type ImageBuildOptions struct {
	// Tag names the built image, e.g. "app:latest".
	Tag string
	// Dockerfile is the path of the Dockerfile within the build context.
	//
	// default: "Dockerfile"
	Dockerfile string
	// NoCache disables the build cache.
	NoCache bool
	// Pull always attempts to refresh the base images.
	Pull bool
	// ForceRemove removes intermediate containers even when the build fails.
	ForceRemove bool
	// BuildArgs are the build-time variables of the Dockerfile.
	BuildArgs map[string]string
	// Labels are applied to the resulting image.
	Labels map[string]string
}

func (o ImageBuildOptions) values() (url.Values, error) {
	q := url.Values{}
	if o.Tag != "" {
		q.Set("t", o.Tag)
	}
	if o.Dockerfile != "" {
		q.Set("dockerfile", o.Dockerfile)
	}
	if o.NoCache {
		q.Set("nocache", "1")
	}
	if o.Pull {
		q.Set("pull", "1")
	}
	if o.ForceRemove {
		q.Set("forcerm", "1")
	}
	if len(o.BuildArgs) != 0 {
		data, err := jsonString(o.BuildArgs)
		if err != nil {
			return nil, err
		}
		q.Set("buildargs", data)
	}
	if len(o.Labels) != 0 {
		data, err := jsonString(o.Labels)
		if err != nil {
			return nil, err
		}
		q.Set("labels", data)
	}
	return q, nil
}

func setFilters(q url.Values, filters map[string][]string) error {
	data, err := encodeFilters(filters)
	if err != nil {
		return err
	}
	if data != "" {
		q.Set("filters", data)
	}
	return nil
}
