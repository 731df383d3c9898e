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

// ImageSummary is one entry of the image listing.
type ImageSummary struct {
	ID          string `json:"Id"`
	ParentID    string `json:"ParentId"`
	RepoTags    []string
	RepoDigests []string
	Created     int64
	Size        int64
	SharedSize  int64
	Labels      map[string]string
	Containers  int64
}

// ImageDetail is the full inspect view of a single image.
type ImageDetail struct {
	ID            string `json:"Id"`
	RepoTags      []string
	RepoDigests   []string
	Parent        string
	Comment       string
	Created       time.Time
	DockerVersion string
	Author        string
	Config        ContainerConfig
	Architecture  string
	Os            string
	Size          int64
	GraphDriver   GraphDriver
	RootFS        RootFS
}

// GraphDriver names the storage driver backing an image.
type GraphDriver struct {
	Name string
	Data map[string]string
}

// RootFS lists the layer digests of an image.
type RootFS struct {
	Type   string
	Layers []string
}

// PullStatus is one progress report of an image pull, push, build or load.
// The daemon emits these as a stream of undelimited JSON texts.
type PullStatus struct {
	Status         string          `json:"status,omitempty"`
	ID             string          `json:"id,omitempty"`
	Progress       string          `json:"progress,omitempty"`
	ProgressDetail *ProgressDetail `json:"progressDetail,omitempty"`
	Stream         string          `json:"stream,omitempty"`
	Error          string          `json:"error,omitempty"`
	ErrorDetail    *ErrorDetail    `json:"errorDetail,omitempty"`
}

// ProgressDetail carries the byte counters of a layer transfer.
type ProgressDetail struct {
	Current int64 `json:"current,omitempty"`
	Total   int64 `json:"total,omitempty"`
}

// ErrorDetail is the daemon's in-stream error report.
type ErrorDetail struct {
	Message string `json:"message,omitempty"`
}

// Err returns the in-stream error of a pull status report, if it carries one.
func (s PullStatus) Err() error {
	if s.Error != "" {
		return APIError{StatusCode: http.StatusInternalServerError, Message: s.Error}
	}
	return nil
}

// SearchResult is one registry hit of an image search.
type SearchResult struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsOfficial  bool   `json:"is_official"`
	IsAutomated bool   `json:"is_automated"`
	StarCount   int    `json:"star_count"`
}

// ImageHistoryEntry is one layer of an image's build history.
type ImageHistoryEntry struct {
	ID        string `json:"Id"`
	Created   int64
	CreatedBy string
	Tags      []string
	Size      int64
	Comment   string
}

// ImageDeleteItem reports one image reference removed by ImageRemove.
type ImageDeleteItem struct {
	Untagged string `json:",omitempty"`
	Deleted  string `json:",omitempty"`
}

// ImagePruneReport is the daemon's answer to an image prune.
type ImagePruneReport struct {
	ImagesDeleted  []ImageDeleteItem
	SpaceReclaimed int64
}

// ImageList returns the images known to the daemon.
func (c *Client) ImageList(ctx context.Context, opts ImageListOptions) ([]ImageSummary, error) {
	q, err := opts.values()
	if err != nil {
		return nil, err
	}
	var images []ImageSummary
	err = c.doJSON(ctx, http.MethodGet, "/images/json", q, nil, &images)
	return images, err
}

// ImageInspect returns the detailed view of a single image.
func (c *Client) ImageInspect(ctx context.Context, imageRef string) (ImageDetail, error) {
	var detail ImageDetail
	err := c.doJSON(ctx, http.MethodGet, "/images/"+imageRef+"/json", nil, nil, &detail)
	return detail, err
}

// ImagePull asks the daemon to pull an image from a registry and returns
// the progress reports as they arrive. The pull keeps running on the daemon
// side even when the iterator is closed early.
//
// An unreachable image surfaces as an in-stream report whose Err is set,
// not as an error of this call.
func (c *Client) ImagePull(ctx context.Context, imageRef, tag string) (*streamkit.RecordIterator[PullStatus], error) {
	q := url.Values{}
	q.Set("fromImage", imageRef)
	if tag != "" {
		q.Set("tag", tag)
	}
	header, err := c.registryAuthHeader()
	if err != nil {
		return nil, err
	}
	body, err := c.stream(ctx, http.MethodPost, "/images/create", q, nil, header)
	if err != nil {
		return nil, err
	}
	return streamkit.Records[PullStatus](body), nil
}

// ImagePush uploads an image to its registry, streaming progress reports.
func (c *Client) ImagePush(ctx context.Context, imageRef, tag string) (*streamkit.RecordIterator[PullStatus], error) {
	q := url.Values{}
	if tag != "" {
		q.Set("tag", tag)
	}
	header, err := c.registryAuthHeader()
	if err != nil {
		return nil, err
	}
	if header == nil {
		// the daemon rejects a push without the header being present
		header = http.Header{}
		header.Set(registryAuthHeader, "e30=")
	}
	body, err := c.stream(ctx, http.MethodPost, "/images/"+imageRef+"/push", q, nil, header)
	if err != nil {
		return nil, err
	}
	return streamkit.Records[PullStatus](body), nil
}

// ImageBuild builds an image from a build context, a tar archive stream
// containing the Dockerfile, and returns the build output reports.
func (c *Client) ImageBuild(ctx context.Context, buildContext io.Reader, opts ImageBuildOptions) (*streamkit.RecordIterator[PullStatus], error) {
	q, err := opts.values()
	if err != nil {
		return nil, err
	}
	header, err := c.registryAuthHeader()
	if err != nil {
		return nil, err
	}
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/x-tar")
	resp, err := c.do(ctx, http.MethodPost, "/build", q, buildContext, header)
	if err != nil {
		return nil, err
	}
	if !statusOK(resp) {
		defer resp.Body.Close()
		return nil, apiError(resp)
	}
	return streamkit.Records[PullStatus](resp.Body), nil
}

// ImageTag adds a repo:tag reference to an image.
func (c *Client) ImageTag(ctx context.Context, imageRef, repo, tag string) error {
	q := url.Values{}
	q.Set("repo", repo)
	if tag != "" {
		q.Set("tag", tag)
	}
	return c.doJSON(ctx, http.MethodPost, "/images/"+imageRef+"/tag", q, nil, nil)
}

// ImageRemove deletes an image and reports what got untagged and deleted.
func (c *Client) ImageRemove(ctx context.Context, imageRef string, force, noPrune bool) ([]ImageDeleteItem, error) {
	q := url.Values{}
	if force {
		q.Set("force", "1")
	}
	if noPrune {
		q.Set("noprune", "1")
	}
	var items []ImageDeleteItem
	err := c.doJSON(ctx, http.MethodDelete, "/images/"+imageRef, q, nil, &items)
	return items, err
}

// ImageSearch queries a registry for images matching the term.
// A zero limit uses the registry's default.
func (c *Client) ImageSearch(ctx context.Context, term string, limit int) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("term", term)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var results []SearchResult
	err := c.doJSON(ctx, http.MethodGet, "/images/search", q, nil, &results)
	return results, err
}

// ImageHistory returns the layers an image was built from, newest first.
func (c *Client) ImageHistory(ctx context.Context, imageRef string) ([]ImageHistoryEntry, error) {
	var layers []ImageHistoryEntry
	err := c.doJSON(ctx, http.MethodGet, "/images/"+imageRef+"/history", nil, nil, &layers)
	return layers, err
}

// ImagePrune deletes unused images. With dangling set only untagged images go.
func (c *Client) ImagePrune(ctx context.Context, dangling bool) (ImagePruneReport, error) {
	q := url.Values{}
	filters, err := encodeFilters(map[string][]string{
		"dangling": {strconv.FormatBool(dangling)},
	})
	if err != nil {
		return ImagePruneReport{}, err
	}
	q.Set("filters", filters)
	var report ImagePruneReport
	err = c.doJSON(ctx, http.MethodPost, "/images/prune", q, nil, &report)
	return report, err
}

// ImageExport returns an image as a tar archive stream.
// The caller closes the returned reader.
func (c *Client) ImageExport(ctx context.Context, imageRef string) (io.ReadCloser, error) {
	return c.stream(ctx, http.MethodGet, "/images/"+imageRef+"/get", nil, nil, nil)
}

// ImageLoad imports images from a tar archive produced by ImageExport.
func (c *Client) ImageLoad(ctx context.Context, archive io.Reader, quiet bool) (*streamkit.RecordIterator[PullStatus], error) {
	q := url.Values{}
	q.Set("quiet", boolValue(quiet))
	header := http.Header{}
	header.Set("Content-Type", "application/x-tar")
	resp, err := c.do(ctx, http.MethodPost, "/images/load", q, archive, header)
	if err != nil {
		return nil, err
	}
	if !statusOK(resp) {
		defer resp.Body.Close()
		return nil, apiError(resp)
	}
	return streamkit.Records[PullStatus](resp.Body), nil
}
