package dockhand

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerListOptions_values(t *testing.T) {
	t.Run("zero value adds no parameters", func(t *testing.T) {
		q, err := ContainerListOptions{}.values()
		require.NoError(t, err)
		assert.Empty(t, q)
	})

	t.Run("set fields are rendered", func(t *testing.T) {
		q, err := ContainerListOptions{All: true, Limit: 5, Size: true}.values()
		require.NoError(t, err)
		assert.Equal(t, "1", q.Get("all"))
		assert.Equal(t, "5", q.Get("limit"))
		assert.Equal(t, "1", q.Get("size"))
	})
}

func TestLogsOptions_values(t *testing.T) {
	since := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	q := LogsOptions{Follow: true, Stdout: true, Since: since, Tail: "100"}.values()
	assert.Equal(t, "1", q.Get("follow"))
	assert.Equal(t, "1", q.Get("stdout"))
	assert.Equal(t, "0", q.Get("stderr"))
	assert.Equal(t, "1717243200", q.Get("since"))
	assert.Equal(t, "100", q.Get("tail"))
}

func TestAttachOptions_values(t *testing.T) {
	q := AttachOptions{Stream: true, Stdout: true, Stderr: true, DetachKeys: "ctrl-p,ctrl-q"}.values()
	assert.Equal(t, "1", q.Get("stream"))
	assert.Equal(t, "0", q.Get("stdin"))
	assert.Equal(t, "ctrl-p,ctrl-q", q.Get("detachKeys"))
}

func TestImageBuildOptions_values(t *testing.T) {
	q, err := ImageBuildOptions{
		Tag:       "app:latest",
		NoCache:   true,
		BuildArgs: map[string]string{"VERSION": "1.2.3"},
	}.values()
	require.NoError(t, err)
	assert.Equal(t, "app:latest", q.Get("t"))
	assert.Equal(t, "1", q.Get("nocache"))
	assert.Equal(t, `{"VERSION":"1.2.3"}`, q.Get("buildargs"))
}

func TestEncodeFilters(t *testing.T) {
	t.Run("empty filters encode to nothing", func(t *testing.T) {
		data, err := encodeFilters(nil)
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("filters render as a json object", func(t *testing.T) {
		data, err := encodeFilters(map[string][]string{"status": {"running"}})
		require.NoError(t, err)
		assert.Equal(t, `{"status":["running"]}`, data)
	})
}
