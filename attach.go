package dockhand

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"go.llib.dev/dockhand/streamkit"
)

// ContainerAttach hooks up to the live output of a container.
// The returned streams carry the container's stdout and stderr separately,
// unless the container runs with a TTY, then everything arrives on stdout.
//
// Attaching with stdin requires a bidirectional connection,
// use ContainerAttachWS for that.
func (c *Client) ContainerAttach(ctx context.Context, containerID string, opts AttachOptions) (*streamkit.StdioStreams, error) {
	body, err := c.stream(ctx, http.MethodPost, "/containers/"+containerID+"/attach", opts.values(), nil, nil)
	if err != nil {
		return nil, err
	}
	return streamkit.Demux(streamkit.Frames(body)), nil
}

// ContainerAttachWS attaches to a container over the websocket endpoint,
// which allows writing to the container's stdin while reading its output.
// The output arrives raw, without stdio framing.
func (c *Client) ContainerAttachWS(ctx context.Context, containerID string, opts AttachOptions) (io.ReadWriteCloser, error) {
	if err := c.init(); err != nil {
		return nil, err
	}
	wsURL := c.requestURL("/containers/"+containerID+"/attach/ws", opts.values())
	wsURL = strings.Replace(wsURL, "http", "ws", 1)
	dialer := websocket.Dialer{
		NetDialContext:  c.dialCtx,
		TLSClientConfig: c.TLSConfig,
	}
	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return nil, apiError(resp)
		}
		return nil, err
	}
	if resp != nil {
		resp.Body.Close()
	}
	return &wsStream{conn: conn}, nil
}

// wsStream adapts a websocket connection to a byte stream.
type wsStream struct {
	conn    *websocket.Conn
	pending io.Reader
}

func (s *wsStream) Read(p []byte) (int, error) {
	for {
		if s.pending != nil {
			n, err := s.pending.Read(p)
			if err == io.EOF {
				s.pending = nil
				if n == 0 {
					continue
				}
				return n, nil
			}
			return n, err
		}
		_, r, err := s.conn.NextReader()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return 0, io.EOF
			}
			return 0, err
		}
		s.pending = r
	}
}

func (s *wsStream) Write(p []byte) (int, error) {
	if err := s.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *wsStream) Close() error {
	return s.conn.Close()
}
