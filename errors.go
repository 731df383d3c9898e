package dockhand

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.llib.dev/frameless/pkg/errorkit"
)

const (
	// ErrNotFound is matched by errors.Is when the daemon answered 404.
	ErrNotFound errorkit.Error = "dockhand: no such object"
	// ErrConflict is matched by errors.Is when the daemon answered 409,
	// for example removing a running container without force.
	ErrConflict errorkit.Error = "dockhand: conflict"
)

// APIError is a non-2xx answer of the daemon,
// with the message the daemon put into the error body.
type APIError struct {
	StatusCode int
	Message    string
}

func (err APIError) Error() string {
	msg := fmt.Sprintf("docker daemon: %d %s", err.StatusCode, http.StatusText(err.StatusCode))
	if err.Message != "" {
		msg += ": " + err.Message
	}
	return msg
}

func (err APIError) Is(target error) bool {
	switch {
	case errors.Is(target, ErrNotFound):
		return err.StatusCode == http.StatusNotFound
	case errors.Is(target, ErrConflict):
		return err.StatusCode == http.StatusConflict
	default:
		return false
	}
}

// IsErrNotFound tells whether the error is the daemon's 404 answer.
func IsErrNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsErrConflict tells whether the error is the daemon's 409 answer.
func IsErrConflict(err error) bool { return errors.Is(err, ErrConflict) }

// apiError turns a non-2xx response into an APIError.
// The daemon reports errors as {"message": "..."} JSON bodies.
func apiError(resp *http.Response) error {
	var apiErr = APIError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil {
		var body struct {
			Message string `json:"message"`
		}
		if jsonErr := json.Unmarshal(data, &body); jsonErr == nil && body.Message != "" {
			apiErr.Message = body.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
	}
	return apiErr
}
