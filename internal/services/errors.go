package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// GenericRemoteError is shown when a collaborator returns an error body the
// client does not recognize.
const GenericRemoteError = "the service is temporarily unavailable, please try again"

// RemoteError is the normalized shape of a collaborator failure. Backends
// report either a detail or a message field; whichever is present is surfaced
// verbatim.
type RemoteError struct {
	StatusCode int    `json:"-"`
	Detail     string `json:"detail"`
	Message    string `json:"message"`
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Message != "" {
		return e.Message
	}
	return GenericRemoteError
}

// UserMessage extracts the displayable message from a collaborator error.
// Recognized remote errors surface their detail/message verbatim; anything
// else (transport faults, decoding failures) falls back to the generic
// message rather than leaking internals to the buyer.
func UserMessage(err error) string {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Error()
	}
	return GenericRemoteError
}

// errorFromResponse drains a non-2xx response into a RemoteError. Unrecognized
// bodies fall back to the generic message rather than leaking raw payloads.
func errorFromResponse(resp *http.Response) error {
	remote := &RemoteError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return remote
	}
	if err := json.Unmarshal(body, remote); err != nil {
		return remote
	}
	return remote
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("remote call failed: %w", errorFromResponse(resp))
}
