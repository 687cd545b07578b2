package editor

import (
	"errors"
	"strings"
)

// RemoteError carries the structured messages a backend call failed with.
type RemoteError struct {
	Messages []string
}

func (e *RemoteError) Error() string {
	if len(e.Messages) == 0 {
		return "remote call failed"
	}
	return strings.Join(e.Messages, ", ")
}

// Remotef builds a RemoteError with a single message.
func Remotef(msg string) *RemoteError {
	return &RemoteError{Messages: []string{msg}}
}

// Normalize converts any backend failure into the single string shown to the
// user. Structured messages are joined; anything unrecognized collapses to
// "Unknown error".
func Normalize(err error) string {
	if err == nil {
		return ""
	}
	var re *RemoteError
	if errors.As(err, &re) && len(re.Messages) > 0 {
		return strings.Join(re.Messages, ", ")
	}
	return "Unknown error"
}
