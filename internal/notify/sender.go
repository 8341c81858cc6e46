package notify

import (
	"context"
	"errors"
	"fmt"
)

// Sender delivers a rendered notification to one named channel. The chat
// platform client owns the actual transport; the dispatcher only inspects
// success, failure and retryability.
type Sender interface {
	Send(ctx context.Context, channelID, message string) error
}

// ErrUnknownChannel means the channel id has no configured destination.
// Not retryable: configuration will not change mid-flight.
var ErrUnknownChannel = errors.New("unknown channel")

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// MarkRetryable wraps a delivery failure that is worth another attempt.
func MarkRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// Retryable reports whether the delivery failure may succeed on retry.
func Retryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// MultiSender fans a message out to every sender; the first failure is
// returned but all senders are attempted.
type MultiSender []Sender

func (m MultiSender) Send(ctx context.Context, channelID, message string) error {
	var firstErr error
	for _, s := range m {
		if err := s.Send(ctx, channelID, message); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("multi send: %w", err)
		}
	}
	return firstErr
}
