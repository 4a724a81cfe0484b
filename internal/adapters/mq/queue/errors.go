package queue

import "errors"

// ErrRejected means the queue was closed or full when enqueuing.
var ErrRejected = errors.New("queue rejected event")
