package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Downstream clients and stores return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about remote resources, not validation failures:
// - ErrNotFound: the remote resource does not exist
// - ErrRejected: the remote service refused the write
// - ErrUnavailable: transport failure or the service answered with a 5xx
//
// For user-facing failures use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrRejected    = errors.New("rejected")
	ErrUnavailable = errors.New("unavailable")
)
