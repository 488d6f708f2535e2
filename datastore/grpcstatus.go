package datastore

import "google.golang.org/grpc/codes"

// GRPCCode maps a Status onto the grpc/codes.Code an RPC surface wrapping
// this store would return. This module does not implement such a surface
// (spec: "RPC surface ... not specified here") but external callers that do
// can reuse this mapping instead of re-deriving it.
func (s Status) GRPCCode() codes.Code {
	switch s {
	case StatusOK:
		return codes.OK
	case StatusInvalidArguments:
		return codes.InvalidArgument
	case StatusPreconditionFailed:
		return codes.FailedPrecondition
	case StatusAlreadyExists:
		return codes.AlreadyExists
	case StatusNotFound:
		return codes.NotFound
	case StatusOperationFailed:
		return codes.Internal
	default:
		return codes.Unknown
	}
}
