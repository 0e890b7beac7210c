package shard

import "errors"

// ErrNotFound is returned when an id or key does not resolve on its owning
// shard (spec §7).
var ErrNotFound = errors.New("shard: not found")

// ErrInvalidArgument is returned for a malformed or out-of-schema request
// (e.g. an unknown type id, or a property value of the wrong kind).
var ErrInvalidArgument = errors.New("shard: invalid argument")

// ErrOverloaded is returned by the executor when a shard's inbox is full;
// callers must not block waiting for room (spec §5 "Backpressure").
var ErrOverloaded = errors.New("shard: overloaded")
