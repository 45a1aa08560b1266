// Package event defines the lifecycle event record shared by every
// fault-tolerance primitive and a bounded, non-blocking publisher for it.
package event

import "time"

// Kind identifies what happened during a primitive's lifecycle. Each
// primitive only ever emits a subset of these.
type Kind string

// Event kinds shared across primitives.
const (
	KindSuccess         Kind = "SUCCESS"
	KindError           Kind = "ERROR"
	KindIgnoredError    Kind = "IGNORED_ERROR"
	KindSlowSuccess     Kind = "SLOW_SUCCESS"
	KindSlowError       Kind = "SLOW_ERROR"
	KindNotPermitted    Kind = "NOT_PERMITTED"
	KindStateTransition Kind = "STATE_TRANSITION"
	KindReset           Kind = "RESET"
	KindPermitAcquired  Kind = "PERMIT_ACQUIRED"
	KindPermitRejected  Kind = "PERMIT_REJECTED"
	KindRetry           Kind = "RETRY"
	KindRetryExhausted  Kind = "RETRY_EXHAUSTED"
	KindTimeout         Kind = "TIMEOUT"

	// Registry lifecycle kinds. InstanceName on these events is the
	// registry entry's name, not a primitive instance's own events.
	KindEntryAdded    Kind = "ENTRY_ADDED"
	KindEntryRemoved  Kind = "ENTRY_REMOVED"
	KindEntryReplaced Kind = "ENTRY_REPLACED"
)

// Event is the common lifecycle record published by every primitive.
//
// Payload carries kind-specific detail (a StateTransition for
// KindStateTransition, the classified error for KindError, and so on);
// callers type-assert it based on Kind.
type Event struct {
	InstanceName string
	Timestamp    time.Time
	Kind         Kind
	Elapsed      time.Duration
	Payload      any
}

// StateTransition is the payload of a KindStateTransition event.
type StateTransition struct {
	From string
	To   string
}

// EntryReplaced is the payload of a KindEntryReplaced event. Old and New
// are the replaced and replacing entries, typed as any since Registry is
// generic over the entry type.
type EntryReplaced struct {
	Old any
	New any
}
