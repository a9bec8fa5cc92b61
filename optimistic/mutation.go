// Package optimistic implements the snapshot/apply/call/confirm/restore
// policy shared by every mutating operation in the synchronization core.
package optimistic

import (
	"context"
	"log/slog"

	"skillsync/logging"
)

// Mutation describes one optimistic state change over a snapshot type S.
// Snapshot, Apply, Call and Restore are required; Confirm and Discarded are
// optional.
type Mutation[S any] struct {
	// Name identifies the operation in rollback logs.
	Name string

	// Snapshot captures the relevant sub-state before any change.
	Snapshot func() S

	// Apply performs the intended change on local state synchronously.
	Apply func()

	// Call issues the network request backing the change.
	Call func(ctx context.Context) error

	// Confirm runs after a successful call, typically to replace
	// provisional client-generated identifiers with server-confirmed ones.
	Confirm func()

	// Restore puts back the snapshot after a failed call.
	Restore func(S)

	// Discarded reports that the mutation's target no longer exists (for
	// example the aggregate was evicted while the call was in flight), in
	// which case neither Confirm nor Restore is applied.
	Discarded func() bool
}

// Run executes the mutation. Local state is changed before the network call
// and restored from the snapshot if the call fails; the error is returned
// unchanged so call sites can surface it.
func Run[S any](ctx context.Context, m Mutation[S]) error {
	snap := m.Snapshot()
	m.Apply()

	if err := m.Call(ctx); err != nil {
		if m.Discarded != nil && m.Discarded() {
			return err
		}
		m.Restore(snap)
		logging.Logger.Warn("optimistic mutation rolled back",
			slog.String("op", m.Name),
			slog.String("error", err.Error()))
		return err
	}

	if m.Discarded != nil && m.Discarded() {
		return nil
	}
	if m.Confirm != nil {
		m.Confirm()
	}
	return nil
}
