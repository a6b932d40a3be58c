// Package grid implements the cross-panel drag-and-drop track transfer engine.
//
// # Components
//
//  1. [DragPayload] : immutable description of the tracks being dragged,
//     serialized across the drop boundary and guarded by [IsDragData]
//  2. [Registry] : single source of truth for what each panel displays, with
//     per-panel monotonic versions for stale-result detection
//  3. [PlanTransfer] : pure planning of a drop into a [TransferPlan] (final
//     orderings plus the remote mutation sequence)
//  4. [Executor] : optimistic apply, remote commit, and reconciliation
//     (rollback or recovery re-fetch) for a plan
//  5. [Cursor] : opaque pagination token shared by playlist and track listings
//
// # Drag protocol
//
// A drag is a three-phase protocol independent of any input-event API:
// payload construction at drag start, predicate-guarded acceptance at drop,
// and plan-then-commit at resolution. Anything failing [IsDragData] at the
// drop boundary is ignored with no effect.
//
// # Concurrency
//
// The engine is driven by a cooperative event loop (the TUI) with async
// completions delivered as messages. Loads and transfers in flight carry the
// panel version they observed at issue time; completions arriving after the
// panel has moved on are discarded rather than racing the newer state. Local
// mutation is atomic: the registry never exposes a partially updated panel.
package grid
