// Package events defines the progress events emitted while an algorithm runs.
//
// Available event types:
//   - SolutionEvent: a better schedule was found
//   - BoundEvent: a tighter upper bound on the optimal profit was proved
//   - RoundEvent: a column generation pricing round finished
//   - SubproblemEvent: a single-night pricing problem was solved
//
// Progress wraps one of them for transport on a typed event bus.
package events
