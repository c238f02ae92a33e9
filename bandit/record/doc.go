// Package record persists the decision log of a run for offline plotting
// and analysis. Writers are append-only and reject out-of-order epochs.
package record
