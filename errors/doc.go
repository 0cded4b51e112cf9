// Package errors provides standardized error handling for kgx components.
//
// # Error Classification
//
// Errors are classified into three classes: Transient (retryable, e.g. a
// property-graph DB connection blip), Invalid (bad record or config, never
// retried) and Fatal (setup failure, stops the pipeline per §7).
//
// Per-record parse and validation failures are always Invalid: they are
// aggregated by package validate and never abort a Transformer run.
// Structural failures (bad config, unreadable input, DB auth failure) are
// Fatal and abort at setup time.
//
//	src, err := tabular.NewSource(opts)
//	if err != nil {
//	    return errors.WrapFatal(err, "TabularSource", "NewSource", "open input")
//	}
//
//	if err := validateRow(row); err != nil {
//	    agg.Record(validate.LevelWarning, "MISSING_NODE_PROPERTY", err.Error(), id)
//	    continue // never abort on a per-record error
//	}
//
// All wrapping follows "component.method: action failed: %w", and
// classification survives errors.Is/As through the chain.
package errors
