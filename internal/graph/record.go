package graph

// Record is a loosely typed, string-keyed record. Node state, node outputs,
// and initial-state overrides are all Records, which keeps the model open to
// arbitrary node shapes; port declarations are checked at Validate time
// rather than at compile time.
type Record map[string]any

// Clone returns a shallow copy of the record. A nil record clones to an
// empty, non-nil record so callers can write into the result.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// NumericValue reports whether v is a Go numeric value and returns it as a
// float64. This is the single definition of "numeric field" shared by
// back-edge default scanning, forward-edge resolution, and convergence
// comparison.
func NumericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}

// NumericField extracts the named field from r as a float64.
// Missing or non-numeric fields yield (0, false).
func NumericField(r Record, field string) (float64, bool) {
	v, ok := r[field]
	if !ok {
		return 0, false
	}
	return NumericValue(v)
}
