package labelme

import "strings"

// Predicate decides whether a shape takes part in an operation.
type Predicate func(Shape) bool

// All accepts every shape.
func All(Shape) bool { return true }

// LabelHasPrefix accepts shapes whose label starts with prefix.
func LabelHasPrefix(prefix string) Predicate {
	return func(s Shape) bool { return strings.HasPrefix(s.Label, prefix) }
}

// LabelHasSuffix accepts shapes whose label ends with suffix.
func LabelHasSuffix(suffix string) Predicate {
	return func(s Shape) bool { return strings.HasSuffix(s.Label, suffix) }
}

// LabelIn accepts shapes whose label is one of labels.
func LabelIn(labels ...string) Predicate {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return func(s Shape) bool {
		_, ok := set[s.Label]
		return ok
	}
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return func(s Shape) bool { return !p(s) }
}

// And accepts shapes accepted by every predicate. Nil entries are skipped.
func And(preds ...Predicate) Predicate {
	return func(s Shape) bool {
		for _, p := range preds {
			if p != nil && !p(s) {
				return false
			}
		}
		return true
	}
}

// LabelFilter builds the predicate used by the batch drivers: labels must
// be in include (when non-empty), not in exclude, and carry the given prefix
// and suffix (when non-empty).
func LabelFilter(include, exclude []string, prefix, suffix string) Predicate {
	var preds []Predicate
	if len(include) > 0 {
		preds = append(preds, LabelIn(include...))
	}
	if len(exclude) > 0 {
		preds = append(preds, Not(LabelIn(exclude...)))
	}
	if prefix != "" {
		preds = append(preds, LabelHasPrefix(prefix))
	}
	if suffix != "" {
		preds = append(preds, LabelHasSuffix(suffix))
	}
	return And(preds...)
}
