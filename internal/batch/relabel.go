package batch

import (
	"strings"

	"github.com/ironsheep/dataset-aug/internal/config"
)

// Relabel maps label through rename (exact match) first, then through the
// first rule whose prefix and suffix both match. Labels nothing matches
// are returned unchanged.
func Relabel(label string, rename map[string]string, rules []config.LabelRule) string {
	if to, ok := rename[label]; ok {
		return to
	}
	for _, r := range rules {
		if strings.HasPrefix(label, r.Prefix) && strings.HasSuffix(label, r.Suffix) {
			return r.To
		}
	}
	return label
}

// splitDir returns the directory of the first rule whose prefix label
// starts with.
func splitDir(label string, rules []config.SplitRule) (string, bool) {
	for _, r := range rules {
		if strings.HasPrefix(label, r.Prefix) {
			return r.Dir, true
		}
	}
	return "", false
}
