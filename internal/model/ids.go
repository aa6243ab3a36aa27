package model

const maxIDLength = 128

// ValidID reports whether s is syntactically acceptable as a txid or address.
// The check is deliberately loose: unknown identifiers must resolve to empty
// results, not errors, so only strings that could never name anything are
// rejected here.
func ValidID(s string) bool {
	if s == "" || len(s) > maxIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		default:
			return false
		}
	}
	return true
}

// FilterValidIDs drops malformed identifiers, preserving order and deduplicating.
func FilterValidIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !ValidID(id) {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
