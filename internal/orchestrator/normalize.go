package orchestrator

import "strings"

// NormalizeDecoded canonicalizes decoder output into one comma-joined
// payload. Entries may be plain payloads or strings that look like a
// serialized list, for example "['QR:JP:JPY:1500', 'QR:US:USD:12']".
func NormalizeDecoded(decoded []string) string {
	var parts []string
	for _, entry := range decoded {
		entry = strings.TrimSpace(entry)
		entry = strings.TrimPrefix(entry, "[")
		entry = strings.TrimSuffix(entry, "]")
		for _, part := range strings.Split(entry, ",") {
			part = strings.Trim(strings.TrimSpace(part), `'"`)
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
	}
	return strings.Join(parts, ",")
}
