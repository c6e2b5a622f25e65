package sequence

import (
	"strconv"
	"strings"
)

// ParseStart extracts the presumed start position from a fragment identifier.
// Two conventions are recognised: "name_start_end" and "start.length".
func ParseStart(id string) (int, bool) {
	if id == "" {
		return -1, false
	}
	if dot := strings.IndexByte(id, '.'); dot > 0 {
		start, err1 := strconv.Atoi(id[:dot])
		length, err2 := strconv.Atoi(id[dot+1:])
		if err1 == nil && err2 == nil && start >= 0 && length > 0 {
			return start, true
		}
	}
	parts := strings.Split(id, "_")
	if len(parts) >= 3 {
		start, err1 := strconv.Atoi(parts[len(parts)-2])
		end, err2 := strconv.Atoi(parts[len(parts)-1])
		if err1 == nil && err2 == nil && start >= 0 && end >= start {
			return start, true
		}
	}
	return -1, false
}

// SplitHeader splits a FASTA header line (without '>') into id and description.
func SplitHeader(header string) (id, description string) {
	header = strings.TrimSpace(header)
	if i := strings.IndexAny(header, " \t"); i >= 0 {
		return header[:i], strings.TrimSpace(header[i+1:])
	}
	return header, ""
}
