package graph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadEdgeList loads a spanning tree computed elsewhere. Each line holds
// "from to [weight]"; blank lines and lines starting with '#' are skipped.
func ReadEdgeList(r io.Reader, n int) (*Tree, error) {
	t := NewTree(n)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected \"from to [weight]\"", lineNo)
		}
		vals := make([]int, 3)
		for i := 0; i < len(fields) && i < 3; i++ {
			v, err := strconv.Atoi(fields[i])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			vals[i] = v
		}
		if vals[0] < 0 || vals[0] >= n || vals[1] < 0 || vals[1] >= n {
			return nil, fmt.Errorf("line %d: vertex outside [0, %d)", lineNo, n)
		}
		t.AddEdge(vals[0], vals[1], vals[2])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading edge list: %w", err)
	}
	return t, nil
}
