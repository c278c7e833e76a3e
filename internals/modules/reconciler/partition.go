package reconciler

import (
	"fmt"
	"strconv"
	"strings"
)

// Partition selects chunk k of statically-sized slices of the ordered
// item set: chunk k of size S owns positions (k-1)*S .. k*S-1. The zero
// value selects everything.
type Partition struct {
	Number int
	Size   int
}

// ParsePartition parses the "--chunk=k-S" flag value.
func ParsePartition(s string) (Partition, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Partition{}, nil
	}

	numStr, sizeStr, ok := strings.Cut(s, "-")
	if !ok {
		return Partition{}, fmt.Errorf("chunk must be \"k-S\", got %q", s)
	}

	num, err := strconv.Atoi(numStr)
	if err != nil || num < 1 {
		return Partition{}, fmt.Errorf("chunk number must be a positive integer, got %q", numStr)
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 {
		return Partition{}, fmt.Errorf("chunk size must be a positive integer, got %q", sizeStr)
	}

	return Partition{Number: num, Size: size}, nil
}

func (p Partition) IsZero() bool {
	return p.Number <= 0 || p.Size <= 0
}

// Apply slices the ordered id list down to this partition's chunk.
func (p Partition) Apply(ids []int64) []int64 {
	if p.IsZero() {
		return ids
	}

	start := (p.Number - 1) * p.Size
	if start >= len(ids) {
		return nil
	}

	end := start + p.Size
	if end > len(ids) {
		end = len(ids)
	}
	return ids[start:end]
}
