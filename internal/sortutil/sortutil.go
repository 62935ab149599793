// Package sortutil provides small deterministic-ordering helpers shared by
// the workspace search and snapshot layers.
package sortutil

import "sort"

// StablePathSort returns a new slice containing the input paths sorted
// lexicographically. The original slice is not modified.
func StablePathSort(paths []string) []string {
	out := make([]string, len(paths))
	copy(out, paths)
	sort.Strings(out)
	return out
}

// UniqueSorted returns the input paths sorted lexicographically with exact
// duplicates removed. The original slice is not modified.
func UniqueSorted(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	sorted := StablePathSort(paths)
	out := sorted[:1]
	for _, p := range sorted[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
