package bench

// SnapshotPolicy reports whether the data of a batch size is retained for persistence.
type SnapshotPolicy func(batchSize int) bool

// SnapshotSizes retains exactly the given batch sizes.
func SnapshotSizes(sizes ...int) SnapshotPolicy {
	keep := make(map[int]bool, len(sizes))
	for _, n := range sizes {
		keep[n] = true
	}
	return func(batchSize int) bool { return keep[batchSize] }
}

// SnapshotLargest retains only the largest of the given batch sizes.
func SnapshotLargest(batchSizes []int) SnapshotPolicy {
	largest := 0
	for _, n := range batchSizes {
		if n > largest {
			largest = n
		}
	}
	return SnapshotSizes(largest)
}

// SnapshotNone retains nothing.
func SnapshotNone(int) bool { return false }
