package pager

// ShouldLoadMore reports whether index is close enough to the end of a
// sequence of length to ask for more elements. It is a pure function of its
// inputs; the pager only evaluates it when the current index changes.
func ShouldLoadMore(index, length, distanceFromEnd int) bool {
	return index+distanceFromEnd >= length-1
}
