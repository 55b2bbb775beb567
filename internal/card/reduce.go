package card

// Container is anything that can tell whether it holds another item of the
// same kind. An item holds itself.
type Container[T any] interface {
	Contains(other T) bool
}

// ReduceSubsetsFromSets keeps only the items not held by another one, so a
// subtree reachable both directly and through an ancestor is counted once.
// Walking left to right, an item is dropped when any later item holds it
// or any item already kept holds it.
func ReduceSubsetsFromSets[T Container[T]](items []T) []T {
	var kept []T
	for i, item := range items {
		if heldByAny(items[i+1:], item) || heldByAny(kept, item) {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

func heldByAny[T Container[T]](holders []T, item T) bool {
	for _, holder := range holders {
		if holder.Contains(item) {
			return true
		}
	}
	return false
}
