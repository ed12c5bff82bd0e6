package utils

func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

// Reversed returns a copy of the slice in reverse order.
func Reversed[T any](slice []T) []T {
	out := make([]T, len(slice))
	for i, v := range slice {
		out[len(slice)-1-i] = v
	}
	return out
}
