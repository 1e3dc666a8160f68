package mapst

// Keys

func Keys[K comparable, V any, M ~map[K]V](m M) []K {
	result := make([]K, 0, len(m))
	for k := range m {
		result = append(result, k)
	}
	return result
}
