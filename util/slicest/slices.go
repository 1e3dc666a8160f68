package slicest

// Map

func MapXI[T, U any, S ~[]T](s S, fn func(int, T) (U, error)) ([]U, error) {
	result := make([]U, len(s))
	for i, v := range s {
		out, err := fn(i, v)
		if err != nil {
			return nil, err
		}
		result[i] = out
	}
	return result, nil
}

func MapX[T, U any, S ~[]T](s S, fn func(T) (U, error)) ([]U, error) {
	return MapXI(s, func(_ int, t T) (U, error) {
		return fn(t)
	})
}

func MapI[T, U any, S ~[]T](s S, fn func(int, T) U) []U {
	result, _ := MapXI(s, func(i int, t T) (U, error) {
		return fn(i, t), nil
	})
	return result
}

func Map[T, U any, S ~[]T](s S, fn func(T) U) []U {
	result, _ := MapXI(s, func(_ int, t T) (U, error) {
		return fn(t), nil
	})
	return result
}

// Filter

// FilterX returns a new slice containing elements for which fn returns true.
func FilterX[T any, S ~[]T](s S, fn func(T) (bool, error)) (S, error) {
	var result S
	for _, v := range s {
		ok, err := fn(v)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, v)
		}
	}
	return result, nil
}

func Filter[T any, S ~[]T](s S, fn func(T) bool) S {
	result, _ := FilterX(s, func(t T) (bool, error) {
		return fn(t), nil
	})
	return result
}

// Reduce

// ReduceXD reduces slice S to type U with initial value and error propagation.
// - X: Stops on failure and returns error.
// - D: Uses init parameter as starting accumulator.
func ReduceXD[T any, S ~[]T, U any](s S, init U, fn func(T, U) (U, error)) (U, error) {
	var zero U
	for _, t := range s {
		var err error
		init, err = fn(t, init)
		if err != nil {
			return zero, err
		}
	}
	return init, nil
}

// ReduceD reduces slice S to type U using explicit initial value.
// - D: Uses init parameter as starting accumulator.
func ReduceD[T any, S ~[]T, U any](s S, init U, fn func(T, U) U) U {
	result, _ := ReduceXD(s, init, func(t T, u U) (U, error) {
		return fn(t, u), nil
	})
	return result
}

// Reduce reduces slice S to type U.
func Reduce[T any, S ~[]T, U any](s S, fn func(T, U) U) U {
	var zero U
	return ReduceD(s, zero, fn)
}
