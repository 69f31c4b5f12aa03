package host

import "fmt"

// Arg returns argument i as a T.
func Arg[T any](args []any, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(args) {
		return zero, fmt.Errorf("%w: missing argument %d", ErrInvalidArgs, i)
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: argument %d is %T, want %T", ErrInvalidArgs, i, args[i], zero)
	}
	return v, nil
}

// ArgCount checks that exactly n arguments were supplied.
func ArgCount(args []any, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: got %d arguments, want %d", ErrInvalidArgs, len(args), n)
	}
	return nil
}

// As converts a call result to T. A nil result converts to T's zero value.
func As[T any](v any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T, want %T", ErrUnexpectedResult, v, zero)
	}
	return t, nil
}
