package cfrac

import "errors"

var (
	// ErrDivisionByZero is returned when the right-hand operand of a division
	// is zero, or when the reciprocal of zero is requested. It is detected
	// before the merge loop starts.
	ErrDivisionByZero = errors.New("cfrac: division by zero")

	// ErrSyntax is returned by the parsers when the input is not a valid
	// continued fraction, fraction literal or operator.
	ErrSyntax = errors.New("cfrac: invalid syntax")
)
