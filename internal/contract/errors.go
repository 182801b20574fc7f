package contract

import "fmt"

// ArgumentCountError reports a mismatch between supplied constructor
// arguments and the constructor's declared inputs. Arguments are positional;
// the two counts must line up exactly, in both directions.
type ArgumentCountError struct {
	Expected int
	Got      int
}

func (e *ArgumentCountError) Error() string {
	return fmt.Sprintf("constructor expects %d argument(s), got %d", e.Expected, e.Got)
}

// ArgumentTypeError reports a single positional value that could not be
// converted to its declared ABI type. Index is zero-based.
type ArgumentTypeError struct {
	Index        int
	ExpectedType string
	RawValue     string
	Cause        error
}

func (e *ArgumentTypeError) Error() string {
	msg := fmt.Sprintf("argument %d: cannot convert %q to %s", e.Index, e.RawValue, e.ExpectedType)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ArgumentTypeError) Unwrap() error { return e.Cause }

// EstimationError reports a failed deployment cost estimate. It only ever
// wraps a gas-price fetch failure — bytecode shape never fails estimation.
type EstimationError struct {
	Cause error
}

func (e *EstimationError) Error() string {
	return "cost estimation failed: " + e.Cause.Error()
}

func (e *EstimationError) Unwrap() error { return e.Cause }
