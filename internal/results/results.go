package results

// OperationResult carries either a domain success payload or a domain
// failure payload. Transport errors travel separately as the second return
// value of service methods; a failure here is a business outcome, not an
// infrastructure fault.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

// SuccessResult wraps a success payload.
func SuccessResult[S any, F any](s S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &s}
}

// FailureResult wraps a failure payload.
func FailureResult[S any, F any](f F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &f}
}

// IsSuccess reports whether the result holds a success payload.
func (r OperationResult[S, F]) IsSuccess() bool { return r.Success != nil }

// IsFailure reports whether the result holds a failure payload.
func (r OperationResult[S, F]) IsFailure() bool { return r.Failure != nil }
