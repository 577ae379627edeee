package status

import "errors"

// ErrorCode is a numeric code to classify API errors in a stable way
type ErrorCode int

// Reserved ranges by domain:
//   0-999:     client/validation errors
//   1000-1999: upstream and pipeline failures

const (
	BadRequestBase    ErrorCode = 0
	InternalErrorBase ErrorCode = 1000
)

// client/validation errors start at *000
const (
	InvalidRequestBody ErrorCode = BadRequestBase + iota // 0
	MissingParams                                        // 1
	InvalidParams                                        // 2
)

// internal errors start at 1000
const (
	ChatCompletionFailed ErrorCode = InternalErrorBase + iota // 1000
	MalformedModelOutput                                      // 1001
	RetrievalFailed                                           // 1002
	EmbeddingFailed                                           // 1003
	IngestionFailed                                           // 1004
	StorageUnavailable                                        // 1005
)

const (
	ErrorCodeInternal ErrorCode = 9000
)

// CodedError represents an error with an associated ErrorCode
type CodedError interface {
	error
	ErrorCode() ErrorCode
}

type codedError struct {
	code ErrorCode
	err  error
}

func (e codedError) Error() string        { return e.err.Error() }
func (e codedError) Unwrap() error        { return e.err }
func (e codedError) ErrorCode() ErrorCode { return e.code }

// New creates a new CodedError with the given code and underlying error
func New(code ErrorCode, err error) error {
	if err == nil {
		return nil
	}
	return codedError{code: code, err: err}
}

// WithDefault attaches code to err unless err already carries one.
func WithDefault(code ErrorCode, err error) error {
	var ce CodedError
	if err == nil || errors.As(err, &ce) {
		return err
	}
	return codedError{code: code, err: err}
}

// CodeOf returns the first ErrorCode found in err's chain, or ErrorCodeInternal.
func CodeOf(err error) ErrorCode {
	var ce CodedError
	if errors.As(err, &ce) {
		return ce.ErrorCode()
	}
	return ErrorCodeInternal
}

// IsClientError reports whether code belongs to the bad-request range.
func (c ErrorCode) IsClientError() bool {
	return c >= BadRequestBase && c < InternalErrorBase
}
