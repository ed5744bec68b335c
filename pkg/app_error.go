package pkg

import "fmt"

// AppError is the error shape returned by the HTTP layer. Code is a stable
// machine-readable kind; Err keeps the cause for logs and is never serialized.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	// PaymentID points the client at the payment the error is about, e.g.
	// the live pending payment behind a duplicate checkout.
	PaymentID string
}

// HTTPError is the JSON body of an error response.
type HTTPError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	PaymentID string `json:"paymentId,omitempty"`
}

func NewDomainError(code, message string, err error, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, Err: err, HTTPStatus: httpStatus}
}

func NewDomainErrorSimple(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// WithPaymentID returns a copy of e referencing paymentID.
func (e *AppError) WithPaymentID(paymentID string) *AppError {
	out := *e
	out.PaymentID = paymentID
	return &out
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) ToHTTPError() HTTPError {
	return HTTPError{Code: e.Code, Message: e.Message, PaymentID: e.PaymentID}
}
