package model

// DataResponse is the envelope the Orbiter API wraps every successful
// payload in.
type DataResponse[T any] struct {
	Data T `json:"data"`
}

// ErrorResponse is the body returned alongside non-2xx statuses. Depending
// on the endpoint the message is carried in either field.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Text returns whichever message field is populated.
func (e *ErrorResponse) Text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}
