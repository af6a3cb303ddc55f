package error

import "net/http"

// InvalidInputError rejects malformed symbols/addresses before any
// network call is made.
type InvalidInputError string

func (err InvalidInputError) Error() string {
	return string(err)
}

func (err InvalidInputError) ErrCode() string {
	return "INVALID_INPUT_ERROR"
}

func (err InvalidInputError) StatusCode() int {
	return http.StatusBadRequest
}
