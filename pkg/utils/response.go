package utils

// ResponseData is the JSON envelope used by every REST handler.
// Status is only used to set the HTTP status code, it is not serialized.
type ResponseData struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics on error so the recovery middleware can translate
// typed errors into HTTP responses.
func PanicIfNeeded(err any) {
	if err != nil {
		panic(err)
	}
}
