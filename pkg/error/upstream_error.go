package error

import "net/http"

// UpstreamError signals a failure talking to one of the market data
// aggregators after the client layer has exhausted its single retry.
type UpstreamError string

func (err UpstreamError) Error() string {
	return string(err)
}

func (err UpstreamError) ErrCode() string {
	return "UPSTREAM_ERROR"
}

func (err UpstreamError) StatusCode() int {
	return http.StatusBadGateway
}
