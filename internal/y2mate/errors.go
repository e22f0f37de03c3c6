package y2mate

import "errors"

var (
	// ErrMalformedURL means no video id could be read from the input URL.
	ErrMalformedURL = errors.New("malformed video url")
	// ErrMalformedRow means one table row did not have the expected cells.
	ErrMalformedRow = errors.New("malformed option row")
	// ErrRemoteUnavailable means a metadata call returned a non-200 status
	// or a non-JSON body. The whole resolution should be retried.
	ErrRemoteUnavailable = errors.New("remote service unavailable")
	// ErrFormatUnavailable means the requested format family is not offered.
	ErrFormatUnavailable = errors.New("format specified not available")
	// ErrVideoTooLong is reported by the converter for long videos.
	ErrVideoTooLong = errors.New("video is too long, try with shorter one")
	// ErrLinkResolutionFailed means the convert response carried no link.
	ErrLinkResolutionFailed = errors.New("something is wrong with download, try again")
)
