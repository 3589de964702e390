package protocol

import "errors"

// Parse errors. All of them are terminal for the connection only.
var (
	ErrInvalidSyntax        = errors.New("invalid syntax")
	ErrInvalidMethodFormat  = errors.New("invalid method format")
	ErrInvalidTargetFormat  = errors.New("invalid target format")
	ErrInvalidVersionFormat = errors.New("invalid version format")
	ErrInvalidHeaderFormat  = errors.New("invalid header format")
	ErrUnknownScheme        = errors.New("unknown scheme")
	// ErrTCPIssue wraps read failures: peer closed, timed out or reset.
	ErrTCPIssue = errors.New("tcp issue")
)

// ErrorKind returns a short stable label for a parse error, used for metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTCPIssue):
		return "tcp_issue"
	case errors.Is(err, ErrInvalidSyntax):
		return "invalid_syntax"
	case errors.Is(err, ErrInvalidMethodFormat):
		return "invalid_method"
	case errors.Is(err, ErrInvalidTargetFormat):
		return "invalid_target"
	case errors.Is(err, ErrInvalidVersionFormat):
		return "invalid_version"
	case errors.Is(err, ErrInvalidHeaderFormat):
		return "invalid_header"
	case errors.Is(err, ErrUnknownScheme):
		return "unknown_scheme"
	default:
		return "other"
	}
}
