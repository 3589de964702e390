package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/grossamos/throwscape/internal/config"
)

// Response is built once per request and sent once. The body is either a resolved file,
// streamed at send time, or a short literal text.
type Response struct {
	Status  Status
	Version Version
	Headers []Header

	filePath string
	text     string
	length   int64
	headOnly bool
}

// ContentLength is the advertised body length, also for HEAD responses.
func (r *Response) ContentLength() int64 { return r.length }

// HeadOnly reports whether Send omits the body.
func (r *Response) HeadOnly() bool { return r.headOnly }

// FilePath is the resolved file backing the body, empty for text bodies.
func (r *Response) FilePath() string { return r.filePath }

// BuildResponse resolves req against the serve root of cfg. It never fails: every problem
// is expressed as an error status.
func BuildResponse(req *Request, cfg *config.Config) *Response {
	headOnly := req.Method == MethodHead

	var path string
	switch req.Target.Form {
	case OriginForm:
		path = req.Target.Path
	case AbsoluteForm:
		path = "/"
		if req.Target.HasPath {
			path = req.Target.Path
		}
	default:
		return statusResponse(StatusBadRequest, req.Version, headOnly, cfg)
	}

	switch req.Method {
	case MethodGet, MethodHead:
	case MethodUnknown:
		return statusResponse(StatusNotImplemented, req.Version, headOnly, cfg)
	default:
		return statusResponse(StatusMethodNotAllowed, req.Version, headOnly, cfg)
	}

	file, size, err := ResolveFile(path, cfg.ServeRoot(), cfg.IndexFile)
	switch {
	case errors.Is(err, errNotFound):
		return statusResponse(StatusNotFound, req.Version, headOnly, cfg)
	case err != nil:
		return statusResponse(StatusInternalServerError, req.Version, headOnly, cfg)
	}
	return fileResponse(StatusOK, req.Version, file, size, headOnly)
}

// ErrorResponse maps a parse error to the response sent in its place. req is whatever
// ReadRequest managed to parse and may be nil; its version is echoed when present. ok is false
// when the request line was too damaged (or the transport failed) and the connection should be
// closed without a response.
func ErrorResponse(req *Request, err error) (resp *Response, ok bool) {
	version := HTTP11
	if req != nil {
		version = req.Version
	}
	switch {
	case errors.Is(err, ErrInvalidTargetFormat),
		errors.Is(err, ErrInvalidHeaderFormat),
		errors.Is(err, ErrUnknownScheme):
		return textResponse(StatusBadRequest, version, false), true
	default:
		return nil, false
	}
}

func statusResponse(status Status, version Version, headOnly bool, cfg *config.Config) *Response {
	if status == StatusNotFound && cfg != nil && cfg.NotFoundFile != "" {
		if info, err := os.Stat(cfg.NotFoundFile); err == nil && info.Mode().IsRegular() {
			return fileResponse(status, version, cfg.NotFoundFile, info.Size(), headOnly)
		}
	}
	return textResponse(status, version, headOnly)
}

func fileResponse(status Status, version Version, path string, size int64, headOnly bool) *Response {
	return &Response{
		Status:   status,
		Version:  version,
		Headers:  []Header{{Name: "Content-Length", Value: strconv.FormatInt(size, 10)}},
		filePath: path,
		length:   size,
		headOnly: headOnly,
	}
}

func textResponse(status Status, version Version, headOnly bool) *Response {
	text := status.Reason()
	return &Response{
		Status:   status,
		Version:  version,
		Headers:  []Header{{Name: "Content-Length", Value: strconv.Itoa(len(text))}},
		text:     text,
		length:   int64(len(text)),
		headOnly: headOnly,
	}
}

// Send writes the status line, headers and body to w. File bodies are streamed. Write
// errors are returned as-is and never retried.
func (r *Response) Send(w io.Writer) error {
	var body io.Reader
	if !r.headOnly {
		if r.filePath != "" {
			f, err := os.Open(r.filePath)
			if err != nil {
				return fmt.Errorf("open body %s: %w", r.filePath, err)
			}
			defer f.Close()
			body = io.LimitReader(f, r.length)
		} else {
			body = strings.NewReader(r.text)
		}
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s %d %s\r\n", r.Version, r.Status.Code(), r.Status.Reason()); err != nil {
		return err
	}
	for _, h := range r.Headers {
		if _, err := fmt.Fprintf(bw, "%s: %s\r\n", h.Name, h.Value); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("\r\n"); err != nil {
		return err
	}
	if body != nil {
		if _, err := io.Copy(bw, body); err != nil {
			return fmt.Errorf("write body: %w", err)
		}
	}
	return bw.Flush()
}
