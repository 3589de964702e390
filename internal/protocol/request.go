package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/grossamos/throwscape/internal/config"
)

// MaxLineSize bounds a single request or header line.
const MaxLineSize = 8 << 10

// Header is one header line in wire order. Duplicates are kept as separate entries.
type Header struct {
	Name  string
	Value string
}

type Request struct {
	Method  Method
	Target  Target
	Version Version
	Headers []Header
}

// Header returns the first value for name, compared case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

type deadlineReader interface {
	SetReadDeadline(t time.Time) error
}

var headerRe = regexp.MustCompile(`^([^:\s]+):(.*)$`)

// ReadRequest parses the request line and headers from r. The body, if any, is never read.
// When r supports read deadlines and cfg.Timeout > 0 the whole header phase is bounded by
// one deadline set before the first read. A malformed header returns the request parsed so
// far together with the error, so the caller can answer in the client's version.
func ReadRequest(r io.Reader, cfg *config.Config) (*Request, error) {
	if d, ok := r.(deadlineReader); ok && cfg != nil && cfg.Timeout > 0 {
		if err := d.SetReadDeadline(time.Now().Add(cfg.Timeout)); err != nil {
			return nil, fmt.Errorf("%w: set read deadline: %v", ErrTCPIssue, err)
		}
	}
	br := bufio.NewReaderSize(r, MaxLineSize)

	line, err := readLine(br)
	if err != nil {
		if errors.Is(err, bufio.ErrBufferFull) {
			return nil, fmt.Errorf("%w: request line too long", ErrInvalidSyntax)
		}
		return nil, fmt.Errorf("%w: read request line: %v", ErrTCPIssue, err)
	}

	req, err := parseRequestLine(line)
	if err != nil {
		return nil, err
	}

	for {
		line, err := readLine(br)
		if err != nil {
			if errors.Is(err, bufio.ErrBufferFull) {
				return req, fmt.Errorf("%w: header line too long", ErrInvalidHeaderFormat)
			}
			return nil, fmt.Errorf("%w: read header: %v", ErrTCPIssue, err)
		}
		if line == "" {
			break
		}
		h, err := parseHeader(line)
		if err != nil {
			return req, err
		}
		req.Headers = append(req.Headers, h)
	}
	return req, nil
}

// readLine returns one line without its CRLF or LF terminator.
func readLine(br *bufio.Reader) (string, error) {
	b, err := br.ReadSlice('\n')
	if err != nil {
		return "", err
	}
	b = bytes.TrimSuffix(b, []byte{'\n'})
	b = bytes.TrimSuffix(b, []byte{'\r'})
	return string(b), nil
}

func parseRequestLine(line string) (*Request, error) {
	parts := strings.Split(line, " ")
	if len(parts) > 3 {
		return nil, fmt.Errorf("%w: %d tokens in request line", ErrInvalidSyntax, len(parts))
	}
	if parts[0] == "" {
		return nil, fmt.Errorf("%w: missing method", ErrInvalidMethodFormat)
	}
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: missing target", ErrInvalidTargetFormat)
	}
	if len(parts) < 3 {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidVersionFormat)
	}

	target, err := ParseTarget(parts[1])
	if err != nil {
		return nil, err
	}
	version, err := ParseVersion(parts[2])
	if err != nil {
		return nil, err
	}
	return &Request{
		Method:  ParseMethod(parts[0]),
		Target:  target,
		Version: version,
	}, nil
}

func parseHeader(line string) (Header, error) {
	m := headerRe.FindStringSubmatch(line)
	if m == nil {
		return Header{}, fmt.Errorf("%w: %q", ErrInvalidHeaderFormat, line)
	}
	return Header{Name: m[1], Value: strings.Trim(m[2], " \t")}, nil
}
