package protocol

import (
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/grossamos/throwscape/internal/config"
)

func TestReadRequestLine(t *testing.T) {
	req, err := ReadRequest(strings.NewReader("GET * HTTP/1.1\r\n\r\n"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Method != MethodGet {
		t.Errorf("method = %v", req.Method)
	}
	if req.Target.Form != AsteriskForm {
		t.Errorf("form = %v", req.Target.Form)
	}
	if req.Version != (Version{Major: 1, Minor: 1}) {
		t.Errorf("version = %v", req.Version)
	}
	if len(req.Headers) != 0 {
		t.Errorf("headers = %v", req.Headers)
	}
}

func TestReadRequestOriginWithQuery(t *testing.T) {
	req, err := ReadRequest(strings.NewReader("GET /a/b?q=1 HTTP/1.1\r\n\r\n"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Target.Form != OriginForm || req.Target.Path != "/a/b" || !req.Target.HasQuery || req.Target.Query != "q=1" {
		t.Fatalf("target = %+v", req.Target)
	}
}

func TestReadRequestUnknownMethod(t *testing.T) {
	req, err := ReadRequest(strings.NewReader("GLOOP * HTTP/1.1\r\n\r\n"), nil)
	if err != nil {
		t.Fatalf("unknown method must not be a parse error: %v", err)
	}
	if req.Method != MethodUnknown {
		t.Fatalf("method = %v", req.Method)
	}
}

func TestReadRequestMinorVersion(t *testing.T) {
	req, err := ReadRequest(strings.NewReader("HEAD / HTTP/1.0\r\n\r\n"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Version != (Version{Major: 1, Minor: 0}) {
		t.Fatalf("version = %v", req.Version)
	}
	if req.Version.String() != "HTTP/1.0" {
		t.Fatalf("version string = %s", req.Version)
	}
}

func TestReadRequestErrors(t *testing.T) {
	long := "GET /" + strings.Repeat("a", MaxLineSize) + " HTTP/1.1\r\n\r\n"
	longHeader := "GET / HTTP/1.1\r\nX-Long: " + strings.Repeat("b", MaxLineSize) + "\r\n\r\n"

	cases := []struct {
		name  string
		input string
		want  error
	}{
		{"empty stream", "", ErrTCPIssue},
		{"too many tokens", "GET * from a good website\r\n\r\n", ErrInvalidSyntax},
		{"empty method", "\r\n\r\n", ErrInvalidMethodFormat},
		{"missing target", "GET\r\n\r\n", ErrInvalidTargetFormat},
		{"missing version", "GET /\r\n\r\n", ErrInvalidVersionFormat},
		{"empty target", "GET  HTTP/1.1\r\n\r\n", ErrInvalidTargetFormat},
		{"bad target", "GET *bluib HTTP/1.1\r\n\r\n", ErrInvalidTargetFormat},
		{"bad version", "GET / Amos/1.1\r\n\r\n", ErrInvalidSyntax},
		{"two digit version", "GET / HTTP/11.1\r\n\r\n", ErrInvalidSyntax},
		{"bad header", "GET / HTTP/1.1\r\nno colon here\r\n\r\n", ErrInvalidHeaderFormat},
		{"space before colon", "GET / HTTP/1.1\r\nHost : x\r\n\r\n", ErrInvalidHeaderFormat},
		{"eof in headers", "GET / HTTP/1.1\r\nHost: x\r\n", ErrTCPIssue},
		{"request line too long", long, ErrInvalidSyntax},
		{"header line too long", longHeader, ErrInvalidHeaderFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadRequest(strings.NewReader(tc.input), nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestReadRequestHeaders(t *testing.T) {
	in := "GET / HTTP/1.1\r\nHost:   example.com  \r\nAccept: a\r\nAccept: b\r\nX-Empty:\r\n\r\nbody is ignored"
	req, err := ReadRequest(strings.NewReader(in), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Header{
		{Name: "Host", Value: "example.com"},
		{Name: "Accept", Value: "a"},
		{Name: "Accept", Value: "b"},
		{Name: "X-Empty", Value: ""},
	}
	if len(req.Headers) != len(want) {
		t.Fatalf("headers = %+v", req.Headers)
	}
	for i := range want {
		if req.Headers[i] != want[i] {
			t.Errorf("header %d = %+v, want %+v", i, req.Headers[i], want[i])
		}
	}
	if v, ok := req.Header("host"); !ok || v != "example.com" {
		t.Errorf("Header(host) = %q, %v", v, ok)
	}
}

func TestReadRequestBareLF(t *testing.T) {
	req, err := ReadRequest(strings.NewReader("GET /x HTTP/1.1\nHost: y\n\n"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Target.Path != "/x" || len(req.Headers) != 1 {
		t.Fatalf("request = %+v", req)
	}
}

func TestReadRequestTimeout(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	cfg := config.Default()
	cfg.Timeout = 50 * time.Millisecond

	done := make(chan error, 1)
	go func() {
		_, err := ReadRequest(server, cfg)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrTCPIssue) {
			t.Fatalf("expected ErrTCPIssue, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("read deadline not applied")
	}
}

func TestParseTarget(t *testing.T) {
	cases := []struct {
		in   string
		want Target
	}{
		{"/hello/world?wuauaua/sj?s._-", Target{Form: OriginForm, Path: "/hello/world", HasPath: true, Query: "wuauaua/sj?s._-", HasQuery: true}},
		{"/", Target{Form: OriginForm, Path: "/", HasPath: true}},
		{"/a?", Target{Form: OriginForm, Path: "/a", HasPath: true, HasQuery: true}},
		{"http://example.com:8080/hello/world?wuauaua/sj?s._-", Target{
			Form: AbsoluteForm, Scheme: SchemeHTTP, Authority: "example.com:8080",
			Path: "/hello/world", HasPath: true, Query: "wuauaua/sj?s._-", HasQuery: true,
		}},
		{"https://example.com", Target{Form: AbsoluteForm, Scheme: SchemeHTTPS, Authority: "example.com"}},
		{"www.example.com:8080", Target{Form: AuthorityForm, Authority: "www.example.com:8080"}},
		{"host.example:80", Target{Form: AuthorityForm, Authority: "host.example:80"}},
		{"*", Target{Form: AsteriskForm}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTarget(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
			if got.String() != tc.in {
				t.Fatalf("round trip %q -> %q", tc.in, got.String())
			}
		})
	}
}

func TestParseTargetRejects(t *testing.T) {
	for _, in := range []string{"", "*bluib", "bluib.99:88.ss", "/a b", "http://"} {
		if _, err := ParseTarget(in); !errors.Is(err, ErrInvalidTargetFormat) {
			t.Errorf("%q: expected ErrInvalidTargetFormat, got %v", in, err)
		}
	}
}

func TestParseTargetUnknownScheme(t *testing.T) {
	for _, in := range []string{"ftp://example.com", "hxxp://a/", "gopher://h:70/x?y"} {
		if _, err := ParseTarget(in); !errors.Is(err, ErrUnknownScheme) {
			t.Errorf("%q: expected ErrUnknownScheme, got %v", in, err)
		}
	}

	_, err := ReadRequest(strings.NewReader("GET hxxp://a/ HTTP/1.1\r\n\r\n"), nil)
	if got := ErrorKind(err); got != "unknown_scheme" {
		t.Fatalf("kind = %s (err %v)", got, err)
	}
}

func TestErrorKind(t *testing.T) {
	if ErrorKind(nil) != "" {
		t.Fatal("nil error should have no kind")
	}
	_, err := ReadRequest(strings.NewReader("GET / HTTP/1.1\r\nbad\r\n\r\n"), nil)
	if got := ErrorKind(err); got != "invalid_header" {
		t.Fatalf("kind = %s", got)
	}
}
