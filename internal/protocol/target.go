package protocol

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Form selects which fields of a Target are meaningful.
type Form int

const (
	OriginForm Form = iota
	AbsoluteForm
	AuthorityForm
	AsteriskForm
)

func (f Form) String() string {
	switch f {
	case OriginForm:
		return "origin-form"
	case AbsoluteForm:
		return "absolute-form"
	case AuthorityForm:
		return "authority-form"
	case AsteriskForm:
		return "asterisk-form"
	default:
		return "unknown-form"
	}
}

// Scheme of an absolute-form target.
type Scheme int

const (
	SchemeHTTP Scheme = iota
	SchemeHTTPS
)

func (s Scheme) String() string {
	if s == SchemeHTTPS {
		return "https"
	}
	return "http"
}

func parseScheme(token string) (Scheme, error) {
	switch token {
	case "http":
		return SchemeHTTP, nil
	case "https":
		return SchemeHTTPS, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, token)
	}
}

// Target is the request-target. Optional parts carry a Has* flag so an empty query
// ("/a?") is distinguishable from an absent one.
//
//	OriginForm:    Path, Query
//	AbsoluteForm:  Scheme, Authority, Path, Query
//	AuthorityForm: Authority
//	AsteriskForm:  nothing
type Target struct {
	Form      Form
	Scheme    Scheme
	Authority string
	Path      string
	HasPath   bool
	Query     string
	HasQuery  bool
}

var (
	originRe    = regexp.MustCompile(`^([^?\s]*)(?:\?([^#]*))?$`)
	absoluteRe  = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.-]*)://([\w.]+(?::\d+)?)(/[^?#\s]*)?(?:\?([^#]*))?$`)
	authorityRe = regexp.MustCompile(`^([\w.]+(?::\d+)?)$`)
)

// ParseTarget classifies the raw target token by its first byte. Any "scheme://" token is
// treated as absolute-form, and schemes other than http and https yield ErrUnknownScheme.
func ParseTarget(token string) (Target, error) {
	if token == "" {
		return Target{}, fmt.Errorf("%w: empty target", ErrInvalidTargetFormat)
	}
	switch token[0] {
	case '/':
		return parseOrigin(token)
	case 'h':
		if t, err := parseAbsolute(token); err == nil || errors.Is(err, ErrUnknownScheme) {
			return t, err
		}
		// "host.example" also starts with h
		return parseAuthority(token)
	case '*':
		if token != "*" {
			return Target{}, fmt.Errorf("%w: %q", ErrInvalidTargetFormat, token)
		}
		return Target{Form: AsteriskForm}, nil
	default:
		if strings.Contains(token, "://") {
			return parseAbsolute(token)
		}
		return parseAuthority(token)
	}
}

func parseOrigin(token string) (Target, error) {
	// FindStringSubmatchIndex tells an absent group (-1) from an empty one.
	loc := originRe.FindStringSubmatchIndex(token)
	if loc == nil {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidTargetFormat, token)
	}
	t := Target{Form: OriginForm, Path: token[loc[2]:loc[3]], HasPath: true}
	if loc[4] >= 0 {
		t.Query, t.HasQuery = token[loc[4]:loc[5]], true
	}
	return t, nil
}

func parseAbsolute(token string) (Target, error) {
	loc := absoluteRe.FindStringSubmatchIndex(token)
	if loc == nil {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidTargetFormat, token)
	}
	scheme, err := parseScheme(token[loc[2]:loc[3]])
	if err != nil {
		return Target{}, err
	}
	t := Target{Form: AbsoluteForm, Scheme: scheme, Authority: token[loc[4]:loc[5]]}
	if loc[6] >= 0 {
		t.Path, t.HasPath = token[loc[6]:loc[7]], true
	}
	if loc[8] >= 0 {
		t.Query, t.HasQuery = token[loc[8]:loc[9]], true
	}
	return t, nil
}

func parseAuthority(token string) (Target, error) {
	m := authorityRe.FindStringSubmatch(token)
	if m == nil {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidTargetFormat, token)
	}
	return Target{Form: AuthorityForm, Authority: m[1]}, nil
}

func (t Target) String() string {
	switch t.Form {
	case OriginForm:
		if t.HasQuery {
			return t.Path + "?" + t.Query
		}
		return t.Path
	case AbsoluteForm:
		s := t.Scheme.String() + "://" + t.Authority + t.Path
		if t.HasQuery {
			s += "?" + t.Query
		}
		return s
	case AuthorityForm:
		return t.Authority
	case AsteriskForm:
		return "*"
	default:
		return ""
	}
}
