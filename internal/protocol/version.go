package protocol

import (
	"fmt"
	"regexp"
	"strconv"
)

// Version is the protocol version of a request, echoed on the response.
type Version struct {
	Major uint8
	Minor uint8
}

// HTTP11 is used for responses written before a request version is known.
var HTTP11 = Version{Major: 1, Minor: 1}

var versionRe = regexp.MustCompile(`^HTTP/(\d)\.(\d)$`)

// ParseVersion accepts exactly HTTP/<digit>.<digit>.
func ParseVersion(token string) (Version, error) {
	m := versionRe.FindStringSubmatch(token)
	if m == nil {
		return Version{}, fmt.Errorf("%w: bad version %q", ErrInvalidSyntax, token)
	}
	major, _ := strconv.ParseUint(m[1], 10, 8)
	minor, _ := strconv.ParseUint(m[2], 10, 8)
	return Version{Major: uint8(major), Minor: uint8(minor)}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("HTTP/%d.%d", v.Major, v.Minor)
}
