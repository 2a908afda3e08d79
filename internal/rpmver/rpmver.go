// Package rpmver compares package versions with the ordering rules of RPM.
package rpmver

import (
	"regexp"
	"strings"

	rpmversion "github.com/knqyf263/go-rpm-version"

	"github.com/simplesurance/fedora-bot/internal/boterr"
)

// Comparator compares two version strings.
// Compare returns -1 if a is older than b, 0 if they are equal and 1 if a is
// newer than b. Malformed versions result in a boterr.DataError.
type Comparator interface {
	Compare(a, b string) (int, error)
}

// RPM is a Comparator that uses the rpmvercmp ordering that koji and dnf
// use. Numeric segments are compared numerically ("1.9" < "1.10").
type RPM struct{}

var validVersionRe = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z._+~^]*$`)

// Validate returns a boterr.DataError if v can not be used as RPM Version
// field.
func Validate(v string) error {
	if v == "" {
		return boterr.NewDataError("version is empty")
	}

	if !validVersionRe.MatchString(v) {
		return boterr.NewDataError("malformed version string: %q", v)
	}

	return nil
}

// Normalize converts a release tag to a version string.
// It removes surrounding whitespace and a leading "v" or "V" when it is
// followed by a digit.
func Normalize(tag string) string {
	tag = strings.TrimSpace(tag)

	if len(tag) > 1 && (tag[0] == 'v' || tag[0] == 'V') && tag[1] >= '0' && tag[1] <= '9' {
		return tag[1:]
	}

	return tag
}

func (RPM) Compare(a, b string) (int, error) {
	if err := Validate(a); err != nil {
		return 0, err
	}

	if err := Validate(b); err != nil {
		return 0, err
	}

	return rpmversion.NewVersion(a).Compare(rpmversion.NewVersion(b)), nil
}
