package domain

import (
	"errors"
	"net/url"
	"strings"
)

const maxLocatorLen = 2048

var locatorSchemes = map[string]bool{
	"s3":    true,
	"gs":    true,
	"https": true,
	"http":  true,
}

// ValidateLocator checks that ref is a well formed storage locator: an
// absolute URI with a known scheme, a bucket or host and an object path.
// It does not check that the object exists.
func ValidateLocator(ref string) error {
	if ref == "" {
		return errors.New("is required")
	}
	if len(ref) > maxLocatorLen {
		return errors.New("is too long")
	}
	if strings.ContainsAny(ref, " \t\r\n") {
		return errors.New("must not contain whitespace")
	}
	u, err := url.Parse(ref)
	if err != nil {
		return errors.New("is not a valid locator")
	}
	if !locatorSchemes[strings.ToLower(u.Scheme)] {
		return errors.New("must use one of the s3, gs, https or http schemes")
	}
	if u.Host == "" {
		return errors.New("must name a bucket or host")
	}
	if strings.Trim(u.Path, "/") == "" {
		return errors.New("must name an object key")
	}
	return nil
}
