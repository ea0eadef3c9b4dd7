package validation

import (
	"net"
	"net/url"
	"strings"

	"github.com/arthur-debert/hostsub/pkg/errors"
	"golang.org/x/net/idna"
)

// maxHostLength is the DNS limit on a textual host name.
const maxHostLength = 253

// URL validates a subscription URL and returns it trimmed. The URL itself is
// the subscription key, so it is never rewritten beyond trimming.
func URL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New(errors.ErrURLInvalid, "subscription URL cannot be empty")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrURLInvalid, "invalid URL %q", trimmed)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.Newf(errors.ErrURLInvalid, "URL %q must use http or https", trimmed).
			WithDetail("scheme", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return "", errors.Newf(errors.ErrURLInvalid, "URL %q has no host", trimmed)
	}
	if err := validateHost(host); err != nil {
		return "", errors.Wrapf(err, errors.ErrURLInvalid, "URL %q has an invalid host", trimmed).
			WithDetail("host", host)
	}

	return trimmed, nil
}

func validateHost(host string) error {
	if ip := net.ParseIP(host); ip != nil {
		return nil
	}

	ascii, err := idna.Lookup.ToASCII(strings.TrimSuffix(host, "."))
	if err != nil {
		return err
	}
	if len(ascii) > maxHostLength {
		return errors.Newf(errors.ErrURLInvalid, "host is longer than %d characters", maxHostLength)
	}
	if strings.HasPrefix(ascii, ".") || strings.Contains(ascii, "..") {
		return errors.Newf(errors.ErrURLInvalid, "host %q has an empty label", ascii)
	}
	return nil
}
