package render

import (
	"net/url"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	linkValidator     *validator.Validate //nolint:gochecknoglobals
	linkValidatorOnce sync.Once           //nolint:gochecknoglobals
)

// SanitizeLink returns the link to put into an href, or false when raw is
// neither an absolute http(s) url nor a site relative path.
func SanitizeLink(raw string) (string, bool) {
	link := strings.TrimSpace(raw)
	if link == "" || strings.ContainsAny(link, "\\\x00\r\n\t") {
		return "", false
	}

	if strings.HasPrefix(link, "/") {
		if strings.HasPrefix(link, "//") {
			return "", false
		}

		u, err := url.Parse(link)
		if err != nil || u.Scheme != "" || u.Host != "" {
			return "", false
		}

		return u.String(), true
	}

	linkValidatorOnce.Do(func() { linkValidator = validator.New() })

	if err := linkValidator.Var(link, "http_url"); err != nil {
		return "", false
	}

	return link, true
}
