// Package sdk bundles the typed API clients behind one transport and cookie jar.
package sdk

import (
	"net/http/cookiejar"
	"time"

	"github.com/akeren/landing-api/pkg/constants"
	"github.com/akeren/landing-api/pkg/sdk/articles"
	"github.com/akeren/landing-api/pkg/sdk/auth"
	"github.com/akeren/landing-api/pkg/sdk/transport"
	"github.com/akeren/landing-api/pkg/sdk/waitlist"
	"github.com/akeren/landing-api/pkg/utils"
)

// BaseURLEnv overrides the API location.
const BaseURLEnv = "LANDING_API_URL"

type SDK struct {
	Transport *transport.Client
	Auth      *auth.Client
	Waitlist  *waitlist.Client
	Articles  *articles.Client
}

type Options struct {
	// BaseURL defaults to LANDING_API_URL, then constants.DefaultAPIBaseURL.
	BaseURL string
	Timeout time.Duration
}

func BaseURLFromEnv() string {
	return utils.GetEnvTrimmedOrDefault(BaseURLEnv, constants.DefaultAPIBaseURL)
}

func New(opts Options) (*SDK, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = BaseURLFromEnv()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	t := transport.New(transport.Config{
		BaseURL: baseURL,
		Jar:     jar,
		Timeout: opts.Timeout,
	})

	return &SDK{
		Transport: t,
		Auth:      auth.NewClient(t),
		Waitlist:  waitlist.NewClient(t),
		Articles:  articles.NewClient(t),
	}, nil
}
