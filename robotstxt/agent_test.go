package robotstxt_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/fwojciec/freeze"
	"github.com/fwojciec/freeze/mock"
	"github.com/fwojciec/freeze/robotstxt"
	"github.com/stretchr/testify/assert"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func robotsFetcher(body string, calls *int) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, raw string) (*freeze.Response, error) {
			*calls++
			if body == "" {
				return nil, freeze.Errorf(freeze.EFETCH, "HTTP 404 for %s", raw)
			}
			return &freeze.Response{URL: raw, StatusCode: 200, ContentType: "text/plain", Body: []byte(body)}, nil
		},
	}
}

func TestAgent_Allowed(t *testing.T) {
	t.Parallel()

	robots := `User-agent: *
Disallow: /private/

User-agent: freeze
Disallow: /drafts/
Allow: /drafts/public
`

	t.Run("applies the group for the user agent", func(t *testing.T) {
		t.Parallel()

		var calls int
		agent := robotstxt.NewAgent(robotsFetcher(robots, &calls), "freeze")

		assert.False(t, agent.Allowed(context.Background(), mustParse(t, "http://example.com/drafts/x")))
		assert.True(t, agent.Allowed(context.Background(), mustParse(t, "http://example.com/drafts/public")))
		assert.True(t, agent.Allowed(context.Background(), mustParse(t, "http://example.com/private/x")))
		assert.Equal(t, 1, calls, "rules are cached per host")
	})

	t.Run("falls back to the wildcard group", func(t *testing.T) {
		t.Parallel()

		var calls int
		agent := robotstxt.NewAgent(robotsFetcher(robots, &calls), "otherbot")

		assert.False(t, agent.Allowed(context.Background(), mustParse(t, "http://example.com/private/x")))
		assert.True(t, agent.Allowed(context.Background(), mustParse(t, "http://example.com/drafts/x")))
	})

	t.Run("allows everything without robots.txt", func(t *testing.T) {
		t.Parallel()

		var calls int
		agent := robotstxt.NewAgent(robotsFetcher("", &calls), "freeze")

		assert.True(t, agent.Allowed(context.Background(), mustParse(t, "http://example.com/anything")))
		assert.True(t, agent.Allowed(context.Background(), mustParse(t, "http://example.com/else")))
		assert.Equal(t, 1, calls)
	})

	t.Run("rejects relative targets", func(t *testing.T) {
		t.Parallel()

		var calls int
		agent := robotstxt.NewAgent(robotsFetcher(robots, &calls), "freeze")

		assert.False(t, agent.Allowed(context.Background(), mustParse(t, "/relative")))
		assert.Zero(t, calls)
	})
}
