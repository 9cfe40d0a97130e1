package auth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// HTTPClient wraps base so every request carries a bearer token obtained
// with the client credentials grant. Tokens are cached and refreshed once
// expired. A nil base uses http.DefaultClient.
func (c Conf) HTTPClient(ctx context.Context, base *http.Client) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	cl := c.toOauth2Config().Client(ctx)
	cl.Timeout = base.Timeout
	return cl
}
