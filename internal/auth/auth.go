// Package auth abstracts the identity provider: every action-submission call
// attaches a bearer token obtained from a TokenSource.
package auth

import "context"

// TokenSource supplies the current bearer token for the authenticated
// participant. Implementations may refresh under the hood; callers always
// ask at request time rather than caching.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type staticSource struct{ token string }

func (s staticSource) Token(context.Context) (string, error) { return s.token, nil }

// Static returns a source that always yields the given token.
func Static(token string) TokenSource { return staticSource{token: token} }

// Anonymous returns a source with no identity; requests carry no
// Authorization header. Anonymous participation is acceptable.
func Anonymous() TokenSource { return staticSource{} }

// FuncSource adapts a plain func to a TokenSource, for providers that fetch
// fresh tokens per call.
type FuncSource func(ctx context.Context) (string, error)

func (f FuncSource) Token(ctx context.Context) (string, error) { return f(ctx) }
