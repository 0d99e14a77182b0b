// Package documents resolves opaque document references into URLs. The core
// never inspects file contents; it only renders links supplied by the blob
// collaborator behind this interface.
package documents

import (
	"context"
	"net/url"
	"strings"
)

//go:generate mockgen -source=resolver.go -destination=mocks/mocks.go -package=mocks Resolver

// Resolver maps a document reference to a presentable URL. Returns "" (and
// no error) when the reference does not resolve; a missing document link
// is a rendering detail, not a request failure.
type Resolver interface {
	ResolveURL(ctx context.Context, ref string) (string, error)
}

// StaticResolver joins references onto a base URL. This is the development
// stand-in for the real blob backend, which signs per-object URLs.
type StaticResolver struct {
	base string
}

func NewStaticResolver(base string) (*StaticResolver, error) {
	if _, err := url.Parse(base); err != nil {
		return nil, err
	}
	return &StaticResolver{base: strings.TrimSuffix(base, "/")}, nil
}

func (r *StaticResolver) ResolveURL(_ context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	return r.base + "/" + strings.TrimPrefix(ref, "/"), nil
}
