// Package loader reads schema documents from disk, an fs.FS or HTTP.
package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-formbind/pkg/schema"
)

// ErrHTTPDisabled is returned for URL sources when no HTTP client is set.
var ErrHTTPDisabled = errors.New("loader: http support disabled")

// Option configures a Loader.
type Option func(*Loader)

// WithFileSystem enables fs sources.
func WithFileSystem(files fs.FS) Option {
	return func(l *Loader) {
		l.fs = files
	}
}

// WithHTTPClient enables URL sources through client.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		l.http = client
	}
}

// WithHTTP enables URL sources with a default client.
func WithHTTP() Option {
	return func(l *Loader) {
		if l.http == nil {
			l.http = &http.Client{}
		}
	}
}

// WithTimeout caps each remote fetch.
func WithTimeout(timeout time.Duration) Option {
	return func(l *Loader) {
		l.timeout = timeout
	}
}

// Loader dispatches on schema.Source kind. HTTP is off unless a client is
// configured.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

// New constructs a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load fetches src and wraps the payload in a schema.Document.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("loader: source is nil")
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case schema.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case schema.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case schema.SourceKindURL:
		if l.http == nil {
			return schema.Document{}, ErrHTTPDisabled
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = errors.New("loader: unsupported source kind " + string(src.Kind()))
	}
	if err != nil {
		return schema.Document{}, err
	}
	return schema.NewDocument(src, data)
}
