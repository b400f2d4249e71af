package schema

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Source identifies where a schema document came from so loaders can read
// files, fs.FS entries or URLs behind one contract.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

type source struct {
	kind     SourceKind
	location string
}

func (s source) Kind() SourceKind { return s.kind }
func (s source) Location() string { return s.location }

// SourceFromFile points at a path on disk.
func SourceFromFile(name string) Source {
	return source{kind: SourceKindFile, location: filepath.Clean(name)}
}

// SourceFromFS points at an entry inside an fs.FS.
func SourceFromFS(name string) Source {
	return source{kind: SourceKindFS, location: strings.TrimPrefix(filepath.ToSlash(name), "/")}
}

// SourceFromURL points at an HTTP(S) resource.
func SourceFromURL(raw string) (Source, error) {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("schema: invalid URL %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("schema: unsupported URL scheme %q", parsed.Scheme)
	}
	return source{kind: SourceKindURL, location: raw}, nil
}

// MustSourceFromURL panics on an invalid URL. Intended for fixtures.
func MustSourceFromURL(raw string) Source {
	src, err := SourceFromURL(raw)
	if err != nil {
		panic(err)
	}
	return src
}
