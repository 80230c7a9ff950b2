package lsp

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// DocumentURI is a file:// (or other scheme) URI as used throughout the
// LSP wire protocol.
type DocumentURI string

// Path returns the filesystem path encoded by a file:// URI, or "" if the
// URI does not use the file scheme or fails to parse.
func (u DocumentURI) Path() string {
	s := string(u)
	if s == "" {
		return ""
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" && parsed.Scheme != "file" {
		return ""
	}
	path := parsed.Path
	if path == "" {
		path = parsed.Opaque
	}
	if runtime.GOOS == "windows" {
		path = strings.TrimPrefix(path, "/")
		path = filepath.FromSlash(path)
	}
	return path
}

// Extension returns the file extension of the path encoded by this URI,
// including the leading dot (e.g. ".go"), or "" if there is none.
func (u DocumentURI) Extension() string {
	return filepath.Ext(u.Path())
}

// URIFromPath converts an absolute filesystem path into a file:// URI.
func URIFromPath(path string) DocumentURI {
	path = filepath.ToSlash(path)
	if runtime.GOOS == "windows" {
		path = "/" + path
	}
	u := url.URL{Scheme: "file", Path: path}
	return DocumentURI(u.String())
}
