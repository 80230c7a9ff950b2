package server

import (
	"encoding/json"
	"sync"

	"github.com/amarbel-llc/mill/internal/config/filetype"
	"github.com/amarbel-llc/mill/internal/lsp"
	"github.com/amarbel-llc/mill/pkg/filematch"
)

type Router struct {
	matchers    *filematch.MatcherSet
	filetypes   map[string]*filetype.Config
	languageMap map[lsp.DocumentURI]string
	mu          sync.RWMutex
}

// NewRouter builds the file-to-LSP routing table from filetype configs.
// Routing lives entirely in filetype configs now: each one names the LSP
// it routes to via its LSP field.
func NewRouter(filetypes []*filetype.Config) (*Router, error) {
	matchers := filematch.NewMatcherSet()
	byName := make(map[string]*filetype.Config, len(filetypes))

	for _, ft := range filetypes {
		if ft.LSP == "" {
			continue
		}
		if err := matchers.Add(ft.LSP, ft.Extensions, ft.Patterns, ft.LanguageIDs); err != nil {
			return nil, err
		}
		byName[ft.LSP] = ft
	}

	return &Router{
		matchers:    matchers,
		filetypes:   byName,
		languageMap: make(map[lsp.DocumentURI]string),
	}, nil
}

// FiletypeByURI returns the filetype config routing uri, or nil.
func (r *Router) FiletypeByURI(uri lsp.DocumentURI) *filetype.Config {
	name := r.RouteByURI(uri)
	if name == "" {
		return nil
	}
	return r.filetypes[name]
}

func (r *Router) Route(method string, params json.RawMessage) string {
	var paramsMap map[string]any
	if err := json.Unmarshal(params, &paramsMap); err != nil {
		return ""
	}

	uri := lsp.ExtractURI(method, paramsMap)
	if uri == "" {
		return ""
	}

	if method == lsp.MethodTextDocumentDidOpen {
		langID := lsp.ExtractLanguageID(paramsMap)
		if langID != "" {
			r.mu.Lock()
			r.languageMap[uri] = langID
			r.mu.Unlock()
		}
	}

	if method == lsp.MethodTextDocumentDidClose {
		r.mu.Lock()
		delete(r.languageMap, uri)
		r.mu.Unlock()
	}

	r.mu.RLock()
	langID := r.languageMap[uri]
	r.mu.RUnlock()

	path := uri.Path()
	ext := uri.Extension()

	return r.matchers.Match(path, ext, langID)
}

func (r *Router) RouteByURI(uri lsp.DocumentURI) string {
	r.mu.RLock()
	langID := r.languageMap[uri]
	r.mu.RUnlock()

	path := uri.Path()
	ext := uri.Extension()

	return r.matchers.Match(path, ext, langID)
}

func (r *Router) RouteByExtension(ext string) string {
	return r.matchers.MatchByExtension(ext)
}

func (r *Router) RouteByLanguageID(langID string) string {
	return r.matchers.MatchByLanguageID(langID)
}

func (r *Router) SetLanguageID(uri lsp.DocumentURI, langID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.languageMap[uri] = langID
}

func (r *Router) GetLanguageID(uri lsp.DocumentURI) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.languageMap[uri]
}
