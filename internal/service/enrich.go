package service

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"repocast/internal/models"
)

// ---- Content fetcher contract ----------------------------------------------

// ContentFetcher pulls raw file content and existence checks from the
// content-hosting service. Implemented by the github client.
type ContentFetcher interface {
	FetchFile(ctx context.Context, ref models.RepoRef, path string) ([]byte, error)
	Exists(ctx context.Context, ref models.RepoRef, path string) (bool, error)
}

// ---- Enricher --------------------------------------------------------------

// maxFetchBytes caps the content size considered for line lookup (1 MiB).
const maxFetchBytes = 1 << 20

// binaryExtensions lists extensions we never fetch: media and other binary
// formats carry no line-addressable evidence.
var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".ico": true, ".webp": true, ".bmp": true,
	".mp3": true, ".mp4": true, ".wav": true, ".ogg": true, ".mov": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true, ".otf": true,
	".zip": true, ".gz": true, ".tar": true, ".rar": true, ".7z": true,
	".pdf": true, ".exe": true, ".dll": true, ".so": true, ".dylib": true,
	".wasm": true, ".bin": true, ".lock": true,
}

// CitationEnricher turns a confirmed candidate path into a Citation, resolving
// a best-effort line range from a shared pool of search terms.
type CitationEnricher struct {
	fetcher ContentFetcher
}

// NewCitationEnricher wires the content fetcher.
func NewCitationEnricher(fetcher ContentFetcher) *CitationEnricher {
	return &CitationEnricher{fetcher: fetcher}
}

// Enrich produces a Citation for path. It never fails: every degraded outcome
// is folded into the citation's Note so one bad path cannot abort a pipeline.
//
// Policy, in order: binary extension → no fetch; fetch failure → "unfetchable";
// oversized content → no line lookup; first term that resolves wins; otherwise
// a bare-path citation.
func (e *CitationEnricher) Enrich(ctx context.Context, ref models.RepoRef, path string, terms []string) models.Citation {
	if binaryExtensions[strings.ToLower(filepath.Ext(path))] {
		return models.Citation{Filepath: path, Note: "binary file"}
	}

	content, err := e.fetcher.FetchFile(ctx, ref, path)
	if err != nil {
		log.Printf("[Enricher] fetch failed for %s: %v", path, err)
		return models.Citation{Filepath: path, Note: "unfetchable"}
	}

	if len(content) > maxFetchBytes {
		return models.Citation{Filepath: path, Note: "too large for line lookup"}
	}

	text := string(content)
	for _, term := range terms {
		if r := ResolveLineRange(text, term); r != nil {
			return models.Citation{
				Filepath:  path,
				LineStart: r.Start,
				LineEnd:   r.End,
				Label:     term,
			}
		}
	}

	// Confirmed path, no resolvable term: still valid, weaker evidence.
	return models.Citation{Filepath: path}
}
