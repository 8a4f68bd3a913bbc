package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"repocast/internal/github"
	"repocast/internal/models"
)

// maxSearchTerms caps the shared term pool extracted from answer text.
const maxSearchTerms = 10

// enrichConcurrency bounds parallel enrichment fetches per request, to stay
// polite toward the content host's rate limits.
const enrichConcurrency = 5

// identifierPatterns match identifier-shaped tokens in prose: lower camel
// case, upper camel case, and snake_case. Tokens in generated answers that
// look like identifiers usually are identifiers.
var identifierPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[a-z]+[A-Z][A-Za-z0-9]*\b`),         // lowerCamel
	regexp.MustCompile(`\b[A-Z][a-z0-9]+[A-Z][A-Za-z0-9]*\b`), // UpperCamel
	regexp.MustCompile(`\b[a-z][a-z0-9]*_[a-z0-9_]+\b`),       // snake_case
}

// EpisodeService runs the full citation pipeline: locate → index → gather →
// extract candidates → enrich → enforce the minimum-evidence policy.
type EpisodeService struct {
	fetcher  ContentFetcher
	indexer  *Indexer
	gatherer *Gatherer
	enricher *CitationEnricher
	maxWait  time.Duration

	// cache is an optional side-collaborator; the pipeline is correct with
	// a nil cache (every request then rebuilds from scratch).
	cache *lru.Cache[string, models.EpisodeData]
}

// NewEpisodeService wires the pipeline stages. maxWait is the indexing
// budget—short for request/response deployments, long for workers.
func NewEpisodeService(
	fetcher ContentFetcher,
	indexer *Indexer,
	gatherer *Gatherer,
	maxWait time.Duration,
) *EpisodeService {
	cache, err := lru.New[string, models.EpisodeData](128)
	if err != nil {
		cache = nil // only reachable with a non-positive size
	}
	return &EpisodeService{
		fetcher:  fetcher,
		indexer:  indexer,
		gatherer: gatherer,
		enricher: NewCitationEnricher(fetcher),
		maxWait:  maxWait,
		cache:    cache,
	}
}

// BuildEpisodeData produces a validated fact sheet for the repository at
// repoURL, or a typed failure: github.ErrInvalidRepoURL, ErrIndexingFailed,
// ErrIndexingTimeout, ErrQueryFailed, or ErrInsufficientCitations.
func (s *EpisodeService) BuildEpisodeData(ctx context.Context, repoURL string) (models.EpisodeData, error) {
	ref, err := github.ParseRepoURL(repoURL)
	if err != nil {
		return models.EpisodeData{}, err
	}

	cacheKey := ref.FullName() + "@" + ref.Branch
	if s.cache != nil {
		if data, ok := s.cache.Get(cacheKey); ok {
			log.Printf("[Episode] cache hit for %s", cacheKey)
			return data, nil
		}
	}

	if err := s.indexer.EnsureIndexed(ctx, ref, s.maxWait); err != nil {
		return models.EpisodeData{}, err
	}

	answers, err := s.gatherer.Gather(ctx, ref)
	if err != nil {
		return models.EpisodeData{}, err
	}

	candidates := collectCandidatePaths(answers)
	terms := extractSearchTerms(answers)
	log.Printf("[Episode] %s: %d candidate paths, %d search terms", ref.FullName(), len(candidates), len(terms))

	citations, err := s.enrichCandidates(ctx, ref, candidates, terms)
	if err != nil {
		return models.EpisodeData{}, err
	}
	if len(citations) < MinCitations {
		return models.EpisodeData{}, fmt.Errorf("%w: %d of %d required for %s",
			ErrInsufficientCitations, len(citations), MinCitations, ref.FullName())
	}

	data := assembleEpisodeData(answers, citations)
	if s.cache != nil {
		s.cache.Add(cacheKey, data)
	}
	return data, nil
}

// enrichCandidates confirms each candidate path exists, then enriches the
// survivors with the shared term pool. Enrichment fans out with bounded
// concurrency but the citation list keeps candidate order, so repeated runs
// over the same answers produce the same list.
func (s *EpisodeService) enrichCandidates(ctx context.Context, ref models.RepoRef, candidates, terms []string) ([]models.Citation, error) {
	confirmed := make([]string, 0, len(candidates))
	for _, path := range candidates {
		ok, err := s.fetcher.Exists(ctx, ref, path)
		if err != nil {
			// Treated like a missing path: one flaky probe must not sink
			// the whole request.
			log.Printf("[Episode] existence check failed for %s: %v", path, err)
			continue
		}
		if !ok {
			continue
		}
		confirmed = append(confirmed, path)
		if len(confirmed) == MaxCitations {
			break
		}
	}

	citations := make([]models.Citation, len(confirmed))
	sem := make(chan struct{}, enrichConcurrency)
	var wg sync.WaitGroup
	for i, path := range confirmed {
		wg.Add(1)
		go func(slot int, p string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			citations[slot] = s.enricher.Enrich(ctx, ref, p, terms)
		}(i, path)
	}
	wg.Wait()

	return citations, nil
}

// collectCandidatePaths unions the mentioned paths of all answers into a
// deduplicated list that preserves first-seen order.
func collectCandidatePaths(answers []models.RawAnswer) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ans := range answers {
		for _, p := range ans.MentionedPaths {
			p = strings.TrimSpace(strings.TrimPrefix(p, "/"))
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// extractSearchTerms scans the four narrative answers (micro-task excluded)
// for identifier-shaped tokens, deduplicated and capped at maxSearchTerms.
// The pool is shared across all candidate paths.
func extractSearchTerms(answers []models.RawAnswer) []string {
	var sb strings.Builder
	for _, ans := range answers {
		if ans.Topic == models.TopicMicroTask {
			continue
		}
		sb.WriteString(ans.Text)
		sb.WriteByte('\n')
	}
	text := sb.String()

	seen := make(map[string]bool)
	var terms []string
	for _, p := range identifierPatterns {
		for _, tok := range p.FindAllString(text, -1) {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			terms = append(terms, tok)
			if len(terms) == maxSearchTerms {
				return terms
			}
		}
	}
	return terms
}

// assembleEpisodeData maps answers to their narrative slots.
func assembleEpisodeData(answers []models.RawAnswer, citations []models.Citation) models.EpisodeData {
	data := models.EpisodeData{Citations: citations}
	for _, ans := range answers {
		switch ans.Topic {
		case models.TopicPurpose:
			data.Purpose = ans.Text
		case models.TopicEntrypoints:
			data.Entrypoints = ans.Text
		case models.TopicHotspots:
			data.Hotspots = ans.Text
		case models.TopicPatterns:
			data.Patterns = ans.Text
		case models.TopicMicroTask:
			data.MicroTask = ans.Text
		}
	}
	return data
}
