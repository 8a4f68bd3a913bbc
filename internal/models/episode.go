package models

import (
	"fmt"
	"time"
)

// RepoRef identifies a repository + branch for every downstream call.
// It is derived once from user input and passed by value; nothing mutates it.
type RepoRef struct {
	Owner  string `json:"owner"`
	Name   string `json:"name"`
	Branch string `json:"branch"`
}

// FullName returns the "owner/name" form used in logs and cache keys.
func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// QuestionTopic enumerates the five fixed questions the gatherer asks.
type QuestionTopic string

const (
	TopicPurpose     QuestionTopic = "purpose"
	TopicEntrypoints QuestionTopic = "entrypoints"
	TopicHotspots    QuestionTopic = "hotspots"
	TopicPatterns    QuestionTopic = "patterns"
	TopicMicroTask   QuestionTopic = "microTask"
)

// RawAnswer is one answer from the analysis service, read-only after gather.
// MentionedPaths is the structured source list the service attached to its
// answer; it is collected verbatim, never derived locally.
type RawAnswer struct {
	Topic          QuestionTopic `json:"topic"`
	Text           string        `json:"text"`
	MentionedPaths []string      `json:"mentioned_paths"`
}

// LineRange is a 1-indexed, inclusive span within a file.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Citation is a verified pointer from a narrative claim to a file in the
// repository, optionally narrowed to a line range.
//
// Invariant: Filepath was confirmed to exist at enrichment time. When the
// line fields are set they are 1-indexed, Start ≤ End, and within the file's
// line count. A citation with no lines and no Note is a bare-path citation
// (valid, weaker evidence). Note records why line lookup was skipped.
type Citation struct {
	Filepath  string `json:"filepath"   bson:"filepath"`
	LineStart int    `json:"line_start,omitempty" bson:"line_start,omitempty"`
	LineEnd   int    `json:"line_end,omitempty"   bson:"line_end,omitempty"`
	Label     string `json:"label,omitempty"      bson:"label,omitempty"`
	Note      string `json:"note,omitempty"       bson:"note,omitempty"`
}

// Display renders the citation for downstream output:
// "path" without lines, "path:L<start>-L<end>" with them.
func (c Citation) Display() string {
	if c.LineStart > 0 && c.LineEnd > 0 {
		return fmt.Sprintf("%s:L%d-L%d", c.Filepath, c.LineStart, c.LineEnd)
	}
	return c.Filepath
}

// EpisodeData is the validated fact sheet the narrative stage consumes.
// Constructed exactly once per generation request; immutable afterwards.
// The pipeline enforces 3 ≤ len(Citations) ≤ 10 before construction succeeds.
type EpisodeData struct {
	Purpose     string     `json:"purpose"     bson:"purpose"`
	Entrypoints string     `json:"entrypoints" bson:"entrypoints"`
	Hotspots    string     `json:"hotspots"    bson:"hotspots"`
	Patterns    string     `json:"patterns"    bson:"patterns"`
	MicroTask   string     `json:"micro_task"  bson:"micro_task"`
	Citations   []Citation `json:"citations"   bson:"citations"`
}

// IndexStatus is the analysis service's view of a repository.
type IndexStatus string

const (
	IndexUnknown    IndexStatus = "unknown"
	IndexSubmitted  IndexStatus = "submitted"
	IndexProcessing IndexStatus = "processing"
	IndexCompleted  IndexStatus = "completed"
	IndexFailed     IndexStatus = "failed"
)

// Terminal reports whether the status cannot change without a resubmission.
func (s IndexStatus) Terminal() bool {
	return s == IndexCompleted || s == IndexFailed
}

// IndexState is transient polling state owned by the indexing coordinator;
// it is discarded once gathering begins.
type IndexState struct {
	Status         IndexStatus `json:"status"`
	FilesProcessed int         `json:"files_processed,omitempty"`
}

// ValidationResult carries every policy violation found in one pass.
// It is data, not an error: the caller decides whether to abort.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Episode is the finished product: the fact sheet, the generated script and
// the synthesized audio, persisted keyed by the "owner/name" form.
type Episode struct {
	ID        string      `bson:"_id,omitempty" json:"id"` // "owner/name"
	RepoURL   string      `bson:"repo_url"      json:"repo_url"`
	Data      EpisodeData `bson:"data"          json:"data"`
	Outline   string      `bson:"outline"       json:"outline"`
	Script    string      `bson:"script"        json:"script"`
	Audio     []byte      `bson:"audio"         json:"-"` // MP3 bytes (excluded from JSON)
	CreatedAt time.Time   `bson:"created_at"    json:"created_at"`
}
