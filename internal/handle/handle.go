// Package handle defines identedit's data model: the values Read emits,
// the Targets and Operations Edit composes, and the Changeset Apply
// consumes (spec.md 3).
package handle

// TargetType distinguishes a node handle from a line handle.
type TargetType string

const (
	TargetTypeNode TargetType = "node"
	TargetTypeLine TargetType = "line"
)

// Span is a half-open byte range [Start, End) into the source buffer.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether s and o describe overlapping half-open ranges,
// per the point-span overlap rule used by the Validator: two zero-length
// points at the same offset overlap only when that violates the
// insert_before/insert_after pairing rule, which callers must check
// separately. For plain range overlap this is the standard interval test.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Handle is the value Read emits for one selected node or line.
type Handle struct {
	File            string     `json:"file"`
	TargetType      TargetType `json:"target_type"`
	Identity        string     `json:"identity,omitempty"`
	Kind            string     `json:"kind,omitempty"`
	Name            string     `json:"name,omitempty"`
	Span            Span       `json:"span"`
	ExpectedOldHash string     `json:"expected_old_hash,omitempty"`
	Text            string     `json:"text,omitempty"`

	// Line-mode fields.
	Line   int    `json:"line,omitempty"`
	Anchor string `json:"anchor,omitempty"`

	// ExpectedFileHash is emitted alongside verbose reads so file-level
	// operations can be precondition-checked.
	ExpectedFileHash string `json:"expected_file_hash,omitempty"`
}

// TargetVariant names which of the four Target shapes is present.
type TargetVariant string

const (
	VariantNode      TargetVariant = "node"
	VariantFileStart TargetVariant = "file_start"
	VariantFileEnd   TargetVariant = "file_end"
	VariantFile      TargetVariant = "file"
)

// SpanHint optionally disambiguates a Node target among several candidates
// sharing the same identity.
type SpanHint struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Target names what an Operation acts on.
type Target struct {
	Variant TargetVariant `json:"type"`

	// Node fields.
	Identity        string    `json:"identity,omitempty"`
	Kind            string    `json:"kind,omitempty"`
	ExpectedOldHash string    `json:"expected_old_hash,omitempty"`
	SpanHint        *SpanHint `json:"span_hint,omitempty"`

	// File-level fields (file_start / file_end / file).
	ExpectedFileHash string `json:"expected_file_hash,omitempty"`
}

// OpKind is one of the Operation variants.
type OpKind string

const (
	OpReplace     OpKind = "replace"
	OpDelete      OpKind = "delete"
	OpInsertBefor OpKind = "insert_before"
	OpInsertAfter OpKind = "insert_after"
	OpInsert      OpKind = "insert" // file_start / file_end only
	OpMove        OpKind = "move"
)

// Preview is the dry-run summary attached to every node-targeted Operation.
type Preview struct {
	OldHash     string `json:"old_hash,omitempty"`
	OldLen      int    `json:"old_len"`
	OldText     string `json:"old_text,omitempty"` // not filled in by the builder
	NewText     string `json:"new_text,omitempty"`
	MatchedSpan Span   `json:"matched_span"`
}

// Operation is one edit against one Target.
type Operation struct {
	Kind    OpKind  `json:"op"`
	Target  Target  `json:"target"`
	NewText string  `json:"new_text,omitempty"`
	MoveTo  string  `json:"to,omitempty"` // move only
	Preview Preview `json:"preview"`
}

// FileChange bundles every Operation destined for one file.
type FileChange struct {
	File       string      `json:"file"`
	Operations []Operation `json:"operations"`
}

// TransactionMode is always "all_or_nothing" for identedit.
const TransactionMode = "all_or_nothing"

// Transaction carries the changeset's commit mode.
type Transaction struct {
	Mode string `json:"mode"`
}

// Changeset is the validated, serializable value describing all edits
// across all files.
type Changeset struct {
	Files       []FileChange `json:"files"`
	Transaction Transaction  `json:"transaction"`
}

// NewChangeset builds an empty Changeset with the canonical transaction mode.
func NewChangeset() Changeset {
	return Changeset{Transaction: Transaction{Mode: TransactionMode}}
}

// LegacyChangeset is the single-file form accepted only when
// IDENTEDIT_ALLOW_LEGACY=1.
type LegacyChangeset struct {
	File       string      `json:"file"`
	Operations []Operation `json:"operations"`
}

// Normalize wraps a LegacyChangeset into the canonical multi-file form.
func (l LegacyChangeset) Normalize() Changeset {
	cs := NewChangeset()
	cs.Files = []FileChange{{File: l.File, Operations: l.Operations}}
	return cs
}

// Summary is the success payload apply emits on stdout.
type Summary struct {
	FilesModified      int `json:"files_modified"`
	OperationsApplied  int `json:"operations_applied"`
	OperationsFailed   int `json:"operations_failed"`
}
