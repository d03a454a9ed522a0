package chunk

import (
	"strings"
	"unicode"
)

// Content-type hints recorded in chunk metadata.
const (
	ContentTypeProse         = "prose"
	ContentTypeStructured    = "structured"
	ContentTypeCode          = "code"
	ContentTypeOversizedAtom = "oversized_atomic"
)

// piece is a raw chunk produced for one section, before document-level
// metadata is attached. Offsets span the chunk's new content in the source
// text; an overlap prefix restates text already covered by the previous
// piece's span.
type piece struct {
	content     string
	contentType string
	start       int
	end         int
}

// chunkSection assembles the blocks of one section into size-bounded,
// overlapping pieces. A section with zero blocks yields zero pieces, and
// the first piece of a section never carries overlap from a prior section.
func chunkSection(sec Section, cfg Config) []piece {
	a := &assembler{cfg: cfg, kinds: make(map[BlockKind]bool)}
	for _, blk := range sec.Blocks {
		a.addBlock(blk)
	}
	a.finish()
	return a.out
}

// assembler maintains the current-chunk buffer while walking a section.
type assembler struct {
	cfg Config
	out []piece

	seed        string // overlap carried from the previous piece
	seedSep     string
	lastFlushed string // source of seed, for boundary-aligned shrinking

	newText       strings.Builder // content added after the seed
	kinds         map[BlockKind]bool
	hasParts      bool
	lastKind      BlockKind
	lastSentence  bool
	firstSentence bool
	start, end    int
}

func (a *assembler) addBlock(blk Block) {
	if len(blk.Text) > a.cfg.MaxChunkSize {
		if blk.Kind == BlockParagraph {
			a.addSentences(blk)
			return
		}
		// Code fences and list items are atomic: never split mid-unit,
		// emitted oversized and flagged instead.
		a.flush()
		a.emitAtomic(blk)
		return
	}

	// A paragraph that would overflow a still-undersized buffer joins
	// sentence-wise so the flushed chunk keeps its lower bound.
	if a.hasParts && blk.Kind == BlockParagraph {
		sep := a.sepFor(blk.Kind, false)
		if a.curLen()+len(sep)+len(blk.Text) > a.effMax(blk.Kind) &&
			a.curLen() < a.cfg.MinChunkSize {
			a.addSentences(blk)
			return
		}
	}

	a.place(blk.Text, blk.Kind, false, blk.Start)
}

// addSentences feeds a paragraph into the buffer at sentence granularity.
func (a *assembler) addSentences(blk Block) {
	cursor := 0
	for _, s := range SplitSentences(blk.Text) {
		rel := strings.Index(blk.Text[cursor:], s)
		if rel < 0 {
			rel = 0
		}
		start := blk.Start + cursor + rel
		cursor += rel + len(s)
		a.place(s, BlockParagraph, true, start)
	}
}

func (a *assembler) place(text string, kind BlockKind, sentence bool, start int) {
	sep := a.sepFor(kind, sentence)
	if a.hasParts && a.curLen()+len(sep)+len(text) > a.effMax(kind) {
		a.flush()
	}

	if !a.hasParts {
		// Seeding a fresh buffer: the overlap must leave room for the
		// incoming unit within the hard size limit.
		seedSep := "\n\n"
		if sentence {
			seedSep = " "
		}
		if a.seed != "" {
			if len(a.seed)+len(seedSep)+len(text) > a.cfg.MaxChunkSize {
				allowed := a.cfg.MaxChunkSize - len(seedSep) - len(text)
				if allowed <= 0 {
					a.seed = ""
				} else if allowed < len(a.seed) {
					a.seed = seedWithin(a.lastFlushed, allowed)
				}
			}
		}
		a.seedSep = seedSep
		a.start = start
		a.firstSentence = sentence
	} else {
		a.newText.WriteString(sep)
	}

	a.newText.WriteString(text)
	a.end = start + len(text)
	a.kinds[kind] = true
	a.lastKind = kind
	a.lastSentence = sentence
	a.hasParts = true
}

func (a *assembler) flush() {
	if !a.hasParts {
		return
	}
	content := a.render()
	a.out = append(a.out, piece{content, a.typeOf(), a.start, a.end})
	a.lastFlushed = content
	a.seed = overlapSeed(content, a.cfg.OverlapSize)
	a.resetParts()
}

// finish flushes the tail buffer, merging an undersized remainder into the
// preceding piece when the merge stays within the configured tolerance.
func (a *assembler) finish() {
	if !a.hasParts {
		return
	}
	content := a.render()
	if len(content) < a.cfg.MinChunkSize && len(a.out) > 0 {
		prev := &a.out[len(a.out)-1]
		sep := "\n\n"
		if a.firstSentence {
			sep = " "
		}
		merged := prev.content + sep + a.newText.String()
		if len(merged) <= int(float64(a.cfg.MaxChunkSize)*a.cfg.TailMergeTolerance) {
			prev.content = merged
			prev.end = a.end
			a.resetParts()
			return
		}
	}
	a.out = append(a.out, piece{content, a.typeOf(), a.start, a.end})
	a.resetParts()
}

func (a *assembler) emitAtomic(blk Block) {
	a.out = append(a.out, piece{blk.Text, ContentTypeOversizedAtom, blk.Start, blk.Start + len(blk.Text)})
	a.lastFlushed = blk.Text
	a.seed = overlapSeed(blk.Text, a.cfg.OverlapSize)
}

func (a *assembler) resetParts() {
	a.newText.Reset()
	a.kinds = make(map[BlockKind]bool)
	a.hasParts = false
	a.lastSentence = false
	a.firstSentence = false
	a.start, a.end = 0, 0
}

func (a *assembler) render() string {
	if a.seed == "" {
		return a.newText.String()
	}
	return a.seed + a.seedSep + a.newText.String()
}

func (a *assembler) curLen() int {
	n := a.newText.Len()
	if a.seed != "" {
		n += len(a.seed) + len(a.seedSep)
	}
	return n
}

// effMax returns the size limit for the buffer if a unit of the given kind
// joined it: information-dense header/list runs use the structured
// sub-limit, anything touching prose or code uses the full limit.
func (a *assembler) effMax(next BlockKind) int {
	structured := next == BlockHeader || next == BlockListItem
	for k := range a.kinds {
		if k != BlockHeader && k != BlockListItem {
			structured = false
		}
	}
	if structured && a.cfg.StructuredMaxSize > 0 {
		return a.cfg.StructuredMaxSize
	}
	return a.cfg.MaxChunkSize
}

// sepFor picks the natural separator: blank line between blocks, newline
// within a list or code run, single space between sentences.
func (a *assembler) sepFor(kind BlockKind, sentence bool) string {
	if !a.hasParts {
		return ""
	}
	if sentence && a.lastSentence {
		return " "
	}
	if !sentence && a.lastKind == kind && (kind == BlockListItem || kind == BlockCodeFence) {
		return "\n"
	}
	return "\n\n"
}

func (a *assembler) typeOf() string {
	if a.kinds[BlockCodeFence] {
		return ContentTypeCode
	}
	structured := len(a.kinds) > 0
	for k := range a.kinds {
		if k != BlockHeader && k != BlockListItem {
			structured = false
		}
	}
	if structured {
		return ContentTypeStructured
	}
	return ContentTypeProse
}

// overlapSeed takes the trailing size characters of content and extends the
// cut backward to the nearest sentence or block boundary, falling back to a
// word boundary, so the seed never starts mid-word. Content shorter than
// size is reused whole.
func overlapSeed(content string, size int) string {
	if size <= 0 {
		return ""
	}
	if len(content) <= size {
		return content
	}
	target := len(content) - size
	if b := lastBoundaryAt(content, target); b > 0 {
		return content[b:]
	}
	if i := strings.LastIndex(content[:target+1], " "); i > 0 {
		return content[i+1:]
	}
	return content
}

// seedWithin is overlapSeed under a hard ceiling. The backward boundary
// extension can overshoot size badly when the content's nearest boundary
// sits near its start; here the size bound wins over boundary alignment:
// fall forward to the first word break inside the budget, or drop the
// overlap entirely. Overlap is best-effort, the chunk size limit is not.
func seedWithin(content string, size int) string {
	if size <= 0 {
		return ""
	}
	if len(content) <= size {
		return content
	}
	if s := overlapSeed(content, size); len(s) <= size {
		return s
	}
	target := len(content) - size
	if i := strings.IndexAny(content[target:], " \n"); i >= 0 && target+i+1 < len(content) {
		return content[target+i+1:]
	}
	return ""
}

// lastBoundaryAt finds the byte offset of the last sentence or block start
// at or before target, or -1 when none exists.
func lastBoundaryAt(s string, target int) int {
	best := -1

	// Line starts are block boundaries.
	idx := 0
	for {
		j := strings.Index(s[idx:], "\n")
		if j < 0 {
			break
		}
		pos := idx + j + 1
		if pos > target {
			break
		}
		if pos < len(s) && pos > best {
			best = pos
		}
		idx = pos
	}

	// Sentence starts: terminator, whitespace, then an uppercase letter.
	punct, ws := false, false
	for i, r := range s {
		if i > target {
			break
		}
		switch {
		case r == '.' || r == '!' || r == '?':
			punct, ws = true, false
		case unicode.IsSpace(r):
			if punct {
				ws = true
			}
		default:
			if punct && ws && unicode.IsUpper(r) && i > best {
				best = i
			}
			punct, ws = false, false
		}
	}

	return best
}
