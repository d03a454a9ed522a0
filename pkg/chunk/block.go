package chunk

import (
	"regexp"
	"strings"
)

// BlockKind classifies a contiguous span of source text.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeader
	BlockListItem
	BlockCodeFence
)

func (k BlockKind) String() string {
	switch k {
	case BlockHeader:
		return "header"
	case BlockListItem:
		return "list_item"
	case BlockCodeFence:
		return "code_fence"
	default:
		return "paragraph"
	}
}

// Block is an immutable classified line-group produced by Parse.
type Block struct {
	Kind    BlockKind
	Level   int  // header level 1-6, zero otherwise
	Ordered bool // true for "1." style list items
	Text    string
	Start   int // byte offset into the source text
}

// Section is a header-delimited region of a document: a leading header
// (absent for the implicit preamble) followed by every block up to the
// next header of equal or higher level.
type Section struct {
	Title  string
	Level  int // 0 for the preamble
	Blocks []Block
}

var (
	atxHeaderRe = regexp.MustCompile(`^(#{1,6})(?:\s+(.*))?$`)
	listItemRe  = regexp.MustCompile(`^\s{0,3}(?:([-*+])|(\d+)\.)\s+(.*)$`)
	setextRe    = regexp.MustCompile(`^(=+|-{2,})\s*$`)
)

// Parse classifies the lines of raw text into blocks and groups them into
// ordered sections. It never fails: ambiguous lines fall through to
// paragraph classification, and empty input yields a single empty section.
func Parse(raw string) []Section {
	p := &parser{}
	if strings.TrimSpace(raw) == "" {
		return []Section{{}}
	}

	offset := 0
	lines := strings.SplitAfter(raw, "\n")
	for _, line := range lines {
		lineLen := len(line)
		line = strings.TrimRight(line, "\n")
		line = strings.TrimRight(line, "\r")
		p.feed(line, offset)
		offset += lineLen
	}
	p.finish()

	return p.sections
}

// parser holds the line-by-line classification state for one document.
type parser struct {
	sections []Section
	current  *Section

	// pending block under construction
	pendKind  BlockKind
	pendLines []string
	pendStart int
	pendLevel int
	pendOrd   bool

	inFence    bool
	fenceDelim string // "```" or "~~~"
	inList     bool
}

func (p *parser) feed(line string, offset int) {
	trimmed := strings.TrimSpace(line)

	// Inside a fenced block every line is code, including the closer.
	if p.inFence {
		p.pendLines = append(p.pendLines, line)
		if strings.HasPrefix(trimmed, p.fenceDelim) {
			p.inFence = false
			p.flushPending()
		}
		return
	}

	if trimmed == "" {
		// Blank lines separate blocks but are never materialized.
		p.flushPending()
		p.inList = false
		return
	}

	// Fence opener.
	if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
		p.flushPending()
		p.inFence = true
		p.fenceDelim = trimmed[:3]
		p.inList = false
		p.startPending(BlockCodeFence, line, offset)
		return
	}

	// ATX header.
	if m := atxHeaderRe.FindStringSubmatch(line); m != nil {
		p.flushPending()
		p.inList = false
		p.startPending(BlockHeader, strings.TrimSpace(m[2]), offset)
		p.pendLevel = len(m[1])
		p.flushPending()
		return
	}

	// Setext underline: promotes a pending single-line paragraph to a header.
	if setextRe.MatchString(trimmed) && p.pendKind == BlockParagraph && len(p.pendLines) == 1 {
		level := 1
		if trimmed[0] == '-' {
			level = 2
		}
		text := strings.TrimSpace(p.pendLines[0])
		start := p.pendStart
		p.pendLines = nil
		p.startPending(BlockHeader, text, start)
		p.pendLevel = level
		p.flushPending()
		return
	}

	// List item: every marker line is its own block.
	if m := listItemRe.FindStringSubmatch(line); m != nil {
		p.flushPending()
		p.inList = true
		blk := Block{Kind: BlockListItem, Text: strings.TrimSpace(line), Start: offset, Ordered: m[1] == ""}
		p.pendKind = blk.Kind
		p.pendLines = []string{blk.Text}
		p.pendStart = blk.Start
		p.pendOrd = blk.Ordered
		return
	}

	indented := strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t")

	// Indented continuation of the current list item stays with it.
	if indented && p.inList && p.pendKind == BlockListItem && len(p.pendLines) > 0 {
		p.pendLines = append(p.pendLines, trimmed)
		return
	}

	// Indented code outside any list context.
	if indented && !p.inList {
		if p.pendKind != BlockCodeFence || len(p.pendLines) == 0 {
			p.flushPending()
			p.startPending(BlockCodeFence, line, offset)
		} else {
			p.pendLines = append(p.pendLines, line)
		}
		return
	}

	// Anything else is paragraph text.
	if p.pendKind != BlockParagraph || len(p.pendLines) == 0 {
		p.flushPending()
		p.inList = false
		p.startPending(BlockParagraph, line, offset)
	} else {
		p.pendLines = append(p.pendLines, line)
	}
}

func (p *parser) startPending(kind BlockKind, text string, offset int) {
	p.pendKind = kind
	p.pendLines = []string{text}
	p.pendStart = offset
	p.pendLevel = 0
	p.pendOrd = false
}

func (p *parser) flushPending() {
	if len(p.pendLines) == 0 {
		return
	}
	text := strings.Join(p.pendLines, "\n")
	if p.pendKind != BlockCodeFence {
		text = strings.TrimSpace(text)
	} else {
		text = strings.TrimRight(text, "\n")
	}
	blk := Block{
		Kind:    p.pendKind,
		Level:   p.pendLevel,
		Ordered: p.pendOrd,
		Text:    text,
		Start:   p.pendStart,
	}
	p.pendLines = nil
	p.pendLevel = 0
	p.pendOrd = false
	if blk.Text == "" {
		return
	}
	p.appendBlock(blk)
}

func (p *parser) finish() {
	if p.inFence {
		// Unterminated fence: emit what accumulated as code.
		p.inFence = false
	}
	p.flushPending()
	if p.current != nil {
		p.sections = append(p.sections, *p.current)
		p.current = nil
	}
	if len(p.sections) == 0 {
		p.sections = []Section{{}}
	}
}

func (p *parser) appendBlock(blk Block) {
	if blk.Kind == BlockHeader && p.startsNewSection(blk) {
		if p.current != nil {
			p.sections = append(p.sections, *p.current)
		}
		// The leading header becomes the section title rather than content;
		// deeper sub-headers stay in Blocks.
		p.current = &Section{Title: blk.Text, Level: blk.Level}
		return
	}
	if p.current == nil {
		// Implicit preamble before the first header.
		p.current = &Section{}
	}
	p.current.Blocks = append(p.current.Blocks, blk)
}

// startsNewSection reports whether a header closes the open section. Deeper
// headers stay inside as sub-headers; equal-or-higher levels start fresh.
func (p *parser) startsNewSection(h Block) bool {
	if p.current == nil {
		return true
	}
	if p.current.Level == 0 {
		return true // any header closes the preamble
	}
	return h.Level <= p.current.Level
}
