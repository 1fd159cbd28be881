package annotated

import (
	"io"

	"annotext/internal/analysis"
)

// tokenQueue is a FIFO that reuses its backing array once drained.
type tokenQueue struct {
	items []analysis.Token
	head  int
}

func (q *tokenQueue) push(tok analysis.Token) {
	q.items = append(q.items, tok)
}

func (q *tokenQueue) pop() (analysis.Token, bool) {
	if q.head >= len(q.items) {
		return analysis.Token{}, false
	}
	tok := q.items[q.head]
	q.head++
	if q.head == len(q.items) {
		q.reset()
	}
	return tok, true
}

// unshift puts tok in front of the queued tokens.
func (q *tokenQueue) unshift(tok analysis.Token) {
	if q.head > 0 {
		q.head--
		q.items[q.head] = tok
		return
	}
	q.items = append(q.items, analysis.Token{})
	copy(q.items[1:], q.items)
	q.items[0] = tok
}

func (q *tokenQueue) len() int {
	return len(q.items) - q.head
}

func (q *tokenQueue) reset() {
	q.items = q.items[:0]
	q.head = 0
}

// Injector merges annotation tokens into a base token stream.
//
// When a base token starts at or after the next annotation, the injector
// buffers every base token that ends within the annotation, then emits one
// token per annotation stacked at that offset followed by the buffered
// tokens. The first annotation takes over the position increment of the
// first spanned token, which is replayed with an increment of 0, so the
// annotation occupies the same position as the words it covers and spans
// as many positions as they do.
//
// Annotations come from SetAnnotations or, when none were set, from the
// Handoff the first time a base token is pulled. With neither, the injector
// passes base tokens through unchanged.
type Injector struct {
	input   analysis.TokenStream
	handoff *Handoff
	metrics *Metrics

	parsed *ParsedText
	next   int
	primed bool

	// emit holds the annotations of the current injection and is drained
	// before replay, which holds the base tokens they span.
	emit   tokenQueue
	replay tokenQueue
	// lookahead holds base tokens to examine again before pulling more
	// input: one pulled past an annotation's end, or replayed tokens
	// recaptured by a later group.
	lookahead tokenQueue
	exhausted bool
}

// NewInjector wraps input. h and m may be nil.
func NewInjector(input analysis.TokenStream, h *Handoff, m *Metrics) *Injector {
	return &Injector{input: input, handoff: h, metrics: m}
}

// SetAnnotations sets the annotations to inject and rewinds to the first.
// A nil p disables injection for this pass.
func (i *Injector) SetAnnotations(p *ParsedText) {
	i.parsed = p
	i.next = 0
	i.primed = true
}

// Reset prepares the injector for a new pass over input, dropping buffered
// tokens, annotations and the end-of-stream state of the previous pass.
func (i *Injector) Reset(input analysis.TokenStream) {
	i.input = input
	i.parsed = nil
	i.next = 0
	i.primed = false
	i.emit.reset()
	i.replay.reset()
	i.lookahead.reset()
	i.exhausted = false
}

// Next returns the next token, io.EOF at the end of the stream, or the
// error of the base stream.
func (i *Injector) Next() (analysis.Token, error) {
	for {
		if tok, ok := i.emit.pop(); ok {
			return tok, nil
		}
		if tok, ok := i.replay.pop(); ok {
			ann, ok := i.pending()
			if !ok || tok.StartByte < ann.Start {
				return tok, nil
			}
			// A later group starting at or before a replayed token stacks on
			// it. The tokens still waiting in replay are captured first.
			for n := i.replay.len(); n > 0; n-- {
				i.lookahead.unshift(i.replay.items[i.replay.head+n-1])
			}
			i.replay.reset()
			if err := i.inject(tok, ann); err != nil {
				return analysis.Token{}, err
			}
			continue
		}

		tok, err := i.pull()
		if err != nil {
			return analysis.Token{}, err
		}
		ann, ok := i.pending()
		if !ok || tok.StartByte < ann.Start {
			return tok, nil
		}
		if err := i.inject(tok, ann); err != nil {
			return analysis.Token{}, err
		}
	}
}

func (i *Injector) inject(first analysis.Token, ann Annotation) error {
	slotIncrement := first.PositionIncrement
	first.PositionIncrement = 0
	i.replay.push(first)

	span := 1
	last := first
	for last.EndByte <= ann.End {
		tok, err := i.pull()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if tok.EndByte > ann.End || tok.StartByte >= ann.End {
			i.lookahead.unshift(tok)
			break
		}
		span += tok.PositionIncrement
		i.replay.push(tok)
		last = tok
	}

	increment := slotIncrement
	for {
		a, ok := i.pending()
		if !ok || a.Start != ann.Start {
			break
		}
		typ := a.TypeOrDefault()
		i.emit.push(analysis.Token{
			Term:              a.Value,
			Position:          first.Position,
			StartByte:         a.Start,
			EndByte:           a.End,
			PositionIncrement: increment,
			PositionLength:    max(span, 1),
			Type:              typ,
		})
		i.metrics.injected(typ)
		increment = 0
		i.next++
	}
	return nil
}

func (i *Injector) pending() (Annotation, bool) {
	if i.parsed == nil || i.next >= len(i.parsed.Annotations) {
		return Annotation{}, false
	}
	return i.parsed.Annotations[i.next], true
}

func (i *Injector) pull() (analysis.Token, error) {
	if tok, ok := i.lookahead.pop(); ok {
		return tok, nil
	}
	if i.exhausted || i.input == nil {
		return analysis.Token{}, io.EOF
	}

	tok, err := i.input.Next()
	// The base stream has read its source by now, so a Reader upstream has
	// published whatever it parsed.
	if !i.primed {
		i.prime()
	}
	if err == io.EOF {
		i.exhausted = true
	}
	return tok, err
}

func (i *Injector) prime() {
	i.primed = true
	if i.handoff == nil {
		return
	}
	if p, ok := i.handoff.Take(); ok {
		i.parsed = p
		i.next = 0
	}
}
