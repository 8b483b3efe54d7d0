package chat

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/railtel/railgpt/internal/api"
)

// metricsMarker delimits the JSON stats payload the server embeds in the
// answer text once generation finishes.
const metricsMarker = "__METRICS__"

var newlineRuns = regexp.MustCompile(`\n{3,}`)

// Normalize collapses Windows line endings and runs of three or more
// newlines. It is idempotent, so reapplying it to an already normalized
// buffer is a no-op.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return newlineRuns.ReplaceAllString(s, "\n\n")
}

// Ingestor folds raw answer-stream bytes into one growing message. It owns
// three pieces of cross-chunk state: trailing bytes of an unfinished UTF-8
// sequence, text held back because it may be part of a metrics span that has
// not closed yet, and the committed transcript itself. State is per-turn and
// never reused across streams.
type Ingestor struct {
	raw      strings.Builder
	pending  []byte
	held     string
	content  string
	metrics  *api.Metrics
	thinking bool
}

func NewIngestor() *Ingestor {
	return &Ingestor{thinking: true}
}

// Feed consumes the next chunk of response bytes. The chunk may end in the
// middle of a UTF-8 sequence or a metrics span; both carry over to the next
// call. The caller may reuse the chunk slice after Feed returns.
func (i *Ingestor) Feed(chunk []byte) {
	data := chunk
	if len(i.pending) > 0 {
		data = append(i.pending, chunk...)
		i.pending = nil
	}
	complete, rest := splitIncompleteRune(data)
	if len(rest) > 0 {
		i.pending = append([]byte(nil), rest...)
	}

	text := i.held + string(complete)
	i.held = ""
	i.scan(text)
	i.refresh()
}

// Finish flushes cross-chunk state when the stream ends. An opening marker
// that never closed renders literally; undecodable trailing bytes are
// discarded.
func (i *Ingestor) Finish() {
	i.pending = nil
	if i.held != "" {
		i.raw.WriteString(i.held)
		i.held = ""
	}
	i.refresh()
}

// Content returns the normalized transcript accumulated so far.
func (i *Ingestor) Content() string {
	return i.content
}

// Thinking reports whether the buffer is still blank. Once the first
// non-blank content lands this latches false for the rest of the stream.
func (i *Ingestor) Thinking() bool {
	return i.thinking
}

// Metrics returns the stats from the most recent metrics span, or nil if
// none has arrived.
func (i *Ingestor) Metrics() *api.Metrics {
	return i.metrics
}

// scan commits text up to any unresolved metrics span. A span is only acted
// on once both markers are visible, so detection does not depend on where
// chunk boundaries fall. Text that could still turn into a marker (an open
// span, or a marker prefix at the tail) stays in i.held.
func (i *Ingestor) scan(text string) {
	for {
		idx := strings.Index(text, metricsMarker)
		if idx < 0 {
			keep := markerPrefixLen(text)
			i.raw.WriteString(text[:len(text)-keep])
			i.held = text[len(text)-keep:]
			return
		}

		after := text[idx+len(metricsMarker):]
		end := strings.Index(after, metricsMarker)
		if end < 0 {
			i.raw.WriteString(text[:idx])
			i.held = text[idx:]
			return
		}

		payload := after[:end]
		spanEnd := idx + 2*len(metricsMarker) + end

		var envelope struct {
			Metrics *api.Metrics `json:"metrics"`
		}
		if strings.HasPrefix(strings.TrimSpace(payload), "{") &&
			json.Unmarshal([]byte(payload), &envelope) == nil {
			if envelope.Metrics != nil {
				i.metrics = envelope.Metrics
			}
			i.raw.WriteString(text[:idx])
		} else {
			// Not a stats payload after all; the span stays visible.
			i.raw.WriteString(text[:spanEnd])
		}
		text = text[spanEnd:]
	}
}

// refresh renormalizes the full buffer. Renormalizing everything rather than
// the new tail keeps a CRLF or newline run split across chunks correct.
func (i *Ingestor) refresh() {
	i.content = Normalize(i.raw.String())
	if i.thinking && strings.TrimSpace(i.content) != "" {
		i.thinking = false
	}
}

// markerPrefixLen returns the length of the longest proper prefix of
// metricsMarker that text ends with.
func markerPrefixLen(text string) int {
	limit := len(metricsMarker) - 1
	if limit > len(text) {
		limit = len(text)
	}
	for l := limit; l > 0; l-- {
		if strings.HasSuffix(text, metricsMarker[:l]) {
			return l
		}
	}
	return 0
}

// splitIncompleteRune separates a trailing partial UTF-8 sequence from the
// decodable part of data.
func splitIncompleteRune(data []byte) (complete, rest []byte) {
	for j := len(data) - 1; j >= 0 && len(data)-j <= utf8.UTFMax; j-- {
		b := data[j]
		if b < utf8.RuneSelf {
			return data, nil
		}
		if b < 0xC0 {
			// Continuation byte, keep walking back to the leading byte.
			continue
		}
		size := 2
		switch {
		case b >= 0xF0:
			size = 4
		case b >= 0xE0:
			size = 3
		}
		if j+size <= len(data) {
			return data, nil
		}
		return data[:j], data[j:]
	}
	return data, nil
}
