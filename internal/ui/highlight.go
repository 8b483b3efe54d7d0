package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlighterCache caches highlighters by language tag; lexer lookup is
// expensive enough to matter when re-rendering a long transcript.
var (
	highlighterCache   = make(map[string]*Highlighter)
	highlighterCacheMu sync.RWMutex
)

// Highlighter colors one fenced code block language.
type Highlighter struct {
	lexer chroma.Lexer
	style *chroma.Style
}

// NewHighlighter returns a highlighter for a fence language tag, or nil when
// the language is not recognized.
func NewHighlighter(lang string) *Highlighter {
	highlighterCacheMu.RLock()
	if h, ok := highlighterCache[lang]; ok {
		highlighterCacheMu.RUnlock()
		return h
	}
	highlighterCacheMu.RUnlock()

	lexer := lexers.Get(lang)
	if lexer == nil {
		highlighterCacheMu.Lock()
		highlighterCache[lang] = nil
		highlighterCacheMu.Unlock()
		return nil
	}
	lexer = chroma.Coalesce(lexer)

	// Monokai reads well on dark backgrounds
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	h := &Highlighter{lexer: lexer, style: style}

	highlighterCacheMu.Lock()
	highlighterCache[lang] = h
	highlighterCacheMu.Unlock()

	return h
}

// Highlight colors a code block, returning the input unchanged on any
// tokenizer failure.
func (h *Highlighter) Highlight(code string) string {
	if h == nil {
		return code
	}

	iterator, err := h.lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	formatter := &fgFormatter{style: h.style}
	if err := formatter.Format(&buf, iterator); err != nil {
		return code
	}
	return buf.String()
}

// HighlightCodeBlocks colors every closed ``` fence in content. Fence lines
// themselves stay visible. Settled answers only; a stream may end a chunk
// mid-fence.
func HighlightCodeBlocks(content string) string {
	if !strings.Contains(content, "```") {
		return content
	}

	var out strings.Builder
	var block strings.Builder
	var lang string
	inFence := false

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case !inFence && strings.HasPrefix(trimmed, "```"):
			inFence = true
			lang = strings.TrimPrefix(trimmed, "```")
			block.Reset()
			out.WriteString(line)
			out.WriteString("\n")
		case inFence && strings.HasPrefix(trimmed, "```"):
			inFence = false
			out.WriteString(NewHighlighter(lang).Highlight(block.String()))
			out.WriteString(line)
			if i < len(lines)-1 {
				out.WriteString("\n")
			}
		case inFence:
			block.WriteString(line)
			block.WriteString("\n")
		default:
			out.WriteString(line)
			if i < len(lines)-1 {
				out.WriteString("\n")
			}
		}
	}
	if inFence {
		// Unclosed fence renders as-is
		out.WriteString(block.String())
	}
	return out.String()
}

// fgFormatter is a Chroma formatter that applies only foreground colors, so
// the block inherits the terminal background.
type fgFormatter struct {
	style *chroma.Style
}

func (f *fgFormatter) Format(w io.Writer, iterator chroma.Iterator) error {
	for token := iterator(); token != chroma.EOF; token = iterator() {
		value := token.Value
		if value == "" {
			continue
		}

		entry := f.style.Get(token.Type)

		var codes []string
		if entry.Colour.IsSet() {
			codes = append(codes, fmt.Sprintf("38;2;%d;%d;%d", entry.Colour.Red(), entry.Colour.Green(), entry.Colour.Blue()))
		}
		if entry.Bold == chroma.Yes {
			codes = append(codes, "1")
		}
		if entry.Italic == chroma.Yes {
			codes = append(codes, "3")
		}
		if entry.Underline == chroma.Yes {
			codes = append(codes, "4")
		}

		if len(codes) > 0 {
			fmt.Fprintf(w, "\x1b[%sm%s\x1b[0m", strings.Join(codes, ";"), value)
		} else {
			fmt.Fprint(w, value)
		}
	}
	return nil
}
