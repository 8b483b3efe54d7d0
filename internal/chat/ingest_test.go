package chat

import (
	"testing"
)

const metricsJSON = `{"metrics":{"ttft":0.5,"output_tokens":10,"throughput":20,"e2e_latency":1.2}}`

func TestIngestorExtractsMetrics(t *testing.T) {
	ing := NewIngestor()
	ing.Feed([]byte("Hello "))
	ing.Feed([]byte("__METRICS__" + metricsJSON + "__METRICS__"))
	ing.Feed([]byte("world"))
	ing.Finish()

	if got := ing.Content(); got != "Hello world" {
		t.Fatalf("expected content %q, got %q", "Hello world", got)
	}
	m := ing.Metrics()
	if m == nil {
		t.Fatal("expected metrics, got nil")
	}
	if m.TTFT != 0.5 || m.OutputTokens != 10 || m.Throughput != 20 || m.E2ELatency != 1.2 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestIngestorChunkBoundaryIndependence(t *testing.T) {
	stream := "Hello __METRICS__" + metricsJSON + "__METRICS__world"

	whole := NewIngestor()
	whole.Feed([]byte(stream))
	whole.Finish()

	for split := 1; split < len(stream); split++ {
		ing := NewIngestor()
		ing.Feed([]byte(stream[:split]))
		ing.Feed([]byte(stream[split:]))
		ing.Finish()

		if ing.Content() != whole.Content() {
			t.Fatalf("split at %d: expected content %q, got %q", split, whole.Content(), ing.Content())
		}
		if (ing.Metrics() == nil) != (whole.Metrics() == nil) {
			t.Fatalf("split at %d: metrics presence diverged", split)
		}
	}
}

func TestIngestorTinyChunks(t *testing.T) {
	stream := "An answer.\n\n__METRICS__" + metricsJSON + "__METRICS__"

	for size := 1; size <= 7; size++ {
		ing := NewIngestor()
		data := []byte(stream)
		for i := 0; i < len(data); i += size {
			end := i + size
			if end > len(data) {
				end = len(data)
			}
			ing.Feed(data[i:end])
		}
		ing.Finish()

		if got := ing.Content(); got != "An answer.\n\n" {
			t.Fatalf("chunk size %d: expected %q, got %q", size, "An answer.\n\n", got)
		}
		if ing.Metrics() == nil {
			t.Fatalf("chunk size %d: expected metrics", size)
		}
	}
}

func TestIngestorMalformedMetricsKeptAsText(t *testing.T) {
	ing := NewIngestor()
	ing.Feed([]byte("before __METRICS__not json__METRICS__ after"))
	ing.Finish()

	want := "before __METRICS__not json__METRICS__ after"
	if got := ing.Content(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if ing.Metrics() != nil {
		t.Fatalf("expected no metrics, got %+v", ing.Metrics())
	}
}

func TestIngestorLastMetricsWins(t *testing.T) {
	first := `{"metrics":{"ttft":9.9,"output_tokens":1,"throughput":1,"e2e_latency":9.9}}`
	ing := NewIngestor()
	ing.Feed([]byte("__METRICS__" + first + "__METRICS__text__METRICS__" + metricsJSON + "__METRICS__"))
	ing.Finish()

	if got := ing.Content(); got != "text" {
		t.Fatalf("expected %q, got %q", "text", got)
	}
	if m := ing.Metrics(); m == nil || m.TTFT != 0.5 {
		t.Fatalf("expected last metrics to win, got %+v", m)
	}
}

func TestIngestorUnclosedMarkerRendersLiterally(t *testing.T) {
	ing := NewIngestor()
	ing.Feed([]byte(`answer __METRICS__{"metrics"`))
	ing.Finish()

	want := `answer __METRICS__{"metrics"`
	if got := ing.Content(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestIngestorMarkerPrefixNotSwallowed(t *testing.T) {
	ing := NewIngestor()
	ing.Feed([]byte("heavy __MET"))
	ing.Feed([]byte("AL band"))
	ing.Finish()

	if got := ing.Content(); got != "heavy __METAL band" {
		t.Fatalf("expected %q, got %q", "heavy __METAL band", got)
	}
}

func TestIngestorNormalizesAcrossChunks(t *testing.T) {
	ing := NewIngestor()
	ing.Feed([]byte("a\r"))
	ing.Feed([]byte("\nb\n\n"))
	ing.Feed([]byte("\n\nc"))
	ing.Finish()

	if got := ing.Content(); got != "a\nb\n\nc" {
		t.Fatalf("expected %q, got %q", "a\nb\n\nc", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"plain",
		"a\r\nb",
		"a\n\n\n\n\nb",
		"a\r\n\r\n\r\nb",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestIngestorThinkingLatches(t *testing.T) {
	ing := NewIngestor()
	if !ing.Thinking() {
		t.Fatal("expected thinking before any content")
	}

	ing.Feed([]byte("  \n\n  "))
	if !ing.Thinking() {
		t.Fatal("expected thinking while buffer is blank")
	}

	ing.Feed([]byte("First words"))
	if ing.Thinking() {
		t.Fatal("expected thinking to end on first content")
	}

	ing.Feed([]byte("\n\n"))
	if ing.Thinking() {
		t.Fatal("thinking must not flip back")
	}
}

func TestIngestorSplitUTF8Rune(t *testing.T) {
	// "héllo" with é (0xC3 0xA9) split across chunks
	ing := NewIngestor()
	ing.Feed([]byte{'h', 0xC3})
	ing.Feed([]byte{0xA9, 'l', 'l', 'o'})
	ing.Finish()

	if got := ing.Content(); got != "héllo" {
		t.Fatalf("expected %q, got %q", "héllo", got)
	}
}

func TestIngestorDiscardsTrailingPartialRune(t *testing.T) {
	ing := NewIngestor()
	ing.Feed([]byte{'o', 'k', 0xE2, 0x82})
	ing.Finish()

	if got := ing.Content(); got != "ok" {
		t.Fatalf("expected partial trailing sequence to be dropped, got %q", got)
	}
}
