package api

import (
	"encoding/json"
	"testing"
)

func TestTurnTextUnmarshal(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantContent string
		wantStamp   string
		wantPresent bool
		wantErr     bool
	}{
		{
			name:        "bare string",
			input:       `"what is the policy?"`,
			wantContent: "what is the policy?",
			wantPresent: true,
		},
		{
			name:        "object with timestamp",
			input:       `{"content": "answer text", "timestamp": "2024-03-01T10:00:00Z"}`,
			wantContent: "answer text",
			wantStamp:   "2024-03-01T10:00:00Z",
			wantPresent: true,
		},
		{
			name:        "object without timestamp",
			input:       `{"content": "x"}`,
			wantContent: "x",
			wantPresent: true,
		},
		{
			name:        "null is absent",
			input:       `null`,
			wantPresent: false,
		},
		{
			name:    "number is rejected",
			input:   `5`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var tt TurnText
			err := json.Unmarshal([]byte(tc.input), &tt)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected an error for %s", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.Present() != tc.wantPresent {
				t.Fatalf("Present() = %v, want %v", tt.Present(), tc.wantPresent)
			}
			if tt.Content != tc.wantContent {
				t.Fatalf("Content = %q, want %q", tt.Content, tc.wantContent)
			}
			if tt.Timestamp != tc.wantStamp {
				t.Fatalf("Timestamp = %q, want %q", tt.Timestamp, tc.wantStamp)
			}
		})
	}
}

func TestTurnSourceList(t *testing.T) {
	withSources := Turn{
		Sources: []Source{{Source: "a.pdf"}},
		Context: []Source{{Source: "b.pdf"}},
	}
	if got := withSources.SourceList(); len(got) != 1 || got[0].Source != "a.pdf" {
		t.Fatalf("expected sources to win over context, got %+v", got)
	}

	contextOnly := Turn{Context: []Source{{Source: "b.pdf"}}}
	if got := contextOnly.SourceList(); len(got) != 1 || got[0].Source != "b.pdf" {
		t.Fatalf("expected context fallback, got %+v", got)
	}
}
