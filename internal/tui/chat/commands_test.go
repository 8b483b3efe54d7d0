package chat

import "testing"

func TestFilterCommandsEmpty(t *testing.T) {
	got := FilterCommands("")
	if len(got) != len(AllCommands()) {
		t.Fatalf("empty query should return all commands, got %d", len(got))
	}
}

func TestFilterCommandsExactName(t *testing.T) {
	got := FilterCommands("new")
	if len(got) != 1 || got[0].Name != "new" {
		t.Fatalf("expected only /new, got %+v", got)
	}
}

func TestFilterCommandsAlias(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"h", "help"},
		{"?", "help"},
		{"src", "sources"},
		{"exit", "quit"},
	}
	for _, tc := range tests {
		got := FilterCommands(tc.query)
		if len(got) != 1 || got[0].Name != tc.want {
			t.Errorf("FilterCommands(%q) = %+v, want single /%s", tc.query, got, tc.want)
		}
	}
}

func TestFilterCommandsFuzzy(t *testing.T) {
	got := FilterCommands("exp")
	if len(got) == 0 {
		t.Fatal("expected a fuzzy match for exp")
	}
	found := false
	for _, cmd := range got {
		if cmd.Name == "export" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected /export among matches, got %+v", got)
	}
}

func TestFilterCommandsSlashPrefix(t *testing.T) {
	got := FilterCommands("/help")
	if len(got) != 1 || got[0].Name != "help" {
		t.Fatalf("expected the leading slash to be ignored, got %+v", got)
	}
}

func TestFilterCommandsUnknown(t *testing.T) {
	if got := FilterCommands("zzzz"); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}
