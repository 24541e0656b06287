package app

import (
	"encoding/json"
	"testing"
)

func TestHistoryEntryWireFormat(t *testing.T) {
	entries := []HistoryEntry{
		{Query: "What does this repo do?", Response: "It's a demo."},
		{Query: "q2", Response: "r2"},
	}

	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[["What does this repo do?","It's a demo."],["q2","r2"]]`
	if string(data) != want {
		t.Fatalf("wire encoding = %s, want %s", data, want)
	}

	var back []HistoryEntry
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != 2 || back[0] != entries[0] || back[1] != entries[1] {
		t.Fatalf("round trip mismatch: %#v", back)
	}
}

func TestHistoryEntryRejectsMalformedTuples(t *testing.T) {
	for _, raw := range []string{`["only one"]`, `["a","b","c"]`, `{"query":"a"}`} {
		var e HistoryEntry
		if err := json.Unmarshal([]byte(raw), &e); err == nil {
			t.Fatalf("expected %s to be rejected", raw)
		}
	}
}

func TestCodeSourceLineNumbersStayIntegers(t *testing.T) {
	raw := `{"type":"code","file":"src/index.ts","lineStart":10,"lineEnd":24,"snippet":"export const x = 1;"}`

	var src Source
	if err := json.Unmarshal([]byte(raw), &src); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if src.Type != SourceCode || src.LineStart != 10 || src.LineEnd != 24 {
		t.Fatalf("unexpected source: %#v", src)
	}

	data, err := json.Marshal(src)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var echo map[string]interface{}
	if err := json.Unmarshal(data, &echo); err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if _, isNumber := echo["lineStart"].(float64); !isNumber {
		t.Fatalf("lineStart must encode as a JSON number, got %T", echo["lineStart"])
	}
}

func TestNewMessagesHaveDistinctOrderableIdentity(t *testing.T) {
	a := NewUserMessage("first")
	b := NewAssistantMessage("second", []Source{{Type: SourceIssue, Title: "bug", URL: "https://github.com/o/r/issues/1"}})

	if a.ID == "" || b.ID == "" || a.ID == b.ID {
		t.Fatalf("messages must carry unique ids: %q vs %q", a.ID, b.ID)
	}
	if a.Role != RoleUser || b.Role != RoleAssistant {
		t.Fatalf("unexpected roles: %q %q", a.Role, b.Role)
	}
	if b.Timestamp.Before(a.Timestamp) {
		t.Fatalf("timestamps must be chronological")
	}
	if len(b.Sources) != 1 || b.Sources[0].Type != SourceIssue {
		t.Fatalf("sources not attached: %#v", b.Sources)
	}
}
