package help

import (
	"strings"
	"testing"
)

func TestQUICKREFNonEmpty(t *testing.T) {
	if len(QUICKREF) == 0 {
		t.Fatal("QUICKREF is empty")
	}
}

func TestQUICKREFListsTopics(t *testing.T) {
	for _, topic := range TopicList {
		if !strings.Contains(QUICKREF, topic) {
			t.Errorf("QUICKREF does not mention topic %q", topic)
		}
	}
}

func TestTopicListMatchesTopics(t *testing.T) {
	for _, name := range TopicList {
		if _, ok := Topics[name]; !ok {
			t.Errorf("TopicList entry %q not in Topics map", name)
		}
	}
	if len(Topics) != len(TopicList) {
		t.Errorf("expected %d topics, got %d", len(TopicList), len(Topics))
	}
}

func TestTopicsNonEmpty(t *testing.T) {
	for name, content := range Topics {
		if len(content) == 0 {
			t.Errorf("topic %q has empty content", name)
		}
	}
}

func TestMatchTopicExact(t *testing.T) {
	name, content, err := MatchTopic("syntax")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "syntax" {
		t.Errorf("expected name 'syntax', got %q", name)
	}
	if content == "" {
		t.Error("expected non-empty content")
	}
}

func TestMatchTopicPrefix(t *testing.T) {
	tests := map[string]string{
		"diag": "diagnostics",
		"ex":   "examples",
		"op":   "operators",
		"RE":   "repl",
		"sc":   "scope",
	}
	for prefix, want := range tests {
		name, _, err := MatchTopic(prefix)
		if err != nil {
			t.Errorf("MatchTopic(%q): %v", prefix, err)
			continue
		}
		if name != want {
			t.Errorf("MatchTopic(%q) = %q, want %q", prefix, name, want)
		}
	}
}

func TestMatchTopicUnknown(t *testing.T) {
	for _, name := range []string{"nonexistent", "", "s"} {
		if _, _, err := MatchTopic(name); err == nil {
			t.Errorf("expected error for %q", name)
		}
	}
}

func TestMatchTopicAmbiguous(t *testing.T) {
	_, _, err := MatchTopic("s")
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected an ambiguity error, got %v", err)
	}
}

func TestOperatorTable(t *testing.T) {
	table := OperatorTable()
	if !strings.Contains(table, "Total: 19 operator pairings") {
		t.Errorf("unexpected total:\n%s", table)
	}
	for _, row := range []string{
		"number  number  + - * / == != > >= < <=",
		"string  string  + == !=",
		"string  number  +",
		"string  char    +",
		"bool    bool    == !=",
		"char    char    == !=",
	} {
		if !strings.Contains(table, row) {
			t.Errorf("missing row %q in:\n%s", row, table)
		}
	}
	if strings.Contains(table, "null    null") {
		t.Error("null has no operators")
	}
}

func TestMatchTopicAllExact(t *testing.T) {
	for _, topic := range TopicList {
		name, content, err := MatchTopic(topic)
		if err != nil {
			t.Errorf("MatchTopic(%q) error: %v", topic, err)
			continue
		}
		if name != topic {
			t.Errorf("MatchTopic(%q) returned name %q", topic, name)
		}
		if content == "" {
			t.Errorf("MatchTopic(%q) returned empty content", topic)
		}
	}
}
