package history

import (
	"path/filepath"
	"testing"

	"github.com/matehq/mate/internal/provider"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAndMessages(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if err := s.CreateSession("sess-1"); err != nil {
		t.Fatal(err)
	}

	turns := []struct {
		msg    provider.Message
		hidden bool
	}{
		{provider.Message{Role: provider.RoleUser, Content: "list my files"}, false},
		{provider.Message{Role: provider.RoleAssistant, Content: "```json\n{\"tool\": \"file_list\"}\n```"}, false},
		{provider.Message{Role: provider.RoleSystem, Content: "tool result: a.txt"}, true},
		{provider.Message{Role: provider.RoleAssistant, Content: "You have one file: a.txt"}, false},
	}
	for _, turn := range turns {
		if err := s.Append("sess-1", turn.msg, turn.hidden); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.Messages("sess-1", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("full conversation: got %d messages, want 4", len(all))
	}
	if all[0].Content != "list my files" || all[3].Role != provider.RoleAssistant {
		t.Errorf("order not preserved: %+v", all)
	}

	visible, err := s.Messages("sess-1", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 3 {
		t.Fatalf("transcript: got %d messages, want 3", len(visible))
	}
	for _, m := range visible {
		if m.Content == "tool result: a.txt" {
			t.Error("hidden feedback turn leaked into the transcript")
		}
	}
}

func TestSessionsAndPurge(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	for _, id := range []string{"a", "b"} {
		if err := s.CreateSession(id); err != nil {
			t.Fatal(err)
		}
		if err := s.Append(id, provider.Message{Role: provider.RoleUser, Content: "hi"}, false); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := s.Sessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d sessions, want 2", len(ids))
	}

	if err := s.Purge("a"); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Len("a"); n != 0 {
		t.Errorf("purged session still has %d messages", n)
	}
	ids, _ = s.Sessions()
	if len(ids) != 1 || ids[0] != "b" {
		t.Errorf("unexpected sessions after purge: %v", ids)
	}
}

func TestRecentReturnsChronological(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if err := s.CreateSession("sess"); err != nil {
		t.Fatal(err)
	}
	for _, content := range []string{"one", "two", "three", "four"} {
		if err := s.Append("sess", provider.Message{Role: provider.RoleUser, Content: content}, false); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := s.Recent("sess", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].Content != "three" || recent[1].Content != "four" {
		t.Errorf("got %+v, want last two in order", recent)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")
	s1, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.CreateSession("sess"); err != nil {
		t.Fatal(err)
	}
	if err := s1.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopening migrates against the existing schema without error.
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s2.Close() }()

	ids, err := s2.Sessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "sess" {
		t.Errorf("state not preserved across reopen: %v", ids)
	}
}
