package tool

import (
	"testing"
)

func TestExtractSingleCall(t *testing.T) {
	t.Parallel()

	text := "I'll list the files:\n\n```json\n{\n  \"tool\": \"file_list\",\n  \"parameters\": {\n    \"path\": \"/tmp\"\n  }\n}\n```\n\nDone."

	calls, errs := Extract(text)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].Tool != "file_list" {
		t.Fatalf("unexpected tool: %s", calls[0].Tool)
	}
	if calls[0].Params["path"] != "/tmp" {
		t.Fatalf("unexpected params: %v", calls[0].Params)
	}
	if calls[0].ID == "" {
		t.Fatal("call must have an id")
	}
}

func TestExtractPreservesSourceOrder(t *testing.T) {
	t.Parallel()

	text := "```json\n{\"tool\": \"file_list\", \"parameters\": {\"path\": \"/a\"}}\n```\n" +
		"then\n" +
		"```json\n{\"tool\": \"file_read\", \"parameters\": {\"path\": \"/a/x\"}}\n```\n" +
		"finally\n" +
		"```json\n{\"tool\": \"system_info\", \"parameters\": {}}\n```\n"

	calls, _ := Extract(text)
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(calls))
	}
	want := []string{"file_list", "file_read", "system_info"}
	for i, name := range want {
		if calls[i].Tool != name {
			t.Fatalf("order violated at %d: got %s, want %s", i, calls[i].Tool, name)
		}
	}
}

func TestExtractMalformedBlockDoesNotAbortScan(t *testing.T) {
	t.Parallel()

	text := "```json\n{\"tool\": \"file_list\", broken\n```\n" +
		"```json\n{\"tool\": \"system_info\", \"parameters\": {}}\n```\n"

	calls, errs := Extract(text)
	if len(errs) != 1 {
		t.Fatalf("expected 1 parse error, got %d", len(errs))
	}
	if len(calls) != 1 || calls[0].Tool != "system_info" {
		t.Fatalf("scan did not continue past malformed block: %v", calls)
	}
}

func TestExtractUnknownToolStillReturned(t *testing.T) {
	t.Parallel()

	text := "```json\n{\"tool\": \"teleport\", \"parameters\": {\"to\": \"moon\"}}\n```"

	calls, errs := Extract(text)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(calls) != 1 || calls[0].Tool != "teleport" {
		t.Fatalf("unknown tool must still be extracted: %v", calls)
	}
}

func TestExtractSkipsNonCallObjects(t *testing.T) {
	t.Parallel()

	text := "Here is some data:\n```json\n{\"temperature\": 21.5}\n```"

	calls, errs := Extract(text)
	if len(calls) != 0 || len(errs) != 0 {
		t.Fatalf("object without tool field must be skipped: calls=%v errs=%v", calls, errs)
	}
}

func TestExtractPlainTextYieldsNothing(t *testing.T) {
	t.Parallel()

	calls, errs := Extract("The answer is 42. No tools needed.")
	if len(calls) != 0 || len(errs) != 0 {
		t.Fatalf("expected nothing, got calls=%v errs=%v", calls, errs)
	}
}

func TestExtractMissingParametersDefaultsEmpty(t *testing.T) {
	t.Parallel()

	calls, _ := Extract("```json\n{\"tool\": \"system_info\"}\n```")
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].Params == nil {
		t.Fatal("params must default to an empty map")
	}
}
