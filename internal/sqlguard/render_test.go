package sqlguard

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	t.Parallel()

	rs := &ResultSet{
		Columns: []Column{{Name: "Id", Type: "INT"}, {Name: "Name", Type: "NVARCHAR"}},
		Rows: [][]any{
			{int64(1), "Alice"},
			{int64(2), nil},
		},
	}

	got := rs.Render()
	for _, want := range []string{
		"| Id | Name |",
		"| --- | --- |",
		"| 1 | Alice |",
		"| 2 | NULL |",
		"(2 rows)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("render missing %q:\n%s", want, got)
		}
	}
}

func TestRenderEscapesPipes(t *testing.T) {
	t.Parallel()

	rs := &ResultSet{
		Columns: []Column{{Name: "V"}},
		Rows:    [][]any{{"a|b"}},
	}
	if got := rs.Render(); !strings.Contains(got, `a\|b`) {
		t.Errorf("pipe not escaped:\n%s", got)
	}
}

func TestRenderCapsRows(t *testing.T) {
	t.Parallel()

	rs := &ResultSet{Columns: []Column{{Name: "N"}}}
	for i := 0; i < maxRenderRows+25; i++ {
		rs.Rows = append(rs.Rows, []any{int64(i)})
	}

	got := rs.Render()
	if !strings.Contains(got, "(75 rows total, showing first 50)") {
		t.Errorf("missing truncation footer:\n%s", got)
	}
	if strings.Count(got, "\n") > maxRenderRows+5 {
		t.Errorf("too many lines rendered:\n%d", strings.Count(got, "\n"))
	}
}

func TestRenderNoColumns(t *testing.T) {
	t.Parallel()

	rs := &ResultSet{}
	if got := rs.Render(); got != "(no columns)" {
		t.Errorf("got %q", got)
	}
}
