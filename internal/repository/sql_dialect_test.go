package repository

import "testing"

func TestContainsConditionByDialect(t *testing.T) {
	if got := containsCondition("sqlite", "user_id"); got != `CAST(user_id AS TEXT) LIKE ? ESCAPE '\'` {
		t.Fatalf("sqlite condition mismatch, got %s", got)
	}
	if got := containsCondition("postgres", "user_id"); got != `CAST(user_id AS TEXT) ILIKE ? ESCAPE '\'` {
		t.Fatalf("postgres condition mismatch, got %s", got)
	}
}

func TestContainsArgEscapesWildcards(t *testing.T) {
	cases := map[string]string{
		"abc":  "%abc%",
		"50%":  `%50\%%`,
		"a_b":  `%a\_b%`,
		`c:\d`: `%c:\\d%`,
	}
	for in, want := range cases {
		if got := containsArg(in); got != want {
			t.Fatalf("containsArg(%q) want %s got %s", in, want, got)
		}
	}
}

func TestOrderClause(t *testing.T) {
	if got := orderClause("created_at", "DESC"); got != "created_at desc" {
		t.Fatalf("unexpected clause: %s", got)
	}
	if got := orderClause("created_at", "sideways"); got != "created_at asc" {
		t.Fatalf("unexpected clause: %s", got)
	}
}

func TestDialectNameDefaultsToSQLite(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("expected sqlite, got %s", got)
	}
}
