package section

import (
	"encoding/json"
	"testing"
)

func TestKeysRoundTripThroughNames(t *testing.T) {
	keys := Keys()
	if len(keys) != 9 {
		t.Fatalf("got %d keys, want 9", len(keys))
	}
	for _, k := range keys {
		got, err := ParseKey(k.String())
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", k, err)
		}
		if got != k {
			t.Errorf("ParseKey(%q) = %v", k, got)
		}
		if k.Title() == "" {
			t.Errorf("%v has no title", k)
		}
	}
}

func TestKeyJSON(t *testing.T) {
	var s struct {
		Key Key `json:"key"`
	}
	if err := json.Unmarshal([]byte(`{"key":"emdClosing"}`), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if s.Key != EMDClosing {
		t.Errorf("key = %v, want emdClosing", s.Key)
	}
	if err := json.Unmarshal([]byte(`{"key":"garage"}`), &s); err == nil {
		t.Error("expected error for unknown key")
	}
	if _, err := Key(42).MarshalText(); err == nil {
		t.Error("expected error marshaling invalid key")
	}
}
