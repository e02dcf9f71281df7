package assets

import (
	"testing"

	"github.com/lexandro/assetmod-mcp/option"
)

func Test_Registry_SetAndLookup(t *testing.T) {
	r := NewRegistry()
	rule := &option.SuggestionRule{Name: "png", Extensions: []string{".png"}}

	r.set(abs("b.png"), rule)
	r.set(abs("a.png"), rule)
	r.set(abs("a.png"), rule)

	if r.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", r.Len())
	}
	list := r.List()
	if list[0] != abs("a.png") || list[1] != abs("b.png") {
		t.Errorf("expected sorted list, got %v", list)
	}
	if r.Lookup(abs("a.png")) != rule {
		t.Error("expected lookup to return the stored rule")
	}
	if r.Lookup(abs("missing.png")) != nil {
		t.Error("expected nil for unknown path")
	}
}

func Test_Registry_Remove(t *testing.T) {
	r := NewRegistry()
	rule := &option.SuggestionRule{Name: "png"}
	r.set(abs("a.png"), rule)
	r.remove(abs("a.png"))
	r.remove(abs("never-added.png"))

	if r.Contains(abs("a.png")) {
		t.Error("expected a.png to be removed")
	}
	if len(r.List()) != 0 {
		t.Errorf("expected empty list, got %v", r.List())
	}
}

func Test_Registry_ListIsACopy(t *testing.T) {
	r := NewRegistry()
	r.set(abs("a.png"), &option.SuggestionRule{Name: "png"})

	list := r.List()
	list[0] = "mutated"

	if r.List()[0] != abs("a.png") {
		t.Error("expected List to return a copy")
	}
}

func Test_Registry_RuleCountsAndSnapshot(t *testing.T) {
	r := NewRegistry()
	png := &option.SuggestionRule{Name: "png"}
	svg := &option.SuggestionRule{Name: "svg"}
	r.set(abs("a.png"), png)
	r.set(abs("b.png"), png)
	r.set(abs("c.svg"), svg)

	counts := r.RuleCounts()
	if counts["png"] != 2 || counts["svg"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
	if r.Snapshot()[abs("c.svg")] != "svg" {
		t.Errorf("unexpected snapshot: %v", r.Snapshot())
	}
}

func Test_Reconcile_Policies(t *testing.T) {
	opts := overlappingOptions(option.LastMatch)
	f := newFixture(t, opts, newMemFS())
	m := f.sync.matcher

	tests := []struct {
		name     string
		exists   bool
		policy   option.MatchPolicy
		seed     *option.SuggestionRule
		wantOp   Op
		wantRule string
	}{
		{"new file last match", true, option.LastMatch, nil, OpUpsert, "vectors"},
		{"new file first match", true, option.FirstMatch, nil, OpUpsert, "images"},
		{"unchanged rule", true, option.LastMatch, &opts.Rules[1], OpNone, "vectors"},
		{"reclassified", true, option.FirstMatch, &opts.Rules[1], OpUpsert, "images"},
		{"deleted known", false, option.LastMatch, &opts.Rules[0], OpDelete, ""},
		{"deleted unknown", false, option.LastMatch, nil, OpNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			if tt.seed != nil {
				r.set(abs("icon.svg"), tt.seed)
			}
			change := Reconcile(r, abs("icon.svg"), tt.exists, m, tt.policy)
			if change.Op != tt.wantOp {
				t.Fatalf("op = %s, want %s", change.Op, tt.wantOp)
			}
			if tt.wantRule != "" && change.Rule.Name != tt.wantRule {
				t.Errorf("rule = %s, want %s", change.Rule.Name, tt.wantRule)
			}
		})
	}
}

func Test_Reconcile_ExistingButNoLongerMatching(t *testing.T) {
	opts := overlappingOptions(option.LastMatch)
	f := newFixture(t, opts, newMemFS())

	r := NewRegistry()
	r.set(abs("dist/icon.svg"), &opts.Rules[0])

	change := Reconcile(r, abs("dist/icon.svg"), true, f.sync.matcher, option.LastMatch)
	if change.Op != OpDelete {
		t.Errorf("expected delete for excluded path, got %s", change.Op)
	}
}
