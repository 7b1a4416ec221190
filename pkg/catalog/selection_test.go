package catalog

import (
	"sync"
	"testing"
)

func testCatalog() []EntityRef {
	return []EntityRef{
		{Id: "C001", DisplayName: "Acme Co"},
		{Id: "C002", DisplayName: "Globex Retail", SearchableFields: []string{"enterprise"}},
		{Id: "C100", DisplayName: "Zeta Markets", DocumentRef: "zeta_contract.pdf"},
	}
}

func TestFilter(t *testing.T) {
	entries := testCatalog()

	tests := []struct {
		name    string
		filter  string
		wantIds []string
	}{
		{name: "empty filter returns everything", filter: "", wantIds: []string{"C001", "C002", "C100"}},
		{name: "matches name substring", filter: "acme", wantIds: []string{"C001"}},
		{name: "matches id substring", filter: "c00", wantIds: []string{"C001", "C002"}},
		{name: "case insensitive", filter: "GLOBEX", wantIds: []string{"C002"}},
		{name: "matches searchable field", filter: "Enterprise", wantIds: []string{"C002"}},
		{name: "no match", filter: "nonexistent", wantIds: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(entries, tt.filter)
			if len(got) != len(tt.wantIds) {
				t.Fatalf("Filter(%q) returned %d entries, want %d", tt.filter, len(got), len(tt.wantIds))
			}
			for i, ref := range got {
				if ref.Id != tt.wantIds[i] {
					t.Errorf("Filter(%q)[%d].Id = %q, want %q", tt.filter, i, ref.Id, tt.wantIds[i])
				}
			}
		})
	}
}

func TestOptionsAlwaysOfferAll(t *testing.T) {
	m, err := NewSelectionModel(testCatalog())
	if err != nil {
		t.Fatalf("NewSelectionModel: %v", err)
	}

	m.SetFilterText("no-such-entity")

	options := m.Options()
	if len(options) != 1 || options[0].Id != AllKey {
		t.Fatalf("Options() with non-matching filter = %v, want only the ALL sentinel", options)
	}

	// ALL must never leak into the concrete filter results
	for _, ref := range m.Filtered() {
		if ref.Id == AllKey {
			t.Errorf("Filtered() contains the ALL sentinel")
		}
	}
}

func TestDuplicateIdRejected(t *testing.T) {
	_, err := NewSelectionModel([]EntityRef{
		{Id: "C001", DisplayName: "Acme Co"},
		{Id: "C001", DisplayName: "Acme Duplicate"},
	})
	if err == nil {
		t.Fatal("NewSelectionModel accepted a duplicate id")
	}
}

func TestAllSentinelIdRejected(t *testing.T) {
	_, err := NewSelectionModel([]EntityRef{{Id: AllKey, DisplayName: "bad"}})
	if err == nil {
		t.Fatal("NewSelectionModel accepted an entry shadowing the ALL sentinel")
	}
}

func TestSelect(t *testing.T) {
	m, _ := NewSelectionModel(testCatalog())

	if err := m.Select("C001"); err != nil {
		t.Fatalf("Select(C001): %v", err)
	}
	if !m.Selection().IsSingle() || m.Selection().EntityId != "C001" {
		t.Errorf("Selection = %+v, want SINGLE(C001)", m.Selection())
	}
	if m.DisplayText() != "Acme Co" {
		t.Errorf("DisplayText = %q, want %q", m.DisplayText(), "Acme Co")
	}

	if err := m.Select(AllKey); err != nil {
		t.Fatalf("Select(ALL): %v", err)
	}
	if !m.Selection().IsAll() {
		t.Errorf("Selection = %+v, want ALL", m.Selection())
	}

	if err := m.Select("missing"); err == nil {
		t.Error("Select(missing) should fail")
	}
}

func TestStaleSelectionReverts(t *testing.T) {
	m, _ := NewSelectionModel(testCatalog())

	if err := m.Select("C001"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	// Still matches "Acme Co": selection sticks.
	m.SetFilterText("acme")
	if !m.Selection().IsSingle() {
		t.Fatalf("selection dropped although filter still matches")
	}

	// No longer matches: selection reverts to none.
	m.SetFilterText("Zeta")
	if !m.Selection().IsNone() {
		t.Errorf("Selection = %+v, want NONE after filter edit", m.Selection())
	}
	if m.DisplayText() != "" {
		t.Errorf("DisplayText = %q, want empty after revert", m.DisplayText())
	}
}

// One session's model is shared by concurrent request handlers: catalog
// writes race chat reads unless the model locks internally.
func TestConcurrentFilterAndRead(t *testing.T) {
	m, err := NewSelectionModel(testCatalog())
	if err != nil {
		t.Fatalf("NewSelectionModel: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				m.SetFilterText("acme")
				m.Select("C001")
				m.SetFilterText("")
				m.Clear()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				m.Filtered()
				m.Options()
				m.Selection()
				m.Selected()
				m.DisplayText()
			}
		}()
	}
	wg.Wait()

	m.SetFilterText("")
	if got := len(m.Filtered()); got != 3 {
		t.Errorf("catalog shrank under concurrency: %d entries", got)
	}
}

func TestAllSelectionSurvivesFilterEdits(t *testing.T) {
	m, _ := NewSelectionModel(testCatalog())

	if err := m.Select(AllKey); err != nil {
		t.Fatalf("Select(ALL): %v", err)
	}
	m.SetFilterText("anything at all")
	if !m.Selection().IsAll() {
		t.Errorf("ALL selection should be independent of the filter text")
	}
}
