package catalog

import (
	"fmt"
	"strings"
	"sync"
)

// AllKey is the reserved pseudo-entity meaning "operate over every entity".
// It never collides with a concrete catalog id and is always offered as a
// selectable option regardless of the active filter.
const AllKey = "ALL"

// EntityRef is one selectable business entity (a customer, or a customer's
// indexed document). DocumentRef is set when the entity is backed by a
// previously-indexed document that can answer document-scoped questions.
type EntityRef struct {
	Id               string
	DisplayName      string
	SearchableFields []string
	DocumentRef      string
}

// IsDocumentBacked reports whether questions about this entity can be routed
// to the document-scoped query backend.
func (e EntityRef) IsDocumentBacked() bool {
	return e.DocumentRef != ""
}

type SelectionKind int

const (
	SelectionNone SelectionKind = iota
	SelectionSingle
	SelectionAll
)

// Selection is the tagged selection state: a single concrete entity, the ALL
// sentinel, or nothing.
type Selection struct {
	Kind     SelectionKind
	EntityId string
}

func (s Selection) IsAll() bool    { return s.Kind == SelectionAll }
func (s Selection) IsSingle() bool { return s.Kind == SelectionSingle }
func (s Selection) IsNone() bool   { return s.Kind == SelectionNone }

// SelectionModel owns the entity catalog, the active text filter and the
// current selection for one console session. The catalog is loaded once and
// read-only afterwards; refresh means building a new model. The model is
// shared by concurrent request handlers, so filter and selection state sit
// behind a lock; entries and byId never change after construction.
type SelectionModel struct {
	entries []EntityRef
	byId    map[string]EntityRef

	mu         sync.RWMutex
	filterText string
	selection  Selection
	display    string
}

// NewSelectionModel builds a model over the given catalog. Ids must be
// unique and must not shadow the ALL sentinel.
func NewSelectionModel(refs []EntityRef) (*SelectionModel, error) {
	byId := make(map[string]EntityRef, len(refs))
	entries := make([]EntityRef, 0, len(refs))
	for _, ref := range refs {
		if ref.Id == AllKey {
			return nil, fmt.Errorf("catalog entry id %q collides with the ALL sentinel", ref.Id)
		}
		if _, exists := byId[ref.Id]; exists {
			return nil, fmt.Errorf("duplicate catalog entry id %q", ref.Id)
		}
		byId[ref.Id] = ref
		entries = append(entries, ref)
	}
	return &SelectionModel{
		entries: entries,
		byId:    byId,
	}, nil
}

// SetFilterText updates the active substring filter. If a concrete entity is
// selected and the new filter no longer matches it, the selection reverts to
// none so a stale entity is never queried silently.
func (m *SelectionModel) SetFilterText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.filterText = text
	if m.selection.Kind != SelectionSingle {
		return
	}
	selected, ok := m.byId[m.selection.EntityId]
	if !ok || !matches(selected, text) {
		m.selection = Selection{}
		m.display = ""
	}
}

// Select picks a concrete entity by id, or the ALL sentinel via AllKey.
func (m *SelectionModel) Select(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == AllKey {
		m.selection = Selection{Kind: SelectionAll}
		m.display = AllKey
		return nil
	}
	ref, ok := m.byId[id]
	if !ok {
		return fmt.Errorf("unknown entity %q", id)
	}
	m.selection = Selection{Kind: SelectionSingle, EntityId: ref.Id}
	m.display = ref.DisplayName
	return nil
}

// Clear drops the current selection.
func (m *SelectionModel) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selection = Selection{}
	m.display = ""
}

func (m *SelectionModel) Selection() Selection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selection
}

func (m *SelectionModel) FilterText() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterText
}

func (m *SelectionModel) DisplayText() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.display
}

// Selected returns the concrete entity behind a single selection.
func (m *SelectionModel) Selected() (EntityRef, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.selection.Kind != SelectionSingle {
		return EntityRef{}, false
	}
	ref, ok := m.byId[m.selection.EntityId]
	return ref, ok
}

// Lookup finds a catalog entry by id.
func (m *SelectionModel) Lookup(id string) (EntityRef, bool) {
	ref, ok := m.byId[id]
	return ref, ok
}

// Filtered returns the concrete catalog entries matching the active filter,
// in catalog order. The ALL sentinel never appears here.
func (m *SelectionModel) Filtered() []EntityRef {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Filter(m.entries, m.filterText)
}

// Options returns what the picker should offer: the ALL sentinel first,
// independent of the filter, followed by the filtered concrete entries.
func (m *SelectionModel) Options() []EntityRef {
	m.mu.RLock()
	defer m.mu.RUnlock()

	options := make([]EntityRef, 0, len(m.entries)+1)
	options = append(options, EntityRef{Id: AllKey, DisplayName: "All Customers"})
	options = append(options, Filter(m.entries, m.filterText)...)
	return options
}

// Filter is the pure catalog filter: an entry matches when the lowercased
// filter is a substring of its lowercased name or id. An empty filter
// matches everything.
func Filter(entries []EntityRef, filterText string) []EntityRef {
	if filterText == "" {
		result := make([]EntityRef, len(entries))
		copy(result, entries)
		return result
	}
	result := make([]EntityRef, 0, len(entries))
	for _, entry := range entries {
		if matches(entry, filterText) {
			result = append(result, entry)
		}
	}
	return result
}

func matches(entry EntityRef, filterText string) bool {
	if filterText == "" {
		return true
	}
	needle := strings.ToLower(filterText)
	if strings.Contains(strings.ToLower(entry.DisplayName), needle) ||
		strings.Contains(strings.ToLower(entry.Id), needle) {
		return true
	}
	for _, field := range entry.SearchableFields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
