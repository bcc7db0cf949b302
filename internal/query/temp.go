package query

import "github.com/quetzaldb/quetzal/internal/encoding"

// tempManager holds values minted during expression evaluation. It lives for
// one query and is never shared between queries, so no locking is needed.
// Datatype and language ids carry encoding.MaskTagManager so the printer can
// route them here instead of the permanent catalog.
type tempManager struct {
	strings   []string
	stringIDs map[string]uint64

	datatypes   []string
	datatypeIDs map[string]uint16

	languages   []string
	languageIDs map[string]uint16
}

func newTempManager() *tempManager {
	return &tempManager{
		stringIDs:   make(map[string]uint64),
		datatypeIDs: make(map[string]uint16),
		languageIDs: make(map[string]uint16),
	}
}

func (m *tempManager) InternString(s string) uint64 {
	if id, ok := m.stringIDs[s]; ok {
		return id
	}
	id := uint64(len(m.strings))
	m.strings = append(m.strings, s)
	m.stringIDs[s] = id
	return id
}

func (m *tempManager) LookupString(id uint64) string {
	if id >= uint64(len(m.strings)) {
		return ""
	}
	return m.strings[id]
}

func (m *tempManager) InternDatatype(iri string) uint16 {
	if id, ok := m.datatypeIDs[iri]; ok {
		return id
	}
	id := uint16(len(m.datatypes)) | encoding.MaskTagManager
	m.datatypes = append(m.datatypes, iri)
	m.datatypeIDs[iri] = id
	return id
}

func (m *tempManager) InternLanguage(tag string) uint16 {
	if id, ok := m.languageIDs[tag]; ok {
		return id
	}
	id := uint16(len(m.languages)) | encoding.MaskTagManager
	m.languages = append(m.languages, tag)
	m.languageIDs[tag] = id
	return id
}

func (m *tempManager) LookupDatatype(id uint16) string {
	i := id &^ encoding.MaskTagManager
	if int(i) >= len(m.datatypes) {
		return ""
	}
	return m.datatypes[i]
}

func (m *tempManager) LookupLanguage(id uint16) string {
	i := id &^ encoding.MaskTagManager
	if int(i) >= len(m.languages) {
		return ""
	}
	return m.languages[i]
}
