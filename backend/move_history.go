package main

import (
	"encoding/json"
	"time"
)

type HistoryEntry struct {
	Kind  MoveKind  `json:"kind"`
	Color Color     `json:"color"`
	Move  LastMove  `json:"move"`
	Taken *Piece    `json:"taken,omitempty"`
	Check Color     `json:"check,omitempty"`
	At    time.Time `json:"at"`
}

type MoveHistory struct {
	entries []HistoryEntry
}

func (h *MoveHistory) Push(entry HistoryEntry) {
	h.entries = append(h.entries, entry)
}

func (h MoveHistory) Size() int {
	return len(h.entries)
}

func (h MoveHistory) All() []HistoryEntry {
	return append([]HistoryEntry(nil), h.entries...)
}

func (h MoveHistory) Last() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h MoveHistory) MarshalJSON() ([]byte, error) {
	if h.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h.entries)
}

func (h *MoveHistory) UnmarshalJSON(data []byte) error {
	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	h.entries = entries
	return nil
}
