package wserver

import (
	"github.com/annchain/bondledger/eventlog"
)

// UIData is one websocket frame. Type tells the channel it was pushed
// on, Events carries the batch in sequence order.
type UIData struct {
	Type   string                  `json:"type"`
	Events []*eventlog.EventRecord `json:"events"`
}

func (u *UIData) AddEvent(rec *eventlog.EventRecord) {
	u.Events = append(u.Events, rec)
}

// byKind splits the batch per event kind so that clients following a
// single channel only see their kind.
func (u *UIData) byKind() map[string]*UIData {
	out := make(map[string]*UIData)
	for _, rec := range u.Events {
		kind, ok := out[rec.KindName]
		if !ok {
			kind = &UIData{Type: rec.KindName}
			out[rec.KindName] = kind
		}
		kind.AddEvent(rec)
	}
	return out
}
