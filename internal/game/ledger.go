package game

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/model"
)

// Ledger is the append-only, reversible log of player events and the single
// source of truth for the aggregate counters derived from it. It is unbounded
// for the duration of one match; removal cost is proportional to the owning
// player's event count, not the total.
//
// The ledger is not safe for concurrent use; the owning Session serializes
// access.
type Ledger struct {
	players []*model.PlayerRecord
	byID    map[string]*model.PlayerRecord
	owner   map[string]string // event id -> player id
	seq     uint64
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		byID:  make(map[string]*model.PlayerRecord),
		owner: make(map[string]string),
	}
}

// AddPlayer registers a new player record. An empty id gets a fresh uuid.
// Adding an id that already exists returns the existing record.
func (l *Ledger) AddPlayer(id, name, team string) *model.PlayerRecord {
	if id != "" {
		if p, ok := l.byID[id]; ok {
			return p
		}
	} else {
		id = uuid.NewString()
	}
	p := &model.PlayerRecord{ID: id, Name: name, Team: team, Events: []model.StatEvent{}}
	l.players = append(l.players, p)
	l.byID[id] = p
	return p
}

// Player looks a record up by its match-local id.
func (l *Ledger) Player(id string) (*model.PlayerRecord, bool) {
	p, ok := l.byID[id]
	return p, ok
}

// PlayerByName resolves a record by exact name. Name equality is the single
// normalization point for players presented under an external roster id.
func (l *Ledger) PlayerByName(name string) (*model.PlayerRecord, bool) {
	for _, p := range l.players {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Register appends an event for the named player stamped with the given
// clock position and wall-clock timestamp, and increments the matching
// counters. A turnover with the drop subtype counts toward both turnovers
// and drops; the throw_away subtype re-tags the stored event type and counts
// only as a turnover.
func (l *Ledger) Register(playerID string, typ model.EventType, sub model.SubType, minute, second int, ts time.Time) (model.StatEvent, error) {
	p, ok := l.byID[playerID]
	if !ok {
		return model.StatEvent{}, ErrPlayerNotFound
	}

	storedType := typ
	storedSub := model.SubTypeNone
	if typ == model.EventTurnover {
		switch sub {
		case model.SubTypeThrowAway:
			storedType = model.EventThrowAway
		case model.SubTypeDrop:
			storedSub = model.SubTypeDrop
		}
	}

	l.seq++
	ev := model.StatEvent{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		Type:      storedType,
		SubType:   storedSub,
		Minute:    minute,
		Second:    second,
		Timestamp: ts,
		Seq:       l.seq,
	}
	l.apply(p, ev, +1)
	p.Events = append(p.Events, ev)
	l.owner[ev.ID] = playerID
	return ev, nil
}

// RegisterPoint appends a point event stamped with the scoreboard side it
// moved, so a later removal reverts the same side without re-deriving it from
// the owner's team tag.
func (l *Ledger) RegisterPoint(playerID string, side model.Side, minute, second int, ts time.Time) (model.StatEvent, error) {
	p, ok := l.byID[playerID]
	if !ok {
		return model.StatEvent{}, ErrPlayerNotFound
	}
	l.seq++
	ev := model.StatEvent{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		Type:      model.EventPoint,
		Side:      side,
		Minute:    minute,
		Second:    second,
		Timestamp: ts,
		Seq:       l.seq,
	}
	p.Points++
	p.Events = append(p.Events, ev)
	l.owner[ev.ID] = playerID
	return ev, nil
}

// RegisterPool appends a pool event carrying the measured duration and result.
func (l *Ledger) RegisterPool(playerID string, minute, second int, ts time.Time, duration float64, result model.PoolResult) (model.StatEvent, error) {
	p, ok := l.byID[playerID]
	if !ok {
		return model.StatEvent{}, ErrPlayerNotFound
	}
	l.seq++
	ev := model.StatEvent{
		ID:                  uuid.NewString(),
		PlayerID:            playerID,
		Type:                model.EventPool,
		Minute:              minute,
		Second:              second,
		Timestamp:           ts,
		Seq:                 l.seq,
		PoolDurationSeconds: duration,
		PoolResult:          result,
	}
	p.Pools++
	p.Events = append(p.Events, ev)
	l.owner[ev.ID] = playerID
	return ev, nil
}

// Find returns the event and its owning record without removing anything.
func (l *Ledger) Find(eventID string) (model.StatEvent, *model.PlayerRecord, error) {
	playerID, ok := l.owner[eventID]
	if !ok {
		return model.StatEvent{}, nil, ErrEventNotFound
	}
	p := l.byID[playerID]
	for _, ev := range p.Events {
		if ev.ID == eventID {
			return ev, p, nil
		}
	}
	return model.StatEvent{}, nil, ErrEventNotFound
}

// Remove locates the event, decrements the matching counters floored at
// zero and deletes the event from its owner's list. Removing an id that is
// gone already returns ErrEventNotFound without touching any state.
func (l *Ledger) Remove(eventID string) (model.StatEvent, error) {
	playerID, ok := l.owner[eventID]
	if !ok {
		return model.StatEvent{}, ErrEventNotFound
	}
	p := l.byID[playerID]
	for i, ev := range p.Events {
		if ev.ID != eventID {
			continue
		}
		l.apply(p, ev, -1)
		p.Events = append(p.Events[:i], p.Events[i+1:]...)
		delete(l.owner, eventID)
		return ev, nil
	}
	// Index said the event exists but the list disagrees; treat as gone.
	delete(l.owner, eventID)
	return model.StatEvent{}, ErrEventNotFound
}

// apply adjusts the counters an event contributes to, flooring at zero on
// the way down. Drop-subtype turnovers move both turnovers and drops.
func (l *Ledger) apply(p *model.PlayerRecord, ev model.StatEvent, delta int) {
	bump := func(c *int) {
		*c += delta
		if *c < 0 {
			*c = 0
		}
	}
	switch ev.Type {
	case model.EventPoint:
		bump(&p.Points)
	case model.EventAssist:
		bump(&p.Assists)
	case model.EventBlock:
		bump(&p.Blocks)
	case model.EventDrop:
		bump(&p.Drops)
	case model.EventTurnover:
		bump(&p.Turnovers)
		if ev.SubType == model.SubTypeDrop {
			bump(&p.Drops)
		}
	case model.EventThrowAway:
		bump(&p.Turnovers)
	case model.EventPool:
		bump(&p.Pools)
	}
}

// Events returns all events across all players in a stable total order by
// timestamp, falling back to insertion order on ties. Descending order gives
// the live "most recent first" view.
func (l *Ledger) Events(descending bool) []model.StatEvent {
	var out []model.StatEvent
	for _, p := range l.players {
		out = append(out, p.Events...)
	}
	sort.Slice(out, func(i, j int) bool {
		less := out[i].Timestamp.Before(out[j].Timestamp) ||
			(out[i].Timestamp.Equal(out[j].Timestamp) && out[i].Seq < out[j].Seq)
		if descending {
			return !less
		}
		return less
	})
	return out
}

// Records deep-copies all player records for a snapshot.
func (l *Ledger) Records() []model.PlayerRecord {
	out := make([]model.PlayerRecord, 0, len(l.players))
	for _, p := range l.players {
		cp := *p
		cp.Events = append([]model.StatEvent(nil), p.Events...)
		out = append(out, cp)
	}
	return out
}

// RestoreLedger rebuilds a ledger from persisted player records.
func RestoreLedger(players []model.PlayerRecord) *Ledger {
	l := NewLedger()
	for _, rec := range players {
		cp := rec
		cp.Events = append([]model.StatEvent(nil), rec.Events...)
		p := &cp
		l.players = append(l.players, p)
		l.byID[p.ID] = p
		for _, ev := range p.Events {
			l.owner[ev.ID] = p.ID
			if ev.Seq > l.seq {
				l.seq = ev.Seq
			}
		}
	}
	return l
}
