package game

import (
	"errors"
	"testing"
	"time"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/model"
)

func TestLedger_CountersFollowEventList(t *testing.T) {
	cases := []struct {
		name  string
		typ   model.EventType
		sub   model.SubType
		check func(t *testing.T, p *model.PlayerRecord, ev model.StatEvent)
	}{
		{"point", model.EventPoint, model.SubTypeNone, func(t *testing.T, p *model.PlayerRecord, ev model.StatEvent) {
			if p.Points != 1 || ev.Type != model.EventPoint {
				t.Fatalf("points=%d type=%s", p.Points, ev.Type)
			}
		}},
		{"assist", model.EventAssist, model.SubTypeNone, func(t *testing.T, p *model.PlayerRecord, ev model.StatEvent) {
			if p.Assists != 1 {
				t.Fatalf("assists=%d", p.Assists)
			}
		}},
		{"block", model.EventBlock, model.SubTypeNone, func(t *testing.T, p *model.PlayerRecord, ev model.StatEvent) {
			if p.Blocks != 1 {
				t.Fatalf("blocks=%d", p.Blocks)
			}
		}},
		{"plain drop", model.EventDrop, model.SubTypeNone, func(t *testing.T, p *model.PlayerRecord, ev model.StatEvent) {
			if p.Drops != 1 || p.Turnovers != 0 {
				t.Fatalf("drops=%d turnovers=%d", p.Drops, p.Turnovers)
			}
		}},
		{"turnover drop counts both, keeps type", model.EventTurnover, model.SubTypeDrop, func(t *testing.T, p *model.PlayerRecord, ev model.StatEvent) {
			if p.Turnovers != 1 || p.Drops != 1 {
				t.Fatalf("turnovers=%d drops=%d", p.Turnovers, p.Drops)
			}
			if ev.Type != model.EventTurnover {
				t.Fatalf("drop subtype must not rename the event, got %s", ev.Type)
			}
		}},
		{"throw away re-tags, turnovers only", model.EventTurnover, model.SubTypeThrowAway, func(t *testing.T, p *model.PlayerRecord, ev model.StatEvent) {
			if p.Turnovers != 1 || p.Drops != 0 {
				t.Fatalf("turnovers=%d drops=%d", p.Turnovers, p.Drops)
			}
			if ev.Type != model.EventThrowAway {
				t.Fatalf("expected stored type throw_away, got %s", ev.Type)
			}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLedger()
			p := l.AddPlayer("", "Carlos Mendez", "Thunderbirds")
			ev, err := l.Register(p.ID, tc.typ, tc.sub, 4, 12, time.Now())
			if err != nil {
				t.Fatalf("register: %v", err)
			}
			if len(p.Events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(p.Events))
			}
			tc.check(t, p, ev)

			// Removal reverses exactly the counters the event contributed to.
			if _, err := l.Remove(ev.ID); err != nil {
				t.Fatalf("remove: %v", err)
			}
			if len(p.Events) != 0 {
				t.Fatalf("event not deleted")
			}
			if p.Points+p.Assists+p.Blocks+p.Drops+p.Turnovers+p.Pools != 0 {
				t.Fatalf("counters not reversed: %+v", p)
			}
		})
	}
}

func TestLedger_RegisterUnknownPlayer(t *testing.T) {
	l := NewLedger()
	if _, err := l.Register("missing", model.EventBlock, model.SubTypeNone, 0, 0, time.Now()); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestLedger_RegisterPointCarriesSide(t *testing.T) {
	l := NewLedger()
	p := l.AddPlayer("", "Nico Paredes", "")

	ev, err := l.RegisterPoint(p.ID, model.SideB, 2, 15, time.Now())
	if err != nil {
		t.Fatalf("register point: %v", err)
	}
	if ev.Type != model.EventPoint || ev.Side != model.SideB {
		t.Fatalf("point event: type=%s side=%q", ev.Type, ev.Side)
	}
	if p.Points != 1 {
		t.Fatalf("points=%d", p.Points)
	}
	if _, err := l.Remove(ev.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if p.Points != 0 {
		t.Fatalf("points not reverted: %d", p.Points)
	}
}

func TestLedger_RemoveTwiceIsNotFound(t *testing.T) {
	l := NewLedger()
	p := l.AddPlayer("", "Ana Rodriguez", "")
	ev, _ := l.Register(p.ID, model.EventBlock, model.SubTypeNone, 0, 10, time.Now())

	if _, err := l.Remove(ev.ID); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if _, err := l.Remove(ev.ID); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
	if p.Blocks != 0 {
		t.Fatalf("second remove must leave counters alone, blocks=%d", p.Blocks)
	}
}

func TestLedger_CountersNeverGoNegative(t *testing.T) {
	l := NewLedger()
	p := l.AddPlayer("", "Diego Silva", "")
	ev, _ := l.Register(p.ID, model.EventTurnover, model.SubTypeDrop, 1, 0, time.Now())
	p.Drops = 0 // simulate an externally zeroed counter
	if _, err := l.Remove(ev.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if p.Drops != 0 || p.Turnovers != 0 {
		t.Fatalf("floor at zero violated: drops=%d turnovers=%d", p.Drops, p.Turnovers)
	}
}

func TestLedger_ChronologicalOrderAcrossPlayers(t *testing.T) {
	l := NewLedger()
	a := l.AddPlayer("", "Lucia Torres", "")
	b := l.AddPlayer("", "Martin Lopez", "")

	base := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	first, _ := l.Register(a.ID, model.EventBlock, model.SubTypeNone, 0, 5, base)
	// Identical timestamp: insertion order must break the tie.
	second, _ := l.Register(b.ID, model.EventDrop, model.SubTypeNone, 0, 5, base)
	third, _ := l.Register(a.ID, model.EventPoint, model.SubTypeNone, 1, 0, base.Add(2*time.Second))

	asc := l.Events(false)
	if len(asc) != 3 {
		t.Fatalf("expected 3 events, got %d", len(asc))
	}
	if asc[0].ID != first.ID || asc[1].ID != second.ID || asc[2].ID != third.ID {
		t.Fatalf("ascending order wrong: %v %v %v", asc[0].ID, asc[1].ID, asc[2].ID)
	}

	desc := l.Events(true)
	if desc[0].ID != third.ID || desc[2].ID != first.ID {
		t.Fatalf("descending order wrong")
	}
}

func TestLedger_RestoreKeepsSequenceMonotonic(t *testing.T) {
	l := NewLedger()
	p := l.AddPlayer("", "Sofia Herrera", "")
	_, _ = l.Register(p.ID, model.EventBlock, model.SubTypeNone, 0, 1, time.Now())
	ev2, _ := l.Register(p.ID, model.EventDrop, model.SubTypeNone, 0, 2, time.Now())

	restored := RestoreLedger(l.Records())
	rp, ok := restored.Player(p.ID)
	if !ok {
		t.Fatalf("player lost on restore")
	}
	ev3, err := restored.Register(rp.ID, model.EventPoint, model.SubTypeNone, 0, 3, time.Now())
	if err != nil {
		t.Fatalf("register after restore: %v", err)
	}
	if ev3.Seq <= ev2.Seq {
		t.Fatalf("sequence must stay monotonic across restore: %d <= %d", ev3.Seq, ev2.Seq)
	}
}
