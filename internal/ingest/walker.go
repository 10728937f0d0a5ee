package ingest

import (
	"errors"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"tradereports/internal/event"
)

// ErrNoDocuments means the export contained no message documents.
var ErrNoDocuments = errors.New("export contains no message documents")

// Walker replays an export in the client's split order and yields the
// full ordered event sequence. Parsing is strictly serial: the carried
// sender must flow in document/message order, across document
// boundaries included.
type Walker struct {
	parser *Parser
}

func NewWalker(parser *Parser) *Walker {
	return &Walker{parser: parser}
}

// Events parses every document, oldest split first. When day is
// non-nil only events on that calendar date are returned; the sender
// carry still threads through everything. STARTUP messages are
// classified only to be discarded and never appear in the output.
func (w *Walker) Events(docs []ExportDocument, day *time.Time) ([]event.TradeEvent, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	sorted := make([]ExportDocument, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return docOrdinal(sorted[i].Name) < docOrdinal(sorted[j].Name)
	})

	var (
		events     []event.TradeEvent
		lastSender string
	)
	for _, doc := range sorted {
		for _, msg := range doc.Messages {
			ev, sender, err := w.parser.ParseMessage(msg, lastSender)
			lastSender = sender
			if err != nil {
				return nil, err
			}
			if ev == nil {
				continue
			}
			if day != nil && !sameDate(ev.Timestamp, *day) {
				continue
			}
			events = append(events, *ev)
		}
	}
	return events, nil
}

// docOrdinal reproduces the client's split numbering: "messages" is 0,
// "messages2" is 2, and so on.
func docOrdinal(name string) int {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	i := len(stem)
	for i > 0 && stem[i-1] >= '0' && stem[i-1] <= '9' {
		i--
	}
	if i == len(stem) {
		return 0
	}
	n, err := strconv.Atoi(stem[i:])
	if err != nil {
		return 0
	}
	return n
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
