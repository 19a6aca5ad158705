package ledger

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/shopbooks/internal/model"
)

// ErrUnknownEntry is returned when a sequence number names no entry.
var ErrUnknownEntry = errors.New("unknown entry")

// Store is the ordered transaction ledger. Entries are kept in date order;
// entries sharing a date keep the order they were added in.
type Store struct {
	entries []model.Entry
	nextSeq int
}

// Day is one date's batch of entries.
type Day struct {
	Date    time.Time
	Entries []model.Entry
}

// NewStore assigns sequence numbers in input order and sorts by date.
func NewStore(entries []model.Entry) *Store {
	s := &Store{nextSeq: 1}
	s.Append(entries...)
	return s
}

// Append adds entries after every existing entry of the same date and
// returns them with their assigned sequence numbers.
func (s *Store) Append(entries ...model.Entry) []model.Entry {
	added := make([]model.Entry, len(entries))
	for i, e := range entries {
		e.Seq = s.nextSeq
		e.Date = model.Day(e.Date)
		s.nextSeq++
		added[i] = e
	}
	s.entries = append(s.entries, added...)
	slices.SortStableFunc(s.entries, func(a, b model.Entry) int {
		return a.Date.Compare(b.Date)
	})
	return added
}

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Entries returns a copy of every entry in ledger order.
func (s *Store) Entries() []model.Entry {
	return slices.Clone(s.entries)
}

// Get returns the entry with sequence number seq.
func (s *Store) Get(seq int) (model.Entry, error) {
	i := s.index(seq)
	if i < 0 {
		return model.Entry{}, fmt.Errorf("%w: #%d", ErrUnknownEntry, seq)
	}
	return s.entries[i], nil
}

// Filter returns the entries pred accepts, in ledger order.
func (s *Store) Filter(pred func(model.Entry) bool) []model.Entry {
	var out []model.Entry
	for _, e := range s.entries {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// Until returns the entries dated on or before asOf.
func (s *Store) Until(asOf time.Time) []model.Entry {
	asOf = model.Day(asOf)
	return s.Filter(func(e model.Entry) bool { return !e.Date.After(asOf) })
}

// Retain drops every entry keep rejects. Sequence numbers are unchanged.
func (s *Store) Retain(keep func(model.Entry) bool) {
	s.entries = slices.DeleteFunc(s.entries, func(e model.Entry) bool { return !keep(e) })
}

// Days splits the ledger into chronological day batches. Each batch holds
// its own copy, so entries appended later never show up in a batch already
// returned.
func (s *Store) Days() []Day {
	var days []Day
	for _, e := range s.entries {
		if n := len(days); n > 0 && days[n-1].Date.Equal(e.Date) {
			days[n-1].Entries = append(days[n-1].Entries, e)
			continue
		}
		days = append(days, Day{Date: e.Date, Entries: []model.Entry{e}})
	}
	return days
}

// Resolve values a shop transfer: both amounts are set to amount and the
// entry is marked resolved.
func (s *Store) Resolve(seq int, amount decimal.Decimal) error {
	i := s.index(seq)
	if i < 0 {
		return fmt.Errorf("resolving: %w: #%d", ErrUnknownEntry, seq)
	}
	if s.entries[i].Status == model.StatusSynthetic {
		return fmt.Errorf("resolving #%d: entry is synthetic", seq)
	}
	s.entries[i].DebitAmount = amount
	s.entries[i].CreditAmount = amount
	s.entries[i].Status = model.StatusResolved
	return nil
}

func (s *Store) index(seq int) int {
	return slices.IndexFunc(s.entries, func(e model.Entry) bool { return e.Seq == seq })
}
