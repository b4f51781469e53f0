package services

import (
	"context"
	"fmt"

	"docchat/logger"
)

// DatabaseLister discovers the queryable databases.
type DatabaseLister interface {
	Databases(ctx context.Context) ([]string, error)
}

// DatabaseSelector holds the discovered database identifiers and the current selection.
type DatabaseSelector struct {
	available []string
	selected  string
}

func NewDatabaseSelector() *DatabaseSelector {
	return &DatabaseSelector{}
}

// Load runs discovery once and applies the result. On failure the selector
// is left empty and the error is returned for the caller to report.
func (s *DatabaseSelector) Load(ctx context.Context, lister DatabaseLister) error {
	ids, err := lister.Databases(ctx)
	if err != nil {
		s.SetAvailable(nil)
		return fmt.Errorf("discover databases: %w", err)
	}
	s.SetAvailable(ids)
	return nil
}

// SetAvailable replaces the discovered set and defaults the selection to the
// first entry, or to none when the set is empty.
func (s *DatabaseSelector) SetAvailable(ids []string) {
	s.available = append([]string(nil), ids...)
	s.selected = ""
	if len(s.available) > 0 {
		s.selected = s.available[0]
	}
	logger.Log.Debugw("databases available", "count", len(s.available), "selected", s.selected)
}

// Select sets the current selection. Membership is not checked; callers only
// offer discovered identifiers. An empty id clears the selection.
func (s *DatabaseSelector) Select(id string) {
	s.selected = id
}

func (s *DatabaseSelector) Selected() (string, bool) {
	return s.selected, s.selected != ""
}

func (s *DatabaseSelector) Available() []string {
	return append([]string(nil), s.available...)
}

// Index reports the position of the current selection among the available ids.
func (s *DatabaseSelector) Index() int {
	for i, id := range s.available {
		if id == s.selected {
			return i
		}
	}
	return -1
}
