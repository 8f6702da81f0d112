package history

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/runnerr0/linkhist/internal/storage"
)

// Session is the state of one history view: the store handle, paging and
// search progress, and which record's detail is open. It implements
// capture.Sink so captured links reach both the store and the view.
type Session struct {
	open      OpenFunc
	presenter Presenter
	pager     *Pager
	searcher  *Searcher
	log       *zap.Logger

	mu       sync.Mutex
	detailID string
	query    string

	// gen is bumped by Reset and by each Search so a search that finishes
	// late leaves the view alone.
	gen uint64
}

// SessionState is a snapshot of a Session.
type SessionState struct {
	Pager    PagerState `json:"pager"`
	Query    string     `json:"query"`
	DetailID string     `json:"detail_id,omitempty"`
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPageSize sets the number of records per page.
func WithPageSize(n int) SessionOption {
	return func(s *Session) { s.pager = NewPager(n) }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) SessionOption {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSession returns a Session reading from the store returned by open and
// rendering through presenter. A nil presenter discards output.
func NewSession(open OpenFunc, presenter Presenter, opts ...SessionOption) *Session {
	if presenter == nil {
		presenter = NopPresenter{}
	}
	s := &Session{
		open:      open,
		presenter: presenter,
		pager:     NewPager(DefaultPageSize),
		searcher:  &Searcher{},
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("history")
	return s
}

func (s *Session) store(ctx context.Context, op string) (Store, error) {
	st, err := s.open(ctx)
	if err != nil {
		s.log.Error("store unavailable", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	return st, nil
}

// LoadNextPage loads the next page of older records into the view.
func (s *Session) LoadNextPage(ctx context.Context) (int, error) {
	st, err := s.store(ctx, "load_page")
	if err != nil {
		return 0, err
	}
	n, err := s.pager.LoadNext(ctx, st, s.presenter.AppendPage)
	if err != nil {
		s.log.Error("load page failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.log.Debug("page loaded", zap.Int("count", n), zap.Int("offset", s.pager.State().Offset))
	}
	return n, nil
}

// Search replaces the view with every record matching query, newest first.
// The paging offset is left as it is, but a page still loading is dropped.
// If Reset or a newer Search runs before the scan ends, the results are
// returned without touching the view.
func (s *Session) Search(ctx context.Context, query string) ([]storage.LinkRecord, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()
	s.pager.abandon()

	st, err := s.store(ctx, "search")
	if err != nil {
		return nil, err
	}
	results, err := s.searcher.Search(ctx, st, query)
	if err != nil {
		s.log.Error("search failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.log.Debug("search superseded", zap.String("query", query))
		return results, nil
	}
	s.query = query
	s.presenter.ReplaceList(results)
	return results, nil
}

// Captured stores a newly captured record and shows it at the head of the
// view. Failures are logged; the record is not shown if it was not stored.
func (s *Session) Captured(ctx context.Context, rec storage.LinkRecord) {
	st, err := s.store(ctx, "put")
	if err != nil {
		return
	}
	if err := st.Put(ctx, rec); err != nil {
		s.log.Error("store captured link failed", zap.String("id", rec.ID), zap.Error(err))
		return
	}
	s.presenter.PrependRecord(rec)
}

// Delete removes a record from the store and the view. Deleting an id that
// is not stored succeeds.
func (s *Session) Delete(ctx context.Context, id string) error {
	st, err := s.store(ctx, "delete")
	if err != nil {
		return err
	}
	if err := st.Delete(ctx, id); err != nil {
		s.log.Error("delete link failed", zap.String("id", id), zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.presenter.RemoveRecord(id)
	if s.detailID == id {
		s.detailID = ""
	}
	return nil
}

// Select toggles the detail view for id: selecting the record whose detail
// is already open closes it, anything else opens that record's detail.
// It returns the record shown, or nil when the detail was closed.
func (s *Session) Select(ctx context.Context, id string) (*storage.LinkRecord, error) {
	s.mu.Lock()
	if s.detailID == id && id != "" {
		s.detailID = ""
		s.presenter.CloseDetail()
		s.mu.Unlock()
		return nil, nil
	}
	s.mu.Unlock()

	st, err := s.store(ctx, "get")
	if err != nil {
		return nil, err
	}
	rec, err := st.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("selected link no longer stored", zap.String("id", id))
		} else {
			s.log.Error("get link failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detailID != "" {
		s.presenter.CloseDetail()
	}
	s.detailID = id
	s.presenter.ShowDetail(*rec)
	return rec, nil
}

// CloseDetail closes the open detail view, if any.
func (s *Session) CloseDetail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailID = ""
	s.presenter.CloseDetail()
}

// Reset discards paging and search state, closes the detail view and
// empties the list so the next page load renders from the first page.
func (s *Session) Reset() {
	s.pager.Reset()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.query = ""
	s.detailID = ""
	s.presenter.CloseDetail()
	s.presenter.ReplaceList([]storage.LinkRecord{})
}

// State returns a snapshot of the session.
func (s *Session) State() SessionState {
	s.mu.Lock()
	detail, query := s.detailID, s.query
	s.mu.Unlock()
	return SessionState{
		Pager:    s.pager.State(),
		Query:    query,
		DetailID: detail,
	}
}
