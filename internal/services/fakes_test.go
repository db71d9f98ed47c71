package services

import (
	"context"
	"sync"

	"github.com/trove/backend/internal/models"
)

// In-memory collaborators for engine tests. They mirror the Mongo services'
// error contracts so the engine cannot tell them apart.

type fakeReportStore struct {
	mu        sync.Mutex
	reports   map[string]*models.Report
	statusErr error
}

func newFakeReportStore(reports ...*models.Report) *fakeReportStore {
	s := &fakeReportStore{reports: make(map[string]*models.Report)}
	for _, r := range reports {
		cp := *r
		s.reports[r.ID] = &cp
	}
	return s
}

func (s *fakeReportStore) GetByID(_ context.Context, id string) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeReportStore) Create(_ context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *report
	s.reports[report.ID] = &cp
	return nil
}

func (s *fakeReportStore) ListPending(_ context.Context, limit int) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Report, 0)
	for _, r := range s.reports {
		if r.Status == models.ReportPending {
			out = append(out, *r)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeReportStore) ListPendingForUser(_ context.Context, userID string) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Report, 0)
	for _, r := range s.reports {
		if r.Status == models.ReportPending && r.ReportedUserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeReportStore) SetStatusIfPending(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusErr != nil {
		return s.statusErr
	}
	r, ok := s.reports[id]
	if !ok {
		return ErrReportNotFound
	}
	if r.Status != models.ReportPending {
		return ErrAlreadyProcessed
	}
	r.Status = status
	return nil
}

func (s *fakeReportStore) status(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reports[id]; ok {
		return r.Status
	}
	return ""
}

type fakeStrikeLedger struct {
	mu        sync.Mutex
	entries   []models.Strike
	appendErr error
	totalErr  error
}

func (l *fakeStrikeLedger) TotalForUser(_ context.Context, userID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.totalErr != nil {
		return 0, l.totalErr
	}
	total := 0
	for _, e := range l.entries {
		if e.UserID == userID {
			total += e.Weight
		}
	}
	return total, nil
}

func (l *fakeStrikeLedger) TotalsForUsers(ctx context.Context, userIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(userIDs))
	for _, id := range userIDs {
		total, err := l.TotalForUser(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = total
	}
	return out, nil
}

func (l *fakeStrikeLedger) ListForUser(_ context.Context, userID string, limit int) ([]models.Strike, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Strike, 0)
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].UserID == userID {
			out = append(out, l.entries[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (l *fakeStrikeLedger) Append(_ context.Context, strike *models.Strike) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.appendErr != nil {
		return l.appendErr
	}
	l.entries = append(l.entries, *strike)
	return nil
}

func (l *fakeStrikeLedger) count(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.UserID == userID {
			n++
		}
	}
	return n
}

type fakeAccountStore struct {
	mu       sync.Mutex
	state    map[string]*models.AccountRestriction
	failSets int // remaining SetRestriction calls to fail
	setErr   error
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{state: make(map[string]*models.AccountRestriction)}
}

func (s *fakeAccountStore) GetRestriction(_ context.Context, userID string) (*models.AccountRestriction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.state[userID]; ok {
		cp := *st
		return &cp, nil
	}
	return &models.AccountRestriction{UserID: userID}, nil
}

func (s *fakeAccountStore) SetRestriction(_ context.Context, state *models.AccountRestriction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSets > 0 {
		s.failSets--
		return s.setErr
	}
	cp := *state
	s.state[state.UserID] = &cp
	return nil
}

type fakeListingStore struct {
	mu       sync.Mutex
	listings map[string]*models.Listing
	takenErr error
}

func newFakeListingStore(listings ...*models.Listing) *fakeListingStore {
	s := &fakeListingStore{listings: make(map[string]*models.Listing)}
	for _, l := range listings {
		cp := *l
		s.listings[l.ID] = &cp
	}
	return s
}

func (s *fakeListingStore) GetByID(_ context.Context, id string) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *fakeListingStore) TakeDown(_ context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.takenErr != nil {
		return nil, s.takenErr
	}
	l, ok := s.listings[id]
	if !ok {
		return nil, nil
	}
	delete(s.listings, id)
	urls := make([]string, 0, len(l.ImageURLs)+1)
	if l.CoverPhoto != "" {
		urls = append(urls, l.CoverPhoto)
	}
	urls = append(urls, l.ImageURLs...)
	return urls, nil
}

type sentNotification struct {
	UserID string
	Type   string
	Title  string
	Body   string
}

type fakeNotificationSink struct {
	mu      sync.Mutex
	sent    []sentNotification
	sendErr error
}

func (s *fakeNotificationSink) Send(_ context.Context, userID, typ, title, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, sentNotification{UserID: userID, Type: typ, Title: title, Body: body})
	return nil
}

func (s *fakeNotificationSink) byType(typ string) []sentNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sentNotification, 0)
	for _, n := range s.sent {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

type fakeAuthz struct {
	admins map[string]bool
}

func (a *fakeAuthz) IsAdmin(_ context.Context, userID string) (bool, error) {
	return a.admins[userID], nil
}

type fakeRepairStore struct {
	mu      sync.Mutex
	repairs []models.Repair
}

func (s *fakeRepairStore) Queue(_ context.Context, repair *models.Repair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repairs = append(s.repairs, *repair)
	return nil
}

func (s *fakeRepairStore) ListOutstanding(_ context.Context, limit int) ([]models.Repair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Repair, 0)
	for _, r := range s.repairs {
		if !r.Repaired {
			out = append(out, r)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeRepairStore) MarkRepaired(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.repairs {
		if s.repairs[i].ID == id {
			s.repairs[i].Repaired = true
			return nil
		}
	}
	return nil
}

func (s *fakeRepairStore) RecordAttempt(_ context.Context, id, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.repairs {
		if s.repairs[i].ID == id {
			s.repairs[i].Attempts++
			s.repairs[i].LastError = lastError
			return nil
		}
	}
	return nil
}

type fakeCleaner struct {
	mu      sync.Mutex
	deleted []string
}

func (c *fakeCleaner) DeleteImages(_ context.Context, urls []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, urls...)
}
