package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"healthops-dashboard/internal/domain"
	"healthops-dashboard/internal/events"
	"healthops-dashboard/internal/repository"

	goredis "github.com/redis/go-redis/v9"
)

var (
	admin     = domain.Actor{UID: "admin-1", Role: domain.RoleAdmin, Name: "Asha"}
	navigator = domain.Actor{UID: "nav-1", Role: domain.RoleNavigator, Name: "Ravi"}
	otherNav  = domain.Actor{UID: "nav-2", Role: domain.RoleNavigator, Name: "Meena"}
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type fakeEntryStore struct {
	mu      sync.Mutex
	entries map[string]domain.ServiceEntry
	seq     int
	updates int

	// beforeModify runs before Modify takes the lock.
	beforeModify func()
}

func newFakeEntryStore(entries ...domain.ServiceEntry) *fakeEntryStore {
	s := &fakeEntryStore{entries: map[string]domain.ServiceEntry{}}
	for _, e := range entries {
		s.entries[e.ID] = e
	}
	return s
}

func (s *fakeEntryStore) List(_ context.Context, f repository.EntriesFilter) ([]domain.ServiceEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ServiceEntry
	for _, e := range s.entries {
		if f.NavigatorID != nil && e.NavigatorID != *f.NavigatorID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeEntryStore) Get(_ context.Context, id string) (domain.ServiceEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return domain.ServiceEntry{}, domain.ErrNotFound
	}
	return e, nil
}

func (s *fakeEntryStore) Create(_ context.Context, e *domain.ServiceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	e.ID = fmt.Sprintf("entry-%d", s.seq)
	s.entries[e.ID] = *e
	return nil
}

func (s *fakeEntryStore) Modify(_ context.Context, id string, fn func(e *domain.ServiceEntry) error) (domain.ServiceEntry, error) {
	if s.beforeModify != nil {
		s.beforeModify()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return domain.ServiceEntry{}, domain.ErrNotFound
	}
	if err := fn(&e); err != nil {
		return domain.ServiceEntry{}, err
	}
	s.updates++
	s.entries[id] = e
	return e, nil
}

func (s *fakeEntryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

type fakeCatalog struct {
	items []domain.CatalogItem
	seq   int
}

func newFakeCatalog(names map[string]string) *fakeCatalog {
	c := &fakeCatalog{}
	for id, name := range names {
		c.items = append(c.items, domain.CatalogItem{ID: id, Name: name, Active: true})
	}
	sort.Slice(c.items, func(i, j int) bool { return c.items[i].Name < c.items[j].Name })
	return c
}

func (c *fakeCatalog) ListActive(context.Context) ([]domain.CatalogItem, error) {
	var out []domain.CatalogItem
	for _, it := range c.items {
		if it.Active {
			out = append(out, it)
		}
	}
	return out, nil
}

func (c *fakeCatalog) Names(context.Context) (map[string]string, error) {
	return domain.CatalogNames(c.items), nil
}

func (c *fakeCatalog) Create(_ context.Context, name string) (domain.CatalogItem, error) {
	c.seq++
	it := domain.CatalogItem{ID: fmt.Sprintf("cat-%d", c.seq), Name: name, Active: true}
	c.items = append(c.items, it)
	return it, nil
}

func (c *fakeCatalog) Deactivate(_ context.Context, id string) error {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Active = false
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeCounters struct {
	values map[string]int64
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{values: map[string]int64{}}
}

func (c *fakeCounters) Next(_ context.Context, name string) (int64, error) {
	c.values[name]++
	return c.values[name], nil
}

type fakeExpenseStore struct {
	items map[string]domain.OfficeExpense
	seq   int
}

func newFakeExpenseStore(items ...domain.OfficeExpense) *fakeExpenseStore {
	s := &fakeExpenseStore{items: map[string]domain.OfficeExpense{}}
	for _, e := range items {
		s.items[e.ID] = e
	}
	return s
}

func (s *fakeExpenseStore) List(context.Context) ([]domain.OfficeExpense, error) {
	var out []domain.OfficeExpense
	for _, e := range s.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeExpenseStore) Get(_ context.Context, id string) (domain.OfficeExpense, error) {
	e, ok := s.items[id]
	if !ok {
		return domain.OfficeExpense{}, domain.ErrNotFound
	}
	return e, nil
}

func (s *fakeExpenseStore) Create(_ context.Context, e *domain.OfficeExpense) error {
	s.seq++
	e.ID = fmt.Sprintf("exp-%d", s.seq)
	s.items[e.ID] = *e
	return nil
}

func (s *fakeExpenseStore) Update(_ context.Context, e domain.OfficeExpense) error {
	if _, ok := s.items[e.ID]; !ok {
		return domain.ErrNotFound
	}
	s.items[e.ID] = e
	return nil
}

func (s *fakeExpenseStore) Delete(_ context.Context, id string) error {
	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

type fakeInvoiceStore struct {
	items map[string]domain.Invoice
	seq   int
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{items: map[string]domain.Invoice{}}
}

func (s *fakeInvoiceStore) List(context.Context) ([]domain.Invoice, error) {
	var out []domain.Invoice
	for _, inv := range s.items {
		out = append(out, inv)
	}
	return out, nil
}

func (s *fakeInvoiceStore) Get(_ context.Context, id string) (domain.Invoice, error) {
	inv, ok := s.items[id]
	if !ok {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return inv, nil
}

func (s *fakeInvoiceStore) Create(_ context.Context, inv *domain.Invoice) error {
	s.seq++
	inv.ID = fmt.Sprintf("inv-%d", s.seq)
	s.items[inv.ID] = *inv
	return nil
}

func (s *fakeInvoiceStore) Update(_ context.Context, inv domain.Invoice) error {
	if _, ok := s.items[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	s.items[inv.ID] = inv
	return nil
}

func (s *fakeInvoiceStore) Delete(_ context.Context, id string) error {
	delete(s.items, id)
	return nil
}

type fakePublisher struct {
	events []events.Event
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, ev events.Event) error {
	p.events = append(p.events, ev)
	return p.err
}

// fakeStatusStore mimics the redis commands used for export status. Missing keys return
// goredis.Nil like the real client.
type fakeStatusStore struct {
	mu   sync.Mutex
	kv   map[string]string
	sets map[string]map[string]struct{}
}

func newFakeStatusStore() *fakeStatusStore {
	return &fakeStatusStore{kv: map[string]string{}, sets: map[string]map[string]struct{}{}}
}

func (s *fakeStatusStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = fmt.Sprint(value)
	return nil
}

func (s *fakeStatusStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.kv[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (s *fakeStatusStore) SAdd(_ context.Context, key string, members ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[key]
	if !ok {
		set = map[string]struct{}{}
		s.sets[key] = set
	}
	for _, m := range members {
		set[fmt.Sprint(m)] = struct{}{}
	}
	return nil
}

func (s *fakeStatusStore) SMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for m := range s.sets[key] {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

func (s *fakeStatusStore) SRem(_ context.Context, key string, members ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range members {
		delete(s.sets[key], fmt.Sprint(m))
	}
	return nil
}

func (s *fakeStatusStore) expire(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.kv, key)
}

type fakeSink struct {
	name string
	data []byte
	err  error
}

func (s *fakeSink) Store(_ context.Context, fileName string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.name = fileName
	s.data = data
	return "http://files.local/" + fileName, nil
}

type progressCall struct {
	progress float64
	stage    string
}

type fakeNotifier struct {
	progress []progressCall
	complete []string
	failed   []string
}

func (n *fakeNotifier) NotifyExportProgress(_ context.Context, _, _ string, progress float64, stage string) error {
	n.progress = append(n.progress, progressCall{progress: progress, stage: stage})
	return nil
}

func (n *fakeNotifier) NotifyExportComplete(_ context.Context, _, _, url, _ string) error {
	n.complete = append(n.complete, url)
	return nil
}

func (n *fakeNotifier) NotifyExportFailed(_ context.Context, _, _, errMsg string) error {
	n.failed = append(n.failed, errMsg)
	return nil
}

var errBoom = errors.New("boom")
