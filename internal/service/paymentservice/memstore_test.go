package paymentservice

import (
	"context"
	"sort"
	"sync"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"github.com/GlebRadaev/goodpang/internal/pg"
)

// memStore is an in-memory order and wallet store. Begin runs whole transactions one at a
// time and restores the pre-transaction state when fn fails, so confirmations through the
// service never overlap here; Postgres READ COMMITTED row locking and re-checks are not
// modelled. Each repository call is atomic on its own (stmt), and beforeRead lets a test
// park concurrent callers of the strategies at the wallet read.
type memStore struct {
	mu     sync.Mutex
	stmt   sync.Mutex
	orders map[int]domain.Order
	users  map[int]domain.Wallet
	ledger map[int][]domain.LedgerEntry

	// interfere simulates a wallet mutation committed by another process right before
	// this process writes. It runs at most interferences times.
	interfere     func(s *memStore, userID int)
	interferences int
	committed     []func(s *memStore)

	beforeRead func()
}

var _ pg.TXManager = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		orders: make(map[int]domain.Order),
		users:  make(map[int]domain.Wallet),
		ledger: make(map[int][]domain.LedgerEntry),
	}
}

func (s *memStore) addUser(userID int, points int64) {
	s.users[userID] = domain.Wallet{UserID: userID, Points: points}
	s.ledger[userID] = []domain.LedgerEntry{{
		UserID: userID, Version: 0, PointsChange: points, PointsSum: points, Reason: domain.SignupReason(userID),
	}}
}

func (s *memStore) addOrder(orderID, userID int, total int64) {
	s.orders[orderID] = domain.Order{ID: orderID, UserID: userID, TotalPrice: total, Status: domain.OrderStatusPending}
}

type memSnapshot struct {
	orders map[int]domain.Order
	users  map[int]domain.Wallet
	ledger map[int][]domain.LedgerEntry
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		orders: make(map[int]domain.Order, len(s.orders)),
		users:  make(map[int]domain.Wallet, len(s.users)),
		ledger: make(map[int][]domain.LedgerEntry, len(s.ledger)),
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.ledger {
		snap.ledger[k] = append([]domain.LedgerEntry(nil), v...)
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.orders, s.users, s.ledger = snap.orders, snap.users, snap.ledger
}

func (s *memStore) Begin(ctx context.Context, fn pg.TransactionalFn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	s.committed = nil
	if err := fn(ctx); err != nil {
		s.restore(snap)
		for _, apply := range s.committed {
			apply(s)
		}
		return err
	}
	return nil
}

// readBarrier releases the callers only once parties of them have arrived.
func readBarrier(parties int) func() {
	var arrived sync.WaitGroup
	arrived.Add(parties)
	return func() {
		arrived.Done()
		arrived.Wait()
	}
}

func (s *memStore) waitRead() {
	if s.beforeRead != nil {
		s.beforeRead()
	}
}

func (s *memStore) maybeInterfere(userID int) {
	if s.interfere == nil || s.interferences == 0 {
		return
	}
	s.interferences--
	apply := func(s *memStore) { s.interfere(s, userID) }
	apply(s)
	s.committed = append(s.committed, apply)
}

// concurrentDebit is an interference that spends points through both the user row and the
// ledger, the way a confirmation running elsewhere would.
func concurrentDebit(amount int64) func(s *memStore, userID int) {
	return func(s *memStore, userID int) {
		head := s.head(userID)
		w := s.users[userID]
		w.Points = head.PointsSum - amount
		w.Version = head.Version + 1
		w.OrderCount++
		s.users[userID] = w
		s.ledger[userID] = append(s.ledger[userID], domain.LedgerEntry{
			UserID: userID, Version: head.Version + 1, PointsChange: -amount, PointsSum: head.PointsSum - amount, Reason: "elsewhere",
		})
	}
}

func (s *memStore) head(userID int) domain.LedgerEntry {
	entries := s.ledger[userID]
	head := entries[0]
	for _, e := range entries[1:] {
		if e.Version > head.Version {
			head = e
		}
	}
	return head
}

// OrderRepo

func (s *memStore) FindByIDAndUser(_ context.Context, orderID, userID int) (*domain.Order, error) {
	s.stmt.Lock()
	defer s.stmt.Unlock()

	order, ok := s.orders[orderID]
	if !ok || order.UserID != userID {
		return nil, nil
	}
	return &order, nil
}

func (s *memStore) CompareAndSetStatus(_ context.Context, t domain.StatusTransition) (int64, error) {
	s.stmt.Lock()
	defer s.stmt.Unlock()

	order, ok := s.orders[t.OrderID]
	if !ok || order.UserID != t.UserID || order.Status != t.From {
		return 0, nil
	}
	order.Status = t.To
	key := t.PaymentKey
	order.PaymentKey = &key
	s.orders[t.OrderID] = order
	return 1, nil
}

// walletservice.UserRepo

func (s *memStore) GetWallet(_ context.Context, userID int) (*domain.Wallet, error) {
	s.waitRead()
	s.stmt.Lock()
	defer s.stmt.Unlock()

	w, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (s *memStore) DebitIfVersion(_ context.Context, userID int, version, amount int64) (int64, error) {
	s.stmt.Lock()
	defer s.stmt.Unlock()

	s.maybeInterfere(userID)
	w, ok := s.users[userID]
	if !ok || w.Version != version {
		return 0, nil
	}
	w.Points -= amount
	w.OrderCount++
	w.Version++
	s.users[userID] = w
	return 1, nil
}

func (s *memStore) RecordOrderPaid(_ context.Context, userID int, points, version int64) error {
	s.stmt.Lock()
	defer s.stmt.Unlock()

	w, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	w.OrderCount++
	w.Points = points
	w.Version = version
	s.users[userID] = w
	return nil
}

// walletservice.LedgerRepo

func (s *memStore) Latest(_ context.Context, userID int) (*domain.LedgerEntry, error) {
	s.waitRead()
	s.stmt.Lock()
	defer s.stmt.Unlock()

	if len(s.ledger[userID]) == 0 {
		return nil, nil
	}
	head := s.head(userID)
	return &head, nil
}

func (s *memStore) Append(_ context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error) {
	s.stmt.Lock()
	defer s.stmt.Unlock()

	if entry.Version > 0 {
		s.maybeInterfere(entry.UserID)
	}
	for _, e := range s.ledger[entry.UserID] {
		if e.Version == entry.Version {
			return nil, domain.ErrDuplicateKey
		}
	}
	stored := *entry
	stored.ID = len(s.ledger[entry.UserID]) + 1
	s.ledger[entry.UserID] = append(s.ledger[entry.UserID], stored)
	return &stored, nil
}

func (s *memStore) History(_ context.Context, userID int) ([]domain.LedgerEntry, error) {
	s.stmt.Lock()
	defer s.stmt.Unlock()

	entries := append([]domain.LedgerEntry(nil), s.ledger[userID]...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Version > entries[j].Version })
	return entries, nil
}
