package offline_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/foodies-pos/api/internal/database"
	"github.com/foodies-pos/api/internal/enum"
	"github.com/foodies-pos/api/internal/offline"
)

type mockSaver struct {
	saved   []database.Order
	failAll bool
	failIDs map[uuid.UUID]bool
}

func (m *mockSaver) Save(_ context.Context, o database.Order) (*database.Order, error) {
	if m.failAll || m.failIDs[o.ID] {
		return nil, errors.New("connection refused")
	}
	m.saved = append(m.saved, o)
	return &o, nil
}

func openQueue(t *testing.T) *offline.Queue {
	t.Helper()
	q, err := offline.Open(filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { q.Close() })
	return q
}

func testOrder() database.Order {
	return database.Order{
		ID:     uuid.New(),
		Status: enum.OrderStatusPending,
		Total:  decimal.NewFromFloat(12.50),
		Items:  []database.CartItem{{Name: "Burger", Category: "Mains", Price: decimal.NewFromFloat(12.50), Quantity: 1}},
	}
}

func TestSaveOrQueueDirect(t *testing.T) {
	q := openQueue(t)
	saver := &mockSaver{}
	svc := offline.NewService(q, saver, zerolog.Nop())

	_, queued, err := svc.SaveOrQueue(context.Background(), testOrder())
	if err != nil {
		t.Fatalf("SaveOrQueue: %v", err)
	}
	if queued {
		t.Error("order queued although the store is reachable")
	}
	if n, _ := svc.Pending(context.Background()); n != 0 {
		t.Errorf("pending = %d, want 0", n)
	}
}

func TestSaveOrQueueFallsBack(t *testing.T) {
	q := openQueue(t)
	saver := &mockSaver{failAll: true}
	svc := offline.NewService(q, saver, zerolog.Nop())

	_, queued, err := svc.SaveOrQueue(context.Background(), testOrder())
	if err != nil {
		t.Fatalf("SaveOrQueue: %v", err)
	}
	if !queued {
		t.Error("order not queued although the store is down")
	}
	if n, _ := svc.Pending(context.Background()); n != 1 {
		t.Errorf("pending = %d, want 1", n)
	}
}

func TestSyncReplaysInOrder(t *testing.T) {
	q := openQueue(t)
	saver := &mockSaver{failAll: true}
	svc := offline.NewService(q, saver, zerolog.Nop())

	first := testOrder()
	second := testOrder()
	for _, o := range []database.Order{first, second} {
		if _, _, err := svc.SaveOrQueue(context.Background(), o); err != nil {
			t.Fatalf("SaveOrQueue: %v", err)
		}
	}

	saver.failAll = false
	res, err := svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.Replayed != 2 || res.Remaining != 0 {
		t.Errorf("result = %+v, want 2 replayed, 0 remaining", res)
	}
	if len(saver.saved) != 2 || saver.saved[0].ID != first.ID || saver.saved[1].ID != second.ID {
		t.Errorf("replay order wrong: %v", saver.saved)
	}
}

func TestSyncPartialFailureRetainsTail(t *testing.T) {
	q := openQueue(t)
	saver := &mockSaver{failAll: true}
	svc := offline.NewService(q, saver, zerolog.Nop())

	first := testOrder()
	second := testOrder()
	third := testOrder()
	for _, o := range []database.Order{first, second, third} {
		if _, _, err := svc.SaveOrQueue(context.Background(), o); err != nil {
			t.Fatalf("SaveOrQueue: %v", err)
		}
	}

	saver.failAll = false
	saver.failIDs = map[uuid.UUID]bool{second.ID: true}
	res, err := svc.Sync(context.Background())
	if err == nil {
		t.Fatal("Sync: want error on failed replay")
	}
	if res.Replayed != 1 || res.Remaining != 2 {
		t.Errorf("result = %+v, want 1 replayed, 2 remaining", res)
	}

	// The failed order and everything behind it replay on retry.
	saver.failIDs = nil
	res, err = svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("retry Sync: %v", err)
	}
	if res.Replayed != 2 || res.Remaining != 0 {
		t.Errorf("retry result = %+v, want 2 replayed, 0 remaining", res)
	}
}

func TestQueueSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queue.db")

	q, err := offline.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := q.Enqueue(context.Background(), testOrder()); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	q.Close()

	q, err = offline.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer q.Close()
	if n, _ := q.Pending(context.Background()); n != 1 {
		t.Errorf("pending after reopen = %d, want 1", n)
	}
}
