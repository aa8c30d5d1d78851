package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/propex/propex/internal/domain"
)

func TestOrders_CreateAndGet(t *testing.T) {
	s := NewOrders()
	o := &domain.Order{OrderID: "o1", UserID: 1, PropertyID: 10, Status: domain.OrderStatusOpen}
	s.Create(o)

	got, err := s.Get("o1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != o {
		t.Error("Get should return the stored order")
	}
}

func TestOrders_Get_Unknown(t *testing.T) {
	s := NewOrders()
	if _, err := s.Get("missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrders_ListByUser_NewestFirst(t *testing.T) {
	s := NewOrders()
	for i := 0; i < 3; i++ {
		s.Create(&domain.Order{OrderID: fmt.Sprintf("o%d", i), UserID: 1, Status: domain.OrderStatusOpen})
	}

	orders, total := s.ListByUser(1, nil, 1, 10)
	if total != 3 || len(orders) != 3 {
		t.Fatalf("got %d orders (total %d), want 3", len(orders), total)
	}
	if orders[0].OrderID != "o2" || orders[2].OrderID != "o0" {
		t.Errorf("orders not newest-first: %s .. %s", orders[0].OrderID, orders[2].OrderID)
	}
}

func TestOrders_ListByUser_StatusFilterAndPagination(t *testing.T) {
	s := NewOrders()
	for i := 0; i < 5; i++ {
		status := domain.OrderStatusOpen
		if i%2 == 0 {
			status = domain.OrderStatusFilled
		}
		s.Create(&domain.Order{OrderID: fmt.Sprintf("o%d", i), UserID: 1, Status: status})
	}

	filled := domain.OrderStatusFilled
	orders, total := s.ListByUser(1, &filled, 1, 2)
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(orders) != 2 {
		t.Errorf("page size = %d, want 2", len(orders))
	}

	orders, _ = s.ListByUser(1, &filled, 2, 2)
	if len(orders) != 1 {
		t.Errorf("second page size = %d, want 1", len(orders))
	}

	orders, total = s.ListByUser(1, &filled, 3, 2)
	if len(orders) != 0 || total != 3 {
		t.Errorf("past-the-end page: got %d orders (total %d)", len(orders), total)
	}
}

func TestOrders_ListByUser_UnknownUser(t *testing.T) {
	s := NewOrders()
	orders, total := s.ListByUser(42, nil, 1, 10)
	if len(orders) != 0 || total != 0 {
		t.Errorf("expected empty list for unknown user, got %d (total %d)", len(orders), total)
	}
}
