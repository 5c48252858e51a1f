package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glosslab/salon-service/internal/app/domain/account"
	"github.com/glosslab/salon-service/internal/app/domain/booking"
	cartdomain "github.com/glosslab/salon-service/internal/app/domain/cart"
	"github.com/glosslab/salon-service/internal/app/services/catalog"
	"github.com/glosslab/salon-service/internal/app/storage/memory"
	"github.com/glosslab/salon-service/pkg/testutil"
)

type stubBooker struct {
	requests []booking.Request
}

func (b *stubBooker) Schedule(_ context.Context, req booking.Request) (booking.Appointment, error) {
	b.requests = append(b.requests, req)
	return booking.Appointment{
		ID:       "appt-1",
		Total:    req.Total,
		EntryIDs: req.EntryIDs,
	}, nil
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	mem := memory.New()
	acct, err := mem.CreateAccount(context.Background(), account.Account{Name: "Dana"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	resolver := testutil.NewMockResolver(map[string]cartdomain.Metadata{
		"design-a": {DisplayName: "Cherry Blossom", ThumbnailURL: "https://cdn.example.com/a.png"},
	})
	return New(mem, mem, resolver, nil), acct.ID
}

func addEntry(t *testing.T, svc *Service, accountID, designID string, pos int, left bool, price int64) cartdomain.Entry {
	t.Helper()
	entry, err := svc.AddEntry(context.Background(), accountID, designID, "gel", price, pos, left)
	if err != nil {
		t.Fatalf("add entry: %v", err)
	}
	return entry
}

func TestAddEntryValidation(t *testing.T) {
	svc, accountID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddEntry(ctx, accountID, "", "gel", 100, 0, true); err == nil {
		t.Fatal("expected error for missing design")
	}
	if _, err := svc.AddEntry(ctx, accountID, "design-a", "gel", 100, 5, true); err == nil {
		t.Fatal("expected error for finger position out of range")
	}
	if _, err := svc.AddEntry(ctx, accountID, "design-a", "gel", -1, 0, true); err == nil {
		t.Fatal("expected error for negative price")
	}
	if _, err := svc.AddEntry(ctx, "missing-account", "design-a", "gel", 100, 0, true); err == nil {
		t.Fatal("expected error for unknown account")
	}
}

func TestSnapshotGroupsAndPending(t *testing.T) {
	svc, accountID := newTestService(t)
	ctx := context.Background()

	addEntry(t, svc, accountID, "design-a", 0, true, 100000)
	addEntry(t, svc, accountID, "design-b", 1, true, 90000)
	addEntry(t, svc, accountID, "design-a", 2, true, 80000)

	view, err := svc.Snapshot(ctx, accountID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(view.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(view.Groups))
	}
	if view.Groups[0].DesignID != "design-a" || len(view.Groups[0].Entries) != 2 {
		t.Fatalf("unexpected first group: %+v", view.Groups[0])
	}
	if view.Groups[0].Pending {
		t.Fatal("design-a has metadata, group should not be pending")
	}
	if !view.Groups[1].Pending {
		t.Fatal("design-b has no metadata, group should be pending")
	}
	if view.CartTotal != 270000 {
		t.Fatalf("cart total = %d, want 270000", view.CartTotal)
	}
	if view.SelectionTotal != 0 {
		t.Fatalf("selection total = %d, want 0", view.SelectionTotal)
	}
}

func TestSnapshotResolverFailure(t *testing.T) {
	mem := memory.New()
	ctx := context.Background()
	acct, err := mem.CreateAccount(ctx, account.Account{Name: "Dana"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	resolver := catalog.ResolverFunc(func(context.Context, []string) (map[string]cartdomain.Metadata, error) {
		return nil, errors.New("catalog down")
	})
	svc := New(mem, mem, resolver, nil)

	entry := addEntry(t, svc, acct.ID, "design-a", 0, true, 100000)
	if _, err := svc.Toggle(ctx, acct.ID, entry.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	// Resolution failures degrade to pending groups, never to an error, and
	// leave the selection alone.
	view, err := svc.Snapshot(ctx, acct.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(view.Groups) != 1 || !view.Groups[0].Pending {
		t.Fatalf("expected one pending group: %+v", view.Groups)
	}
	if !view.Selection.Contains(entry.ID) {
		t.Fatalf("selection lost: %v", view.Selection.IDs())
	}
}

func TestToggleSlotConflict(t *testing.T) {
	svc, accountID := newTestService(t)
	ctx := context.Background()

	a := addEntry(t, svc, accountID, "design-a", 0, true, 100000)
	b := addEntry(t, svc, accountID, "design-b", 0, true, 90000)
	c := addEntry(t, svc, accountID, "design-b", 0, false, 80000)

	sel, err := svc.Toggle(ctx, accountID, a.ID)
	if err != nil {
		t.Fatalf("toggle a: %v", err)
	}
	if len(sel) != 1 || sel[0].ID != a.ID {
		t.Fatalf("selection after a = %v", sel.IDs())
	}

	// b shares a's slot; the toggle must leave the selection unchanged.
	sel, err = svc.Toggle(ctx, accountID, b.ID)
	if err != nil {
		t.Fatalf("toggle b: %v", err)
	}
	if len(sel) != 1 || sel[0].ID != a.ID {
		t.Fatalf("conflicting toggle changed selection: %v", sel.IDs())
	}

	// c is the same finger on the other hand and is free.
	sel, err = svc.Toggle(ctx, accountID, c.ID)
	if err != nil {
		t.Fatalf("toggle c: %v", err)
	}
	if len(sel) != 2 {
		t.Fatalf("selection after c = %v", sel.IDs())
	}

	// Deselecting a releases the slot for b.
	if _, err := svc.Toggle(ctx, accountID, a.ID); err != nil {
		t.Fatalf("deselect a: %v", err)
	}
	sel, err = svc.Toggle(ctx, accountID, b.ID)
	if err != nil {
		t.Fatalf("toggle b after release: %v", err)
	}
	if !sel.Contains(b.ID) {
		t.Fatalf("b should be selectable after a released the slot: %v", sel.IDs())
	}
}

func TestToggleStaleEntryIgnored(t *testing.T) {
	svc, accountID := newTestService(t)

	sel, err := svc.Toggle(context.Background(), accountID, "ghost")
	if err != nil {
		t.Fatalf("toggle ghost: %v", err)
	}
	if len(sel) != 0 {
		t.Fatalf("ghost toggle changed selection: %v", sel.IDs())
	}
}

func TestRemoveEntryPurgesSelection(t *testing.T) {
	svc, accountID := newTestService(t)
	ctx := context.Background()

	a := addEntry(t, svc, accountID, "design-a", 0, true, 100000)
	b := addEntry(t, svc, accountID, "design-b", 1, true, 90000)

	if _, err := svc.Toggle(ctx, accountID, a.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := svc.Toggle(ctx, accountID, b.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if err := svc.RemoveEntry(ctx, accountID, a.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	// Second removal of the same entry is a no-op.
	if err := svc.RemoveEntry(ctx, accountID, a.ID); err != nil {
		t.Fatalf("repeat remove: %v", err)
	}

	view, err := svc.Snapshot(ctx, accountID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(view.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(view.Entries))
	}
	if len(view.Selection) != 1 || view.Selection[0].ID != b.ID {
		t.Fatalf("selection should keep only b: %v", view.Selection.IDs())
	}
	if view.SelectionTotal != 90000 {
		t.Fatalf("selection total = %d, want 90000", view.SelectionTotal)
	}
}

func TestCheckout(t *testing.T) {
	svc, accountID := newTestService(t)
	ctx := context.Background()

	a := addEntry(t, svc, accountID, "design-a", 0, true, 100000)
	addEntry(t, svc, accountID, "design-b", 1, true, 90000)

	booker := &stubBooker{}
	svc.AttachBooker(booker)

	if _, err := svc.Checkout(ctx, accountID, "store-1", "artist-1", time.Now().Add(time.Hour), ""); err == nil {
		t.Fatal("expected error for empty selection")
	}

	if _, err := svc.Toggle(ctx, accountID, a.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	appt, err := svc.Checkout(ctx, accountID, "store-1", "artist-1", time.Now().Add(time.Hour), "short nails please")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if appt.Total != 100000 {
		t.Fatalf("appointment total = %d, want 100000", appt.Total)
	}
	if len(booker.requests) != 1 {
		t.Fatalf("booker calls = %d, want 1", len(booker.requests))
	}
	req := booker.requests[0]
	if req.DurationMinutes != defaultEntryMinutes {
		t.Fatalf("duration = %d, want %d", req.DurationMinutes, defaultEntryMinutes)
	}
	if len(req.EntryIDs) != 1 || req.EntryIDs[0] != a.ID {
		t.Fatalf("request entries = %v", req.EntryIDs)
	}

	// Cart and selection are emptied by a successful checkout.
	view, err := svc.Snapshot(ctx, accountID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(view.Entries) != 0 || len(view.Selection) != 0 {
		t.Fatalf("cart not cleared: entries=%d selection=%d", len(view.Entries), len(view.Selection))
	}
}
