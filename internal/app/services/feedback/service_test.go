package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/glosslab/salon-service/internal/app/domain/account"
	"github.com/glosslab/salon-service/internal/app/domain/booking"
	"github.com/glosslab/salon-service/internal/app/storage/memory"
)

func newFixture(t *testing.T) (*Service, string, booking.Appointment) {
	t.Helper()
	mem := memory.New()
	ctx := context.Background()

	acct, err := mem.CreateAccount(ctx, account.Account{Name: "Dana"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	appt, err := mem.CreateAppointment(ctx, booking.Appointment{
		AccountID: acct.ID,
		StartsAt:  time.Now().Add(time.Hour),
		Status:    booking.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return New(mem, mem, mem, nil), acct.ID, appt
}

func TestSubmitValidation(t *testing.T) {
	svc, accountID, appt := newFixture(t)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, "", appt.ID, 5, "great"); err == nil {
		t.Fatal("expected error for missing account")
	}
	if _, err := svc.Submit(ctx, accountID, appt.ID, 0, "great"); err == nil {
		t.Fatal("expected error for rating below range")
	}
	if _, err := svc.Submit(ctx, accountID, appt.ID, 6, "great"); err == nil {
		t.Fatal("expected error for rating above range")
	}
	if _, err := svc.Submit(ctx, "missing-account", appt.ID, 5, "great"); err == nil {
		t.Fatal("expected error for unknown account")
	}
	if _, err := svc.Submit(ctx, accountID, "missing-appointment", 5, "great"); err == nil {
		t.Fatal("expected error for unknown appointment")
	}
}

func TestSubmitRejectsForeignAppointment(t *testing.T) {
	mem := memory.New()
	ctx := context.Background()

	owner, err := mem.CreateAccount(ctx, account.Account{Name: "Dana"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	other, err := mem.CreateAccount(ctx, account.Account{Name: "Yuki"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	appt, err := mem.CreateAppointment(ctx, booking.Appointment{
		AccountID: owner.ID,
		StartsAt:  time.Now().Add(time.Hour),
		Status:    booking.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	svc := New(mem, mem, mem, nil)
	if _, err := svc.Submit(ctx, other.ID, appt.ID, 5, "great"); err == nil {
		t.Fatal("expected error for another account's appointment")
	}
}

func TestSubmitAndList(t *testing.T) {
	svc, accountID, appt := newFixture(t)
	ctx := context.Background()

	fb, err := svc.Submit(ctx, accountID, appt.ID, 5, "  loved the result  ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if fb.Comment != "loved the result" {
		t.Fatalf("comment = %q, want trimmed", fb.Comment)
	}

	// No appointment reference is fine.
	if _, err := svc.Submit(ctx, accountID, "", 3, "walk-in visit"); err != nil {
		t.Fatalf("submit without appointment: %v", err)
	}

	listed, err := svc.List(ctx, accountID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(listed))
	}
	if listed[0].Rating != 5 || listed[0].AppointmentID != appt.ID {
		t.Fatalf("unexpected first entry: %+v", listed[0])
	}
}
