package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"

	"github.com/glosslab/salon-service/internal/app/domain/account"
	"github.com/glosslab/salon-service/internal/app/domain/booking"
	"github.com/glosslab/salon-service/internal/app/domain/cart"
	"github.com/glosslab/salon-service/internal/app/domain/design"
)

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	store := New(db)
	ctx := context.Background()
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	acct, err := store.CreateAccount(ctx, account.Account{Name: "alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	d, err := store.CreateDesign(ctx, design.Design{Name: "Cherry Blossom", Tags: []string{"floral", "pink"}, Active: true})
	if err != nil {
		t.Fatalf("create design: %v", err)
	}
	svc, err := store.CreateDesignService(ctx, design.Service{DesignID: d.ID, Name: "gel", Price: 100000})
	if err != nil {
		t.Fatalf("create design service: %v", err)
	}

	entry, err := store.AddCartEntry(ctx, cart.Entry{
		AccountID:    acct.ID,
		DesignID:     d.ID,
		ServiceName:  svc.Name,
		ServicePrice: svc.Price,
	})
	if err != nil {
		t.Fatalf("add cart entry: %v", err)
	}

	entries, err := store.ListCartEntries(ctx, acct.ID)
	if err != nil {
		t.Fatalf("list cart entries: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != entry.ID {
		t.Fatalf("unexpected cart entries: %#v", entries)
	}

	st, err := store.CreateStore(ctx, booking.Store{Name: "Downtown"})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	artist, err := store.CreateArtist(ctx, booking.Artist{StoreID: st.ID, Name: "Mai", Active: true})
	if err != nil {
		t.Fatalf("create artist: %v", err)
	}

	appt, err := store.CreateAppointment(ctx, booking.Appointment{
		AccountID: acct.ID,
		StoreID:   st.ID,
		ArtistID:  artist.ID,
		StartsAt:  time.Now().UTC().Add(48 * time.Hour),
		Status:    booking.StatusScheduled,
		EntryIDs:  []string{entry.ID},
		Total:     svc.Price,
	})
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	got, err := store.GetAppointment(ctx, appt.ID)
	if err != nil {
		t.Fatalf("get appointment: %v", err)
	}
	if len(got.EntryIDs) != 1 || got.EntryIDs[0] != entry.ID {
		t.Fatalf("entry ids not persisted: %#v", got.EntryIDs)
	}

	if err := store.DeleteCartEntry(ctx, acct.ID, entry.ID); err != nil {
		t.Fatalf("delete cart entry: %v", err)
	}
	if err := store.DeleteCartEntry(ctx, acct.ID, entry.ID); err != sql.ErrNoRows {
		t.Fatalf("expected ErrNoRows for second delete, got %v", err)
	}
}
