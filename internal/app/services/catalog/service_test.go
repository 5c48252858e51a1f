package catalog

import (
	"context"
	"testing"

	"github.com/glosslab/salon-service/internal/app/domain/cart"
	"github.com/glosslab/salon-service/internal/app/storage/memory"
)

func TestCreateDesignValidation(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.CreateDesign(ctx, "  ", "", "", nil); err == nil {
		t.Fatal("expected error for blank name")
	}

	d, err := svc.CreateDesign(ctx, " Cherry Blossom ", "https://cdn.example.com/a.png", "pink petals", []string{"spring"})
	if err != nil {
		t.Fatalf("create design: %v", err)
	}
	if d.Name != "Cherry Blossom" {
		t.Fatalf("name = %q, want trimmed", d.Name)
	}
	if !d.Active {
		t.Fatal("new designs start active")
	}
}

func TestAddServiceValidation(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	d, err := svc.CreateDesign(ctx, "Matte Black", "", "", nil)
	if err != nil {
		t.Fatalf("create design: %v", err)
	}

	if _, err := svc.AddService(ctx, d.ID, "", 100, 30); err == nil {
		t.Fatal("expected error for blank name")
	}
	if _, err := svc.AddService(ctx, d.ID, "gel", -1, 30); err == nil {
		t.Fatal("expected error for negative price")
	}
	if _, err := svc.AddService(ctx, d.ID, "gel", 100, -1); err == nil {
		t.Fatal("expected error for negative duration")
	}
	if _, err := svc.AddService(ctx, "missing-design", "gel", 100, 30); err == nil {
		t.Fatal("expected error for unknown design")
	}

	created, err := svc.AddService(ctx, d.ID, "gel full set", 120000, 45)
	if err != nil {
		t.Fatalf("add service: %v", err)
	}
	listed, err := svc.ListServices(ctx, d.ID)
	if err != nil {
		t.Fatalf("list services: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("unexpected services: %+v", listed)
	}
}

func TestSetActive(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	d, err := svc.CreateDesign(ctx, "Matte Black", "", "", nil)
	if err != nil {
		t.Fatalf("create design: %v", err)
	}
	d, err = svc.SetActive(ctx, d.ID, false)
	if err != nil {
		t.Fatalf("set active: %v", err)
	}
	if d.Active {
		t.Fatal("design should be inactive")
	}
	// Setting the same state again is a no-op, not an error.
	if _, err := svc.SetActive(ctx, d.ID, false); err != nil {
		t.Fatalf("repeated set active: %v", err)
	}
	if _, err := svc.SetActive(ctx, "missing-design", true); err == nil {
		t.Fatal("expected error for unknown design")
	}
}

func TestResolveMetadataSubset(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	d, err := svc.CreateDesign(ctx, "Cherry Blossom", "https://cdn.example.com/a.png", "", nil)
	if err != nil {
		t.Fatalf("create design: %v", err)
	}

	meta, err := svc.ResolveMetadata(ctx, []string{d.ID, "missing-design", d.ID, ""})
	if err != nil {
		t.Fatalf("resolve metadata: %v", err)
	}
	if len(meta) != 1 {
		t.Fatalf("expected only the known design, got %d entries", len(meta))
	}
	got := meta[d.ID]
	want := cart.Metadata{DisplayName: "Cherry Blossom", ThumbnailURL: "https://cdn.example.com/a.png"}
	if got != want {
		t.Fatalf("metadata = %+v, want %+v", got, want)
	}
}

func TestEstimateDuration(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	d, err := svc.CreateDesign(ctx, "Cherry Blossom", "", "", nil)
	if err != nil {
		t.Fatalf("create design: %v", err)
	}
	if _, err := svc.AddService(ctx, d.ID, "gel full set", 120000, 45); err != nil {
		t.Fatalf("add service: %v", err)
	}
	if _, err := svc.AddService(ctx, d.ID, "french tips", 90000, 30); err != nil {
		t.Fatalf("add service: %v", err)
	}

	entries := []cart.Entry{
		{DesignID: d.ID, ServiceName: "gel full set"},
		{DesignID: d.ID, ServiceName: "french tips"},
		{DesignID: d.ID, ServiceName: "not in catalog"},
	}
	total, err := svc.EstimateDuration(ctx, entries)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if total != 75 {
		t.Fatalf("total = %d, want 75", total)
	}
}
