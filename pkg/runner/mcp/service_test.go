package mcp

import (
	"context"
	"errors"
	"testing"

	"tableflip.dev/stow/pkg/engine"
	"tableflip.dev/stow/pkg/remote/remotetest"
)

func newService(t *testing.T) (*Service, *remotetest.Service) {
	t.Helper()
	pinned := remotetest.Item("P")
	pinned.Pinned = true
	pinned.Name = "Shelf"
	fake := remotetest.New().
		Put(
			remotetest.Item("A", "B", "C"),
			remotetest.Item("B", "A"),
			remotetest.Item("C"),
			remotetest.Item("Z"),
			pinned,
		).
		SetRoots("A", "P")
	eng := engine.New(engine.Options{Service: fake, PinnedQuery: remotetest.PinnedQuery})
	t.Cleanup(eng.Close)
	return NewService(eng, fake), fake
}

func TestServiceListRootsLoadsOnce(t *testing.T) {
	ctx := context.Background()
	svc, fake := newService(t)

	roots, err := svc.ListRoots(ctx)
	if err != nil {
		t.Fatalf("ListRoots failed: %v", err)
	}
	if len(roots) != 2 || roots[0].ID != "A" || roots[1].ID != "P" {
		t.Fatalf("unexpected roots: %+v", roots)
	}
	if !roots[0].Expandable || roots[0].Loaded {
		t.Fatalf("expected A expandable and unloaded, got %+v", roots[0])
	}
	if _, err := svc.ListRoots(ctx); err != nil {
		t.Fatalf("second ListRoots failed: %v", err)
	}
	if got := fake.Calls(remotetest.OpRoots); got != 1 {
		t.Fatalf("expected one roots fetch, got %d", got)
	}

	svc.Reset()
	if _, err := svc.ListRoots(ctx); err != nil {
		t.Fatalf("ListRoots after reset failed: %v", err)
	}
	if got := fake.Calls(remotetest.OpRoots); got != 2 {
		t.Fatalf("expected reset to refetch roots, got %d fetches", got)
	}
}

func TestServiceExpandExcludesAncestors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	a, err := svc.ExpandItem(ctx, "A")
	if err != nil {
		t.Fatalf("ExpandItem(A) failed: %v", err)
	}
	if len(a.Children) != 2 || a.Children[0].ID != "B" || a.Children[1].ID != "C" {
		t.Fatalf("unexpected children of A: %+v", a.Children)
	}

	b, err := svc.ExpandItem(ctx, "B")
	if err != nil {
		t.Fatalf("ExpandItem(B) failed: %v", err)
	}
	if !b.Loaded || len(b.Children) != 0 {
		t.Fatalf("expected B to load without its ancestor, got %+v", b)
	}

	roots, err := svc.ListRoots(ctx)
	if err != nil {
		t.Fatalf("ListRoots failed: %v", err)
	}
	if len(roots[0].Children) != 2 {
		t.Fatalf("expected open A to list its children, got %+v", roots[0])
	}
}

func TestServiceExpandUnknown(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.ExpandItem(context.Background(), "Z")
	if !errors.Is(err, engine.ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}

func TestServiceExpandFailure(t *testing.T) {
	ctx := context.Background()
	svc, fake := newService(t)
	if _, err := svc.ListRoots(ctx); err != nil {
		t.Fatalf("ListRoots failed: %v", err)
	}
	fake.Fail(remotetest.OpFetch, "A", remotetest.ErrBoom)

	if _, err := svc.ExpandItem(ctx, "A"); !errors.Is(err, remotetest.ErrBoom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestServiceGetItem(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	z, err := svc.GetItem(ctx, "Z")
	if err != nil {
		t.Fatalf("GetItem(Z) failed: %v", err)
	}
	if z.ID != "Z" || z.Expandable {
		t.Fatalf("unexpected item: %+v", z)
	}

	if _, err := svc.GetItem(ctx, "missing"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if _, err := svc.GetItem(ctx, "  "); err == nil {
		t.Fatalf("expected blank id to fail")
	}
}

func TestServiceRenameAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, fake := newService(t)
	if _, err := svc.ExpandItem(ctx, "A"); err != nil {
		t.Fatalf("ExpandItem failed: %v", err)
	}

	renamed, err := svc.RenameItem(ctx, "B", "  Box  ")
	if err != nil {
		t.Fatalf("RenameItem failed: %v", err)
	}
	if renamed.Name != "Box" || renamed.Display != "Box" {
		t.Fatalf("unexpected rename result: %+v", renamed)
	}
	if rec, _ := fake.Record("B"); rec.Name != "Box" {
		t.Fatalf("expected remote name Box, got %q", rec.Name)
	}

	if _, err := svc.RenameItem(ctx, "B", "   "); err == nil {
		t.Fatalf("expected blank rename to fail")
	}

	deleted, err := svc.DeleteItem(ctx, "B", false)
	if err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	if !deleted.Deleted || deleted.Display != "Box (deleted)" {
		t.Fatalf("unexpected delete result: %+v", deleted)
	}

	restored, err := svc.DeleteItem(ctx, "B", true)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if restored.Deleted {
		t.Fatalf("expected B restored")
	}
}

func TestServiceMoveToPinned(t *testing.T) {
	ctx := context.Background()
	svc, fake := newService(t)
	if _, err := svc.ExpandItem(ctx, "A"); err != nil {
		t.Fatalf("ExpandItem failed: %v", err)
	}

	roots, err := svc.MoveItem(ctx, "C", "pinned")
	if err != nil {
		t.Fatalf("MoveItem failed: %v", err)
	}
	if fake.Calls(remotetest.OpRoots) != 2 {
		t.Fatalf("expected move to reload the roots")
	}
	for _, r := range roots {
		if r.Loaded {
			t.Fatalf("expected expansion state discarded, %s is loaded", r.ID)
		}
	}
	if rec, _ := fake.Record("P"); len(rec.Containments) != 1 || rec.Containments[0] != "C" {
		t.Fatalf("expected C under P, got %q", rec.Containments)
	}

	if _, err := svc.MoveItem(ctx, "C", " "); err == nil {
		t.Fatalf("expected blank destination to fail")
	}
}

func TestServicePinnedSuggestion(t *testing.T) {
	svc, _ := newService(t)
	dto, err := svc.PinnedSuggestion(context.Background())
	if err != nil {
		t.Fatalf("PinnedSuggestion failed: %v", err)
	}
	if dto == nil || dto.ID != "P" || dto.Name != "Shelf" {
		t.Fatalf("unexpected suggestion: %+v", dto)
	}
}
