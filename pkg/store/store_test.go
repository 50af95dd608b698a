package store

import (
	"context"
	stderrors "errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/mosaic"
)

func testDefinition(title string) mosaic.Definition {
	return mosaic.Definition{
		Title:         title,
		SubCategories: []mosaic.SubCategoryDef{{ID: "s", Fill: "#336699"}},
		Categories:    []mosaic.CategoryDef{{Name: "a", Value: 1, Values: []mosaic.ValueDef{{SubCategory: "s", Value: 2}}}},
	}
}

// testStore runs the behaviour every backend must share.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	rec, err := s.Create(ctx, testDefinition("first"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !ValidID(rec.ID) || rec.Version != 1 || rec.CreatedAt.IsZero() {
		t.Errorf("created record = %+v", rec)
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Definition.Title != "first" || len(got.Definition.Categories) != 1 {
		t.Errorf("Get = %+v", got.Definition)
	}

	updated, err := s.Update(ctx, rec.ID, func(d *mosaic.Definition) error {
		d.Categories[0].Value = 5
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Version != 2 || updated.Definition.Categories[0].Value != 5 {
		t.Errorf("Update = %+v", updated)
	}

	boom := stderrors.New("boom")
	if _, err := s.Update(ctx, rec.ID, func(d *mosaic.Definition) error {
		d.Title = "changed"
		return boom
	}); !stderrors.Is(err, boom) {
		t.Errorf("Update err = %v, want callback error", err)
	}
	if got, _ := s.Get(ctx, rec.ID); got.Definition.Title != "first" {
		t.Error("failed update was written")
	}

	if _, err := s.Put(ctx, rec.ID, testDefinition("renamed")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	time.Sleep(2 * time.Millisecond) // distinct created_at at millisecond precision
	second, err := s.Create(ctx, testDefinition("second"))
	if err != nil {
		t.Fatal(err)
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Title != "renamed" || list[1].ID != second.ID {
		t.Errorf("List = %+v", list)
	}

	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, rec.ID); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v", err)
	}
	if err := s.Delete(ctx, rec.ID); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v", err)
	}
	if _, err := s.Update(ctx, rec.ID, func(*mosaic.Definition) error { return nil }); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Update missing = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	testStore(t, s)
}

func TestMemoryStoreCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	def := testDefinition("x")
	rec, _ := s.Create(ctx, def)

	def.Categories[0].Value = 100
	rec.Definition.Categories[0].Values[0].Value = 100

	got, _ := s.Get(ctx, rec.ID)
	if got.Definition.Categories[0].Value != 1 || got.Definition.Categories[0].Values[0].Value != 2 {
		t.Errorf("store shares memory with callers: %+v", got.Definition)
	}
}

func TestMemoryStoreConcurrentUpdates(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	rec, _ := s.Create(ctx, testDefinition("x"))

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Update(ctx, rec.ID, func(d *mosaic.Definition) error {
				d.Categories[0].Value++
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := s.Get(ctx, rec.ID)
	if got.Definition.Categories[0].Value != 51 || got.Version != 51 {
		t.Errorf("value = %v, version = %d; want 51, 51", got.Definition.Categories[0].Value, got.Version)
	}
}

func TestErrNotFoundCode(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), NewID())
	if errors.GetCode(err) != errors.ErrCodeChartNotFound {
		t.Errorf("code = %q", errors.GetCode(err))
	}
}

func TestValidID(t *testing.T) {
	if !ValidID(NewID()) {
		t.Error("NewID() should be valid")
	}
	if ValidID("../etc") {
		t.Error("path should not be a valid id")
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MOSAIC_MONGO_URI")
	if uri == "" {
		t.Skip("MOSAIC_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoOptions{URI: uri, Database: "mosaic_test", Collection: "charts_" + NewID()[:8]})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	t.Cleanup(func() {
		_ = s.coll.Drop(context.Background())
		_ = s.Close()
	})
	testStore(t, s)
}

func TestNewMongoStoreRequiresURI(t *testing.T) {
	if _, err := NewMongoStore(context.Background(), MongoOptions{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v", err)
	}
}
