package conversation

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/inkwell-ai/inkwell/pkg/models"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore() error: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStoreLazyCreation(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			snap, err := store.GetOrCreate(ctx, "c1")
			if err != nil {
				t.Fatalf("GetOrCreate() error: %v", err)
			}
			if snap.ID != "c1" {
				t.Errorf("snapshot id = %q", snap.ID)
			}
			if snap.Language != models.LangEnglish {
				t.Errorf("initial language = %q", snap.Language)
			}
			if len(snap.Entities) != 0 {
				t.Errorf("new context has entities: %v", snap.Entities)
			}
		})
	}
}

func TestStoreRecordAndLookupEntities(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			err := store.RecordEntities(ctx, "c1", "template", map[string]string{
				"Lease Agreement": "tmpl-guid-001",
				"NDA":             "tmpl-guid-002",
			})
			if err != nil {
				t.Fatalf("RecordEntities() error: %v", err)
			}

			got, err := store.LookupEntities(ctx, "c1", "template")
			if err != nil {
				t.Fatalf("LookupEntities() error: %v", err)
			}
			if got["Lease Agreement"] != "tmpl-guid-001" || got["NDA"] != "tmpl-guid-002" {
				t.Errorf("entities = %v", got)
			}
		})
	}
}

func TestStoreLastWriteWins(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.RecordEntities(ctx, "c1", "template", map[string]string{"NDA": "old-id"}); err != nil {
				t.Fatal(err)
			}
			if err := store.RecordEntities(ctx, "c1", "template", map[string]string{"NDA": "new-id"}); err != nil {
				t.Fatal(err)
			}
			got, err := store.LookupEntities(ctx, "c1", "template")
			if err != nil {
				t.Fatal(err)
			}
			if got["NDA"] != "new-id" {
				t.Errorf("NDA = %q, want new-id", got["NDA"])
			}
		})
	}
}

func TestStoreConversationIsolation(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.RecordEntities(ctx, "c1", "template", map[string]string{"A": "id-a"}); err != nil {
				t.Fatal(err)
			}
			if err := store.RecordEntities(ctx, "c2", "template", map[string]string{"B": "id-b"}); err != nil {
				t.Fatal(err)
			}

			c1, _ := store.LookupEntities(ctx, "c1", "template")
			c2, _ := store.LookupEntities(ctx, "c2", "template")
			if _, leaked := c1["B"]; leaked {
				t.Error("c2 entity visible in c1")
			}
			if _, leaked := c2["A"]; leaked {
				t.Error("c1 entity visible in c2")
			}
			if c1["A"] != "id-a" || c2["B"] != "id-b" {
				t.Errorf("c1 = %v, c2 = %v", c1, c2)
			}
		})
	}
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.RecordEntities(ctx, "c1", "template", map[string]string{"NDA": "id-1"}); err != nil {
				t.Fatal(err)
			}

			snap, err := store.GetOrCreate(ctx, "c1")
			if err != nil {
				t.Fatal(err)
			}
			snap.Entities["template"]["NDA"] = "mutated"
			snap.Entities["template"]["Extra"] = "injected"

			got, err := store.LookupEntities(ctx, "c1", "template")
			if err != nil {
				t.Fatal(err)
			}
			if got["NDA"] != "id-1" {
				t.Errorf("stored NDA = %q after snapshot mutation", got["NDA"])
			}
			if _, ok := got["Extra"]; ok {
				t.Error("snapshot mutation leaked into store")
			}

			lookup, _ := store.LookupEntities(ctx, "c1", "template")
			lookup["NDA"] = "mutated-again"
			got2, _ := store.LookupEntities(ctx, "c1", "template")
			if got2["NDA"] != "id-1" {
				t.Error("LookupEntities returned a live reference")
			}
		})
	}
}

func TestStoreSetLanguage(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.SetLanguage(ctx, "c1", models.LangHebrew); err != nil {
				t.Fatal(err)
			}
			snap, err := store.GetOrCreate(ctx, "c1")
			if err != nil {
				t.Fatal(err)
			}
			if snap.Language != models.LangHebrew {
				t.Errorf("language = %q", snap.Language)
			}
		})
	}
}

func TestStoreHistory(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 5; i++ {
				msg := &models.Message{
					Role:    models.RoleUser,
					Content: fmt.Sprintf("message %d", i),
				}
				if err := store.AppendMessage(ctx, "c1", msg); err != nil {
					t.Fatal(err)
				}
				if msg.ID == "" {
					t.Fatal("AppendMessage did not assign an id")
				}
			}

			history, err := store.History(ctx, "c1", 3)
			if err != nil {
				t.Fatal(err)
			}
			if len(history) != 3 {
				t.Fatalf("history length = %d", len(history))
			}
			if history[2].Content != "message 4" {
				t.Errorf("latest message = %q", history[2].Content)
			}
		})
	}
}

func TestStoreConcurrentWrites(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			const workers = 8
			var wg sync.WaitGroup
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					conv := fmt.Sprintf("c%d", w%2)
					for i := 0; i < 20; i++ {
						name := fmt.Sprintf("t-%d-%d", w, i)
						_ = store.RecordEntities(ctx, conv, "template", map[string]string{name: "id-" + name})
					}
				}(w)
			}
			wg.Wait()

			for _, conv := range []string{"c0", "c1"} {
				got, err := store.LookupEntities(ctx, conv, "template")
				if err != nil {
					t.Fatal(err)
				}
				// Half the workers wrote to each conversation.
				if len(got) != workers/2*20 {
					t.Errorf("%s entity count = %d", conv, len(got))
				}
			}
		})
	}
}
