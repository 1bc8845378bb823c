package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-transsaction-cache/store"
	"github.com/shopspring/decimal"
)

func TestLoadTranssactions(t *testing.T) {
	records := LoadTranssactions(t)

	if len(records) != 3 {
		t.Fatalf("expected 3 fixture records, got %d", len(records))
	}
	first := records[0]
	if first.IdentityDni != "45871236" {
		t.Errorf("unexpected identity dni %q", first.IdentityDni)
	}
	if !first.Amount.Equal(decimal.RequireFromString("150")) {
		t.Errorf("unexpected amount %s", first.Amount)
	}
	if !first.DateRegister.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %v", first.DateRegister)
	}

	records[0].Email = "changed"
	if again := LoadTranssactions(t); again[0].Email == "changed" {
		t.Error("LoadTranssactions must return fresh copies")
	}
}

func TestSeed(t *testing.T) {
	gw := store.NewMemoryGateway()
	seeded := Seed(t, gw, LoadTranssactions(t))

	if len(seeded) != 3 || gw.Len() != 3 {
		t.Fatalf("seeded %d, store holds %d", len(seeded), gw.Len())
	}
	if seeded[1].ID != "1c7e8a2b-6f3d-4b9a-a5e2-7d4f0c8b3a22" {
		t.Errorf("fixture id not preserved: %s", seeded[1].ID)
	}
}

func TestCompareWithGolden(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden", "out.json")

	CompareWithGolden(t, path, []byte(`{"ok":true}`))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("golden file not created: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("unexpected golden content %q", data)
	}

	CompareWithGolden(t, path, []byte(`{"ok":true}`))
}

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.txt")
	if err := os.WriteFile(path, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := LoadFixture(t, path); string(got) != "payload" {
		t.Errorf("expected %q, got %q", "payload", got)
	}
}

func TestGoldenPath(t *testing.T) {
	if got := GoldenPath("find_all.json"); got != filepath.Join("testdata", "golden", "find_all.json") {
		t.Errorf("unexpected golden path %s", got)
	}
}
