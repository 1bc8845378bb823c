package testsupport

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/goliatone/go-transsaction-cache/model"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// TranssactionsPath is the absolute path of the shared transsaction fixture,
// usable from any package.
func TranssactionsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", "transsactions.json")
}

// LoadTranssactions returns fresh copies of the shared transsaction fixture.
func LoadTranssactions(t *testing.T) []*model.Transsaction {
	t.Helper()

	var records []*model.Transsaction
	LoadFixtureJSON(t, TranssactionsPath(), &records)
	if len(records) == 0 {
		t.Fatalf("fixture %s is empty", TranssactionsPath())
	}
	return records
}

// Saver is the part of a store used to seed fixtures.
type Saver interface {
	Save(ctx context.Context, record *model.Transsaction) (*model.Transsaction, error)
}

// Seed saves records and returns them as stored.
func Seed(t *testing.T, s Saver, records []*model.Transsaction) []*model.Transsaction {
	t.Helper()

	out := make([]*model.Transsaction, 0, len(records))
	for _, rec := range records {
		saved, err := s.Save(context.Background(), rec)
		if err != nil {
			t.Fatalf("failed to seed %s: %v", rec.IdentityDni, err)
		}
		out = append(out, saved)
	}
	return out
}

// WriteGolden writes test output to a golden file.
// This should typically only be called when updating golden files.
func WriteGolden(t *testing.T, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write golden file to %s: %v", path, err)
	}
}

// CompareWithGolden compares actual data with expected data from a golden file.
// If the golden file doesn't exist, it creates one with the actual data.
func CompareWithGolden(t *testing.T, path string, actual []byte) {
	t.Helper()

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Logf("Golden file %s does not exist, creating it", path)
			WriteGolden(t, path, actual)
			return
		}
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, expected, actual)
	}
}

// GoldenPath constructs a path to a golden file relative to the testdata directory.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}
