package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RelioAI/relio-mvp/engine/dataset"
	"github.com/RelioAI/relio-mvp/engine/domain"
	"github.com/RelioAI/relio-mvp/engine/feature"
	"github.com/RelioAI/relio-mvp/engine/model"
)

func pipelineFixture(t *testing.T) *Pipeline {
	t.Helper()
	records := dataset.Generate(40, 42)
	state, err := feature.Fit(records, feature.DefaultConfig())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	xs, err := state.TransformAll(records)
	if err != nil {
		t.Fatalf("TransformAll: %v", err)
	}
	ys := (&dataset.Table{Records: records}).Labels()
	ens, err := model.Train(xs, ys, model.Config{Trees: 5, Depth: 2, LearningRate: 0.3, MinLeaf: 2})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	return &Pipeline{
		State:       state,
		Model:       ens,
		ModelConfig: model.Config{Trees: 5, Depth: 2, LearningRate: 0.3, MinLeaf: 2},
		Target:      "has_mechanical_issue",
		TrainedRows: len(records),
		TrainedAt:   time.Now().UTC(),
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	p := pipelineFixture(t)
	path := filepath.Join(t.TempDir(), "pipeline.bin")
	if err := Save(path, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.TrainedRows != p.TrainedRows || loaded.Target != p.Target {
		t.Errorf("metadata lost: %+v", loaded)
	}
	if loaded.State.SchemaHash() != p.State.SchemaHash() {
		t.Error("schema hash changed across round trip")
	}

	// Loaded pipeline must score identically to the in-memory one.
	rec := dataset.Generate(1, 7)[0]
	a, err := p.State.Transform(rec)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	b, err := loaded.State.Transform(rec)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if p.Model.Evaluate(a) != loaded.Model.Evaluate(b) {
		t.Error("loaded pipeline scores differently")
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.bin"))
	if !errors.Is(err, domain.ErrArtifactMissing) {
		t.Fatalf("expected ErrArtifactMissing, got %v", err)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	p := pipelineFixture(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.bin")
	if err := Save(path, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]func([]byte) []byte{
		"truncated header": func(b []byte) []byte { return b[:10] },
		"bad magic":        func(b []byte) []byte { c := append([]byte(nil), b...); c[0] ^= 0xFF; return c },
		"bad version":      func(b []byte) []byte { c := append([]byte(nil), b...); c[7] = 99; return c },
		"flipped payload":  func(b []byte) []byte { c := append([]byte(nil), b...); c[len(c)-1] ^= 0xFF; return c },
		"truncated body":   func(b []byte) []byte { return b[:len(b)-5] },
	}
	for name, mutate := range cases {
		bad := filepath.Join(dir, name+".bin")
		if err := os.WriteFile(bad, mutate(data), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(bad); !errors.Is(err, domain.ErrArtifactCorrupt) {
			t.Errorf("%s: expected ErrArtifactCorrupt, got %v", name, err)
		}
	}
}

func TestLoad_SchemaHashMismatch(t *testing.T) {
	p := pipelineFixture(t)
	path := filepath.Join(t.TempDir(), "pipeline.bin")
	if err := Save(path, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Flip a byte inside the schema-hash field; the payload and its checksum
	// stay intact, so only the hash comparison can catch this.
	data[12] ^= 0xFF
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, domain.ErrArtifactCorrupt) {
		t.Fatalf("expected ErrArtifactCorrupt, got %v", err)
	}
}
