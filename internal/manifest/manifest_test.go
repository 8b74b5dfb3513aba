package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnyUserName/squeeze/internal/hasher"
)

func sampleManifest(t *testing.T, dir string) *Manifest {
	t.Helper()
	payload := []byte("not really a webp")
	hash := hasher.Sum(payload, 0)
	rel := "test/image." + hash[:8] + ".webp"
	if err := os.MkdirAll(filepath.Join(dir, "test"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, rel), payload, 0o644); err != nil {
		t.Fatal(err)
	}

	m := New("test-profile")
	m.BuildInfo = &BuildInfo{Workers: 4, Quality: 80, Encoders: []string{"webp", "jpeg", "png"}}
	m.Assets["test/image"] = Asset{
		Original: OriginalInfo{
			Width: 800, Height: 600,
			Format: "JPEG", Size: 100000, HasAlpha: false,
			Hash: "0123456789abcdef",
		},
		AspectRatio: 1.3333,
		Outputs: []Output{
			{Target: "webp", Quality: 78, Size: int64(len(payload)), Hash: hash, Path: rel, Ratio: 100000 / float64(len(payload))},
		},
	}
	m.Stats.SkippedRegress = 2
	m.ComputeStats()
	return m
}

func TestManifestRoundtrip(t *testing.T) {
	dir := t.TempDir()
	m := sampleManifest(t, dir)

	path := filepath.Join(dir, FileName)
	if err := WriteJSON(m, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Directory and file paths both resolve.
	for _, p := range []string{dir, path} {
		m2, err := ReadJSON(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}

		if m2.Version != SupportedManifestVersion {
			t.Errorf("version: got %d, want %d", m2.Version, SupportedManifestVersion)
		}
		if m2.Profile != "test-profile" {
			t.Errorf("profile: got %q", m2.Profile)
		}
		if m2.BuildInfo == nil {
			t.Fatal("build_info missing")
		}
		if m2.BuildInfo.Workers != 4 || m2.BuildInfo.Quality != 80 {
			t.Errorf("build_info: got %+v", m2.BuildInfo)
		}

		a, ok := m2.Assets["test/image"]
		if !ok {
			t.Fatal("asset test/image missing")
		}
		if len(a.Outputs) != 1 {
			t.Fatalf("outputs: got %d", len(a.Outputs))
		}
		if a.Outputs[0].Target != "webp" || a.Outputs[0].Quality != 78 {
			t.Errorf("output: got %+v", a.Outputs[0])
		}

		if m2.Stats.TotalAssets != 1 {
			t.Errorf("total_assets: got %d", m2.Stats.TotalAssets)
		}
		if m2.Stats.TotalOutputs != 1 {
			t.Errorf("total_outputs: got %d", m2.Stats.TotalOutputs)
		}
		if m2.Stats.SkippedRegress != 2 {
			t.Errorf("skipped_regress: got %d", m2.Stats.SkippedRegress)
		}
		if m2.Stats.TotalInputBytes != 100000 {
			t.Errorf("total_input_bytes: got %d", m2.Stats.TotalInputBytes)
		}
	}
}

func TestManifestVersion(t *testing.T) {
	m := New("v-test")
	if m.Version != SupportedManifestVersion {
		t.Errorf("new manifest version: got %d, want %d", m.Version, SupportedManifestVersion)
	}
}

func TestManifestIgnoresUnknownFields(t *testing.T) {
	// Simulate a future manifest with extra fields.
	raw := `{
		"version": 1,
		"generated_at": "2025-01-01T00:00:00Z",
		"profile": "test",
		"base_path": "./",
		"future_field": "should be ignored",
		"build_info": { "workers": 8, "quality": 80, "new_flag": true },
		"assets": {},
		"stats": { "total_input_bytes": 0, "total_output_bytes": 0, "total_assets": 0, "total_outputs": 0, "new_stat": 42 }
	}`

	var m Manifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal with unknown fields: %v", err)
	}
	if m.Version != 1 {
		t.Errorf("version: got %d", m.Version)
	}
	if m.BuildInfo == nil || m.BuildInfo.Workers != 8 {
		t.Error("build_info not parsed correctly")
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	m := sampleManifest(t, dir)

	if errs := Validate(m, dir); len(errs) != 0 {
		t.Fatalf("valid manifest reported errors: %v", errs)
	}

	out := &m.Assets["test/image"].Outputs[0]
	if err := os.WriteFile(filepath.Join(dir, out.Path), []byte("tampered payload!"), 0o644); err != nil {
		t.Fatal(err)
	}
	errs := Validate(m, dir)
	if len(errs) != 1 || !strings.Contains(errs[0], "hash mismatch") {
		t.Errorf("tampered file: got %v", errs)
	}

	if err := os.Remove(filepath.Join(dir, out.Path)); err != nil {
		t.Fatal(err)
	}
	m.Stats.TotalOutputs = 7
	errs = Validate(m, dir)
	want := []string{"file not found", "stats.total_outputs mismatch"}
	if len(errs) != len(want) {
		t.Fatalf("got %d errors, want %d: %v", len(errs), len(want), errs)
	}
	for i, w := range want {
		if !strings.Contains(errs[i], w) {
			t.Errorf("errs[%d] = %q, want it to mention %q", i, errs[i], w)
		}
	}
}

func TestValidate_SizeAndHashFromFile(t *testing.T) {
	dir := t.TempDir()
	m := sampleManifest(t, dir)

	out := m.Assets["test/image"].Outputs[0]
	if err := os.WriteFile(filepath.Join(dir, out.Path), []byte("a longer payload than before"), 0o644); err != nil {
		t.Fatal(err)
	}
	errs := Validate(m, dir)
	want := []string{"size mismatch: manifest=17, disk=28", "hash mismatch"}
	if len(errs) != len(want) {
		t.Fatalf("got %d errors, want %d: %v", len(errs), len(want), errs)
	}
	for i, w := range want {
		if !strings.Contains(errs[i], w) {
			t.Errorf("errs[%d] = %q, want it to mention %q", i, errs[i], w)
		}
	}
}

func TestFailedTargetsCounted(t *testing.T) {
	dir := t.TempDir()
	m := sampleManifest(t, dir)

	a := m.Assets["test/image"]
	a.FailedTargets = []string{"jpeg", "png"}
	m.Assets["test/image"] = a
	m.Stats.Failed = 1
	m.ComputeStats()

	if m.Stats.FailedOutputs != 2 || m.Stats.Failed != 1 {
		t.Errorf("stats = %+v", m.Stats)
	}
	if errs := Validate(m, dir); len(errs) != 0 {
		t.Errorf("valid manifest reported errors: %v", errs)
	}

	m.Stats.FailedOutputs = 0
	errs := Validate(m, dir)
	if len(errs) != 1 || !strings.Contains(errs[0], "stats.failed_outputs mismatch") {
		t.Errorf("got %v", errs)
	}
}

func TestValidate_BadFields(t *testing.T) {
	m := New("bad")
	m.Version = 3
	m.Assets["a"] = Asset{
		Outputs: []Output{{Target: "avif", Path: ""}},
	}
	m.ComputeStats()

	errs := Validate(m, t.TempDir())
	for _, w := range []string{"unsupported manifest version", "invalid original dimensions",
		"invalid aspect ratio", "unknown target", "missing hash", "missing path"} {
		found := false
		for _, e := range errs {
			if strings.Contains(e, w) {
				found = true
			}
		}
		if !found {
			t.Errorf("missing error %q in %v", w, errs)
		}
	}
}
