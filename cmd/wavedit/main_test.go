package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"

	"github.com/cwbudde/wavedit"
)

// writeInput stores 2 sec of a constant 0.4 signal at 8 kHz.
func writeInput(t *testing.T, dir string) string {
	t.Helper()

	data := make([]float32, 16000)
	for i := range data {
		data[i] = 0.4
	}

	encoded, err := wavedit.EncodeFull(&audio.Float32Buffer{
		Data:   data,
		Format: &audio.Format{NumChannels: 1, SampleRate: 8000},
	})
	if err != nil {
		t.Fatalf("encode input: %v", err)
	}

	path := filepath.Join(dir, "input.wav")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	return path
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}

func decodeOutput(t *testing.T, path string) *audio.Float32Buffer {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}

	if err := wavedit.WAV(data).Validate(); err != nil {
		t.Fatalf("output is not a canonical wav: %v", err)
	}

	buf, err := wavedit.Decode(data)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}

	return buf
}

func near(a, b float32) bool {
	d := a - b

	return d < 1e-4 && d > -1e-4
}

func TestRunDeleteFromFlags(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)

	var out bytes.Buffer

	err := run([]string{"-in", in, "-op", "delete", "-start", "0.5", "-end", "1"}, &out)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	outPath := filepath.Join(dir, "input-edited.wav")

	buf := decodeOutput(t, outPath)
	if len(buf.Data) != 12000 {
		t.Fatalf("got %d samples, want 12000", len(buf.Data))
	}

	if !strings.Contains(out.String(), "wrote "+outPath) {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestRunTOMLScript(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)
	outPath := filepath.Join(dir, "out.wav")

	sc := writeFile(t, filepath.Join(dir, "edits.toml"), `
input = "`+in+`"
output = "`+outPath+`"
undo_depth = 2

[[edit]]
op = "volume"
start = 0
end = 1
level = -1

[[edit]]
op = "delete"
start = 1
end = 2

[[edit]]
op = "undo"
`)

	var out bytes.Buffer
	if err := run([]string{"-script", sc}, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	buf := decodeOutput(t, outPath)
	if len(buf.Data) != 16000 {
		t.Fatalf("got %d samples, want 16000 after undo", len(buf.Data))
	}

	if !near(buf.Data[0], 0.2) || !near(buf.Data[7999], 0.2) || !near(buf.Data[8000], 0.4) {
		t.Fatalf("samples %f %f %f", buf.Data[0], buf.Data[7999], buf.Data[8000])
	}
}

func TestRunYAMLScriptWithAIFF(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)
	aiffPath := filepath.Join(dir, "out.aif")

	sc := writeFile(t, filepath.Join(dir, "edits.yaml"), `
input: `+in+`
aiff: `+aiffPath+`
edit:
  - op: fade_in
    start: 0
    end: 1
  - op: beep
    start: 1.5
    end: 2
`)

	var out bytes.Buffer
	if err := run([]string{"-script", sc}, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	buf := decodeOutput(t, filepath.Join(dir, "input-edited.wav"))
	if !near(buf.Data[0], 0.4/8000) || !near(buf.Data[12000], 0.002) {
		t.Fatalf("samples %f %f", buf.Data[0], buf.Data[12000])
	}

	f, err := os.Open(aiffPath)
	if err != nil {
		t.Fatalf("aiff missing: %v", err)
	}
	defer f.Close()

	intBuf, err := aiff.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode aiff: %v", err)
	}

	if len(intBuf.Data) != 16000 || intBuf.Format.NumChannels != 1 {
		t.Fatalf("aiff holds %d samples on %d channels", len(intBuf.Data), intBuf.Format.NumChannels)
	}

	if want := int(wavedit.Quantize16(buf.Data[8000])); intBuf.Data[8000] != want {
		t.Fatalf("aiff sample=%d, want %d", intBuf.Data[8000], want)
	}
}

func TestRunFlagsOverrideScript(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)
	outPath := filepath.Join(dir, "flag.wav")

	sc := writeFile(t, filepath.Join(dir, "edits.yml"), `
input: /nonexistent/input.wav
edit:
  - op: fade-out
    start: 0
    end: 1
`)

	err := run([]string{"-script", sc, "-in", in, "-out", outPath, "-op", "undo"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if buf := decodeOutput(t, outPath); !near(buf.Data[100], 0.4) {
		t.Fatalf("undo left sample %f", buf.Data[100])
	}
}

func TestRunUndoWithoutHistory(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)

	if err := run([]string{"-in", in, "-op", "undo"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("undo on a fresh file must be skipped, got %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)

	unknownKey := writeFile(t, filepath.Join(dir, "bad.toml"), "input = \"x.wav\"\nspeed = 2\n")
	badFormat := writeFile(t, filepath.Join(dir, "edits.json"), "{}")

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"missing input", []string{"-op", "beep"}, errMissingInput},
		{"unknown script format", []string{"-script", badFormat}, errUnknownScriptFormat},
		{"zero volume", []string{"-in", in, "-op", "volume", "-start", "0", "-end", "1"}, wavedit.ErrNoVolumeChange},
		{"empty selection", []string{"-in", in, "-op", "beep", "-start", "1", "-end", "1"}, wavedit.ErrInvalidInterval},
		{"unknown op", []string{"-in", in, "-op", "reverse"}, nil},
		{"unknown key", []string{"-script", unknownKey}, nil},
		{"missing file", []string{"-in", filepath.Join(dir, "nope.wav")}, nil},
		{"bad flag", []string{"-level", "loud"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args, &bytes.Buffer{})
			if err == nil {
				t.Fatal("expected an error")
			}

			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("err=%v, want %v", err, tt.want)
			}
		})
	}
}
