package audio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youpy/go-wav"
)

// fakeDecoder writes a silent WAV with the configured layout instead of running ffmpeg.
type fakeDecoder struct {
	format  Format
	samples int
	err     error

	sawInput string
}

func (d *fakeDecoder) Decode(_ context.Context, inputPath, outputPath string, _ Format) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	d.sawInput = string(data)
	if d.err != nil {
		return d.err
	}
	return writeSilence(outputPath, d.format, d.samples)
}

func writeSilence(path string, format Format, samples int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := wav.NewWriter(f, uint32(samples), uint16(format.Channels), uint32(format.SampleRate), uint16(format.BitsPerSample))
	return w.WriteSamples(make([]wav.Sample, samples))
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp artifacts leaked")
}

func TestNormalizeProducesCanonicalWaveform(t *testing.T) {
	root := t.TempDir()
	dec := &fakeDecoder{format: Canonical(16000), samples: 16000}
	n := NewNormalizer(dec, root, 16000)

	wf, err := n.Normalize(context.Background(), Clip{Data: strings.NewReader("fake-mp3"), Format: "mp3"})
	require.NoError(t, err)

	assert.Equal(t, "fake-mp3", dec.sawInput)
	assert.Equal(t, Canonical(16000), wf.Format)
	assert.Equal(t, time.Second, wf.Duration)
	assert.FileExists(t, wf.Path)

	entries, err := os.ReadDir(filepath.Dir(wf.Path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "staged upload should be removed after decoding")

	require.NoError(t, wf.Close())
	require.NoError(t, wf.Close())
	assertEmptyDir(t, root)
}

func TestNormalizeRejectsEmptyAudio(t *testing.T) {
	root := t.TempDir()
	n := NewNormalizer(&fakeDecoder{format: Canonical(16000), samples: 10}, root, 16000)

	_, err := n.Normalize(context.Background(), Clip{Data: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, ErrEmptyAudio)

	_, err = n.Normalize(context.Background(), Clip{})
	assert.ErrorIs(t, err, ErrEmptyAudio)

	assertEmptyDir(t, root)
}

func TestNormalizeCleansUpOnDecodeFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unsupported", ErrUnsupportedFormat, ErrUnsupportedFormat},
		{"decoder missing", ErrDecoderUnavailable, ErrDecoderUnavailable},
		{"other", errors.New("boom"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			n := NewNormalizer(&fakeDecoder{err: tt.err}, root, 16000)

			_, err := n.Normalize(context.Background(), Clip{Data: strings.NewReader("garbage")})
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assertEmptyDir(t, root)
		})
	}
}

func TestNormalizeRejectsNonCanonicalOutput(t *testing.T) {
	root := t.TempDir()
	dec := &fakeDecoder{format: Format{SampleRate: 44100, Channels: 2, BitsPerSample: 16}, samples: 100}
	n := NewNormalizer(dec, root, 16000)

	_, err := n.Normalize(context.Background(), Clip{Data: strings.NewReader("stereo")})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assertEmptyDir(t, root)
}

func TestNormalizeRejectsZeroLengthDecode(t *testing.T) {
	root := t.TempDir()
	n := NewNormalizer(&fakeDecoder{format: Canonical(16000), samples: 0}, root, 16000)

	_, err := n.Normalize(context.Background(), Clip{Data: strings.NewReader("header-only")})
	assert.Error(t, err)
	assertEmptyDir(t, root)
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"mp3":       ".mp3",
		".WAV":      ".wav",
		"":          "",
		"../../etc": "",
		"m4a ":      ".m4a",
		"waytoolong": "",
	}
	for in, want := range tests {
		assert.Equal(t, want, extension(in), in)
	}
}

func TestFormatFromFilename(t *testing.T) {
	assert.Equal(t, "ogg", FormatFromFilename("voice.OGG"))
	assert.Equal(t, "", FormatFromFilename("blob"))
}

func TestFFmpegDecoderMissingBinary(t *testing.T) {
	d := NewFFmpegDecoder("definitely-not-ffmpeg-7f3a")
	err := d.Decode(context.Background(), "in", "out.wav", Canonical(16000))
	assert.ErrorIs(t, err, ErrDecoderUnavailable)
}
