package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/youpy/go-wav"
)

var (
	ErrEmptyAudio         = errors.New("empty audio")
	ErrUnsupportedFormat  = errors.New("unsupported audio format")
	ErrDecoderUnavailable = errors.New("audio decoder unavailable")
)

// Format describes a PCM layout.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// Canonical is the mono 16-bit layout speech recognizers expect.
func Canonical(sampleRate int) Format {
	return Format{SampleRate: sampleRate, Channels: 1, BitsPerSample: 16}
}

// Clip is an uploaded recording as received from the client.
type Clip struct {
	Data   io.Reader
	Format string // declared container, e.g. "mp3"; empty lets the decoder detect it
}

// Decoder converts an arbitrary audio container into a WAV file with the target layout.
type Decoder interface {
	Decode(ctx context.Context, inputPath, outputPath string, target Format) error
}

// Waveform is a decoded recording on local disk. Close removes it.
type Waveform struct {
	Path     string
	Format   Format
	Duration time.Duration

	dir      string
	once     sync.Once
	closeErr error
}

func (w *Waveform) Close() error {
	w.once.Do(func() {
		if err := os.RemoveAll(w.dir); err != nil {
			w.closeErr = fmt.Errorf("remove waveform dir: %w", err)
		}
	})
	return w.closeErr
}

type Normalizer struct {
	decoder Decoder
	tempDir string
	target  Format
}

// NewNormalizer creates a Normalizer that stages files under tempDir (os.TempDir() when empty).
func NewNormalizer(decoder Decoder, tempDir string, sampleRate int) *Normalizer {
	return &Normalizer{
		decoder: decoder,
		tempDir: tempDir,
		target:  Canonical(sampleRate),
	}
}

// Normalize decodes clip into a canonical waveform. Every staged file is removed
// before returning an error; on success the caller owns the Waveform and must Close it.
func (n *Normalizer) Normalize(ctx context.Context, clip Clip) (wf *Waveform, err error) {
	if clip.Data == nil {
		return nil, ErrEmptyAudio
	}

	dir, err := os.MkdirTemp(n.tempDir, "clip-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			err = multierror.Append(err, fmt.Errorf("remove temp dir: %w", rmErr))
		}
	}()

	inputPath := filepath.Join(dir, "input"+extension(clip.Format))
	size, err := writeFile(inputPath, clip.Data)
	if err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}
	if size == 0 {
		return nil, ErrEmptyAudio
	}

	outputPath := filepath.Join(dir, "normalized.wav")
	decodeErr := n.decoder.Decode(ctx, inputPath, outputPath, n.target)
	if rmErr := os.Remove(inputPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		slog.Warn("failed to remove staged upload", "path", inputPath, "error", rmErr)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	format, duration, err := inspect(outputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if format != n.target {
		return nil, fmt.Errorf("%w: decoded %+v, want %+v", ErrUnsupportedFormat, format, n.target)
	}
	if duration <= 0 {
		return nil, ErrEmptyAudio
	}

	return &Waveform{
		Path:     outputPath,
		Format:   format,
		Duration: duration,
		dir:      dir,
	}, nil
}

func inspect(path string) (Format, time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return Format{}, 0, fmt.Errorf("open decoded audio: %w", err)
	}
	defer f.Close()

	r := wav.NewReader(f)
	wf, err := r.Format()
	if err != nil {
		return Format{}, 0, fmt.Errorf("read wav format: %w", err)
	}
	duration, err := r.Duration()
	if err != nil {
		return Format{}, 0, fmt.Errorf("read wav duration: %w", err)
	}

	return Format{
		SampleRate:    int(wf.SampleRate),
		Channels:      int(wf.NumChannels),
		BitsPerSample: int(wf.BitsPerSample),
	}, duration, nil
}

func writeFile(path string, data io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return n, err
}

// extension turns a declared format into a safe file suffix; unknown input yields none.
func extension(format string) string {
	format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	if format == "" || len(format) > 8 {
		return ""
	}
	for _, r := range format {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return "." + format
}

// FormatFromFilename derives the declared container from an upload's filename.
func FormatFromFilename(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}
