package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpegDecoder shells out to ffmpeg, which detects the input container itself.
type FFmpegDecoder struct {
	BinPath string // default: "ffmpeg"
}

func NewFFmpegDecoder(binPath string) *FFmpegDecoder {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &FFmpegDecoder{BinPath: binPath}
}

func (d *FFmpegDecoder) Decode(ctx context.Context, inputPath, outputPath string, target Format) error {
	bin, err := exec.LookPath(d.BinPath)
	if err != nil {
		return fmt.Errorf("%w: looking for %s: %v", ErrDecoderUnavailable, d.BinPath, err)
	}

	cmd := exec.CommandContext(ctx, bin,
		"-nostdin", "-hide_banner", "-loglevel", "error",
		"-i", inputPath,
		"-vn",
		"-ac", strconv.Itoa(target.Channels),
		"-ar", strconv.Itoa(target.SampleRate),
		"-sample_fmt", sampleFormat(target.BitsPerSample),
		"-map_metadata", "-1",
		"-f", "wav",
		"-y", outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", ErrDecoderUnavailable, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: ffmpeg: %s", ErrUnsupportedFormat, strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("%w: running ffmpeg: %v", ErrDecoderUnavailable, err)
	}

	return nil
}

func sampleFormat(bits int) string {
	switch bits {
	case 32:
		return "s32"
	case 8:
		return "u8"
	default:
		return "s16"
	}
}
