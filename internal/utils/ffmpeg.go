package utils

import (
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hacklytics/viralcast/internal/models"
)

// FFmpegHelper wraps the ffmpeg/ffprobe binaries for frame sampling
// and audio extraction.
type FFmpegHelper struct {
	ffmpegPath  string
	ffprobePath string
	tempDir     string
}

// NewFFmpegHelper verifies the ffmpeg installation and prepares the
// temp directory.
func NewFFmpegHelper(tempDir string) (*FFmpegHelper, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &FFmpegHelper{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		tempDir:     tempDir,
	}, nil
}

// ProbeDuration returns the container duration in seconds.
func (h *FFmpegHelper) ProbeDuration(videoPath string) (float64, error) {
	cmd := exec.Command(h.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to get duration: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return duration, nil
}

// ProbeFrameRate returns the native frame rate of the first video
// stream, parsed from ffprobe's fractional form (e.g. "30000/1001").
func (h *FFmpegHelper) ProbeFrameRate(videoPath string) (float64, error) {
	cmd := exec.Command(h.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to get frame rate: %w", err)
	}

	rateStr := strings.TrimSpace(string(output))
	parts := strings.Split(rateStr, "/")
	if len(parts) == 2 {
		num, _ := strconv.ParseFloat(parts[0], 64)
		den, _ := strconv.ParseFloat(parts[1], 64)
		if den > 0 {
			return num / den, nil
		}
	}

	rate, err := strconv.ParseFloat(rateStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse frame rate %q: %w", rateStr, err)
	}

	return rate, nil
}

// SampleResult is the output of SampleFrames: the container duration
// and the fixed-interval subsequence of decoded frames, in decode
// order.
type SampleResult struct {
	Duration float64
	Frames   []image.Image
}

// SampleFrames decodes one frame per round(fps*interval) native frames.
// Returns a DecodeError when the container cannot be probed or reports
// a zero frame rate (the sampling stride would divide by zero).
func (h *FFmpegHelper) SampleFrames(videoPath string, interval float64, jobID string) (*SampleResult, error) {
	duration, err := h.ProbeDuration(videoPath)
	if err != nil {
		return nil, &models.DecodeError{Path: videoPath, Err: err}
	}

	fps, err := h.ProbeFrameRate(videoPath)
	if err != nil {
		return nil, &models.DecodeError{Path: videoPath, Err: err}
	}
	if fps <= 0 {
		return nil, &models.DecodeError{Path: videoPath, Err: fmt.Errorf("zero frame rate")}
	}

	stride := int(math.Round(fps * interval))
	if stride < 1 {
		stride = 1
	}

	outputDir := filepath.Join(h.tempDir, fmt.Sprintf("%s_frames", jobID))
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create frame directory: %w", err)
	}
	defer os.RemoveAll(outputDir)

	outputPattern := filepath.Join(outputDir, "frame_%05d.jpg")
	cmd := exec.Command(h.ffmpegPath,
		"-i", videoPath,
		"-vf", fmt.Sprintf("select='not(mod(n\\,%d))'", stride),
		"-vsync", "vfr",
		"-q:v", "2",
		"-y",
		outputPattern,
	)

	if err := cmd.Run(); err != nil {
		return nil, &models.DecodeError{Path: videoPath, Err: fmt.Errorf("frame extraction failed: %w", err)}
	}

	frames, err := h.decodeFrames(outputDir)
	if err != nil {
		return nil, &models.DecodeError{Path: videoPath, Err: err}
	}

	return &SampleResult{Duration: duration, Frames: frames}, nil
}

// decodeFrames reads the extracted JPEGs in name order (which is
// decode order, given the sequential output pattern).
func (h *FFmpegHelper) decodeFrames(outputDir string) ([]image.Image, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}

	var frames []image.Image
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jpg") {
			continue
		}

		f, err := os.Open(filepath.Join(outputDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to open frame %s: %w", entry.Name(), err)
		}

		img, err := jpeg.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode frame %s: %w", entry.Name(), err)
		}

		frames = append(frames, img)
	}

	return frames, nil
}

// ExtractAudioWAV extracts the audio track resampled to 16 kHz mono
// PCM and returns the path of the temporary WAV file. The caller owns
// cleanup.
func (h *FFmpegHelper) ExtractAudioWAV(videoPath string, jobID string) (string, error) {
	outputPath := filepath.Join(h.tempDir, fmt.Sprintf("%s_audio.wav", jobID))

	cmd := exec.Command(h.ffmpegPath,
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		outputPath,
	)

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("audio extraction failed: %w", err)
	}

	return outputPath, nil
}

// ValidateVideo checks that ffprobe can open the container.
func (h *FFmpegHelper) ValidateVideo(videoPath string) error {
	cmd := exec.Command(h.ffprobePath, "-v", "error", videoPath)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("invalid video file: %w", err)
	}
	return nil
}

// Cleanup removes temporary files.
func (h *FFmpegHelper) Cleanup(paths ...string) error {
	for _, path := range paths {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to cleanup %s: %w", path, err)
		}
	}
	return nil
}
