package demopipe

import (
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	_ "image/png" // decode PNG frames

	"github.com/ansiterm/videoplayer/internal/frame"
)

// loadSource resolves path to a sequence of decoded samples. If path is a
// directory, its PNG frames are loaded directly in filename order;
// otherwise path is treated as a video file and decoded to a temporary
// directory of PNG frames via ffmpeg first. The returned cleanup removes
// any temporary directory created; it is a no-op when path was already a
// directory.
func loadSource(path string, fps int) ([]*frame.Sample, func(), error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}

	dir := path

	cleanup := func() {}

	if !info.IsDir() {
		extracted, cleanupFn, err := extractFrames(path, fps)
		if err != nil {
			return nil, nil, err
		}

		dir, cleanup = extracted, cleanupFn
	}

	images, err := loadFrameImages(dir)
	if err != nil {
		cleanup()

		return nil, nil, err
	}

	samples := make([]*frame.Sample, 0, len(images))
	for _, img := range images {
		samples = append(samples, imageToSample(img))
	}

	return samples, cleanup, nil
}

// extractFrames shells out to ffmpeg to extract PNG frames from a video
// file at fps frames per second. It returns the temporary directory
// containing the frames and a cleanup function that removes it.
func extractFrames(videoPath string, fps int) (string, func(), error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return "", nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "videoplayer_demopipe_*")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp dir: %w", err)
	}

	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	pattern := filepath.Join(tmpDir, "frame_%06d.png")

	cmd := exec.Command(
		"ffmpeg",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%d", fps),
		pattern,
	)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		cleanup()

		return "", nil, fmt.Errorf("running ffmpeg: %w", err)
	}

	return tmpDir, cleanup, nil
}

// loadFrameImages reads and decodes every PNG in dir, sorted by filename.
func loadFrameImages(dir string) ([]image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var names []string

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		if strings.HasSuffix(strings.ToLower(e.Name()), ".png") {
			names = append(names, e.Name())
		}
	}

	slices.Sort(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("no PNG frames found in %s", dir)
	}

	images := make([]image.Image, 0, len(names))

	for _, name := range names {
		img, err := decodePNG(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}

		images = append(images, img)
	}

	return images, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)

	return img, err
}

// imageToSample packs img into a [frame.Sample], converting every pixel to
// 8-bit RGB regardless of the source image's native color model.
func imageToSample(img image.Image) *frame.Sample {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	pix := make([]byte, 0, width*height*3)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pix = append(pix, byte(r>>8), byte(g>>8), byte(b>>8))
		}
	}

	return &frame.Sample{Width: uint32(width), Height: uint32(height), Pix: pix}
}
