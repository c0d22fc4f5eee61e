package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gogpu/docrender/preview"
	"github.com/gogpu/docrender/tiles"
)

// writeOutputs saves every tier surface and every thumbnail under dir.
// It returns the number of files written.
func writeOutputs(dir string, r *replayer) (int, error) {
	if err := os.MkdirAll(filepath.Join(dir, "thumbs"), 0o755); err != nil {
		return 0, err
	}
	n := 0
	save := func(name string, img image.Image) error {
		if img == nil || img.Bounds().Empty() {
			return nil
		}
		if err := savePNG(filepath.Join(dir, name), img); err != nil {
			return err
		}
		n++
		return nil
	}

	for _, res := range tiles.Resolutions() {
		if err := save(fmt.Sprintf("surface-%s.png", res), r.pipe.Surface(res)); err != nil {
			return n, err
		}
	}
	if thumb := r.pipe.DocumentThumbnail(); thumb != nil {
		if err := save("thumbs/document.png", thumb); err != nil {
			return n, err
		}
	}
	for _, name := range r.memberNames() {
		id := r.names[name]
		if img, ok := r.pipe.Thumbnail(id, preview.TargetMain); ok {
			if err := save("thumbs/"+name+".png", img); err != nil {
				return n, err
			}
		}
		if img, ok := r.pipe.Thumbnail(id, preview.TargetMask); ok {
			if err := save("thumbs/"+name+"-mask.png", img); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
