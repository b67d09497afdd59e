package game

import (
	"errors"

	"github.com/ncruces/zenity"

	"github.com/frog-london/Tara-Voice/internal/audio"
)

// openFile asks for a file to open. An empty name means the dialog was
// cancelled.
func openFile(title, filter string, patterns []string) (string, error) {
	filename, err := zenity.SelectFile(
		zenity.Title(title),
		zenity.FileFilters{{
			Name:     filter,
			Patterns: patterns,
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", nil
		}
		return "", err
	}
	return filename, nil
}

// saveFile asks where to save. An empty name means the dialog was cancelled.
func saveFile(title, name, filter string, patterns []string) (string, error) {
	filename, err := zenity.SelectFileSave(
		zenity.Title(title),
		zenity.Filename(name),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{{
			Name:     filter,
			Patterns: patterns,
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", nil
		}
		return "", err
	}
	return filename, nil
}

func openAudio() (string, error) {
	return openFile("Open Audio File", "Audio", audio.Patterns)
}

func openMask() (string, error) {
	return openFile("Open Mask Image", "Images", []string{"*.png", "*.jpg", "*.jpeg", "*.webp", "*.svg"})
}

func saveSVG() (string, error) {
	return saveFile("Export SVG", "halftone.svg", "SVG", []string{"*.svg"})
}

func saveVideo(name string) (string, error) {
	return saveFile("Save Video", name, "AVI video", []string{"*.avi"})
}
