package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFilename(t *testing.T) {
	valid := []string{"photo.jpg", "photo.JPG", "photo.jpeg", "photo.png", "photo.gif", "dir/photo.png"}
	for _, name := range valid {
		assert.NoError(t, ValidateFilename(name), name)
	}

	invalid := []string{"notes.txt", "archive.zip", "photo", "script.js", "photo.jpg.exe"}
	for _, name := range invalid {
		assert.ErrorIs(t, ValidateFilename(name), ErrInvalidImage, name)
	}
}
