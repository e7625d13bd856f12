package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for raw, want := range map[string]Kind{
		"folder": KindFolder,
		"file":   KindFile,
		"image":  KindImage,
	} {
		kind, ok := ParseKind(raw)
		require.True(t, ok, raw)
		require.Equal(t, want, kind)
	}

	for _, raw := range []string{"", "Folder", "dir", "images"} {
		_, ok := ParseKind(raw)
		require.False(t, ok, raw)
	}
}

func TestThumbnailWidth(t *testing.T) {
	for _, raw := range []string{"100", "250", "500"} {
		width, ok := ThumbnailWidth(raw)
		require.True(t, ok, raw)
		require.Contains(t, ThumbnailWidths, width)
	}

	for _, raw := range []string{"", "0", "50", "1000", "250px"} {
		_, ok := ThumbnailWidth(raw)
		require.False(t, ok, raw)
	}
}
