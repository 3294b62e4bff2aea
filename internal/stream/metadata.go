package stream

import "strings"

// The station's encoders join song and artist with "__by__" so downstream
// consumers can split the fields unambiguously (a plain " by " appears
// inside too many titles).
const metaSeparator = "__by__"

// SplitMetadata splits raw song metadata into song and artist. Metadata
// without the separator is all song, no artist.
func SplitMetadata(meta string) (song, artist string) {
	parts := strings.SplitN(meta, metaSeparator, 2)
	song = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		artist = strings.TrimSpace(parts[1])
	}
	return song, artist
}

// DisplayMetadata renders raw metadata for humans: the separator reads as a
// plain "by".
func DisplayMetadata(meta string) string {
	return strings.TrimSpace(strings.ReplaceAll(meta, metaSeparator, "by"))
}
