package genius

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Verdict is the outcome of a lyric check.
type Verdict int

const (
	// VerdictFlagged means the lyrics matched the profanity list.
	VerdictFlagged Verdict = iota
	// VerdictClean means the lyrics were checked and nothing matched.
	VerdictClean
	// VerdictNotFound means the song could not be located, so nothing was
	// checked. Treated as clean: a missing lyric page is not evidence.
	VerdictNotFound
)

// Report is the DJ-facing result of looking up and screening one song.
type Report struct {
	Song    string
	Artist  string
	Lyrics  string
	Verdict Verdict
	Flagged []string
}

// Clean reports whether the song may air without review.
func (r Report) Clean() bool { return r.Verdict != VerdictFlagged }

// String renders the report as posted to Slack and written next to the song
// log for the DJ to read.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Song   Name: %s\n", r.Song)
	fmt.Fprintf(&b, "Song Artist: %s\n\n", r.Artist)
	switch r.Verdict {
	case VerdictNotFound:
		b.WriteString("Song Lyrics Not Found\n")
	case VerdictFlagged:
		fmt.Fprintf(&b, "FAIL Profanity Test: Song Contains: %s\n", strings.Join(r.Flagged, ", "))
	default:
		b.WriteString("PASS Profanity Test\n")
	}
	if r.Lyrics != "" {
		b.WriteString("\nSong Lyrics: ")
		b.WriteString(r.Lyrics)
	}
	return b.String()
}

// LoadProfanity reads a word list, one word per line. Blank lines and lines
// starting with '#' are skipped. A larger or format-appropriate list can be
// swapped in without code changes.
func LoadProfanity(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("profanity list: %w", err)
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		words = append(words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("profanity list: %w", err)
	}
	return words, nil
}

// Screen checks lyrics against a bad-word list and returns the offending
// words in order of appearance. Words are stemmed so "****ing" matches
// "****"; compound or embedded profanity is only caught if the compound form
// is itself on the list.
func Screen(lyrics string, badWords []string) []string {
	bad := make(map[string]struct{}, len(badWords))
	for _, w := range badWords {
		bad[strings.ToLower(w)] = struct{}{}
	}

	var found []string
	for _, tok := range strings.Fields(lyrics) {
		w := strings.ToLower(strings.Trim(tok, "!,.?\"'()[]*"))
		if w == "" {
			continue
		}
		if _, ok := bad[stem(w)]; ok {
			found = append(found, w)
		}
	}
	return found
}

// suffixes are tried longest-first so "ings" strips before "s".
var suffixes = []string{"ings", "ing", "in'", "ers", "er", "ed", "es", "s"}

// stem crudely reduces a word to the form the profanity list carries. The
// list holds root forms, so stripping a common suffix is enough for the
// inflections that show up in lyrics.
func stem(w string) string {
	for _, suf := range suffixes {
		if strings.HasSuffix(w, suf) && len(w)-len(suf) >= 3 {
			return w[:len(w)-len(suf)]
		}
	}
	return w
}

// Check runs the full pipeline for one song: find it, pull lyrics, screen
// them. A song that cannot be found yields a not-found report and no error;
// transport and API failures are returned for the caller to log.
func (c *Client) Check(ctx context.Context, song, artist string, badWords []string) (Report, error) {
	rep := Report{Song: song, Artist: artist}

	hit, err := c.Search(ctx, song, artist)
	if errors.Is(err, ErrSongNotFound) {
		rep.Verdict = VerdictNotFound
		return rep, nil
	}
	if err != nil {
		return rep, err
	}

	lyrics, err := c.Lyrics(ctx, hit)
	if errors.Is(err, ErrSongNotFound) {
		rep.Verdict = VerdictNotFound
		return rep, nil
	}
	if err != nil {
		return rep, err
	}

	rep.Lyrics = lyrics
	rep.Flagged = Screen(lyrics, badWords)
	if len(rep.Flagged) > 0 {
		rep.Verdict = VerdictFlagged
	} else {
		rep.Verdict = VerdictClean
	}
	return rep, nil
}
