package genius

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

func TestSimilarity(t *testing.T) {
	t.Parallel()
	if got := Similarity("apples", "apples"); got != 1 {
		t.Fatalf("identical strings = %v, want 1", got)
	}
	if got := Similarity("Don't Stop Me Now!", "dont stop me now"); got != 1 {
		t.Fatalf("normalized match = %v, want 1", got)
	}
	if got := Similarity("apples", "oranges"); got >= 0.5 {
		t.Fatalf("unrelated strings = %v, want < 0.5", got)
	}
	if close, far := Similarity("Kendrick Lamar", "Kendrick"), Similarity("Kendrick Lamar", "Aphex Twin"); close <= far {
		t.Fatalf("prefix should outscore unrelated: %v <= %v", close, far)
	}
	if got := Similarity("", ""); got != 0 {
		t.Fatalf("empty strings = %v, want 0", got)
	}
}

func TestScreen(t *testing.T) {
	t.Parallel()
	bad := []string{"dang", "heck"}

	found := Screen("Well dang, that was a Danging heck of a show", bad)
	want := []string{"dang", "danging", "heck"}
	if len(found) != len(want) {
		t.Fatalf("Screen = %v, want %v", found, want)
	}
	for i := range want {
		if found[i] != want[i] {
			t.Fatalf("Screen = %v, want %v", found, want)
		}
	}

	if found := Screen("a perfectly clean set of lyrics", bad); len(found) != 0 {
		t.Fatalf("clean lyrics flagged: %v", found)
	}
}

func TestLoadProfanity(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "profanity.txt")
	content := "dang\n\n# comment line\nHECK\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	words, err := LoadProfanity(path)
	if err != nil {
		t.Fatalf("LoadProfanity: %v", err)
	}
	if len(words) != 2 || words[0] != "dang" || words[1] != "heck" {
		t.Fatalf("LoadProfanity = %v", words)
	}

	if _, err := LoadProfanity(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReportString(t *testing.T) {
	t.Parallel()
	flagged := Report{
		Song:    "Cool Song",
		Artist:  "Cool Artist",
		Verdict: VerdictFlagged,
		Flagged: []string{"dang", "heck"},
		Lyrics:  "some lyrics",
	}
	s := flagged.String()
	for _, want := range []string{
		"Song   Name: Cool Song",
		"Song Artist: Cool Artist",
		"FAIL Profanity Test: Song Contains: dang, heck",
		"Song Lyrics: some lyrics",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("report missing %q:\n%s", want, s)
		}
	}
	if flagged.Clean() {
		t.Fatal("flagged report reported clean")
	}

	notFound := Report{Song: "Mystery", Verdict: VerdictNotFound}
	if !strings.Contains(notFound.String(), "Song Lyrics Not Found") {
		t.Fatalf("not-found report: %q", notFound.String())
	}
	if !notFound.Clean() {
		t.Fatal("not-found report must count as clean")
	}

	clean := Report{Song: "Nice", Verdict: VerdictClean}
	if !strings.Contains(clean.String(), "PASS Profanity Test") {
		t.Fatalf("clean report: %q", clean.String())
	}
}

func newTestServer(t *testing.T, lyricsHTML string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprintf(w, `{"response":{"hits":[
			{"result":{"title":"Cool Song","api_path":"/songs/1","url":%q,
			 "primary_artist":{"name":"Cool Artist"}}},
			{"result":{"title":"Unrelated","api_path":"/songs/2","url":%q,
			 "primary_artist":{"name":"Somebody Else"}}}
		]}}`, srv.URL+"/lyricpage", srv.URL+"/other")
	})
	mux.HandleFunc("/lyricpage", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(lyricsHTML))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchPicksBestHit(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "")
	c := New("test-token", time.Second, logx.Nop(), WithBaseURL(srv.URL))

	hit, err := c.Search(context.Background(), "Cool Song", "Cool Artist")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if hit.Title != "Cool Song" || hit.Artist != "Cool Artist" {
		t.Fatalf("Search hit = %+v", hit)
	}
}

func TestSearchNotFound(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "")
	c := New("test-token", time.Second, logx.Nop(), WithBaseURL(srv.URL))

	_, err := c.Search(context.Background(), "zzzzzzz", "qqqqqqq")
	if !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("Search error = %v, want ErrSongNotFound", err)
	}
}

func TestCheckFlagsDirtySong(t *testing.T) {
	t.Parallel()
	page := `<html><body>
		<div class="lyrics">Well dang that was loud<br>so very loud</div>
		<script>ignored()</script>
	</body></html>`
	srv := newTestServer(t, page)
	c := New("test-token", time.Second, logx.Nop(), WithBaseURL(srv.URL))

	rep, err := c.Check(context.Background(), "Cool Song", "Cool Artist", []string{"dang"})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if rep.Clean() {
		t.Fatal("expected flagged report")
	}
	if len(rep.Flagged) != 1 || rep.Flagged[0] != "dang" {
		t.Fatalf("Flagged = %v", rep.Flagged)
	}
	if !strings.Contains(rep.Lyrics, "so very loud") {
		t.Fatalf("lyrics not extracted: %q", rep.Lyrics)
	}
	if strings.Contains(rep.Lyrics, "ignored()") {
		t.Fatal("script text leaked into lyrics")
	}
}

func TestCheckNotFoundIsClean(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "")
	c := New("test-token", time.Second, logx.Nop(), WithBaseURL(srv.URL))

	rep, err := c.Check(context.Background(), "zzzzzzz", "qqqqqqq", nil)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if rep.Verdict != VerdictNotFound || !rep.Clean() {
		t.Fatalf("report = %+v, want not-found and clean", rep)
	}
}

func TestCheckDataLyricsContainer(t *testing.T) {
	t.Parallel()
	page := `<html><body><div data-lyrics-container="true">modern markup lyrics</div></body></html>`
	srv := newTestServer(t, page)
	c := New("test-token", time.Second, logx.Nop(), WithBaseURL(srv.URL))

	rep, err := c.Check(context.Background(), "Cool Song", "Cool Artist", nil)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !strings.Contains(rep.Lyrics, "modern markup lyrics") {
		t.Fatalf("lyrics = %q", rep.Lyrics)
	}
}
