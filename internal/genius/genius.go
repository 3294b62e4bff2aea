// Package genius looks up song lyrics on Genius and runs a preliminary
// profanity screen over them, producing the report that DJs and management
// read.
//
// See https://docs.genius.com/ for the API. Lyrics themselves are not served
// by the API; they are extracted from the song's public page.
package genius

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

const defaultAPIURL = "https://api.genius.com"

// ErrSongNotFound means no search hit resembled the queried song closely
// enough to trust its lyrics.
var ErrSongNotFound = errors.New("song not found on genius")

// minScore is the similarity floor for accepting a search hit. Queries come
// from DJ-typed metadata, so exact matches are rare; below this the hit is
// more likely a different song than a misspelling.
const minScore = 0.5

// Hit is one accepted search result.
type Hit struct {
	Title   string
	Artist  string
	APIPath string
	PageURL string
	Score   float64
}

type Client struct {
	apiURL string
	token  string
	hc     *http.Client
	log    logx.Logger
}

type Option func(*Client)

// WithBaseURL overrides both the API and page host (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.apiURL = u }
}

func New(token string, timeout time.Duration, log logx.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	c := &Client{
		apiURL: defaultAPIURL,
		token:  token,
		hc:     &http.Client{Timeout: timeout},
		log:    log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchResponse struct {
	Response struct {
		Hits []struct {
			Result struct {
				Title         string `json:"title"`
				APIPath       string `json:"api_path"`
				URL           string `json:"url"`
				PrimaryArtist struct {
					Name string `json:"name"`
				} `json:"primary_artist"`
			} `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

// Search queries Genius and returns the best-scoring hit, tolerating the
// misspellings and truncations typical of DJ-entered metadata.
func (c *Client) Search(ctx context.Context, song, artist string) (Hit, error) {
	q := strings.TrimSpace(song + " " + artist)
	if q == "" {
		return Hit{}, fmt.Errorf("genius search: empty query")
	}

	var sr searchResponse
	if err := c.getJSON(ctx, "/search?q="+url.QueryEscape(q), &sr); err != nil {
		return Hit{}, err
	}

	best := Hit{}
	for _, h := range sr.Response.Hits {
		r := h.Result
		score := Similarity(r.Title, song)
		if artist != "" {
			score = (score + Similarity(r.PrimaryArtist.Name, artist)) / 2
		}
		if score > best.Score {
			best = Hit{
				Title:   r.Title,
				Artist:  r.PrimaryArtist.Name,
				APIPath: r.APIPath,
				PageURL: r.URL,
				Score:   score,
			}
		}
	}
	if best.APIPath == "" || best.Score < minScore {
		return Hit{}, fmt.Errorf("%w: %q", ErrSongNotFound, q)
	}
	c.log.Debug("genius hit accepted",
		logx.String("title", best.Title),
		logx.String("artist", best.Artist),
		logx.Any("score", best.Score))
	return best, nil
}

type songResponse struct {
	Response struct {
		Song struct {
			URL  string `json:"url"`
			Path string `json:"path"`
		} `json:"song"`
	} `json:"response"`
}

// Lyrics fetches the hit's public page and extracts the lyric text.
func (c *Client) Lyrics(ctx context.Context, hit Hit) (string, error) {
	pageURL := hit.PageURL
	if pageURL == "" {
		var sr songResponse
		if err := c.getJSON(ctx, hit.APIPath, &sr); err != nil {
			return "", err
		}
		pageURL = sr.Response.Song.URL
		if pageURL == "" {
			pageURL = "https://genius.com" + sr.Response.Song.Path
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("genius lyric page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("genius lyric page: unexpected status %s", resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("genius lyric page parse: %w", err)
	}
	lyrics := extractLyrics(doc)
	if strings.TrimSpace(lyrics) == "" {
		return "", fmt.Errorf("%w: no lyrics on page %s", ErrSongNotFound, pageURL)
	}
	return lyrics, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("genius api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("genius api %s: unexpected status %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("genius api %s: decode: %w", path, err)
	}
	return nil
}

// extractLyrics pulls text from the lyric containers. Genius has shipped two
// markups over the years: a div with class "lyrics", and later divs tagged
// data-lyrics-container; both are handled.
func extractLyrics(doc *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" && isLyricsContainer(n) {
			collectText(n, &b)
			b.WriteString("\n")
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(b.String())
}

func isLyricsContainer(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key == "data-lyrics-container" {
			return true
		}
		if a.Key == "class" {
			for _, f := range strings.Fields(a.Val) {
				if f == "lyrics" {
					return true
				}
			}
		}
	}
	return false
}

// collectText flattens a node to text, skipping script blocks and turning
// <br> into newlines so word boundaries survive.
func collectText(n *html.Node, b *strings.Builder) {
	switch {
	case n.Type == html.TextNode:
		b.WriteString(n.Data)
	case n.Type == html.ElementNode && n.Data == "script":
		return
	case n.Type == html.ElementNode && n.Data == "br":
		b.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
