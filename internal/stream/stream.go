// Package stream polls an Icecast status page for stream health, the
// currently playing song, and listener counts.
//
// Icecast renders one block of <td class="streamdata"> cells per encoding;
// the last cell of each block carries the song metadata pushed by the
// encoder. The station runs several encodings of the same feed, so the last
// cell on the page is taken as authoritative.
package stream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

// ErrNoData means the status page answered but carried no streamdata cells:
// Icecast is up, no encoder is feeding it.
var ErrNoData = errors.New("no data read from icecast server")

// Counts are listener totals summed across encodings.
type Counts struct {
	Current int
	Peak    int
}

type Client struct {
	url string
	hc  *http.Client
	log logx.Logger
}

// New builds a client for one Icecast status page. The timeout covers the
// whole request; connection establishment is additionally capped so a dead
// host fails fast.
func New(url string, timeout time.Duration, log logx.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	return &Client{
		url: url,
		hc: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:           dialer.DialContext,
				ResponseHeaderTimeout: 10 * time.Second,
			},
		},
		log: log,
	}
}

// Ping fetches the status page and returns the current song metadata.
// A nil error means the stream is online. The song string keeps the raw
// "__by__" separator convention used by the station's encoders.
func (c *Client) Ping(ctx context.Context) (string, error) {
	page, err := c.fetch(ctx)
	if err != nil {
		return "", err
	}
	if len(page.streamdata) == 0 {
		return "", ErrNoData
	}
	return strings.TrimSpace(page.streamdata[len(page.streamdata)-1]), nil
}

// Listeners sums current and peak listener counts across encodings.
func (c *Client) Listeners(ctx context.Context) (Counts, error) {
	page, err := c.fetch(ctx)
	if err != nil {
		return Counts{}, err
	}
	var counts Counts
	for i, cell := range page.cells {
		if i+1 >= len(page.cells) {
			break
		}
		switch {
		case strings.Contains(cell, "Current Listeners:"):
			if n, err := strconv.Atoi(strings.TrimSpace(page.cells[i+1])); err == nil {
				counts.Current += n
			}
		case strings.Contains(cell, "Peak Listeners:"):
			if n, err := strconv.Atoi(strings.TrimSpace(page.cells[i+1])); err == nil {
				counts.Peak += n
			}
		}
	}
	return counts, nil
}

type statusPage struct {
	cells      []string // every <td> text, document order
	streamdata []string // <td class="streamdata"> texts
}

func (c *Client) fetch(ctx context.Context) (*statusPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("icecast request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("icecast request: unexpected status %s", resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("icecast page parse: %w", err)
	}
	page := &statusPage{}
	collectCells(doc, page)
	c.log.Trace("status page fetched",
		logx.Int("cells", len(page.cells)),
		logx.Int("streamdata", len(page.streamdata)))
	return page, nil
}

func collectCells(n *html.Node, page *statusPage) {
	if n.Type == html.ElementNode && n.Data == "td" {
		text := strings.TrimSpace(nodeText(n))
		page.cells = append(page.cells, text)
		for _, a := range n.Attr {
			if a.Key == "class" && hasClass(a.Val, "streamdata") {
				page.streamdata = append(page.streamdata, text)
				break
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectCells(c, page)
	}
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}

func hasClass(attr, class string) bool {
	for _, f := range strings.Fields(attr) {
		if f == class {
			return true
		}
	}
	return false
}
