// Package tunein pushes now-playing metadata to the TuneIn AIR API so
// listeners on the TuneIn apps see song, artist, and album art in real time.
//
// See http://tunein.com/broadcasters/api/ for how to obtain partner
// credentials; the station ID is visible in the station's TuneIn URL.
package tunein

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

const defaultBaseURL = "http://air.radiotime.com/Playing.ashx"

// Updater is the capability the now-playing task depends on.
type Updater interface {
	Update(ctx context.Context, song, artist string) error
}

type Client struct {
	baseURL    string
	stationID  string
	partnerID  string
	partnerKey string
	hc         *http.Client
	log        logx.Logger
}

type Option func(*Client)

// WithBaseURL overrides the AIR endpoint (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func New(stationID, partnerID, partnerKey string, log logx.Logger, opts ...Option) *Client {
	if log.IsZero() {
		log = logx.Nop()
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		stationID:  stationID,
		partnerID:  partnerID,
		partnerKey: partnerKey,
		hc:         &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Update posts one song/artist pair. The AIR API is a bare GET; a 2xx answer
// is success, anything else is an error for the caller to log.
func (c *Client) Update(ctx context.Context, song, artist string) error {
	song = strings.TrimSpace(song)
	if song == "" {
		return fmt.Errorf("tunein: song title required")
	}

	q := url.Values{}
	q.Set("partnerId", c.partnerID)
	q.Set("partnerKey", c.partnerKey)
	q.Set("id", c.stationID)
	q.Set("title", song)
	if artist = strings.TrimSpace(artist); artist != "" {
		q.Set("artist", artist)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("tunein update: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("tunein update: unexpected status %s", resp.Status)
	}
	c.log.Debug("tunein metadata updated",
		logx.String("song", song),
		logx.String("artist", artist))
	return nil
}
