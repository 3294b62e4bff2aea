package stream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	logx "github.com/kteq-fm/teqbot/pkg/logx"
)

const statusPageHTML = `<html><body>
<table>
<tr><td>Stream Title:</td><td class="streamdata">KTEQ-FM</td></tr>
<tr><td>Current Listeners:</td><td>7</td></tr>
<tr><td>Peak Listeners:</td><td>23</td></tr>
<tr><td>Current Song:</td><td class="streamdata">Cool Song __by__ Cool Artist</td></tr>
</table>
<table>
<tr><td>Stream Title:</td><td class="streamdata">KTEQ-FM (low)</td></tr>
<tr><td>Current Listeners:</td><td>2</td></tr>
<tr><td>Peak Listeners:</td><td>5</td></tr>
<tr><td>Current Song:</td><td class="streamdata">Cool Song __by__ Cool Artist</td></tr>
</table>
</body></html>`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	return New(srv.URL, 5*time.Second, logx.Nop()), srv.Close
}

func TestPingReturnsLastStreamdataCell(t *testing.T) {
	t.Parallel()
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(statusPageHTML))
	})
	defer done()

	meta, err := c.Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if meta != "Cool Song __by__ Cool Artist" {
		t.Fatalf("Ping = %q", meta)
	}
}

func TestPingNoData(t *testing.T) {
	t.Parallel()
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><table><tr><td>empty</td></tr></table></body></html>`))
	})
	defer done()

	_, err := c.Ping(context.Background())
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("Ping error = %v, want ErrNoData", err)
	}
}

func TestPingBadStatus(t *testing.T) {
	t.Parallel()
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	})
	defer done()

	if _, err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestListenersSumAcrossEncodings(t *testing.T) {
	t.Parallel()
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(statusPageHTML))
	})
	defer done()

	counts, err := c.Listeners(context.Background())
	if err != nil {
		t.Fatalf("Listeners: %v", err)
	}
	if counts.Current != 9 || counts.Peak != 28 {
		t.Fatalf("Listeners = %+v, want {9 28}", counts)
	}
}

func TestSplitMetadata(t *testing.T) {
	t.Parallel()
	tests := []struct {
		meta   string
		song   string
		artist string
	}{
		{"Cool Song __by__ Cool Artist", "Cool Song", "Cool Artist"},
		{"Just A Song", "Just A Song", ""},
		{"  padded __by__  spaced  ", "padded", "spaced"},
		{"", "", ""},
	}
	for _, tt := range tests {
		song, artist := SplitMetadata(tt.meta)
		if song != tt.song || artist != tt.artist {
			t.Fatalf("SplitMetadata(%q) = (%q, %q), want (%q, %q)",
				tt.meta, song, artist, tt.song, tt.artist)
		}
	}
}

func TestDisplayMetadata(t *testing.T) {
	t.Parallel()
	got := DisplayMetadata("Cool Song __by__ Cool Artist")
	if got != "Cool Song by Cool Artist" {
		t.Fatalf("DisplayMetadata = %q", got)
	}
}

func TestDiagnosis(t *testing.T) {
	t.Parallel()
	if msg := Diagnosis(ErrNoData); !strings.Contains(msg, "No data read from Icecast server.") {
		t.Fatalf("no-data diagnosis missing cause: %q", msg)
	}
	if msg := Diagnosis(errors.New("timeout")); !strings.Contains(msg, "HTTP request timeout.") {
		t.Fatalf("timeout diagnosis missing cause: %q", msg)
	}
	for _, msg := range []string{Diagnosis(ErrNoData), Diagnosis(errors.New("x"))} {
		if !strings.HasPrefix(msg, "ALERT!! STREAM IS DOWN!!") {
			t.Fatalf("diagnosis missing alert header: %q", msg)
		}
	}
}
