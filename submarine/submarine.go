// Package submarine implements the minimal USER→LP publish/fetch channel:
// USER exposes its SubmarineData over a tiny HTTP endpoint once,
// after FUNDING_CONFIRMED; LP polls it until ready. Grounded on the same
// net/http primitives the rln package uses for its HTTP facade, since
// chantools carries no analogous server/client pair of its own.
package submarine

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lightninglabs/thunderswap/swap"
)

// Publisher serves the USER's SubmarineData to the LP once it is ready.
// Before Publish is called, every request receives a 503 "not ready".
type Publisher struct {
	mu     sync.RWMutex
	data   *swap.SubmarineData
	server *http.Server
}

// NewPublisher builds a Publisher that will listen on the given port once
// Start is called.
func NewPublisher(port uint16) *Publisher {
	p := &Publisher{}
	mux := http.NewServeMux()
	mux.HandleFunc("/submarine-data", p.handle)
	p.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	return p
}

func (p *Publisher) handle(w http.ResponseWriter, r *http.Request) {
	p.mu.RLock()
	data := p.data
	p.mu.RUnlock()

	if data == nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// Start begins serving in the background. It waits up to 100ms and returns
// the error if the server fails to start in that time (for example, the
// port is taken); otherwise it returns nil without further checking that
// the listener is up.
func (p *Publisher) Start() error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- p.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return swap.Wrap(swap.KindInternalError, err,
				"starting submarine-data server")
		}
	case <-time.After(100 * time.Millisecond):
	}
	return nil
}

// Publish makes data available to fetchers. A later call replaces the
// record being served; the USER flow calls it once, after
// FUNDING_CONFIRMED.
func (p *Publisher) Publish(data swap.SubmarineData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = &data
}

// Shutdown stops the HTTP server.
func (p *Publisher) Shutdown() error {
	return p.server.Close()
}

// Fetcher polls a Publisher's HTTP endpoint for a ready SubmarineData.
type Fetcher struct {
	BaseURL string
	HTTP    *http.Client
}

// NewFetcher builds a Fetcher pointed at the USER's comm URL (
// USER_COMM_URL).
func NewFetcher(baseURL string) *Fetcher {
	return &Fetcher{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch performs a single fetch attempt. ready==false with a nil error
// means the data isn't published yet; callers poll using the LP flow's
// AWAITING_DATA loop.
func (f *Fetcher) Fetch() (data *swap.SubmarineData, ready bool, err error) {
	resp, err := f.HTTP.Get(f.BaseURL + "/submarine-data")
	if err != nil {
		return nil, false, swap.Wrap(swap.KindNetworkTimeout, err,
			"fetching submarine data")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, false, swap.New(swap.KindNetworkTimeout,
			"submarine-data endpoint returned %d: %s",
			resp.StatusCode, string(body))
	}

	var d swap.SubmarineData
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return nil, false, swap.Wrap(swap.KindInternalError, err,
			"decoding submarine data")
	}
	return &d, true, nil
}
