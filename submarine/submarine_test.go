package submarine

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/lightninglabs/thunderswap/swap"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) uint16 {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return uint16(l.Addr().(*net.TCPAddr).Port)
}

func TestFetchBeforePublishIsNotReady(t *testing.T) {
	port := freePort(t)
	pub := NewPublisher(port)
	require.NoError(t, pub.Start())
	defer pub.Shutdown()

	fetcher := NewFetcher(fmt.Sprintf("http://127.0.0.1:%d", port))
	data, ready, err := fetcher.Fetch()
	require.NoError(t, err)
	require.False(t, ready)
	require.Nil(t, data)
}

func TestPublishThenFetchRoundTrip(t *testing.T) {
	port := freePort(t)
	pub := NewPublisher(port)
	require.NoError(t, pub.Start())
	defer pub.Shutdown()

	want := swap.SubmarineData{
		Invoice:             "lnbc1...",
		FundingTxid:         "deadbeef",
		FundingVout:         1,
		UserRefundPubkeyHex: "02abcd",
		TLock:               700000,
	}
	pub.Publish(want)

	fetcher := NewFetcher(fmt.Sprintf("http://127.0.0.1:%d", port))

	var got *swap.SubmarineData
	require.Eventually(t, func() bool {
		var err error
		var ready bool
		got, ready, err = fetcher.Fetch()
		return err == nil && ready
	}, 2*time.Second, 10*time.Millisecond)

	require.Equal(t, want, *got)
}
