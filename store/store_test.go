package store

import (
	"path/filepath"
	"testing"

	"github.com/lightninglabs/thunderswap/swap"
	"github.com/stretchr/testify/require"
)

func TestPutThenGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hodl_store.json")
	s, err := Open(path)
	require.NoError(t, err)

	record := swap.HodlRecord{
		PaymentHash: "abcd1234",
		Preimage:    "ef567890",
		AmountMsat:  100000,
	}
	require.NoError(t, s.Put(record))

	got, err := s.Get("abcd1234")
	require.NoError(t, err)
	require.Equal(t, record, *got)
}

func TestGetMissingRecordFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hodl_store.json")
	s, err := Open(path)
	require.NoError(t, err)

	_, err = s.Get("nonexistent")
	require.Error(t, err)

	var swapErr *swap.Error
	require.ErrorAs(t, err, &swapErr)
	require.Equal(t, swap.KindInvalidInput, swapErr.Kind)
}

func TestPutOverwritesExistingRecordForSameHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hodl_store.json")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Put(swap.HodlRecord{
		PaymentHash: "hash1", AmountMsat: 1,
	}))
	require.NoError(t, s.Put(swap.HodlRecord{
		PaymentHash: "hash1", AmountMsat: 2,
	}))

	got, err := s.Get("hash1")
	require.NoError(t, err)
	require.Equal(t, uint64(2), got.AmountMsat)
}

func TestPutPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hodl_store.json")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Put(swap.HodlRecord{PaymentHash: "hash1"}))

	s2, err := Open(path)
	require.NoError(t, err)
	got, err := s2.Get("hash1")
	require.NoError(t, err)
	require.Equal(t, "hash1", got.PaymentHash)
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "hodl_store.json")

	_, err := Open(path)
	require.NoError(t, err)
}

func TestMultipleRecordsCoexist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hodl_store.json")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Put(swap.HodlRecord{PaymentHash: "a", AmountMsat: 1}))
	require.NoError(t, s.Put(swap.HodlRecord{PaymentHash: "b", AmountMsat: 2}))

	a, err := s.Get("a")
	require.NoError(t, err)
	require.Equal(t, uint64(1), a.AmountMsat)

	b, err := s.Get("b")
	require.NoError(t, err)
	require.Equal(t, uint64(2), b.AmountMsat)
}
