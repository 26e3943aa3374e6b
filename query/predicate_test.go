package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ziwon/fx-store-poc/record"
)

func TestPredicate_EmptyMatchesEverything(t *testing.T) {
	var p Predicate
	require.True(t, p.IsEmpty())
	require.True(t, p.Match(record.Record{}))
}

func TestPredicate_ANDsBounds(t *testing.T) {
	p := Predicate{
		Close:  NewBound(125000, 150000),
		Volume: NewBound(500, 1000000),
	}
	require.False(t, p.IsEmpty())

	require.True(t, p.Match(record.Record{Close: 130000, Volume: 600}))
	require.False(t, p.Match(record.Record{Close: 130000, Volume: 100})) // volume fails
	require.False(t, p.Match(record.Record{Close: 100000, Volume: 600})) // close fails
}
