package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeKeys(t *testing.T) {
	assert.Equal(t, "ranking:international", InternationalKey())
	assert.Equal(t, "ranking:national:PE", NationalKey("PE"))
	assert.Equal(t, "ranking:state:PE:Lima", StateKey("PE", "Lima"))
	assert.Equal(t, "ranking:city:PE:Lima:Lima", CityKey("PE", "Lima", "Lima"))
}

func TestStaleKeys(t *testing.T) {
	boards := map[string][]BoardMember{
		InternationalKey():            {{UserId: "u-1", Rank: 1}},
		NationalKey("PE"):             {{UserId: "u-1", Rank: 1}},
		CityKey("PE", "Lima", "Lima"): {{UserId: "u-1", Rank: 1}},
	}

	t.Run("vanished boards are reported", func(t *testing.T) {
		// u-1 moved from AR to PE, so every AR board lost its last member.
		known := []string{
			InternationalKey(),
			NationalKey("AR"),
			CityKey("AR", "CABA", "Buenos Aires"),
		}

		assert.ElementsMatch(t,
			[]string{NationalKey("AR"), CityKey("AR", "CABA", "Buenos Aires")},
			staleKeys(known, boards))
	})

	t.Run("unchanged board set has no stale keys", func(t *testing.T) {
		known := []string{InternationalKey(), NationalKey("PE")}
		assert.Empty(t, staleKeys(known, boards))
	})

	t.Run("fresh cache has no stale keys", func(t *testing.T) {
		assert.Empty(t, staleKeys(nil, boards))
	})
}
