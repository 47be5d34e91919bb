package guestmap

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/nfrund/guestmap/internal/domain"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(id string, lat, lng float64) domain.Message {
	return domain.Message{ID: id, Name: "n" + id, Message: "m" + id, Latitude: lat, Longitude: lng}
}

func TestGroupByLocation_SameCoordinatesKeepArrivalOrder(t *testing.T) {
	messages := []domain.Message{
		msg("1", 51.5, -0.1),
		msg("2", 40.7, -74.0),
		msg("3", 51.5, -0.1),
		msg("4", 51.5, -0.1),
	}

	groups := GroupByLocation(messages, CoordinateKey)

	require.Len(t, groups, 2)
	assert.Equal(t, "1", groups[0].Representative.ID)
	assert.Equal(t, []string{"3", "4"}, lo.Map(groups[0].Others, func(m domain.Message, _ int) string { return m.ID }))
	assert.Equal(t, "2", groups[1].Representative.ID)
	assert.Empty(t, groups[1].Others)
}

func TestGroupByLocation_Empty(t *testing.T) {
	assert.Empty(t, GroupByLocation(nil, CoordinateKey))
}

func TestGroupByLocation_PartitionsInput(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	coords := [][2]float64{{1, 23}, {12, 3}, {0, 0}, {51.505, -0.09}, {-33.86, 151.2}}

	for run := 0; run < 50; run++ {
		n := rng.Intn(40)
		messages := make([]domain.Message, 0, n)
		for i := 0; i < n; i++ {
			c := coords[rng.Intn(len(coords))]
			messages = append(messages, msg(fmt.Sprintf("%d-%d", run, i), c[0], c[1]))
		}

		groups := GroupByLocation(messages, CoordinateKey)

		// Groups are disjoint by key.
		keys := lo.Map(groups, func(g domain.LocationGroup, _ int) CoordinatePair {
			return CoordinateKey(g.Representative)
		})
		assert.Len(t, lo.Uniq(keys), len(groups))

		// Every message in a group shares the representative's key.
		for _, g := range groups {
			for _, other := range g.Others {
				assert.Equal(t, CoordinateKey(g.Representative), CoordinateKey(other))
			}
		}

		// The union is the input, each message exactly once.
		union := lo.FlatMap(groups, func(g domain.LocationGroup, _ int) []domain.Message { return g.Messages() })
		assert.ElementsMatch(t, messages, union)
	}
}

func TestGroupByLocation_NegativeZeroEqualsZero(t *testing.T) {
	negZero := math.Copysign(0, -1)
	groups := GroupByLocation([]domain.Message{msg("a", 0, 0), msg("b", negZero, 0)}, CoordinateKey)
	assert.Len(t, groups, 1)
}

func TestConcatenatedKey_CollidesOnAmbiguousPairs(t *testing.T) {
	a := msg("a", 1, 23)
	b := msg("b", 12, 3)

	assert.Equal(t, "123", ConcatenatedKey(a))
	assert.Equal(t, ConcatenatedKey(a), ConcatenatedKey(b))
	assert.Equal(t, "51.505-0.09", ConcatenatedKey(msg("c", 51.505, -0.09)))

	legacy := Group([]domain.Message{a, b}, true)
	require.Len(t, legacy, 1, "legacy keys merge the colliding pairs")
	assert.Equal(t, "b", legacy[0].Others[0].ID)

	structural := Group([]domain.Message{a, b}, false)
	assert.Len(t, structural, 2, "structural keys keep them apart")
}
