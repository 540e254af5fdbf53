package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
)

func TestDefault_IsValid(t *testing.T) {
	c := catalog.Default()
	require.NotNil(t, c)

	assert.NotEmpty(t, c.AllFish())
	assert.NotEmpty(t, c.Rods())
	assert.NotEmpty(t, c.Reels())
	assert.NotEmpty(t, c.Lures())
	assert.NotEmpty(t, c.Lines())

	lake, ok := c.Scene("lake")
	require.True(t, ok)
	assert.Equal(t, 0, lake.UnlockCost)
	assert.Equal(t, catalog.Freshwater, lake.Type)

	nylon, ok := c.Line("nylon")
	require.True(t, ok)
	assert.Equal(t, 50.0, nylon.Strength)
	assert.Equal(t, 100.0, nylon.Durability)

	k := c.Constants()
	assert.Equal(t, 100, k.MaxLevel)
	assert.Equal(t, 1000, k.ExpPerLevel)
	assert.Equal(t, 95.0, k.TensionBreakThreshold)
	assert.Equal(t, 3, k.SeasonLength)
}

func TestDefault_MultiplierTables(t *testing.T) {
	c := catalog.Default()
	cases := map[string]float64{"sunny": 1.0, "cloudy": 0.9, "rainy": 1.3, "windy": 0.7, "storm": 1.5}
	for id, want := range cases {
		w, ok := c.Weather(id)
		require.True(t, ok, id)
		assert.Equal(t, want, w.BiteMultiplier, id)
	}
	periods := map[string]float64{"dawn": 1.2, "day": 1.0, "dusk": 1.3, "night": 1.1}
	for id, want := range periods {
		p, ok := c.Period(id)
		require.True(t, ok, id)
		assert.Equal(t, want, p.BiteMultiplier, id)
	}
	seasons := map[string]float64{"spring": 1.1, "summer": 1.0, "autumn": 1.2, "winter": 0.8}
	for id, want := range seasons {
		s, ok := c.Season(id)
		require.True(t, ok, id)
		assert.Equal(t, want, s.BiteMultiplier, id)
	}
	assert.Equal(t, 10.0, c.RarityWeight(catalog.RarityCommon))
	assert.Equal(t, 1.0, c.RarityWeight(catalog.RarityLegendary))
	assert.Equal(t, 0.0, c.RarityWeight("mythic"))
}

func TestItem_ResolvesPerSlot(t *testing.T) {
	c := catalog.Default()

	it, ok := c.Item(catalog.SlotRod, "carbon_rod")
	require.True(t, ok)
	assert.Equal(t, catalog.SlotRod, it.Slot())
	assert.Equal(t, 1200, it.Price())

	it, ok = c.Item(catalog.SlotLure, "popper")
	require.True(t, ok)
	lure, isLure := it.(catalog.Lure)
	require.True(t, isLure)
	assert.Equal(t, catalog.LureSurface, lure.Type)

	_, ok = c.Item(catalog.SlotReel, "carbon_rod")
	assert.False(t, ok, "ids are scoped to their slot")
	_, ok = c.Item("hat", "carbon_rod")
	assert.False(t, ok)
}

func TestParse_RejectsUnknownFishReference(t *testing.T) {
	doc := minimalDocument()
	doc.Scenes[0].RareFish = []int{99}
	_, err := catalog.New(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown fish 99")
}

func TestParse_RejectsDuplicateIDs(t *testing.T) {
	doc := minimalDocument()
	doc.Rods = append(doc.Rods, doc.Rods[0])
	_, err := catalog.New(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate rod id "r1"`)
}

func TestParse_CollectsAllViolations(t *testing.T) {
	doc := minimalDocument()
	doc.Fish[0].MinSize = 0
	doc.Lures[0].Durability = 0
	doc.Constants.ExpPerLevel = 0
	_, err := catalog.New(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size range")
	assert.Contains(t, err.Error(), "durability must be in")
	assert.Contains(t, err.Error(), "exp_per_level")
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := catalog.Parse([]byte("fish: [:"))
	assert.Error(t, err)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := `
fish:
  - {id: 1, name: Perch, rarity: common, min_size: 0.1, max_size: 1, base_value: 10, struggle: 2, speed: 2}
rods: [{id: r, name: Rod, cost: 0, accuracy: 50, casting_distance: 40}]
reels: [{id: l, name: Reel, cost: 0, speed: 3, smoothness: 3, drag: 3}]
lures: [{id: s, name: Spoon, type: metal, cost: 0, durability: 100, effectiveness: {freshwater: 1, saltwater: 1}}]
lines: [{id: n, name: Nylon, cost: 0, strength: 50, durability: 100}]
scenes: [{id: pond, name: Pond, type: freshwater, common_fish: [1]}]
weather: [{id: sunny, name: Sunny, bite_multiplier: 1}]
seasons: [{id: spring, name: Spring, bite_multiplier: 1, base_temperature: 15}]
constants: {max_level: 10, exp_per_level: 100, season_length: 3, weather_change_interval: 60}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := catalog.Load(path)
	require.NoError(t, err)
	pond, ok := c.Scene("pond")
	require.True(t, ok)
	fish := c.SceneFish(pond)
	require.Len(t, fish, 1)
	assert.Equal(t, "Perch", fish[0].Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := catalog.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFish_ActiveIn(t *testing.T) {
	f := catalog.Fish{ActiveSeasons: []string{"summer"}, ActiveTime: []string{"dusk", "night"}}
	assert.True(t, f.ActiveIn("summer", "dusk"))
	assert.False(t, f.ActiveIn("winter", "dusk"))
	assert.False(t, f.ActiveIn("summer", "day"))

	always := catalog.Fish{}
	assert.True(t, always.ActiveIn("winter", "night"))
}

func TestScene_FishIDsDeduplicates(t *testing.T) {
	s := catalog.Scene{CommonFish: []int{1, 2}, RareFish: []int{2, 3}, LegendaryFish: []int{3, 4}}
	assert.Equal(t, []int{1, 2, 3, 4}, s.FishIDs())
}

func TestScene_BiteRateDefaultsToOne(t *testing.T) {
	s := catalog.Scene{WeatherEffects: map[string]catalog.WeatherEffect{"rainy": {BiteRate: 1.2}}}
	assert.Equal(t, 1.2, s.BiteRate("rainy"))
	assert.Equal(t, 1.0, s.BiteRate("sunny"))
}

func TestRareSpecies_OnlyRareAndAbove(t *testing.T) {
	c := catalog.Default()
	ids := c.RareSpecies()
	require.NotEmpty(t, ids)
	for _, id := range ids {
		f, ok := c.Fish(id)
		require.True(t, ok)
		assert.GreaterOrEqual(t, f.Rarity.Tier(), catalog.RarityRare.Tier())
	}
}

// Property: every scene of the default catalog resolves its whole whitelist.
func TestDefault_SceneWhitelistResolves(t *testing.T) {
	c := catalog.Default()
	scenes := c.Scenes()
	rapid.Check(t, func(rt *rapid.T) {
		s := scenes[rapid.IntRange(0, len(scenes)-1).Draw(rt, "scene")]
		assert.Len(rt, c.SceneFish(&s), len(s.FishIDs()))
	})
}

func TestEffectiveness_For(t *testing.T) {
	e := catalog.Effectiveness{Freshwater: 1.2, Saltwater: 0.8}
	assert.Equal(t, 1.2, e.For(catalog.Freshwater))
	assert.Equal(t, 0.8, e.For(catalog.Saltwater))
	assert.Equal(t, 0.0, e.For("lava"))
}

func minimalDocument() catalog.Document {
	return catalog.Document{
		Fish:      []catalog.Fish{{ID: 1, Name: "Perch", Rarity: catalog.RarityCommon, MinSize: 0.1, MaxSize: 1, BaseValue: 10}},
		Rods:      []catalog.Rod{{ID: "r1", Name: "Rod"}},
		Reels:     []catalog.Reel{{ID: "l1", Name: "Reel"}},
		Lures:     []catalog.Lure{{ID: "s1", Name: "Spoon", Type: catalog.LureMetal, Durability: 100}},
		Lines:     []catalog.Line{{ID: "n1", Name: "Nylon", Strength: 50, Durability: 100}},
		Scenes:    []catalog.Scene{{ID: "pond", Name: "Pond", Type: catalog.Freshwater, CommonFish: []int{1}}},
		Weather:   []catalog.WeatherType{{ID: "sunny", Name: "Sunny", BiteMultiplier: 1}},
		Seasons:   []catalog.Season{{ID: "spring", Name: "Spring", BiteMultiplier: 1}},
		Constants: catalog.Constants{MaxLevel: 10, ExpPerLevel: 100, SeasonLength: 3, WeatherChangeInterval: 60},
	}
}
