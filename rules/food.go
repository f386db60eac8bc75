package rules

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"

	"github.com/zyedidia/generic/mapset"

	"github.com/brensch/snekhunt/game"
)

// FoodSettings mirrors the official server's food knobs.
// MinimumFood is topped up every turn; FoodSpawnChance is the percent chance
// of one extra food per turn.
type FoodSettings struct {
	MinimumFood     int
	FoodSpawnChance int
}

// DefaultFoodSettings are the standard ruleset values.
var DefaultFoodSettings = FoodSettings{MinimumFood: 1, FoodSpawnChance: 15}

// NoFood disables spawning.
var NoFood = FoodSettings{}

// ApplyFoodSettings tops up food on a fresh board.
func ApplyFoodSettings(state *game.GameState, rng *rand.Rand, settings FoodSettings) {
	applyFoodRules(state, rng, settings, 0x494e4954) // "INIT"
}

func applyFoodRules(state *game.GameState, rng *rand.Rand, settings FoodSettings, salt uint64) {
	if state == nil || state.Width <= 0 || state.Height <= 0 {
		return
	}
	chance := max(0, min(settings.FoodSpawnChance, 100))
	deficit := max(0, settings.MinimumFood-len(state.Food))

	if rng == nil {
		seed := int64(boardHash(state, salt))
		if seed == 0 {
			seed = 1
		}
		rng = rand.New(rand.NewSource(seed))
	}
	extra := chance > 0 && rng.Intn(100) < chance

	toSpawn := deficit
	if extra {
		toSpawn++
	}
	if toSpawn == 0 {
		return
	}

	occupied := mapset.New[int]()
	for _, s := range state.Snakes {
		for _, p := range s.Body {
			if state.InBounds(p) {
				occupied.Put(state.Key(p))
			}
		}
	}
	for _, f := range state.Food {
		occupied.Put(state.Key(f))
	}

	free := make([]game.Point, 0, int(state.Width*state.Height)-occupied.Size())
	for y := int32(0); y < state.Height; y++ {
		for x := int32(0); x < state.Width; x++ {
			p := game.Point{X: x, Y: y}
			if !occupied.Has(state.Key(p)) {
				free = append(free, p)
			}
		}
	}

	for ; toSpawn > 0 && len(free) > 0; toSpawn-- {
		i := rng.Intn(len(free))
		state.Food = append(state.Food, free[i])
		free[i] = free[len(free)-1]
		free = free[:len(free)-1]
	}
}

// boardHash seeds spawning when no rng is supplied so that the same board
// always grows the same food.
func boardHash(state *game.GameState, salt uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}
	put(uint64(uint32(state.Width)) | uint64(uint32(state.Height))<<32)
	put(uint64(uint32(state.Turn)))
	put(salt)
	put(uint64(len(state.Food)))
	for _, s := range state.Snakes {
		if len(s.Body) == 0 {
			continue
		}
		_, _ = h.Write([]byte(s.Id))
		head := s.Head()
		put(uint64(uint32(head.X))<<32 | uint64(uint32(head.Y)))
	}
	return h.Sum64()
}
