package demo

import (
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"
)

// Spread of generated pins around the map centre, in degrees.
const pinSpread = 0.05

// Generate plans valid workouts around centre, followed by invalid ones.
func Generate(cfg *Config, centerLat, centerLng float64) []Plan {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))

	plans := make([]Plan, 0, cfg.Workouts+cfg.Invalid)
	for i := 0; i < cfg.Workouts; i++ {
		plans = append(plans, Plan{
			Lat:        centerLat + (rng.Float64()*2-1)*pinSpread,
			Lng:        centerLng + (rng.Float64()*2-1)*pinSpread,
			Submission: validSubmission(rng),
			Valid:      true,
			Key:        uuid.NewString(),
		})
	}
	for i := 0; i < cfg.Invalid; i++ {
		plans = append(plans, Plan{
			Lat:        centerLat,
			Lng:        centerLng,
			Submission: invalidSubmission(i),
			Key:        uuid.NewString(),
		})
	}
	return plans
}

func validSubmission(rng *rand.Rand) Submission {
	if rng.IntN(2) == 0 {
		return Submission{
			Type:     "running",
			Distance: format(1 + rng.Float64()*20),
			Duration: format(5 + rng.Float64()*120),
			Cadence:  strconv.Itoa(140 + rng.IntN(60)),
		}
	}
	return Submission{
		Type:      "cycling",
		Distance:  format(5 + rng.Float64()*80),
		Duration:  format(15 + rng.Float64()*240),
		Elevation: strconv.Itoa(rng.IntN(1500)),
	}
}

func invalidSubmission(i int) Submission {
	cases := []Submission{
		{Type: "running", Distance: "-5", Duration: "25", Cadence: "170"},
		{Type: "cycling", Distance: "abc", Duration: "60", Elevation: "10"},
		{Type: "running", Distance: "5", Duration: "25", Cadence: "0"},
		{Type: "cycling", Distance: "20", Duration: "0", Elevation: "10"},
	}
	return cases[i%len(cases)]
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
