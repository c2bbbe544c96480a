package gen

import "github.com/ojrac/opensimplex-go"

// NoiseGenerator produces deterministic simplex noise from a seed.
// Output is clamped to [-1, 1].
type NoiseGenerator struct {
	noise opensimplex.Noise
}

// NewNoiseGenerator creates a noise generator for seed.
func NewNoiseGenerator(seed int64) *NoiseGenerator {
	return &NoiseGenerator{noise: opensimplex.New(seed)}
}

// Noise2D returns 2D simplex noise for the given coordinates.
func (ng *NoiseGenerator) Noise2D(x, y float64) float64 {
	return clamp(ng.noise.Eval2(x, y))
}

// Noise3D returns 3D simplex noise for the given coordinates.
func (ng *NoiseGenerator) Noise3D(x, y, z float64) float64 {
	return clamp(ng.noise.Eval3(x, y, z))
}

// OctaveNoise2D layers multiple octaves of 2D noise for natural-looking terrain.
func (ng *NoiseGenerator) OctaveNoise2D(x, y float64, octaves int, persistence float64) float64 {
	var total, maxVal float64
	frequency, amplitude := 1.0, 1.0

	for range octaves {
		total += ng.Noise2D(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2.0
	}
	return total / maxVal
}

// OctaveNoise3D layers multiple octaves of 3D noise.
func (ng *NoiseGenerator) OctaveNoise3D(x, y, z float64, octaves int, persistence float64) float64 {
	var total, maxVal float64
	frequency, amplitude := 1.0, 1.0

	for range octaves {
		total += ng.Noise3D(x*frequency, y*frequency, z*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2.0
	}
	return total / maxVal
}

func clamp(v float64) float64 {
	return min(max(v, -1), 1)
}
