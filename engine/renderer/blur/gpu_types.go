package blur

import (
	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/chewxy/math32"
)

// Taps is the number of distinct weights; the kernel spans 2*Taps-1 texels.
const Taps = 8

// ParamsSize is the byte size of the blur_params uniform.
const ParamsSize = 48

// Params is the GPU-side blur_params uniform for one direction.
//
//	direction: vec2<f32>           offset 0
//	_pad:      vec2<f32>           offset 8
//	weights:   array<vec4<f32>, 2> offset 16
type Params struct {
	Direction [2]float32
	Weights   [Taps]float32
}

// Marshal packs the params into the 48-byte uniform layout.
//
// Returns:
//   - []byte: the little-endian bytes
func (p Params) Marshal() []byte {
	values := make([]float32, 0, ParamsSize/4)
	values = append(values, p.Direction[0], p.Direction[1], 0, 0)
	values = append(values, p.Weights[:]...)
	return common.Float32Bytes(values)
}

// ComputeWeights builds the one-sided Gaussian weight table for sigma. Weights follow
// exp(-i²/2σ²) and are normalised so that w[0] + 2*(w[1]+...+w[7]) = 1.
//
// Parameters:
//   - sigma: the standard deviation in texels, must be positive
//
// Returns:
//   - [Taps]float32: the weights, w[0] is the centre tap
func ComputeWeights(sigma float32) [Taps]float32 {
	if !(sigma > 0) {
		common.Fatalf("blur: sigma must be positive, got %g", sigma)
	}
	var w [Taps]float32
	twoSigmaSq := 2 * sigma * sigma
	var sum float32
	for i := range Taps {
		x := float32(i)
		w[i] = math32.Exp(-(x * x) / twoSigmaSq)
		if i == 0 {
			sum += w[i]
		} else {
			sum += 2 * w[i]
		}
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}
