package light

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultDirection is the direction of a light created without WithDirection: mostly downward,
// slanted so that shadows have visible length.
var DefaultDirection = mgl32.Vec3{-0.4, -1, -0.3}.Normalize()

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu *sync.Mutex

	direction    mgl32.Vec3
	color        mgl32.Vec3
	intensity    float32
	ambient      float32
	enabled      bool
	castsShadows bool
}

// Light is a directional light: it has no position, only a direction in which its rays travel.
// The shadow coordinator places its light camera opposite this direction.
type Light interface {
	// Direction returns the normalized direction the light travels in.
	//
	// Returns:
	//   - mgl32.Vec3: the unit direction
	Direction() mgl32.Vec3

	// SetDirection normalizes and stores a new direction. A zero vector is ignored.
	//
	// Parameters:
	//   - dir: the direction the light travels in
	SetDirection(dir mgl32.Vec3)

	// Rotate turns the direction around an axis.
	//
	// Parameters:
	//   - axis: the rotation axis
	//   - radians: the rotation angle
	Rotate(axis mgl32.Vec3, radians float32)

	// Color returns the RGB colour of the light.
	Color() mgl32.Vec3

	// Intensity returns the scalar multiplier applied to Color.
	Intensity() float32

	// Ambient returns the fraction of light that reaches fully shadowed surfaces.
	Ambient() float32

	// Enabled returns whether this light contributes to shading.
	Enabled() bool

	// SetEnabled toggles the light.
	SetEnabled(enabled bool)

	// CastsShadows returns whether the shadow pass runs for this light.
	CastsShadows() bool
}

var _ Light = &lightImpl{}

// NewLight creates a white directional light travelling along DefaultDirection.
//
// Parameters:
//   - options: a variadic list of LightBuilderOption functions
//
// Returns:
//   - Light: the light
func NewLight(options ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:           &sync.Mutex{},
		direction:    DefaultDirection,
		color:        mgl32.Vec3{1, 1, 1},
		intensity:    1,
		ambient:      0.15,
		enabled:      true,
		castsShadows: true,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.direction
}

func (l *lightImpl) SetDirection(dir mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.direction = common.NormalizeOr(dir, l.direction)
}

func (l *lightImpl) Rotate(axis mgl32.Vec3, radians float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	axis = common.NormalizeOr(axis, mgl32.Vec3{})
	if axis.Len() == 0 {
		return
	}
	l.direction = mgl32.QuatRotate(radians, axis).Rotate(l.direction).Normalize()
}

func (l *lightImpl) Color() mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.intensity
}

func (l *lightImpl) Ambient() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ambient
}

func (l *lightImpl) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

func (l *lightImpl) CastsShadows() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.castsShadows
}
