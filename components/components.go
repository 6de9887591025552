// Package components holds the spatial components used by the demo systems of nucleusd.
package components

import (
	"github.com/go-gl/mathgl/mgl64"

	"pkg.world.dev/world-engine/nucleus/ecs"
	"pkg.world.dev/world-engine/nucleus/tag"
)

// Registry holds the names of every component in this package.
var Registry = tag.NewRegistry()

var (
	CameraID    = Registry.MustRegister("Camera")
	TransformID = Registry.MustRegister("Transform")
	VelocityID  = Registry.MustRegister("Velocity")
)

// Names lists the names the component identifiers are derived from.
func Names() []string {
	return Registry.Names()
}

// Camera is a perspective camera. FOV is the vertical field of view in degrees.
type Camera struct {
	FOV    float64 `json:"fov"`
	Aspect float64 `json:"aspect"`
	Near   float64 `json:"near"`
	Far    float64 `json:"far"`
}

func (Camera) ID() ecs.ComponentID { return CameraID }

// DefaultCamera mirrors the defaults of common 3D engines.
func DefaultCamera() Camera {
	return Camera{FOV: 50, Aspect: 1, Near: 0.1, Far: 2000}
}

// Projection returns the perspective projection matrix of the camera.
func (c Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// Transform places an entity in world space.
type Transform struct {
	Position mgl64.Vec3 `json:"position"`
	Rotation mgl64.Quat `json:"rotation"`
	Scale    mgl64.Vec3 `json:"scale"`
}

func (Transform) ID() ecs.ComponentID { return TransformID }

func NewTransform(position mgl64.Vec3) Transform {
	return Transform{Position: position, Rotation: mgl64.QuatIdent(), Scale: mgl64.Vec3{1, 1, 1}}
}

// Matrix composes translation, rotation and scale into a model matrix.
func (t Transform) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(t.Position.Elem()).
		Mul4(t.Rotation.Normalize().Mat4()).
		Mul4(mgl64.Scale3D(t.Scale.Elem()))
}

// Velocity is a linear velocity in units per second.
type Velocity mgl64.Vec3

func (Velocity) ID() ecs.ComponentID { return VelocityID }

// Vec3 returns v as a vector.
func (v Velocity) Vec3() mgl64.Vec3 { return mgl64.Vec3(v) }
