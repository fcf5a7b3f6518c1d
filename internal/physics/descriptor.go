package physics

// ShadowDescriptor is the per-fixture payload consulted by the dynamic shadow pass.
type ShadowDescriptor struct {
	// Height of the caster in pseudo-3D units.
	Height float64
	// RoofShadow requests an unlit cap over the fixture's top face.
	RoofShadow bool
}

// Limit returns how far the shadow of a vertex at dist from the light extends
// past that vertex. A caster below the light uses similar triangles
// (dist·h/(lightHeight-h)); a caster at or above the light, or a light at
// height zero, shadows everything up to the light's range. The result is
// never negative and never reaches past lightRange.
func (d *ShadowDescriptor) Limit(dist, lightHeight, lightRange float64) float64 {
	remaining := lightRange - dist
	if remaining <= 0 {
		return 0
	}

	var l float64
	switch {
	case lightHeight == 0:
		l = lightRange
	case lightHeight > d.Height:
		l = dist * d.Height / (lightHeight - d.Height)
	default:
		l = remaining
	}

	if l > remaining {
		l = remaining
	}
	if l < 0 {
		return 0
	}
	return l
}

// CastsRoof reports whether a roof cap should be drawn for a light at lightHeight:
// the fixture must opt in and reach at least as high as the light.
func (d *ShadowDescriptor) CastsRoof(lightHeight float64) bool {
	return d.RoofShadow && d.Height >= lightHeight
}
