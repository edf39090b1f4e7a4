package config

import "github.com/teslashibe/go-edgebot/pkg/sim"

// WorldConfig converts the sim section into a simulator configuration.
func (c *Config) WorldConfig() sim.Config {
	s := c.Sim
	var field sim.Field = sim.Disc{Radius: s.Radius, Light: s.Light, Dark: s.Dark}
	if s.Field == "half_plane" {
		field = sim.HalfPlane{Light: s.Light, Dark: s.Dark}
	}
	return sim.Config{
		Field:         field,
		Noise:         s.Noise,
		ADCMax:        uint16(s.ADCMax),
		WheelBase:     s.WheelBase,
		SensorForward: s.SensorForward,
		SensorOffset:  s.SensorOffset,
		SpeedScale:    s.SpeedScale,
		Start:         sim.Pose{X: s.StartX, Y: s.StartY, Heading: s.StartHeading},
		SubStep:       s.SubStep,
		Seed:          s.Seed,
		Realtime:      s.Realtime,
	}
}
