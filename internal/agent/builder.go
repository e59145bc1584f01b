package agent

import (
	"fmt"

	"github.com/MeKo-Tech/retina/internal/config"
	"github.com/MeKo-Tech/retina/internal/glimpse"
	"github.com/MeKo-Tech/retina/internal/network"
)

// FromConfig builds a fully wired agent from the application configuration.
// channels is the channel count of the batches the agent will observe; the
// glimpse network input size depends on it.
func FromConfig(cfg *config.Config, channels int) (*Agent, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if channels <= 0 {
		return nil, fmt.Errorf("channels must be positive, got %d", channels)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sensor, err := glimpse.NewSensor(cfg.Sensor.PatchSize, cfg.Sensor.NumPatches, cfg.Sensor.ScaleFactor)
	if err != nil {
		return nil, fmt.Errorf("failed to create sensor: %w", err)
	}

	g := cfg.Sensor.PatchSize
	phiSize := cfg.Sensor.NumPatches * g * g * channels
	gn, err := network.NewGlimpseNetwork(phiSize, cfg.Network.GlimpseHidden, cfg.Network.LocationHidden, cfg.Network.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create glimpse network: %w", err)
	}
	core, err := network.NewCoreNetwork(gn.OutputSize(), cfg.Network.CoreHidden, cfg.Network.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create core network: %w", err)
	}

	var action *network.ActionNetwork
	if cfg.Network.NumClasses > 0 {
		action, err = network.NewActionNetwork(cfg.Network.CoreHidden, cfg.Network.NumClasses, cfg.Network.Seed)
		if err != nil {
			return nil, fmt.Errorf("failed to create action network: %w", err)
		}
	}

	policy, err := policyFromName(cfg.Agent.Policy, cfg.Network.Seed)
	if err != nil {
		return nil, err
	}

	return New(sensor, gn, core, action, policy)
}

// policyFromName maps a configured policy name to an implementation.
func policyFromName(name string, seed int64) (network.LocationPolicy, error) {
	switch name {
	case "", "center":
		return network.CenterPolicy{}, nil
	case "random":
		return network.NewRandomPolicy(seed), nil
	case "trajectory":
		return network.FixedTrajectory{Points: []glimpse.Location{
			{X: -0.5, Y: -0.5},
			{X: 0.5, Y: -0.5},
			{X: -0.5, Y: 0.5},
			{X: 0.5, Y: 0.5},
			{X: 0, Y: 0},
		}}, nil
	default:
		return nil, fmt.Errorf("unknown location policy %q", name)
	}
}
