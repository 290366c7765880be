package main

import "github.com/edgeflare/treeconf/pkg/tree"

// deviceSettings is the sample tree served by the run command: a small
// audio frontend with a global gain and two channels.
type deviceSettings struct {
	Gain     float32
	Channels [2]channelSettings
	Stream   streamSettings
}

type channelSettings struct {
	Enabled bool
	Offset  float64
}

type streamSettings struct {
	Target string
	Period uint32
}

func newDeviceSettings() *deviceSettings {
	s := &deviceSettings{Gain: 1.0}
	s.Stream.Period = 100
	return s
}

// Tree builds the navigable view over the settings struct. Shape is
// fixed here; only leaf values change afterwards.
func (s *deviceSettings) Tree() tree.Node {
	channel := func(c *channelSettings) tree.Node {
		return tree.NewGroup(
			tree.Named("enabled", tree.NewLeaf(&c.Enabled)),
			tree.Named("offset", tree.NewLeaf(&c.Offset)),
		).WithSubtree()
	}

	return tree.NewGroup(
		tree.Named("gain", tree.NewLeaf(&s.Gain)),
		tree.Named("channels", tree.NewList(
			channel(&s.Channels[0]),
			channel(&s.Channels[1]),
		)),
		tree.Named("stream", tree.NewGroup(
			tree.Named("target", tree.NewLeaf(&s.Stream.Target)),
			tree.Named("period", tree.NewLeaf(&s.Stream.Period)),
		)),
	)
}
