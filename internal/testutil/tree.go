// Package testutil provides the sample settings tree shared by tests.
package testutil

import "github.com/edgeflare/treeconf/pkg/tree"

// Settings is the canonical test fixture: a gain plus two channels.
type Settings struct {
	Gain     float32
	Channels [2]Channel
}

type Channel struct {
	Enabled bool
}

// Tree builds the navigable view over s. With subtree set, the channel
// groups allow whole-subtree get/set.
func (s *Settings) Tree(subtree bool) tree.Node {
	channel := func(c *Channel) tree.Node {
		g := tree.NewGroup(
			tree.Named("enabled", tree.NewLeaf(&c.Enabled)),
		)
		if subtree {
			g = g.WithSubtree()
		}
		return g
	}

	return tree.NewGroup(
		tree.Named("gain", tree.NewLeaf(&s.Gain)),
		tree.Named("channels", tree.NewList(
			channel(&s.Channels[0]),
			channel(&s.Channels[1]),
		)),
	)
}
