// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wordlist

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// words contains short, unambiguous English words used for link codes.
// Codes are spoken and retyped between workspaces, so everything here
// is lowercase, short, and hard to mishear.
var words = []string{
	"acorn", "amber", "anchor", "apple", "arrow", "aspen", "atlas", "autumn",
	"badge", "bamboo", "barley", "basil", "beacon", "berry", "birch", "bison",
	"bloom", "bluff", "bounce", "breeze", "brick", "brook", "button", "cabin",
	"camel", "candle", "canoe", "canyon", "carbon", "cedar", "cello", "chalk",
	"cherry", "cider", "cliff", "clover", "cobalt", "comet", "copper", "coral",
	"cotton", "cradle", "crane", "crisp", "crumb", "cypress", "daisy", "dawn",
	"delta", "denim", "dew", "dome", "drift", "dune", "eagle", "easel",
	"echo", "elder", "ember", "fable", "falcon", "fawn", "fennel", "fern",
	"fig", "flax", "flint", "foam", "fog", "forest", "fossil", "fox",
	"garnet", "gecko", "ginger", "glade", "glow", "gorge", "granite", "grove",
	"gull", "harbor", "hazel", "heron", "hollow", "honey", "ibis", "icicle",
	"indigo", "iris", "ivory", "ivy", "jade", "jasper", "juniper", "kelp",
	"kettle", "kiwi", "lagoon", "lantern", "larch", "lark", "lava", "lemon",
	"lichen", "lily", "linen", "lotus", "lunar", "lyric", "magnet", "mango",
	"maple", "marble", "meadow", "melon", "mesa", "minnow", "mint", "mist",
	"moss", "moth", "nectar", "nickel", "north", "nutmeg", "oak", "oasis",
	"ocean", "olive", "onyx", "opal", "orchid", "osprey", "otter", "owl",
	"oyster", "palm", "panda", "pebble", "pecan", "peony", "pepper", "perch",
	"pier", "pine", "plume", "pond", "poppy", "prairie", "prism", "quail",
	"quartz", "quill", "raven", "reed", "ridge", "ripple", "river", "robin",
	"rosemary", "rye", "saffron", "sage", "salmon", "sand", "sequoia", "shale",
	"shell", "sienna", "silver", "sleet", "sparrow", "spruce", "squash", "stone",
	"storm", "summit", "sunset", "swan", "tansy", "teal", "thistle", "thyme",
	"tide", "topaz", "trout", "tulip", "tundra", "umber", "valley", "vapor",
	"velvet", "violet", "walnut", "wheat", "willow", "winter", "wren", "zephyr",
}

// Words returns n random words joined with hyphens, e.g.
// "cedar-otter-quartz-dawn". Randomness is crypto/rand so codes
// cannot be predicted from earlier codes.
func Words(n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("word count must be positive, got %d", n)
	}

	picked := make([]string, 0, n)
	max := big.NewInt(int64(len(words)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to pick random word: %w", err)
		}
		picked = append(picked, words[idx.Int64()])
	}

	return strings.Join(picked, "-"), nil
}
