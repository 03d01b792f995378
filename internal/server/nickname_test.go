package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateNickname(t *testing.T) {
	for range 20 {
		name := GenerateNickname()
		assert.NotEmpty(t, name)

		// Every nickname is an adjective followed by an animal
		var hasAdj, hasNoun bool
		for _, adj := range adjectives {
			if strings.HasPrefix(name, adj) {
				hasAdj = true
				break
			}
		}
		for _, noun := range nouns {
			if strings.HasSuffix(name, noun) {
				hasNoun = true
				break
			}
		}
		assert.True(t, hasAdj, "nickname %q should start with a known adjective", name)
		assert.True(t, hasNoun, "nickname %q should end with a known noun", name)
	}
}
