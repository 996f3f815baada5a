package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteMatchesBranchLocator(t *testing.T) {
	router := NewIntentRouter(DefaultIntents()...)

	intent, ok := router.Route("Where is your nearest branch?")
	require.True(t, ok)
	assert.Equal(t, "branch_locator", intent.Name)
	assert.Contains(t, intent.Reply, "Brooklyn")
}

func TestRouteNoMatch(t *testing.T) {
	router := NewIntentRouter(DefaultIntents()...)

	_, ok := router.Route("I want to book an appointment")
	assert.False(t, ok)
}

func TestRouteFirstMatchWins(t *testing.T) {
	router := NewIntentRouter(
		CannedIntent{Name: "a", Match: ContainsAll("hours"), Reply: "reply a"},
		CannedIntent{Name: "b", Match: ContainsAll("hours"), Reply: "reply b"},
	)

	intent, ok := router.Route("what are your hours?")
	require.True(t, ok)
	assert.Equal(t, "a", intent.Name)
}

func TestContainsAllIsCaseInsensitive(t *testing.T) {
	match := ContainsAll("WHERE", "Branch")

	assert.True(t, match("where is the nearest BRANCH?"))
	assert.False(t, match("where do I park?"))
}
