package chat

import "github.com/maitred-ai/maitred/internal/capability"

// Definition describes one persona: its instructions, title prefix and the
// ordered capability set bound to its assistant.
type Definition struct {
	Name         string
	Instructions string
	TitlePrefix  string
	Capabilities []capability.Capability
}

// Definitions returns the built-in personas.
func Definitions() []Definition {
	return []Definition{
		{
			Name: "weather",
			Instructions: "You are a travel weather chat bot named Frederick. Help users find " +
				"the average temperature in a given city and month.",
			Capabilities: []capability.Capability{capability.TravelWeather{}},
		},
		{
			Name: "math",
			Instructions: "You are a careful arithmetic assistant. Answer math questions " +
				"precisely and use the add capability for sums.",
			Capabilities: []capability.Capability{capability.Adder{}},
		},
		{
			Name: "sommelier",
			Instructions: "You are an expert sommelier. Recommend wines and pairings for " +
				"dishes and occasions.",
			TitlePrefix:  "Sommelier: ",
			Capabilities: []capability.Capability{capability.WinePairing{}},
		},
	}
}
