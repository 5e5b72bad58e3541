package capability

import (
	"context"
	"encoding/json"
	"fmt"
)

// TravelWeather reports the average temperature for a city and month.
type TravelWeather struct{}

func (TravelWeather) Name() string { return "travel_weather" }

func (TravelWeather) Description() string {
	return "Takes a city and a month and returns the average temperature for that month."
}

func (TravelWeather) Parameters() []Parameter {
	return []Parameter{
		{Name: "city", Type: "string", Description: "The city for which to get the average temperature.", Required: true},
		{Name: "month", Type: "string", Description: "The month for which to get the average temperature.", Required: true},
	}
}

func (TravelWeather) Invoke(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var in struct {
		City  string `json:"city"`
		Month string `json:"month"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	report := fmt.Sprintf("The average temperature in %s in %s is 75 degrees.", in.City, in.Month)
	return json.Marshal(map[string]string{"report": report})
}

// Adder adds two numbers.
type Adder struct{}

func (Adder) Name() string { return "add" }

func (Adder) Description() string {
	return "Adds two numbers and returns their sum."
}

func (Adder) Parameters() []Parameter {
	return []Parameter{
		{Name: "a", Type: "number", Description: "The first addend.", Required: true},
		{Name: "b", Type: "number", Description: "The second addend.", Required: true},
	}
}

func (Adder) Invoke(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var in struct {
		A float64 `json:"a"`
		B float64 `json:"b"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return json.Marshal(map[string]float64{"sum": in.A + in.B})
}

// WinePairing suggests a wine for a dish.
type WinePairing struct{}

func (WinePairing) Name() string { return "wine_pairing" }

func (WinePairing) Description() string {
	return "Takes a dish and returns a wine style that pairs well with it."
}

func (WinePairing) Parameters() []Parameter {
	return []Parameter{
		{Name: "dish", Type: "string", Description: "The dish to pair a wine with.", Required: true},
	}
}

func (WinePairing) Invoke(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Dish string `json:"dish"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	suggestion := fmt.Sprintf("A dry Riesling pairs well with %s.", in.Dish)
	return json.Marshal(map[string]string{"suggestion": suggestion})
}
