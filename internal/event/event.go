package event

// Event is the synthetic input a chain is simulated against.
// Every condition kind reads its operand from one of these fields.
type Event struct {
	Kind        string  `json:"event" yaml:"event"` // "time_based", "purchase", etc.
	DayOfWeek   string  `json:"dayOfWeek" yaml:"dayOfWeek"`
	Time        string  `json:"time" yaml:"time"` // "HH:MM"
	Amount      float64 `json:"amount" yaml:"amount"`
	Count       float64 `json:"count" yaml:"count"`
	Frequency   float64 `json:"frequency" yaml:"frequency"`
	Product     string  `json:"product" yaml:"product"`
	Category    string  `json:"category" yaml:"category"`
	PointOfSale string  `json:"pointOfSale" yaml:"pointOfSale"`
	Region      string  `json:"region" yaml:"region"`
	VIP         bool    `json:"vip" yaml:"vip"`
}

// SmokeTest returns the fixed event used when a simulation is started
// without an explicit event: a time_based tick on Monday at 08:00.
func SmokeTest() *Event {
	return &Event{
		Kind:      "time_based",
		DayOfWeek: "monday",
		Time:      "08:00",
	}
}
