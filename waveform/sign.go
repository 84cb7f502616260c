package waveform

// Sign selects the positive or negative half of a waveform or envelope.
type Sign int

const (
	Positive Sign = iota
	Negative
)

func (s Sign) String() string {
	if s == Negative {
		return "negative"
	}
	return "positive"
}

// SignOf returns Negative for v < 0 and Positive otherwise.
func SignOf(v float64) Sign {
	if v < 0 {
		return Negative
	}
	return Positive
}
