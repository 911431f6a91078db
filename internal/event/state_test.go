package event

import "testing"

func TestDeriveState(t *testing.T) {
	tests := []struct {
		address  string
		expected string
	}{
		{"Sydney Sports Complex, NSW", "New South Wales"},
		{"Suncorp Stadium, Brisbane QLD 4006", "Queensland"},
		{"123 Example St, Melbourne, Victoria", "Victoria"},
		{"Perth Oval, Western Australia", "Western Australia"},
		{"Adelaide Showgrounds SA 5000", "South Australia"},
		{"Hobart TAS", "Tasmania"},
		{"Canberra ACT 2600", "Australian Capital Territory"},
		{"Darwin NT", "Northern Territory"},
		{"Wagga Wagga Exhibition Centre", ""}, // "WA" must not fire inside "Wagga"
		{"Contact the venue for details", ""}, // "act" must not fire inside "Contact"
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			if got := DeriveState(tt.address); got != tt.expected {
				t.Errorf("DeriveState(%q) = %q, expected %q", tt.address, got, tt.expected)
			}
		})
	}
}

func TestStateAbbreviation(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"New South Wales", "NSW"},
		{"Queensland", "QLD"},
		{"NSW", "NSW"},
		{"unknown", "unknown"},
	}

	for _, tt := range tests {
		if got := StateAbbreviation(tt.name); got != tt.expected {
			t.Errorf("StateAbbreviation(%q) = %q, expected %q", tt.name, got, tt.expected)
		}
	}
}
