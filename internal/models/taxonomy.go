package models

// GrantSizeRange is a named award-amount bracket profiles can select
// instead of typing min/max amounts directly.
type GrantSizeRange struct {
	Value string   `json:"value"`
	Label string   `json:"label"`
	Min   float64  `json:"min"`
	Max   *float64 `json:"max,omitempty"`
}

func f(v float64) *float64 { return &v }

// GrantSizeRanges is the fixed set of selectable award brackets.
var GrantSizeRanges = []GrantSizeRange{
	{Value: "any", Label: "Any Amount", Min: 0, Max: nil},
	{Value: "micro", Label: "Under $10,000", Min: 0, Max: f(10000)},
	{Value: "small", Label: "$10,000 - $50,000", Min: 10000, Max: f(50000)},
	{Value: "medium", Label: "$50,000 - $250,000", Min: 50000, Max: f(250000)},
	{Value: "large", Label: "$250,000 - $1,000,000", Min: 250000, Max: f(1000000)},
	{Value: "major", Label: "Over $1,000,000", Min: 1000000, Max: nil},
}

// GrantSizeRangeByValue returns the bracket for value, or nil.
func GrantSizeRangeByValue(value string) *GrantSizeRange {
	for i := range GrantSizeRanges {
		if GrantSizeRanges[i].Value == value {
			return &GrantSizeRanges[i]
		}
	}
	return nil
}

// USStates maps state codes to display names. Includes DC.
var USStates = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming", "DC": "Washington D.C.",
}

// IsValidState reports whether code is a known two-letter state code.
func IsValidState(code string) bool {
	_, ok := USStates[code]
	return ok
}
