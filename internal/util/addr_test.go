package util

import "testing"

func TestBareAddress(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "Acme Sales <sales@acme.example>", want: "sales@acme.example"},
		{input: "sales@acme.example", want: "sales@acme.example"},
		{input: "  SALES@Acme.Example  ", want: "sales@acme.example"},
		{input: `"Sharma, Priya" <priya@supplies.example>`, want: "priya@supplies.example"},
		{input: "broken <<sales@acme.example>", want: "sales@acme.example"},
	}

	for _, tc := range cases {
		if got := BareAddress(tc.input); got != tc.want {
			t.Fatalf("BareAddress(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
