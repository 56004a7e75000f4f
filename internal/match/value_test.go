package match

import "testing"

func TestScalarEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b any
		want bool
	}{
		{name: "equal strings", a: "Praha", b: "Praha", want: true},
		{name: "different strings", a: "Praha", b: "Brno", want: false},
		{name: "int vs decoded float", a: 42, b: float64(42), want: true},
		{name: "int64 vs float", a: int64(7), b: float64(7), want: true},
		{name: "different numbers", a: 42, b: float64(43), want: false},
		{name: "bools", a: true, b: true, want: true},
		{name: "bool vs string", a: true, b: "true", want: false},
		{name: "number vs string", a: float64(1), b: "1", want: false},
		{name: "nils", a: nil, b: nil, want: true},
		{name: "nil vs string", a: nil, b: "", want: false},
		{name: "non-scalar never matches", a: []any{"Praha"}, b: []any{"Praha"}, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := scalarEqual(tc.a, tc.b); got != tc.want {
				t.Fatalf("scalarEqual(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
