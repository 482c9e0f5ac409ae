package strcase

import "testing"

func TestToLowerSnake(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "Empty", in: "", want: ""},
		{name: "AlreadyLower", in: "username", want: "username"},
		{name: "CamelCase", in: "expiresAt", want: "expires_at"},
		{name: "TrailingAcronym", in: "userID", want: "user_id"},
		{name: "LeadingAcronym", in: "HTTPServer", want: "http_server"},
		{name: "DigitBoundary", in: "base32Seed", want: "base32_seed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			got := ToLowerSnake(tc.in)

			// Assert
			if got != tc.want {
				t.Fatalf("ToLowerSnake(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
