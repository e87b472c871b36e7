package domain

import "testing"

// FuzzParseCaseID verifies that parsing never panics on arbitrary input and
// that any accepted value round-trips through String.
func FuzzParseCaseID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE clearance_cases;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseCaseID(input)
		if err != nil {
			return
		}
		roundTrip, err := ParseCaseID(id.String())
		if err != nil {
			t.Errorf("accepted ID failed round-trip: %v", err)
		}
		if roundTrip != id {
			t.Error("round-trip changed ID value")
		}
	})
}

// FuzzParseContainerID verifies the container number validator is total.
func FuzzParseContainerID(f *testing.F) {
	f.Add("")
	f.Add("MSKU1234567")
	f.Add("msku1234567")
	f.Add("MSKU12345678")
	f.Add("ABCD0000000\x00")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseContainerID(input)
		if err != nil {
			return
		}
		roundTrip, err := ParseContainerID(id.String())
		if err != nil {
			t.Errorf("accepted container ID failed round-trip: %v", err)
		}
		if roundTrip != id {
			t.Error("round-trip changed container ID value")
		}
	})
}
