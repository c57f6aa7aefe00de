package block

import "testing"

func TestBlockVersion_PackUnpackRoundTrip(t *testing.T) {
	v := BlockVersion{Major: 1, Minor: 2, Patch: 3, Reserved: 4}
	got := UnpackVersion(v.Pack())
	if got != v {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, v)
	}
}

func TestBlockVersion_IsCompatibleWith(t *testing.T) {
	tests := []struct {
		name   string
		block  BlockVersion
		caller BlockVersion
		want   bool
	}{
		{"identical", BlockVersion{Major: 1, Minor: 0}, BlockVersion{Major: 1, Minor: 0}, true},
		{"differing patch still compatible", BlockVersion{Major: 1, Minor: 0}, BlockVersion{Major: 1, Minor: 0, Patch: 1}, true},
		{"block minor ahead of caller", BlockVersion{Major: 1, Minor: 2}, BlockVersion{Major: 1, Minor: 0}, true},
		{"block minor behind caller", BlockVersion{Major: 1, Minor: 0}, BlockVersion{Major: 1, Minor: 2}, false},
		{"major mismatch", BlockVersion{Major: 2, Minor: 0}, BlockVersion{Major: 1, Minor: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.block.IsCompatibleWith(tt.caller); got != tt.want {
				t.Fatalf("IsCompatibleWith(%+v, %+v) = %v, want %v", tt.block, tt.caller, got, tt.want)
			}
		})
	}
}
