package main

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		input   string
		want    uint32
		wantErr bool
	}{
		{"0FEEEEFF", 0x0FEEEEFF, false},
		{"#020022FF", 0x020022FF, false},
		{"ffffffff", 0xFFFFFFFF, false},
		{"0", 0, false},
		{"not-a-color", 0, true},
		{"1122334455", 0, true}, // more than 32 bits
	}

	for _, tt := range tests {
		c, err := parseColor(tt.input)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, c)
	}
}
