package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSAID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{name: "valid", id: "8001015009087", want: true},
		{name: "valid seed officer", id: "9876543210987", want: true},
		{name: "bad check digit", id: "8001015009088", want: false},
		{name: "too short", id: "800101500908", want: false},
		{name: "too long", id: "80010150090871", want: false},
		{name: "letters", id: "80010150090A7", want: false},
		{name: "empty", id: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidSAID(tt.id))
		})
	}
}
