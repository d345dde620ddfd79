package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsFold(t *testing.T) {
	tests := []struct {
		s, substr string
		want      bool
	}{
		{s: "Ana Ruiz", substr: "an", want: true},
		{s: "Luis Paz", substr: "an", want: false},
		{s: "Ana Ruiz", substr: "  RUIZ ", want: true},
		{s: "Ana Ruiz", substr: "", want: true},
		{s: "Ana Ruiz", substr: "   ", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.s+"/"+tt.substr, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsFold(tt.s, tt.substr))
		})
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "ana ruiz", want: "AR"},
		{name: "Ana María Ruiz", want: "AM"},
		{name: "ángel", want: "ÁN"},
		{name: "  ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Initials(tt.name))
		})
	}
}
