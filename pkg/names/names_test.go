package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"tz", "Tz"},
		{"kilimanjaro", "Kilimanjaro"},
		{"MOSHI URBAN", "Moshi Urban"},
		{`Kombo ""A""`, "Kombo A"},
		{"  many   spaces\there ", "Many Spaces Here"},
		{"", ""},
		{`""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.in))
		})
	}
}

func TestCompose(t *testing.T) {
	assert.Equal(t, "Majengo - Mbokomu - Moshi", Compose("majengo", "MBOKOMU", "moshi"))
	assert.Equal(t, "Kibosho Hospital - 104512-1", Compose("kibosho hospital", "104512-1"))
	assert.Equal(t, "Majengo - Moshi", Compose("majengo", " ", "moshi"))
	assert.Equal(t, "", Compose("", ""))
}

func TestSame(t *testing.T) {
	assert.True(t, Same(" Moshi ", "Moshi"))
	assert.False(t, Same("moshi", "Moshi"))
	assert.True(t, SameFold("moshi ", "MOSHI"))
}
