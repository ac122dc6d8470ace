package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate("file")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{"file", "scan", "x"} {
		t.Run(prefix, func(t *testing.T) {
			id, err := Generate(prefix)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(id, prefix+"-"))
			assert.Len(t, id, len(prefix)+1+21, "ID: %s", id)
			assert.True(t, Valid(prefix, id), "generated ID should be valid: %s", id)
		})
	}
}

func TestMustGenerate_Format(t *testing.T) {
	id := MustGenerate("file")

	assert.True(t, strings.HasPrefix(id, "file-"))
	assert.Equal(t, len("file")+1+21, len(id))
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"generated shape", "file-V1StGXR8_Z5jdHi6B-myT", true},
		{"wrong prefix", "scan-V1StGXR8_Z5jdHi6B-myT", false},
		{"no separator", "fileV1StGXR8_Z5jdHi6B-myT", false},
		{"too short", "file-V1StGXR8", false},
		{"too long", "file-V1StGXR8_Z5jdHi6B-myTX", false},
		{"bad character", "file-V1StGXR8_Z5jdHi6B/myT", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid("file", tt.id))
		})
	}
}

func BenchmarkGenerate(b *testing.B) {
	for b.Loop() {
		_, _ = Generate("bench")
	}
}
