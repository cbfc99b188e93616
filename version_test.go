package synckit

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Contains(t, []string{"futex", "emulated"}, info.FutexBackend)
}

func TestVersionConstants(t *testing.T) {
	want := fmt.Sprintf("v%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
	assert.Equal(t, want, Version)
}

func TestRequire(t *testing.T) {
	tests := []struct {
		name    string
		minimum string
		wantErr string
	}{
		{name: "exact", minimum: Version},
		{name: "without v", minimum: "0.1.0"},
		{name: "major minor only", minimum: "v0.1"},
		{name: "older", minimum: "v0.0.9"},
		{name: "newer", minimum: "v0.2", wantErr: "does not satisfy v0.2.0"},
		{name: "next major", minimum: "v1", wantErr: "does not satisfy v1.0.0"},
		{name: "garbage", minimum: "latest", wantErr: "invalid version requirement"},
		{name: "empty", minimum: "", wantErr: "invalid version requirement"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Require(tt.minimum)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		v    string
		want bool
	}{
		{v: Version, want: true},
		{v: "v0.1.0-rc.1", want: true},
		{v: "v0.0.5", want: false},
		{v: "v0.2.0", want: false},
		{v: "v1.0.0", want: false},
		{v: "0.1.0", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.v, func(t *testing.T) {
			assert.Equal(t, tt.want, Compatible(tt.v))
		})
	}
}
