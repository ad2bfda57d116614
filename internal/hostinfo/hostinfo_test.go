package hostinfo

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrentHost_PopulatesOSAndArch(t *testing.T) {
	h := CurrentHost()
	assert.Equal(t, runtime.GOOS, h.OS)
	assert.Equal(t, runtime.GOARCH, h.Arch)
}

func TestCurrentUser_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { CurrentUser() })
}
