package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"acoustimon/internal/identity"
)

func TestNew(t *testing.T) {
	id := identity.New("compressor-", "compressor-monitor")

	assert.Len(t, id.ID, len("compressor-")+8)
	assert.Regexp(t, `^compressor-[0-9a-f]{8}$`, id.ID)
	assert.Equal(t, "compressor-monitor", id.Category)
}

func TestNewIsRandomPerBoot(t *testing.T) {
	a := identity.New("compressor-", "compressor-monitor")
	b := identity.New("compressor-", "compressor-monitor")

	assert.NotEqual(t, a.ID, b.ID, "Expected distinct suffixes across boots")
}
