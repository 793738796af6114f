package b2bua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryResolvesByDisplayName(t *testing.T) {
	d := NewDirectory(map[string]string{"Yamada Taro": "+819011112222"})
	num, err := d.Resolve("yamada taro")
	require.NoError(t, err)
	assert.Equal(t, "+819011112222", num)
}

func TestDirectoryNormalizesFullWidthSpace(t *testing.T) {
	d := NewDirectory(map[string]string{"yamada taro": "+819011112222"})
	num, err := d.Resolve("Yamada　Taro")
	require.NoError(t, err)
	assert.Equal(t, "+819011112222", num)
}

func TestDirectoryUnknownPersonIsError(t *testing.T) {
	d := NewDirectory(map[string]string{"a": "+1"})
	_, err := d.Resolve("b")
	assert.ErrorIs(t, err, ErrPersonNotFound)
}
