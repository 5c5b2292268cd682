package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEasyPostProviderRequiresKey(t *testing.T) {
	_, err := NewEasyPostProvider(EasyPostConfig{})
	assert.Error(t, err)

	p, err := NewEasyPostProvider(EasyPostConfig{APIKey: "EZTK_test"})
	require.NoError(t, err)
	assert.NotNil(t, p)
}
