package eventio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackingTypeCodec(t *testing.T) {
	require.Equal(t, uint32(2105), TrackingType(5))
	require.Equal(t, uint32(3105), TrackingType(105))
	require.Equal(t, uint16(5), TelescopeIdFromTrackingType(TrackingType(5)))
	require.Equal(t, uint16(105), TelescopeIdFromTrackingType(TrackingType(105)))
}

func TestTelescopeEventTypeCodec(t *testing.T) {
	require.Equal(t, uint32(2205), TelescopeEventType(5))
	require.Equal(t, uint32(3205), TelescopeEventType(105))
	require.Equal(t, uint16(5), TelescopeIdFromTelescopeEventType(TelescopeEventType(5)))
	require.Equal(t, uint16(105), TelescopeIdFromTelescopeEventType(TelescopeEventType(105)))
}

func TestTelescopeIdFromType(t *testing.T) {
	id, ok := TelescopeIdFromType(TrackingType(5))
	require.True(t, ok)
	require.Equal(t, uint16(5), id)

	id, ok = TelescopeIdFromType(TelescopeEventType(5))
	require.True(t, ok)
	require.Equal(t, uint16(5), id)

	_, ok = TelescopeIdFromType(RecordRunHeader)
	require.False(t, ok)
}
