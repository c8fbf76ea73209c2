package psip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceTypeFromCode(t *testing.T) {
	tests := []struct {
		name string
		code int
		want ServiceType
	}{
		{name: "digital television", code: 2, want: ServiceTypeDigitalTelevision},
		{name: "audio", code: 3, want: ServiceTypeAudio},
		{name: "upper bound", code: 9, want: ServiceTypeExtendedParameterized},
		{name: "out of range", code: 10, want: ServiceTypeReserved},
		{name: "negative", code: -1, want: ServiceTypeReserved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ServiceTypeFromCode(tt.code))
		})
	}
}

func TestServiceTypeName(t *testing.T) {
	assert.Equal(t, "ATSC_digital_television", ServiceTypeDigitalTelevision.Name())
	assert.Equal(t, "ATSC_audio", ServiceTypeAudio.Name())
	assert.Equal(t, "ATSC Reserved", ServiceTypeReserved.Name())
	assert.Equal(t, "ATSC Reserved", ServiceType(42).Name())
}

func TestVideoStreamTypeClassification(t *testing.T) {
	for _, code := range []int{0x01, 0x02, 0x10, 0x1b, 0x24} {
		assert.True(t, IsVideoStreamType(code), "code 0x%02x", code)
	}
	for _, code := range []int{0x00, 0x03, 0x0f, 0x81, 0x87, 0xff, StreamTypePCR} {
		assert.False(t, IsVideoStreamType(code), "code 0x%02x", code)
	}

	assert.Equal(t, VideoStreamTypeH264, VideoStreamTypeFromCode(0x1b))
	assert.Equal(t, VideoStreamTypeUnspecified, VideoStreamTypeFromCode(0x42))
}

func TestAudioStreamTypeClassification(t *testing.T) {
	for _, code := range []int{0x03, 0x04, 0x0f, 0x11, 0x81, 0x87} {
		assert.True(t, IsAudioStreamType(code), "code 0x%02x", code)
	}
	for _, code := range []int{0x00, 0x01, 0x02, 0x1b, 0x24, StreamTypePCR} {
		assert.False(t, IsAudioStreamType(code), "code 0x%02x", code)
	}

	assert.Equal(t, AudioStreamTypeEAC3, AudioStreamTypeFromCode(0x87))
	assert.Equal(t, AudioStreamTypeUnspecified, AudioStreamTypeFromCode(0x42))
}

func TestTunerTypeFromCode(t *testing.T) {
	assert.Equal(t, TunerTypeTuner, TunerTypeFromCode(0))
	assert.Equal(t, TunerTypeFile, TunerTypeFromCode(1))
	assert.Equal(t, TunerTypeNetwork, TunerTypeFromCode(2))
	assert.Equal(t, TunerTypeTuner, TunerTypeFromCode(7))
}

func TestTunerTypeString(t *testing.T) {
	assert.Equal(t, "tuner", TunerTypeTuner.String())
	assert.Equal(t, "file", TunerTypeFile.String())
	assert.Equal(t, "network", TunerTypeNetwork.String())
}

func TestNewPCRItem(t *testing.T) {
	item := NewPCRItem(0x31)
	assert.Equal(t, StreamTypePCR, item.StreamType)
	assert.Equal(t, 0x31, item.ElementaryPID)
}
