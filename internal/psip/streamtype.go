package psip

// ServiceType is an ATSC service_type code point (A/65 code points registry).
type ServiceType int32

// ATSC service types. The registry is a closed set; anything outside it is
// treated as reserved.
const (
	ServiceTypeReserved ServiceType = iota
	ServiceTypeAnalogTelevision
	ServiceTypeDigitalTelevision
	ServiceTypeAudio
	ServiceTypeDataOnly
	ServiceTypeSoftwareDownload
	ServiceTypeUnassociatedSmallScreen
	ServiceTypeParameterized
	ServiceTypeNRT
	ServiceTypeExtendedParameterized
)

// serviceTypeNames follows the ATSC Code Points Registry.
var serviceTypeNames = [...]string{
	"ATSC Reserved",
	"Analog television channels",
	"ATSC_digital_television",
	"ATSC_audio",
	"ATSC_data_only_service",
	"Software Download",
	"Unassociated/Small Screen Service",
	"Parameterized Service",
	"ATSC NRT Service",
	"Extended Parameterized Service",
}

// ServiceTypeFromCode maps a raw code point onto the closed registry.
// Unknown codes map to ServiceTypeReserved rather than failing.
func ServiceTypeFromCode(code int) ServiceType {
	if code < 0 || code >= len(serviceTypeNames) {
		return ServiceTypeReserved
	}
	return ServiceType(code)
}

// Name returns the registry name for the service type.
func (t ServiceType) Name() string {
	if t < 0 || int(t) >= len(serviceTypeNames) {
		return serviceTypeNames[ServiceTypeReserved]
	}
	return serviceTypeNames[t]
}

// TunerType records the provenance of a channel record.
type TunerType int32

const (
	TunerTypeTuner TunerType = iota
	TunerTypeFile
	TunerTypeNetwork
)

// TunerTypeFromCode maps a raw wire value onto the closed set, defaulting to
// TunerTypeTuner for unknown values.
func TunerTypeFromCode(code int) TunerType {
	switch t := TunerType(code); t {
	case TunerTypeTuner, TunerTypeFile, TunerTypeNetwork:
		return t
	default:
		return TunerTypeTuner
	}
}

// String returns a short name for the tuner type.
func (t TunerType) String() string {
	switch t {
	case TunerTypeFile:
		return "file"
	case TunerTypeNetwork:
		return "network"
	default:
		return "tuner"
	}
}

// VideoStreamType is an ISO 13818-1 stream_type code for a video elementary
// stream. VideoStreamTypeUnspecified (0x00 is ITU-T reserved) is the fallback
// for unknown wire values.
type VideoStreamType int32

const (
	VideoStreamTypeUnspecified VideoStreamType = 0x00
	VideoStreamTypeMPEG1       VideoStreamType = 0x01
	VideoStreamTypeMPEG2       VideoStreamType = 0x02
	VideoStreamTypeH263        VideoStreamType = 0x10
	VideoStreamTypeH264        VideoStreamType = 0x1b
	VideoStreamTypeH265        VideoStreamType = 0x24
)

// VideoStreamTypeFromCode maps a raw stream_type code onto the closed video
// set; unknown codes map to VideoStreamTypeUnspecified.
func VideoStreamTypeFromCode(code int) VideoStreamType {
	if IsVideoStreamType(code) {
		return VideoStreamType(code)
	}
	return VideoStreamTypeUnspecified
}

// IsVideoStreamType reports whether code is one of the recognised MPEG ES
// video stream types.
func IsVideoStreamType(code int) bool {
	switch VideoStreamType(code) {
	case VideoStreamTypeMPEG1, VideoStreamTypeMPEG2, VideoStreamTypeH263,
		VideoStreamTypeH264, VideoStreamTypeH265:
		return true
	default:
		return false
	}
}

// AudioStreamType is an ISO 13818-1 stream_type code for an audio elementary
// stream, including the ATSC private codes for AC-3 and E-AC-3.
type AudioStreamType int32

const (
	AudioStreamTypeUnspecified AudioStreamType = 0x00
	AudioStreamTypeMPEG1       AudioStreamType = 0x03
	AudioStreamTypeMPEG2       AudioStreamType = 0x04
	AudioStreamTypeAAC         AudioStreamType = 0x0f
	AudioStreamTypeLATMAAC     AudioStreamType = 0x11
	AudioStreamTypeAC3         AudioStreamType = 0x81
	AudioStreamTypeEAC3        AudioStreamType = 0x87
)

// AudioStreamTypeFromCode maps a raw stream_type code onto the closed audio
// set; unknown codes map to AudioStreamTypeUnspecified.
func AudioStreamTypeFromCode(code int) AudioStreamType {
	if IsAudioStreamType(code) {
		return AudioStreamType(code)
	}
	return AudioStreamTypeUnspecified
}

// IsAudioStreamType reports whether code is one of the recognised MPEG ES
// audio stream types.
func IsAudioStreamType(code int) bool {
	switch AudioStreamType(code) {
	case AudioStreamTypeMPEG1, AudioStreamTypeMPEG2, AudioStreamTypeAAC,
		AudioStreamTypeLATMAAC, AudioStreamTypeAC3, AudioStreamTypeEAC3:
		return true
	default:
		return false
	}
}
