package tuner

import (
	"fmt"
	"log/slog"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/ottkit/tunerd/internal/psip"
)

// Wire format: a tagged-field record in protobuf wire encoding, built with
// protowire. Every field is optional and independently tagged, repeated
// integer fields are packed, track descriptors are length-delimited
// sub-messages, and unknown tags are skipped on decode so old readers accept
// blobs written by newer versions.
const (
	fieldShortName           = 1
	fieldLongName            = 2
	fieldTSID                = 3
	fieldProgramNumber       = 4
	fieldVirtualMajor        = 5
	fieldVirtualMinor        = 6
	fieldDescription         = 7
	fieldServiceType         = 8
	fieldTunerType           = 9
	fieldChannelID           = 10
	fieldFrequency           = 11
	fieldModulation          = 12
	fieldVideoPID            = 13
	fieldVideoStreamType     = 14
	fieldPCRPID              = 15
	fieldAudioPIDs           = 16
	fieldAudioStreamTypes    = 17
	fieldAudioTrackIndex     = 18
	fieldAudioTracks         = 19
	fieldCaptionTracks       = 20
	fieldHasCaptionTrack     = 21
	fieldLocked              = 22
	fieldRecordingProhibited = 23
	fieldVideoFormat         = 24
	fieldFilepath            = 25
)

// Track descriptor sub-message fields.
const (
	trackFieldLanguage = 1
	trackFieldAudio    = 2
	trackFieldChannels = 3
	trackFieldRate     = 4

	captionFieldLanguage   = 1
	captionFieldService    = 2
	captionFieldEasyReader = 3
	captionFieldWideAspect = 4
)

// Serialize encodes the record to its binary blob. The record mutex is held
// for the duration, serializing the export against concurrent setters. A
// failed encode is treated as a transient race with an unsynchronized
// mutator and retried exactly once before the failure is escalated.
func (c *Channel) Serialize() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.marshal()
	if err == nil {
		return b, nil
	}
	slog.Warn("channel record mutated across threads without lock, retrying encode",
		slog.String("component", "tuner"),
		slog.String("channel", c.shortName),
		slog.String("error", err.Error()))
	b, err = c.marshal()
	if err != nil {
		return nil, fmt.Errorf("encoding channel record: %w", err)
	}
	return b, nil
}

// Parse decodes a binary blob back into a channel record. Malformed,
// truncated, or empty input yields nil (logged); callers must nil-check.
func Parse(data []byte) *Channel {
	if len(data) == 0 {
		return nil
	}
	c, err := unmarshal(data)
	if err != nil {
		slog.Error("could not parse channel record",
			slog.String("component", "tuner"),
			slog.String("error", err.Error()))
		return nil
	}
	return c
}

// marshal encodes all non-default fields. Its only failure mode is a torn
// audio track state, which a concurrent multi-field mutation sequence can
// produce between its two setter calls.
func (c *Channel) marshal() ([]byte, error) {
	if len(c.audioPIDs) != len(c.audioStreamTypes) {
		return nil, fmt.Errorf("audio pid/stream-type length mismatch: %d != %d",
			len(c.audioPIDs), len(c.audioStreamTypes))
	}

	var b []byte
	b = appendString(b, fieldShortName, c.shortName)
	b = appendString(b, fieldLongName, c.longName)
	b = appendInt(b, fieldTSID, int64(c.tsid))
	b = appendInt(b, fieldProgramNumber, int64(c.programNumber))
	b = appendInt(b, fieldVirtualMajor, int64(c.virtualMajor))
	b = appendInt(b, fieldVirtualMinor, int64(c.virtualMinor))
	b = appendString(b, fieldDescription, c.description)
	b = appendInt(b, fieldServiceType, int64(c.serviceType))
	b = appendInt(b, fieldTunerType, int64(c.tunerType))
	b = appendInt(b, fieldChannelID, c.channelID)
	b = appendInt(b, fieldFrequency, int64(c.frequency))
	b = appendString(b, fieldModulation, c.modulation)
	b = appendInt(b, fieldVideoPID, int64(c.videoPID))
	b = appendInt(b, fieldVideoStreamType, int64(c.videoStreamType))
	b = appendInt(b, fieldPCRPID, int64(c.pcrPID))

	if len(c.audioPIDs) > 0 {
		var packed []byte
		for _, pid := range c.audioPIDs {
			packed = protowire.AppendVarint(packed, uint64(int64(pid)))
		}
		b = protowire.AppendTag(b, fieldAudioPIDs, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)

		packed = packed[:0]
		for _, st := range c.audioStreamTypes {
			packed = protowire.AppendVarint(packed, uint64(int64(st)))
		}
		b = protowire.AppendTag(b, fieldAudioStreamTypes, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	b = appendInt(b, fieldAudioTrackIndex, int64(c.audioTrackIndex))

	for _, t := range c.audioTracks {
		var msg []byte
		msg = appendString(msg, trackFieldLanguage, t.Language)
		msg = appendInt(msg, trackFieldAudio, int64(t.AudioType))
		msg = appendInt(msg, trackFieldChannels, int64(t.ChannelCount))
		msg = appendInt(msg, trackFieldRate, int64(t.SampleRate))
		b = protowire.AppendTag(b, fieldAudioTracks, protowire.BytesType)
		b = protowire.AppendBytes(b, msg)
	}
	for _, t := range c.captionTracks {
		var msg []byte
		msg = appendString(msg, captionFieldLanguage, t.Language)
		msg = appendInt(msg, captionFieldService, int64(t.ServiceNumber))
		msg = appendBool(msg, captionFieldEasyReader, t.EasyReader)
		msg = appendBool(msg, captionFieldWideAspect, t.WideAspectRatio)
		b = protowire.AppendTag(b, fieldCaptionTracks, protowire.BytesType)
		b = protowire.AppendBytes(b, msg)
	}

	b = appendBool(b, fieldHasCaptionTrack, c.hasCaptionTrack)
	b = appendBool(b, fieldLocked, c.locked)
	b = appendBool(b, fieldRecordingProhibited, c.recordingProhibited)
	b = appendString(b, fieldVideoFormat, c.videoFormat)
	b = appendString(b, fieldFilepath, c.filepath)
	return b, nil
}

func unmarshal(data []byte) (*Channel, error) {
	c := &Channel{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]

		switch num {
		case fieldShortName:
			n = consumeString(data, &c.shortName)
		case fieldLongName:
			n = consumeString(data, &c.longName)
		case fieldTSID:
			n = consumeInt(data, &c.tsid)
		case fieldProgramNumber:
			n = consumeInt(data, &c.programNumber)
		case fieldVirtualMajor:
			n = consumeInt(data, &c.virtualMajor)
		case fieldVirtualMinor:
			n = consumeInt(data, &c.virtualMinor)
		case fieldDescription:
			n = consumeString(data, &c.description)
		case fieldServiceType:
			var v int
			n = consumeInt(data, &v)
			c.serviceType = psip.ServiceTypeFromCode(v)
		case fieldTunerType:
			var v int
			n = consumeInt(data, &v)
			c.tunerType = psip.TunerTypeFromCode(v)
		case fieldChannelID:
			var v uint64
			v, n = protowire.ConsumeVarint(data)
			c.channelID = int64(v)
		case fieldFrequency:
			n = consumeInt(data, &c.frequency)
		case fieldModulation:
			n = consumeString(data, &c.modulation)
		case fieldVideoPID:
			n = consumeInt(data, &c.videoPID)
		case fieldVideoStreamType:
			var v int
			n = consumeInt(data, &v)
			c.videoStreamType = psip.VideoStreamTypeFromCode(v)
		case fieldPCRPID:
			n = consumeInt(data, &c.pcrPID)
		case fieldAudioPIDs:
			n = consumePackedInts(data, typ, func(v int64) {
				c.audioPIDs = append(c.audioPIDs, int(v))
			})
		case fieldAudioStreamTypes:
			n = consumePackedInts(data, typ, func(v int64) {
				c.audioStreamTypes = append(c.audioStreamTypes, psip.AudioStreamTypeFromCode(int(v)))
			})
		case fieldAudioTrackIndex:
			n = consumeInt(data, &c.audioTrackIndex)
		case fieldAudioTracks:
			var msg []byte
			msg, n = protowire.ConsumeBytes(data)
			if n >= 0 {
				t, err := parseAudioTrack(msg)
				if err != nil {
					return nil, err
				}
				c.audioTracks = append(c.audioTracks, t)
			}
		case fieldCaptionTracks:
			var msg []byte
			msg, n = protowire.ConsumeBytes(data)
			if n >= 0 {
				t, err := parseCaptionTrack(msg)
				if err != nil {
					return nil, err
				}
				c.captionTracks = append(c.captionTracks, t)
			}
		case fieldHasCaptionTrack:
			n = consumeBool(data, &c.hasCaptionTrack)
		case fieldLocked:
			n = consumeBool(data, &c.locked)
		case fieldRecordingProhibited:
			n = consumeBool(data, &c.recordingProhibited)
		case fieldVideoFormat:
			n = consumeString(data, &c.videoFormat)
		case fieldFilepath:
			n = consumeString(data, &c.filepath)
		default:
			// Unknown tag from a newer writer.
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
	}
	if len(c.audioPIDs) != len(c.audioStreamTypes) {
		return nil, fmt.Errorf("audio pid/stream-type length mismatch: %d != %d",
			len(c.audioPIDs), len(c.audioStreamTypes))
	}
	return c, nil
}

func parseAudioTrack(data []byte) (psip.AudioTrack, error) {
	var t psip.AudioTrack
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return t, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case trackFieldLanguage:
			n = consumeString(data, &t.Language)
		case trackFieldAudio:
			n = consumeInt(data, &t.AudioType)
		case trackFieldChannels:
			n = consumeInt(data, &t.ChannelCount)
		case trackFieldRate:
			n = consumeInt(data, &t.SampleRate)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return t, protowire.ParseError(n)
		}
		data = data[n:]
	}
	return t, nil
}

func parseCaptionTrack(data []byte) (psip.CaptionTrack, error) {
	var t psip.CaptionTrack
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return t, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case captionFieldLanguage:
			n = consumeString(data, &t.Language)
		case captionFieldService:
			n = consumeInt(data, &t.ServiceNumber)
		case captionFieldEasyReader:
			n = consumeBool(data, &t.EasyReader)
		case captionFieldWideAspect:
			n = consumeBool(data, &t.WideAspectRatio)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return t, protowire.ParseError(n)
		}
		data = data[n:]
	}
	return t, nil
}

// appendString emits a string field, skipping empty values.
func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// appendInt emits an integer field, skipping zero values. Negative values
// are sign-extended the way protobuf encodes int64.
func appendInt(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

// appendBool emits a bool field, skipping false.
func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func consumeString(data []byte, dst *string) int {
	v, n := protowire.ConsumeString(data)
	if n >= 0 {
		*dst = v
	}
	return n
}

func consumeInt(data []byte, dst *int) int {
	v, n := protowire.ConsumeVarint(data)
	if n >= 0 {
		*dst = int(int64(v))
	}
	return n
}

func consumeBool(data []byte, dst *bool) int {
	v, n := protowire.ConsumeVarint(data)
	if n >= 0 {
		*dst = v != 0
	}
	return n
}

// consumePackedInts decodes a packed repeated varint field. A bare varint is
// also accepted for compatibility with unpacked writers.
func consumePackedInts(data []byte, typ protowire.Type, emit func(int64)) int {
	if typ == protowire.VarintType {
		v, n := protowire.ConsumeVarint(data)
		if n >= 0 {
			emit(int64(v))
		}
		return n
	}
	packed, n := protowire.ConsumeBytes(data)
	if n < 0 {
		return n
	}
	for len(packed) > 0 {
		v, m := protowire.ConsumeVarint(packed)
		if m < 0 {
			return m
		}
		emit(int64(v))
		packed = packed[m:]
	}
	return n
}
