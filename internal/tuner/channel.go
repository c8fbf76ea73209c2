// Package tuner implements the channel descriptor record: a mutable channel
// entity derived from transport-stream signaling tables, persisted as a
// binary blob next to a relational row, and shared between the table
// ingestion path and the storage/export path.
package tuner

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/ottkit/tunerd/internal/psip"
)

// Sentinel values for unset record fields.
const (
	// InvalidFrequency marks a channel with no tuning frequency assigned.
	InvalidFrequency = -1

	// InvalidPID marks the absence of an elementary stream. Valid PIDs
	// range from 0 to 8191 (ISO/IEC 13818-1).
	InvalidPID = -1

	// InvalidStreamType marks an unset stream type. ISO 13818-1 stream
	// types range from 0x00 to 0xff.
	InvalidStreamType = -1

	// InvalidChannelID marks a record not yet assigned a storage row.
	InvalidChannelID int64 = -1
)

// numberSeparator joins the major and minor channel numbers in display form.
const numberSeparator = '-'

// Channel is a single channel reachable through a tuner, a stream file, or a
// network tuner device.
//
// Getters are deliberately unsynchronized; setters and Serialize take the
// record mutex so a single field write can never be observed torn by a
// concurrent export. Consistency across multiple setter calls is the
// caller's responsibility.
type Channel struct {
	mu sync.Mutex

	shortName   string
	longName    string
	description string

	tsid          int
	programNumber int
	virtualMajor  int
	virtualMinor  int

	serviceType psip.ServiceType
	tunerType   psip.TunerType

	channelID  int64
	frequency  int
	modulation string

	videoPID        int
	videoStreamType psip.VideoStreamType
	pcrPID          int

	audioPIDs        []int
	audioStreamTypes []psip.AudioStreamType
	audioTrackIndex  int

	audioTracks   []psip.AudioTrack
	captionTracks []psip.CaptionTrack

	hasCaptionTrack     bool
	locked              bool
	recordingProhibited bool

	videoFormat string
	filepath    string
}

// NewFromVCT builds a channel from a virtual channel table entry and the
// program's PMT entries. vct may be nil.
func NewFromVCT(vct *psip.VCTItem, pmtItems []psip.PMTItem) *Channel {
	return newFromVCT(vct, 0, pmtItems, psip.TunerTypeTuner)
}

// NewFromProgram builds a channel from a bare program number and the
// program's PMT entries, for streams with no VCT/SDT signaling.
func NewFromProgram(programNumber int, pmtItems []psip.PMTItem) *Channel {
	return newFromVCT(nil, programNumber, pmtItems, psip.TunerTypeTuner)
}

// NewFromSDT builds a channel from a DVB service description table entry and
// the program's PMT entries. sdt may be nil.
func NewFromSDT(sdt *psip.SDTItem, pmtItems []psip.PMTItem) *Channel {
	return newFromSDT(0, psip.TunerTypeTuner, sdt, pmtItems)
}

// ForFile is NewFromVCT for channels read back from a recorded stream file.
func ForFile(vct *psip.VCTItem, pmtItems []psip.PMTItem) *Channel {
	return newFromVCT(vct, 0, pmtItems, psip.TunerTypeFile)
}

// ForDVBFile is NewFromSDT for channels read back from a recorded stream file.
func ForDVBFile(sdt *psip.SDTItem, pmtItems []psip.PMTItem) *Channel {
	return newFromSDT(0, psip.TunerTypeFile, sdt, pmtItems)
}

// ForNetwork builds a channel for a network tuner device. No PMT entries
// exist for such channels, so a synthetic audio PID and video PID are set to
// satisfy downstream has-audio/has-video validity checks; the audio stream
// type is unspecified, keeping the pid/stream-type lists parallel. videoFormat
// may be empty.
func ForNetwork(major, minor, programNumber int, shortName string, recordingProhibited bool, videoFormat string) *Channel {
	c := newFromVCT(nil, programNumber, nil, psip.TunerTypeNetwork)
	c.SetVirtualMajor(major)
	c.SetVirtualMinor(minor)
	c.SetShortName(shortName)
	c.SetAudioPIDs([]int{0})
	c.SetAudioStreamTypes([]psip.AudioStreamType{psip.AudioStreamTypeUnspecified})
	c.SelectAudioTrack(0)
	c.SetVideoPID(0)
	c.SetRecordingProhibited(recordingProhibited)
	if videoFormat != "" {
		c.SetVideoFormat(videoFormat)
	}
	return c
}

func newFromVCT(vct *psip.VCTItem, programNumber int, pmtItems []psip.PMTItem, tt psip.TunerType) *Channel {
	c := &Channel{}
	if vct == nil {
		c.shortName = ""
		c.tsid = 0
		c.programNumber = programNumber
		c.virtualMajor = 0
		c.virtualMinor = 0
	} else {
		c.shortName = vct.ShortName
		if vct.LongName != "" {
			c.longName = vct.LongName
		}
		c.tsid = vct.TSID
		c.programNumber = vct.Program
		c.virtualMajor = vct.MajorNumber
		c.virtualMinor = vct.MinorNumber
		if vct.Description != "" {
			c.description = vct.Description
		}
		c.serviceType = psip.ServiceTypeFromCode(vct.ServiceType)
	}
	c.derivePIDs(pmtItems, tt)
	return c
}

func newFromSDT(programNumber int, tt psip.TunerType, sdt *psip.SDTItem, pmtItems []psip.PMTItem) *Channel {
	c := &Channel{}
	c.tsid = 0
	c.virtualMajor = 0
	c.virtualMinor = 0
	if sdt == nil {
		c.shortName = ""
		c.programNumber = programNumber
	} else {
		c.shortName = sdt.ServiceName
		c.programNumber = sdt.ServiceID
		c.serviceType = psip.ServiceTypeFromCode(sdt.ServiceType)
	}
	c.derivePIDs(pmtItems, tt)
	return c
}

// derivePIDs classifies the PMT entries into the video, audio and PCR slots.
// Video and PCR are last-write-wins; audio entries accumulate in input order.
// Unrecognized stream types are skipped.
func (c *Channel) derivePIDs(pmtItems []psip.PMTItem, tt psip.TunerType) {
	c.tunerType = tt
	c.channelID = InvalidChannelID
	c.frequency = InvalidFrequency
	c.videoPID = InvalidPID
	for _, item := range pmtItems {
		switch {
		case psip.IsVideoStreamType(item.StreamType):
			c.videoPID = item.ElementaryPID
			c.videoStreamType = psip.VideoStreamTypeFromCode(item.StreamType)
		case psip.IsAudioStreamType(item.StreamType):
			c.audioPIDs = append(c.audioPIDs, item.ElementaryPID)
			c.audioStreamTypes = append(c.audioStreamTypes, psip.AudioStreamTypeFromCode(item.StreamType))
		case item.StreamType == psip.StreamTypePCR:
			c.pcrPID = item.ElementaryPID
		}
	}
	if len(c.audioPIDs) > 0 {
		c.audioTrackIndex = 0
	} else {
		c.audioTrackIndex = -1
	}
}

// Name returns the display name: the short name when present, otherwise the
// long name.
func (c *Channel) Name() string {
	if c.shortName != "" {
		return c.shortName
	}
	return c.longName
}

// ShortName returns the short channel name.
func (c *Channel) ShortName() string { return c.shortName }

// Description returns the channel description.
func (c *Channel) Description() string { return c.description }

// ProgramNumber returns the program/service number within the transport
// stream.
func (c *Channel) ProgramNumber() int { return c.programNumber }

// TSID returns the transport stream id.
func (c *Channel) TSID() int { return c.tsid }

// ServiceType returns the ATSC service type.
func (c *Channel) ServiceType() psip.ServiceType { return c.serviceType }

// ServiceTypeName returns the registry name for the channel's service type.
func (c *Channel) ServiceTypeName() string { return c.serviceType.Name() }

// VirtualMajor returns the major channel number, 0 when unset.
func (c *Channel) VirtualMajor() int { return c.virtualMajor }

// VirtualMinor returns the minor channel number, 0 when unset.
func (c *Channel) VirtualMinor() int { return c.virtualMinor }

// Frequency returns the tuning frequency, InvalidFrequency when unset.
func (c *Channel) Frequency() int { return c.frequency }

// Modulation returns the modulation mode, empty when unset.
func (c *Channel) Modulation() string { return c.modulation }

// Type returns the channel provenance.
func (c *Channel) Type() psip.TunerType { return c.tunerType }

// VideoPID returns the video elementary PID, InvalidPID when the channel has
// no video.
func (c *Channel) VideoPID() int { return c.videoPID }

// VideoStreamType returns the video stream type.
func (c *Channel) VideoStreamType() psip.VideoStreamType { return c.videoStreamType }

// PCRPID returns the program clock reference PID.
func (c *Channel) PCRPID() int { return c.pcrPID }

// AudioPID returns the PID of the selected audio track, InvalidPID when no
// track is selected.
func (c *Channel) AudioPID() int {
	if c.audioTrackIndex == -1 {
		return InvalidPID
	}
	return c.audioPIDs[c.audioTrackIndex]
}

// AudioStreamType returns the stream type of the selected audio track,
// InvalidStreamType when no track is selected.
func (c *Channel) AudioStreamType() int {
	if c.audioTrackIndex == -1 {
		return InvalidStreamType
	}
	return int(c.audioStreamTypes[c.audioTrackIndex])
}

// AudioPIDs returns all discovered audio elementary PIDs in signaling order.
func (c *Channel) AudioPIDs() []int { return c.audioPIDs }

// AudioStreamTypes returns the stream types parallel to AudioPIDs.
func (c *Channel) AudioStreamTypes() []psip.AudioStreamType { return c.audioStreamTypes }

// AudioTrackIndex returns the selected audio track index, -1 for none.
func (c *Channel) AudioTrackIndex() int { return c.audioTrackIndex }

// HasVideo reports whether the channel carries a video stream.
func (c *Channel) HasVideo() bool { return c.videoPID != InvalidPID }

// HasAudio reports whether an audio track is selected.
func (c *Channel) HasAudio() bool { return c.AudioPID() != InvalidPID }

// ChannelID returns the storage row id, InvalidChannelID until assigned.
func (c *Channel) ChannelID() int64 { return c.channelID }

// IsLocked reports the parental lock flag.
func (c *Channel) IsLocked() bool { return c.locked }

// IsRecordingProhibited reports whether recording this channel is prohibited.
func (c *Channel) IsRecordingProhibited() bool { return c.recordingProhibited }

// VideoFormat returns the asserted video format, empty when unset.
func (c *Channel) VideoFormat() string { return c.videoFormat }

// Filepath returns the source file path for file-backed channels.
func (c *Channel) Filepath() string { return c.filepath }

// HasCaptionTrack reports whether a caption track was announced.
func (c *Channel) HasCaptionTrack() bool { return c.hasCaptionTrack }

// AudioTracks returns the announced audio track descriptors.
func (c *Channel) AudioTracks() []psip.AudioTrack { return c.audioTracks }

// CaptionTracks returns the announced caption track descriptors.
func (c *Channel) CaptionTracks() []psip.CaptionTrack { return c.captionTracks }

// DisplayNumber returns the user-facing channel number. With ignoreZeroMinor
// a zero minor number is dropped ("5" instead of "5-0"); without a major
// number the program number is used.
func (c *Channel) DisplayNumber(ignoreZeroMinor bool) string {
	if c.virtualMajor != 0 && (c.virtualMinor != 0 || !ignoreZeroMinor) {
		return fmt.Sprintf("%d%c%d", c.virtualMajor, numberSeparator, c.virtualMinor)
	}
	if c.virtualMajor != 0 {
		return strconv.Itoa(c.virtualMajor)
	}
	return strconv.Itoa(c.programNumber)
}

// SetShortName sets the short channel name.
func (c *Channel) SetShortName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shortName = name
}

// SetVirtualMajor sets the major channel number.
func (c *Channel) SetVirtualMajor(major int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.virtualMajor = major
}

// SetVirtualMinor sets the minor channel number.
func (c *Channel) SetVirtualMinor(minor int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.virtualMinor = minor
}

// SetFrequency sets the tuning frequency.
func (c *Channel) SetFrequency(frequency int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frequency = frequency
}

// SetModulation sets the modulation mode.
func (c *Channel) SetModulation(modulation string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modulation = modulation
}

// SetVideoPID sets the video elementary PID.
func (c *Channel) SetVideoPID(pid int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.videoPID = pid
}

// SetAudioPIDs appends audio elementary PIDs in signaling order.
func (c *Channel) SetAudioPIDs(pids []int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.audioPIDs = append(c.audioPIDs, pids...)
}

// SetAudioStreamTypes appends audio stream types parallel to SetAudioPIDs.
func (c *Channel) SetAudioStreamTypes(types []psip.AudioStreamType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.audioStreamTypes = append(c.audioStreamTypes, types...)
}

// SelectAudioTrack selects the audio track at index. Any out-of-range index
// resets the selection to none; indices are never clamped.
func (c *Channel) SelectAudioTrack(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index >= 0 && index < len(c.audioPIDs) {
		c.audioTrackIndex = index
	} else {
		c.audioTrackIndex = -1
	}
}

// SetChannelID records the storage row id assigned to this channel.
func (c *Channel) SetChannelID(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channelID = id
}

// SetLocked sets the parental lock flag. The flag prevents unauthorized
// viewing of the channel regardless of content rating.
func (c *Channel) SetLocked(locked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = locked
}

// SetFilepath sets the source file path for file-backed channels.
func (c *Channel) SetFilepath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filepath = path
}

// SetHasCaptionTrack marks the channel as having a caption track.
func (c *Channel) SetHasCaptionTrack() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasCaptionTrack = true
}

// SetAudioTracks appends announced audio track descriptors.
func (c *Channel) SetAudioTracks(tracks []psip.AudioTrack) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.audioTracks = append(c.audioTracks, tracks...)
}

// SetCaptionTracks appends announced caption track descriptors.
func (c *Channel) SetCaptionTracks(tracks []psip.CaptionTrack) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.captionTracks = append(c.captionTracks, tracks...)
}

// SetRecordingProhibited sets the recording prohibition flag.
func (c *Channel) SetRecordingProhibited(prohibited bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordingProhibited = prohibited
}

// SetVideoFormat sets the asserted video format.
func (c *Channel) SetVideoFormat(format string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.videoFormat = format
}

// Compare orders channels by frequency, then program number (the sub-channel
// number within a frequency), then display name, then filepath. The result is
// negative, zero, or positive in the usual way.
func (c *Channel) Compare(o *Channel) int {
	if ret := c.frequency - o.frequency; ret != 0 {
		return ret
	}
	if ret := c.programNumber - o.programNumber; ret != 0 {
		return ret
	}
	if ret := strings.Compare(c.Name(), o.Name()); ret != 0 {
		return ret
	}
	// File-backed streams can only differ by path.
	return strings.Compare(c.filepath, o.filepath)
}

// Equal reports whether two channels share the same identity tuple
// (frequency, program number, display name, filepath). Row id, lock state
// and PIDs are not part of channel identity.
func (c *Channel) Equal(o *Channel) bool {
	if o == nil {
		return false
	}
	return c.Compare(o) == 0
}

// Hash returns an identity hash consistent with Equal.
func (c *Channel) Hash() uint64 {
	var buf [8]byte
	d := xxhash.New()
	binary.BigEndian.PutUint64(buf[:], uint64(int64(c.frequency)))
	d.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(int64(c.programNumber)))
	d.Write(buf[:])
	d.WriteString(c.Name())
	d.Write([]byte{0})
	d.WriteString(c.filepath)
	return d.Sum64()
}

// String returns a diagnostic description of the channel.
func (c *Channel) String() string {
	switch c.tunerType {
	case psip.TunerTypeFile:
		return fmt.Sprintf("{%d-%d %s} Filepath: %s, ProgramNumber %d",
			c.virtualMajor, c.virtualMinor, c.shortName, c.filepath, c.programNumber)
	default:
		return fmt.Sprintf("{%d-%d %s} Frequency: %d, ProgramNumber %d",
			c.virtualMajor, c.virtualMinor, c.shortName, c.frequency, c.programNumber)
	}
}
