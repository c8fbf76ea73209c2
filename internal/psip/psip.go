// Package psip defines the signaling-table item types consumed when building
// tuner channel records: virtual channel table (VCT) entries, service
// description table (SDT) entries, and program map table (PMT) entries, along
// with the stream-type and service-type registries used to classify them.
//
// Items are plain data produced by a transport-stream demuxer; this package
// does not parse raw TS bytes.
package psip

// VCTItem is one entry from an ATSC virtual channel table. It carries the
// user-facing channel identity for one service.
type VCTItem struct {
	ShortName   string
	LongName    string
	TSID        int
	Program     int
	MajorNumber int
	MinorNumber int
	Description string

	// ServiceType is the raw ATSC service_type code point.
	ServiceType int
}

// SDTItem is one entry from a DVB service description table.
type SDTItem struct {
	ServiceName  string
	ProviderName string
	ServiceID    int

	// ServiceType is the raw service_type code point.
	ServiceType int
}

// PMTItem describes one elementary stream within a program map table:
// its stream_type code and elementary PID.
type PMTItem struct {
	StreamType    int
	ElementaryPID int
}

// StreamTypePCR is the synthetic stream-type marker used for the program
// clock reference entry of a PMT. Real ISO 13818-1 stream_type codes occupy
// 0x00-0xff, so 0x100 cannot collide with an elementary stream.
const StreamTypePCR = 0x100

// NewPCRItem returns the synthetic PMT entry carrying the PCR PID.
func NewPCRItem(pid int) PMTItem {
	return PMTItem{StreamType: StreamTypePCR, ElementaryPID: pid}
}
