// Package ingestor builds channel records from recorded transport streams.
// It demuxes the signaling tables (PAT, PMT, SDT) out of a stream file and
// feeds the resulting items to the channel record constructors.
package ingestor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/asticode/go-astits"

	"github.com/ottkit/tunerd/internal/config"
	"github.com/ottkit/tunerd/internal/psip"
	"github.com/ottkit/tunerd/internal/tuner"
)

// tsPacketSize is the fixed MPEG-TS packet length.
const tsPacketSize = 188

// Scanner extracts channel records from transport stream files.
type Scanner struct {
	maxPackets int
	log        *slog.Logger
}

// NewScanner creates a scanner with the given configuration.
func NewScanner(cfg config.ScannerConfig, log *slog.Logger) *Scanner {
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{maxPackets: cfg.MaxPackets, log: log}
}

// ScanFile scans one recorded stream file and returns the channels found in
// it, ordered by their natural channel order.
func (s *Scanner) ScanFile(ctx context.Context, path string) ([]*tuner.Channel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stream file: %w", err)
	}
	defer f.Close()

	return s.Scan(ctx, f, path)
}

// Scan demuxes signaling tables from r and builds one channel record per
// program. filepath is recorded on every produced channel. Reading stops at
// EOF, at the configured packet budget, or as soon as every table announced
// by the PAT has been collected.
func (s *Scanner) Scan(ctx context.Context, r io.Reader, filepath string) ([]*tuner.Channel, error) {
	if s.maxPackets > 0 {
		r = io.LimitReader(r, int64(s.maxPackets)*tsPacketSize)
	}
	dmx := astits.NewDemuxer(ctx, r)

	var (
		expected = map[int]bool{} // program numbers announced by the PAT
		programs = map[int][]psip.PMTItem{}
		services = map[int]psip.SDTItem{}
		patSeen  bool
		sdtSeen  bool
	)

	for {
		d, err := dmx.NextData()
		if err != nil {
			if errors.Is(err, astits.ErrNoMorePackets) || errors.Is(err, io.EOF) {
				break
			}
			if ctx.Err() != nil {
				return nil, fmt.Errorf("scanning stream: %w", ctx.Err())
			}
			return nil, fmt.Errorf("demuxing stream: %w", err)
		}

		switch {
		case d.PAT != nil:
			patSeen = true
			for _, p := range d.PAT.Programs {
				// Program 0 carries the network PID, not a service.
				if p.ProgramNumber != 0 {
					expected[int(p.ProgramNumber)] = true
				}
			}
		case d.PMT != nil:
			programs[int(d.PMT.ProgramNumber)] = pmtItems(d.PMT)
		case d.SDT != nil:
			sdtSeen = true
			for id, item := range sdtItems(d.SDT) {
				services[id] = item
			}
		}

		if patSeen && sdtSeen && complete(expected, programs) {
			break
		}
	}

	var channels []*tuner.Channel
	for pn, items := range programs {
		var c *tuner.Channel
		if svc, ok := services[pn]; ok {
			c = tuner.ForDVBFile(&svc, items)
		} else {
			// No service entry; carry the program number only.
			c = tuner.ForDVBFile(&psip.SDTItem{ServiceID: pn}, items)
		}
		c.SetFilepath(filepath)
		channels = append(channels, c)
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].Compare(channels[j]) < 0
	})

	s.log.Info("stream scan finished",
		slog.String("file", filepath),
		slog.Int("programs", len(programs)),
		slog.Int("services", len(services)),
		slog.Int("channels", len(channels)),
	)
	return channels, nil
}

// complete reports whether a PMT has been collected for every program the
// PAT announced.
func complete(expected map[int]bool, programs map[int][]psip.PMTItem) bool {
	if len(expected) == 0 {
		return false
	}
	for pn := range expected {
		if _, ok := programs[pn]; !ok {
			return false
		}
	}
	return true
}

// pmtItems converts a demuxed PMT into signaling items, including the
// synthetic PCR entry.
func pmtItems(pmt *astits.PMTData) []psip.PMTItem {
	items := make([]psip.PMTItem, 0, len(pmt.ElementaryStreams)+1)
	for _, es := range pmt.ElementaryStreams {
		items = append(items, psip.PMTItem{
			StreamType:    int(es.StreamType),
			ElementaryPID: int(es.ElementaryPID),
		})
	}
	items = append(items, psip.NewPCRItem(int(pmt.PCRPID)))
	return items
}

// sdtItems converts a demuxed SDT into signaling items keyed by service id.
// Services without a service descriptor are kept with an empty name.
func sdtItems(sdt *astits.SDTData) map[int]psip.SDTItem {
	items := make(map[int]psip.SDTItem, len(sdt.Services))
	for _, svc := range sdt.Services {
		item := psip.SDTItem{ServiceID: int(svc.ServiceID)}
		for _, d := range svc.Descriptors {
			if d.Service != nil {
				item.ServiceName = string(d.Service.Name)
				item.ProviderName = string(d.Service.Provider)
				item.ServiceType = int(d.Service.Type)
			}
		}
		items[int(svc.ServiceID)] = item
	}
	return items
}
