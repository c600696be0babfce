package pcapreader

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/samaelod/netprobe/types"
)

// Options narrows which packets become responses.
type Options struct {
	// Port is the server side port. Zero means guess it from the capture.
	Port     int
	Protocol types.Protocol // tcp when empty
}

type packetSource interface {
	LinkType() layers.LinkType
	ReadPacketData() (data []byte, ci gopacket.CaptureInfo, err error)
}

type packetDataSource struct {
	src      packetSource
	linkType layers.LinkType
}

func (p *packetDataSource) LinkType() layers.LinkType {
	return p.linkType
}

func (p *packetDataSource) ReadPacketData() (data []byte, ci gopacket.CaptureInfo, err error) {
	return p.src.ReadPacketData()
}

// pcapng starts with a Section Header Block, 0x0A0D0D0A.
const ngMagic = 0x0A0D0D0A

func openPacketSource(r io.Reader) (packetSource, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("read capture header: %w", err)
	}

	magic := uint32(header[0]) | uint32(header[1])<<8 | uint32(header[2])<<16 | uint32(header[3])<<24
	if magic == ngMagic {
		return pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	}
	return pcapgo.NewReader(br)
}

type segment struct {
	srcPort, dstPort int
	syn, ack         bool
	payload          []byte
}

// ReadPCAP turns the payloads a server sent in a capture into response
// entries, in capture order.
func ReadPCAP(path string, opts Options) ([]types.ResponseEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	source, err := openPacketSource(file)
	if err != nil {
		return nil, err
	}

	proto := opts.Protocol
	if proto == "" {
		proto = types.ProtocolTCP
	}

	ds := &packetDataSource{src: source, linkType: source.LinkType()}
	packetSrc := gopacket.NewPacketSource(ds, ds.LinkType())

	var segments []segment
	for packet := range packetSrc.Packets() {
		if packet.NetworkLayer() == nil {
			continue
		}

		switch proto {
		case types.ProtocolTCP:
			tcpLayer := packet.Layer(layers.LayerTypeTCP)
			if tcpLayer == nil {
				continue
			}
			tcp := tcpLayer.(*layers.TCP)
			segments = append(segments, segment{
				srcPort: int(tcp.SrcPort),
				dstPort: int(tcp.DstPort),
				syn:     tcp.SYN,
				ack:     tcp.ACK,
				payload: tcp.Payload,
			})
		case types.ProtocolUDP:
			udpLayer := packet.Layer(layers.LayerTypeUDP)
			if udpLayer == nil {
				continue
			}
			udp := udpLayer.(*layers.UDP)
			segments = append(segments, segment{
				srcPort: int(udp.SrcPort),
				dstPort: int(udp.DstPort),
				payload: udp.Payload,
			})
		}
	}

	port := opts.Port
	if port == 0 {
		port = guessServerPort(segments)
	}
	if port == 0 {
		return nil, fmt.Errorf("no %s traffic in %s", proto, path)
	}

	var entries []types.ResponseEntry
	for _, s := range segments {
		if s.srcPort != port || len(s.payload) == 0 {
			continue
		}
		entries = append(entries, types.ResponseEntry{
			Index:   len(entries),
			Kind:    types.KindHex,
			Payload: append([]byte(nil), s.payload...),
		})
	}

	return entries, nil
}

// guessServerPort prefers the target of the first bare SYN, then the
// destination of the first packet carrying data.
func guessServerPort(segments []segment) int {
	for _, s := range segments {
		if s.syn && !s.ack {
			return s.dstPort
		}
	}
	for _, s := range segments {
		if len(s.payload) > 0 {
			return s.dstPort
		}
	}
	return 0
}
