// SPDX-License-Identifier: MIT

// Package udp streams spectrogram rows to a UDP listener, one packet per
// analysis window.
package udp

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"spektra/internal/analysis"
	applog "spektra/internal/log"
	"spektra/internal/transport"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Window Index      | uint32         | 4            | Row of the spectrogram  |
| Magnitude Count   | uint16         | 2            | Number of floats (N)    |
| Magnitudes        | []float32      | N * 4        | One spectrogram row     |
+-----------------------------------------------------------------------------+
*/

const (
	// HeaderSize is the number of bytes before the magnitudes.
	HeaderSize = 4 + 8 + 4 + 2
	// MaxPayloadSize is the largest IPv4 UDP payload.
	MaxPayloadSize = 65507
	// MaxRowLength is the most magnitudes one packet can carry.
	MaxRowLength = (MaxPayloadSize - HeaderSize) / 4
)

var (
	// ErrShortPacket is returned by DecodePacket for truncated input.
	ErrShortPacket = errors.New("short UDP packet")
	// ErrPacketTooLarge is returned by EncodePacket for rows longer than
	// MaxRowLength.
	ErrPacketTooLarge = errors.New("row does not fit in one UDP datagram")
)

// Packet is one decoded spectrogram row.
type Packet struct {
	Sequence   uint32
	Timestamp  int64
	Window     uint32
	Magnitudes []float32
}

// header mirrors the fixed part of the wire format for binary.Read/Write.
type header struct {
	Sequence  uint32
	Timestamp int64
	Window    uint32
	Count     uint16
}

// EncodePacket appends the wire form of p to buf.
func EncodePacket(buf *bytes.Buffer, p Packet) error {
	if len(p.Magnitudes) > MaxRowLength {
		return fmt.Errorf("%w: %d magnitudes, at most %d", ErrPacketTooLarge, len(p.Magnitudes), MaxRowLength)
	}
	h := header{
		Sequence:  p.Sequence,
		Timestamp: p.Timestamp,
		Window:    p.Window,
		Count:     uint16(len(p.Magnitudes)),
	}
	if err := binary.Write(buf, binary.BigEndian, h); err != nil {
		return err
	}
	return binary.Write(buf, binary.BigEndian, p.Magnitudes)
}

// DecodePacket parses one packet.
func DecodePacket(b []byte) (Packet, error) {
	if len(b) < HeaderSize {
		return Packet{}, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(b))
	}
	r := bytes.NewReader(b)

	var h header
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return Packet{}, err
	}
	if r.Len() < int(h.Count)*4 {
		return Packet{}, fmt.Errorf("%w: %d magnitudes declared, %d bytes left", ErrShortPacket, h.Count, r.Len())
	}

	mags := make([]float32, h.Count)
	if err := binary.Read(r, binary.BigEndian, mags); err != nil {
		return Packet{}, err
	}
	return Packet{Sequence: h.Sequence, Timestamp: h.Timestamp, Window: h.Window, Magnitudes: mags}, nil
}

// UDPPublisher sends every row of a spectrogram as its own packet, paced by
// interval so a real-time consumer can scroll through it.
type UDPPublisher struct {
	sender   *UDPSender
	interval time.Duration
	logger   applog.Logger

	sequenceNum  uint32
	packetBuffer *bytes.Buffer // Reused for every packet
}

// NewUDPPublisher creates a publisher. An interval of zero sends rows back
// to back; a negative one is an error.
func NewUDPPublisher(interval time.Duration, sender *UDPSender, logger applog.Logger) (*UDPPublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}
	if interval < 0 {
		return nil, fmt.Errorf("UDPPublisher: negative interval %s", interval)
	}
	if logger == nil {
		logger = applog.Default()
	}

	logger = applog.Prefixed(logger, "UDPPublisher: ")
	logger.Infof("Initializing (Interval: %s, Target: %s)", interval, sender.Target())

	return &UDPPublisher{
		sender:       sender,
		interval:     interval,
		logger:       logger,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Publish sends the rows of s in order. It returns early with ctx.Err()
// when ctx is cancelled. A UDPPublisher must not Publish concurrently.
func (p *UDPPublisher) Publish(ctx context.Context, s *analysis.Spectrogram) error {
	var ticker *time.Ticker
	if p.interval > 0 {
		ticker = time.NewTicker(p.interval)
		defer ticker.Stop()
	}

	for w := range s.NumWindows {
		if w > 0 && ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if err := p.sendRow(uint32(w), s.Row(w)); err != nil {
			return err
		}
	}

	p.logger.Debugf("Published %d rows", s.NumWindows)
	return nil
}

func (p *UDPPublisher) sendRow(window uint32, row []float32) error {
	p.sequenceNum++
	p.packetBuffer.Reset()

	err := EncodePacket(p.packetBuffer, Packet{
		Sequence:   p.sequenceNum,
		Timestamp:  time.Now().UnixNano(),
		Window:     window,
		Magnitudes: row,
	})
	if err != nil {
		return fmt.Errorf("UDPPublisher: packing row %d: %w", window, err)
	}

	if err := p.sender.Send(p.packetBuffer.Bytes()); err != nil {
		return err
	}
	p.logger.Debugf("Sent packet %d (%d bytes)", p.sequenceNum, p.packetBuffer.Len())
	return nil
}

// Send publishes s without a deadline.
func (p *UDPPublisher) Send(s *analysis.Spectrogram) error {
	return p.Publish(context.Background(), s)
}

// Close closes the underlying sender.
func (p *UDPPublisher) Close() error {
	p.logger.Debugf("Close called")
	return p.sender.Close()
}

// Ensure UDPPublisher satisfies the interface at compile time.
var _ transport.Transport = (*UDPPublisher)(nil)
