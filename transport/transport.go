// Copyright (C) 2019-2024 Algorand, Inc.
// This file is part of go-algorand
//
// go-algorand is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algorand is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algorand.  If not, see <https://www.gnu.org/licenses/>.

// Package transport implements C2: point-to-point and broadcast delivery of
// consensus and sync wire messages over a static peer set.
package transport

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/atlasdb/atlasdb/logging"
	"github.com/atlasdb/atlasdb/protocol"
)

// Tag discriminates the wire messages a peer connection carries.
type Tag string

const (
	TagProposal    Tag = "PR"
	TagVote        Tag = "VT"
	TagHeartbeat   Tag = "HB"
	TagSyncRequest Tag = "SQ"
	TagSyncResp    Tag = "SR"
	TagRequestVote Tag = "RQ"
	TagVoteGrant   Tag = "RG"
	TagCommit      Tag = "CM"
)

// Envelope is one received message, tagged with the peer it arrived from.
type Envelope struct {
	From    string
	Tag     Tag
	Payload []byte
}

// Network is the capability boundary consensus and sync depend on, so the
// transport can be swapped (direct in-process delivery in tests, TCP in
// production) without touching C9's state machine.
type Network interface {
	// Broadcast sends payload under tag to every connected peer.
	Broadcast(tag Tag, payload []byte)
	// SendTo sends payload under tag to a single named peer.
	SendTo(peerID string, tag Tag, payload []byte) error
	// Incoming returns the channel of messages received from any peer.
	Incoming() <-chan Envelope
}

const maxFrameSize = 16 << 20

// frame is length-prefixed-tag-prefixed-payload: len(4) | tag(2) | payload.
func writeFrame(w io.Writer, tag Tag, payload []byte) error {
	if len(tag) != 2 {
		return fmt.Errorf("transport: tag must be exactly 2 bytes, got %q", tag)
	}
	buf := make([]byte, 4+2+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(2+len(payload)))
	copy(buf[4:6], tag)
	copy(buf[6:], payload)
	_, err := w.Write(buf)
	return err
}

func readFrame(r io.Reader) (Tag, []byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n < 2 || n > maxFrameSize {
		return "", nil, fmt.Errorf("transport: frame length %d out of bounds", n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return "", nil, err
	}
	return Tag(body[:2]), body[2:], nil
}

// peerConn is one outbound connection to a known peer.
type peerConn struct {
	id   string
	mu   sync.Mutex
	conn net.Conn
}

func (p *peerConn) send(tag Tag, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return fmt.Errorf("transport: peer %s not connected", p.id)
	}
	return writeFrame(p.conn, tag, payload)
}

// TCPNetwork implements Network over persistent TCP connections to a static
// peer set, each dialed once on construction. A failed dial or a dropped
// connection is not re-dialed, by this package or by the Orchestrator.
type TCPNetwork struct {
	selfID string
	peers  map[string]*peerConn
	in     chan Envelope
	log    logging.Logger
}

// NewTCPNetwork dials every address in peerAddrs (keyed by peer id) and
// starts accepting inbound connections on listenAddr.
func NewTCPNetwork(selfID, listenAddr string, peerAddrs map[string]string, log logging.Logger) (*TCPNetwork, error) {
	n := &TCPNetwork{
		selfID: selfID,
		peers:  make(map[string]*peerConn, len(peerAddrs)),
		in:     make(chan Envelope, 1024),
		log:    log,
	}
	for id, addr := range peerAddrs {
		n.peers[id] = &peerConn{id: id}
		go n.dialLoop(id, addr)
	}
	if listenAddr != "" {
		ln, err := net.Listen("tcp", listenAddr)
		if err != nil {
			return nil, fmt.Errorf("transport: listen %s: %w", listenAddr, err)
		}
		go n.acceptLoop(ln)
	}
	return n, nil
}

func (n *TCPNetwork) dialLoop(id, addr string) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		if n.log != nil {
			n.log.Warnf("transport: dial %s (%s) failed: %v", id, addr, err)
		}
		return
	}
	p := n.peers[id]
	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()
	n.readLoop(id, conn)
}

func (n *TCPNetwork) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go n.readLoop("", conn)
	}
}

func (n *TCPNetwork) readLoop(peerID string, conn net.Conn) {
	r := bufio.NewReader(conn)
	for {
		tag, payload, err := readFrame(r)
		if err != nil {
			if n.log != nil {
				n.log.Debugf("transport: connection to %s closed: %v", peerID, err)
			}
			return
		}
		n.in <- Envelope{From: peerID, Tag: tag, Payload: payload}
	}
}

// Broadcast implements Network.
func (n *TCPNetwork) Broadcast(tag Tag, payload []byte) {
	for id, p := range n.peers {
		if err := p.send(tag, payload); err != nil && n.log != nil {
			n.log.Debugf("transport: broadcast to %s failed: %v", id, err)
		}
	}
}

// SendTo implements Network.
func (n *TCPNetwork) SendTo(peerID string, tag Tag, payload []byte) error {
	p, ok := n.peers[peerID]
	if !ok {
		return fmt.Errorf("transport: unknown peer %s", peerID)
	}
	return p.send(tag, payload)
}

// Incoming implements Network.
func (n *TCPNetwork) Incoming() <-chan Envelope {
	return n.in
}

// EncodePayload is a thin convenience wrapper over protocol's canonical
// encoder, so callers never reach for encoding/json on the wire path.
func EncodePayload(v interface{}) []byte {
	return protocol.Encode(v)
}

// DecodePayload decodes a canonically-encoded payload into v.
func DecodePayload(payload []byte, v interface{}) error {
	return protocol.Decode(payload, v)
}
