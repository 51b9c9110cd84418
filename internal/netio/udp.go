// Package netio provides the two small datagram abstractions the core
// depends on: a bound receive handle and a connected send handle. Both are
// best-effort UDP — no handshake, no retransmission, no fragmentation
// handling.
package netio

import (
	"fmt"
	"net"
)

// recvBufferSize is the fixed receive buffer: large enough for any RTP
// header plus Opus payload within common MTUs.
const recvBufferSize = 2048

// SendHandle transmits datagrams to a single fixed remote address.
type SendHandle struct {
	conn *net.UDPConn
}

// ConnectTo binds an ephemeral local UDP port and targets remote for all
// subsequent sends.
func ConnectTo(remote string) (*SendHandle, error) {
	addr, err := net.ResolveUDPAddr("udp", remote)
	if err != nil {
		return nil, fmt.Errorf("netio: resolve remote %q: %w", remote, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("netio: dial %q: %w", remote, err)
	}
	return &SendHandle{conn: conn}, nil
}

// Send writes data to the remote endpoint, returning the number of bytes
// written. Callers treat any error as transient: log and continue, per
// the best-effort transport contract.
func (h *SendHandle) Send(data []byte) (int, error) {
	return h.conn.Write(data)
}

// LocalAddr returns the local address the send socket is bound to.
func (h *SendHandle) LocalAddr() net.Addr {
	return h.conn.LocalAddr()
}

// Close releases the underlying socket.
func (h *SendHandle) Close() error {
	return h.conn.Close()
}

// RecvHandle receives datagrams on a bound local port from any source.
type RecvHandle struct {
	conn *net.UDPConn
	buf  []byte
}

// Bind opens a UDP socket listening on 0.0.0.0:port.
func Bind(port uint16) (*RecvHandle, error) {
	addr := &net.UDPAddr{IP: net.IPv4zero, Port: int(port)}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("netio: bind 0.0.0.0:%d: %w", port, err)
	}
	return &RecvHandle{conn: conn, buf: make([]byte, recvBufferSize)}, nil
}

// Recv blocks until one datagram arrives, returning its payload (valid
// until the next call to Recv) and the sender's address.
func (h *RecvHandle) Recv() ([]byte, net.Addr, error) {
	n, src, err := h.conn.ReadFromUDP(h.buf)
	if err != nil {
		return nil, nil, err
	}
	return h.buf[:n], src, nil
}

// LocalAddr returns the address the receive socket is bound to.
func (h *RecvHandle) LocalAddr() net.Addr {
	return h.conn.LocalAddr()
}

// Close releases the underlying socket, unblocking any pending Recv.
func (h *RecvHandle) Close() error {
	return h.conn.Close()
}
