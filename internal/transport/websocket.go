// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"spektra/internal/analysis"
	"spektra/internal/fft"
	applog "spektra/internal/log"
	"spektra/pkg/bitint"
)

// Message types exchanged on /ws.
const (
	TypeProcess     = "process"
	TypeSpectrogram = "spectrogram"
)

// DefaultMaxFFTSize is the largest window a client may request unless
// WithMaxFFTSize says otherwise.
const DefaultMaxFFTSize = 1 << 16

// ErrInvalidRequest wraps every rejected request parameter.
var ErrInvalidRequest = errors.New("invalid request")

// maxMessageBytes bounds a single request; a minute of 48 kHz audio as
// JSON floats fits comfortably.
const maxMessageBytes = 64 << 20

// Request asks the server to compute a strided spectrogram.
type Request struct {
	Type       string    `json:"type"`
	Samples    []float32 `json:"samples"`
	FFTSize    int       `json:"fftSize"`
	Overlap    float32   `json:"overlap"`
	TimeStride int       `json:"timeStride"`
	FreqStride int       `json:"freqStride"`
}

// Response answers a Request or carries a broadcast spectrogram.
type Response struct {
	Type       string    `json:"type,omitempty"`
	Success    bool      `json:"success"`
	Data       []float32 `json:"data"`
	NumWindows int       `json:"numWindows"`
	FreqBins   int       `json:"freqBins"`
	Message    string    `json:"message,omitempty"`
}

func errorResponse(err error) Response {
	return Response{Success: false, Message: err.Error()}
}

func spectrogramResponse(typ string, s *analysis.Spectrogram) Response {
	return Response{
		Type:       typ,
		Success:    true,
		Data:       s.Data,
		NumWindows: s.NumWindows,
		FreqBins:   s.FreqBins,
	}
}

// client is one websocket connection. Writes from the request loop and the
// broadcaster are serialised by writeMu. proc is only touched by the
// connection's own request loop.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	proc    *analysis.SpectrogramProcessor
}

func (c *client) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// Server answers spectrogram requests over WebSocket and broadcasts
// spectrograms passed to Send to every connected client.
type Server struct {
	addr     string
	upgrader websocket.Upgrader
	logger   applog.Logger
	procOpts []analysis.Option

	defaultFFTSize int
	maxFFTSize     int

	clients   map[*client]struct{}
	clientsMu sync.Mutex
	broadcast chan *analysis.Spectrogram
	done      chan struct{}
	closeOnce sync.Once

	server   *http.Server
	listener net.Listener
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the logger for connection events and errors.
func WithServerLogger(l applog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = applog.Prefixed(l, "WebSocketServer: ")
		}
	}
}

// WithDefaultFFTSize sets the window used when a request omits fftSize.
func WithDefaultFFTSize(n int) ServerOption {
	return func(s *Server) { s.defaultFFTSize = n }
}

// WithMaxFFTSize caps the window size clients may request.
func WithMaxFFTSize(n int) ServerOption {
	return func(s *Server) { s.maxFFTSize = n }
}

// WithProcessorOptions passes options to every per-connection processor.
func WithProcessorOptions(opts ...analysis.Option) ServerOption {
	return func(s *Server) { s.procOpts = append(s.procOpts, opts...) }
}

// NewServer creates a Server for addr and starts its broadcast loop. Call
// Start to listen, or mount Handler on an existing server.
func NewServer(addr string, opts ...ServerOption) *Server {
	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local tool; any origin may connect.
			},
		},
		logger:         applog.Prefixed(applog.Default(), "WebSocketServer: "),
		defaultFFTSize: 1024,
		maxFFTSize:     DefaultMaxFFTSize,
		clients:        make(map[*client]struct{}),
		broadcast:      make(chan *analysis.Spectrogram, 256),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.handleBroadcasts()
	return s
}

// Handler returns the HTTP handler serving /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.server = &http.Server{Handler: s.Handler()}

	go func() {
		s.logger.Infof("Starting WebSocket server on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("Server error: %v", err)
		}
	}()
	return nil
}

// Addr returns the listening address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// handleWebSocket upgrades the connection and serves its requests until the
// peer goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("Upgrade error: %v", err)
		return
	}
	conn.SetReadLimit(maxMessageBytes)

	c := &client{conn: conn}
	s.clientsMu.Lock()
	s.clients[c] = struct{}{}
	total := len(s.clients)
	s.clientsMu.Unlock()
	s.logger.Infof("Client connected, total: %d", total)

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c)
		total := len(s.clients)
		s.clientsMu.Unlock()
		conn.Close()
		s.logger.Infof("Client disconnected, total: %d", total)
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warnf("Read error: %v", err)
			}
			return
		}

		resp := s.handleMessage(c, msg)
		if err := c.writeJSON(resp); err != nil {
			s.logger.Warnf("Error sending response: %v", err)
			return
		}
	}
}

// handleMessage decodes and serves one request.
func (s *Server) handleMessage(c *client, msg []byte) Response {
	var req Request
	if err := json.Unmarshal(msg, &req); err != nil {
		return errorResponse(fmt.Errorf("malformed request: %w", err))
	}
	if req.Type != TypeProcess {
		return errorResponse(fmt.Errorf("unknown message type: %q", req.Type))
	}

	size := req.FFTSize
	if size == 0 {
		size = s.defaultFFTSize
	}
	if err := s.checkRequest(size, req.Overlap); err != nil {
		return errorResponse(err)
	}

	// One processor per connection, rebuilt only when the size changes.
	if c.proc == nil || c.proc.FFTSize() != size {
		opts := append([]analysis.Option{analysis.WithLogger(s.logger)}, s.procOpts...)
		proc, err := analysis.NewSpectrogramProcessor(size, opts...)
		if err != nil {
			return errorResponse(err)
		}
		c.proc = proc
		s.logger.Debugf("Created processor for fft size %d", size)
	}

	result, err := c.proc.ProcessWindowsWith(req.Samples, req.Overlap, analysis.Strides{
		Time: req.TimeStride,
		Freq: req.FreqStride,
	})
	if err != nil {
		return errorResponse(err)
	}
	return spectrogramResponse("", result)
}

// checkRequest rejects sizes and overlaps that would make a single request
// allocate or compute without bound.
func (s *Server) checkRequest(size int, overlap float32) error {
	if !bitint.IsPowerOfTwo(size) || size < 2 {
		return fmt.Errorf("%w: fftSize %d: %w", ErrInvalidRequest, size, fft.ErrNotPowerOfTwo)
	}
	if size > s.maxFFTSize {
		return fmt.Errorf("%w: fftSize %d exceeds %d", ErrInvalidRequest, size, s.maxFFTSize)
	}
	if overlap < 0 || overlap >= 1 {
		return fmt.Errorf("%w: overlap %g must be in [0, 1)", ErrInvalidRequest, overlap)
	}
	return nil
}

// handleBroadcasts sends queued spectrograms to all connected clients.
func (s *Server) handleBroadcasts() {
	for {
		select {
		case <-s.done:
			return
		case sp := <-s.broadcast:
			msg := spectrogramResponse(TypeSpectrogram, sp)
			s.clientsMu.Lock()
			for c := range s.clients {
				if err := c.writeJSON(msg); err != nil {
					s.logger.Warnf("Error sending to client: %v", err)
					c.conn.Close()
					delete(s.clients, c)
				}
			}
			s.clientsMu.Unlock()
		}
	}
}

// Send queues sp for broadcast. When the queue is full the spectrogram is
// dropped.
func (s *Server) Send(sp *analysis.Spectrogram) error {
	select {
	case <-s.done:
		return errors.New("websocket server is closed")
	default:
	}

	select {
	case s.broadcast <- sp:
	default:
		s.logger.Warnf("Broadcast queue full, dropping spectrogram")
	}
	return nil
}

// Close stops the broadcast loop, disconnects clients and shuts the HTTP
// server down.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.logger.Infof("Closing server")
		close(s.done)

		s.clientsMu.Lock()
		for c := range s.clients {
			c.conn.Close()
		}
		s.clients = make(map[*client]struct{})
		s.clientsMu.Unlock()

		if s.server != nil {
			err = s.server.Close()
		}
	})
	return err
}

// Ensure Server satisfies the interface
var _ Transport = (*Server)(nil)
