package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"github.com/saiputravu/matchcore/internal/common"
	"github.com/saiputravu/matchcore/internal/depth"
	"github.com/saiputravu/matchcore/internal/engine"
	matchnet "github.com/saiputravu/matchcore/internal/net"
)

const (
	maxRecvSize      = 4 * 1024
	defaultNWorkers  = 10
	defaultReadTimeo = 5 * time.Second
)

var (
	ErrImproperConversion = errors.New("improper type conversion")
	ErrClientDoesNotExist = errors.New("client does not exist")
)

// clientSession is a connected client, keyed by remote address.
type clientSession struct {
	conn net.Conn
}

// inboundMessage links one decoded wire message to the connection it
// arrived on, the way the teacher's ClientMessage did.
type inboundMessage struct {
	clientAddress string
	msg           matchnet.InboundMessage
}

// Server owns exactly one engine.Engine instance and one depth.Book,
// and is the sole caller of Engine.Process: every connection's reads
// are funneled through sessionHandler, which is the single owner
// spec §5 requires.
type Server struct {
	address string
	port    int

	engine *engine.Engine[common.Symbol]
	depth  *depth.Book

	pool   WorkerPool
	cancel context.CancelFunc

	sessionsLock sync.Mutex
	sessions     map[string]clientSession

	inbound chan inboundMessage
}

// New constructs a server wrapping a fresh engine for the given
// order/price asset pair.
func New(address string, port int, orderAsset, priceAsset common.Symbol, cfg engine.Config) *Server {
	return &Server{
		address:  address,
		port:     port,
		engine:   engine.New(orderAsset, priceAsset, cfg),
		depth:    depth.New(),
		pool:     NewWorkerPool(defaultNWorkers),
		sessions: make(map[string]clientSession),
		inbound:  make(chan inboundMessage, 1),
	}
}

func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// Run blocks, accepting connections until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("unable to start listener")
		return
	}
	defer listener.Close()

	// Closing the listener unblocks Accept once ctx is done.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	t.Go(func() error { s.pool.Setup(t, s.handleConnection); return nil })
	t.Go(func() error { return s.sessionHandler(t) })

	log.Info().Str("address", listener.Addr().String()).Msg("server running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				log.Error().Err(err).Msg("error accepting client")
				continue
			}
			log.Info().Str("address", conn.RemoteAddr().String()).Msg("client connected")
			s.addSession(conn)
			s.pool.AddTask(conn)
		}
	}
}

// sessionHandler is the single goroutine that calls engine.Process:
// every inbound message is handled one at a time, in arrival order,
// satisfying spec §5's serialization requirement.
func (s *Server) sessionHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case im := <-s.inbound:
			s.handle(im)
		}
	}
}

func (s *Server) handle(im inboundMessage) {
	events := s.engine.Process(im.msg.Request)
	s.depth.Apply(events)
	s.noteRestIfAny(im.msg.Request, events)

	for _, ev := range events {
		log.Info().
			Str("clientAddress", im.clientAddress).
			Str("correlation", im.msg.Correlation.String()).
			Str("event", common.DescribeEvent(ev)).
			Msg("engine event")
	}

	if err := s.reply(im.clientAddress, im.msg.Correlation, events); err != nil {
		log.Error().Err(err).Str("clientAddress", im.clientAddress).Msg("error replying to client")
	}
}

// noteRestIfAny feeds the depth book a limit order's resting state
// when the event list shows it survived matching with qty left over,
// matching the contract depth.Book.Apply documents.
func (s *Server) noteRestIfAny(req engine.Request[common.Symbol], events []engine.Event) {
	limitReq, ok := req.(engine.NewLimitRequest[common.Symbol])
	if !ok || len(events) == 0 {
		return
	}
	accepted, ok := events[0].(engine.AcceptedEvent)
	if !ok {
		return
	}
	remaining := limitReq.Qty
	for _, ev := range events {
		switch e := ev.(type) {
		case engine.FilledEvent:
			if e.OrderID == accepted.ID {
				remaining = 0
			}
		case engine.PartiallyFilledEvent:
			if e.OrderID == accepted.ID {
				remaining -= e.Qty
			}
		}
	}
	if remaining > 0 {
		s.depth.NoteRest(accepted.ID, limitReq.Side, limitReq.Price, remaining)
	}
}

func (s *Server) reply(clientAddress string, corr uuid.UUID, events []engine.Event) error {
	s.sessionsLock.Lock()
	session, ok := s.sessions[clientAddress]
	s.sessionsLock.Unlock()
	if !ok {
		return ErrClientDoesNotExist
	}
	for _, ev := range events {
		if _, err := session.conn.Write(matchnet.EncodeEvent(corr, ev)); err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
	}
	return nil
}

// handleConnection reads one message off a connection, decodes it and
// hands it to sessionHandler, then returns the connection to the pool
// for its next message.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	if err := conn.SetReadDeadline(time.Now().Add(defaultReadTimeo)); err != nil {
		log.Error().Err(err).Msg("failed setting read deadline")
		return nil
	}

	buf := make([]byte, maxRecvSize)
	select {
	case <-t.Dying():
		return nil
	default:
		n, err := conn.Read(buf)
		if err != nil {
			log.Debug().Err(err).Str("address", conn.RemoteAddr().String()).Msg("connection closed")
			s.removeSession(conn.RemoteAddr().String())
			return nil
		}

		msg, err := matchnet.ParseMessage(buf[:n])
		if err != nil {
			log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("error parsing message")
			s.removeSession(conn.RemoteAddr().String())
			return nil
		}

		s.inbound <- inboundMessage{clientAddress: conn.RemoteAddr().String(), msg: msg}
		s.pool.AddTask(conn)
	}
	return nil
}

func (s *Server) addSession(conn net.Conn) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	s.sessions[conn.RemoteAddr().String()] = clientSession{conn: conn}
}

func (s *Server) removeSession(address string) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	delete(s.sessions, address)
}
