// Package gameserver wires every other package into the running server: a
// UDP socket, the session table, one tick of physics, the active game mode,
// the wire codec, replay recording and ban checks — all driven from a single
// goroutine (spec §5), grounded on the source's HQMServer::run main loop
// (hqm_server.rs) the way the teacher's GameServer.Start drove its own
// per-room loop from a ticker.
package gameserver

import (
	"context"
	"encoding/binary"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/migomipo/hqmgo/config"
	"github.com/migomipo/hqmgo/internal/ban"
	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/modes"
	"github.com/migomipo/hqmgo/internal/physics"
	"github.com/migomipo/hqmgo/internal/protocol"
	"github.com/migomipo/hqmgo/internal/replay"
	"github.com/migomipo/hqmgo/internal/session"
	"github.com/migomipo/hqmgo/internal/world"
)

// tickInterval is the simulation rate (spec §4.2, §5): 100Hz, one tick per
// 10ms of wall-clock time.
const tickInterval = 10 * time.Millisecond

// Server owns every piece of mutable state the tick loop touches. Nothing
// here is protected by a mutex: all of it is read and written from Run's
// goroutine only (spec §5 "single authoritative goroutine, no locks").
type Server struct {
	cfg  config.ServerConfiguration
	conn *net.UDPConn
	log  zerolog.Logger

	mode modes.Mode
	game *world.Game

	sessions *session.Table
	history  *protocol.History

	banChecker ban.Checker
	replaySink replay.Sink
	recorder   *replay.Recorder

	joinLimiter *ipLimiters
	infoLimiter *ipLimiters

	startTime     time.Time
	statsSnapshot atomic.Value // holds statsResponse, published once per tick for the ops HTTP server
}

// ipLimiters hands out one rate.Limiter per source IP, lazily. It lives
// entirely inside the tick goroutine (no locking) just like everything else
// on Server.
type ipLimiters struct {
	limiters map[string]*rate.Limiter
	r        rate.Limit
	burst    int
}

func newIPLimiters(r rate.Limit, burst int) *ipLimiters {
	return &ipLimiters{limiters: make(map[string]*rate.Limiter), r: r, burst: burst}
}

func (l *ipLimiters) allow(ip net.IP) bool {
	key := ip.String()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.r, l.burst)
		l.limiters[key] = lim
	}
	return lim.Allow()
}

// New builds a Server ready to Run. mode is the already-constructed active
// game mode (built from cfg.ModeParams by the caller — see cmd/hqmserver).
func New(cfg config.ServerConfiguration, conn *net.UDPConn, mode modes.Mode, banChecker ban.Checker, replaySink replay.Sink, log zerolog.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		conn:        conn,
		log:         log,
		mode:        mode,
		sessions:    session.NewTable(cfg.PlayerMax),
		history:     protocol.NewHistory(),
		banChecker:  banChecker,
		replaySink:  replaySink,
		joinLimiter: newIPLimiters(rate.Every(time.Second), 3),
		infoLimiter: newIPLimiters(rate.Every(time.Second), 5),
		startTime:   time.Now(),
	}
	s.startNewGame()
	s.publishStats()
	return s
}

func (s *Server) startNewGame() {
	if s.game != nil && s.cfg.ReplayMode != config.ReplayOff {
		s.finishReplay()
	}
	gameNumber := 1
	if s.game != nil {
		gameNumber = s.game.GameNumber + 1
	}
	s.game = s.mode.CreateGame(gameNumber)
	s.history = protocol.NewHistory()
	if s.cfg.ReplayMode != config.ReplayOff {
		s.recorder = replay.NewRecorder(s.cfg.ServerName, gameNumber, time.Now())
	}
}

func (s *Server) finishReplay() {
	if s.recorder == nil {
		return
	}
	s.recorder.Finish(s.replaySink)
	s.recorder = nil
}

// Run drives the tick loop until ctx is cancelled. Between ticks it drains
// the UDP socket with a read deadline pinned to the next tick boundary, so a
// quiet network doesn't spin the loop and a busy one can't starve physics
// (spec §5 "bounded per-tick work").
func (s *Server) Run(ctx context.Context) error {
	next := time.Now()
	buf := make([]byte, protocol.MaxPacketSize)
	for {
		select {
		case <-ctx.Done():
			s.finishReplay()
			return ctx.Err()
		default:
		}

		next = next.Add(tickInterval)
		for {
			remaining := time.Until(next)
			if remaining <= 0 {
				break
			}
			s.conn.SetReadDeadline(next)
			n, addr, err := s.conn.ReadFromUDP(buf)
			if err != nil {
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					break
				}
				continue
			}
			s.handlePacket(buf[:n], addr)
		}

		s.advanceTick()
	}
}

func (s *Server) handlePacket(buf []byte, addr *net.UDPAddr) {
	if len(buf) < 5 || binary.LittleEndian.Uint32(buf[:4]) != protocol.Magic {
		return
	}
	switch buf[4] {
	case protocol.CmdRequestInfo:
		if s.infoLimiter.allow(addr.IP) {
			s.handleRequestInfo(addr)
		}
	case protocol.CmdJoin:
		if s.joinLimiter.allow(addr.IP) {
			s.handleJoin(buf, addr)
		}
	case protocol.CmdInput:
		s.handleInput(buf, addr)
	case protocol.CmdExit:
		s.handleExit(buf, addr)
	}
}

// modeID is an implementation-defined value reported in the INFO reply; the
// spec names the field but not its encoding (see DESIGN.md).
func (s *Server) modeID() uint32 {
	switch s.cfg.ModeParams.Mode {
	case "warmup":
		return 1
	case "shootout":
		return 2
	case "russian":
		return 3
	case "practice":
		return 4
	default:
		return 0
	}
}

func (s *Server) handleRequestInfo(addr *net.UDPAddr) {
	buf := make([]byte, protocol.MaxPacketSize)
	n := protocol.EncodeInfoReply(buf, uint32(s.sessions.Count()), uint32(s.cfg.TeamMax), s.modeID(), s.cfg.ServerName)
	s.conn.WriteToUDP(buf[:n], addr)
}

func (s *Server) handleJoin(buf []byte, addr *net.UDPAddr) {
	msg, ok := protocol.DecodeJoin(buf)
	if !ok {
		return
	}

	if sess := s.sessions.FindByAddr(addr); sess != nil {
		out := make([]byte, protocol.MaxPacketSize)
		n := protocol.EncodeJoinReply(out, sess.SlotIndex)
		s.conn.WriteToUDP(out[:n], addr)
		return
	}

	resp := ban.Allowed
	if s.banChecker != nil {
		resp = s.banChecker.Check(addr.IP)
	}
	if resp == ban.Banned {
		return
	}

	name := strings.TrimSpace(msg.PlayerName)
	if name == "" {
		name = "Player"
	}

	sess := s.sessions.Admit(addr, msg.ClientToken, msg.Version, name, s.game.GameStep, resp == ban.Pending)
	out := make([]byte, protocol.MaxPacketSize)
	if sess == nil {
		n := protocol.EncodeJoinReply(out, -1)
		s.conn.WriteToUDP(out[:n], addr)
		return
	}

	s.game.AddGlobalMessage(world.Message{
		Kind:         world.MessagePlayerUpdate,
		PlayerName:   sess.PlayerName,
		ObjectSlot:   -1,
		SessionSlot:  sess.SlotIndex,
		PlayerInGame: false,
	})
	n := protocol.EncodeJoinReply(out, sess.SlotIndex)
	s.conn.WriteToUDP(out[:n], addr)
	s.log.Info().Str("name", sess.PlayerName).Int("slot", sess.SlotIndex).Str("addr", addr.String()).Msg("player joined")
}

func (s *Server) handleInput(buf []byte, addr *net.UDPAddr) {
	msg, ok := protocol.DecodeInput(buf)
	if !ok {
		return
	}
	sess := s.sessions.FindByAddr(addr)
	if sess == nil || sess.Token != msg.SessionToken {
		return
	}
	sess.InputPrev = sess.InputCurrent
	sess.InputCurrent = msg.Input
	sess.LastPacketSeenAtTick = s.game.GameStep
	sess.LastAckSnapshot = msg.LastAckSnapshot
	sess.HasAckSnapshot = true
	sess.LastAckMessage = msg.LastAckMessage

	if msg.HasChat {
		s.handleChat(sess, msg.ChatText)
	}
}

func (s *Server) handleExit(buf []byte, addr *net.UDPAddr) {
	msg, ok := protocol.DecodeExit(buf)
	if !ok {
		return
	}
	sess := s.sessions.FindByAddr(addr)
	if sess == nil || sess.Token != msg.SessionToken {
		return
	}
	s.removeSession(sess)
}

func (s *Server) removeSession(sess *session.Session) {
	s.mode.BeforeSessionExit(s, sess.SlotIndex)
	if sess.SkaterObjectIndex >= 0 {
		s.game.World.RemoveObject(sess.SkaterObjectIndex)
	}
	s.game.AddGlobalMessage(world.Message{
		Kind:         world.MessagePlayerUpdate,
		PlayerName:   sess.PlayerName,
		ObjectSlot:   -1,
		SessionSlot:  sess.SlotIndex,
		PlayerInGame: false,
	})
	s.sessions.Remove(sess.SlotIndex)
}

// handleChat either dispatches a leading-slash command to the active mode or
// appends a plain chat message (spec §6.6).
func (s *Server) handleChat(sess *session.Session, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if !strings.HasPrefix(text, "/") {
		s.game.AddChatMessage(sess.SlotIndex, text)
		return
	}
	fields := strings.SplitN(text[1:], " ", 2)
	cmd := fields[0]
	arg := ""
	if len(fields) == 2 {
		arg = fields[1]
	}
	switch cmd {
	case "admin":
		sess.Admin = (arg != "" && arg == s.cfg.Password)
	default:
		if sess.Admin {
			s.mode.HandleCommand(s, cmd, arg, sess.SlotIndex)
		}
	}
}

func (s *Server) advanceTick() {
	s.mode.BeforeTick(s)

	cfg := s.cfg.PhysicsParams.ToPhysicsConfig()
	events := physics.Tick(s.game, cfg)

	s.mode.AfterTick(s, events)

	if s.game.GameOver && s.game.BreakTicks == 0 {
		s.startNewGame()
	}

	s.expireSessions()
	s.broadcast()
	s.publishStats()
}

func (s *Server) expireSessions() {
	for _, sess := range s.sessions.Expired(s.game.GameStep) {
		s.log.Info().Int("slot", sess.SlotIndex).Msg("session timed out")
		s.removeSession(sess)
	}
}

// maxMessagesPerPacket bounds how many persistent messages ride a single
// snapshot so a burst of goals/joins can't blow the 1400-byte MTU budget
// (spec §4.3 leaves the exact cutoff to the implementation).
const maxMessagesPerPacket = 8

func (s *Server) broadcast() {
	snap := protocol.BuildSnapshot(s.game)
	s.history.Push(snap)

	if s.recorder != nil {
		absBuf := make([]byte, protocol.MaxPacketSize*4)
		n := protocol.EncodeGameState(absBuf, s.game, snap, nil, s.game.PersistentMessages)
		s.recorder.Append(absBuf[:n])
	}

	out := make([]byte, protocol.MaxPacketSize)
	for _, sess := range s.sessions.All() {
		var prev *protocol.Snapshot
		if sess.HasAckSnapshot {
			if p, ok := s.history.Get(sess.LastAckSnapshot); ok {
				prev = &p
			}
		}

		owed := s.game.PersistentMessages
		if sess.LastAckMessage < uint32(len(owed)) {
			owed = owed[sess.LastAckMessage:]
		} else {
			owed = nil
		}
		if len(owed) > maxMessagesPerPacket {
			owed = owed[:maxMessagesPerPacket]
		}

		n := protocol.EncodeGameState(out, s.game, snap, prev, owed)
		s.conn.WriteToUDP(out[:n], sess.Addr)
	}
}

// --- modes.ServerAPI ---

func (s *Server) Game() *world.Game { return s.game }

func (s *Server) SessionTeam(sessionSlot int) (world.Team, bool) {
	sess := s.sessions.Get(sessionSlot)
	if sess == nil || sess.SkaterObjectIndex < 0 {
		return 0, false
	}
	slot := &s.game.World.Slots[sess.SkaterObjectIndex]
	if slot.Kind != world.SlotSkater {
		return 0, false
	}
	return slot.Skater.Team, true
}

func (s *Server) SessionInput(sessionSlot int) world.PlayerInput {
	sess := s.sessions.Get(sessionSlot)
	if sess == nil {
		return world.PlayerInput{}
	}
	return sess.InputCurrent
}

func (s *Server) SessionPreferredPosition(sessionSlot int) string {
	sess := s.sessions.Get(sessionSlot)
	if sess == nil {
		return ""
	}
	return sess.PreferredPosition
}

func (s *Server) SessionName(sessionSlot int) string {
	sess := s.sessions.Get(sessionSlot)
	if sess == nil {
		return ""
	}
	return sess.PlayerName
}

// InGameSessions returns every connected session's slot index, spectators
// included — modes decide for themselves which of these are actually on a
// team (spec §4.5 hooks iterate "every session", not just skaters).
func (s *Server) InGameSessions() []int {
	var out []int
	for _, sess := range s.sessions.All() {
		out = append(out, sess.SlotIndex)
	}
	return out
}

func (s *Server) SpawnSkater(sessionSlot int, team world.Team, pos mathutil.Vec3, rot mathutil.Mat3) {
	sess := s.sessions.Get(sessionSlot)
	if sess == nil {
		return
	}
	if sess.SkaterObjectIndex >= 0 {
		s.game.World.RemoveObject(sess.SkaterObjectIndex)
	}
	position := sess.PreferredPosition
	if position == "" {
		position = "C"
	}
	idx := s.game.World.CreatePlayerObject(team, pos, rot, world.HandRight, sessionSlot, position)
	sess.SkaterObjectIndex = idx
	sess.Role = session.RoleSkater
	s.game.AddGlobalMessage(world.Message{
		Kind:         world.MessagePlayerUpdate,
		PlayerName:   sess.PlayerName,
		ObjectSlot:   idx,
		ObjectTeam:   team,
		SessionSlot:  sessionSlot,
		PlayerInGame: true,
	})
}

func (s *Server) MoveToSpectator(sessionSlot int) {
	sess := s.sessions.Get(sessionSlot)
	if sess == nil {
		return
	}
	if sess.SkaterObjectIndex >= 0 {
		s.game.World.RemoveObject(sess.SkaterObjectIndex)
		sess.SkaterObjectIndex = -1
	}
	sess.Role = session.RoleSpectator
	s.game.AddGlobalMessage(world.Message{
		Kind:         world.MessagePlayerUpdate,
		PlayerName:   sess.PlayerName,
		ObjectSlot:   -1,
		SessionSlot:  sessionSlot,
		PlayerInGame: false,
	})
}

func (s *Server) AddChatMessage(sender int, text string) {
	s.game.AddChatMessage(sender, text)
}

var _ modes.ServerAPI = (*Server)(nil)
