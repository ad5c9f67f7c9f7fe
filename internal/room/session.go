package room

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fishkagame/fishka-backend/internal/game"
	"github.com/fishkagame/fishka-backend/internal/protocol"
	"github.com/fishkagame/fishka-backend/internal/store"
)

const (
	idleTimerKey  = "idle"
	pauseTimerKey = "pause"

	// serverActionRounds bounds the engine-driven action loop per commit so
	// a misbehaving plugin cannot spin the actor forever.
	serverActionRounds = 8

	persistTimeout = 3 * time.Second
)

type ownedStroke struct {
	protocol.Stroke
	ownerID string
}

// Session is one live room. All mutable fields below the mailbox are owned
// by the run goroutine; outside callers reach them via post or call.
type Session struct {
	code     string
	games    *game.Registry
	st       store.Store
	opts     Options
	logger   *slog.Logger
	onRemove func(code string)

	mailbox   chan func()
	closed    chan struct{}
	closeOnce sync.Once

	status    protocol.RoomStatus
	settings  protocol.RoomSettings
	createdAt time.Time
	players   []*Player
	banned    map[string]bool
	strokes   []ownedStroke

	plugin       game.Plugin
	gameState    game.State
	pause        *protocol.PauseInfo
	timers       *TimerSet
	gameTimerKey string
}

func newSession(code string, settings protocol.RoomSettings, games *game.Registry, st store.Store, opts Options, logger *slog.Logger, onRemove func(string)) *Session {
	s := &Session{
		code:      code,
		games:     games,
		st:        st,
		opts:      opts,
		logger:    logger.With("room", code),
		onRemove:  onRemove,
		mailbox:   make(chan func(), 256),
		closed:    make(chan struct{}),
		status:    protocol.StatusLobby,
		settings:  settings,
		createdAt: time.Now(),
		banned:    make(map[string]bool),
		timers:    NewTimerSet(),
	}
	s.armIdle()
	go s.run()
	return s
}

func (s *Session) Code() string { return s.code }

func (s *Session) run() {
	for {
		select {
		case <-s.closed:
			return
		case fn := <-s.mailbox:
			fn()
			select {
			case <-s.closed:
				return
			default:
			}
			s.armIdle()
		}
	}
}

func (s *Session) armIdle() {
	s.timers.Schedule(idleTimerKey, s.opts.IdleTimeout, func() {
		s.post(func() { s.teardown("idle") })
	})
}

// post enqueues fn for the run goroutine. Returns false once the room is
// torn down.
func (s *Session) post(fn func()) bool {
	select {
	case <-s.closed:
		return false
	case s.mailbox <- fn:
		return true
	}
}

// call runs fn on the actor and waits for it.
func (s *Session) call(fn func()) bool {
	done := make(chan struct{})
	if !s.post(func() {
		fn()
		close(done)
	}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-s.closed:
		return false
	}
}

// Join seats a new player. On success the joining connection receives
// roomCreated or roomJoined and everyone else sees playerJoined.
func (s *Session) Join(p *Player, asCreator bool) error {
	var joinErr *RoomError
	ok := s.call(func() { joinErr = s.handleJoin(p, asCreator) })
	if !ok {
		return roomErr(protocol.ErrRoomNotFound, "room is gone")
	}
	if joinErr != nil {
		return joinErr
	}
	return nil
}

// Reconnect rebinds an existing seat to a fresh connection. Returns false
// when the seat no longer exists (evicted or never part of this room).
func (s *Session) Reconnect(playerID string, sink Sink) bool {
	var found bool
	ok := s.call(func() { found = s.handleReconnect(playerID, sink) })
	return ok && found
}

// Disconnect marks a seat as connectionless and starts the reconnect clock.
func (s *Session) Disconnect(playerID string) {
	s.post(func() { s.handleDisconnect(playerID) })
}

// Joinable reports whether the room shows up in public listings right now.
func (s *Session) Joinable() (protocol.RoomInfo, bool) {
	var info protocol.RoomInfo
	var ok bool
	alive := s.call(func() {
		if s.settings.IsPrivate || s.status != protocol.StatusLobby || len(s.players) >= s.settings.MaxPlayers {
			return
		}
		info = s.roomInfo()
		ok = true
	})
	return info, alive && ok
}

// Handle routes a decoded client intent into the actor.
func (s *Session) Handle(playerID string, intent protocol.ClientIntent) {
	s.post(func() { s.dispatch(playerID, intent) })
}

func (s *Session) dispatch(playerID string, intent protocol.ClientIntent) {
	p := s.find(playerID)
	if p == nil {
		return
	}
	switch in := intent.(type) {
	case *protocol.LeaveRoom:
		s.handleLeave(p)
	case *protocol.Heartbeat:
		s.handleHeartbeat(p)
	case *protocol.StartGame:
		s.handleStartGame(p)
	case *protocol.GameAction:
		s.handleGameAction(p, in.Action)
	case *protocol.UpdateSettings:
		s.handleUpdateSettings(p, &in.Settings)
	case *protocol.SwitchTeam:
		s.handleSwitchTeam(p, in.TeamID)
	case *protocol.KickPlayer:
		s.handleKick(p, in.TargetPlayerID)
	case *protocol.ReturnToLobby:
		s.handleReturnToLobby(p)
	case *protocol.EndGame:
		s.handleEndGame(p)
	case *protocol.DrawStroke:
		s.handleDrawStroke(p, in.Points, in.NewStroke)
	case *protocol.DrawClear:
		s.handleDrawClear(p)
	case *protocol.DrawUndo:
		s.handleDrawUndo(p)
	default:
		s.sendError(p, protocol.ErrInvalidAction, "unsupported in-room message")
	}
}

// --- roster ---

func (s *Session) handleJoin(p *Player, asCreator bool) *RoomError {
	if s.banned[p.ID] {
		return roomErr(protocol.ErrPlayerBanned, "you were removed from this room")
	}
	if s.status != protocol.StatusLobby {
		return roomErr(protocol.ErrRoomInProgress, "game already in progress")
	}
	if len(s.players) >= s.settings.MaxPlayers {
		return roomErr(protocol.ErrRoomFull, "room is full")
	}
	for _, other := range s.players {
		if strings.EqualFold(other.Name, p.Name) {
			return roomErr(protocol.ErrPlayerNameTaken, "that name is taken")
		}
	}
	p.IsConnected = true
	p.IsHost = len(s.players) == 0
	p.JoinedAt = time.Now()
	s.players = append(s.players, p)
	s.armHeartbeat(p.ID)

	if asCreator {
		s.sendTo(p, &protocol.RoomCreated{Room: s.roomInfo()})
	} else {
		s.sendTo(p, &protocol.RoomJoined{Room: s.roomInfo()})
	}
	s.broadcastExcept(&protocol.PlayerJoined{Player: p.Info()}, p.ID)
	s.persistRoom()
	return nil
}

func (s *Session) handleReconnect(playerID string, sink Sink) bool {
	p := s.find(playerID)
	if p == nil {
		return false
	}
	if old := p.sink; old != nil {
		old.Detach()
	}
	p.sink = sink
	p.IsConnected = true
	s.timers.Cancel("reconnect:" + playerID)
	s.armHeartbeat(playerID)
	s.ensureHost()

	s.broadcastExcept(&protocol.PlayerReconnected{PlayerID: playerID}, playerID)
	s.sendTo(p, &protocol.RoomState{Room: s.roomInfo()})
	if s.status == protocol.StatusPlaying && s.plugin != nil {
		s.sendTo(p, &protocol.GameState{GameState: s.viewFor(p)})
		if len(s.strokes) > 0 {
			out := make([]protocol.Stroke, len(s.strokes))
			for i, st := range s.strokes {
				out[i] = st.Stroke
			}
			s.sendTo(p, &protocol.DrawHistory{Strokes: out})
		}
		if s.pause != nil && s.pause.DisconnectedPlayerID == playerID {
			s.resumeGame()
		} else if s.pause != nil {
			s.sendTo(p, &protocol.GamePaused{PauseInfo: *s.pause})
		}
	}
	s.persistRoom()
	return true
}

func (s *Session) handleDisconnect(playerID string) {
	p := s.find(playerID)
	if p == nil || !p.IsConnected {
		return
	}
	p.IsConnected = false
	p.sink = nil
	s.timers.Cancel("hb:" + playerID)
	s.broadcast(&protocol.PlayerDisconnected{PlayerID: playerID})
	s.ensureHost()

	if s.status == protocol.StatusPlaying && s.plugin != nil && s.pause == nil &&
		s.plugin.PauseOnDisconnect(s.gameState, playerID) {
		s.pauseGame(p)
	}

	id := playerID
	s.timers.Schedule("reconnect:"+id, s.opts.ReconnectWindow, func() {
		s.post(func() {
			if q := s.find(id); q != nil && !q.IsConnected {
				s.removePlayer(q, true)
			}
		})
	})
	s.persistRoom()
}

func (s *Session) handleLeave(p *Player) {
	if sink := p.sink; sink != nil {
		sink.Detach()
	}
	s.removePlayer(p, true)
}

func (s *Session) removePlayer(p *Player, announce bool) {
	for i, q := range s.players {
		if q.ID == p.ID {
			s.players = append(s.players[:i], s.players[i+1:]...)
			break
		}
	}
	s.timers.Cancel("hb:" + p.ID)
	s.timers.Cancel("reconnect:" + p.ID)
	if announce {
		s.broadcast(&protocol.PlayerLeft{PlayerID: p.ID})
	}
	s.ensureHost()
	if len(s.players) == 0 {
		s.teardown("empty")
		return
	}
	s.broadcast(&protocol.RoomState{Room: s.roomInfo()})
	s.persistRoom()
}

// ensureHost keeps the host flag on a connected player whenever one exists,
// preferring join order.
func (s *Session) ensureHost() {
	var host *Player
	for _, p := range s.players {
		if p.IsHost {
			host = p
			break
		}
	}
	if host != nil && host.IsConnected {
		return
	}
	for _, p := range s.players {
		if p.IsConnected {
			if host != nil {
				host.IsHost = false
			}
			p.IsHost = true
			return
		}
	}
	// Everyone is gone; keep the old host flag so a reconnect restores it.
}

func (s *Session) handleHeartbeat(p *Player) {
	s.armHeartbeat(p.ID)
}

func (s *Session) armHeartbeat(playerID string) {
	id := playerID
	s.timers.Schedule("hb:"+id, s.opts.HeartbeatTimeout, func() {
		s.post(func() { s.handleDisconnect(id) })
	})
}

func (s *Session) handleKick(p *Player, targetID string) {
	if !p.IsHost {
		s.sendError(p, protocol.ErrNotHost, "only the host can kick players")
		return
	}
	if s.status == protocol.StatusPlaying {
		s.sendError(p, protocol.ErrInvalidAction, "cannot kick players mid-game")
		return
	}
	target := s.find(targetID)
	if target == nil {
		s.sendError(p, protocol.ErrInvalidAction, "no such player")
		return
	}
	if target.ID == p.ID {
		s.sendError(p, protocol.ErrInvalidAction, "cannot kick yourself")
		return
	}
	s.banned[target.ID] = true
	s.broadcast(&protocol.PlayerKicked{PlayerID: target.ID})
	if sink := target.sink; sink != nil {
		sink.Detach()
	}
	s.removePlayer(target, false)
}

func (s *Session) handleSwitchTeam(p *Player, teamID string) {
	if s.status != protocol.StatusLobby {
		s.sendError(p, protocol.ErrInvalidAction, "teams are locked while a game is running")
		return
	}
	p.TeamID = teamID
	p.IsSpectator = teamID == SpectatorTeam
	s.broadcast(&protocol.RoomState{Room: s.roomInfo()})
	s.persistRoom()
}

func (s *Session) handleUpdateSettings(p *Player, next *protocol.RoomSettings) {
	if !p.IsHost {
		s.sendError(p, protocol.ErrNotHost, "only the host can change settings")
		return
	}
	if s.status == protocol.StatusPlaying {
		s.sendError(p, protocol.ErrInvalidAction, "cannot change settings mid-game")
		return
	}
	merged := MergeSettings(s.settings, next)
	if merged.MaxPlayers < len(s.players) {
		s.sendError(p, protocol.ErrInvalidAction, "maxPlayers below current roster size")
		return
	}
	if s.games.Lookup(merged.GameID) == nil {
		s.sendError(p, protocol.ErrGameNotFound, "unknown game: "+merged.GameID)
		return
	}
	s.settings = merged
	s.broadcast(&protocol.SettingsUpdated{Settings: s.settings})
	s.persistRoom()
}

// --- game lifecycle ---

func (s *Session) handleStartGame(p *Player) {
	if !p.IsHost {
		s.sendError(p, protocol.ErrNotHost, "only the host can start the game")
		return
	}
	if s.status != protocol.StatusLobby {
		s.sendError(p, protocol.ErrInvalidAction, "game already started")
		return
	}
	plugin := s.games.Lookup(s.settings.GameID)
	if plugin == nil {
		s.sendError(p, protocol.ErrGameNotFound, "unknown game: "+s.settings.GameID)
		return
	}
	infos := make([]game.PlayerInfo, 0, len(s.players))
	active := 0
	for _, q := range s.players {
		infos = append(infos, game.PlayerInfo{
			ID:          q.ID,
			Name:        q.Name,
			IsSpectator: q.IsSpectator || !q.IsConnected,
			TeamID:      q.TeamID,
		})
		if q.IsConnected && !q.IsSpectator {
			active++
		}
	}
	if active < plugin.MinPlayers() {
		s.sendError(p, protocol.ErrNotEnoughPlayers,
			fmt.Sprintf("%s needs at least %d players", plugin.ID(), plugin.MinPlayers()))
		return
	}
	state, err := plugin.CreateInitialState(infos, s.settings.GameConfig)
	if err != nil {
		s.sendError(p, protocol.ErrInvalidAction, err.Error())
		return
	}
	s.plugin = plugin
	s.gameState = state
	s.status = protocol.StatusPlaying
	s.strokes = nil
	s.pause = nil
	for _, q := range s.players {
		s.sendTo(q, &protocol.GameStarted{GameState: s.viewFor(q)})
	}
	s.armGameTimer()
	s.persistRoom()
	s.persistGame()
	s.logger.Info("game started", "game", plugin.ID(), "players", active)
}

func (s *Session) handleGameAction(p *Player, raw json.RawMessage) {
	if s.status != protocol.StatusPlaying || s.plugin == nil {
		s.sendError(p, protocol.ErrGameNotStarted, "no game in progress")
		return
	}
	if s.pause != nil {
		s.sendTo(p, &protocol.GameActionResult{Success: false, Error: "game is paused"})
		return
	}
	var act game.Action
	if err := json.Unmarshal(raw, &act); err != nil || act.Type == "" {
		s.sendTo(p, &protocol.GameActionResult{Success: false, Error: "malformed action"})
		return
	}
	if msg := s.plugin.ValidateAction(s.gameState, act, p.ID); msg != "" {
		s.sendTo(p, &protocol.GameActionResult{Success: false, Error: msg})
		return
	}
	next := s.plugin.Reduce(s.gameState, act, p.ID)
	if next == nil {
		s.sendTo(p, &protocol.GameActionResult{Success: false, Error: "illegal action"})
		return
	}
	s.sendTo(p, &protocol.GameActionResult{Success: true})
	s.commit(next)
}

// commit installs a new game state, drains engine-driven actions, pushes
// per-player views and re-arms the game timer.
func (s *Session) commit(next game.State) {
	s.gameState = next
	for i := 0; i < serverActionRounds; i++ {
		acts := s.plugin.ServerActions(s.gameState)
		if len(acts) == 0 {
			break
		}
		changed := false
		for _, a := range acts {
			if st := s.plugin.Reduce(s.gameState, a, ""); st != nil {
				s.gameState = st
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	if s.plugin.IsGameOver(s.gameState) {
		s.finishGame()
		return
	}
	for _, q := range s.players {
		s.sendTo(q, &protocol.GameState{GameState: s.viewFor(q)})
	}
	s.armGameTimer()
	s.persistGame()
}

func (s *Session) finishGame() {
	s.status = protocol.StatusFinished
	s.cancelGameTimer()
	s.pause = nil
	s.timers.Cancel(pauseTimerKey)
	s.broadcast(&protocol.GameOver{FinalState: s.plugin.SpectatorView(s.gameState)})
	s.persistRoom()
	s.persistGame()
	s.logger.Info("game over", "game", s.plugin.ID())
}

func (s *Session) handleReturnToLobby(p *Player) {
	if !p.IsHost {
		s.sendError(p, protocol.ErrNotHost, "only the host can return to the lobby")
		return
	}
	if s.status == protocol.StatusLobby {
		s.sendError(p, protocol.ErrInvalidAction, "already in the lobby")
		return
	}
	s.cancelGameTimer()
	s.timers.Cancel(pauseTimerKey)
	s.plugin = nil
	s.gameState = nil
	s.pause = nil
	s.strokes = nil
	s.status = protocol.StatusLobby
	s.broadcast(&protocol.ReturnedToLobby{Room: s.roomInfo()})
	s.persistRoom()
	s.deleteGameSnapshot()
}

func (s *Session) handleEndGame(p *Player) {
	if !p.IsHost {
		s.sendError(p, protocol.ErrNotHost, "only the host can end the game")
		return
	}
	if s.status != protocol.StatusPlaying {
		s.sendError(p, protocol.ErrGameNotStarted, "no game in progress")
		return
	}
	s.finishGame()
}

// --- pause ---

func (s *Session) pauseGame(p *Player) {
	now := time.Now()
	s.pause = &protocol.PauseInfo{
		DisconnectedPlayerID:   p.ID,
		DisconnectedPlayerName: p.Name,
		PausedAt:               now.UnixMilli(),
		TimeoutAt:              now.Add(s.opts.PauseTimeout).UnixMilli(),
	}
	s.cancelGameTimer()
	s.timers.Schedule(pauseTimerKey, s.opts.PauseTimeout, func() {
		s.post(s.pauseExpired)
	})
	s.broadcast(&protocol.GamePaused{PauseInfo: *s.pause})
}

func (s *Session) resumeGame() {
	s.pause = nil
	s.timers.Cancel(pauseTimerKey)
	s.broadcast(&protocol.GameResumed{})
	s.gameTimerKey = ""
	s.armGameTimer()
}

// pauseExpired fires when the disconnected player never came back. The game
// ends rather than limping on around an empty seat.
func (s *Session) pauseExpired() {
	if s.pause == nil || s.status != protocol.StatusPlaying {
		return
	}
	s.logger.Info("pause expired, ending game", "player", s.pause.DisconnectedPlayerID)
	s.finishGame()
}

// --- timers ---

func (s *Session) armGameTimer() {
	if s.plugin == nil || s.status != protocol.StatusPlaying {
		return
	}
	tc := s.plugin.TimerConfig(s.gameState)
	if tc == nil {
		s.cancelGameTimer()
		return
	}
	key := "game:" + tc.Key
	if key == s.gameTimerKey {
		return
	}
	s.cancelGameTimer()
	s.gameTimerKey = key
	action := tc.Action
	s.timers.Schedule(key, tc.Duration, func() {
		s.post(func() { s.gameTimerFired(key, action) })
	})
	s.broadcast(&protocol.TimerSync{EndsAt: time.Now().Add(tc.Duration).UnixMilli()})
}

func (s *Session) cancelGameTimer() {
	if s.gameTimerKey != "" {
		s.timers.Cancel(s.gameTimerKey)
		s.gameTimerKey = ""
	}
}

func (s *Session) gameTimerFired(key string, action game.Action) {
	if s.status != protocol.StatusPlaying || s.plugin == nil || s.pause != nil {
		return
	}
	if s.gameTimerKey != key {
		return
	}
	s.gameTimerKey = ""
	next := s.plugin.Reduce(s.gameState, action, "")
	if next == nil {
		s.logger.Warn("timer action rejected", "action", action.Type)
		return
	}
	s.commit(next)
}

// --- drawing ---

// handleDrawStroke appends points to the sender's current stroke, starting
// a fresh one when asked, and relays the delta to everyone else.
func (s *Session) handleDrawStroke(p *Player, points []protocol.Point, newStroke bool) {
	if s.status != protocol.StatusPlaying {
		return
	}
	appended := false
	if !newStroke {
		for i := len(s.strokes) - 1; i >= 0; i-- {
			if s.strokes[i].ownerID == p.ID {
				s.strokes[i].Points = append(s.strokes[i].Points, points...)
				appended = true
				break
			}
		}
	}
	if !appended {
		s.strokes = append(s.strokes, ownedStroke{
			Stroke:  protocol.Stroke{Points: points},
			ownerID: p.ID,
		})
	}
	s.broadcastExcept(&protocol.StrokeAdded{PlayerID: p.ID, Points: points, NewStroke: newStroke}, p.ID)
}

func (s *Session) handleDrawClear(p *Player) {
	if s.status != protocol.StatusPlaying {
		return
	}
	s.strokes = nil
	s.broadcast(&protocol.CanvasCleared{PlayerID: p.ID})
}

func (s *Session) handleDrawUndo(p *Player) {
	if s.status != protocol.StatusPlaying {
		return
	}
	for i := len(s.strokes) - 1; i >= 0; i-- {
		if s.strokes[i].ownerID == p.ID {
			s.strokes = append(s.strokes[:i], s.strokes[i+1:]...)
			s.broadcast(&protocol.StrokeUndone{PlayerID: p.ID})
			return
		}
	}
}

// --- helpers ---

func (s *Session) find(playerID string) *Player {
	for _, p := range s.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (s *Session) viewFor(p *Player) any {
	if p.IsSpectator {
		return s.plugin.SpectatorView(s.gameState)
	}
	return s.plugin.PlayerView(s.gameState, p.ID)
}

func (s *Session) roomInfo() protocol.RoomInfo {
	infos := make([]protocol.PlayerInfo, 0, len(s.players))
	hostID := ""
	for _, p := range s.players {
		infos = append(infos, p.Info())
		if p.IsHost {
			hostID = p.ID
		}
	}
	return protocol.RoomInfo{
		Code:      s.code,
		Status:    s.status,
		HostID:    hostID,
		Players:   infos,
		Settings:  s.settings,
		CreatedAt: s.createdAt.UnixMilli(),
	}
}

func (s *Session) sendTo(p *Player, ev protocol.Event) {
	if sink := p.sink; sink != nil {
		sink.Send(ev)
	}
}

func (s *Session) sendError(p *Player, code protocol.ErrorCode, message string) {
	s.sendTo(p, protocol.NewError(code, message))
}

func (s *Session) broadcast(ev protocol.Event) {
	for _, p := range s.players {
		s.sendTo(p, ev)
	}
}

func (s *Session) broadcastExcept(ev protocol.Event, playerID string) {
	for _, p := range s.players {
		if p.ID != playerID {
			s.sendTo(p, ev)
		}
	}
}

// --- persistence ---

func (s *Session) persistRoom() {
	data, err := json.Marshal(s.roomInfo())
	if err != nil {
		s.logger.Error("marshal room snapshot", "error", err)
		return
	}
	s.writeSnapshot(store.NamespaceRoom, data)
}

func (s *Session) persistGame() {
	if s.gameState == nil {
		return
	}
	data, err := json.Marshal(s.gameState)
	if err != nil {
		s.logger.Error("marshal game snapshot", "error", err)
		return
	}
	s.writeSnapshot(store.NamespaceGame, data)
}

// writeSnapshot ships marshaled bytes to the store off the actor goroutine.
func (s *Session) writeSnapshot(ns store.Namespace, data []byte) {
	code := s.code
	logger := s.logger
	st := s.st
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := st.Set(ctx, ns, code, data); err != nil {
			logger.Warn("persist snapshot", "namespace", string(ns), "error", err)
		}
	}()
}

func (s *Session) deleteGameSnapshot() {
	code := s.code
	st := s.st
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := st.Delete(ctx, store.NamespaceGame, code); err != nil && err != store.ErrNotFound {
			s.logger.Warn("delete game snapshot", "error", err)
		}
	}()
}

// --- teardown ---

func (s *Session) teardown(reason string) {
	s.closeOnce.Do(func() {
		s.logger.Info("room closed", "reason", reason)
		s.timers.CancelAll()
		for _, p := range s.players {
			if sink := p.sink; sink != nil {
				sink.Detach()
			}
			p.sink = nil
		}
		code := s.code
		st := s.st
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			defer cancel()
			_ = st.Delete(ctx, store.NamespaceRoom, code)
			_ = st.Delete(ctx, store.NamespaceGame, code)
		}()
		if s.onRemove != nil {
			s.onRemove(s.code)
		}
		close(s.closed)
	})
}
