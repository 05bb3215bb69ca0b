package game

import (
	"sort"
	"sync"
	"time"

	"wordclash-service/internal/domain"
)

// player is the in-memory participant record. Per-round fields (answered,
// answer, correct) are reset at the start of every round.
type player struct {
	userID    string
	username  string
	score     int
	spectator bool
	bot       bool

	answered bool
	answer   string
	correct  bool
}

// round is the active question of a room while status is playing.
type round struct {
	index     int
	question  domain.QuestionItem
	options   []string
	startedAt time.Time
}

// Room is one quiz session. All mutation goes through its mutex; the engine
// never holds two room locks at once, so cross-room operations stay fully
// parallel.
type Room struct {
	code   string
	hostID string

	mu          sync.Mutex
	now         func() time.Time
	status      domain.Status
	settings    domain.Settings
	players     []*player // insertion order = join order
	questions   []domain.QuestionItem
	pool        []domain.QuestionItem
	roundIdx    int
	round       *round
	advancing   bool // transition lock: at most one advance per completion
	subscribers map[chan domain.Event]struct{}
}

func newRoom(code, hostID string, settings domain.Settings, now func() time.Time) *Room {
	return &Room{
		code:        code,
		hostID:      hostID,
		now:         now,
		status:      domain.StatusWaiting,
		settings:    settings,
		subscribers: make(map[chan domain.Event]struct{}),
	}
}

// Code returns the room's join code.
func (r *Room) Code() string { return r.code }

// tryBeginAdvanceLocked acquires the transition lock. Returns false if an
// advance is already mid-flight.
func (r *Room) tryBeginAdvanceLocked() bool {
	if r.advancing {
		return false
	}
	r.advancing = true
	return true
}

func (r *Room) endAdvanceLocked() {
	r.advancing = false
}

// currentLocked reports whether the round scheduled at index idx is still the
// live one. Timer callbacks use this as their stale-schedule check.
func (r *Room) currentLocked(idx int) bool {
	return r.status == domain.StatusPlaying && r.round != nil && r.round.index == idx
}

func (r *Room) findPlayerLocked(userID string) *player {
	for _, p := range r.players {
		if p.userID == userID {
			return p
		}
	}
	return nil
}

// eligibleLocked counts non-spectator players; they are the ones that answer
// and gate round completion.
func (r *Room) eligibleLocked() int {
	n := 0
	for _, p := range r.players {
		if !p.spectator {
			n++
		}
	}
	return n
}

func (r *Room) allAnsweredLocked() bool {
	any := false
	for _, p := range r.players {
		if p.spectator {
			continue
		}
		any = true
		if !p.answered {
			return false
		}
	}
	return any
}

// minWaitRemainingLocked returns how long completion must still be deferred so
// every client has had a chance to render the question. Zero for solo rooms.
func (r *Room) minWaitRemainingLocked(minWait time.Duration) time.Duration {
	if r.round == nil || r.eligibleLocked() <= 1 {
		return 0
	}
	remaining := minWait - r.now().Sub(r.round.startedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (r *Room) resetAnswersLocked() {
	for _, p := range r.players {
		p.answered = false
		p.answer = ""
		p.correct = false
	}
}

func (r *Room) stateLocked() domain.RoomState {
	players := make([]domain.PlayerState, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, domain.PlayerState{
			UserID:      p.userID,
			Username:    p.username,
			Score:       p.score,
			IsSpectator: p.spectator,
			IsBot:       p.bot,
			Answered:    p.answered,
		})
	}
	roundNum := 0
	if r.status != domain.StatusWaiting {
		roundNum = r.roundIdx + 1
	}
	return domain.RoomState{
		Code:     r.code,
		HostID:   r.hostID,
		Status:   r.status,
		Settings: r.settings,
		Round:    roundNum,
		Players:  players,
	}
}

func (r *Room) snapshotLocked() domain.RoomSnapshot {
	state := r.stateLocked()
	return domain.RoomSnapshot{
		Code:      state.Code,
		HostID:    state.HostID,
		Status:    state.Status,
		Settings:  state.Settings,
		Round:     state.Round,
		Players:   state.Players,
		UpdatedAt: r.now(),
	}
}

func (r *Room) roundResultLocked() domain.RoundResult {
	results := make([]domain.PlayerResult, 0, len(r.players))
	for _, p := range r.players {
		if p.spectator {
			continue
		}
		results = append(results, domain.PlayerResult{
			UserID:   p.userID,
			Username: p.username,
			Answered: p.answered,
			Correct:  p.correct,
			Score:    p.score,
		})
	}
	return domain.RoundResult{
		Round:         r.roundIdx + 1,
		TotalRounds:   r.settings.Rounds,
		CorrectAnswer: r.round.question.Answer,
		Players:       results,
	}
}

// leaderboardLocked ranks non-spectators by score descending; the stable sort
// keeps join order for ties.
func (r *Room) leaderboardLocked() domain.Leaderboard {
	ranked := make([]*player, 0, len(r.players))
	for _, p := range r.players {
		if !p.spectator {
			ranked = append(ranked, p)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	entries := make([]domain.LeaderboardEntry, 0, len(ranked))
	for i, p := range ranked {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:     i + 1,
			UserID:   p.userID,
			Username: p.username,
			Score:    p.score,
		})
	}
	return domain.Leaderboard{Code: r.code, Entries: entries}
}

// subscribe registers an event channel and primes it with the current room
// state. The caller must invoke cancel to avoid leaks.
func (r *Room) subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 16)

	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	initial := domain.Event{Type: domain.EventRoomUpdated, Payload: r.stateLocked()}
	r.mu.Unlock()

	ch <- initial

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

// broadcastLocked fans an event out to every subscriber. A slow subscriber
// loses its oldest pending event rather than blocking the room.
func (r *Room) broadcastLocked(event domain.Event) {
	for ch := range r.subscribers {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

func (r *Room) broadcastStateLocked() {
	r.broadcastLocked(domain.Event{Type: domain.EventRoomUpdated, Payload: r.stateLocked()})
}
