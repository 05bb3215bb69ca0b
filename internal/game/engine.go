package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"wordclash-service/internal/domain"
)

// QuestionSource loads the items of a question pack.
type QuestionSource interface {
	LoadPack(ctx context.Context, packID string) ([]domain.QuestionItem, error)
}

// RoomStore mirrors room state for crash recovery. Saves are best effort and
// must never fail the in-memory path.
type RoomStore interface {
	Save(ctx context.Context, snap domain.RoomSnapshot) error
	LoadByCode(ctx context.Context, code string) (domain.RoomSnapshot, error)
	Delete(ctx context.Context, code string) error
}

// JokerWallet tracks the joker-point currency, which lives outside the room.
type JokerWallet interface {
	Balance(ctx context.Context, userID string) (int, error)
	Spend(ctx context.Context, userID string, cost int) error
}

// JokerCost is the joker-point price of revealing two wrong options.
const JokerCost = 5

// jokerReveals is how many wrong options a joker removes.
const jokerReveals = 2

// Timing collects the delays that shape a game. Production uses
// DefaultTiming; tests inject shortened values.
type Timing struct {
	// MinWait is the completion floor for rounds with more than one eligible
	// player, so every client gets a chance to render the question.
	MinWait time.Duration
	// AdvanceDelay is the pause between a round result and the next round.
	AdvanceDelay time.Duration
	// BotDelayMin/Max bound the random delay before a bot answers.
	BotDelayMin time.Duration
	BotDelayMax time.Duration
	// AnswerBudget is the window over which the speed bonus decays.
	AnswerBudget time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		MinWait:      2 * time.Second,
		AdvanceDelay: 3 * time.Second,
		BotDelayMin:  3 * time.Second,
		BotDelayMax:  8 * time.Second,
		AnswerBudget: DefaultAnswerBudget,
	}
}

// Engine owns the active-room registry and dispatches every inbound action.
// The registry map is the only state shared across rooms; each room serializes
// its own mutations behind its mutex.
type Engine struct {
	questions QuestionSource
	store     RoomStore
	wallet    JokerWallet
	timing    Timing
	now       func() time.Time

	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewEngine(questions QuestionSource, store RoomStore, wallet JokerWallet) *Engine {
	return NewEngineWithTiming(questions, store, wallet, DefaultTiming())
}

// NewEngineWithTiming is the constructor used by tests that need short delays.
func NewEngineWithTiming(questions QuestionSource, store RoomStore, wallet JokerWallet, timing Timing) *Engine {
	return &Engine{
		questions: questions,
		store:     store,
		wallet:    wallet,
		timing:    timing,
		now:       time.Now,
		rooms:     make(map[string]*Room),
	}
}

var botNames = []string{"Lexi", "Verba", "Glossa", "Morphy", "Umlaut", "Cedilla", "Tilde", "Macron"}

// CreateRoom allocates a fresh code, seeds the host and any requested bots,
// and registers the room in waiting state.
func (e *Engine) CreateRoom(ctx context.Context, hostID, hostUsername string, settings domain.Settings) (domain.RoomState, error) {
	if settings.Rounds <= 0 || len(settings.PackIDs) == 0 {
		return domain.RoomState{}, domain.ErrInvalidSettings
	}
	if settings.BotCount < 0 {
		return domain.RoomState{}, domain.ErrInvalidSettings
	}
	if settings.TimerEnabled && settings.TimerSeconds <= 0 {
		settings.TimerSeconds = int(e.timing.AnswerBudget.Seconds())
	}

	room := newRoom("", hostID, settings, e.now)
	room.players = append(room.players, &player{userID: hostID, username: hostUsername})
	for i := 0; i < settings.BotCount; i++ {
		name := botNames[i%len(botNames)]
		if i >= len(botNames) {
			name = fmt.Sprintf("%s %d", name, i/len(botNames)+1)
		}
		room.players = append(room.players, &player{
			userID:   fmt.Sprintf("bot-%d", i+1),
			username: name,
			bot:      true,
		})
	}

	e.mu.Lock()
	for {
		code := newRoomCode()
		if _, taken := e.rooms[code]; !taken {
			room.code = code
			e.rooms[code] = room
			break
		}
	}
	e.mu.Unlock()

	room.mu.Lock()
	state := room.stateLocked()
	room.mu.Unlock()
	e.mirror(room)
	return state, nil
}

// Join adds a player (or spectator) to a waiting room. Rejoining with a known
// userId refreshes the entry instead of duplicating it, so reconnects are
// idempotent. Unknown codes fall back to the room store once, which lets a
// waiting room survive a process restart.
func (e *Engine) Join(ctx context.Context, code, userID, username string, asSpectator bool) (domain.RoomState, error) {
	room, ok := e.room(code)
	if !ok {
		room, ok = e.restore(ctx, code)
	}
	if !ok {
		return domain.RoomState{}, domain.ErrRoomNotFound
	}

	room.mu.Lock()
	existing := room.findPlayerLocked(userID)
	if existing == nil && room.status != domain.StatusWaiting {
		room.mu.Unlock()
		return domain.RoomState{}, domain.ErrGameAlreadyStarted
	}
	if existing != nil {
		existing.username = username
	} else {
		room.players = append(room.players, &player{
			userID:    userID,
			username:  username,
			spectator: asSpectator,
		})
	}
	room.broadcastStateLocked()
	state := room.stateLocked()
	room.mu.Unlock()

	e.mirror(room)
	return state, nil
}

// Leave removes a player. Absent rooms or players are a silent no-op. A
// departure mid-round can be the missing completion, so the round is
// re-evaluated afterwards.
func (e *Engine) Leave(ctx context.Context, code, userID string) {
	room, ok := e.room(code)
	if !ok {
		return
	}

	room.mu.Lock()
	found := false
	humans := 0
	for i, p := range room.players {
		if p.userID == userID {
			room.players = append(room.players[:i], room.players[i+1:]...)
			found = true
			break
		}
	}
	for _, p := range room.players {
		if !p.bot {
			humans++
		}
	}
	if !found {
		room.mu.Unlock()
		return
	}
	playing := room.status == domain.StatusPlaying
	var idx int
	if playing && room.round != nil {
		idx = room.round.index
	}
	room.broadcastStateLocked()
	room.mu.Unlock()

	if humans == 0 {
		e.remove(room.code)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()
			if err := e.store.Delete(ctx, room.code); err != nil {
				log.Printf("room %s: mirror delete failed: %v", room.code, err)
			}
		}()
		return
	}

	e.mirror(room)
	if playing {
		e.maybeResolve(room, idx)
	}
}

// Subscribe returns the room's event stream, primed with the current state.
func (e *Engine) Subscribe(code string) (<-chan domain.Event, func(), error) {
	room, ok := e.room(code)
	if !ok {
		return nil, nil, domain.ErrRoomNotFound
	}
	ch, cancel := room.subscribe()
	return ch, cancel, nil
}

// StartGame loads the selected packs, samples the round sequence, and begins
// round 0. Host only.
func (e *Engine) StartGame(ctx context.Context, code, requesterID string) error {
	room, ok := e.room(code)
	if !ok {
		return domain.ErrRoomNotFound
	}
	if requesterID != room.hostID {
		return domain.ErrNotAuthorized
	}

	pool, err := e.loadPacks(ctx, room)
	if err != nil {
		return err
	}

	room.mu.Lock()
	if room.status != domain.StatusWaiting {
		room.mu.Unlock()
		return domain.ErrGameAlreadyStarted
	}
	questions, exhausted := sampleQuestions(pool, room.settings.Rounds)
	if exhausted {
		// Degraded mode: reuse questions rather than failing the start.
		log.Printf("room %s: %v (have %d, want %d)", room.code, domain.ErrQuestionPoolExhausted, len(pool), room.settings.Rounds)
	}
	room.pool = pool
	room.questions = questions
	room.status = domain.StatusPlaying
	room.roundIdx = 0
	room.broadcastStateLocked()
	e.beginRoundLocked(room)
	room.mu.Unlock()

	e.mirror(room)
	return nil
}

// SubmitAnswer records a player's answer for the current round. The first
// accepted answer per player per round is authoritative; repeats are no-ops.
// timeSpent is the client-reported elapsed seconds used for the speed bonus.
func (e *Engine) SubmitAnswer(ctx context.Context, code, userID, answer string, timeSpent float64) error {
	room, ok := e.room(code)
	if !ok {
		return domain.ErrRoomNotFound
	}

	room.mu.Lock()
	if room.status != domain.StatusPlaying || room.round == nil {
		room.mu.Unlock()
		return domain.ErrGameNotActive
	}
	p := room.findPlayerLocked(userID)
	if p == nil || p.spectator {
		room.mu.Unlock()
		return domain.ErrNotAPlayer
	}
	if p.answered {
		room.mu.Unlock()
		return nil
	}
	p.answered = true
	p.answer = answer
	p.correct = answersMatch(answer, room.round.question.Answer)
	if p.correct {
		spent := time.Duration(timeSpent * float64(time.Second))
		p.score += Score(true, spent, e.timing.AnswerBudget)
	}
	idx := room.round.index
	room.mu.Unlock()

	e.mirror(room)
	e.maybeResolve(room, idx)
	return nil
}

// ForceAdvance is the host's "next round" action. If an automatic advance is
// already mid-flight this is a silent no-op, which is what prevents the
// double-advance race.
func (e *Engine) ForceAdvance(ctx context.Context, code, requesterID string) error {
	room, ok := e.room(code)
	if !ok {
		return domain.ErrRoomNotFound
	}
	if requesterID != room.hostID {
		return domain.ErrNotAuthorized
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.status != domain.StatusPlaying || room.round == nil {
		return domain.ErrGameNotActive
	}
	e.resolveLocked(room)
	return nil
}

// UseJoker spends joker points to reveal two wrong options of the current
// question, privately to the requester.
func (e *Engine) UseJoker(ctx context.Context, code, userID string) (domain.JokerReveal, error) {
	room, ok := e.room(code)
	if !ok {
		return domain.JokerReveal{}, domain.ErrRoomNotFound
	}

	room.mu.Lock()
	p := room.findPlayerLocked(userID)
	if p == nil || p.spectator {
		room.mu.Unlock()
		return domain.JokerReveal{}, domain.ErrNotAPlayer
	}
	if room.status != domain.StatusPlaying || room.round == nil {
		room.mu.Unlock()
		return domain.JokerReveal{}, domain.ErrGameNotActive
	}
	options := append([]string(nil), room.round.options...)
	correct := room.round.question.Answer
	room.mu.Unlock()

	// Wallet I/O happens outside the room lock.
	if err := e.wallet.Spend(ctx, userID, JokerCost); err != nil {
		return domain.JokerReveal{}, err
	}
	balance, err := e.wallet.Balance(ctx, userID)
	if err != nil {
		log.Printf("joker balance lookup for %s failed: %v", userID, err)
	}

	wrong := make([]string, 0, len(options)-1)
	for _, opt := range options {
		if !answersMatch(opt, correct) {
			wrong = append(wrong, opt)
		}
	}
	rand.Shuffle(len(wrong), func(i, j int) { wrong[i], wrong[j] = wrong[j], wrong[i] })
	removed := wrong
	if len(removed) > jokerReveals {
		removed = removed[:jokerReveals]
	}
	removedSet := make(map[string]struct{}, len(removed))
	for _, opt := range removed {
		removedSet[opt] = struct{}{}
	}
	remaining := make([]string, 0, len(options))
	for _, opt := range options {
		if _, gone := removedSet[opt]; !gone {
			remaining = append(remaining, opt)
		}
	}
	return domain.JokerReveal{Removed: removed, Remaining: remaining, Balance: balance}, nil
}

// beginRoundLocked starts the round at room.roundIdx: distractor generation,
// per-round resets, the question broadcast, and bot scheduling.
func (e *Engine) beginRoundLocked(room *Room) {
	q := room.questions[room.roundIdx]
	pool := make([]string, 0, len(room.pool))
	for _, item := range room.pool {
		if item.PackID == q.PackID && item.ID != q.ID {
			pool = append(pool, item.Answer)
		}
	}
	room.resetAnswersLocked()
	room.round = &round{
		index:     room.roundIdx,
		question:  q,
		options:   GenerateOptions(q.Answer, pool, distractorCount),
		startedAt: e.now(),
	}

	prompt := domain.QuestionPrompt{
		Round:       room.roundIdx + 1,
		TotalRounds: room.settings.Rounds,
		QuestionID:  q.ID,
		Prompt:      q.Prompt,
		Options:     room.round.options,
	}
	if room.settings.TimerEnabled {
		prompt.TimerSeconds = room.settings.TimerSeconds
	}
	room.broadcastLocked(domain.Event{Type: domain.EventQuestion, Payload: prompt})

	e.scheduleBots(room, room.roundIdx)
}

// maybeResolve checks round completion: every eligible player answered and the
// minimum wait has elapsed. When only the wait is missing, a timer re-runs the
// check; the stale-schedule guard makes a late timer harmless.
func (e *Engine) maybeResolve(room *Room, idx int) {
	room.mu.Lock()
	if !room.currentLocked(idx) || room.advancing {
		room.mu.Unlock()
		return
	}
	if !room.allAnsweredLocked() {
		room.mu.Unlock()
		return
	}
	if wait := room.minWaitRemainingLocked(e.timing.MinWait); wait > 0 {
		room.mu.Unlock()
		time.AfterFunc(wait, func() { e.maybeResolve(room, idx) })
		return
	}
	e.resolveLocked(room)
	room.mu.Unlock()
}

// resolveLocked takes the transition lock, broadcasts the round result, and
// schedules the advance. Holding the lock until the advance timer fires is
// what collapses concurrent completion triggers into a single advance.
func (e *Engine) resolveLocked(room *Room) {
	if !room.tryBeginAdvanceLocked() {
		return
	}
	room.broadcastLocked(domain.Event{Type: domain.EventRoundResult, Payload: room.roundResultLocked()})
	idx := room.round.index
	time.AfterFunc(e.timing.AdvanceDelay, func() { e.advanceTimer(room, idx) })
}

// advanceTimer fires after the inter-round delay: it releases the transition
// lock and either begins the next round or finishes the game. The release is
// deferred so an unexpected fault can never wedge the room.
func (e *Engine) advanceTimer(room *Room, idx int) {
	finished := false
	func() {
		room.mu.Lock()
		defer room.mu.Unlock()
		defer room.endAdvanceLocked()
		if !room.currentLocked(idx) {
			return
		}
		if idx >= room.settings.Rounds-1 {
			room.status = domain.StatusFinished
			room.round = nil
			room.broadcastLocked(domain.Event{Type: domain.EventGameFinished, Payload: room.leaderboardLocked()})
			finished = true
			return
		}
		room.roundIdx++
		e.beginRoundLocked(room)
	}()

	if finished {
		e.remove(room.code)
	}
	e.mirror(room)
}

func (e *Engine) loadPacks(ctx context.Context, room *Room) ([]domain.QuestionItem, error) {
	var pool []domain.QuestionItem
	for _, packID := range room.settings.PackIDs {
		items, err := e.questions.LoadPack(ctx, packID)
		if err != nil {
			return nil, fmt.Errorf("load pack %s: %w", packID, err)
		}
		pool = append(pool, items...)
	}
	if len(pool) == 0 {
		return nil, domain.ErrPackNotFound
	}
	return pool, nil
}

// sampleQuestions draws rounds questions without replacement, or with
// replacement when the pool is too small (reported via the bool).
func sampleQuestions(pool []domain.QuestionItem, rounds int) ([]domain.QuestionItem, bool) {
	if len(pool) >= rounds {
		shuffled := append([]domain.QuestionItem(nil), pool...)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return shuffled[:rounds], false
	}
	out := make([]domain.QuestionItem, rounds)
	for i := range out {
		out[i] = pool[rand.Intn(len(pool))]
	}
	return out, true
}

func (e *Engine) room(code string) (*Room, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	room, ok := e.rooms[strings.ToUpper(strings.TrimSpace(code))]
	return room, ok
}

func (e *Engine) remove(code string) {
	e.mu.Lock()
	delete(e.rooms, code)
	e.mu.Unlock()
}

// restore rebuilds a waiting room from the store mirror, for rejoins after a
// process restart. Running or finished snapshots are not resumable.
func (e *Engine) restore(ctx context.Context, code string) (*Room, bool) {
	snap, err := e.store.LoadByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil || snap.Status != domain.StatusWaiting {
		return nil, false
	}
	room := newRoom(snap.Code, snap.HostID, snap.Settings, e.now)
	for _, p := range snap.Players {
		room.players = append(room.players, &player{
			userID:    p.UserID,
			username:  p.Username,
			score:     p.Score,
			spectator: p.IsSpectator,
			bot:       p.IsBot,
		})
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, ok := e.rooms[snap.Code]; ok {
		return existing, true
	}
	e.rooms[snap.Code] = room
	return room, true
}

const storeTimeout = 2 * time.Second

// mirror persists the room snapshot in the background. Failures are logged,
// never surfaced: the in-memory room is the source of truth.
func (e *Engine) mirror(room *Room) {
	room.mu.Lock()
	snap := room.snapshotLocked()
	room.mu.Unlock()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := e.store.Save(ctx, snap); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("room %s: mirror save failed: %v", snap.Code, err)
		}
	}()
}
