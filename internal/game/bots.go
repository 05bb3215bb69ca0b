package game

import (
	"context"
	"math/rand"
	"time"
)

// botAccuracy is the chance a bot picks the correct answer.
const botAccuracy = 0.75

// scheduleBots queues one delayed answer per bot for the round at idx.
// Called with the room lock held, at round start.
func (e *Engine) scheduleBots(room *Room, idx int) {
	spread := e.timing.BotDelayMax - e.timing.BotDelayMin
	for _, p := range room.players {
		if !p.bot || p.spectator {
			continue
		}
		delay := e.timing.BotDelayMin
		if spread > 0 {
			delay += time.Duration(rand.Int63n(int64(spread)))
		}
		botID := p.userID
		time.AfterFunc(delay, func() { e.botAnswer(room, idx, botID, delay) })
	}
}

// botAnswer fires when a bot's delay elapses. The round may already have
// advanced (a human-triggered completion can outrun the delay), so the
// captured index is re-checked before anything is touched. A live bot then
// submits through the same path as a real player, keeping scoring and
// completion detection uniform.
func (e *Engine) botAnswer(room *Room, idx int, botID string, delay time.Duration) {
	room.mu.Lock()
	if !room.currentLocked(idx) {
		room.mu.Unlock()
		return
	}
	correct := room.round.question.Answer
	var wrong []string
	for _, opt := range room.round.options {
		if !answersMatch(opt, correct) {
			wrong = append(wrong, opt)
		}
	}
	room.mu.Unlock()

	answer := correct
	if rand.Float64() >= botAccuracy && len(wrong) > 0 {
		answer = wrong[rand.Intn(len(wrong))]
	}
	_ = e.SubmitAnswer(context.Background(), room.code, botID, answer, delay.Seconds())
}
