package domain

import "time"

// Status is the lifecycle state of a room.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Settings configures a room at creation time.
type Settings struct {
	Rounds       int      `json:"rounds"`
	PackIDs      []string `json:"packIds"`
	TimerEnabled bool     `json:"timerEnabled"`
	TimerSeconds int      `json:"timerSeconds,omitempty"`
	BotCount     int      `json:"botCount"`
}

// QuestionItem is one entry of a question pack: a prompt with its correct answer.
// Same-pack peers provide the distractor pool.
type QuestionItem struct {
	ID     string `json:"id"`
	PackID string `json:"packId"`
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

// PlayerState is the wire view of a room participant.
type PlayerState struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	Score       int    `json:"score"`
	IsSpectator bool   `json:"isSpectator"`
	IsBot       bool   `json:"isBot"`
	Answered    bool   `json:"answered"`
}

// RoomState is the full roster snapshot sent on every room-updated broadcast.
type RoomState struct {
	Code     string        `json:"code"`
	HostID   string        `json:"hostId"`
	Status   Status        `json:"status"`
	Settings Settings      `json:"settings"`
	Round    int           `json:"round"` // 1-based, 0 while waiting
	Players  []PlayerState `json:"players"`
}

// QuestionPrompt is the question broadcast at round start.
// It never carries the correct answer.
type QuestionPrompt struct {
	Round        int      `json:"round"`
	TotalRounds  int      `json:"totalRounds"`
	QuestionID   string   `json:"questionId"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	TimerSeconds int      `json:"timerSeconds,omitempty"`
}

// PlayerResult is one player's outcome within a round result.
type PlayerResult struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Answered bool   `json:"answered"`
	Correct  bool   `json:"correct"`
	Score    int    `json:"score"`
}

// RoundResult is broadcast when a round resolves.
type RoundResult struct {
	Round         int            `json:"round"`
	TotalRounds   int            `json:"totalRounds"`
	CorrectAnswer string         `json:"correctAnswer"`
	Players       []PlayerResult `json:"players"`
}

// LeaderboardEntry is a ranked row of the final scoreboard.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Leaderboard is broadcast once when a room finishes.
type Leaderboard struct {
	Code    string             `json:"code"`
	Entries []LeaderboardEntry `json:"entries"`
}

// JokerReveal is returned privately to a player who spent a joker.
type JokerReveal struct {
	Removed   []string `json:"removed"`
	Remaining []string `json:"remaining"`
	Balance   int      `json:"balance"`
}

// Event is a broadcast delivered to every subscriber of a room.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Event types carried on room subscriptions.
const (
	EventRoomUpdated  = "room-updated"
	EventQuestion     = "question"
	EventRoundResult  = "round-result"
	EventGameFinished = "game-finished"
)

// RoomSnapshot is the persistence mirror of a room. Writes are best effort
// and never block the in-memory path.
type RoomSnapshot struct {
	Code      string        `json:"code"`
	HostID    string        `json:"hostId"`
	Status    Status        `json:"status"`
	Settings  Settings      `json:"settings"`
	Round     int           `json:"round"`
	Players   []PlayerState `json:"players"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
