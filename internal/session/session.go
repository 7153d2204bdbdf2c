// Package session defines the shared game-session record mirrored from the
// authoritative remote store, and the snapshot decoding rules the client
// relies on when a delivered document omits fields.
package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the page-level phase of a session.
type Status string

const (
	StatusLobby        Status = "lobby"
	StatusVoting       Status = "voting"
	StatusCreatingChar Status = "creating_char"
	StatusReadyToStart Status = "ready_to_start"
	StatusPlaying      Status = "playing"
	StatusCompleted    Status = "completed"
	StatusEpilogue     Status = "epilogue"
	StatusFinished     Status = "finished"
)

// MaxPlayers is the room capacity enforced by the remote service.
const MaxPlayers = 4

// CharacterAbilities holds the six submitted ability values.
type CharacterAbilities struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

type Player struct {
	Name                 string              `json:"name"`
	CharacterName        string              `json:"characterName,omitempty"`
	CharacterDescription string              `json:"characterDescription,omitempty"`
	CharacterImageURL    string              `json:"characterImageUrl,omitempty"`
	Abilities            *CharacterAbilities `json:"abilities,omitempty"`
	IsReady              bool                `json:"isReady"`
	JoinedAt             time.Time           `json:"joinedAt,omitzero"`
}

// EndConditions describe when a scenario is considered finished.
type EndConditions struct {
	PrimaryObjectives   []string `json:"primary_objectives"`
	SuccessCriteria     []string `json:"success_criteria"`
	FailureCriteria     []string `json:"failure_criteria"`
	CompletionThreshold float64  `json:"completion_threshold"`
	MaxTurns            int      `json:"max_turns"`
}

type ScenarioOption struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Summary       string         `json:"summary"`
	EndConditions *EndConditions `json:"endConditions,omitempty"`
}

// VideoStatus tracks the opening/epilogue video lifecycle.
type VideoStatus string

const (
	VideoGenerating VideoStatus = "generating"
	VideoReady      VideoStatus = "ready"
	VideoError      VideoStatus = "error"
	VideoDisabled   VideoStatus = "disabled"
)

type OpeningVideo struct {
	Status VideoStatus `json:"status"`
	URL    string      `json:"url,omitempty"`
	Prompt string      `json:"prompt,omitempty"`
}

// LogType classifies a game-log entry.
type LogType string

const (
	LogGMNarration      LogType = "gm_narration"
	LogInitialNarration LogType = "initial_narration"
	LogPlayerAction     LogType = "player_action"
	LogGMResponse       LogType = "gm_response"
	LogDiceRoll         LogType = "dice_roll"
	LogImageGeneration  LogType = "image_generation"
)

// LogEntry is one append-only element of the game log, ordered by turn then
// insertion.
type LogEntry struct {
	Turn      int       `json:"turn"`
	Type      LogType   `json:"type"`
	Content   string    `json:"content"`
	PlayerID  string    `json:"playerId,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

type CompletionResult struct {
	CompletionPercentage float64  `json:"completion_percentage"`
	IsCompleted          bool     `json:"is_completed"`
	EndingType           string   `json:"ending_type"`
	RemainingObjectives  []string `json:"remaining_objectives"`
	AchievedObjectives   []string `json:"achieved_objectives"`
}

type PlayerContribution struct {
	PlayerID         string   `json:"player_id"`
	CharacterName    string   `json:"character_name"`
	KeyActions       []string `json:"key_actions"`
	HighlightMoments []string `json:"highlight_moments"`
}

type Epilogue struct {
	EndingNarrative      string               `json:"ending_narrative"`
	EndingType           string               `json:"ending_type"`
	PlayerContributions  []PlayerContribution `json:"player_contributions"`
	AdventureSummary     string               `json:"adventure_summary"`
	TotalTurns           int                  `json:"total_turns"`
	CompletionPercentage float64              `json:"completion_percentage"`
	VideoURL             string               `json:"video_url,omitempty"`
}

// Session is the full remote-authoritative record. The client never mutates
// individual fields; it only replaces the whole value from a snapshot.
type Session struct {
	GameID                string              `json:"gameId"`
	RoomID                string              `json:"roomId"`
	HostID                string              `json:"hostId"`
	Status                Status              `json:"gameStatus"`
	Players               map[string]Player   `json:"players"`
	ScenarioOptions       []ScenarioOption    `json:"scenarioOptions,omitempty"`
	Votes                 map[string][]string `json:"votes,omitempty"`
	DecidedScenarioID     string              `json:"decidedScenarioId,omitempty"`
	OpeningVideo          *OpeningVideo       `json:"openingVideo,omitempty"`
	GameLog               []LogEntry          `json:"gameLog"`
	CurrentTurn           int                 `json:"currentTurn"`
	PlayerActionsThisTurn map[string]string   `json:"playerActionsThisTurn"`
	EndConditions         *EndConditions      `json:"endConditions,omitempty"`
	Epilogue              *Epilogue           `json:"epilogue,omitempty"`
	CompletionResult      *CompletionResult   `json:"completionResult,omitempty"`
}

// FromSnapshot decodes a full-document snapshot into a Session, filling the
// documented defaults for any field the payload omits: missing players is an
// empty map, missing currentTurn is 1, missing gameLog is an empty slice.
// The gameId argument wins over any identifier embedded in the payload; the
// subscription key is authoritative.
func FromSnapshot(gameID string, raw []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("decode session snapshot: %w", err)
	}

	s.GameID = gameID
	if s.Players == nil {
		s.Players = map[string]Player{}
	}
	if s.GameLog == nil {
		s.GameLog = []LogEntry{}
	}
	if s.PlayerActionsThisTurn == nil {
		s.PlayerActionsThisTurn = map[string]string{}
	}
	if s.CurrentTurn == 0 {
		s.CurrentTurn = 1
	}
	return s, nil
}

// IsHost reports whether uid owns the privileged seat.
func (s Session) IsHost(uid string) bool {
	return uid != "" && uid == s.HostID
}

// VoteFor returns the scenario uid currently has a vote under, if any.
// At most one scenario per voter; the remote enforces last-write-wins.
func (s Session) VoteFor(uid string) (string, bool) {
	for scenarioID, voters := range s.Votes {
		for _, v := range voters {
			if v == uid {
				return scenarioID, true
			}
		}
	}
	return "", false
}

// HasActed reports whether uid already submitted an action this turn.
func (s Session) HasActed(uid string) bool {
	_, ok := s.PlayerActionsThisTurn[uid]
	return ok
}

// Clone deep-copies the session so store readers never alias maps or slices
// shared with a later snapshot.
func (s Session) Clone() Session {
	out := s

	if s.Players != nil {
		out.Players = make(map[string]Player, len(s.Players))
		for id, p := range s.Players {
			if p.Abilities != nil {
				ab := *p.Abilities
				p.Abilities = &ab
			}
			out.Players[id] = p
		}
	}
	if s.Votes != nil {
		out.Votes = make(map[string][]string, len(s.Votes))
		for id, voters := range s.Votes {
			out.Votes[id] = append([]string(nil), voters...)
		}
	}
	if s.PlayerActionsThisTurn != nil {
		out.PlayerActionsThisTurn = make(map[string]string, len(s.PlayerActionsThisTurn))
		for id, a := range s.PlayerActionsThisTurn {
			out.PlayerActionsThisTurn[id] = a
		}
	}
	out.ScenarioOptions = append([]ScenarioOption(nil), s.ScenarioOptions...)
	out.GameLog = append([]LogEntry(nil), s.GameLog...)

	if s.OpeningVideo != nil {
		v := *s.OpeningVideo
		out.OpeningVideo = &v
	}
	if s.EndConditions != nil {
		ec := *s.EndConditions
		out.EndConditions = &ec
	}
	if s.Epilogue != nil {
		ep := *s.Epilogue
		ep.PlayerContributions = append([]PlayerContribution(nil), s.Epilogue.PlayerContributions...)
		out.Epilogue = &ep
	}
	if s.CompletionResult != nil {
		cr := *s.CompletionResult
		out.CompletionResult = &cr
	}
	return out
}
