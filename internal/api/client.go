// Package api is the HTTP client for the action-submission service. Each
// operation takes a game identifier and a small JSON payload and returns the
// server's success payload, or an *Error carrying the status code and the
// server-supplied detail message.
//
// The client never retries; display and retry decisions belong to the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/questforge/tabletop-client/internal/auth"
	"github.com/questforge/tabletop-client/internal/session"
)

// Error is a non-success response from the service.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  auth.TokenSource
	log     *zap.Logger
}

func NewClient(baseURL string, tokens auth.TokenSource, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if tokens == nil {
		tokens = auth.Anonymous()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		tokens:  tokens,
		log:     log,
	}
}

type CreateGameResponse struct {
	GameID string `json:"gameId"`
	RoomID string `json:"roomId"`
}

// CreateGame opens a new session and returns its identifier and shareable
// room code.
func (c *Client) CreateGame(ctx context.Context) (CreateGameResponse, error) {
	var out CreateGameResponse
	err := c.post(ctx, "/games", struct{}{}, &out)
	return out, err
}

type JoinGameResponse struct {
	GameID string `json:"gameId"`
}

// JoinGame joins an existing session by its room code.
func (c *Client) JoinGame(ctx context.Context, roomID string) (JoinGameResponse, error) {
	var out JoinGameResponse
	err := c.post(ctx, "/games/"+roomID+"/join", nil, &out)
	return out, err
}

// Difficulty levels accepted by StartVoting.
const (
	DifficultyEasy    = "easy"
	DifficultyNormal  = "normal"
	DifficultyHard    = "hard"
	DifficultyExtreme = "extreme"
)

type VotingOptions struct {
	Difficulty           string   `json:"difficulty,omitempty"`
	Keywords             []string `json:"keywords,omitempty"`
	ThemePreference      string   `json:"theme_preference,omitempty"`
	OpeningVideoEnabled  *bool    `json:"opening_video_enabled,omitempty"`
	EpilogueVideoEnabled *bool    `json:"epilogue_video_enabled,omitempty"`
}

// StartVoting asks the service to generate scenario options and move the
// session into the voting phase. Host only.
func (c *Client) StartVoting(ctx context.Context, gameID string, opts VotingOptions) error {
	return c.post(ctx, "/games/"+gameID+"/start-voting", opts, nil)
}

// Vote casts (or moves) the caller's vote to the given scenario. The service
// keeps at most one scenario per voter, last write wins.
func (c *Client) Vote(ctx context.Context, gameID, scenarioID string) error {
	body := struct {
		ScenarioID string `json:"scenarioId"`
	}{ScenarioID: scenarioID}
	return c.post(ctx, "/games/"+gameID+"/vote", body, nil)
}

type CreateCharacterResponse struct {
	CharacterImageURL string `json:"characterImageUrl"`
}

// CreateCharacter submits the player's character. Ability values are fixed
// server-side once this is accepted; the caller should freeze its roll
// engine on success.
func (c *Client) CreateCharacter(ctx context.Context, gameID, name, description string, abilities session.CharacterAbilities) (CreateCharacterResponse, error) {
	body := struct {
		CharacterName        string                     `json:"characterName"`
		CharacterDescription string                     `json:"characterDescription"`
		Abilities            session.CharacterAbilities `json:"abilities"`
	}{name, description, abilities}

	var out CreateCharacterResponse
	err := c.post(ctx, "/games/"+gameID+"/create-character", body, &out)
	return out, err
}

// ProceedToReady advances the session from character creation to the ready
// phase. Host only.
func (c *Client) ProceedToReady(ctx context.Context, gameID string) error {
	return c.post(ctx, "/games/"+gameID+"/proceed-to-ready", nil, nil)
}

// Ready marks the caller as ready. Not revertible within a round.
func (c *Client) Ready(ctx context.Context, gameID string) error {
	return c.post(ctx, "/games/"+gameID+"/ready", nil, nil)
}

type StartGameResponse struct {
	Message          string `json:"message"`
	InitialNarration string `json:"initialNarration"`
}

// StartGame begins play. Host only.
func (c *Client) StartGame(ctx context.Context, gameID string) (StartGameResponse, error) {
	var out StartGameResponse
	err := c.post(ctx, "/games/"+gameID+"/start-game", nil, &out)
	return out, err
}

// SubmitAction records the caller's action for the current turn. Empty or
// whitespace-only text is an expected UI boundary and is silently dropped
// without a request.
func (c *Client) SubmitAction(ctx context.Context, gameID, actionText string) error {
	if strings.TrimSpace(actionText) == "" {
		return nil
	}
	body := struct {
		ActionText string `json:"actionText"`
	}{ActionText: actionText}
	return c.post(ctx, "/games/"+gameID+"/action", body, nil)
}

type DiceRollResult struct {
	Rolls []int `json:"rolls"`
	Total int   `json:"total"`
}

type ManualDiceResponse struct {
	Message    string         `json:"message"`
	Result     DiceRollResult `json:"result"`
	PlayerName string         `json:"player_name"`
}

// RollManualDice asks the service to roll numDice dice with numSides sides
// on the caller's behalf and log the result.
func (c *Client) RollManualDice(ctx context.Context, gameID string, numDice, numSides int, description string) (ManualDiceResponse, error) {
	body := struct {
		NumDice     int    `json:"num_dice"`
		NumSides    int    `json:"num_sides"`
		Description string `json:"description"`
	}{numDice, numSides, description}

	var out ManualDiceResponse
	err := c.post(ctx, "/games/"+gameID+"/manual-dice", body, &out)
	return out, err
}

type GMChatResponse struct {
	Message       string `json:"message"`
	GMResponse    string `json:"gm_response"`
	PlayerMessage string `json:"player_message"`
	CharacterName string `json:"character_name"`
}

// SendGMChat sends an out-of-band message to the game master.
func (c *Client) SendGMChat(ctx context.Context, gameID, message string) (GMChatResponse, error) {
	body := struct {
		Message string `json:"message"`
	}{Message: message}

	var out GMChatResponse
	err := c.post(ctx, "/games/"+gameID+"/gm-chat", body, &out)
	return out, err
}

// GenerateEpilogue requests epilogue generation for a completed session.
func (c *Client) GenerateEpilogue(ctx context.Context, gameID string) error {
	return c.post(ctx, "/games/"+gameID+"/generate-epilogue", nil, nil)
}

type EpilogueVideoResponse struct {
	Message  string `json:"message"`
	VideoURL string `json:"video_url"`
}

// GenerateEpilogueVideo requests the epilogue highlight video.
func (c *Client) GenerateEpilogueVideo(ctx context.Context, gameID string) (EpilogueVideoResponse, error) {
	var out EpilogueVideoResponse
	err := c.post(ctx, "/games/"+gameID+"/generate-epilogue-video", nil, &out)
	return out, err
}

// ManualComplete forces scenario completion. Host only.
func (c *Client) ManualComplete(ctx context.Context, gameID string) error {
	return c.post(ctx, "/games/"+gameID+"/manual-complete", nil, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("fetch auth token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var detail struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(data, &detail); err == nil {
			apiErr.Detail = detail.Detail
		}
		c.log.Debug("request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", apiErr.Detail))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
