package syncserver

import (
	"crypto/rand"
	"encoding/json"
	"io"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerateRoomCode produces a six-digit shareable join code.
func GenerateRoomCode() (string, error) {
	const charset = "0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// SetupRoutes builds the emulator's HTTP surface around the hub.
func SetupRoutes(h *Hub, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/games", CreateGame(h, log))
	r.Put("/games/{gameID}", PutDocument(h))
	r.Delete("/games/{gameID}", DeleteDocument(h))
	r.Get("/ws", Watch(h, log))
	r.Get("/healthz", Healthz)
	return r
}

// CreateGame allocates a fresh game identifier and room code and seeds the
// document with an empty lobby shell. Everything else about the document is
// written by whoever is driving the emulator.
func CreateGame(h *Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := GenerateRoomCode()
		if err != nil {
			http.Error(w, "failed to generate room code", http.StatusInternalServerError)
			return
		}
		gameID := uuid.NewString()

		ch := h.Ensure(gameID)
		doc, _ := json.Marshal(map[string]any{
			"roomId":     code,
			"gameStatus": "lobby",
		})
		ch.Inbox() <- Put{Doc: doc}

		log.Info("game document created", zap.String("game_id", gameID), zap.String("room_id", code))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(struct {
			GameID string `json:"gameId"`
			RoomID string `json:"roomId"`
		}{GameID: gameID, RoomID: code})
	}
}

// PutDocument replaces the full document for a game, creating the channel if
// this is the first write.
func PutDocument(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")
		if gameID == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		if !json.Valid(body) {
			http.Error(w, "body must be a JSON document", http.StatusBadRequest)
			return
		}

		h.Ensure(gameID).Inbox() <- Put{Doc: body}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteDocument removes the document; watchers observe exists=false.
func DeleteDocument(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")
		if gameID == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		ch := h.Get(gameID)
		if ch == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		ch.Inbox() <- Delete{}
		w.WriteHeader(http.StatusNoContent)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// randID generates a short connection identifier for a watcher.
func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "conn"
		}
		b[i] = charset[num.Int64()]
	}
	return string(b)
}
