package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/teleroom/teleroom/internal/gateway"
	"github.com/teleroom/teleroom/internal/server/middleware"
	"github.com/teleroom/teleroom/internal/store"
	"github.com/teleroom/teleroom/pkg/event"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"service":      "teleroom",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"online_users": a.presence.TotalOnline(),
	})
}

func (a *App) messagesHandler(w http.ResponseWriter, r *http.Request) {
	room := a.roomFromRequest(r)
	limit := a.config.Chat.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	messages, err := a.store.Recent(r.Context(), room, limit)
	if err != nil {
		a.logger.Error("failed to read message history", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "messages": messages})
}

type sendRequest struct {
	Content  string `json:"content"`
	MediaURL string `json:"media_url"`
	Kind     string `json:"type"`
}

// sendHandler persists the message, then hands the event to the broadcaster.
// The order matters: a reconnecting client recovers anything it missed from
// history, so fan-out must never see a message the store does not have.
func (a *App) sendHandler(w http.ResponseWriter, r *http.Request) {
	reqMeta, _ := middleware.ReqMetadataFrom(r.Context())
	room := a.roomFromRequest(r)

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid request body"})
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" && req.MediaURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "empty message"})
		return
	}
	if req.Kind == "" {
		req.Kind = store.KindText
	}

	msg := store.Message{
		UserID:    reqMeta.UserID,
		Content:   req.Content,
		MediaURL:  req.MediaURL,
		Kind:      req.Kind,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.Append(r.Context(), room, &msg); err != nil {
		a.logger.Error("failed to persist message", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "failed to send message"})
		return
	}

	a.broadcaster.Broadcast(room, event.NewMessageEvent(msg))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}

type banRequest struct {
	UserID int64  `json:"user_id"`
	Reason string `json:"reason"`
}

func (a *App) banHandler(w http.ResponseWriter, r *http.Request) {
	reqMeta, _ := middleware.ReqMetadataFrom(r.Context())
	if !reqMeta.IsAdmin {
		writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "error": "admin only"})
		return
	}
	room := a.roomFromRequest(r)

	var req banRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid request body"})
		return
	}

	// Tell the target, tell the room, then drop the target's session.
	a.broadcaster.SendToUser(room, req.UserID, event.NewMuted(req.Reason))
	a.broadcaster.Broadcast(room, event.NewUserBanned(req.UserID), req.UserID)
	kicked := a.gateway.Kick(room, req.UserID, gateway.ErrBanned)

	a.logger.Info("user banned",
		slog.String("room", room),
		slog.Int64("userID", req.UserID),
		slog.Int64("by", reqMeta.UserID),
		slog.Bool("hadSession", kicked),
	)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "disconnected": kicked})
}
