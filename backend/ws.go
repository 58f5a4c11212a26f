package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const wsRequestTimeout = 10 * time.Second

// squareRef is how clients address a square: the full square object,
// of which only row and column are read.
type squareRef struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

func (s squareRef) Pos() Pos {
	return Pos{Row: s.Row, Column: s.Column}
}

type movePiecePayload struct {
	RoomID       string    `json:"roomId"`
	BaseSquare   squareRef `json:"baseSquare"`
	TargetSquare squareRef `json:"targetSquare"`
	Color        Color     `json:"color"`
	Promote      bool      `json:"promote"`
	Check        bool      `json:"check"`
}

type castlePayload struct {
	RoomID       string    `json:"roomId"`
	BaseSquare   squareRef `json:"baseSquare"`
	TargetSquare squareRef `json:"targetSquare"`
	Color        Color     `json:"color"`
}

type enPassantPayload struct {
	RoomID       string    `json:"roomId"`
	OldSquare    squareRef `json:"oldSquare"`
	TargetSquare squareRef `json:"targetSquare"`
	Color        Color     `json:"color"`
}

type promotionPayload struct {
	RoomID       string    `json:"roomId"`
	TargetSquare squareRef `json:"targetSquare"`
	Piece        struct {
		Type  PieceType `json:"type"`
		Color Color     `json:"color"`
	} `json:"piece"`
}

type roomPayload struct {
	RoomID string `json:"roomId"`
	Color  Color  `json:"color"`
}

type wsServer struct {
	hub      *Hub
	registry *MatchRegistry
	logger   *zap.Logger
	ping     time.Duration
}

func (s *wsServer) serveWS(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	match, err := s.registry.Get(r.Context(), matchID)
	if errors.Is(err, ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	color, _ := ParseColor(r.URL.Query().Get("color"))
	name := r.URL.Query().Get("name")

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	client := NewClient(s.hub, matchID, name, color)
	s.hub.Register(client)
	// Registered before loading so no broadcast falls between the two.
	session, err := match.Session(r.Context())
	if err != nil {
		s.logger.Error("session load failed", zap.String("match", matchID), zap.Error(err))
		s.hub.Unregister(client)
		conn.Close()
		return
	}
	client.sendEvent(eventUpdate, sessionUpdate(session))
	if name != "" {
		s.hub.PublishOthers(client, eventStoreGuest, guestPayload{Name: name, Color: color})
	}

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send, s.ping); err != nil {
			s.logger.Debug("websocket write failed", zap.String("match", matchID), zap.Error(err))
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.hub.Unregister(client)
			s.hub.Publish(matchID, eventUserLeft, guestPayload{Name: name, Color: color})
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.sendEvent(eventError, errorPayload{Error: "invalid message"})
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), wsRequestTimeout)
		err = s.handleEvent(ctx, match, client, msg)
		cancel()
		if err != nil {
			if !isClientError(err) {
				s.logger.Error("event failed", zap.String("match", matchID), zap.String("event", msg.Type), zap.Error(err))
			}
			client.sendEvent(eventError, errorPayload{Event: msg.Type, Error: err.Error()})
		}
	}
}

// handleEvent decodes one inbound event of client's room and runs it.
func (s *wsServer) handleEvent(ctx context.Context, match *MatchController, client *Client, msg wsMessage) error {
	switch msg.Type {
	case "movePiece":
		var p movePiecePayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		return s.move(ctx, match, client, p.RoomID, Move{
			Kind:    SimpleMove,
			Base:    p.BaseSquare.Pos(),
			Target:  p.TargetSquare.Pos(),
			Color:   p.Color,
			Promote: p.Promote,
			InCheck: p.Check,
		})
	case "castle":
		var p castlePayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		return s.move(ctx, match, client, p.RoomID, Move{
			Kind:   CastleMove,
			Base:   p.BaseSquare.Pos(),
			Target: p.TargetSquare.Pos(),
			Color:  p.Color,
		})
	case "enPassant":
		var p enPassantPayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		return s.move(ctx, match, client, p.RoomID, Move{
			Kind:   EnPassantMove,
			Base:   p.OldSquare.Pos(),
			Target: p.TargetSquare.Pos(),
			Color:  p.Color,
		})
	case "pawnPromotion":
		var p promotionPayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		return s.move(ctx, match, client, p.RoomID, Move{
			Kind:      PromotionMove,
			Target:    p.TargetSquare.Pos(),
			Color:     p.Piece.Color,
			Promotion: p.Piece.Type,
		})
	case "reset":
		var p roomPayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		if err := checkRoom(client, p.RoomID); err != nil {
			return err
		}
		_, err := match.Reset(ctx)
		return err
	case "resign":
		var p roomPayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		if err := checkRoom(client, p.RoomID); err != nil {
			return err
		}
		color := client.color
		if color == NoColor {
			color = p.Color
		}
		_, err := match.Resign(ctx, color)
		return err
	case "ping":
		return nil
	default:
		return fmt.Errorf("%w: unknown event %q", ErrInvalidMove, msg.Type)
	}
}

func (s *wsServer) move(ctx context.Context, match *MatchController, client *Client, roomID string, move Move) error {
	if err := checkRoom(client, roomID); err != nil {
		return err
	}
	if client.color != NoColor && move.Color != client.color {
		return &MoveError{Err: ErrInvalidMove, MatchID: client.room, Kind: move.Kind, Reason: "client plays " + client.color.String()}
	}
	_, err := match.Move(ctx, move)
	return err
}

// checkRoom rejects events addressed to a match the client did not join.
func checkRoom(client *Client, roomID string) error {
	if roomID != "" && roomID != client.room {
		return fmt.Errorf("%w: room %q is not %q", ErrInvalidMove, roomID, client.room)
	}
	return nil
}

func decodePayload(msg wsMessage, out any) error {
	if len(msg.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrInvalidMove, msg.Type, err)
	}
	return nil
}
