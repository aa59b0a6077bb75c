package game

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/m4dzi4/pict-io-sub000/internal"
)

// =============================================================================
// SESSION GATEWAY
// =============================================================================

// TokenVerifier resolves a token to an authenticated account. The
// gateway treats any verification failure as an unauthenticated guest.
type TokenVerifier interface {
	Verify(token string) (accountID, username string, err error)
}

// Gateway receives connection-scoped events and dispatches them into
// session operations. It owns no game state of its own.
type Gateway struct {
	registry *Registry
	service  *Service
	verifier TokenVerifier
	upgrader websocket.Upgrader
}

func NewGateway(registry *Registry, service *Service, verifier TokenVerifier) *Gateway {
	return &Gateway{
		registry: registry,
		service:  service,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWebSocket upgrades the connection and starts the per-connection
// read loop. The client must send join_room before anything else.
func (gw *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := gw.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[HandleWebSocket] upgrade failed:", err)
		return
	}

	roomID := mux.Vars(r)["roomId"]
	connID := uuid.NewString()

	go gw.handleMessages(conn, roomID, connID)
}

func writeDirect(conn internal.Conn, v any) error {
	return conn.WriteJSON(v)
}

func (gw *Gateway) handleMessages(conn internal.Conn, urlRoomID, connID string) {
	reader, ok := conn.(interface{ ReadMessage() (int, []byte, error) })
	if !ok {
		conn.Close()
		return
	}

	var (
		session *internal.Session
		player  *internal.Player
	)

	defer func() {
		conn.Close()
		if session != nil {
			gw.Disconnect(session, connID)
		}
	}()

	for {
		_, raw, err := reader.ReadMessage()
		if err != nil {
			log.Printf("[handleMessages] conn=%s read error: %v", connID, err)
			return
		}

		var baseMsg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &baseMsg); err != nil {
			log.Printf("[handleMessages] conn=%s malformed envelope: %v", connID, err)
			continue
		}

		switch baseMsg.Type {
		case internal.EventJoinRoom:
			var req internal.JoinRoomData
			if err := json.Unmarshal(baseMsg.Data, &req); err != nil {
				log.Printf("[handleMessages] conn=%s bad join_room payload: %v", connID, err)
				continue
			}
			if req.RoomID == "" {
				req.RoomID = urlRoomID
			}
			if session != nil {
				continue
			}
			joined, p, state, err := gw.Join(req.RoomID, conn, connID, req)
			ack := internal.Message[internal.JoinAckData]{Type: internal.EventJoinAck}
			if err != nil {
				ack.Data = internal.JoinAckData{Success: false, Message: err.Error()}
				if werr := writeDirect(conn, ack); werr != nil {
					return
				}
				continue
			}
			session, player = joined, p
			ack.Data = internal.JoinAckData{Success: true, Game: &state}
			if werr := player.SafeWriteJSON(ack); werr != nil {
				return
			}

		case internal.EventStartGame:
			if session == nil || player == nil {
				continue
			}
			ack := internal.Message[internal.StartAckData]{Type: internal.EventStartGame}
			if err := gw.service.StartGame(session, player.Key()); err != nil {
				ack.Data = internal.StartAckData{Success: false, Message: err.Error()}
			} else {
				ack.Data = internal.StartAckData{Success: true, GameStatus: internal.StatusPlaying}
			}
			if err := player.SafeWriteJSON(ack); err != nil {
				return
			}

		case internal.EventDrawingUpdate:
			if session == nil {
				continue
			}
			var req internal.DrawingUpdateData
			if err := json.Unmarshal(baseMsg.Data, &req); err != nil {
				log.Printf("[handleMessages] conn=%s bad drawing_update payload: %v", connID, err)
				continue
			}
			gw.service.UpdateDrawing(session, connID, req.Paths)

		case internal.EventSendChat:
			if session == nil {
				continue
			}
			var req internal.SendChatData
			if err := json.Unmarshal(baseMsg.Data, &req); err != nil {
				log.Printf("[handleMessages] conn=%s bad chat payload: %v", connID, err)
				continue
			}
			gw.service.SubmitChat(session, connID, req.Text)

		default:
			log.Printf("[handleMessages] conn=%s unknown event type %q", connID, baseMsg.Type)
		}
	}
}

// Join implements the join protocol: resolve session, check access
// code, resolve identity (account if the token verifies, generated
// guest otherwise), re-attach idempotently on matching identity, then
// enforce capacity and append. The returned state never includes the
// keyword.
func (gw *Gateway) Join(roomID string, conn internal.Conn, connID string, req internal.JoinRoomData) (*internal.Session, *internal.Player, internal.GameStateData, error) {
	session, ok := gw.registry.Get(roomID)
	if !ok {
		return nil, nil, internal.GameStateData{}, internal.ErrRoomNotFound
	}

	identity, displayName := gw.resolveIdentity(req)

	session.Mu.Lock()

	if session.Settings.AccessCode != "" && session.Settings.AccessCode != req.AccessCode {
		session.Mu.Unlock()
		return nil, nil, internal.GameStateData{}, internal.ErrInvalidAccessCode
	}

	// Idempotent re-join: same identity means reconnection, not a new
	// player. Attach the new connection and hand back current state.
	if existing := session.FindPlayer(identity.Key()); existing != nil {
		existing.ConnID = connID
		existing.Conn = conn
		state := session.PublicState()
		isDrawer := session.GameStatus == internal.StatusPlaying && session.DrawerID == existing.Key()
		keyword := session.Keyword
		session.Mu.Unlock()

		log.Printf("[Join] room=%s: %s reconnected as conn=%s", roomID, identity.Key(), connID)
		if isDrawer {
			if err := existing.SafeWriteJSON(internal.Message[internal.NewKeywordData]{
				Type: internal.EventNewKeyword,
				Data: internal.NewKeywordData{Keyword: keyword},
			}); err != nil {
				log.Printf("[Join] room=%s: failed to re-send keyword to drawer: %v", roomID, err)
			}
		}
		return session, existing, state, nil
	}

	if len(session.Players) >= session.Settings.MaxPlayers {
		session.Mu.Unlock()
		return nil, nil, internal.GameStateData{}, internal.ErrRoomFull
	}

	player := &internal.Player{
		ConnID:      connID,
		DisplayName: displayName,
		Identity:    identity,
		Conn:        conn,
	}
	session.Players = append(session.Players, player)
	if _, seen := session.Scores[identity.Key()]; !seen {
		session.Scores[identity.Key()] = 0
	}
	state := session.PublicState()
	session.Mu.Unlock()

	log.Printf("[Join] room=%s: %s (%s) joined as conn=%s, players=%d",
		roomID, identity.Key(), displayName, connID, len(state.Players))

	SafeBroadcastToSessionExcept(session, systemChat(displayName+" joined the room"), connID)
	BroadcastGameState(session)

	return session, player, state, nil
}

// resolveIdentity maps credentials to a scoring identity. Verified
// tokens yield the account identity; anything else becomes a guest,
// reusing the caller-provided guest id so guests can reconnect.
func (gw *Gateway) resolveIdentity(req internal.JoinRoomData) (internal.Identity, string) {
	if req.Token != "" {
		accountID, username, err := gw.verifier.Verify(req.Token)
		if err == nil {
			return internal.AccountIdentity(accountID), username
		}
		log.Printf("[resolveIdentity] token rejected, continuing as guest: %v", err)
	}

	guestID := req.GuestID
	if guestID == "" {
		guestID = uuid.NewString()
	}
	name := req.GuestName
	if name == "" {
		name = "Anonymous"
	}
	return internal.GuestIdentity(guestID), name
}

// Disconnect removes the player owning connID and cleans up the
// session when the room empties. A drawer leaving mid-round does not
// end or reassign the round; the timer finishes it.
func (gw *Gateway) Disconnect(s *internal.Session, connID string) {
	s.Mu.Lock()
	player := s.RemovePlayerByConnID(connID)
	empty := len(s.Players) == 0
	if empty {
		disarmTimerLocked(s)
	}
	roomID := s.RoomID
	s.Mu.Unlock()

	if player == nil {
		// Superseded connection (the player re-joined elsewhere).
		return
	}

	log.Printf("[Disconnect] room=%s: %s (%s) disconnected", roomID, player.Key(), player.DisplayName)

	if empty {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		gw.registry.MarkInactive(ctx, roomID)
		cancel()
		gw.registry.Remove(roomID)
		// Safety net: evict anything still holding the room.
		if player.Conn != nil {
			player.Conn.Close()
		}
		return
	}

	SafeBroadcastToSession(s, systemChat(player.DisplayName+" disconnected"))
	BroadcastGameState(s)
}
