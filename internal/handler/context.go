// Package handler implements the packet handlers. Each handler owns the
// Parse contract for its opcode: a payload that does not match the
// required shape returns false and drops the connection; any
// structurally valid request returns true, with in-game failure
// reported as a status code in the reply.
package handler

import (
	"context"

	"github.com/amala/channel/internal/config"
	"github.com/amala/channel/internal/data"
	"github.com/amala/channel/internal/net/packet"
	"github.com/amala/channel/internal/persist"
	"github.com/amala/channel/internal/scripting"
	"github.com/amala/channel/internal/system"
	"github.com/amala/channel/internal/world"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Authenticator verifies login credentials. *persist.AccountRepo is the
// production implementation.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string, autoCreate bool) (*persist.Account, error)
	VerifySessionKey(ctx context.Context, username string, key int64) (*persist.Account, error)
}

// CharacterLoader loads an account's character and containers into the
// registry. *persist.CharacterRepo is the production implementation.
type CharacterLoader interface {
	LoadByAccount(ctx context.Context, reg *world.Registry, accountUID uuid.UUID) (*world.Character, int32, error)
}

// Submitter schedules asynchronous handler work. *work.Queue is the
// production implementation.
type Submitter interface {
	Submit(task func())
}

// Deps carries everything handlers need. One instance is shared by all
// sessions.
type Deps struct {
	World      *world.State
	Defs       *data.Definitions
	Store      persist.Store
	Mgr        *system.Manager
	Queue      Submitter
	Script     *scripting.Engine
	Accounts   Authenticator
	Characters CharacterLoader
	Cfg        *config.Config
	Log        *zap.Logger
}

// conn is the session surface handlers use beyond world.Conn: state
// transitions for the login hand-off.
type conn interface {
	world.Conn
	SetState(packet.SessionState)
}

// client resolves the dispatching session to its client state. Returns
// a nil state before the hand-off completes.
func (d *Deps) client(sess any) (*world.ClientState, world.Conn) {
	c, ok := sess.(world.Conn)
	if !ok {
		return nil, nil
	}
	return d.World.ClientBySession(c.SessionID()), c
}

// RegisterAll wires every opcode to its handler with the allowed
// session states.
func RegisterAll(reg *packet.Registry, d *Deps) {
	handshake := []packet.SessionState{packet.StateHandshake}
	inWorld := []packet.SessionState{packet.StateInWorld}

	reg.Register(packet.C_OPCODE_LOGIN, handshake, d.HandleLogin)
	reg.Register(packet.C_OPCODE_LOGOUT, inWorld, d.HandleLogout)
	reg.Register(packet.C_OPCODE_ITEM_DROP, inWorld, d.HandleItemDrop)
	reg.Register(packet.C_OPCODE_TRADE_REQUEST, inWorld, d.HandleTradeRequest)
	reg.Register(packet.C_OPCODE_TRADE_ACCEPT, inWorld, d.HandleTradeAccept)
	reg.Register(packet.C_OPCODE_TRADE_ADD_ITEM, inWorld, d.HandleTradeAddItem)
	reg.Register(packet.C_OPCODE_TRADE_CANCEL, inWorld, d.HandleTradeCancel)
	reg.Register(packet.C_OPCODE_TRADE_FINISH, inWorld, d.HandleTradeFinish)
	reg.Register(packet.C_OPCODE_OBJECT_INTERACTION, inWorld, d.HandleObjectInteraction)
	reg.Register(packet.C_OPCODE_PLASMA_START, inWorld, d.HandlePlasmaStart)
	reg.Register(packet.C_OPCODE_MITAMA_REUNION, inWorld, d.HandleMitamaReunion)
}
