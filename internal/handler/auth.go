package handler

import (
	"context"
	"time"

	"github.com/amala/channel/internal/net/packet"
	"github.com/amala/channel/internal/persist"
	"github.com/amala/channel/internal/world"
	"go.uber.org/zap"
)

const loginTimeout = 10 * time.Second

// HandleLogin performs the lobby hand-off: the client presents its
// account name and the session key issued at lobby login. A zero key
// falls back to password login when the config allows it. On success the
// client state is built, the character enters its zone, and the session
// moves to the in-world state.
//
// Payload: string username, s64 session key, [string password].
func (d *Deps) HandleLogin(sess any, r *packet.Reader) bool {
	c, ok := sess.(conn)
	if !ok {
		return false
	}

	username := r.ReadString()
	if username == "" {
		return false
	}
	sessionKey := r.ReadS64()

	var password string
	if sessionKey == 0 {
		if !d.Cfg.Game.AllowPasswordLogin {
			return false
		}
		password = r.ReadString()
		if password == "" {
			return false
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()

	acct, err := d.authenticate(ctx, username, sessionKey, password)
	if err != nil {
		d.Log.Info("login rejected", zap.String("account", username), zap.Error(err))
		sendLoginResponse(c, -1, nil, nil)
		c.Close()
		return true
	}

	char, worldCID, err := d.Characters.LoadByAccount(ctx, d.World.Objects, acct.UID)
	if err != nil {
		d.Log.Error("character load failed", zap.String("account", username), zap.Error(err))
		sendLoginResponse(c, -1, nil, nil)
		c.Close()
		return true
	}
	char.UserLevel = acct.UserLevel

	st := world.NewClientState(c, acct.UID, worldCID)
	st.Character = world.NewCharacterState(char)

	// Prime the derived caches before the client sees any state.
	st.Character.RecalcEquipState(d.Defs, d.World.Objects)
	st.Character.UpdateQuestState(d.Defs, 0)
	st.Character.UpdateCompendiumTokuseiIDs(
		d.Defs.Quests.CompendiumTokusei(char.CompendiumCount))

	zone := d.World.Zone(char.ZoneID)
	zone.AddCharacter(st.Character)

	comp := d.World.Objects.DemonBox(char.CompUID)
	if fam := familiarDemon(d.World.Objects, comp); fam != nil {
		st.Demon = world.NewDemonState(fam)
		st.Demon.X, st.Demon.Y = char.X, char.Y
		zone.AddDemon(st.Demon)
	}
	st.SetZone(zone)

	d.World.AddClient(st)
	c.SetState(packet.StateInWorld)

	sendLoginResponse(c, 0, st, char)

	if box := d.Mgr.Inventory(st); box != nil {
		d.Mgr.SendItemBoxData(st, box)
	}
	if comp != nil {
		d.Mgr.SendDemonBoxData(st, comp)
	}

	d.Log.Info("client entered world",
		zap.String("account", username),
		zap.String("character", char.Name),
		zap.Int32("cid", worldCID),
		zap.Int("online", d.World.ClientCount()))
	return true
}

// familiarDemon returns the COMP demon marked as the summoned partner,
// or nil when none is out.
func familiarDemon(reg *world.Registry, comp *world.DemonBox) *world.Demon {
	if comp == nil {
		return nil
	}
	for _, uid := range comp.Slots {
		if dmn := reg.Demon(uid); dmn != nil && dmn.Familiar {
			return dmn
		}
	}
	return nil
}

func (d *Deps) authenticate(ctx context.Context, username string, key int64, password string) (*persist.Account, error) {
	if key != 0 {
		return d.Accounts.VerifySessionKey(ctx, username, key)
	}
	return d.Accounts.Authenticate(ctx, username, password, d.Cfg.Game.AutoCreateAccounts)
}

func sendLoginResponse(c world.Conn, status int32, st *world.ClientState, char *world.Character) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_LOGIN_RESPONSE)
	w.WriteS32(status)
	if status == 0 && st != nil && char != nil {
		w.WriteS32(st.WorldCID)
		w.WriteS64(st.ObjectHandle(char.UID))
		w.WriteString(char.Name)
		w.WriteU32(char.ZoneID)
	}
	c.Send(w.Bytes())
}
