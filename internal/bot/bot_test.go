package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/MyelinBots/heavenly-go/config"
	"github.com/MyelinBots/heavenly-go/internal/services/crisis"
	"github.com/MyelinBots/heavenly-go/internal/services/notify"
	irc "github.com/fluffle/goirc/client"
)

type fakeConn struct {
	privmsgs []string
	raw      []string
	joins    []string
}

func (f *fakeConn) Privmsg(t, msg string)              { f.privmsgs = append(f.privmsgs, t+" "+msg) }
func (f *fakeConn) Raw(rawline string)                 { f.raw = append(f.raw, rawline) }
func (f *fakeConn) Join(channel string, key ...string) { f.joins = append(f.joins, channel) }

func newTestBot() (*AlertBot, *fakeConn) {
	cfg := config.IRCConfig{
		Host:             "irc.example.com",
		Port:             6697,
		Nick:             "heavenly-alerts",
		Channels:         []string{"#oncall", "#ops"},
		NickservCommand:  "PRIVMSG NickServ IDENTIFY %s",
		NickservPassword: "secret",
	}
	b := NewAlertBot(cfg)
	fc := &fakeConn{}
	b.conn = fc
	return b, fc
}

func TestNotifyCrisisRequiresJoin(t *testing.T) {
	b, fc := newTestBot()
	alert := notify.Alert{UserID: "u-1", UserName: "Alex", ConversationID: "c-1", Level: crisis.Critical, Reason: "line one\nline two"}

	if err := b.NotifyCrisis(context.Background(), alert); !errors.Is(err, ErrNotJoined) {
		t.Fatalf("before join err = %v", err)
	}

	b.onJoin(fc, &irc.Line{Nick: "heavenly-alerts", Args: []string{"#oncall"}})
	if err := b.NotifyCrisis(context.Background(), alert); err != nil {
		t.Fatal(err)
	}
	want := "#oncall CRISIS ALERT [CRITICAL] user=Alex (u-1) conversation=c-1: line one line two"
	if len(fc.privmsgs) != 1 || fc.privmsgs[0] != want {
		t.Errorf("privmsgs = %q", fc.privmsgs)
	}

	b.reset()
	if err := b.NotifyCrisis(context.Background(), alert); !errors.Is(err, ErrNotJoined) {
		t.Errorf("after disconnect err = %v", err)
	}
}

func TestOnJoinIgnoresOtherNicks(t *testing.T) {
	b, fc := newTestBot()
	b.onJoin(fc, &irc.Line{Nick: "someone", Args: []string{"#oncall"}})
	if err := b.NotifyCrisis(context.Background(), notify.Alert{}); !errors.Is(err, ErrNotJoined) {
		t.Errorf("err = %v", err)
	}
	if len(fc.raw) != 0 {
		t.Errorf("identified on someone else's join: %q", fc.raw)
	}
}

func TestHandleNickservOnce(t *testing.T) {
	b, fc := newTestBot()
	b.onJoin(fc, &irc.Line{Nick: "heavenly-alerts", Args: []string{"#oncall"}})
	b.onJoin(fc, &irc.Line{Nick: "heavenly-alerts", Args: []string{"#ops"}})

	if len(fc.raw) != 1 || fc.raw[0] != "PRIVMSG NickServ IDENTIFY secret" {
		t.Errorf("raw = %q", fc.raw)
	}
}

func TestJoinAll(t *testing.T) {
	b, fc := newTestBot()
	b.joinAll(fc)
	if len(fc.joins) != 2 || fc.joins[0] != "#oncall" || fc.joins[1] != "#ops" {
		t.Errorf("joins = %q", fc.joins)
	}
}
