// Package bot relays crisis alerts to an on-call IRC channel.
package bot

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/MyelinBots/heavenly-go/config"
	"github.com/MyelinBots/heavenly-go/internal/services/notify"
	irc "github.com/fluffle/goirc/client"
)

var ErrNotJoined = errors.New("alert bot has not joined the on-call channel")

// ircConn is the slice of *irc.Conn the bot writes through.
type ircConn interface {
	Privmsg(t, msg string)
	Raw(rawline string)
	Join(channel string, key ...string)
}

type Identified struct {
	sync.Mutex
	identified bool
}

type joined struct {
	sync.RWMutex
	channels map[string]bool
}

type AlertBot struct {
	cfg        config.IRCConfig
	identified *Identified
	joined     *joined
	conn       ircConn
	client     *irc.Conn
}

func NewAlertBot(cfg config.IRCConfig) *AlertBot {
	b := &AlertBot{
		cfg:        cfg,
		identified: &Identified{},
		joined:     &joined{channels: map[string]bool{}},
	}

	ircConfig := irc.NewConfig(cfg.Nick)
	ircConfig.SSL = cfg.SSL
	ircConfig.SSLConfig = &tls.Config{InsecureSkipVerify: true, ServerName: cfg.Host}
	ircConfig.Server = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	b.client = irc.Client(ircConfig)
	b.conn = b.client
	return b
}

func (b *AlertBot) channel() string {
	return b.cfg.Channels[0]
}

func (b *AlertBot) joinAll(conn ircConn) {
	for _, channel := range b.cfg.Channels {
		log.Printf("[bot] joining channel %s", channel)
		conn.Join(channel)
	}
}

func (b *AlertBot) onJoin(conn ircConn, line *irc.Line) {
	if line == nil || len(line.Args) == 0 || line.Nick != b.cfg.Nick {
		return
	}
	b.joined.Lock()
	b.joined.channels[line.Args[0]] = true
	b.joined.Unlock()
	log.Printf("[bot] joined %s", line.Args[0])
	handleNickserv(b.cfg, b.identified, conn)
}

func (b *AlertBot) reset() {
	b.joined.Lock()
	b.joined.channels = map[string]bool{}
	b.joined.Unlock()
	b.identified.Lock()
	b.identified.identified = false
	b.identified.Unlock()
}

// Run connects and blocks until ctx is cancelled or the server disconnects.
func (b *AlertBot) Run(ctx context.Context) error {
	b.client.HandleFunc(irc.CONNECTED, func(conn *irc.Conn, line *irc.Line) {
		log.Printf("[bot] connected to %s", b.cfg.Host)
		b.joinAll(conn)
	})
	// no MOTD / end of MOTD
	b.client.HandleFunc("422", func(conn *irc.Conn, line *irc.Line) { b.joinAll(conn) })
	b.client.HandleFunc("376", func(conn *irc.Conn, line *irc.Line) { b.joinAll(conn) })
	b.client.HandleFunc(irc.JOIN, func(conn *irc.Conn, line *irc.Line) { b.onJoin(conn, line) })

	quit := make(chan struct{}, 1)
	b.client.HandleFunc(irc.DISCONNECTED, func(conn *irc.Conn, line *irc.Line) {
		b.reset()
		select {
		case quit <- struct{}{}:
		default:
		}
	})

	if err := b.client.Connect(); err != nil {
		return fmt.Errorf("irc connect: %w", err)
	}

	select {
	case <-ctx.Done():
		b.client.Quit("shutting down")
		<-quit
		return nil
	case <-quit:
		return errors.New("irc disconnected")
	}
}

// NotifyCrisis posts one line per alert to the on-call channel.
func (b *AlertBot) NotifyCrisis(_ context.Context, alert notify.Alert) error {
	b.joined.RLock()
	ok := b.joined.channels[b.channel()]
	b.joined.RUnlock()
	if !ok {
		return ErrNotJoined
	}
	b.conn.Privmsg(b.channel(), oneLine(alert.Line()))
	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func handleNickserv(cfg config.IRCConfig, identified *Identified, c ircConn) {
	identified.Lock()
	defer identified.Unlock()
	if !identified.identified && cfg.NickservPassword != "" {
		command := fmt.Sprintf(cfg.NickservCommand, cfg.NickservPassword)
		c.Raw(command)
		identified.identified = true
	}
}
