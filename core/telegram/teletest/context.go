// Package teletest provides an in-memory tele.Context and a fake Bot API
// transport for handler and dispatch tests.
package teletest

import (
	"strings"
	"sync"

	tele "gopkg.in/telebot.v4"
)

// Sent records one outgoing message.
type Sent struct {
	What any
	Opts []any
}

// Context implements the parts of tele.Context the bot uses. Calling any
// other method panics through the nil embedded interface.
type Context struct {
	tele.Context

	Upd     tele.Update
	SendErr error

	mu    sync.Mutex
	store map[string]any
	sent  []Sent
}

// NewText returns a private-chat text update from userID.
func NewText(userID int64, text string) *Context {
	msg := &tele.Message{
		ID:     1,
		Sender: &tele.User{ID: userID, Username: "tester", LanguageCode: "ru"},
		Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		Text:   text,
	}
	if strings.HasPrefix(text, "/") {
		if _, payload, ok := strings.Cut(text, " "); ok {
			msg.Payload = strings.TrimSpace(payload)
		}
	}
	return &Context{Upd: tele.Update{ID: 100, Message: msg}}
}

func (c *Context) Update() tele.Update      { return c.Upd }
func (c *Context) Message() *tele.Message   { return c.Upd.Message }
func (c *Context) Callback() *tele.Callback { return c.Upd.Callback }

func (c *Context) Sender() *tele.User {
	if c.Upd.Message != nil {
		return c.Upd.Message.Sender
	}
	return nil
}

func (c *Context) Chat() *tele.Chat {
	if c.Upd.Message != nil {
		return c.Upd.Message.Chat
	}
	return nil
}

func (c *Context) Text() string {
	if c.Upd.Message != nil {
		return c.Upd.Message.Text
	}
	return ""
}

// Args splits the command payload the way telebot does.
func (c *Context) Args() []string {
	if c.Upd.Message == nil {
		return nil
	}
	if p := strings.TrimSpace(c.Upd.Message.Payload); p != "" {
		return strings.Fields(p)
	}
	return nil
}

func (c *Context) Send(what any, opts ...any) error {
	if c.SendErr != nil {
		return c.SendErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, Sent{What: what, Opts: opts})
	return nil
}

func (c *Context) Reply(what any, opts ...any) error {
	return c.Send(what, opts...)
}

func (c *Context) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store[key]
}

func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = make(map[string]any)
	}
	c.store[key] = val
}

// Sent returns a copy of the recorded messages.
func (c *Context) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

// LastText returns the text of the last message sent, or "".
func (c *Context) LastText() string {
	sent := c.Sent()
	if len(sent) == 0 {
		return ""
	}
	s, _ := sent[len(sent)-1].What.(string)
	return s
}

// SendOptions returns the *tele.SendOptions of message i, if any.
func (s Sent) SendOptions() *tele.SendOptions {
	for _, o := range s.Opts {
		if so, ok := o.(*tele.SendOptions); ok {
			return so
		}
	}
	return nil
}
