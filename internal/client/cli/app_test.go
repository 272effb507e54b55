package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophgate/internal/client/client"
	"github.com/dmitrijs2005/gophgate/internal/client/config"
	pb "github.com/dmitrijs2005/gophgate/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	loginErr   error
	statusErr  error
	registered []string
	logins     int
	checked    []string
}

func (f *fakeAuth) CheckStatus(token string) (*client.Session, error) {
	f.checked = append(f.checked, token)
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &client.Session{Email: "ann@example.com", FullName: "Ann", Token: token + "+"}, nil
}

func (f *fakeAuth) Login(email, password string) (*client.Session, error) {
	f.logins++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &client.Session{Email: email, FullName: "Ann", Token: "tok:" + password}, nil
}

func (f *fakeAuth) Register(email, password, fullName string) (*client.Session, error) {
	f.registered = append(f.registered, email, fullName)
	return &client.Session{Email: email, FullName: fullName, Token: "tok"}, nil
}

type fakeStream struct {
	mu     sync.Mutex
	sent   []string
	events chan pb.Envelope
	once   sync.Once
}

func newFakeStream(events ...pb.Envelope) *fakeStream {
	ch := make(chan pb.Envelope, len(events)+1)
	for _, e := range events {
		ch <- e
	}
	return &fakeStream{events: ch}
}

func (s *fakeStream) Send(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, text)
	return nil
}

func (s *fakeStream) Recv() (pb.Envelope, error) {
	e, ok := <-s.events
	if !ok {
		return pb.Envelope{}, io.EOF
	}
	return e, nil
}

func (s *fakeStream) Close() error {
	s.once.Do(func() { close(s.events) })
	return nil
}

func (s *fakeStream) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = old })
}

func connectTo(s EventStream, gotToken *string) Connector {
	return ConnectorFunc(func(_ context.Context, token string) (EventStream, error) {
		*gotToken = token
		return s, nil
	})
}

func TestRun_ChatsUntilQuit(t *testing.T) {
	stubPassword(t, "secret123")

	stream := newFakeStream(
		pb.ClientsUpdated([]string{"Ann"}),
		pb.MessageFromServer("Bob", "welcome"),
	)
	var token string
	var out bytes.Buffer
	app := NewApp(&config.Config{Email: "ann@example.com"}, &fakeAuth{}, connectTo(stream, &token),
		strings.NewReader("hello\n\n/help\nsecond\n/quit\nnever sent\n"), &out)

	require.NoError(t, app.Run(context.Background()))

	assert.Equal(t, "tok:secret123", token)
	assert.Equal(t, []string{"hello", "second"}, stream.Sent())
	assert.Contains(t, out.String(), "Signed in as Ann (ann@example.com)")
	assert.Contains(t, out.String(), "* online (1): Ann")
	assert.Contains(t, out.String(), "Bob: welcome")
	assert.Contains(t, out.String(), "Commands: /help, /logout, /quit")
}

func TestRun_EndOfInputStops(t *testing.T) {
	stubPassword(t, "pw")

	stream := newFakeStream()
	var token string
	app := NewApp(&config.Config{Email: "ann@example.com"}, &fakeAuth{}, connectTo(stream, &token),
		strings.NewReader("last line"), io.Discard)

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, []string{"last line"}, stream.Sent())
}

func TestRun_ServerDisconnect(t *testing.T) {
	stubPassword(t, "pw")

	stream := newFakeStream()
	stream.Close()

	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	var token string
	app := NewApp(&config.Config{Email: "ann@example.com"}, &fakeAuth{}, connectTo(stream, &token), pr, io.Discard)

	require.ErrorIs(t, app.Run(context.Background()), ErrDisconnected)
}

func TestRun_RegisterPromptsForMissingFields(t *testing.T) {
	stubPassword(t, "secret123")

	auth := &fakeAuth{}
	stream := newFakeStream()
	var token string
	var out bytes.Buffer
	app := NewApp(&config.Config{Register: true}, auth, connectTo(stream, &token),
		strings.NewReader("bob@example.com\nBob\n/quit\n"), &out)

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, []string{"bob@example.com", "Bob"}, auth.registered)
	assert.Contains(t, out.String(), "Email\n> ")
	assert.Contains(t, out.String(), "Full name\n> ")
}

func TestRun_Failures(t *testing.T) {
	stubPassword(t, "pw")

	loginErr := errors.New("401 Unauthorized")
	app := NewApp(&config.Config{Email: "a@b.com"}, &fakeAuth{loginErr: loginErr},
		ConnectorFunc(func(context.Context, string) (EventStream, error) {
			t.Fatal("must not connect without a session")
			return nil, nil
		}), strings.NewReader(""), io.Discard)
	require.ErrorIs(t, app.Run(context.Background()), loginErr)

	dialErr := errors.New("unavailable")
	app = NewApp(&config.Config{Email: "a@b.com"}, &fakeAuth{},
		ConnectorFunc(func(context.Context, string) (EventStream, error) { return nil, dialErr }),
		strings.NewReader(""), io.Discard)
	require.ErrorIs(t, app.Run(context.Background()), dialErr)
}

func TestFormatEvent(t *testing.T) {
	assert.Equal(t, "* online (2): Ann, Bob", FormatEvent(pb.ClientsUpdated([]string{"Ann", "Bob"})))
	assert.Equal(t, "Ann: hi", FormatEvent(pb.MessageFromServer("Ann", "hi")))
	assert.Equal(t, "* typing", FormatEvent(pb.Envelope{Event: "typing"}))
}

type memCache struct {
	email, token string
	cleared      bool
}

func (c *memCache) Load(context.Context) (string, string, error) { return c.email, c.token, nil }

func (c *memCache) Save(_ context.Context, email, token string) error {
	c.email, c.token = email, token
	return nil
}

func (c *memCache) Forget(context.Context) error {
	c.token = ""
	return nil
}

func (c *memCache) Clear(context.Context) error {
	c.email, c.token, c.cleared = "", "", true
	return nil
}

func TestRun_ResumesCachedSession(t *testing.T) {
	stubPassword(t, "unused")

	auth := &fakeAuth{}
	cache := &memCache{email: "ann@example.com", token: "cached"}
	var token string
	app := NewApp(&config.Config{}, auth, connectTo(newFakeStream(), &token),
		strings.NewReader("/quit\n"), io.Discard).WithSessionCache(cache)

	require.NoError(t, app.Run(context.Background()))

	assert.Equal(t, []string{"cached"}, auth.checked)
	assert.Zero(t, auth.logins)
	assert.Equal(t, "cached+", token)
	assert.Equal(t, "cached+", cache.token)
}

func TestRun_RejectedCachedTokenFallsBackToLogin(t *testing.T) {
	stubPassword(t, "pw")

	auth := &fakeAuth{statusErr: &client.APIError{StatusCode: 401, Message: "invalid token"}}
	cache := &memCache{email: "ann@example.com", token: "stale"}
	var token string
	var out bytes.Buffer
	app := NewApp(&config.Config{}, auth, connectTo(newFakeStream(), &token),
		strings.NewReader("\n/quit\n"), &out).WithSessionCache(cache)

	require.NoError(t, app.Run(context.Background()))

	assert.Equal(t, 1, auth.logins)
	assert.Equal(t, "tok:pw", token)
	assert.Contains(t, out.String(), "Email [ann@example.com]\n> ")
	assert.Equal(t, "ann@example.com", cache.email)
	assert.Equal(t, "tok:pw", cache.token)
}

func TestRun_CachedSessionForOtherAccountIsIgnored(t *testing.T) {
	stubPassword(t, "pw")

	auth := &fakeAuth{}
	cache := &memCache{email: "bob@example.com", token: "bobs"}
	var token string
	app := NewApp(&config.Config{Email: "ann@example.com"}, auth, connectTo(newFakeStream(), &token),
		strings.NewReader("/quit\n"), io.Discard).WithSessionCache(cache)

	require.NoError(t, app.Run(context.Background()))

	assert.Empty(t, auth.checked)
	assert.Equal(t, "ann@example.com", cache.email)
}

func TestRun_LogoutClearsCache(t *testing.T) {
	stubPassword(t, "pw")

	cache := &memCache{}
	var token string
	var out bytes.Buffer
	app := NewApp(&config.Config{Email: "ann@example.com"}, &fakeAuth{}, connectTo(newFakeStream(), &token),
		strings.NewReader("/logout\nnever sent\n"), &out).WithSessionCache(cache)

	require.NoError(t, app.Run(context.Background()))

	assert.True(t, cache.cleared)
	assert.Empty(t, cache.token)
	assert.Contains(t, out.String(), "Signed out")
}
