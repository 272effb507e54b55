package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophgate/internal/client/client"
	"github.com/dmitrijs2005/gophgate/internal/client/config"
	pb "github.com/dmitrijs2005/gophgate/internal/proto"
)

// ErrDisconnected is returned when the server ends the presence stream.
var ErrDisconnected = errors.New("disconnected by server")

// AuthService is the account API the client needs.
type AuthService interface {
	Login(email, password string) (*client.Session, error)
	Register(email, password, fullName string) (*client.Session, error)
	CheckStatus(token string) (*client.Session, error)
}

// SessionCache remembers the last session between runs.
type SessionCache interface {
	Load(ctx context.Context) (email, token string, err error)
	Save(ctx context.Context, email, token string) error
	Forget(ctx context.Context) error
	Clear(ctx context.Context) error
}

// EventStream is an open presence connection.
type EventStream interface {
	Send(text string) error
	Recv() (pb.Envelope, error)
	Close() error
}

// Connector opens presence connections.
type Connector interface {
	Connect(ctx context.Context, token string) (EventStream, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context, token string) (EventStream, error)

func (f ConnectorFunc) Connect(ctx context.Context, token string) (EventStream, error) {
	return f(ctx, token)
}

type App struct {
	config   *config.Config
	auth     AuthService
	presence Connector
	cache    SessionCache
	reader   *bufio.Reader

	mu  sync.Mutex
	out io.Writer
}

func NewApp(c *config.Config, auth AuthService, presence Connector, in io.Reader, out io.Writer) *App {
	return &App{config: c, auth: auth, presence: presence, reader: bufio.NewReader(in), out: out}
}

// WithSessionCache makes the app resume and remember sessions through cache.
func (a *App) WithSessionCache(cache SessionCache) *App {
	a.cache = cache
	return a
}

// Run signs in and chats until the user quits or the stream ends.
func (a *App) Run(ctx context.Context) error {
	sess, err := a.signIn(ctx)
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("Signed in as %s (%s)", sess.FullName, sess.Email))

	stream, err := a.presence.Connect(ctx, sess.Token)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	recvDone := make(chan error, 1)
	recvExited := make(chan struct{})
	go func() {
		defer close(recvExited)
		for {
			e, err := stream.Recv()
			if err != nil {
				recvDone <- err
				return
			}
			a.println(FormatEvent(e))
		}
	}()

	err = a.chat(ctx, stream, recvDone)
	_ = stream.Close()
	<-recvExited
	return err
}

func (a *App) println(line string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintln(a.out, line)
}

func (a *App) signIn(ctx context.Context) (*client.Session, error) {
	sess, hint := a.resume(ctx)
	if sess != nil {
		return sess, nil
	}

	email := a.config.Email
	if email == "" {
		var err error
		if email, err = Prompt(a.reader, a.out, "Email", hint); err != nil {
			return nil, err
		}
	}

	password, err := PromptPassword(a.out)
	if err != nil {
		return nil, err
	}

	if !a.config.Register {
		sess, err = a.auth.Login(email, password)
	} else {
		fullName := a.config.FullName
		if fullName == "" {
			if fullName, err = Prompt(a.reader, a.out, "Full name", ""); err != nil {
				return nil, err
			}
		}
		sess, err = a.auth.Register(email, password, fullName)
	}
	if err != nil {
		return nil, err
	}

	a.remember(ctx, sess)
	return sess, nil
}

// resume trades a cached token for a fresh session. When that is not
// possible it returns the cached email as the prompt's default.
func (a *App) resume(ctx context.Context) (*client.Session, string) {
	if a.cache == nil || a.config.Register {
		return nil, ""
	}

	email, token, err := a.cache.Load(ctx)
	if err != nil {
		a.println(fmt.Sprintf("session cache unavailable: %v", err))
		return nil, ""
	}
	if a.config.Email != "" && !strings.EqualFold(a.config.Email, email) {
		return nil, ""
	}
	if token == "" {
		return nil, email
	}

	sess, err := a.auth.CheckStatus(token)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			_ = a.cache.Forget(ctx)
		}
		return nil, email
	}

	a.remember(ctx, sess)
	return sess, ""
}

func (a *App) remember(ctx context.Context, sess *client.Session) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Save(ctx, sess.Email, sess.Token); err != nil {
		a.println(fmt.Sprintf("could not cache session: %v", err))
	}
}

// chat forwards input lines to stream until the user quits, input ends,
// ctx is cancelled or the stream fails.
func (a *App) chat(ctx context.Context, stream EventStream, recvDone <-chan error) error {
	done := make(chan struct{})
	defer close(done)

	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := a.reader.ReadString('\n')
			if line = strings.TrimSpace(line); line != "" {
				select {
				case lines <- line:
				case <-done:
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-recvDone:
			if errors.Is(err, io.EOF) {
				return ErrDisconnected
			}
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			switch line {
			case "/quit", "/exit":
				return nil
			case "/logout":
				if a.cache != nil {
					if err := a.cache.Clear(ctx); err != nil {
						return fmt.Errorf("logout: %w", err)
					}
				}
				a.println("Signed out")
				return nil
			case "/help":
				a.println("Type a message and press Enter. Commands: /help, /logout, /quit")
				continue
			}
			if err := stream.Send(line); err != nil {
				return fmt.Errorf("send: %w", err)
			}
		}
	}
}
