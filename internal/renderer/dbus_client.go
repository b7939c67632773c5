package renderer

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// DBusClient is the slice of the session bus the MPRIS renderer needs: it
// sends OpenUri/Stop to the viewer and watches its PlaybackStatus and owner.
//
//go:generate mockgen -destination=mocks/dbus_client_mock.go -package=mocks github.com/genricoloni/dancedeck/internal/renderer DBusClient
type DBusClient interface {
	Close() error

	// AddMatchSignal subscribes to the viewer's PropertiesChanged and
	// NameOwnerChanged signals
	AddMatchSignal(options ...dbus.MatchOption) error

	// Signal routes matched signals to ch
	Signal(ch chan<- *dbus.Signal)

	// GetNameOwner resolves the viewer's well-known name to its unique name,
	// used to ignore status signals from other players
	GetNameOwner(name string) (string, error)

	// CallMethod calls method on the viewer object at path, e.g.
	// org.mpris.MediaPlayer2.Player.OpenUri with a dance:// URI
	CallMethod(player, path, method string, args ...interface{}) error
}

// StdDBusClient talks to the viewer over the user's session bus
type StdDBusClient struct {
	conn *dbus.Conn
}

// NewStdDBusClient opens a private session bus connection for the renderer
func NewStdDBusClient() (*StdDBusClient, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	return &StdDBusClient{conn: conn}, nil
}

func (c *StdDBusClient) Close() error {
	return c.conn.Close()
}

func (c *StdDBusClient) AddMatchSignal(options ...dbus.MatchOption) error {
	return c.conn.AddMatchSignal(options...)
}

func (c *StdDBusClient) Signal(ch chan<- *dbus.Signal) {
	c.conn.Signal(ch)
}

func (c *StdDBusClient) GetNameOwner(name string) (string, error) {
	var owner string
	if err := c.conn.BusObject().Call("org.freedesktop.DBus.GetNameOwner", 0, name).Store(&owner); err != nil {
		return "", fmt.Errorf("viewer %s has no owner: %w", name, err)
	}
	return owner, nil
}

// CallMethod blocks until the viewer replies
func (c *StdDBusClient) CallMethod(player, path, method string, args ...interface{}) error {
	obj := c.conn.Object(player, dbus.ObjectPath(path))
	if err := obj.Call(method, 0, args...).Err; err != nil {
		return fmt.Errorf("%s on %s: %w", method, player, err)
	}
	return nil
}
