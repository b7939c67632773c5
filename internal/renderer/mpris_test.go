package renderer

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/genricoloni/dancedeck/internal/renderer/mocks"
	"github.com/godbus/dbus/v5"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const testPlayer = "org.mpris.MediaPlayer2.dancedeck"

func statusSignal(sender, status string) *dbus.Signal {
	return &dbus.Signal{
		Name:   propertiesChanged,
		Sender: sender,
		Body: []interface{}{
			mprisPlayerInterface,
			map[string]dbus.Variant{"PlaybackStatus": dbus.MakeVariant(status)},
			[]string{},
		},
	}
}

func TestDanceURI(t *testing.T) {
	tests := []struct {
		name       string
		camera     string
		wantCamera bool
	}{
		{name: "With Camera", camera: "file:///c.vmd", wantCamera: true},
		{name: "Without Camera", camera: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := DanceURI("file:///m.vmd", "file:///a b.wav", tt.camera)

			u, err := url.Parse(raw)
			if err != nil {
				t.Fatalf("invalid uri %s: %v", raw, err)
			}
			if u.Scheme != "dance" || u.Host != "play" {
				t.Errorf("unexpected uri: %s", raw)
			}
			q := u.Query()
			if q.Get("motion") != "file:///m.vmd" || q.Get("audio") != "file:///a b.wav" {
				t.Errorf("locators not round-tripped: %v", q)
			}
			if q.Has("camera") != tt.wantCamera {
				t.Errorf("camera presence: want %v, got %v", tt.wantCamera, q.Has("camera"))
			}
		})
	}
}

// TestMprisEngine_HandleSignal covers the session state machine driven by
// PlaybackStatus changes.
func TestMprisEngine_HandleSignal(t *testing.T) {
	tests := []struct {
		name         string
		owner        string
		signals      []*dbus.Signal
		withSession  bool
		wantFinished int
	}{
		{
			name:         "Playing Then Stopped Finishes",
			owner:        ":1.42",
			withSession:  true,
			signals:      []*dbus.Signal{statusSignal(":1.42", "Playing"), statusSignal(":1.42", "Stopped")},
			wantFinished: 1,
		},
		{
			name:         "Stopped Before Playing Is Ignored",
			owner:        ":1.42",
			withSession:  true,
			signals:      []*dbus.Signal{statusSignal(":1.42", "Stopped")},
			wantFinished: 0,
		},
		{
			name:         "Repeated Stopped Finishes Once",
			owner:        ":1.42",
			withSession:  true,
			signals:      []*dbus.Signal{statusSignal(":1.42", "Playing"), statusSignal(":1.42", "Stopped"), statusSignal(":1.42", "Stopped")},
			wantFinished: 1,
		},
		{
			name:         "Other Player Ignored",
			owner:        ":1.42",
			withSession:  true,
			signals:      []*dbus.Signal{statusSignal(":1.99", "Playing"), statusSignal(":1.99", "Stopped")},
			wantFinished: 0,
		},
		{
			name:         "Unknown Owner Accepts Any Sender",
			withSession:  true,
			signals:      []*dbus.Signal{statusSignal(":1.7", "Playing"), statusSignal(":1.7", "Stopped")},
			wantFinished: 1,
		},
		{
			name:         "No Session",
			owner:        ":1.42",
			signals:      []*dbus.Signal{statusSignal(":1.42", "Playing"), statusSignal(":1.42", "Stopped")},
			wantFinished: 0,
		},
		{
			name:        "Malformed Signals Ignored",
			owner:       ":1.42",
			withSession: true,
			signals: []*dbus.Signal{
				{Name: "org.freedesktop.DBus.SomeOtherSignal", Sender: ":1.42"},
				{Name: propertiesChanged, Sender: ":1.42", Body: []interface{}{mprisPlayerInterface}},
				{Name: propertiesChanged, Sender: ":1.42", Body: []interface{}{"org.mpris.MediaPlayer2", map[string]dbus.Variant{}}},
				{Name: propertiesChanged, Sender: ":1.42", Body: []interface{}{
					mprisPlayerInterface,
					map[string]dbus.Variant{"PlaybackStatus": dbus.MakeVariant([]string{"Stopped"})},
				}},
			},
			wantFinished: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := NewMprisEngine(zap.NewNop(), testPlayer, nil)
			eng.owner = tt.owner

			finished := 0
			if tt.withSession {
				eng.session = &mprisSession{onFinished: func() { finished++ }}
			}

			for _, sig := range tt.signals {
				eng.handleSignal(sig)
			}

			if finished != tt.wantFinished {
				t.Errorf("onFinished calls: want %d, got %d", tt.wantFinished, finished)
			}
		})
	}
}

func TestMprisEngine_HandleNameOwnerChanged(t *testing.T) {
	eng := NewMprisEngine(zap.NewNop(), testPlayer, nil)
	eng.owner = ":1.1"

	eng.handleNameOwnerChanged(&dbus.Signal{Name: nameOwnerChanged, Body: []interface{}{"org.mpris.MediaPlayer2.vlc", ":1.1", ":1.5"}})
	if eng.owner != ":1.1" {
		t.Errorf("unrelated player changed owner to %s", eng.owner)
	}

	eng.handleNameOwnerChanged(&dbus.Signal{Name: nameOwnerChanged, Body: []interface{}{testPlayer, ":1.1", ":1.8"}})
	if eng.owner != ":1.8" {
		t.Errorf("owner: want :1.8, got %s", eng.owner)
	}
}

func TestMprisEngine_PlayAndStop(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*mocks.MockDBusClient)
		expectError bool
		keepSession bool
	}{
		{
			name: "Success",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().CallMethod(testPlayer, mprisPath, mprisPlayerInterface+".OpenUri",
					DanceURI("u_m", "u_a", "")).Return(nil)
			},
			keepSession: true,
		},
		{
			name: "DBus Error - OpenUri Fails",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().CallMethod(testPlayer, mprisPath, mprisPlayerInterface+".OpenUri", gomock.Any()).
					Return(fmt.Errorf("no such name"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := mocks.NewMockDBusClient(ctrl)
			tt.setupMock(mockClient)

			eng := NewMprisEngine(zap.NewNop(), testPlayer, mockClient)
			err := eng.Play(context.Background(), "u_m", "u_a", "", func() {})

			if tt.expectError && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if (eng.session != nil) != tt.keepSession {
				t.Errorf("session kept: want %v, got %v", tt.keepSession, eng.session != nil)
			}
		})
	}
}

func TestMprisEngine_StopDetachesSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockDBusClient(ctrl)
	mockClient.EXPECT().CallMethod(testPlayer, mprisPath, mprisPlayerInterface+".Stop").Return(nil)

	eng := NewMprisEngine(zap.NewNop(), testPlayer, mockClient)
	eng.owner = ":1.42"

	finished := 0
	eng.session = &mprisSession{onFinished: func() { finished++ }, started: true}

	if err := eng.Stop(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// The viewer confirms the stop; it must not count as a natural end
	eng.handleSignal(statusSignal(":1.42", "Stopped"))
	if finished != 0 {
		t.Errorf("onFinished must not fire after Stop, got %d calls", finished)
	}
}

// TestMprisEngine_Lifecycle runs the signal goroutine end to end.
func TestMprisEngine_Lifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var signals chan<- *dbus.Signal
	mockClient := mocks.NewMockDBusClient(ctrl)
	mockClient.EXPECT().AddMatchSignal(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	mockClient.EXPECT().GetNameOwner(testPlayer).Return(":1.42", nil)
	mockClient.EXPECT().Signal(gomock.Any()).Do(func(ch chan<- *dbus.Signal) { signals = ch })
	mockClient.EXPECT().CallMethod(testPlayer, mprisPath, mprisPlayerInterface+".OpenUri", gomock.Any()).Return(nil)
	mockClient.EXPECT().Close().Return(nil)

	eng := NewMprisEngine(zap.NewNop(), testPlayer, mockClient)
	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	// Starting twice is a no-op
	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("second start failed: %v", err)
	}

	finished := make(chan struct{}, 1)
	if err := eng.Play(context.Background(), "u_m", "u_a", "u_c", func() { finished <- struct{}{} }); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	signals <- statusSignal(":1.42", "Playing")
	signals <- statusSignal(":1.42", "Stopped")

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Timeout: onFinished was not called")
	}

	if err := eng.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
}

func TestMprisEngine_StartMatchFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockDBusClient(ctrl)
	mockClient.EXPECT().AddMatchSignal(gomock.Any(), gomock.Any(), gomock.Any()).Return(fmt.Errorf("access denied"))

	eng := NewMprisEngine(zap.NewNop(), testPlayer, mockClient)
	if err := eng.Start(context.Background()); err == nil {
		t.Error("Expected error, got nil")
	}
	if eng.running {
		t.Error("engine must not be running after a failed start")
	}
}
