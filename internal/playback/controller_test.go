package playback

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/audioengine/internal/effects"
	"github.com/friendsincode/audioengine/internal/events"
	"github.com/friendsincode/audioengine/internal/settings"
)

type fakeResolver struct{}

func (fakeResolver) AudioURL(ctx context.Context, uuid string) (string, bool) {
	return "", false
}

func (fakeResolver) StreamURL(ctx context.Context, uuid, songType string) (string, error) {
	return "https://stream.example/" + uuid, nil
}

func newTestControllerForSleep(t *testing.T) *Controller {
	t.Helper()
	c := New(fakeResolver{}, events.NewBus(), zerolog.Nop())
	return c
}

func newWiredTestController(t *testing.T) *Controller {
	t.Helper()
	c := New(fakeResolver{}, events.NewBus(), zerolog.Nop())
	store := settings.New(settings.NewMemoryKV(), settings.NewMemoryStructuredStore())
	fx, err := effects.NewController(context.Background(), "sess-1", c, store, zerolog.Nop())
	if err != nil {
		t.Fatalf("new effects controller: %v", err)
	}
	c.SetEffectsController(fx)
	return c
}

func testSong(uuid string, duration float64) *settings.Song {
	return &settings.Song{
		UUID:            uuid,
		Title:           "Track " + uuid,
		Type:            "track",
		DurationSeconds: duration,
		Seekable:        true,
	}
}

func TestController_PlayLoadsAndStartsPrimarySlot(t *testing.T) {
	c := newWiredTestController(t)
	song := testSong("song-1", 180)
	if err := c.Play(context.Background(), song); err != nil {
		t.Fatalf("play: %v", err)
	}
	obs := c.Observable()
	if obs.CurrentSong == nil || obs.CurrentSong.UUID != "song-1" {
		t.Fatalf("expected current song song-1, got %+v", obs.CurrentSong)
	}
	if !obs.IsPlaying {
		t.Fatalf("expected playing after Play")
	}
}

func TestController_PauseResumePreservesPosition(t *testing.T) {
	c := newWiredTestController(t)
	song := testSong("song-1", 180)
	_ = c.Play(context.Background(), song)
	time.Sleep(10 * time.Millisecond)
	c.Pause()
	obs := c.Observable()
	if obs.IsPlaying {
		t.Fatalf("expected paused")
	}
	pausedAt := obs.CurrentTime
	if err := c.Resume(context.Background()); err != nil {
		t.Fatalf("resume: %v", err)
	}
	obs = c.Observable()
	if !obs.IsPlaying {
		t.Fatalf("expected playing after resume")
	}
	if obs.CurrentTime < pausedAt {
		t.Fatalf("expected resume to continue from %v, got %v", pausedAt, obs.CurrentTime)
	}
}

func TestController_SeekRejectsNonSeekable(t *testing.T) {
	c := newWiredTestController(t)
	song := testSong("song-1", 180)
	song.Seekable = false
	_ = c.Play(context.Background(), song)
	if err := c.Seek(10 * time.Second); err != ErrSeekNotSupported {
		t.Fatalf("expected ErrSeekNotSupported, got %v", err)
	}
}

func TestController_SeekClampsToDuration(t *testing.T) {
	c := newWiredTestController(t)
	song := testSong("song-1", 60)
	_ = c.Play(context.Background(), song)
	if err := c.Seek(1000 * time.Second); err != nil {
		t.Fatalf("seek: %v", err)
	}
	obs := c.Observable()
	if obs.CurrentTime != 60*time.Second {
		t.Fatalf("expected clamp to duration, got %v", obs.CurrentTime)
	}
}

func TestController_RecordPlaybackErrorIncrementsCounter(t *testing.T) {
	c := newWiredTestController(t)
	n := c.RecordPlaybackError(ErrNoCurrentSong)
	if n != 1 {
		t.Fatalf("expected count 1, got %d", n)
	}
	n = c.RecordPlaybackError(ErrNoCurrentSong)
	if n != 2 {
		t.Fatalf("expected count 2, got %d", n)
	}
	if c.ConsecutiveErrors() != 2 {
		t.Fatalf("expected ConsecutiveErrors 2, got %d", c.ConsecutiveErrors())
	}
}

func TestController_PlayResetsConsecutiveErrors(t *testing.T) {
	c := newWiredTestController(t)
	c.RecordPlaybackError(ErrNoCurrentSong)
	_ = c.Play(context.Background(), testSong("song-1", 60))
	if c.ConsecutiveErrors() != 0 {
		t.Fatalf("expected reset to 0, got %d", c.ConsecutiveErrors())
	}
}

func TestController_MuteZeroesEffectiveVolume(t *testing.T) {
	c := newWiredTestController(t)
	_ = c.Play(context.Background(), testSong("song-1", 60))
	c.SetVolume(0.8)
	c.ToggleMute()
	if v := c.effectiveVolume(); v != 0 {
		t.Fatalf("expected effective volume 0 when muted, got %v", v)
	}
	c.ToggleMute()
	if v := c.effectiveVolume(); v != 0.8 {
		t.Fatalf("expected effective volume 0.8 when unmuted, got %v", v)
	}
}
