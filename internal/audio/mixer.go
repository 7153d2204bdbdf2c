// Package audio models the client audio buses: per-track gains composed with
// a category bus and a master bus. Actual playback sits behind the Output
// interface; the mixer only decides what each track's effective gain is and
// keeps playing tracks in sync when any bus changes.
package audio

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Category buckets a track onto one of the three volume buses.
type Category string

const (
	CategoryBGM   Category = "bgm"
	CategorySE    Category = "se"
	CategoryVoice Category = "voice"
)

// Track describes one playable resource and its base gain.
type Track struct {
	ID       string
	Name     string
	Category Category
	Loop     bool
	Gain     float64
}

// Output is the playback boundary. Play and Stop accept optional fade
// durations; SetGain applies an already-composed effective gain.
type Output interface {
	Play(track Track, gain float64, fadeIn time.Duration) error
	Stop(trackID string, fadeOut time.Duration) error
	SetGain(trackID string, gain float64) error
}

// Default bus levels.
const (
	DefaultMasterVolume = 0.7
	DefaultBGMVolume    = 0.5
	DefaultSEVolume     = 0.8
	DefaultVoiceVolume  = 0.9
)

type Mixer struct {
	mu       sync.Mutex
	out      Output
	log      *zap.Logger
	master   float64
	category map[Category]float64
	tracks   map[string]Track
	playing  map[string]bool
	muted    bool
}

func NewMixer(out Output, log *zap.Logger) *Mixer {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Mixer{
		out:    out,
		log:    log,
		master: DefaultMasterVolume,
		category: map[Category]float64{
			CategoryBGM:   DefaultBGMVolume,
			CategorySE:    DefaultSEVolume,
			CategoryVoice: DefaultVoiceVolume,
		},
		tracks:  map[string]Track{},
		playing: map[string]bool{},
	}
	for _, t := range Presets() {
		m.tracks[t.ID] = t
	}
	return m
}

// Register adds or replaces a track definition.
func (m *Mixer) Register(t Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks[t.ID] = t
}

// EffectiveGain composes master x category x track for one track, or 0 when
// muted or unknown.
func (m *Mixer) EffectiveGain(trackID string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.effectiveGainLocked(trackID)
}

func (m *Mixer) effectiveGainLocked(trackID string) float64 {
	t, ok := m.tracks[trackID]
	if !ok || m.muted {
		return 0
	}
	return m.master * m.category[t.Category] * t.Gain
}

// Play starts a track at its composed gain with an optional fade-in.
func (m *Mixer) Play(trackID string, fadeIn time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tracks[trackID]
	if !ok {
		return fmt.Errorf("unknown track %q", trackID)
	}
	if err := m.out.Play(t, m.effectiveGainLocked(trackID), fadeIn); err != nil {
		return fmt.Errorf("play %s: %w", trackID, err)
	}
	m.playing[trackID] = true
	return nil
}

// Stop halts a track with an optional fade-out. Stopping a track that is not
// playing is a no-op.
func (m *Mixer) Stop(trackID string, fadeOut time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.playing[trackID] {
		return nil
	}
	delete(m.playing, trackID)
	if err := m.out.Stop(trackID, fadeOut); err != nil {
		return fmt.Errorf("stop %s: %w", trackID, err)
	}
	return nil
}

// StopAll halts every playing track, collecting any per-track failures.
func (m *Mixer) StopAll(fadeOut time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs error
	for id := range m.playing {
		delete(m.playing, id)
		if err := m.out.Stop(id, fadeOut); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("stop %s: %w", id, err))
		}
	}
	return errs
}

// SetMasterVolume adjusts the master bus and reapplies gains.
func (m *Mixer) SetMasterVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.master = clamp01(v)
	m.reapplyLocked()
}

// SetCategoryVolume adjusts one category bus and reapplies gains.
func (m *Mixer) SetCategoryVolume(c Category, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.category[c] = clamp01(v)
	m.reapplyLocked()
}

// SetTrackGain adjusts one track's base gain and reapplies it if playing.
func (m *Mixer) SetTrackGain(trackID string, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[trackID]
	if !ok {
		return
	}
	t.Gain = clamp01(v)
	m.tracks[trackID] = t
	m.reapplyLocked()
}

// SetMuted silences (or restores) every bus at once.
func (m *Mixer) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
	m.reapplyLocked()
}

// Muted reports the mute state.
func (m *Mixer) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// Playing reports whether a track is currently playing.
func (m *Mixer) Playing(trackID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing[trackID]
}

func (m *Mixer) reapplyLocked() {
	for id := range m.playing {
		if err := m.out.SetGain(id, m.effectiveGainLocked(id)); err != nil {
			m.log.Warn("reapply gain failed", zap.String("track", id), zap.Error(err))
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
