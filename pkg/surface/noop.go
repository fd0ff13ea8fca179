package surface

import (
	"sync"

	"github.com/rs/zerolog"
)

// LogAudioPlayer stands in when no native audio integration is wired; it
// records intent at debug level.
type LogAudioPlayer struct {
	logger *zerolog.Logger

	mu     sync.Mutex
	volume float64
}

func NewLogAudioPlayer(logger *zerolog.Logger) *LogAudioPlayer {
	return &LogAudioPlayer{logger: logger, volume: 1.0}
}

func (p *LogAudioPlayer) SetVolume(volume float64) {
	p.mu.Lock()
	p.volume = volume
	p.mu.Unlock()
}

func (p *LogAudioPlayer) Restart() {}

func (p *LogAudioPlayer) Play() error {
	p.mu.Lock()
	v := p.volume
	p.mu.Unlock()
	p.logger.Debug().Float64("volume", v).Msg("notification cue")
	return nil
}

// LogDesktopNotifier reports permission as granted and logs each
// notification instead of displaying it.
type LogDesktopNotifier struct {
	logger *zerolog.Logger
}

func NewLogDesktopNotifier(logger *zerolog.Logger) *LogDesktopNotifier {
	return &LogDesktopNotifier{logger: logger}
}

func (n *LogDesktopNotifier) Permission() Permission { return PermissionGranted }

func (n *LogDesktopNotifier) RequestPermission(done func(Permission)) {
	if done != nil {
		done(PermissionGranted)
	}
}

func (n *LogDesktopNotifier) Show(dn DesktopNotification) error {
	n.logger.Debug().
		Str("title", dn.Title).
		Str("tag", dn.Tag).
		Bool("require_interaction", dn.RequireInteraction).
		Msg("desktop notification")
	return nil
}

// LogNavigator logs navigation targets.
type LogNavigator struct {
	logger *zerolog.Logger
}

func NewLogNavigator(logger *zerolog.Logger) *LogNavigator {
	return &LogNavigator{logger: logger}
}

func (n *LogNavigator) Focus() {}

func (n *LogNavigator) Navigate(url string) {
	n.logger.Debug().Str("url", url).Msg("navigate")
}

// MemoryTitle is an in-process TitleSurface.
type MemoryTitle struct {
	mu    sync.Mutex
	title string
}

func NewMemoryTitle(title string) *MemoryTitle {
	return &MemoryTitle{title: title}
}

func (t *MemoryTitle) Title() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.title
}

func (t *MemoryTitle) SetTitle(title string) {
	t.mu.Lock()
	t.title = title
	t.mu.Unlock()
}
