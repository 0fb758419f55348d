package audio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/bacon/engine/assets"
	"github.com/spaghettifunk/bacon/engine/assets/loaders"
	"github.com/spaghettifunk/bacon/engine/containers"
	"github.com/spaghettifunk/bacon/engine/core"
)

// SoundFlags combine the stream bit with a format selector in bits 16..17.
type SoundFlags int32

const (
	SOUND_FLAG_STREAM SoundFlags = 1 << 0

	SOUND_FLAG_FORMAT_WAV  = SoundFlags(loaders.SOUND_FORMAT_WAV)
	SOUND_FLAG_FORMAT_OGG  = SoundFlags(loaders.SOUND_FORMAT_OGG)
	SOUND_FLAG_FORMAT_MASK = SoundFlags(loaders.SOUND_FORMAT_MASK)
)

func (f SoundFlags) Format() loaders.SoundFormat {
	return loaders.SoundFormat(f & SOUND_FLAG_FORMAT_MASK)
}

func (f SoundFlags) String() string {
	s := f.Format().String()
	if f&SOUND_FLAG_STREAM != 0 {
		s = "stream | " + s
	}
	if rest := f &^ (SOUND_FLAG_STREAM | SOUND_FLAG_FORMAT_MASK); rest != 0 {
		s += fmt.Sprintf(" | %#x", int32(rest))
	}
	return s
}

type Sound struct {
	Name  string
	Path  string
	Flags SoundFlags
	// nil until the first voice is created for a streamed sound.
	pcm *loaders.PCM
}

type SoundTableConfig struct {
	MaxSoundCount int
}

// SoundTable owns sound handles. It is only touched from the logic thread;
// voices keep their own pointer to the decoded samples.
type SoundTable struct {
	Config       *SoundTableConfig
	sounds       *containers.HandleArray[Sound]
	assetManager *assets.AssetManager
}

func NewSoundTable(config *SoundTableConfig, am *assets.AssetManager) (*SoundTable, error) {
	if config.MaxSoundCount <= 0 {
		return nil, fmt.Errorf("func NewSoundTable - config.MaxSoundCount must be > 0")
	}
	return &SoundTable{
		Config:       config,
		sounds:       containers.NewHandleArray[Sound](64),
		assetManager: am,
	}, nil
}

func (st *SoundTable) alloc(s Sound) (containers.Handle, error) {
	if st.sounds.Len() >= st.Config.MaxSoundCount {
		return containers.InvalidHandle, fmt.Errorf("sound limit of %d reached: %w", st.Config.MaxSoundCount, core.ErrResourceCreation)
	}
	h, err := st.sounds.Alloc(s)
	if err != nil {
		return containers.InvalidHandle, fmt.Errorf("%v: %w", err, core.ErrResourceCreation)
	}
	return h, nil
}

// LoadSound decodes a sound file. Streamed sounds only check that the file
// exists and decode when the first voice needs them.
func (st *SoundTable) LoadSound(path string, flags SoundFlags) (containers.Handle, error) {
	s := Sound{
		Name:  filepath.Base(path),
		Path:  st.assetManager.Resolve(path),
		Flags: flags,
	}
	format := flags.Format()
	if format == loaders.SOUND_FORMAT_DETECT {
		format = loaders.DetectSoundFormat(path)
	}
	if format == loaders.SOUND_FORMAT_DETECT {
		return containers.InvalidHandle, fmt.Errorf("load sound %s: %w: %w", path, loaders.ErrUnknownSoundFormat, core.ErrResourceCreation)
	}
	s.Flags = flags&^SOUND_FLAG_FORMAT_MASK | SoundFlags(format)

	if flags&SOUND_FLAG_STREAM != 0 {
		if _, err := os.Stat(s.Path); err != nil {
			return containers.InvalidHandle, fmt.Errorf("load sound %s: %v: %w", path, err, core.ErrResourceCreation)
		}
	} else {
		pcm, err := st.decode(&s)
		if err != nil {
			return containers.InvalidHandle, err
		}
		s.pcm = pcm
	}

	h, err := st.alloc(s)
	if err != nil {
		return h, err
	}
	core.LogDebug("loaded sound %s (%v) as %v", path, s.Flags, h)
	return h, nil
}

// AddSound registers already decoded samples.
func (st *SoundTable) AddSound(name string, pcm *loaders.PCM) (containers.Handle, error) {
	if pcm == nil || pcm.Frames() == 0 || pcm.SampleRate <= 0 {
		return containers.InvalidHandle, fmt.Errorf("add sound %s: no samples: %w", name, core.ErrResourceCreation)
	}
	return st.alloc(Sound{Name: name, pcm: pcm})
}

func (st *SoundTable) decode(s *Sound) (*loaders.PCM, error) {
	params := &loaders.SoundParams{Format: s.Flags.Format()}
	res, err := st.assetManager.LoadAsset(s.Path, loaders.ResourceTypeSound, params)
	if err != nil {
		return nil, fmt.Errorf("load sound %s: %v: %w", s.Path, err, core.ErrResourceCreation)
	}
	pcm := res.Data.(*loaders.PCM)
	if pcm.Frames() == 0 {
		return nil, fmt.Errorf("load sound %s: no samples: %w", s.Path, core.ErrResourceCreation)
	}
	return pcm, nil
}

// UnloadSound invalidates the handle. The samples stay alive until the last
// voice playing them is destroyed.
func (st *SoundTable) UnloadSound(h containers.Handle) error {
	_, freed, err := st.sounds.Retire(h)
	if err != nil {
		return fmt.Errorf("unload sound %v: %w", h, err)
	}
	if !freed {
		core.LogDebug("sound %v unloaded, release deferred until %d voice(s) finish", h, st.sounds.Refs(h))
	}
	return nil
}

func (st *SoundTable) Get(h containers.Handle) (*Sound, error) {
	s, err := st.sounds.Get(h)
	if err != nil {
		return nil, fmt.Errorf("sound %v: %w", h, err)
	}
	return s, nil
}

// Frames returns the duration in sample frames, decoding a streamed sound
// if needed.
func (st *SoundTable) Frames(h containers.Handle) (int, error) {
	s, err := st.Get(h)
	if err != nil {
		return 0, err
	}
	if err := st.ensureDecoded(s); err != nil {
		return 0, err
	}
	return s.pcm.Frames(), nil
}

func (st *SoundTable) ensureDecoded(s *Sound) error {
	if s.pcm != nil {
		return nil
	}
	pcm, err := st.decode(s)
	if err != nil {
		return err
	}
	s.pcm = pcm
	return nil
}

// acquire takes a reference for a new voice and returns its samples.
func (st *SoundTable) acquire(h containers.Handle) (*loaders.PCM, error) {
	s, err := st.Get(h)
	if err != nil {
		return nil, err
	}
	if err := st.ensureDecoded(s); err != nil {
		return nil, err
	}
	if err := st.sounds.Retain(h); err != nil {
		return nil, fmt.Errorf("sound %v: %w", h, err)
	}
	return s.pcm, nil
}

// release drops a voice reference.
func (st *SoundTable) release(h containers.Handle) {
	s, freed, err := st.sounds.Release(h)
	if err != nil {
		core.LogWarn("release of sound %v failed: %s", h, err)
		return
	}
	if freed {
		core.LogDebug("sound %s released", s.Name)
	}
}

// Refs returns the number of references on a sound, the table's own included.
func (st *SoundTable) Refs(h containers.Handle) int {
	return st.sounds.Refs(h)
}

func (st *SoundTable) Count() int {
	return st.sounds.Len()
}

// Shutdown unloads every sound. Voices must be destroyed first.
func (st *SoundTable) Shutdown() error {
	for _, h := range st.sounds.Handles() {
		if err := st.UnloadSound(h); err != nil {
			return err
		}
	}
	if n := st.sounds.Len(); n > 0 {
		core.LogWarn("%d sound(s) still referenced at shutdown", n)
	}
	return nil
}
