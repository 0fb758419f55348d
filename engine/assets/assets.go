package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/bacon/engine/assets/loaders"
	"github.com/spaghettifunk/bacon/engine/core"
)

var ErrClosed = errors.New("asset manager already closed")

type AssetInfo struct {
	Path       string
	Type       loaders.ResourceType
	LastLoaded time.Time
}

// AssetManager resolves asset paths, dispatches to the loader registered for
// each resource type and, when watching, reports files that changed on disk.
type AssetManager struct {
	baseDir string
	assets  map[string]AssetInfo
	loaders map[loaders.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	changed  map[string]struct{}
}

func NewAssetManager() *AssetManager {
	am := &AssetManager{
		assets:  make(map[string]AssetInfo),
		loaders: make(map[loaders.ResourceType]Loader),
		changed: make(map[string]struct{}),
	}

	// Register loaders
	am.registerLoader(loaders.ResourceTypeImage, &loaders.ImageLoader{})
	am.registerLoader(loaders.ResourceTypeFont, &loaders.FontLoader{})
	am.registerLoader(loaders.ResourceTypeBitmapFont, &loaders.BitmapFontLoader{})
	am.registerLoader(loaders.ResourceTypeSound, &loaders.SoundLoader{})
	am.registerLoader(loaders.ResourceTypeShader, &loaders.ShaderLoader{})
	return am
}

// Initialize indexes assetsDir. With watch set, the tree is also watched for
// changes until Shutdown.
func (am *AssetManager) Initialize(assetsDir string, watch bool) error {
	if assetsDir == "" {
		return nil
	}
	abs, err := filepath.Abs(assetsDir)
	if err != nil {
		return err
	}
	am.baseDir = abs
	if _, err := os.Stat(abs); err != nil {
		core.LogWarn("assets directory %s not available: %s", abs, err)
		return nil
	}

	if watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		am.fsnotify = w
		am.done = make(chan struct{})
		am.stopped = make(chan struct{})
		go am.start()
	}
	if err := am.watchRecursive(abs, false); err != nil {
		return err
	}
	core.LogInfo("Asset manager indexed %d assets in %s (watching: %t).", am.Count(), abs, watch)
	return nil
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	if am.fsnotify != nil {
		close(am.done)
		<-am.stopped
	}
	return nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType loaders.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Resolve turns a relative asset path into a path under the assets
// directory when such a file exists. Other paths are returned cleaned.
func (am *AssetManager) Resolve(path string) string {
	if filepath.IsAbs(path) || am.baseDir == "" {
		return filepath.Clean(path)
	}
	candidate := filepath.Join(am.baseDir, path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return filepath.Clean(path)
}

// LoadAsset loads a file with the loader registered for resourceType.
func (am *AssetManager) LoadAsset(path string, resourceType loaders.ResourceType, params interface{}) (*loaders.Resource, error) {
	am.mutex.RLock()
	closed := am.isClosed
	am.mutex.RUnlock()
	if closed {
		return nil, fmt.Errorf("load %s: %w", path, ErrClosed)
	}
	loader, loaderExists := am.loaders[resourceType]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %v", resourceType)
	}
	full := am.Resolve(path)
	res, err := loader.Load(full, params)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	am.assets[full] = AssetInfo{Path: full, Type: resourceType, LastLoaded: time.Now()}
	am.mutex.Unlock()
	return res, nil
}

func (am *AssetManager) UnloadAsset(resourceType loaders.ResourceType, resource *loaders.Resource) error {
	loader, ok := am.loaders[resourceType]
	if !ok || resource == nil {
		return nil
	}
	return loader.Unload(resource)
}

// Count returns the number of indexed assets.
func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

func (am *AssetManager) Lookup(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[am.Resolve(path)]
	return info, ok
}

// TakeChanged returns the files modified since the last call, in no
// particular order.
func (am *AssetManager) TakeChanged() []string {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if len(am.changed) == 0 {
		return nil
	}
	out := make([]string, 0, len(am.changed))
	for p := range am.changed {
		out = append(out, p)
	}
	am.changed = make(map[string]struct{})
	return out
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name, false); err != nil {
						core.LogWarn("failed to watch %s: %s", e.Name, err)
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if am.handleFileEvent(e.Name) {
					am.markChanged(e.Name)
				}
			}
			// Can't stat a deleted directory, so just try to remove it from the
			// watch list as well.
			if e.Op&fsnotify.Remove != 0 {
				am.removeAsset(e.Name)
				_ = am.fsnotify.Remove(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files it finds.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if am.fsnotify == nil {
				return nil
			}
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file. Reports whether the file is
// a known asset type.
func (am *AssetManager) handleFileEvent(path string) bool {
	assetType := DetermineAssetType(path)
	if assetType == loaders.ResourceTypeNone {
		return false
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	return true
}

func (am *AssetManager) markChanged(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.changed[path] = struct{}{}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	delete(am.assets, path)
	delete(am.changed, path)
}

func DetermineAssetType(path string) loaders.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return loaders.ResourceTypeImage
	case ".ttf", ".otf", ".ttc":
		return loaders.ResourceTypeFont
	case ".fnt":
		return loaders.ResourceTypeBitmapFont
	case ".wav", ".wave", ".ogg", ".oga":
		return loaders.ResourceTypeSound
	case ".vert", ".frag", ".glsl":
		return loaders.ResourceTypeShader
	default:
		return loaders.ResourceTypeNone
	}
}
