package systems

import (
	"fmt"
	"image"

	"github.com/google/uuid"
	"github.com/spaghettifunk/bacon/engine/assets"
	"github.com/spaghettifunk/bacon/engine/assets/loaders"
	"github.com/spaghettifunk/bacon/engine/containers"
	"github.com/spaghettifunk/bacon/engine/core"
)

type ImageFlags int32

const (
	IMAGE_FLAG_PREMULTIPLY_ALPHA ImageFlags = 1 << 0
	IMAGE_FLAG_DISCARD_BITMAP    ImageFlags = 1 << 1
)

func (f ImageFlags) String() string {
	switch f {
	case 0:
		return "0"
	case IMAGE_FLAG_PREMULTIPLY_ALPHA:
		return "premultiply_alpha"
	case IMAGE_FLAG_DISCARD_BITMAP:
		return "discard_bitmap"
	case IMAGE_FLAG_PREMULTIPLY_ALPHA | IMAGE_FLAG_DISCARD_BITMAP:
		return "premultiply_alpha | discard_bitmap"
	}
	return fmt.Sprintf("ImageFlags(%#x)", int32(f))
}

type Image struct {
	Name string
	// Empty for images created in memory.
	Path    string
	Flags   ImageFlags
	Surface *image.NRGBA
	// Bumped every time the pixels are replaced by a reload.
	Revision uint32
}

type ImageSystemConfig struct {
	MaxImageCount int
}

// ImageSystem owns every image handle.
type ImageSystem struct {
	Config *ImageSystemConfig
	images *containers.HandleArray[Image]
	// sub systems
	assetManager *assets.AssetManager
	jobSystem    *JobSystem
	// invoked before a handle is freed
	onUnload func(containers.Handle)
}

func NewImageSystem(config *ImageSystemConfig, am *assets.AssetManager, js *JobSystem) (*ImageSystem, error) {
	if config.MaxImageCount <= 0 {
		return nil, fmt.Errorf("func NewImageSystem - config.MaxImageCount must be > 0")
	}
	return &ImageSystem{
		Config:       config,
		images:       containers.NewHandleArray[Image](64),
		assetManager: am,
		jobSystem:    js,
	}, nil
}

// OnUnload registers a hook run before an image is destroyed.
func (is *ImageSystem) OnUnload(fn func(containers.Handle)) {
	is.onUnload = fn
}

func (is *ImageSystem) Shutdown() error {
	for _, h := range is.images.Handles() {
		if _, err := is.images.Free(h); err != nil {
			return err
		}
	}
	return nil
}

func (is *ImageSystem) alloc(img Image) (containers.Handle, error) {
	if is.images.Len() >= is.Config.MaxImageCount {
		return containers.InvalidHandle, fmt.Errorf("image limit of %d reached: %w", is.Config.MaxImageCount, core.ErrResourceCreation)
	}
	h, err := is.images.Alloc(img)
	if err != nil {
		return containers.InvalidHandle, fmt.Errorf("%v: %w", err, core.ErrResourceCreation)
	}
	return h, nil
}

// CreateImage allocates a transparent image, usable as a frame buffer.
func (is *ImageSystem) CreateImage(width, height int) (containers.Handle, error) {
	if width <= 0 || height <= 0 {
		return containers.InvalidHandle, fmt.Errorf("create image %dx%d: %w", width, height, core.ErrResourceCreation)
	}
	h, err := is.alloc(Image{
		Name:    "image-" + uuid.NewString(),
		Surface: image.NewNRGBA(image.Rect(0, 0, width, height)),
	})
	if err != nil {
		return h, err
	}
	core.LogDebug("created image %v (%dx%d)", h, width, height)
	return h, nil
}

// AdoptImage registers an existing surface, such as a rendered glyph.
func (is *ImageSystem) AdoptImage(name string, surface *image.NRGBA) (containers.Handle, error) {
	if surface == nil || surface.Rect.Empty() {
		return containers.InvalidHandle, fmt.Errorf("adopt empty image: %w", core.ErrResourceCreation)
	}
	if name == "" {
		name = "image-" + uuid.NewString()
	}
	return is.alloc(Image{Name: name, Surface: surface})
}

// LoadImage decodes an image file.
func (is *ImageSystem) LoadImage(path string, flags ImageFlags) (containers.Handle, error) {
	surface, err := is.decode(path, flags)
	if err != nil {
		return containers.InvalidHandle, err
	}
	if flags&IMAGE_FLAG_DISCARD_BITMAP != 0 {
		core.LogDebug("image %s: discard_bitmap ignored, the software renderer samples from memory", path)
	}
	h, err := is.alloc(Image{
		Name:    path,
		Path:    is.assetManager.Resolve(path),
		Flags:   flags,
		Surface: surface,
	})
	if err != nil {
		return h, err
	}
	core.LogDebug("loaded image %s as %v", path, h)
	return h, nil
}

func (is *ImageSystem) decode(path string, flags ImageFlags) (*image.NRGBA, error) {
	params := &loaders.ImageParams{PremultiplyAlpha: flags&IMAGE_FLAG_PREMULTIPLY_ALPHA != 0}
	res, err := is.assetManager.LoadAsset(path, loaders.ResourceTypeImage, params)
	if err != nil {
		return nil, fmt.Errorf("load image %s: %v: %w", path, err, core.ErrResourceCreation)
	}
	return res.Data.(*image.NRGBA), nil
}

func (is *ImageSystem) UnloadImage(h containers.Handle) error {
	if !is.images.Valid(h) {
		return fmt.Errorf("unload image %v: %w", h, core.ErrInvalidHandle)
	}
	if is.onUnload != nil {
		is.onUnload(h)
	}
	_, err := is.images.Free(h)
	return err
}

func (is *ImageSystem) Get(h containers.Handle) (*Image, error) {
	img, err := is.images.Get(h)
	if err != nil {
		return nil, fmt.Errorf("image %v: %w", h, err)
	}
	return img, nil
}

// ImageSurface implements renderer.ImageSource.
func (is *ImageSystem) ImageSurface(h containers.Handle) (*image.NRGBA, error) {
	img, err := is.Get(h)
	if err != nil {
		return nil, err
	}
	return img.Surface, nil
}

func (is *ImageSystem) ImageSize(h containers.Handle) (int, int, error) {
	img, err := is.Get(h)
	if err != nil {
		return 0, 0, err
	}
	return img.Surface.Rect.Dx(), img.Surface.Rect.Dy(), nil
}

func (is *ImageSystem) Count() int {
	return is.images.Len()
}

// Reload decodes every image loaded from path on the job system and swaps
// the new pixels into the same handles once the job completes.
func (is *ImageSystem) Reload(path string) int {
	queued := 0
	is.images.Each(func(h containers.Handle, img *Image) {
		if img.Path != path {
			return
		}
		flags := img.Flags
		err := is.jobSystem.Submit(JobTask{
			Name: "reload " + path,
			OnStart: func() (interface{}, error) {
				return is.decode(path, flags)
			},
			OnComplete: func(result interface{}) {
				if err := is.Replace(h, result.(*image.NRGBA)); err != nil {
					core.LogDebug("reloaded image %s dropped: %s", path, err)
				}
			},
			OnFailure: func(err error) {
				core.LogWarn("hot reload of %s failed: %s", path, err)
			},
		})
		if err != nil {
			core.LogWarn("hot reload of %s not queued: %s", path, err)
			return
		}
		queued++
	})
	return queued
}

// Replace swaps the pixels of a live image.
func (is *ImageSystem) Replace(h containers.Handle, surface *image.NRGBA) error {
	img, err := is.Get(h)
	if err != nil {
		return err
	}
	img.Surface = surface
	img.Revision++
	core.LogInfo("image %s reloaded (%dx%d)", img.Name, surface.Rect.Dx(), surface.Rect.Dy())
	return nil
}
