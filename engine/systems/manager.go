package systems

import (
	"runtime"

	"github.com/spaghettifunk/bacon/engine/assets"
)

type SystemManager struct {
	JobSystem    *JobSystem
	ImageSystem  *ImageSystem
	FontSystem   *FontSystem
	ShaderSystem *ShaderSystem
}

func NewSystemManager(am *assets.AssetManager) (*SystemManager, error) {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	js, err := NewJobSystem(workers, 64)
	if err != nil {
		return nil, err
	}
	is, err := NewImageSystem(&ImageSystemConfig{
		MaxImageCount: 65536,
	}, am, js)
	if err != nil {
		return nil, err
	}
	fs, err := NewFontSystem(&FontSystemConfig{
		MaxFontCount: 256,
	}, is, am)
	if err != nil {
		return nil, err
	}
	ssys, err := NewShaderSystem(&ShaderSystemConfig{
		MaxShaderCount: 256,
	}, am)
	if err != nil {
		return nil, err
	}
	return &SystemManager{
		JobSystem:    js,
		ImageSystem:  is,
		FontSystem:   fs,
		ShaderSystem: ssys,
	}, nil
}

// Update runs on the logic thread once per tick and finishes completed jobs.
func (sm *SystemManager) Update() {
	sm.JobSystem.Update()
}

// ReleaseResources destroys every font, shader and image, in that order.
func (sm *SystemManager) ReleaseResources() error {
	if err := sm.FontSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.ShaderSystem.Shutdown(); err != nil {
		return err
	}
	return sm.ImageSystem.Shutdown()
}

// Shutdown stops the worker pool.
func (sm *SystemManager) Shutdown() error {
	return sm.JobSystem.Shutdown()
}
