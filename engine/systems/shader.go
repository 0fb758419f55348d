package systems

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/bacon/engine/assets"
	"github.com/spaghettifunk/bacon/engine/assets/loaders"
	"github.com/spaghettifunk/bacon/engine/containers"
	"github.com/spaghettifunk/bacon/engine/core"
)

type Shader struct {
	Name           string
	VertexSource   string
	FragmentSource string
}

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of shaders held in the system. */
	MaxShaderCount int
}

// ShaderSystem keeps shader programs selectable by handle. The software
// renderer does not execute them.
type ShaderSystem struct {
	// This system's configuration.
	Config *ShaderSystemConfig
	// A lookup table for shader name->handle
	Lookup map[string]containers.Handle
	// A collection of created shaders.
	shaders *containers.HandleArray[Shader]
	// sub systems
	assetManager *assets.AssetManager
}

func NewShaderSystem(config *ShaderSystemConfig, am *assets.AssetManager) (*ShaderSystem, error) {
	if config.MaxShaderCount <= 0 {
		err := fmt.Errorf("NewShaderSystem - config.MaxShaderCount must be greater than 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &ShaderSystem{
		Config:       config,
		Lookup:       make(map[string]containers.Handle),
		shaders:      containers.NewHandleArray[Shader](8),
		assetManager: am,
	}, nil
}

/**
 * @brief Shuts down the shader system, destroying any shaders still in existence.
 */
func (ss *ShaderSystem) Shutdown() error {
	for _, h := range ss.shaders.Handles() {
		if err := ss.DestroyShader(h); err != nil {
			return err
		}
	}
	return nil
}

// CreateShader records a program from GLSL sources. Both stages must be
// non-empty.
func (ss *ShaderSystem) CreateShader(name, vertexSource, fragmentSource string) (containers.Handle, error) {
	if strings.TrimSpace(vertexSource) == "" || strings.TrimSpace(fragmentSource) == "" {
		return containers.InvalidHandle, fmt.Errorf("create shader %q: empty stage: %w", name, core.ErrResourceCreation)
	}
	if ss.shaders.Len() >= ss.Config.MaxShaderCount {
		return containers.InvalidHandle, fmt.Errorf("shader limit of %d reached: %w", ss.Config.MaxShaderCount, core.ErrResourceCreation)
	}
	h, err := ss.shaders.Alloc(Shader{Name: name, VertexSource: vertexSource, FragmentSource: fragmentSource})
	if err != nil {
		return containers.InvalidHandle, fmt.Errorf("%v: %w", err, core.ErrResourceCreation)
	}
	if name != "" {
		ss.Lookup[name] = h
	}
	core.LogDebug("created shader %q as %v", name, h)
	return h, nil
}

// LoadShader reads both stages from files.
func (ss *ShaderSystem) LoadShader(vertexPath, fragmentPath string) (containers.Handle, error) {
	res, err := ss.assetManager.LoadAsset(vertexPath, loaders.ResourceTypeShader, &loaders.ShaderParams{FragmentPath: ss.assetManager.Resolve(fragmentPath)})
	if err != nil {
		return containers.InvalidHandle, fmt.Errorf("load shader %s: %v: %w", vertexPath, err, core.ErrResourceCreation)
	}
	src := res.Data.(*loaders.ShaderSource)
	return ss.CreateShader(res.Name, src.Vertex, src.Fragment)
}

func (ss *ShaderSystem) DestroyShader(h containers.Handle) error {
	s, err := ss.shaders.Free(h)
	if err != nil {
		return fmt.Errorf("destroy shader %v: %w", h, err)
	}
	if ss.Lookup[s.Name] == h {
		delete(ss.Lookup, s.Name)
	}
	return nil
}

func (ss *ShaderSystem) Get(h containers.Handle) (*Shader, error) {
	s, err := ss.shaders.Get(h)
	if err != nil {
		return nil, fmt.Errorf("shader %v: %w", h, err)
	}
	return s, nil
}

func (ss *ShaderSystem) Valid(h containers.Handle) bool {
	return ss.shaders.Valid(h)
}
