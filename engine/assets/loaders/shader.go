package loaders

import (
	"fmt"
	"os"
	"strings"
)

// ShaderSource is the GLSL text of one shader program.
type ShaderSource struct {
	Vertex   string
	Fragment string
}

// ShaderParams names the fragment stage file. The vertex stage is the path
// passed to Load.
type ShaderParams struct {
	FragmentPath string
}

type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string, params interface{}) (*Resource, error) {
	p, ok := params.(*ShaderParams)
	if !ok || p.FragmentPath == "" {
		return nil, fmt.Errorf("shader %s: missing fragment stage", path)
	}
	vs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fs, err := os.ReadFile(p.FragmentPath)
	if err != nil {
		return nil, err
	}
	src := &ShaderSource{Vertex: string(vs), Fragment: string(fs)}
	if strings.TrimSpace(src.Vertex) == "" || strings.TrimSpace(src.Fragment) == "" {
		return nil, fmt.Errorf("shader %s: empty stage", path)
	}
	return &Resource{
		Name:     path,
		FullPath: path,
		DataSize: uint64(len(vs) + len(fs)),
		Data:     src,
	}, nil
}

func (sl *ShaderLoader) Unload(resource *Resource) error {
	resource.Data = nil
	return nil
}
