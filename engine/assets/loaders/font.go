package loaders

import (
	"os"

	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

type FontLoader struct{}

func (fl *FontLoader) Load(path string, params interface{}) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, name, err := ParseFont(data)
	if err != nil {
		return nil, err
	}
	return &Resource{
		Name:     name,
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     f,
	}, nil
}

func (fl *FontLoader) Unload(resource *Resource) error {
	resource.Data = nil
	return nil
}

// ParseFont reads a TrueType or OpenType font and its family name. For
// collections the first face is used.
func ParseFont(data []byte) (*opentype.Font, string, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		c, cerr := opentype.ParseCollection(data)
		if cerr != nil {
			return nil, "", err
		}
		if f, err = c.Font(0); err != nil {
			return nil, "", err
		}
	}
	name, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		name = "font"
	}
	return f, name, nil
}
