package scene

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"
)

// Marshal encodes a descriptor as YAML.
func Marshal(d *Descriptor) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDescriptor writes a descriptor to a YAML file
func WriteDescriptor(d *Descriptor, path string) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
