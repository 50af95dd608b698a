package mosaic

import (
	"encoding/json"
	"fmt"
	"os"
)

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates that required fields are present for the viz type.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	if l.VizType == "" {
		l.VizType = VizTypeMosaic
	}
	if l.Frame.Width <= 0 || l.Frame.Height <= 0 {
		return Layout{}, fmt.Errorf("layout must have a positive frame size")
	}
	if l.IsTree() && l.DOT == "" {
		return Layout{}, fmt.Errorf("tree layout must contain DOT string")
	}

	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}

// MarshalDefinition serializes a Definition to JSON. The output is stable
// for equal definitions and is used to derive cache keys.
func MarshalDefinition(d Definition) ([]byte, error) {
	return json.Marshal(d)
}
