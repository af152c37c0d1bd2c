package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	hdf5Signature = []byte("\x89HDF\r\n\x1a\n")
	// pickle protocol 2+ streams start with the PROTO opcode
	pickleOpcode = byte(0x80)
)

// ErrNativeArtifact is returned for model or scaler files saved in their
// training framework's binary format instead of the JSON export.
var ErrNativeArtifact = errors.New("native artifact format is not supported, export it to JSON")

func decode(content []byte, target any) error {
	if bytes.HasPrefix(content, hdf5Signature) {
		return fmt.Errorf("HDF5 file: %w", ErrNativeArtifact)
	}
	if len(content) > 1 && content[0] == pickleOpcode {
		return fmt.Errorf("pickle file: %w", ErrNativeArtifact)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("artifact is empty")
		}
		return err
	}
	return nil
}

// ParseScaler decodes and validates a scaler export (JSON or YAML).
func ParseScaler(content []byte) (*Scaler, error) {
	var scaler Scaler
	if err := decode(content, &scaler); err != nil {
		return nil, fmt.Errorf("unable to decode scaler: %w", err)
	}
	if err := scaler.validate(); err != nil {
		return nil, err
	}
	return &scaler, nil
}

// ParseNetwork decodes and validates a model export (JSON or YAML).
func ParseNetwork(content []byte) (*Network, error) {
	var network Network
	if err := decode(content, &network); err != nil {
		return nil, fmt.Errorf("unable to decode model: %w", err)
	}
	if err := network.validate(); err != nil {
		return nil, err
	}
	return &network, nil
}

// LoadScaler reads the scaler artifact at path.
func LoadScaler(path string) (*Scaler, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	scaler, err := ParseScaler(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scaler, nil
}

// LoadNetwork reads the model artifact at path.
func LoadNetwork(path string) (*Network, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	network, err := ParseNetwork(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return network, nil
}

// Load reads both artifacts and checks that the scaler output fits the model input.
func Load(modelPath, scalerPath string) (*Network, *Scaler, error) {
	scaler, err := LoadScaler(scalerPath)
	if err != nil {
		return nil, nil, err
	}
	network, err := LoadNetwork(modelPath)
	if err != nil {
		return nil, nil, err
	}
	if scaler.Features() != network.Features() {
		return nil, nil, fmt.Errorf("scaler produces %d features, model expects %d",
			scaler.Features(), network.Features())
	}
	return network, scaler, nil
}
