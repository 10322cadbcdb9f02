// Package instanceio reads and writes star observation scheduling instances
// and schedule certificates.
package instanceio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kilianp07/starobs/core/multinight"
)

// Instance formats.
const (
	FormatCatusse2016         = "catusse2016"
	FormatCatusse2016Flexible = "catusse2016_flexible"
	FormatSingleNight         = "singlenight"
	FormatJSON                = "json"
)

// Formats lists the formats accepted by Read.
var Formats = []string{FormatCatusse2016, FormatCatusse2016Flexible, FormatSingleNight, FormatJSON}

// Read decodes a multi-night instance in the given format. Single-night
// instances become one night instances. An empty format means catusse2016.
func Read(r io.Reader, format string) (*multinight.Instance, error) {
	switch format {
	case "", FormatCatusse2016:
		return ReadCatusse2016(r)
	case FormatCatusse2016Flexible:
		return ReadCatusse2016Flexible(r)
	case FormatJSON:
		return ReadJSON(r)
	case FormatSingleNight:
		inst, err := ReadSingleNight(r)
		if err != nil {
			return nil, err
		}
		return SingleNightToMultiNight(inst)
	}
	return nil, fmt.Errorf("unknown instance format %q (known: %v)", format, Formats)
}

// ReadFile opens path and decodes it. Files ending in .json default to the
// JSON format when format is empty.
func ReadFile(path, format string) (*multinight.Instance, error) {
	if format == "" && strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	inst, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return inst, nil
}

// WriteFile writes inst as JSON to path.
func WriteFile(path string, inst *multinight.Instance) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(w, inst) })
}

// WriteCertificateFile writes the certificate of sol to path.
func WriteCertificateFile(path string, sol *multinight.Solution) error {
	return writeFile(path, func(w io.Writer) error { return WriteCertificate(w, sol) })
}

// CheckCertificateFile opens path and checks it against inst.
func CheckCertificateFile(path string, inst *multinight.Instance) (CheckResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return CheckResult{}, err
	}
	defer f.Close()
	return CheckCertificate(f, inst)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
