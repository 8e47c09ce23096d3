// Package calibration measures the dense and sparse multiplication paths on
// this machine and recommends tuning values. This file implements the
// persistence of calibration profiles.
package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// CalibrationProfile stores the results of a calibration run together with
// the hardware context needed to decide whether they still apply.
type CalibrationProfile struct {
	// Hardware identification
	CPUModel  string `json:"cpu_model"`
	NumCPU    int    `json:"num_cpu"`
	GOARCH    string `json:"goarch"`
	GOOS      string `json:"goos"`
	GoVersion string `json:"go_version"`
	WordSize  int    `json:"word_size"`

	// Calibrated tuning values
	DenseRatio float64 `json:"dense_ratio"`
	Workers    int     `json:"workers"`
	Ring       string  `json:"ring"`

	// Points are the raw measurements, kept for inspection.
	Points []ProfilePoint `json:"points,omitempty"`

	// Calibration metadata
	CalibratedAt    time.Time `json:"calibrated_at"`
	CalibrationTime string    `json:"calibration_time"`

	ProfileVersion int `json:"profile_version"`
}

// ProfilePoint is the serialized form of a Point.
type ProfilePoint struct {
	Degree   int     `json:"degree"`
	Ratio    float64 `json:"ratio"`
	DenseNS  int64   `json:"dense_ns,omitempty"`
	SparseNS int64   `json:"sparse_ns"`
}

const (
	// CurrentProfileVersion is the current version of the profile format.
	CurrentProfileVersion = 1

	// DefaultProfileFileName is the default name of the profile file.
	DefaultProfileFileName = ".polycalc_calibration.json"
)

// GetDefaultProfilePath returns the profile path in the user's home
// directory, or in the current directory when there is none.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}

// NewProfile creates a CalibrationProfile describing the current hardware.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		CPUModel:       fmt.Sprintf("%s-%d-cores", runtime.GOARCH, runtime.NumCPU()),
		NumCPU:         runtime.NumCPU(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		WordSize:       32 << (^uint(0) >> 63),
		CalibratedAt:   time.Now(),
		ProfileVersion: CurrentProfileVersion,
	}
}

// SetPoints records the measurements in the profile.
func (p *CalibrationProfile) SetPoints(points []Point) {
	p.Points = p.Points[:0]
	for _, pt := range points {
		pp := ProfilePoint{Degree: pt.Degree, Ratio: pt.Ratio, SparseNS: pt.Sparse.Nanoseconds()}
		if pt.DenseErr == nil {
			pp.DenseNS = pt.Dense.Nanoseconds()
		}
		p.Points = append(p.Points, pp)
	}
}

// LoadProfile loads a calibration profile from path, or from the default
// path when path is empty.
func LoadProfile(path string) (*CalibrationProfile, error) {
	if path == "" {
		path = GetDefaultProfilePath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile CalibrationProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &profile, nil
}

// SaveProfile writes the profile to path, or to the default path when path
// is empty.
func (p *CalibrationProfile) SaveProfile(path string) error {
	if path == "" {
		path = GetDefaultProfilePath()
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

// IsValid reports whether the profile was produced by this profile version
// on hardware like the current one, and holds usable values.
func (p *CalibrationProfile) IsValid() bool {
	if p == nil {
		return false
	}
	if p.ProfileVersion != CurrentProfileVersion {
		return false
	}
	if p.NumCPU != runtime.NumCPU() || p.GOARCH != runtime.GOARCH {
		return false
	}
	if p.WordSize != 32<<(^uint(0)>>63) {
		return false
	}
	return p.DenseRatio > 0 && p.Workers > 0
}

// IsStale reports whether the profile is older than maxAge.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

// String returns a human-readable summary of the profile.
func (p *CalibrationProfile) String() string {
	if p == nil {
		return "<nil profile>"
	}
	return fmt.Sprintf("CalibrationProfile{CPU: %s, Ring: %s, DenseRatio: %.1f, Workers: %d, Points: %d, Calibrated: %s}",
		p.CPUModel, p.Ring, p.DenseRatio, p.Workers, len(p.Points), p.CalibratedAt.Format(time.RFC3339))
}

// LoadOrCreateProfile loads the profile at path. It returns a fresh profile
// and false when the file is missing, unreadable or made on other hardware.
func LoadOrCreateProfile(path string) (*CalibrationProfile, bool) {
	profile, err := LoadProfile(path)
	if err != nil || !profile.IsValid() {
		return NewProfile(), false
	}
	return profile, true
}
