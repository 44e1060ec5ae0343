package displayinfo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultRoot is the kernel backlight class directory.
const DefaultRoot = "/sys/class/backlight"

type DisplayInfo struct {
	Device     string  `json:"device"`
	Level      int     `json:"level"`      // percent 0-100
	Brightness float64 `json:"brightness"` // 0..1
	Raw        int     `json:"raw"`
	Max        int     `json:"max"`
}

func readInt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(data))
	return strconv.Atoi(s)
}

// Device resolves a backlight device under root. An empty name picks the
// first device.
func Device(root, name string) (string, error) {
	if name != "" {
		if _, err := os.Stat(filepath.Join(root, name, "brightness")); err != nil {
			return "", fmt.Errorf("backlight device %s: %w", name, err)
		}
		return name, nil
	}

	paths, err := filepath.Glob(filepath.Join(root, "*"))
	if err != nil || len(paths) == 0 {
		return "", errors.New("no backlight devices found")
	}
	return filepath.Base(paths[0]), nil
}

// GetDisplayInfo reads the first backlight device.
func GetDisplayInfo() (*DisplayInfo, error) {
	return GetDisplayInfoAt(DefaultRoot, "")
}

// GetDisplayInfoAt reads the named backlight device under root.
func GetDisplayInfoAt(root, name string) (*DisplayInfo, error) {
	device, err := Device(root, name)
	if err != nil {
		return nil, err
	}

	current, err := readInt(filepath.Join(root, device, "brightness"))
	if err != nil {
		return nil, err
	}

	maxVal, err := readInt(filepath.Join(root, device, "max_brightness"))
	if err != nil {
		return nil, err
	}

	if maxVal <= 0 {
		return nil, errors.New("invalid max_brightness value")
	}

	brightness := float64(current) / float64(maxVal)
	if brightness < 0 {
		brightness = 0
	} else if brightness > 1 {
		brightness = 1
	}

	return &DisplayInfo{
		Device:     device,
		Level:      int(brightness*100 + 0.5),
		Brightness: brightness,
		Raw:        current,
		Max:        maxVal,
	}, nil
}

func GetDisplayInfoJSON() ([]byte, error) {
	info, err := GetDisplayInfo()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(info, "", "  ")
}
