package audioinfo

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

type AudioDevice struct {
	Name   string  `json:"name"`
	Volume float64 `json:"volume"` // 0..1
	Level  int     `json:"level"`  // percent 0-100
	Muted  bool    `json:"muted"`
}

type AudioInfo struct {
	Output AudioDevice `json:"output"`
	Input  AudioDevice `json:"input"`
}

// channelVolume averages the channels and clamps to 0..1. Boosted volumes
// above 100% read as 1.
func channelVolume(cv proto.ChannelVolumes) float64 {
	if len(cv) == 0 {
		return 1
	}
	var sum float64
	for _, v := range cv {
		sum += float64(v) / float64(proto.VolumeNorm)
	}
	return math.Min(1, math.Max(0, sum/float64(len(cv))))
}

func newDevice(name string, cv proto.ChannelVolumes, mute bool) AudioDevice {
	vol := channelVolume(cv)
	return AudioDevice{
		Name:   name,
		Volume: vol,
		Level:  int(vol*100 + 0.5),
		Muted:  mute,
	}
}

func getDeviceInfo(c *pulse.Client, isSink bool) (AudioDevice, error) {
	if isSink {
		s, err := c.DefaultSink()
		if err != nil {
			return AudioDevice{}, fmt.Errorf("failed to get default sink: %w", err)
		}
		var reply proto.GetSinkInfoReply
		req := proto.GetSinkInfo{SinkIndex: proto.Undefined, SinkName: s.ID()}
		if err := c.RawRequest(&req, &reply); err != nil {
			return AudioDevice{}, fmt.Errorf("failed to request sink info: %w", err)
		}
		return newDevice(s.Name(), reply.ChannelVolumes, reply.Mute), nil
	}

	src, err := c.DefaultSource()
	if err != nil {
		return AudioDevice{}, fmt.Errorf("failed to get default source: %w", err)
	}
	var reply proto.GetSourceInfoReply
	req := proto.GetSourceInfo{SourceIndex: proto.Undefined, SourceName: src.ID()}
	if err := c.RawRequest(&req, &reply); err != nil {
		return AudioDevice{}, fmt.Errorf("failed to request source info: %w", err)
	}
	return newDevice(src.Name(), reply.ChannelVolumes, reply.Mute), nil
}

// DeviceVolume returns the volume of the default sink (isSink) or source
// in 0..1. A muted device reads as 0.
func DeviceVolume(isSink bool) (float64, error) {
	c, err := pulse.NewClient()
	if err != nil {
		return 0, fmt.Errorf("failed to create pulse client: %w", err)
	}
	defer c.Close()

	dev, err := getDeviceInfo(c, isSink)
	if err != nil {
		return 0, err
	}
	if dev.Muted {
		return 0, nil
	}
	return dev.Volume, nil
}

func GetAudioInfo() (*AudioInfo, error) {
	c, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create pulse client: %w", err)
	}
	defer c.Close()

	out, err := getDeviceInfo(c, true)
	if err != nil {
		return nil, err
	}
	in, err := getDeviceInfo(c, false)
	if err != nil {
		return nil, err
	}
	return &AudioInfo{Output: out, Input: in}, nil
}

func GetAudioInfoJSON() ([]byte, error) {
	info, err := GetAudioInfo()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(info, "", "  ")
}
