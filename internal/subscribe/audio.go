package subscribe

import (
	"log/slog"
	"math"

	"github.com/jfreymuth/pulse/proto"
)

// AudioEvents reports volume changes of the default sink until stop is
// closed. The channel is closed when the server connection goes away.
func AudioEvents(stop <-chan struct{}) <-chan AudioEvent {
	out := make(chan AudioEvent, 16)

	client, conn, err := proto.Connect("")
	if err != nil {
		slog.Warn("failed to connect to pulse server", "err", err)
		close(out)
		return out
	}

	go func() {
		<-stop
		conn.Close()
	}()

	go func() {
		defer close(out)
		defer conn.Close()
		ch := make(chan struct{}, 1)

		client.Callback = func(val any) {
			ev, ok := val.(*proto.SubscribeEvent)
			if !ok || ev.Event.GetType() != proto.EventChange {
				return
			}
			switch ev.Event.GetFacility() {
			case proto.EventSink, proto.EventServer:
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}

		if err := client.Request(&proto.SetClientName{}, nil); err != nil {
			slog.Warn("pulse SetClientName failed", "err", err)
			return
		}

		mask := proto.SubscriptionMaskSink | proto.SubscriptionMaskServer
		if err := client.Request(&proto.Subscribe{Mask: mask}, nil); err != nil {
			slog.Warn("pulse Subscribe failed", "err", err)
			return
		}

		var last *AudioEvent
		for {
			select {
			case <-stop:
				return
			case <-ch:
			}

			// The default sink may have changed with a server event.
			serverInfo := proto.GetServerInfoReply{}
			if err := client.Request(&proto.GetServerInfo{}, &serverInfo); err != nil {
				slog.Warn("pulse GetServerInfo failed", "err", err)
				return
			}

			repl := proto.GetSinkInfoReply{}
			err := client.Request(&proto.GetSinkInfo{SinkIndex: proto.Undefined, SinkName: serverInfo.DefaultSinkName}, &repl)
			if err != nil {
				slog.Debug("pulse GetSinkInfo failed", "err", err)
				continue
			}

			ev := AudioEvent{
				Sink:   serverInfo.DefaultSinkName,
				Volume: sinkVolume(repl.ChannelVolumes),
				Muted:  repl.Mute,
			}
			if last != nil && *last == ev {
				continue
			}
			last = &ev

			select {
			case out <- ev:
			default:
			}
		}
	}()

	return out
}

func sinkVolume(cv proto.ChannelVolumes) float64 {
	if len(cv) == 0 {
		return 0
	}
	var acc int64
	for _, vol := range cv {
		acc += int64(vol)
	}
	v := float64(acc) / float64(len(cv)) / float64(proto.VolumeNorm)
	return math.Min(1, math.Max(0, v))
}
