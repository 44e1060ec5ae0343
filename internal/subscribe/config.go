package subscribe

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ConfigEvents reports writes to v's config file. v must have a config file
// set before the call.
func ConfigEvents(v *viper.Viper, stop <-chan struct{}) <-chan fsnotify.Event {
	events := make(chan fsnotify.Event, 1)

	v.OnConfigChange(func(e fsnotify.Event) {
		select {
		case <-stop:
		case events <- e:
		default:
		}
	})
	v.WatchConfig()

	return events
}
