package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/clipshuffle/clipshuffle/color"
	"github.com/clipshuffle/clipshuffle/constant"
	"github.com/clipshuffle/clipshuffle/key"
	"github.com/clipshuffle/clipshuffle/style"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// descriptionWidth is the column at which field descriptions wrap in Pretty output.
const descriptionWidth = 72

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON includes both the current and the default value.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.LibraryPath, constant.DefaultLibraryPath, "Directory scanned recursively for clips when no argument is given")
	register(key.LibraryExtensions, constant.VideoExtensions, "File extensions treated as clips, matched case-insensitively")
	register(key.RotationIntervalMs, int(constant.RotationInterval.Milliseconds()), "Milliseconds between forced clip switches")
	register(key.RotationSafetyMargin, constant.SafetyMargin, "Seconds of playback guaranteed to remain after a random start offset.\nClips not longer than this always start from the beginning")
	register(key.RotationFreezeOnPause, true, "Suspend the rotation countdown while paused and resume it with the remaining time.\nWhen false the countdown keeps running and ticks while paused are ignored")
	register(key.RotationSeed, 0, "Seed for clip and offset selection. 0 seeds from the clock")
	register(key.PlayerBinary, "mpv", "mpv executable used as the playback backend")
	register(key.PlayerFullscreen, true, "Start mpv fullscreen")
	register(key.PlayerMute, false, "Start mpv muted")
	register(key.PlayerExtraArgs, []string{}, "Additional arguments passed verbatim to mpv")
	register(key.ProbeBackend, "ffprobe", "Duration probe to use.\nAvailable options are: ffprobe, discoverer")
	register(key.ProbeTimeout, 10, "Seconds a single duration probe may take")
	register(key.ProbePrewarm, false, "Probe every clip's duration before playback starts")
	register(key.ProbeWorkers, 4, "Parallel probes used by prewarm")
	register(key.CachePersist, false, "Remember probed durations between runs")
	register(key.LogsWrite, true, "Write logs next to the clip library")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, nerd, plain, squares")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"blue":     style.Fg(color.Blue),
	"purple":   style.Fg(color.Purple),
	"wrap":     func(s string) string { return wordwrap.String(s, descriptionWidth) },
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint (wrap .Description) }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
