package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tactusaudio/tactus/internal/config"
	"github.com/tactusaudio/tactus/internal/equalizer"
	"github.com/tactusaudio/tactus/internal/logger"
	"github.com/tactusaudio/tactus/internal/playback"
	"github.com/tactusaudio/tactus/internal/runloop"
	"github.com/tactusaudio/tactus/internal/tags"
	"github.com/tactusaudio/tactus/internal/vlc"
	"github.com/tactusaudio/tactus/internal/volume"
)

// fileSong is one playable item built from a command line argument.
type fileSong struct {
	uri  string
	gain float64
}

func (s fileSong) URI() string         { return s.uri }
func (s fileSong) ReplayGain() float64 { return s.gain }

// listSource plays the arguments in order, once.
type listSource struct {
	songs []playback.Song
	index int
}

func (s *listSource) Current() playback.Song {
	if s.index >= len(s.songs) {
		return nil
	}
	return s.songs[s.index]
}

func (s *listSource) NextEnded() {
	s.index++
}

// printListener reports playback notifications on stdout.
type printListener struct{}

func (printListener) Paused()   { fmt.Println("paused") }
func (printListener) Unpaused() { fmt.Println("unpaused") }

func (printListener) SongStarted(song playback.Song) {
	fmt.Printf("playing %s\n", song.URI())
}

func (printListener) SongEnded(song playback.Song, stopped bool) {
	if stopped {
		fmt.Printf("stopped %s\n", song.URI())
	} else {
		fmt.Printf("finished %s\n", song.URI())
	}
}

func (printListener) Seeked(song playback.Song, positionMs int64) {
	fmt.Printf("seeked %s to %dms\n", song.URI(), positionMs)
}

func buildSongs(cfg *config.Config, uris []string) []playback.Song {
	log := logger.WithComponent("tags")
	songs := make([]playback.Song, 0, len(uris))
	for _, uri := range uris {
		gain := 1.0
		if cfg.Volume.ReplayGain && !strings.Contains(uri, "://") {
			rg, err := tags.ReadReplayGain(uri)
			if err != nil {
				log.Warn("replaygain read failed", "path", uri, "error", err)
			} else {
				gain = rg.Scale()
			}
		}
		songs = append(songs, fileSong{uri: uri, gain: gain})
	}
	return songs
}

// runCommands reads commands from stdin and bridges them onto the control
// goroutine. It runs on its own goroutine; every controller access goes
// through the loop.
func runCommands(loop *runloop.Loop, ctl *playback.Controller, eq *equalizer.Manager, src *listSource) {
	log := logger.WithComponent("cli")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "play":
			err = loop.Call(runloop.PriorityNormal, 0, func() {
				song := src.Current()
				if song == nil {
					fmt.Println("nothing to play")
					return
				}
				if playErr := ctl.Play(song, playback.NoSeek); playErr != nil {
					fmt.Printf("play failed: %v\n", playErr)
					return
				}
				ctl.Pause(false)
			})
		case "pause":
			err = loop.Call(runloop.PriorityNormal, 0, func() { ctl.Pause(true) })
		case "resume":
			err = loop.Call(runloop.PriorityNormal, 0, func() { ctl.Pause(false) })
		case "stop":
			err = loop.Call(runloop.PriorityNormal, 0, func() { ctl.Stop() })
		case "seek":
			if len(fields) < 2 {
				fmt.Println("usage: seek <ms>")
				continue
			}
			ms, parseErr := strconv.ParseInt(fields[1], 10, 64)
			if parseErr != nil {
				fmt.Printf("bad position: %v\n", parseErr)
				continue
			}
			err = loop.Call(runloop.PriorityNormal, 0, func() { ctl.Seek(ms) })
		case "pos":
			var pos int64
			pos, err = runloop.Invoke(loop, runloop.PriorityNormal, 0, ctl.PositionMs)
			if err == nil {
				fmt.Printf("%dms\n", pos)
			}
		case "vol":
			if len(fields) < 2 {
				var v float64
				v, err = runloop.Invoke(loop, runloop.PriorityNormal, 0, ctl.Volume)
				if err == nil {
					fmt.Printf("%.2f\n", v)
				}
				continue
			}
			level, parseErr := strconv.ParseFloat(fields[1], 64)
			if parseErr != nil {
				fmt.Printf("bad volume: %v\n", parseErr)
				continue
			}
			err = loop.Call(runloop.PriorityNormal, 0, func() { ctl.SetVolume(level) })
		case "mute":
			err = loop.Call(runloop.PriorityNormal, 0, func() { ctl.SetMute(!ctl.Muted()) })
		case "presets":
			var presets []equalizer.Preset
			presets, err = runloop.Invoke(loop, runloop.PriorityNormal, 0, eq.Presets)
			if err == nil {
				for i, p := range presets {
					fmt.Printf("%2d  %-24s preamp %.1f dB\n", i, p.Name, p.PreampDb)
				}
			}
		case "eq":
			if len(fields) < 2 {
				fmt.Println("usage: eq <preset-index> | eq off")
				continue
			}
			err = applyPreset(loop, eq, fields[1])
		case "quit":
			if callErr := loop.Call(runloop.PriorityNormal, 0, ctl.Destroy); callErr != nil {
				log.Debug("destroy bridge call", "error", callErr)
			}
			return
		default:
			fmt.Printf("unknown command %q\n", fields[0])
			continue
		}

		if err != nil {
			log.Warn("command dropped", "command", fields[0], "error", err)
			return
		}
	}

	// Stdin closed; shut down.
	_ = loop.Call(runloop.PriorityNormal, 0, ctl.Destroy)
}

func applyPreset(loop *runloop.Loop, eq *equalizer.Manager, arg string) error {
	return loop.Call(runloop.PriorityNormal, 0, func() {
		if arg == "off" {
			flat := make([]float64, len(eq.BandFrequencies()))
			if err := eq.ApplyValues(flat, 0); err != nil {
				fmt.Printf("eq failed: %v\n", err)
			}
			return
		}
		index, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Printf("bad preset index: %v\n", err)
			return
		}
		presets := eq.Presets()
		if index < 0 || index >= len(presets) {
			fmt.Printf("preset index out of range, have %d\n", len(presets))
			return
		}
		p := presets[index]
		if err := eq.ApplyValues(p.BandGainsDb, p.PreampDb); err != nil {
			fmt.Printf("eq failed: %v\n", err)
			return
		}
		fmt.Printf("equalizer set to %s\n", p.Name)
	})
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	uris := os.Args[1:]
	if len(uris) == 0 {
		return fmt.Errorf("usage: %s <file-or-uri>...", os.Args[0])
	}

	be, err := vlc.Open(vlc.Options{LibraryPath: cfg.VLC.Library})
	if err != nil {
		return err
	}
	defer be.Close()

	for _, uri := range uris {
		if !be.CanPlayURI(uri) {
			return fmt.Errorf("unsupported uri: %s", uri)
		}
	}

	src := &listSource{songs: buildSongs(cfg, uris)}

	loop := runloop.New()
	vol := volume.New(logger.WithComponent("volume"))
	vol.SetVolume(cfg.DefaultVolume())
	eq := equalizer.New(be, logger.WithComponent("equalizer"))
	defer eq.Close()

	ctl := playback.New(loop, be, src, vol, eq, playback.Options{
		EventTimeout: cfg.EventTimeout(),
		Logger:       logger.WithComponent("playback"),
	})
	ctl.AddListener(printListener{})

	fmt.Println("commands: play pause resume stop seek <ms> pos vol [0-1] mute presets eq <n|off> quit")
	go runCommands(loop, ctl, eq, src)

	// The main goroutine is the control goroutine.
	loop.Run()
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
