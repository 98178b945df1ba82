package timer

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/kballard/go-shellquote"

	"github.com/finlite/taskfocus/internal/models"
)

// runCompletionEffects fires the user-facing side of a settled session:
// desktop notification, completion sound, and the configured session
// command. Failures are logged, never fatal; the session itself has
// already settled.
func (m *Machine) runCompletionEffects(state models.TimerState) {
	if m.cfg.Notify {
		err := beeep.Notify(
			"Focus session complete",
			"Time for a well-deserved break!",
			"",
		)
		if err != nil {
			slog.Error(
				"unable to display notification",
				slog.Any("error", err),
			)
		}
	}

	if m.cfg.CompletionSound != "" {
		if err := playSound(m.cfg.CompletionSound); err != nil {
			slog.Error(
				"unable to play completion sound",
				slog.String("sound", m.cfg.CompletionSound),
				slog.Any("error", err),
			)
		}
	}

	if err := runSessionCmd(m.cfg.SessionCmd); err != nil {
		slog.Error("session_cmd failed", slog.Any("error", err))
	}
}

// playSound decodes and plays the sound file, blocking until playback
// ends.
func playSound(sound string) error {
	f, err := os.Open(sound)
	if err != nil {
		return err
	}

	defer func() {
		_ = f.Close()
	}()

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)

	switch filepath.Ext(sound) {
	case ".ogg":
		stream, format, err = vorbis.Decode(f)
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".flac":
		stream, format, err = flac.Decode(f)
	case ".wav":
		stream, format, err = wav.Decode(f)
	default:
		return errInvalidSoundFormat
	}

	if err != nil {
		return err
	}

	bufferSize := 10

	err = speaker.Init(
		format.SampleRate,
		format.SampleRate.N(time.Duration(int(time.Second)/bufferSize)),
	)
	if err != nil {
		return err
	}

	done := make(chan bool)

	speaker.Play(beep.Seq(stream, beep.Callback(func() {
		done <- true
	})))

	<-done

	_ = stream.Close()

	speaker.Clear()
	speaker.Close()

	return nil
}

// runSessionCmd executes the configured command once per completion.
func runSessionCmd(sessionCmd string) error {
	if sessionCmd == "" {
		return nil
	}

	cmdSlice, err := shellquote.Split(sessionCmd)
	if err != nil {
		return fmt.Errorf("unable to parse session_cmd option: %w", err)
	}

	if len(cmdSlice) == 0 {
		return nil
	}

	name := cmdSlice[0]
	args := cmdSlice[1:]

	cmd := exec.Command(name, args...)

	return cmd.Run()
}
