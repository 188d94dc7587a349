package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dictationer/audio"
	"dictationer/beep"
	"dictationer/config"
	"dictationer/controller"
	"dictationer/hotkey"
	"dictationer/processor"
	"dictationer/recorder"
)

// runTestMode drives the full toggle pipeline headlessly: a fake capture
// replays the given WAV as the microphone and stdin commands stand in for
// hotkey presses. Used by integration scripts.
//
// Commands: TOGGLE, WAIT (block until the last TOGGLE has taken effect),
// WAIT_AUDIO_DONE, SLEEP <ms>, QUIT.
func runTestMode(wavPath string, settings config.Settings, proc *processor.Processor, outputWAV string) {
	beep.Disable()

	fakeCtx, err := audio.NewFakeContext(wavPath, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		os.Exit(1)
	}

	capture, err := fakeCtx.NewCapture(nil, audio.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating capture: %v\n", err)
		os.Exit(1)
	}
	defer capture.Close()
	fakeCapture := capture.(*audio.FakeCapture)

	listener, fk, err := hotkey.NewFakeListener(settings.Hotkey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rec := recorder.New(capture, proc, recorder.Config{
		OutputPath: outputWAV,
		Transcribe: settings.EnableTranscription,
	})
	ctrl := controller.New(listener, rec)

	// Stdin driver in background, same shape as the interactive loop in run()
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		expectRecording := false
		for scanner.Scan() {
			cmd := strings.TrimSpace(scanner.Text())
			switch cmd {
			case "TOGGLE":
				expectRecording = !expectRecording
				fk.SimPress()
			case "WAIT":
				for rec.IsRecording() != expectRecording {
					time.Sleep(10 * time.Millisecond)
				}
			case "WAIT_AUDIO_DONE":
				<-fakeCapture.AudioDone()
			case "QUIT":
				ctrl.Stop()
				return
			default:
				if strings.HasPrefix(cmd, "SLEEP ") {
					if ms, err := strconv.Atoi(cmd[6:]); err == nil {
						time.Sleep(time.Duration(ms) * time.Millisecond)
					}
				}
			}
		}
		ctrl.Stop()
	}()

	if err := ctrl.Start(context.Background()); err != nil && err != controller.ErrStopped {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
