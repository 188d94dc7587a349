package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	cli "github.com/spf13/pflag"

	"dictationer/audio"
	"dictationer/beep"
	"dictationer/clipboard"
	"dictationer/config"
	"dictationer/controller"
	"dictationer/doctor"
	"dictationer/hotkey"
	"dictationer/log"
	"dictationer/processor"
	"dictationer/recorder"
	"dictationer/reformatter"
	"dictationer/shutdown"
	"dictationer/transcriber"
)

var version = "dev"

func run() {
	outputFlag := cli.String("output", "", "WAV output path (default: <output_directory>/recording.wav)")
	configFlag := cli.String("config", config.DefaultPath, "settings file path")
	hotkeyFlag := cli.String("hotkey", "", "override hotkey combination (e.g. ctrl+alt+r)")
	modelFlag := cli.String("model", "", "override whisper model name")
	modelDirFlag := cli.String("model-dir", "", "override whisper model directory")
	noTranscribe := cli.Bool("no-transcribe", false, "record only, skip transcription")
	noAutoPaste := cli.Bool("no-autopaste", false, "do not paste transcripts into the focused window")
	setupFlag := cli.Bool("setup", false, "select microphone device interactively")
	deviceFlag := cli.String("device", "", "use named microphone device")
	watchFlag := cli.Bool("watch", false, "watch the output directory and transcribe new WAV files")
	doctorFlag := cli.Bool("doctor", false, "run system diagnostics and exit")
	testFlag := cli.String("test", "", "headless test mode driven by stdin, replaying the given WAV")
	cli.Bool("gui", false, "run the settings GUI shell (requires a -tags gui build)")
	logPathFlag := cli.String("logpath", "", "log directory path (default: OS-specific location)")
	versionFlag := cli.Bool("version", false, "print version and exit")
	cli.Parse()

	if *versionFlag {
		fmt.Printf("dictationer %s\n", version)
		os.Exit(0)
	}

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *hotkeyFlag != "" {
		settings.Hotkey = *hotkeyFlag
	}
	if *modelFlag != "" {
		settings.WhisperModelSize = *modelFlag
	}
	if *modelDirFlag != "" {
		settings.ModelDirectory = *modelDirFlag
	}
	if *noTranscribe {
		settings.EnableTranscription = false
	}
	if *noAutoPaste {
		settings.AutoPaste = false
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log.SetLevel(settings.LogLevel)
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	if *doctorFlag {
		os.Exit(doctor.Run(settings))
	}

	outputWAV := settings.OutputWAV()
	if *outputFlag != "" {
		outputWAV = *outputFlag
	}

	logger := log.Component("main")
	logger.Info().Str("version", version).Str("output", outputWAV).
		Str("hotkey", settings.Hotkey).Msg("starting")

	var proc *processor.Processor
	if settings.EnableTranscription {
		if settings.AutoPaste {
			if err := clipboard.Init(); err != nil {
				logger.Warn().Err(err).Msg("paste init failed")
				fmt.Println("Fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
			}
		}
		profile := transcriber.ResolveProfile(settings.DevicePreference)
		whisper := transcriber.NewWhisper(transcriber.WhisperConfig{
			ModelName: settings.WhisperModelSize,
			ModelDir:  settings.ModelDirectory,
			Profile:   profile,
		})
		defer whisper.Close()
		proc = processor.New(whisper, clipboard.NewPaster(), settings.AutoPaste)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *watchFlag {
		if proc == nil {
			fmt.Fprintln(os.Stderr, "Error: -watch needs transcription enabled")
			os.Exit(1)
		}
		sigChan := make(chan os.Signal, 1)
		shutdown.Notify(sigChan)
		go func() {
			<-sigChan
			cancel()
		}()
		if err := proc.Watch(ctx, settings.OutputDirectory); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("watch mode failed")
			os.Exit(1)
		}
		return
	}

	if *testFlag != "" {
		runTestMode(*testFlag, settings, proc, outputWAV)
		return
	}

	audioCtx, err := audio.NewContext()
	if err != nil {
		logger.Error().Err(err).Msg("audio context init failed")
		fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
		os.Exit(1)
	}
	defer audioCtx.Close()

	var selectedDevice *audio.DeviceInfo
	switch {
	case *deviceFlag != "":
		selectedDevice, err = audio.FindDevice(audioCtx, *deviceFlag)
		if err != nil {
			logger.Warn().Err(err).Msg("device lookup failed, using default")
			fmt.Fprintf(os.Stderr, "Warning: %v, falling back to default device\n", err)
		}
	case *setupFlag:
		selectedDevice, err = audio.SelectDevice(audioCtx)
		if err != nil {
			logger.Warn().Err(err).Msg("device selection failed, using default")
			fmt.Fprintf(os.Stderr, "Warning: device selection failed: %v\n", err)
		}
	}
	if selectedDevice != nil && audio.IsBluetooth(selectedDevice.Name) {
		logger.Warn().Str("device", selectedDevice.Name).
			Msg("bluetooth microphone selected, expect reduced audio quality")
	}

	capture, err := audioCtx.NewCapture(selectedDevice, audio.DefaultConfig())
	if err != nil {
		logger.Error().Err(err).Msg("capture device init failed")
		fmt.Fprintf(os.Stderr, "Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer capture.Close()

	listener, err := hotkey.NewListener(settings.Hotkey)
	if err != nil {
		logger.Error().Err(err).Msg("invalid hotkey")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rec := recorder.New(capture, proc, recorder.Config{
		OutputPath: outputWAV,
		Transcribe: settings.EnableTranscription,
	})
	ctrl := controller.New(listener, rec)

	var reform *reformatter.Controller
	if settings.ReformatHotkey != "" {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			logger.Warn().Msg("reformat_hotkey set but OPENAI_API_KEY is empty, reformatting disabled")
		} else {
			reformListener, err := hotkey.NewListener(settings.ReformatHotkey)
			if err != nil {
				logger.Error().Err(err).Msg("invalid reformat hotkey")
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			mode, _ := reformatter.ParseMode(settings.ReformatMode)
			reform = reformatter.NewController(reformListener,
				reformatter.NewOpenAI(apiKey, settings.ReformatModel, mode))
			go reform.Start(ctx)
		}
	}

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		<-sigChan
		logger.Info().Msg("shutdown signal received")
		if reform != nil {
			reform.Stop()
		}
		ctrl.Stop()
	}()

	go beep.Init()

	fmt.Printf("dictationer %s: press %s to toggle recording, Ctrl+C to quit\n",
		version, settings.Hotkey)
	if err := ctrl.Start(ctx); err != nil && err != context.Canceled {
		os.Exit(1)
	}
}
