// Package doctor runs interactive system diagnostics: hotkey grab, mic
// capture, model file presence, clipboard and paste injection.
package doctor

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"dictationer/audio"
	"dictationer/clipboard"
	"dictationer/config"
	"dictationer/hotkey"
	"dictationer/transcriber"
)

// Run executes the checks and returns an exit code (0=all pass, 1=any fail).
func Run(settings config.Settings) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("dictationer doctor - interactive system diagnostics")
	fmt.Println("===================================================")

	allPass := true

	if !checkConfig(settings) {
		allPass = false
	}
	if allPass && !checkHotkey(settings.Hotkey) {
		allPass = false
	}
	if allPass && !checkMicrophone() {
		allPass = false
	}
	if allPass && !checkModel(settings) {
		allPass = false
	}
	if allPass && !checkClipboard() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkConfig(settings config.Settings) bool {
	fmt.Println()
	fmt.Println("[1/5] Configuration")

	if err := settings.Validate(); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: hotkey %q, model %q, device %q\n",
		settings.Hotkey, settings.WhisperModelSize, settings.DevicePreference)
	return true
}

func checkHotkey(combination string) bool {
	fmt.Println()
	fmt.Println("[2/5] Hotkey detection")
	fmt.Printf("Press %s...\n", combination)

	l, err := hotkey.NewListener(combination)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	if err := l.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer l.Unregister()

	select {
	case <-l.Toggles():
		fmt.Println("  PASS: hotkey detected")
		// The grab can leave the terminal in raw mode
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

func checkMicrophone() bool {
	fmt.Println()
	fmt.Println("[3/5] Microphone capture")

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return false
	}
	fmt.Printf("  Found %d capture device(s), recording 2 seconds from the default...\n", len(devices))

	pcm, err := recordAudio(ctx, nil, 2*time.Second)
	if err != nil {
		fmt.Printf("  FAIL: recording error: %v\n", err)
		return false
	}
	if len(pcm) == 0 {
		fmt.Println("  FAIL: no audio captured")
		return false
	}
	fmt.Printf("  PASS: captured %.1f KB\n", float64(len(pcm))/1024)
	return true
}

func recordAudio(ctx audio.Context, device *audio.DeviceInfo, d time.Duration) ([]byte, error) {
	captureDevice, err := ctx.NewCapture(device, audio.DefaultConfig())
	if err != nil {
		return nil, err
	}
	defer captureDevice.Close()

	var mu sync.Mutex
	var pcm []byte
	captureDevice.SetCallback(func(data []byte, _ uint32) {
		mu.Lock()
		pcm = append(pcm, data...)
		mu.Unlock()
	})

	if err := captureDevice.Start(); err != nil {
		return nil, err
	}

	fmt.Print("  Recording")
	ticker := time.NewTicker(500 * time.Millisecond)
	done := time.After(d)
loop:
	for {
		select {
		case <-done:
			break loop
		case <-ticker.C:
			fmt.Print(".")
		}
	}
	ticker.Stop()

	captureDevice.Stop()
	captureDevice.ClearCallback()
	fmt.Println(" done")

	mu.Lock()
	defer mu.Unlock()
	return pcm, nil
}

func checkModel(settings config.Settings) bool {
	fmt.Println()
	fmt.Println("[4/5] Whisper model")

	w := transcriber.NewWhisper(transcriber.WhisperConfig{
		ModelName: settings.WhisperModelSize,
		ModelDir:  settings.ModelDirectory,
	})
	path := w.ModelPath()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("  FAIL: model file not found: %s\n", path)
		fmt.Println("  Download with: https://huggingface.co/ggerganov/whisper.cpp")
		return false
	}
	profile := transcriber.ResolveProfile(settings.DevicePreference)
	fmt.Printf("  PASS: %s (%.1f MB), %s/%s, %d threads\n",
		path, float64(info.Size())/(1024*1024), profile.Device, profile.Precision, profile.Threads)
	return true
}

func checkClipboard() bool {
	fmt.Println()
	fmt.Println("[5/5] Clipboard and paste")

	testStr := fmt.Sprintf("dictationer-doctor-%d", time.Now().UnixNano())
	if err := clipboard.Copy(testStr); err != nil {
		fmt.Printf("  FAIL: clipboard copy failed: %v\n", err)
		return false
	}
	got, err := clipboard.Read()
	if err != nil {
		fmt.Printf("  FAIL: clipboard read failed: %v\n", err)
		return false
	}
	if got != testStr {
		fmt.Printf("  FAIL: clipboard mismatch: wrote %q, got %q\n", testStr, got)
		return false
	}
	fmt.Println("  PASS: clipboard write/read verified")

	msg, err := clipboard.Verify()
	if err != nil {
		fmt.Printf("  FAIL: paste injection: %v\n", err)
		fmt.Println("  On linux fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
		return false
	}
	fmt.Printf("  PASS: %s\n", msg)

	// Optional interactive confirmation
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Paste a test string into a focused editor? [y/N]: ")
	answer, _ := reader.ReadString('\n')
	if a := strings.TrimSpace(strings.ToLower(answer)); a != "y" && a != "yes" {
		return true
	}

	fmt.Println("Focus on a text editor window...")
	for i := 3; i > 0; i-- {
		fmt.Printf("  %d...\n", i)
		time.Sleep(time.Second)
	}
	if ok := clipboard.NewPaster().PasteText("dictationer-doctor-test", 500*time.Millisecond); !ok {
		fmt.Println("  FAIL: paste workflow failed")
		return false
	}
	resetTerminal()
	confirm := bufio.NewReader(os.Stdin)
	fmt.Print("Did \"dictationer-doctor-test\" appear? [y/n]: ")
	answer, _ = confirm.ReadString('\n')
	if a := strings.TrimSpace(strings.ToLower(answer)); a != "y" && a != "yes" {
		fmt.Println("  FAIL: paste not confirmed")
		return false
	}
	fmt.Println("  PASS: paste verified by user")
	return true
}
