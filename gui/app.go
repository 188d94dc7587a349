//go:build gui

package gui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"dictationer/config"
	"dictationer/hotkey"
)

const maxLogLines = 500

// App is the settings-and-control shell. The recording core runs as a child
// process of the same binary; its console output streams into the log panel.
type App struct {
	fyneApp    fyne.App
	window     fyne.Window
	configPath string
	settings   config.Settings

	status  *widget.Label
	logView *widget.Entry
	start   *widget.Button
	stop    *widget.Button

	mu       sync.Mutex
	child    *exec.Cmd
	logLines []string
}

// Run opens the settings window and blocks until it is closed. Any running
// child process is stopped on exit.
func Run(configPath string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}

	a := &App{configPath: configPath, settings: settings}
	a.fyneApp = app.NewWithID("io.dictationer.gui")
	a.fyneApp.Settings().SetTheme(&darkTheme{})
	a.window = a.fyneApp.NewWindow("Dictationer")

	a.window.SetContent(a.buildUI())
	a.window.Resize(fyne.NewSize(560, 520))
	a.window.SetCloseIntercept(func() {
		a.stopChild()
		a.fyneApp.Quit()
	})

	a.window.ShowAndRun()
	return nil
}

func (a *App) buildUI() fyne.CanvasObject {
	hotkeyEntry := widget.NewEntry()
	hotkeyEntry.SetText(a.settings.Hotkey)
	hotkeyEntry.Validator = func(s string) error {
		_, err := hotkey.ParseCombo(s)
		return err
	}

	modelEntry := widget.NewEntry()
	modelEntry.SetText(a.settings.WhisperModelSize)

	modelDirEntry := widget.NewEntry()
	modelDirEntry.SetText(a.settings.ModelDirectory)
	modelDirEntry.SetPlaceHolder("directory with ggml-*.bin files")

	outputEntry := widget.NewEntry()
	outputEntry.SetText(a.settings.OutputDirectory)

	deviceSelect := widget.NewSelect([]string{"auto", "cpu", "gpu"}, nil)
	deviceSelect.SetSelected(a.settings.DevicePreference)

	transcribeCheck := widget.NewCheck("Transcribe recordings", nil)
	transcribeCheck.SetChecked(a.settings.EnableTranscription)

	pasteCheck := widget.NewCheck("Paste transcript into focused window", nil)
	pasteCheck.SetChecked(a.settings.AutoPaste)

	form := widget.NewForm(
		widget.NewFormItem("Hotkey", hotkeyEntry),
		widget.NewFormItem("Model", modelEntry),
		widget.NewFormItem("Model directory", modelDirEntry),
		widget.NewFormItem("Output directory", outputEntry),
		widget.NewFormItem("Device", deviceSelect),
		widget.NewFormItem("", transcribeCheck),
		widget.NewFormItem("", pasteCheck),
	)
	form.SubmitText = "Save"
	form.OnSubmit = func() {
		a.settings.Hotkey = hotkeyEntry.Text
		a.settings.WhisperModelSize = modelEntry.Text
		a.settings.ModelDirectory = modelDirEntry.Text
		a.settings.OutputDirectory = outputEntry.Text
		a.settings.DevicePreference = deviceSelect.Selected
		a.settings.EnableTranscription = transcribeCheck.Checked
		a.settings.AutoPaste = pasteCheck.Checked

		if err := a.settings.Validate(); err != nil {
			a.setStatus("Invalid settings: " + err.Error())
			return
		}
		if err := a.settings.Save(a.configPath); err != nil {
			a.setStatus("Save failed: " + err.Error())
			return
		}
		a.setStatus("Settings saved. Restart recording to apply.")
	}

	a.status = widget.NewLabel("Ready")
	a.status.Wrapping = fyne.TextWrapWord

	a.logView = widget.NewMultiLineEntry()
	a.logView.Wrapping = fyne.TextWrapWord
	a.logView.Disable()

	a.start = widget.NewButton("Start recording core", func() { a.startChild() })
	a.stop = widget.NewButton("Stop", func() { a.stopChild() })
	a.stop.Disable()

	controls := container.NewHBox(a.start, a.stop)
	top := container.NewVBox(form, controls, a.status)
	return container.NewBorder(top, nil, nil, nil, container.NewVScroll(a.logView))
}

func (a *App) setStatus(text string) {
	fyne.Do(func() { a.status.SetText(text) })
}

func (a *App) appendLog(line string) {
	a.mu.Lock()
	a.logLines = append(a.logLines, line)
	if len(a.logLines) > maxLogLines {
		a.logLines = a.logLines[len(a.logLines)-maxLogLines:]
	}
	text := strings.Join(a.logLines, "\n")
	a.mu.Unlock()

	fyne.Do(func() {
		a.logView.SetText(text)
		a.logView.CursorRow = len(a.logLines)
	})
}

// startChild spawns this binary as the recording core and streams its
// combined output into the log panel.
func (a *App) startChild() {
	a.mu.Lock()
	if a.child != nil {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	exe, err := os.Executable()
	if err != nil {
		a.setStatus("Cannot locate binary: " + err.Error())
		return
	}
	args := []string{}
	if a.configPath != "" {
		args = append(args, "--config", a.configPath)
	}
	cmd := exec.Command(exe, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		a.setStatus("Pipe error: " + err.Error())
		return
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		a.setStatus("Start failed: " + err.Error())
		return
	}

	a.mu.Lock()
	a.child = cmd
	a.mu.Unlock()
	a.setStatus(fmt.Sprintf("Recording core running (pid %d)", cmd.Process.Pid))
	fyne.Do(func() {
		a.start.Disable()
		a.stop.Enable()
	})

	go a.pump(stdout)
	go func() {
		cmd.Wait()
		a.mu.Lock()
		a.child = nil
		a.mu.Unlock()
		a.setStatus("Recording core stopped")
		fyne.Do(func() {
			a.start.Enable()
			a.stop.Disable()
		})
	}()
}

func (a *App) pump(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		a.appendLog(scanner.Text())
	}
}

func (a *App) stopChild() {
	a.mu.Lock()
	cmd := a.child
	a.mu.Unlock()
	if cmd == nil || cmd.Process == nil {
		return
	}
	interruptProcess(cmd.Process)
}
