//go:build integration

package test_test

import (
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dictationer/clipboard"
)

var testBinary string

func TestMain(m *testing.M) {
	testBinary = os.Getenv("DICTATIONER_TEST_BIN")
	if testBinary == "" {
		fmt.Fprintln(os.Stderr, "DICTATIONER_TEST_BIN not set; build the binary and point the variable at it")
		os.Exit(1)
	}

	silencePath := filepath.Join("data", "silence.wav")
	if err := generateSilenceWAV(silencePath, 16000, 1.0); err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate silence.wav: %v\n", err)
		os.Exit(1)
	}
	defer os.Remove(silencePath)

	os.Exit(m.Run())
}

func generateSilenceWAV(path string, sampleRate int, durationS float64) error {
	const headerSize = 44
	numSamples := int(float64(sampleRate) * durationS)
	dataSize := numSamples * 2

	buf := make([]byte, headerSize+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(headerSize-8+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:34], 2)  // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16) // bits per sample
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	return os.WriteFile(path, buf, 0644)
}

func cmds(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

// runApp drives the binary in headless test mode and returns the temp
// directories it logged and recorded into.
func runApp(t *testing.T, stdin string, args ...string) (logDir, outDir string) {
	t.Helper()
	logDir = t.TempDir()
	outDir = t.TempDir()
	cmdArgs := append([]string{
		"--logpath", logDir,
		"--output", filepath.Join(outDir, "recording.wav"),
	}, args...)

	cmd := exec.Command(testBinary, cmdArgs...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = os.Environ()

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("dictationer exited with error: %v\noutput: %s", err, out)
	}
	return logDir, outDir
}

func readLog(t *testing.T, logDir, filename string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(logDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("failed to read %s: %v", filename, err)
	}
	return string(data)
}

// requireModel skips tests that need a local whisper model. Point
// DICTATIONER_TEST_MODEL_DIR at a directory with the base model and
// DICTATIONER_TEST_SPEECH_WAV at a short recorded phrase to run them.
func requireModel(t *testing.T) (modelDir, speechWAV string) {
	t.Helper()
	modelDir = os.Getenv("DICTATIONER_TEST_MODEL_DIR")
	speechWAV = os.Getenv("DICTATIONER_TEST_SPEECH_WAV")
	if modelDir == "" || speechWAV == "" {
		t.Skip("DICTATIONER_TEST_MODEL_DIR or DICTATIONER_TEST_SPEECH_WAV not set")
	}
	return modelDir, speechWAV
}

func TestRecordOnlyWritesWAV(t *testing.T) {
	_, outDir := runApp(t, cmds("TOGGLE", "WAIT", "SLEEP 500", "TOGGLE", "WAIT", "QUIT"),
		"--test", filepath.Join("data", "silence.wav"), "--no-transcribe")

	info, err := os.Stat(filepath.Join(outDir, "recording.wav"))
	if err != nil {
		t.Fatalf("recording.wav not written: %v", err)
	}
	if info.Size() <= 44 {
		t.Errorf("recording.wav has no sample data (size %d)", info.Size())
	}
}

func TestSilenceProducesNoTranscript(t *testing.T) {
	modelDir, _ := requireModel(t)
	logDir, _ := runApp(t, cmds("TOGGLE", "WAIT", "SLEEP 1500", "TOGGLE", "WAIT", "QUIT"),
		"--test", filepath.Join("data", "silence.wav"), "--model-dir", modelDir)

	if text := strings.TrimSpace(readLog(t, logDir, "transcript.log")); text != "" {
		t.Errorf("expected empty transcript for silence, got %q", text)
	}
}

func TestSpeechTranscribesAndPastes(t *testing.T) {
	modelDir, speechWAV := requireModel(t)
	logDir, _ := runApp(t, cmds("TOGGLE", "WAIT_AUDIO_DONE", "TOGGLE", "WAIT", "QUIT"),
		"--test", speechWAV, "--model-dir", modelDir)

	if text := strings.TrimSpace(readLog(t, logDir, "transcript.log")); text == "" {
		t.Fatal("transcript.log is empty, expected transcribed words")
	}
}

func TestRepeatedSessions(t *testing.T) {
	modelDir, speechWAV := requireModel(t)
	logDir, _ := runApp(t, cmds(
		"TOGGLE", "WAIT_AUDIO_DONE", "TOGGLE", "WAIT",
		"TOGGLE", "SLEEP 500", "TOGGLE", "WAIT",
		"QUIT"),
		"--test", speechWAV, "--model-dir", modelDir)

	proc := readLog(t, logDir, "processor.log")
	if strings.Count(proc, "transcript ready") < 2 {
		t.Error("expected 2 transcription entries in processor.log")
	}
}

func TestClipboardUntouchedOnSilence(t *testing.T) {
	sentinel := fmt.Sprintf("dictationer-test-sentinel-%d", time.Now().UnixNano())
	if err := clipboard.Copy(sentinel); err != nil {
		t.Skip("clipboard not available")
	}

	_, _ = runApp(t, cmds("TOGGLE", "WAIT", "SLEEP 1500", "TOGGLE", "WAIT", "QUIT"),
		"--test", filepath.Join("data", "silence.wav"), "--no-transcribe")

	clip, err := clipboard.Read()
	if err != nil {
		t.Skip("clipboard not available")
	}
	if strings.TrimSpace(clip) != sentinel {
		t.Errorf("clipboard changed: got %q, want %q", strings.TrimSpace(clip), sentinel)
	}
}

func TestClipboardRestoredAfterPaste(t *testing.T) {
	modelDir, speechWAV := requireModel(t)

	sentinel := fmt.Sprintf("dictationer-test-sentinel-%d", time.Now().UnixNano())
	if err := clipboard.Copy(sentinel); err != nil {
		t.Skip("clipboard not available")
	}

	_, _ = runApp(t, cmds("TOGGLE", "WAIT_AUDIO_DONE", "TOGGLE", "WAIT", "SLEEP 1200", "QUIT"),
		"--test", speechWAV, "--model-dir", modelDir)

	clip, err := clipboard.Read()
	if err != nil {
		t.Skip("clipboard not available")
	}
	if strings.TrimSpace(clip) != sentinel {
		t.Errorf("clipboard not restored: got %q, want %q", strings.TrimSpace(clip), sentinel)
	}
}
